// Package srvconfig reads the server's fixed-layout binary configuration
// file: 4 bytes of IPv4 address, 2 bytes of port, both in network byte
// order, followed by the directory to serve, with no terminator.
package srvconfig

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"os"

	"github.com/calmh/xdr"
)

// minSize is the 6 header bytes; anything shorter can't even carry an
// address and port, let alone a directory.
const minSize = 4 + 2

// Config is the decoded contents of the binary config file.
type Config struct {
	BindAddr  net.IP
	BindPort  uint16
	Directory string
}

// Load reads and decodes the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("srvconfig: reading %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses the fixed layout out of data. The 4-byte address is read
// through an xdr.Reader, whose uint32 encoding is plain big-endian with no
// padding. The 2-byte port is read directly, because xdr pads 16-bit values
// to 4 bytes.
func Decode(data []byte) (Config, error) {
	if len(data) < minSize {
		return Config{}, fmt.Errorf("srvconfig: file too short: %d bytes, need at least %d", len(data), minSize)
	}

	xr := xdr.NewReader(bytes.NewReader(data[:4]))
	addrBits := xr.ReadUint32()
	if err := xr.Error(); err != nil {
		return Config{}, fmt.Errorf("srvconfig: decoding address: %w", err)
	}
	addr := net.IPv4(byte(addrBits>>24), byte(addrBits>>16), byte(addrBits>>8), byte(addrBits))

	port := binary.BigEndian.Uint16(data[4:6])

	return Config{
		BindAddr:  addr,
		BindPort:  port,
		Directory: string(data[6:]),
	}, nil
}

// Addr formats BindAddr:BindPort for net.Listen.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr.String(), c.BindPort)
}
