package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPayload bounds the length field so a malicious or confused peer can't
// make a worker allocate an unbounded buffer from an 8-byte length claim.
// Nothing in the protocol needs a payload anywhere near this size.
const MaxPayload = 256 << 20 // 256 MiB

// ErrPayloadTooLarge is returned by ReadMessage when the framed length
// exceeds MaxPayload.
var ErrPayloadTooLarge = errors.New("wire: framed payload exceeds maximum size")

// Message is one fully-framed unit read off or about to be written to the
// connection.
type Message struct {
	Header  Header
	Payload []byte
}

// ReadMessage reads one header byte, the 8-byte big-endian length, and then
// exactly that many payload bytes. io.EOF is returned only when zero bytes
// could be read for the header (a clean close between messages); any other
// short read is reported as a wrapped error, per the framer's short-read
// contract.
func ReadMessage(r io.Reader) (Message, error) {
	var hdr [1]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Message{}, io.EOF
		}
		return Message{}, fmt.Errorf("wire: reading header: %w", err)
	}

	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Message{}, fmt.Errorf("wire: short read on length: %w", err)
	}
	length := binary.BigEndian.Uint64(lenBuf[:])
	if length > MaxPayload {
		return Message{}, ErrPayloadTooLarge
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Message{}, fmt.Errorf("wire: short read on body: %w", err)
		}
	}

	return Message{Header: decodeHeader(hdr[0]), Payload: payload}, nil
}

// WriteMessage writes the header byte, the 8-byte big-endian length of
// payload, and payload itself as a single contiguous buffer, matching the
// "prefer a single write" framing rule.
func WriteMessage(w io.Writer, msg Message) error {
	buf := make([]byte, 1+8+len(msg.Payload))
	buf[0] = encodeHeader(msg.Header)
	binary.BigEndian.PutUint64(buf[1:9], uint64(len(msg.Payload)))
	copy(buf[9:], msg.Payload)
	_, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("wire: writing message: %w", err)
	}
	return nil
}
