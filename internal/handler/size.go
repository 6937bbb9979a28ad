package handler

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"

	"github.com/rfsd/rfsd/internal/wire"
)

// handleSize implements type 4: reply with an 8-byte big-endian file size.
func handleSize(ctx context.Context, d *Deps, w io.Writer, msg wire.Message) bool {
	name, ok := nulTerminatedString(msg.Payload)
	if !ok {
		writeError(w)
		return true
	}

	size, err := d.Root.Size(name)
	if err != nil {
		writeError(w)
		return true
	}

	var body [8]byte
	binary.BigEndian.PutUint64(body[:], uint64(size))

	if err := writeReply(w, wire.TypeSizeReply, body[:], msg.Header.RequiresCompression, d); err != nil {
		return true
	}
	return false
}

// nulTerminatedString extracts the string preceding the first NUL byte in
// payload. Every request carrying a filename uses this framing.
func nulTerminatedString(payload []byte) (string, bool) {
	i := bytes.IndexByte(payload, 0)
	if i < 0 {
		return "", false
	}
	return string(payload[:i]), true
}
