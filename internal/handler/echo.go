package handler

import (
	"context"
	"io"

	"github.com/rfsd/rfsd/internal/wire"
)

// handleEcho implements type 0. The general "reply is compressed iff
// requires_compression" rule holds, but a request that arrives already
// compressed needs special treatment: if the client didn't ask for a
// compressed reply, the server decompresses before echoing, so that echo
// always means "return the bytes you sent me" from the client's point of
// view. If the client both sent a compressed body and asked for a
// compressed reply, the body is forwarded unchanged, bit-for-bit — it's
// already exactly what the client wants back.
func handleEcho(ctx context.Context, d *Deps, w io.Writer, msg wire.Message) bool {
	req := msg.Header

	if req.Compressed && req.RequiresCompression {
		err := wire.WriteMessage(w, wire.Message{
			Header:  wire.Header{Type: wire.TypeEchoReply, Compressed: true},
			Payload: msg.Payload,
		})
		return err != nil
	}

	body := msg.Payload
	if req.Compressed {
		decoded, err := d.Dict.Decode(body)
		if err != nil {
			writeError(w)
			return true
		}
		body = decoded
	}

	if err := writeReply(w, wire.TypeEchoReply, body, req.RequiresCompression, d); err != nil {
		return true
	}
	return false
}
