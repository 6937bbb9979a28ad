// Package handler implements the per-request-type protocol handlers:
// echo, directory listing, file size, coalesced file retrieval, and
// shutdown.
package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/rfsd/rfsd/internal/dict"
	"github.com/rfsd/rfsd/internal/fsops"
	"github.com/rfsd/rfsd/internal/metrics"
	"github.com/rfsd/rfsd/internal/multiplex"
	"github.com/rfsd/rfsd/internal/ratelimit"
	"github.com/rfsd/rfsd/internal/wire"
)

// Deps is the shared state every handler needs: the published file root, the
// loaded compression dictionary, the multiplex table of in-flight
// file-retrieval sessions, and the callback that begins server shutdown.
// Metrics and Limiters are both nil-safe and optional — a Deps with neither
// set still serves every request, just without rate pacing or
// observability.
type Deps struct {
	Root     *fsops.Root
	Dict     *dict.Dict
	Sessions *multiplex.Table
	Shutdown func()
	Log      *slog.Logger
	Metrics  *metrics.Set
	Limiters *ratelimit.Limiters
}

// Handler processes one already-framed request and writes its reply (if
// any) to w. It returns true if the connection should be closed afterward.
type Handler func(ctx context.Context, d *Deps, w io.Writer, msg wire.Message) bool

// Table is the closed set of handlers keyed by request type, built once at
// server construction. Any type not present in it is, by construction, the
// "unknown type" case.
var Table = map[wire.Type]Handler{
	wire.TypeEcho:     handleEcho,
	wire.TypeDir:      handleDir,
	wire.TypeSize:     handleSize,
	wire.TypeFile:     handleFile,
	wire.TypeShutdown: handleShutdown,
}

// Dispatch routes msg to its handler, or replies with the catch-all error
// type and closes the connection if msg's type isn't one of the five
// requests the protocol defines.
//
// Echo owns its own compression handling (type 0's passthrough rule is
// special-cased), and shutdown never carries a body; every other request
// type is decompressed here, uniformly, before its handler ever sees the
// payload.
func Dispatch(ctx context.Context, d *Deps, w io.Writer, msg wire.Message) bool {
	h, ok := Table[msg.Header.Type]
	if !ok {
		writeError(w)
		return true
	}
	if d.Metrics != nil {
		d.Metrics.RequestsByType.WithLabelValues(msg.Header.Type.String()).Inc()
	}

	if msg.Header.Compressed && msg.Header.Type != wire.TypeEcho && msg.Header.Type != wire.TypeShutdown {
		decoded, err := d.Dict.Decode(msg.Payload)
		if err != nil {
			writeError(w)
			return true
		}
		msg.Payload = decoded
	}

	return h(ctx, d, w, msg)
}

// writeError sends the catch-all type-0xF, zero-length error reply.
func writeError(w io.Writer) error {
	return wire.WriteMessage(w, wire.Message{Header: wire.Header{Type: wire.TypeError}})
}

// writeReply sends body as replyType's payload, compressing it first if
// compress is requested. Compression is never applied unless requested —
// "compressed iff requires_compression=1" in every reply the table names.
func writeReply(w io.Writer, replyType wire.Type, body []byte, compress bool, d *Deps) error {
	hdr := wire.Header{Type: replyType}
	payload := body
	if compress {
		payload = d.Dict.Encode(body)
		hdr.Compressed = true
	}
	return wire.WriteMessage(w, wire.Message{Header: hdr, Payload: payload})
}
