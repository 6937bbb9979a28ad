// Package connloop drives one accepted connection through the protocol
// handlers until the client closes it, a framing error occurs, or a
// shutdown request is handled — the direct analogue of the reference
// implementation's per-connection client_handling loop.
package connloop

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"

	"github.com/rfsd/rfsd/internal/handler"
	"github.com/rfsd/rfsd/internal/wire"
)

// Serve reads and dispatches framed messages from conn until ReadMessage
// reports a clean EOF, a framing error, or a handler asks for the
// connection to close. It always closes conn before returning.
func Serve(ctx context.Context, conn net.Conn, d *handler.Deps) {
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := wire.ReadMessage(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && d.Log != nil {
				d.Log.Debug("connection closed on read error", "remote", conn.RemoteAddr(), "error", err)
			}
			return
		}

		if handler.Dispatch(ctx, d, conn, msg) {
			return
		}
	}
}
