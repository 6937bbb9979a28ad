package handler

import (
	"context"
	"io"

	"github.com/rfsd/rfsd/internal/wire"
)

// handleShutdown implements type 8: no reply, just trigger the pool's
// shutdown sequence and close this connection.
func handleShutdown(ctx context.Context, d *Deps, w io.Writer, msg wire.Message) bool {
	d.Shutdown()
	return true
}
