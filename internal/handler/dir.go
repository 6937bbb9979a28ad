package handler

import (
	"bytes"
	"context"
	"io"

	"github.com/rfsd/rfsd/internal/wire"
)

// handleDir implements type 2: list the regular files in the published
// directory, NUL-delimited, in whatever order the directory read returned
// them. An empty directory still gets one NUL byte, not zero bytes.
func handleDir(ctx context.Context, d *Deps, w io.Writer, msg wire.Message) bool {
	names, err := d.Root.List()
	if err != nil {
		writeError(w)
		return true
	}

	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte(0)
	}
	if buf.Len() == 0 {
		buf.WriteByte(0)
	}

	if err := writeReply(w, wire.TypeDirReply, buf.Bytes(), msg.Header.RequiresCompression, d); err != nil {
		return true
	}
	return false
}
