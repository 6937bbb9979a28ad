package handler

import (
	"context"
	"io"
	"os"

	"github.com/rfsd/rfsd/internal/multiplex"
	"github.com/rfsd/rfsd/internal/wire"
)

// handleFile implements type 6, the coalescing file-retrieval request. The
// first handler to observe a given (session id, filename, offset, length)
// tuple becomes the session's coordinator: it partitions the requested
// range across itself and however many peers have joined by the time it
// gets around to partitioning, then serves its own sub-range. Every later
// handler for the same session id joins as a peer and blocks until the
// coordinator hands it a sub-range.
func handleFile(ctx context.Context, d *Deps, w io.Writer, msg wire.Message) bool {
	req, err := wire.DecodeFileRequest(msg.Payload)
	if err != nil {
		writeError(w)
		return true
	}

	path, err := d.Root.Resolve(req.Filename)
	if err != nil {
		writeError(w)
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w)
		return true
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w)
		return true
	}
	size := uint64(info.Size())
	if req.Offset > size || req.Length > size-req.Offset {
		writeError(w)
		return true
	}

	session, created := d.Sessions.FindOrCreate(req.SessionID, func() *multiplex.Session {
		return multiplex.NewSession(req.SessionID, req.Filename, req.Offset, req.Length)
	})

	var sub multiplex.SubRange
	if created {
		if d.Metrics != nil {
			d.Metrics.ActiveSessions.Inc()
		}
		sub = session.Partition()
		d.Sessions.Remove(req.SessionID)
		if d.Metrics != nil {
			d.Metrics.ActiveSessions.Dec()
		}
	} else {
		if !session.Matches(req.Filename, req.Offset, req.Length) {
			writeError(w)
			return true
		}
		sub, err = session.Join(ctx)
		if err != nil {
			return true
		}
	}

	data := make([]byte, sub.Length)
	if sub.Length > 0 {
		if _, err := f.ReadAt(data, int64(sub.Offset)); err != nil {
			writeError(w)
			return true
		}
	}

	if err := d.Limiters.WaitN(ctx, req.SessionID, len(data)); err != nil {
		return true
	}

	reply := wire.FileReply{
		SessionID: req.SessionID,
		SubOffset: sub.Offset,
		SubLength: sub.Length,
		Data:      data,
	}
	if err := writeReply(w, wire.TypeFileReply, reply.Encode(), msg.Header.RequiresCompression, d); err != nil {
		return true
	}
	if d.Metrics != nil {
		d.Metrics.BytesServed.WithLabelValues(boolLabel(msg.Header.RequiresCompression)).Add(float64(len(data)))
	}
	return false
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
