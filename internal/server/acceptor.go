package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/rfsd/rfsd/internal/metrics"
)

// Acceptor runs the blocking accept loop: every accepted connection is
// handed to a Pool, which either queues it for a worker or, if the queue is
// full, the acceptor closes it immediately.
type Acceptor struct {
	ln      net.Listener
	pool    *Pool
	log     *slog.Logger
	metrics *metrics.Set

	closeOnce sync.Once
}

// NewAcceptor wraps an already-bound listener. The caller owns binding (so
// it can report a clean startup error) but Acceptor owns closing it. m may be
// nil, in which case accept/reject counts simply aren't recorded.
func NewAcceptor(ln net.Listener, pool *Pool, log *slog.Logger, m *metrics.Set) *Acceptor {
	return &Acceptor{ln: ln, pool: pool, log: log, metrics: m}
}

// Close closes the listening socket so a blocked Accept returns, the
// counterpart of the reference's shutdown(serversock, SHUT_RDWR). Idempotent.
func (a *Acceptor) Close() error {
	var err error
	a.closeOnce.Do(func() {
		err = a.ln.Close()
	})
	return err
}

// Serve runs the accept loop until the listener is closed (by Close, or by
// ctx being cancelled), satisfying suture.Service.
func (a *Acceptor) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			a.Close()
		case <-stop:
		}
	}()
	defer close(stop)

	for {
		conn, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return ctx.Err()
			}
			return err
		}
		if !a.pool.Submit(conn) {
			if a.log != nil {
				a.log.Warn("queue full, rejecting connection", "remote", conn.RemoteAddr())
			}
			if a.metrics != nil {
				a.metrics.ConnectionsRejected.Inc()
			}
			conn.Close()
			continue
		}
		if a.metrics != nil {
			a.metrics.ConnectionsAccepted.Inc()
		}
	}
}
