// Package server implements the acceptor/worker-pool core that turns
// accepted connections into a bounded stream of work for a fixed number of
// goroutines, the way the reference implementation's thread pool does with
// OS threads, a condition variable, and a ring buffer of descriptors.
package server

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/rfsd/rfsd/internal/metrics"
)

// Pool is a fixed number of worker goroutines draining a bounded ring
// buffer of accepted connections. Deliberately not a buffered channel: a
// channel can't report "full" without a non-blocking send or select, and
// the admission-control behavior this package needs — reject the new
// connection outright when the ring is full — reads directly off a
// condition-variable-guarded ring buffer, the same shape as the reference's
// linked queue.
type Pool struct {
	mu   sync.Mutex
	cond *sync.Cond

	ring     []net.Conn
	head     int
	count    int
	capacity int

	workers  int
	shutdown bool

	handle  func(ctx context.Context, conn net.Conn)
	log     *slog.Logger
	metrics *metrics.Set
}

// NewPool constructs a pool with the given number of worker goroutines and
// ring-buffer capacity. handle is called once per accepted connection, on
// one of the pool's own goroutines, and must itself loop until the
// connection is done. m may be nil, in which case queue-depth observation is
// skipped.
func NewPool(workers, capacity int, handle func(ctx context.Context, conn net.Conn), log *slog.Logger, m *metrics.Set) *Pool {
	if workers <= 0 {
		workers = 20
	}
	if capacity <= 0 {
		capacity = 1024
	}
	p := &Pool{
		ring:     make([]net.Conn, capacity),
		capacity: capacity,
		workers:  workers,
		handle:   handle,
		log:      log,
		metrics:  m,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Submit enqueues conn for a worker to pick up. It reports false — and
// leaves conn untouched for the caller to close — if the pool has shut down
// or its queue is full.
func (p *Pool) Submit(conn net.Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown || p.count == p.capacity {
		return false
	}
	p.ring[(p.head+p.count)%p.capacity] = conn
	p.count++
	if p.metrics != nil {
		p.metrics.QueueDepth.Set(float64(p.count))
	}
	p.cond.Signal()
	return true
}

// dequeueLocked pops the oldest queued connection. Caller must hold p.mu and
// have already checked p.count > 0.
func (p *Pool) dequeueLocked() net.Conn {
	conn := p.ring[p.head]
	p.ring[p.head] = nil
	p.head = (p.head + 1) % p.capacity
	p.count--
	if p.metrics != nil {
		p.metrics.QueueDepth.Set(float64(p.count))
	}
	return conn
}

// Shutdown sets the shutdown flag, closes every connection still sitting in
// the queue, and wakes every worker blocked waiting for work. Safe to call
// more than once or concurrently with Submit/Serve.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.shutdown = true
	for p.count > 0 {
		conn := p.dequeueLocked()
		conn.Close()
	}
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Serve runs the worker pool until ctx is cancelled or Shutdown is called,
// satisfying suture.Service. A cancelled context is treated the same as an
// explicit Shutdown: workers drain and exit, queued connections are closed,
// and Serve returns ctx.Err() so the supervisor recognizes this as an
// intentional stop rather than a crash to restart from.
func (p *Pool) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			p.worker(ctx)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		p.Shutdown()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

// worker is one of the pool's fixed goroutines: idle (waiting on the
// condition variable), processing (driving one connection through handle),
// or draining (shutdown observed, exits once the queue is empty).
func (p *Pool) worker(ctx context.Context) {
	for {
		p.mu.Lock()
		for p.count == 0 && !p.shutdown {
			p.cond.Wait()
		}
		if p.count == 0 && p.shutdown {
			p.mu.Unlock()
			return
		}
		conn := p.dequeueLocked()
		p.mu.Unlock()

		p.handle(ctx, conn)
	}
}
