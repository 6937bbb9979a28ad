package multiplex

import (
	"context"
	"sync"
)

// rendezvousCapacity bounds how many peer sub-ranges a single session can
// hand out. A session can never have more peers than there are concurrent
// connections, which the thread pool already bounds, so this only exists to
// give the underlying channel a fixed size at construction time.
const rendezvousCapacity = 4096

// Session is one in-flight, coalesced file-retrieval request: the first
// handler to see a given (session id, filename, offset, length) tuple
// becomes its coordinator and partitions the requested range across itself
// and however many other handlers ("peers") join before it partitions.
//
// The kernel pipe the reference implementation uses to hand sub-ranges from
// coordinator to peers is played here by a buffered channel: the coordinator
// sends every peer's range once, in order, and each peer receives exactly
// one. A peer that joins after the coordinator has already partitioned
// blocks on its receive — possibly forever, if no further range is ever
// sent. That is the documented, inherited race; it is not papered over.
type Session struct {
	ID       uint32
	Filename string
	Offset   uint64
	Length   uint64

	mu          sync.Mutex
	numPeers    int
	partitioned bool

	ranges chan SubRange
}

// NewSession creates a session for the first handler to observe this
// (id, filename, offset, length) tuple. The caller is responsible for
// inserting it into a Table before any concurrent handler can observe it.
func NewSession(id uint32, filename string, offset, length uint64) *Session {
	return &Session{
		ID:       id,
		Filename: filename,
		Offset:   offset,
		Length:   length,
		ranges:   make(chan SubRange, rendezvousCapacity),
	}
}

// Matches reports whether a second request for the same session id agrees
// with this session's (filename, offset, length). A mismatch is a protocol
// error (reply type 0xF), never an implicit new session.
func (s *Session) Matches(filename string, offset, length uint64) bool {
	return s.Filename == filename && s.Offset == offset && s.Length == length
}

// Join registers the caller as a peer (incrementing numPeers, which the
// coordinator may still be able to observe before it partitions) and then
// blocks until the coordinator sends this peer its sub-range, or ctx is
// done.
func (s *Session) Join(ctx context.Context) (SubRange, error) {
	s.mu.Lock()
	s.numPeers++
	s.mu.Unlock()

	select {
	case r := <-s.ranges:
		return r, nil
	case <-ctx.Done():
		return SubRange{}, ctx.Err()
	}
}

// Partition snapshots the current peer count, computes the partition, sends
// every peer its range, and returns the coordinator's own range. It must be
// called exactly once, by the session's creator.
func (s *Session) Partition() SubRange {
	s.mu.Lock()
	numPeers := s.numPeers
	s.partitioned = true
	s.mu.Unlock()

	peerRanges, coordinator := partitionRange(s.Offset, s.Length, numPeers)
	for _, r := range peerRanges {
		s.ranges <- r
	}
	return coordinator
}
