// Package multiplex implements the thread-safe table of in-flight
// file-retrieval sessions, and the coordinator/peer partitioning of a
// requested byte range across the clients sharing one session id.
package multiplex

import (
	"sync"

	"github.com/greatroar/blobloom"
)

// Table holds every live Session, keyed by session id. A Bloom filter sits
// in front of Find's lock: a session id that the filter has never seen is
// reported absent without acquiring the mutex. FindOrCreate, which the
// file-retrieval handler uses, always takes the lock.
type Table struct {
	mu       sync.Mutex
	sessions map[uint32]*Session
	filter   *blobloom.Filter
}

// NewTable constructs an empty table sized for roughly capacity concurrently
// live sessions.
func NewTable(capacity int) *Table {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Table{
		sessions: make(map[uint32]*Session),
		filter: blobloom.NewOptimized(blobloom.Config{
			Capacity: uint64(capacity),
			FPRate:   0.01,
		}),
	}
}

// Add inserts s, keyed by s.ID. The caller must hold no other reference
// capable of racing a concurrent Add for the same id. The file-retrieval
// handler does not call Add; it uses FindOrCreate.
func (t *Table) Add(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[s.ID] = s
	t.filter.Add(sessionHash(s.ID))
}

// Find returns the live session for id, if any. A Bloom-filter miss is
// conclusive; a hit still requires the map lookup, since the filter can
// false-positive but never false-negative.
func (t *Table) Find(id uint32) (*Session, bool) {
	if !t.filter.Has(sessionHash(id)) {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	return s, ok
}

// FindOrCreate returns the existing session for id, or, if none exists yet,
// inserts and returns one built by factory. The check and the insert happen
// under the same lock, so two handlers racing to become coordinator for a
// brand-new session id can never both win — exactly one factory call ever
// gets installed as the session of record.
func (t *Table) FindOrCreate(id uint32, factory func() *Session) (s *Session, created bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[id]; ok {
		return s, false
	}
	s = factory()
	t.sessions[id] = s
	t.filter.Add(sessionHash(id))
	return s, true
}

// Len reports the number of sessions currently in flight.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Remove drops id from the table. The Bloom filter is never cleared (it
// only ever grows more conservative, trading a slowly rising false-positive
// rate for never needing a lock on a guaranteed-new id); Add re-keys the map
// correctly regardless.
func (t *Table) Remove(id uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// sessionHash mixes a session id into a well-distributed 64-bit hash for the
// Bloom filter, which takes raw hashes rather than hashing keys itself.
func sessionHash(id uint32) uint64 {
	h := uint64(id)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}
