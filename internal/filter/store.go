package filter

import "sync/atomic"

// Store owns the live Index. Publish installs a new snapshot atomically;
// readers obtain a consistent view with Current and keep classifying against
// it even if a new snapshot lands mid-flight. Old snapshots are reclaimed by
// the runtime once the last reader drops its reference.
type Store struct {
	current atomic.Pointer[Index]
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the live snapshot, or nil before the first Publish.
// Never blocks.
func (s *Store) Current() *Index {
	return s.current.Load()
}

// Publish atomically replaces the live snapshot. The slow compilation work
// happens before this call; Publish itself is a single pointer swap.
func (s *Store) Publish(idx *Index) {
	s.current.Store(idx)
}
