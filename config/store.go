package config

import "sync/atomic"

// Store publishes the active tunables to the simulation thread
// Readers load once per tick; writers replace the whole value
type Store struct {
	current atomic.Pointer[Tunables]
}

// NewStore creates a store holding t, or the defaults when t is nil
func NewStore(t *Tunables) *Store {
	s := &Store{}
	if t == nil {
		t = Default()
	}
	s.current.Store(t)
	return s
}

// Load returns the active tunables, never nil
func (s *Store) Load() *Tunables {
	return s.current.Load()
}

// Swap publishes t and returns the previous value
func (s *Store) Swap(t *Tunables) *Tunables {
	return s.current.Swap(t)
}
