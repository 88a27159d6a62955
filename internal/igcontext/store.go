// Package igcontext holds the process-wide ImplementationGuide selection.
//
// The guide context is shared mutable state consulted by the create tool
// (to attach a profile query parameter) and read back by the context
// tools. Tool invocations can interleave at network suspension points, so
// all access goes through a mutex-guarded Store; there is deliberately no
// atomicity tying a read to the lifetime of the operation that consults
// it beyond a single snapshot at call start.
package igcontext

import "sync"

// Guide identifies the currently selected ImplementationGuide.
type Guide struct {
	ID      string
	URL     string
	Name    string
	Version string
}

// IsSet reports whether any guide is selected.
func (g Guide) IsSet() bool {
	return g.ID != "" || g.URL != "" || g.Name != ""
}

// Store is a concurrency-safe holder for the current guide context.
// The zero value is ready to use and reports no guide set.
type Store struct {
	mu    sync.RWMutex
	guide Guide
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the current guide context.
func (s *Store) Set(guide Guide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guide = guide
}

// Get returns a snapshot of the current guide context.
func (s *Store) Get() Guide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guide
}

// Clear removes the current guide context.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guide = Guide{}
}
