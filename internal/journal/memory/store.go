// Package memory keeps journal entries in-memory for development and
// tests.
package memory

import (
	"context"
	"sync"

	"github.com/quaydigital/searchping/internal/journal"
)

// Store accumulates entries in memory.
type Store struct {
	mu      sync.RWMutex
	entries []journal.Entry
}

// NewStore creates an empty in-memory journal.
func NewStore() *Store {
	return &Store{}
}

// Record appends the entry.
func (s *Store) Record(_ context.Context, entry journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries.
func (s *Store) Entries() []journal.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]journal.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
