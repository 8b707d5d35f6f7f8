// Package infrastructure stores preferences in Redis, the SQL database or
// memory.
package infrastructure

import (
	"context"
	"sync"

	"github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	prefs    domain.Preferences
	saved    bool
	defaults domain.Preferences
}

// NewMemoryStore creates a store that returns defaults until Save.
func NewMemoryStore(defaults domain.Preferences) *MemoryStore {
	return &MemoryStore{defaults: defaults}
}

// Get returns the saved preferences or the defaults.
func (s *MemoryStore) Get(ctx context.Context) (domain.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return s.defaults, nil
	}
	return s.prefs, nil
}

// Save validates and stores prefs.
func (s *MemoryStore) Save(ctx context.Context, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = prefs
	s.saved = true
	return nil
}
