package infrastructure

import (
	"context"
	"sync"

	"github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/resilience"
)

// BreakerStore guards a PreferenceStore with a circuit breaker. While the
// breaker is open, Get serves the last preferences it read so the timer
// keeps using the user's settings.
type BreakerStore struct {
	next    domain.PreferenceStore
	breaker *resilience.Breaker

	mu   sync.Mutex
	last *domain.Preferences
}

// NewBreakerStore wraps next.
func NewBreakerStore(next domain.PreferenceStore, breaker *resilience.Breaker) *BreakerStore {
	return &BreakerStore{next: next, breaker: breaker}
}

// Get reads through the breaker.
func (s *BreakerStore) Get(ctx context.Context) (domain.Preferences, error) {
	prefs, err := resilience.Call(s.breaker, func() (domain.Preferences, error) {
		return s.next.Get(ctx)
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.last != nil {
			return *s.last, err
		}
		return domain.Defaults(), err
	}
	s.last = &prefs
	return prefs, nil
}

// Save writes through the breaker. Validation failures are returned before
// the breaker is consulted so bad input never trips it.
func (s *BreakerStore) Save(ctx context.Context, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	return s.breaker.Do(func() error {
		return s.next.Save(ctx, prefs)
	})
}
