package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/resilience"
)

// BreakerSessionStore guards a SessionStore with a circuit breaker so a
// dead database fails fast instead of stalling every tick.
type BreakerSessionStore struct {
	next    domain.SessionStore
	breaker *resilience.Breaker
}

// NewBreakerSessionStore wraps next.
func NewBreakerSessionStore(next domain.SessionStore, breaker *resilience.Breaker) *BreakerSessionStore {
	return &BreakerSessionStore{next: next, breaker: breaker}
}

func (s *BreakerSessionStore) Create(ctx context.Context, session *domain.Session) error {
	return s.breaker.Do(func() error { return s.next.Create(ctx, session) })
}

func (s *BreakerSessionStore) Update(ctx context.Context, session *domain.Session) error {
	return s.breaker.Do(func() error { return s.next.Update(ctx, session) })
}

func (s *BreakerSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return resilience.Call(s.breaker, func() (*domain.Session, error) {
		return s.next.GetByID(ctx, id)
	})
}

func (s *BreakerSessionStore) QueryCompleted(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	return resilience.Call(s.breaker, func() ([]*domain.Session, error) {
		return s.next.QueryCompleted(ctx, filter)
	})
}

func (s *BreakerSessionStore) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Session, error) {
	return resilience.Call(s.breaker, func() ([]*domain.Session, error) {
		return s.next.QueryByDateRange(ctx, start, end)
	})
}

// BreakerTreeStore guards a TreeStore with a circuit breaker.
type BreakerTreeStore struct {
	next    domain.TreeStore
	breaker *resilience.Breaker
}

// NewBreakerTreeStore wraps next.
func NewBreakerTreeStore(next domain.TreeStore, breaker *resilience.Breaker) *BreakerTreeStore {
	return &BreakerTreeStore{next: next, breaker: breaker}
}

func (s *BreakerTreeStore) Create(ctx context.Context, tree *domain.Tree) error {
	return s.breaker.Do(func() error { return s.next.Create(ctx, tree) })
}

func (s *BreakerTreeStore) Update(ctx context.Context, tree *domain.Tree) error {
	return s.breaker.Do(func() error { return s.next.Update(ctx, tree) })
}

func (s *BreakerTreeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tree, error) {
	return resilience.Call(s.breaker, func() (*domain.Tree, error) {
		return s.next.GetByID(ctx, id)
	})
}

func (s *BreakerTreeStore) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.Tree, error) {
	return resilience.Call(s.breaker, func() (*domain.Tree, error) {
		return s.next.GetBySessionID(ctx, sessionID)
	})
}

func (s *BreakerTreeStore) List(ctx context.Context, limit int) ([]*domain.Tree, error) {
	return resilience.Call(s.breaker, func() ([]*domain.Tree, error) {
		return s.next.List(ctx, limit)
	})
}

func (s *BreakerTreeStore) CountByStage(ctx context.Context) (map[domain.GrowthStage]int, error) {
	return resilience.Call(s.breaker, func() (map[domain.GrowthStage]int, error) {
		return s.next.CountByStage(ctx)
	})
}
