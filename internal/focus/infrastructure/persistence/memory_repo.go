package persistence

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// MemorySessionRepository is an in-memory domain.SessionStore.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
}

// NewMemorySessionRepository creates an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[uuid.UUID]*domain.Session)}
}

// Create stores a copy of the session.
func (r *MemorySessionRepository) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID]; exists {
		return fmt.Errorf("failed to create session: duplicate id %s", s.ID)
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

// Update replaces the stored session.
func (r *MemorySessionRepository) Update(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, s.ID)
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

// GetByID returns the session or nil.
func (r *MemorySessionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[id]; ok {
		return s.Clone(), nil
	}
	return nil, nil
}

// QueryCompleted returns closed sessions matching filter, oldest first.
func (r *MemorySessionRepository) QueryCompleted(_ context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	out := r.collect(func(s *domain.Session) bool {
		switch {
		case s.IsOpen():
			return false
		case !s.Completed && !filter.IncludeAbandoned:
			return false
		case len(filter.Kinds) > 0 && !slices.Contains(filter.Kinds, s.Kind):
			return false
		case !filter.From.IsZero() && s.StartTime.Before(filter.From):
			return false
		case !filter.To.IsZero() && !s.StartTime.Before(filter.To):
			return false
		}
		return true
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// QueryByDateRange returns every session that started in [start, end).
func (r *MemorySessionRepository) QueryByDateRange(_ context.Context, start, end time.Time) ([]*domain.Session, error) {
	return r.collect(func(s *domain.Session) bool {
		return !s.StartTime.Before(start) && s.StartTime.Before(end)
	}), nil
}

func (r *MemorySessionRepository) collect(keep func(*domain.Session) bool) []*domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Session
	for _, s := range r.sessions {
		if keep(s) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// MemoryTreeRepository is an in-memory domain.TreeStore.
type MemoryTreeRepository struct {
	mu    sync.RWMutex
	trees map[uuid.UUID]*domain.Tree
}

// NewMemoryTreeRepository creates an empty in-memory tree store.
func NewMemoryTreeRepository() *MemoryTreeRepository {
	return &MemoryTreeRepository{trees: make(map[uuid.UUID]*domain.Tree)}
}

// Create stores a copy of the tree. One tree per session.
func (r *MemoryTreeRepository) Create(_ context.Context, t *domain.Tree) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.trees {
		if existing.ID == t.ID || existing.SessionID == t.SessionID {
			return fmt.Errorf("failed to create tree: session %s already has a tree", t.SessionID)
		}
	}
	r.trees[t.ID] = t.Clone()
	return nil
}

// Update replaces the stored tree.
func (r *MemoryTreeRepository) Update(_ context.Context, t *domain.Tree) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trees[t.ID]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrTreeNotFound, t.ID)
	}
	r.trees[t.ID] = t.Clone()
	return nil
}

// GetByID returns the tree or nil.
func (r *MemoryTreeRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Tree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.trees[id]; ok {
		return t.Clone(), nil
	}
	return nil, nil
}

// GetBySessionID returns the session's tree or nil.
func (r *MemoryTreeRepository) GetBySessionID(_ context.Context, sessionID uuid.UUID) (*domain.Tree, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.trees {
		if t.SessionID == sessionID {
			return t.Clone(), nil
		}
	}
	return nil, nil
}

// List returns up to limit trees, newest first.
func (r *MemoryTreeRepository) List(_ context.Context, limit int) ([]*domain.Tree, error) {
	r.mu.RLock()
	out := make([]*domain.Tree, 0, len(r.trees))
	for _, t := range r.trees {
		out = append(out, t.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].PlantedAt.After(out[j].PlantedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByStage counts trees per stage.
func (r *MemoryTreeRepository) CountByStage(_ context.Context) (map[domain.GrowthStage]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.GrowthStage]int)
	for _, t := range r.trees {
		counts[t.Stage]++
	}
	return counts, nil
}
