package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Errors returned by Update when the row does not exist.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTreeNotFound    = errors.New("tree not found")
)

// SessionFilter narrows QueryCompleted. Zero values mean "no bound"; From
// is inclusive and To exclusive on the start time.
type SessionFilter struct {
	Kinds []SessionKind
	From  time.Time
	To    time.Time
	Limit int

	// IncludeAbandoned also returns sessions closed without completing.
	IncludeAbandoned bool
}

// SessionStore persists sessions. Reads of a missing row return (nil, nil).
type SessionStore interface {
	// Create inserts a new open session.
	Create(ctx context.Context, session *Session) error

	// Update overwrites an existing session.
	Update(ctx context.Context, session *Session) error

	// GetByID retrieves a session by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// QueryCompleted returns completed sessions matching the filter, oldest
	// first. Open sessions are never returned.
	QueryCompleted(ctx context.Context, filter SessionFilter) ([]*Session, error)

	// QueryByDateRange returns sessions that started in [start, end), oldest first.
	QueryByDateRange(ctx context.Context, start, end time.Time) ([]*Session, error)
}

// TreeStore persists trees. Reads of a missing row return (nil, nil).
type TreeStore interface {
	Create(ctx context.Context, tree *Tree) error
	Update(ctx context.Context, tree *Tree) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tree, error)
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*Tree, error)

	// List returns the most recently planted trees first.
	List(ctx context.Context, limit int) ([]*Tree, error)

	// CountByStage counts trees per growth stage.
	CountByStage(ctx context.Context) (map[GrowthStage]int, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }
