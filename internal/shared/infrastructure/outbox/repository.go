package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

// Repository persists outbox messages.
type Repository interface {
	// Save stores a new message and sets its ID.
	Save(ctx context.Context, msg *Message) error

	// GetPending returns messages that are neither relayed nor dead and
	// whose retry time has come, oldest first.
	GetPending(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	// MarkPublished records a successful relay.
	MarkPublished(ctx context.Context, id int64, at time.Time) error

	// MarkFailed records a failed relay and when to try again.
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error

	// MarkDead stops retrying a message.
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// DeleteRelayed removes messages relayed before the cutoff.
	DeleteRelayed(ctx context.Context, before time.Time) (int64, error)
}

// NewRepository returns the outbox repository for the connection's driver.
func NewRepository(conn database.Connection) (Repository, error) {
	switch conn.Driver() {
	case database.DriverSQLite:
		return NewSQLiteRepository(conn), nil
	case database.DriverPostgres:
		return NewPostgresRepository(conn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", conn.Driver())
	}
}
