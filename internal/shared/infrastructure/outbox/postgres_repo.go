package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

const pgColumns = `id, event_id::text, routing_key, payload::text, created_at, published_at, next_retry_at,
	retry_count, last_error, dead_lettered_at, dead_letter_reason`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db database.Executor
}

// NewPostgresRepository creates a new PostgreSQL outbox repository.
func NewPostgresRepository(db database.Executor) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save stores a new outbox message.
func (r *PostgresRepository) Save(ctx context.Context, msg *Message) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO outbox (event_id, routing_key, payload, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
		RETURNING id
	`, msg.EventID.String(), msg.RoutingKey, string(msg.Payload), msg.CreatedAt).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to save outbox message: %w", err)
	}
	return nil
}

// GetPending retrieves messages due for relay.
func (r *PostgresRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+pgColumns+` FROM outbox
		WHERE published_at IS NULL AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= $1)
		ORDER BY id
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var (
			msg              Message
			eventID, payload string
		)
		if err := rows.Scan(
			&msg.ID, &eventID, &msg.RoutingKey, &payload, &msg.CreatedAt, &msg.PublishedAt, &msg.NextRetryAt,
			&msg.RetryCount, &msg.LastError, &msg.DeadLetteredAt, &msg.DeadLetterReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		if msg.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, fmt.Errorf("invalid outbox event id %q: %w", eventID, err)
		}
		msg.Payload = []byte(payload)
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// MarkPublished marks a message as relayed.
func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE outbox SET published_at = $2, last_error = NULL WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message published: %w", err)
	}
	return nil
}

// MarkFailed records a relay failure.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = $2, next_retry_at = $3 WHERE id = $1
	`, id, reason, nextRetryAt)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message failed: %w", err)
	}
	return nil
}

// MarkDead dead-letters a message.
func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = $2, dead_lettered_at = $3, dead_letter_reason = $2
		WHERE id = $1
	`, id, reason, at)
	if err != nil {
		return fmt.Errorf("failed to dead-letter outbox message: %w", err)
	}
	return nil
}

// DeleteRelayed removes old relayed messages.
func (r *PostgresRepository) DeleteRelayed(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete relayed outbox messages: %w", err)
	}
	return result.RowsAffected()
}
