package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

// sqliteTimeLayout is fixed width so that text comparison orders by time.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteColumns = `id, event_id, routing_key, payload, created_at, published_at, next_retry_at,
	retry_count, last_error, dead_lettered_at, dead_letter_reason`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db database.Executor
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db database.Executor) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save stores a new outbox message.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO outbox (event_id, routing_key, payload, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, msg.EventID.String(), msg.RoutingKey, string(msg.Payload), formatTime(msg.CreatedAt)).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to save outbox message: %w", err)
	}
	return nil
}

// GetPending retrieves messages due for relay.
func (r *SQLiteRepository) GetPending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sqliteColumns+` FROM outbox
		WHERE published_at IS NULL AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?
	`, formatTime(now), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkPublished marks a message as relayed.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE outbox SET published_at = ?, last_error = NULL WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message published: %w", err)
	}
	return nil
}

// MarkFailed records a relay failure.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?
	`, reason, formatTime(nextRetryAt), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message failed: %w", err)
	}
	return nil
}

// MarkDead dead-letters a message.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?
	`, reason, formatTime(at), reason, id)
	if err != nil {
		return fmt.Errorf("failed to dead-letter outbox message: %w", err)
	}
	return nil
}

// DeleteRelayed removes old relayed messages.
func (r *SQLiteRepository) DeleteRelayed(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?
	`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("failed to delete relayed outbox messages: %w", err)
	}
	return result.RowsAffected()
}

func scanSQLiteMessage(rows database.Rows) (*Message, error) {
	var (
		msg                                  Message
		eventID, payload, createdAt          string
		publishedAt, nextRetryAt, deadLetter sql.NullString
		lastError, deadReason                sql.NullString
	)
	if err := rows.Scan(
		&msg.ID, &eventID, &msg.RoutingKey, &payload, &createdAt, &publishedAt, &nextRetryAt,
		&msg.RetryCount, &lastError, &deadLetter, &deadReason,
	); err != nil {
		return nil, fmt.Errorf("failed to scan outbox message: %w", err)
	}

	var err error
	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("invalid outbox event id %q: %w", eventID, err)
	}
	msg.Payload = []byte(payload)
	if msg.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid outbox created_at %q: %w", createdAt, err)
	}
	if msg.PublishedAt, err = parseNullTime(publishedAt); err != nil {
		return nil, err
	}
	if msg.NextRetryAt, err = parseNullTime(nextRetryAt); err != nil {
		return nil, err
	}
	if msg.DeadLetteredAt, err = parseNullTime(deadLetter); err != nil {
		return nil, err
	}
	msg.LastError = nullString(lastError)
	msg.DeadLetterReason = nullString(deadReason)
	return &msg, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(sqliteTimeLayout, ns.String)
	if err != nil {
		return nil, fmt.Errorf("invalid outbox time %q: %w", ns.String, err)
	}
	return &t, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
