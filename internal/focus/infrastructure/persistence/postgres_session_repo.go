package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

const pgSessionColumns = `id::text, kind, planned_minutes, start_time, end_time, completed, interruptions,
	paused_ms, productivity_rating, audio_track, tree_id::text, created_at, updated_at`

// PostgresSessionRepository implements domain.SessionStore using PostgreSQL.
type PostgresSessionRepository struct {
	db database.Executor
}

// NewPostgresSessionRepository creates a new PostgreSQL session repository.
func NewPostgresSessionRepository(db database.Executor) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Create inserts a session.
func (r *PostgresSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO focus_sessions (
			id, kind, planned_minutes, start_time, end_time, completed, interruptions,
			paused_ms, productivity_rating, audio_track, tree_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		s.ID.String(), string(s.Kind), s.PlannedMinutes,
		s.StartTime, s.EndTime, s.Completed,
		s.Interruptions, s.PausedDuration.Milliseconds(), s.ProductivityRating, s.AudioTrack,
		nullUUID(s.TreeID), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of a session.
func (r *PostgresSessionRepository) Update(ctx context.Context, s *domain.Session) error {
	result, err := r.db.Exec(ctx, `
		UPDATE focus_sessions SET
			end_time = $2, completed = $3, interruptions = $4, paused_ms = $5,
			productivity_rating = $6, audio_track = $7, tree_id = $8, updated_at = $9
		WHERE id = $1
	`,
		s.ID.String(), s.EndTime, s.Completed, s.Interruptions, s.PausedDuration.Milliseconds(),
		s.ProductivityRating, s.AudioTrack, nullUUID(s.TreeID), s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, s.ID)
	}
	return nil
}

// GetByID retrieves a session by ID.
func (r *PostgresSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT `+pgSessionColumns+` FROM focus_sessions WHERE id = $1`, id.String())
	s, err := scanPostgresSession(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// QueryCompleted returns completed (or, on request, all closed) sessions.
func (r *PostgresSessionRepository) QueryCompleted(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	var (
		conditions = []string{"end_time IS NOT NULL"}
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeAbandoned {
		conditions = append(conditions, "completed")
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}
		conditions = append(conditions, "kind = ANY("+arg(pq.Array(kinds))+")")
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "start_time >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "start_time < "+arg(filter.To))
	}

	query := `SELECT ` + pgSessionColumns + ` FROM focus_sessions WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY start_time ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}
	return r.query(ctx, query, args...)
}

// QueryByDateRange returns every session that started in [start, end).
func (r *PostgresSessionRepository) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Session, error) {
	return r.query(ctx, `
		SELECT `+pgSessionColumns+` FROM focus_sessions
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC
	`, start, end)
}

func (r *PostgresSessionRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanPostgresSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanPostgresSession(row database.Row) (*domain.Session, error) {
	var (
		id, kind string
		treeID   *string
		pausedMS int64
		s        domain.Session
	)
	if err := row.Scan(&id, &kind, &s.PlannedMinutes, &s.StartTime, &s.EndTime, &s.Completed,
		&s.Interruptions, &pausedMS, &s.ProductivityRating, &s.AudioTrack, &treeID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}
	s.Kind = domain.SessionKind(kind)
	s.PausedDuration = time.Duration(pausedMS) * time.Millisecond
	if treeID != nil {
		parsed, err := uuid.Parse(*treeID)
		if err != nil {
			return nil, fmt.Errorf("invalid tree id %q: %w", *treeID, err)
		}
		s.TreeID = &parsed
	}
	return &s, nil
}
