package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

const sessionColumns = `id, kind, planned_minutes, start_time, end_time, completed, interruptions,
	paused_ms, productivity_rating, audio_track, tree_id, created_at, updated_at`

// SQLiteSessionRepository implements domain.SessionStore using SQLite.
type SQLiteSessionRepository struct {
	db database.Executor
}

// NewSQLiteSessionRepository creates a new SQLite session repository.
func NewSQLiteSessionRepository(db database.Executor) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Create inserts a session.
func (r *SQLiteSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO focus_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID.String(), string(s.Kind), s.PlannedMinutes,
		formatTime(s.StartTime), formatNullTime(s.EndTime), boolToInt64(s.Completed),
		s.Interruptions, s.PausedDuration.Milliseconds(), s.ProductivityRating,
		nullString(s.AudioTrack), nullUUID(s.TreeID), formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Update overwrites the mutable columns of a session.
func (r *SQLiteSessionRepository) Update(ctx context.Context, s *domain.Session) error {
	result, err := r.db.Exec(ctx, `
		UPDATE focus_sessions SET
			end_time = ?, completed = ?, interruptions = ?, paused_ms = ?, productivity_rating = ?,
			audio_track = ?, tree_id = ?, updated_at = ?
		WHERE id = ?
	`,
		formatNullTime(s.EndTime), boolToInt64(s.Completed), s.Interruptions,
		s.PausedDuration.Milliseconds(), s.ProductivityRating,
		nullString(s.AudioTrack), nullUUID(s.TreeID), formatTime(s.UpdatedAt),
		s.ID.String(),
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
func (r *SQLiteSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM focus_sessions WHERE id = ?`, id.String())
	s, err := scanSQLiteSession(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// QueryCompleted returns completed (or, on request, all closed) sessions.
func (r *SQLiteSessionRepository) QueryCompleted(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	var (
		conditions = []string{"end_time IS NOT NULL"}
		args       []any
	)
	if !filter.IncludeAbandoned {
		conditions = append(conditions, "completed = 1")
	}
	if len(filter.Kinds) > 0 {
		placeholders := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		conditions = append(conditions, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, formatTime(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "start_time < ?")
		args = append(args, formatTime(filter.To))
	}

	query := `SELECT ` + sessionColumns + ` FROM focus_sessions WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY start_time ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	return r.query(ctx, query, args...)
}

// QueryByDateRange returns every session that started in [start, end).
func (r *SQLiteSessionRepository) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Session, error) {
	return r.query(ctx, `
		SELECT `+sessionColumns+` FROM focus_sessions
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC
	`, formatTime(start), formatTime(end))
}

func (r *SQLiteSessionRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSQLiteSession(row database.Row) (*domain.Session, error) {
	var (
		id, kind, start, created, updated string
		end, audio, treeID                sql.NullString
		planned, completed, interruptions int64
		pausedMS                          int64
		rating                            float64
	)
	if err := row.Scan(&id, &kind, &planned, &start, &end, &completed, &interruptions,
		&pausedMS, &rating, &audio, &treeID, &created, &updated); err != nil {
		return nil, err
	}

	s := &domain.Session{
		Kind:               domain.SessionKind(kind),
		PlannedMinutes:     int(planned),
		Completed:          completed != 0,
		Interruptions:      int(interruptions),
		PausedDuration:     time.Duration(pausedMS) * time.Millisecond,
		ProductivityRating: rating,
	}
	var err error
	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}
	if s.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	if s.EndTime, err = parseNullTime(end); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if s.TreeID, err = parseNullUUID(treeID); err != nil {
		return nil, err
	}
	if audio.Valid {
		track := audio.String
		s.AudioTrack = &track
	}
	return s, nil
}
