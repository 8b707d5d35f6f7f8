package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

const treeColumns = `id, session_id, tree_type, stage, planted_at, completed_at, updated_at`

// SQLiteTreeRepository implements domain.TreeStore using SQLite.
type SQLiteTreeRepository struct {
	db database.Executor
}

// NewSQLiteTreeRepository creates a new SQLite tree repository.
func NewSQLiteTreeRepository(db database.Executor) *SQLiteTreeRepository {
	return &SQLiteTreeRepository{db: db}
}

// Create inserts a tree. Its session row must already exist.
func (r *SQLiteTreeRepository) Create(ctx context.Context, t *domain.Tree) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO trees (`+treeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID.String(), t.SessionID.String(), string(t.Type), string(t.Stage),
		formatTime(t.PlantedAt), formatNullTime(t.CompletedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create tree: %w", err)
	}
	return nil
}

// Update stores the stage and completion time.
func (r *SQLiteTreeRepository) Update(ctx context.Context, t *domain.Tree) error {
	result, err := r.db.Exec(ctx, `
		UPDATE trees SET stage = ?, completed_at = ?, updated_at = ? WHERE id = ?
	`, string(t.Stage), formatNullTime(t.CompletedAt), formatTime(t.UpdatedAt), t.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update tree: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTreeNotFound, t.ID)
	}
	return nil
}

// GetByID retrieves a tree by ID.
func (r *SQLiteTreeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tree, error) {
	return r.getOne(ctx, `SELECT `+treeColumns+` FROM trees WHERE id = ?`, id.String())
}

// GetBySessionID retrieves the tree grown by a session.
func (r *SQLiteTreeRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.Tree, error) {
	return r.getOne(ctx, `SELECT `+treeColumns+` FROM trees WHERE session_id = ?`, sessionID.String())
}

// List returns the newest trees first.
func (r *SQLiteTreeRepository) List(ctx context.Context, limit int) ([]*domain.Tree, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+treeColumns+` FROM trees ORDER BY planted_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	defer rows.Close()

	var trees []*domain.Tree
	for rows.Next() {
		t, err := scanSQLiteTree(rows)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, rows.Err()
}

// CountByStage counts trees per stage.
func (r *SQLiteTreeRepository) CountByStage(ctx context.Context) (map[domain.GrowthStage]int, error) {
	return countByStage(ctx, r.db)
}

func (r *SQLiteTreeRepository) getOne(ctx context.Context, query string, arg any) (*domain.Tree, error) {
	t, err := scanSQLiteTree(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func scanSQLiteTree(row database.Row) (*domain.Tree, error) {
	var (
		id, sessionID, treeType, stage, planted, updated string
		completed                                        sql.NullString
	)
	if err := row.Scan(&id, &sessionID, &treeType, &stage, &planted, &completed, &updated); err != nil {
		return nil, err
	}

	t := &domain.Tree{
		Type:  domain.TreeType(treeType),
		Stage: domain.GrowthStage(stage),
	}
	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid tree id %q: %w", id, err)
	}
	if t.SessionID, err = uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}
	if t.PlantedAt, err = parseTime(planted); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = parseNullTime(completed); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return t, nil
}

// countByStage works unchanged on both SQL dialects.
func countByStage(ctx context.Context, db database.Executor) (map[domain.GrowthStage]int, error) {
	rows, err := db.Query(ctx, `SELECT stage, COUNT(*) FROM trees GROUP BY stage`)
	if err != nil {
		return nil, fmt.Errorf("failed to count trees: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.GrowthStage]int)
	for rows.Next() {
		var (
			stage string
			n     int64
		)
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[domain.GrowthStage(stage)] = int(n)
	}
	return counts, rows.Err()
}
