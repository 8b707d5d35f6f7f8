package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

const pgTreeColumns = `id::text, session_id::text, tree_type, stage, planted_at, completed_at, updated_at`

// PostgresTreeRepository implements domain.TreeStore using PostgreSQL.
type PostgresTreeRepository struct {
	db database.Executor
}

// NewPostgresTreeRepository creates a new PostgreSQL tree repository.
func NewPostgresTreeRepository(db database.Executor) *PostgresTreeRepository {
	return &PostgresTreeRepository{db: db}
}

// Create inserts a tree. Its session row must already exist.
func (r *PostgresTreeRepository) Create(ctx context.Context, t *domain.Tree) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO trees (id, session_id, tree_type, stage, planted_at, completed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		t.ID.String(), t.SessionID.String(), string(t.Type), string(t.Stage),
		t.PlantedAt, t.CompletedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tree: %w", err)
	}
	return nil
}

// Update stores the stage and completion time.
func (r *PostgresTreeRepository) Update(ctx context.Context, t *domain.Tree) error {
	result, err := r.db.Exec(ctx, `
		UPDATE trees SET stage = $2, completed_at = $3, updated_at = $4 WHERE id = $1
	`, t.ID.String(), string(t.Stage), t.CompletedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update tree: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTreeNotFound, t.ID)
	}
	return nil
}

// GetByID retrieves a tree by ID.
func (r *PostgresTreeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tree, error) {
	return r.getOne(ctx, `SELECT `+pgTreeColumns+` FROM trees WHERE id = $1`, id.String())
}

// GetBySessionID retrieves the tree grown by a session.
func (r *PostgresTreeRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.Tree, error) {
	return r.getOne(ctx, `SELECT `+pgTreeColumns+` FROM trees WHERE session_id = $1`, sessionID.String())
}

// List returns the newest trees first.
func (r *PostgresTreeRepository) List(ctx context.Context, limit int) ([]*domain.Tree, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+pgTreeColumns+` FROM trees ORDER BY planted_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	defer rows.Close()

	var trees []*domain.Tree
	for rows.Next() {
		t, err := scanPostgresTree(rows)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, rows.Err()
}

// CountByStage counts trees per stage.
func (r *PostgresTreeRepository) CountByStage(ctx context.Context) (map[domain.GrowthStage]int, error) {
	return countByStage(ctx, r.db)
}

func (r *PostgresTreeRepository) getOne(ctx context.Context, query string, arg any) (*domain.Tree, error) {
	t, err := scanPostgresTree(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func scanPostgresTree(row database.Row) (*domain.Tree, error) {
	var (
		id, sessionID, treeType, stage string
		t                              domain.Tree
	)
	if err := row.Scan(&id, &sessionID, &treeType, &stage, &t.PlantedAt, &t.CompletedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid tree id %q: %w", id, err)
	}
	if t.SessionID, err = uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}
	t.Type = domain.TreeType(treeType)
	t.Stage = domain.GrowthStage(stage)
	return &t, nil
}
