package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

// SQLStore keeps the preference document in the single-row preferences
// table. It serves local installs that run without Redis.
type SQLStore struct {
	db       database.Connection
	defaults domain.Preferences
}

// NewSQLStore creates a store on an open, migrated connection.
func NewSQLStore(db database.Connection, defaults domain.Preferences) *SQLStore {
	return &SQLStore{db: db, defaults: defaults}
}

// Get returns the stored document, or the defaults when none was saved.
func (s *SQLStore) Get(ctx context.Context) (domain.Preferences, error) {
	query := `SELECT document FROM preferences WHERE id = 1`
	if s.db.Driver() == database.DriverPostgres {
		query = `SELECT document::text FROM preferences WHERE id = 1`
	}

	var doc string
	if err := s.db.QueryRow(ctx, query).Scan(&doc); err != nil {
		if database.IsNoRows(err) {
			return s.defaults, nil
		}
		return s.defaults, fmt.Errorf("failed to read preferences: %w", err)
	}
	return decode([]byte(doc), s.defaults)
}

// Save validates prefs and upserts the document.
func (s *SQLStore) Save(ctx context.Context, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	now := time.Now().UTC()
	if s.db.Driver() == database.DriverPostgres {
		_, err = s.db.Exec(ctx, `
			INSERT INTO preferences (id, document, updated_at) VALUES (1, $1::jsonb, $2)
			ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
		`, string(raw), now)
	} else {
		_, err = s.db.Exec(ctx, `
			INSERT INTO preferences (id, document, updated_at) VALUES (1, ?, ?)
			ON CONFLICT (id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
		`, string(raw), now.Format(time.RFC3339))
	}
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
