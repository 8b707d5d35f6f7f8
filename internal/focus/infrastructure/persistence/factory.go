package persistence

import (
	"fmt"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

// NewStores returns the session and tree stores for the connection's driver.
func NewStores(conn database.Connection) (domain.SessionStore, domain.TreeStore, error) {
	switch conn.Driver() {
	case database.DriverSQLite:
		return NewSQLiteSessionRepository(conn), NewSQLiteTreeRepository(conn), nil
	case database.DriverPostgres:
		return NewPostgresSessionRepository(conn), NewPostgresTreeRepository(conn), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", conn.Driver())
	}
}
