package database

import (
	"context"
	"database/sql"
)

// Row abstracts pgx.Row and *sql.Row.
type Row interface {
	Scan(dest ...any) error
}

// Rows abstracts pgx.Rows and *sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result reports the rows touched by Exec.
type Result interface {
	RowsAffected() (int64, error)
}

// Executor is what repositories query through, whatever the driver.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Connection is an open database.
type Connection interface {
	Executor
	Close() error
	Ping(ctx context.Context) error
	Driver() Driver
}

// sqlRows adapts *sql.Rows.
type sqlRows struct {
	rows *sql.Rows
}

func (r *sqlRows) Next() bool             { return r.rows.Next() }
func (r *sqlRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *sqlRows) Close() error           { return r.rows.Close() }
func (r *sqlRows) Err() error             { return r.rows.Err() }

// WrapSQLRows wraps sql.Rows to implement the Rows interface.
func WrapSQLRows(r *sql.Rows) Rows {
	return &sqlRows{rows: r}
}
