package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds database configuration.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver Driver
	// URL is the PostgreSQL connection string, or a sqlite:// / file path.
	URL string
	// SQLitePath overrides the local database file. Defaults to ~/.focusflow/focusflow.db.
	SQLitePath string
	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// ConnectFunc opens a connection for one driver.
type ConnectFunc func(ctx context.Context, cfg Config) (Connection, error)

var connectors = map[Driver]ConnectFunc{}

// RegisterDriver makes a driver available to NewConnection. The sqlite and
// postgres sub-packages register themselves from init.
func RegisterDriver(driver Driver, fn ConnectFunc) {
	connectors[driver] = fn
}

// NewConnection opens a connection for the configured or detected driver.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" {
		cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
	}

	connect, ok := connectors[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return connect(ctx, cfg)
}

// SQLitePathFromURL turns sqlite:///x.db or file:x.db into a path. An empty
// URL gives the default path.
func SQLitePathFromURL(url string) string {
	switch {
	case url == "":
		return DefaultSQLitePath()
	case strings.HasPrefix(url, "sqlite://"):
		return strings.TrimPrefix(url, "sqlite://")
	case strings.HasPrefix(url, "file:"):
		return strings.TrimPrefix(url, "file:")
	default:
		return url
	}
}

// DefaultSQLitePath returns ~/.focusflow/focusflow.db.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".focusflow", "focusflow.db")
}

// EnsureDirectory creates the parent directory for a file path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
