// Package migrations holds the embedded FocusFlow schema.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var schemaFS embed.FS

// Run applies every .up.sql file for the connection's driver in name order.
// The statements are idempotent (IF NOT EXISTS), so Run is safe on every start.
func Run(ctx context.Context, conn database.Connection) error {
	dir := string(conn.Driver())

	files, err := upFiles(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		migration, err := fs.ReadFile(schemaFS, dir+"/"+file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := conn.Exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}
	return nil
}

func upFiles(dir string) ([]string, error) {
	entries, err := schemaFS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
