// Package database handles the initialization and connection to the SQLite db
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultPath returns ~/.handla/handla.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".handla", "handla.db"), nil
}

// InitDB opens the database at path, creating its directory if needed, and
// brings the schema up to date. An empty path uses DefaultPath.
func InitDB(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite benefits from a single writer connection; it also keeps an
	// in-memory database alive across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []struct {
		name  string
		query string
	}{
		// required for CASCADE deletions
		{"foreign keys", "PRAGMA foreign_keys = ON"},
		{"WAL mode", "PRAGMA journal_mode = WAL"},
		// SQLite will retry for this duration
		{"busy timeout", "PRAGMA busy_timeout = 5000"},
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.query); err != nil {
			slog.Error("failed to configure database", "setting", p.name, "error", err)
			closeDB(db)
			return nil, fmt.Errorf("failed to enable %s: %w", p.name, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing db", "error", err)
	}
}
