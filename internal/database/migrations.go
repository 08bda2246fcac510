package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		store TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sections (
		list_id TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		sort_order INTEGER NOT NULL,
		PRIMARY KEY (list_id, id),
		FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE
	)`,
	// section_id is not a foreign key. An item outlives its section and
	// loads into the fallback section.
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		list_id TEXT NOT NULL,
		section_id TEXT NOT NULL,
		text TEXT NOT NULL,
		checked BOOLEAN NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_list
		ON items(list_id, section_id, sort_order)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		list_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		sort_order INTEGER NOT NULL,
		total_time INTEGER,
		ingredients TEXT NOT NULL DEFAULT '[]',
		instructions TEXT NOT NULL DEFAULT '',
		yields TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		host TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_list
		ON recipes(list_id, sort_order)`,
}

// runMigrations creates the database schema if needed
func runMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
