package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the taskdeck tables. Kept idempotent so opening an
// existing database is a no-op.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS priorities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS statuses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		due_date TEXT NOT NULL DEFAULT '',
		category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		parent_id INTEGER REFERENCES tasks(id) ON DELETE CASCADE,
		display_order INTEGER NOT NULL DEFAULT 0,
		is_compact INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS task_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS task_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
}

// defaultPriorities seeds a fresh database, highest first.
var defaultPriorities = []struct {
	name  string
	color string
}{
	{"High", "#F44336"},
	{"Medium", "#FFC107"},
	{"Low", "#4CAF50"},
}

// defaultStatuses seeds a fresh database in display order. Completed is the
// terminal status and must always exist.
var defaultStatuses = []struct {
	name  string
	color string
}{
	{"Not Started", "#F44336"},
	{"In Progress", "#FFC107"},
	{"On Hold", "#9E9E9E"},
	{"Backlog", "#64B5F6"},
	{"Completed", "#4CAF50"},
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if err := seedCatalog(ctx, db, "priorities", func(i int) (string, string) {
		return defaultPriorities[i].name, defaultPriorities[i].color
	}, len(defaultPriorities)); err != nil {
		return err
	}
	return seedCatalog(ctx, db, "statuses", func(i int) (string, string) {
		return defaultStatuses[i].name, defaultStatuses[i].color
	}, len(defaultStatuses))
}

func seedCatalog(ctx context.Context, db *sql.DB, table string, entry func(int) (string, string), n int) error {
	var count int
	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if count > 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		name, color := entry(i)
		if _, err := db.ExecContext(ctx,
			fmt.Sprintf("INSERT INTO %s (name, color, display_order) VALUES (?, ?, ?)", table),
			name, color, i+1,
		); err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
	}
	return nil
}
