package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema. The returned flag reports
// whether the ticket table was created by this call: a fresh schema is
// the sqlite equivalent of a missing document, and only that triggers
// seeding.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) (created bool, err error) {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return false, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	var existing int
	row := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'ticket'")
	if err := row.Scan(&existing); err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}

	// The position column preserves collection order: creation prepends,
	// so newer tickets carry smaller positions.
	schema := `
	CREATE TABLE IF NOT EXISTS ticket (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		assignee TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ticket_status ON ticket(status);
	CREATE INDEX IF NOT EXISTS idx_ticket_position ON ticket(position);
	`
	if _, err := db.Exec(schema); err != nil {
		return false, fmt.Errorf("failed to create schema: %w", err)
	}
	return existing == 0, nil
}
