package repositories

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	search TEXT,
	status TEXT,
	record_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS archived_records (
	record_id TEXT PRIMARY KEY,
	export_id TEXT NOT NULL REFERENCES exports(id),
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	archived_at TIMESTAMP NOT NULL
);
`

// EnsureSchema creates the archive tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	return nil
}
