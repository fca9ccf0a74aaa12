package storage

import "database/sql"

// migrateV001 creates the visit-history schema: one row per distinct URL,
// with an index on the lowercase last segment to accelerate the fuzzy-match
// pre-filter. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS urls (
			id            INTEGER PRIMARY KEY,
			full_url      TEXT NOT NULL UNIQUE,
			segments      TEXT NOT NULL,
			last_segment  TEXT NOT NULL,
			score         REAL NOT NULL DEFAULT 1.0,
			last_accessed INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_urls_last_segment
			ON urls(last_segment COLLATE NOCASE)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
