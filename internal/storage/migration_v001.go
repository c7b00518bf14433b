package storage

import "database/sql"

// migrateV001 creates the long-format history table. Every statement uses
// IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history_rows (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			search_key       TEXT NOT NULL,
			search_time      TEXT NOT NULL,
			keyword          TEXT NOT NULL DEFAULT '',
			article_index    INTEGER NOT NULL DEFAULT 0,
			title            TEXT NOT NULL DEFAULT '',
			url              TEXT NOT NULL DEFAULT '',
			snippet          TEXT NOT NULL DEFAULT '',
			ai_summary       TEXT NOT NULL DEFAULT '',
			related_keywords TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_history_rows_key ON history_rows(search_key)`,
		`CREATE INDEX IF NOT EXISTS idx_history_rows_time ON history_rows(search_time DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV002 adds the article publish date. Rows written before it read
// back with an empty date.
func migrateV002(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE history_rows ADD COLUMN published_date TEXT NOT NULL DEFAULT ''`)
	return err
}
