package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  TEXT NOT NULL,
			source      TEXT NOT NULL,
			version     TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS reminders (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           INTEGER NOT NULL REFERENCES runs(id),
			fired_at         TEXT NOT NULL,
			kind             TEXT NOT NULL,
			severity         TEXT NOT NULL,
			tier             INTEGER NOT NULL,
			duration_seconds REAL NOT NULL,
			message          TEXT NOT NULL,
			suggestions      TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS transitions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           INTEGER NOT NULL REFERENCES runs(id),
			status           TEXT NOT NULL,
			started_at       TEXT NOT NULL,
			ended_at         TEXT NOT NULL,
			duration_minutes REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS responses (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      INTEGER NOT NULL REFERENCES runs(id),
			at          TEXT NOT NULL,
			kind        TEXT,
			action      TEXT NOT NULL,
			minutes     INTEGER
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_reminders_fired ON reminders(fired_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_kind ON reminders(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_ended ON transitions(ended_at)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_at ON responses(at)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
