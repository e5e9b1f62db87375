package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
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
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the scan history tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			scanned_at     TEXT NOT NULL,
			root_dir       TEXT NOT NULL,
			total_projects INTEGER NOT NULL,
			average_health REAL NOT NULL,
			command        TEXT NOT NULL,
			version        TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS project_snapshots (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       INTEGER NOT NULL REFERENCES scan_runs(id) ON DELETE CASCADE,
			name         TEXT NOT NULL,
			path         TEXT NOT NULL,
			type         TEXT NOT NULL,
			stack        TEXT NOT NULL,
			size         INTEGER NOT NULL,
			has_git      BOOLEAN NOT NULL,
			has_readme   BOOLEAN NOT NULL,
			health_score INTEGER NOT NULL,
			package_name TEXT,
			version      TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_project_snapshots_run ON project_snapshots(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_project_snapshots_path ON project_snapshots(path)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
