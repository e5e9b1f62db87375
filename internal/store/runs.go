package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// RecordRun inserts a scan run and its project snapshots in one transaction
// and returns the new run ID.
func (db *DB) RecordRun(run *ScanRun, projects []ProjectSnapshot) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(
		`INSERT INTO scan_runs (scanned_at, root_dir, total_projects, average_health, command, version)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ScannedAt.UTC().Format(time.RFC3339Nano), run.RootDir, run.TotalProjects,
		run.AverageHealth, run.Command, run.Version,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting scan run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, p := range projects {
		stack, err := json.Marshal(nonNil(p.Stack))
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(
			`INSERT INTO project_snapshots
			(run_id, name, path, type, stack, size, has_git, has_readme, health_score, package_name, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, p.Name, p.Path, p.Type, string(stack), p.Size, p.HasGit, p.HasReadme,
			p.HealthScore, nullString(p.PackageName), nullString(p.Version),
		); err != nil {
			return 0, fmt.Errorf("inserting project %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// GetRunN returns the Nth most recent run (1 = latest, 2 = previous, etc.),
// or nil if there are fewer than n runs.
func (db *DB) GetRunN(n int) (*ScanRun, error) {
	row := db.conn.QueryRow(
		`SELECT id, scanned_at, root_dir, total_projects, average_health, command, version
		FROM scan_runs ORDER BY id DESC LIMIT 1 OFFSET ?`,
		n-1,
	)
	return scanRun(row)
}

// GetRun returns a run by ID, or nil when it does not exist.
func (db *DB) GetRun(id int64) (*ScanRun, error) {
	row := db.conn.QueryRow(
		`SELECT id, scanned_at, root_dir, total_projects, average_health, command, version
		FROM scan_runs WHERE id = ?`,
		id,
	)
	return scanRun(row)
}

// ListRuns returns up to limit runs, newest first.
func (db *DB) ListRuns(limit int) ([]ScanRun, error) {
	rows, err := db.conn.Query(
		`SELECT id, scanned_at, root_dir, total_projects, average_health, command, version
		FROM scan_runs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []ScanRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetProjectSnapshots returns all project snapshots recorded for a run, in
// insertion order.
func (db *DB) GetProjectSnapshots(runID int64) ([]ProjectSnapshot, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_id, name, path, type, stack, size, has_git, has_readme,
		 health_score, package_name, version
		 FROM project_snapshots WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snapshots []ProjectSnapshot
	for rows.Next() {
		var ps ProjectSnapshot
		var stack string
		var pkgName, version sql.NullString
		if err := rows.Scan(
			&ps.ID, &ps.RunID, &ps.Name, &ps.Path, &ps.Type, &stack, &ps.Size,
			&ps.HasGit, &ps.HasReadme, &ps.HealthScore, &pkgName, &version,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stack), &ps.Stack); err != nil {
			return nil, fmt.Errorf("decoding stack for %s: %w", ps.Name, err)
		}
		ps.PackageName = pkgName.String
		ps.Version = version.String
		snapshots = append(snapshots, ps)
	}
	return snapshots, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*ScanRun, error) {
	var r ScanRun
	var scannedAt string
	err := row.Scan(&r.ID, &scannedAt, &r.RootDir, &r.TotalProjects, &r.AverageHealth, &r.Command, &r.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.ScannedAt, _ = time.Parse(time.RFC3339Nano, scannedAt)
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
