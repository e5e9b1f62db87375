// Package store provides SQLite persistence for devdash scan history.
package store

import "time"

// ScanRun represents one recorded scan.
type ScanRun struct {
	ID            int64     `json:"id"`
	ScannedAt     time.Time `json:"scanned_at"`
	RootDir       string    `json:"root_dir"`
	TotalProjects int       `json:"total_projects"`
	AverageHealth float64   `json:"average_health"`
	Command       string    `json:"command"`
	Version       string    `json:"version"`
}

// ProjectSnapshot is a project's state within a scan run.
type ProjectSnapshot struct {
	ID          int64    `json:"id"`
	RunID       int64    `json:"run_id"`
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Type        string   `json:"type"`
	Stack       []string `json:"stack"`
	Size        int64    `json:"size"`
	HasGit      bool     `json:"has_git"`
	HasReadme   bool     `json:"has_readme"`
	HealthScore int      `json:"health_score"`
	PackageName string   `json:"package_name,omitempty"`
	Version     string   `json:"version,omitempty"`
}

// MetricDelta represents the change in a run-level metric between two runs.
type MetricDelta struct {
	Name      string  `json:"name"`
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"` // "improved", "regressed", "unchanged"
}

// ProjectDelta is a per-project health change between two runs.
type ProjectDelta struct {
	Name     string `json:"name"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
	Delta    int    `json:"delta"`
	Status   string `json:"status"` // "changed", "new", "removed"
}

// RunDiff holds the comparison between two scan runs.
type RunDiff struct {
	Previous *ScanRun       `json:"previous"`
	Current  *ScanRun       `json:"current"`
	Metrics  []MetricDelta  `json:"metrics"`
	Projects []ProjectDelta `json:"projects"`
}
