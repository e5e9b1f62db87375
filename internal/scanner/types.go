// Package scanner provides project discovery, stack detection, and health scoring.
package scanner

import (
	"slices"
	"time"
)

// ProjectType classifies a scanned directory.
type ProjectType string

// Project types, listed in inference priority order.
const (
	TypeNextJS     ProjectType = "nextjs_app"
	TypeDjango     ProjectType = "django_app"
	TypeFlask      ProjectType = "flask_app"
	TypePython     ProjectType = "python_package"
	TypeReact      ProjectType = "react_app"
	TypeRepository ProjectType = "repository"
	TypeProject    ProjectType = "project"
)

// Project represents one scanned project directory. Records are produced by a
// scan and never modified afterwards.
type Project struct {
	// Name is the directory's base name.
	Name string `json:"name"`

	// Path is the absolute filesystem path to the project root.
	Path string `json:"path"`

	// Type is the inferred project type.
	Type ProjectType `json:"type"`

	// Stack lists detected technology tags in detection order, without duplicates.
	Stack []string `json:"stack"`

	// Files is reserved and always empty.
	Files []string `json:"files"`

	// Size is the recursive sum of regular-file sizes in bytes.
	Size int64 `json:"size"`

	// LastModified is the directory's own modification time.
	LastModified time.Time `json:"last_modified"`

	// HasGit indicates whether a .git entry exists.
	HasGit bool `json:"has_git"`

	// HasReadme indicates whether README.md or README.txt exists.
	HasReadme bool `json:"has_readme"`

	// HealthScore is the computed health score (0-100).
	HealthScore int `json:"health_score"`

	// PackageName and Version come from package.json when it parses.
	PackageName *string `json:"package_name,omitempty"`
	Version     *string `json:"version,omitempty"`
}

// HasTech reports whether tech is part of the project's stack.
func (p *Project) HasTech(tech string) bool {
	for _, s := range p.Stack {
		if s == tech {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	p.Stack = slices.Clone(p.Stack)
	p.Files = slices.Clone(p.Files)
	if p.PackageName != nil {
		name := *p.PackageName
		p.PackageName = &name
	}
	if p.Version != nil {
		v := *p.Version
		p.Version = &v
	}
	return p
}

func cloneProjects(ps []Project) []Project {
	out := make([]Project, len(ps))
	for i := range ps {
		out[i] = ps[i].Clone()
	}
	return out
}

// Result is a complete scan snapshot, as persisted to the cache file.
type Result struct {
	ScannedAt     time.Time `json:"scanned_at"`
	RootDir       string    `json:"root_dir"`
	TotalProjects int       `json:"total_projects"`
	Projects      []Project `json:"projects"`
}

// Stats aggregates a project list for dashboard display.
type Stats struct {
	TotalProjects      int                 `json:"total_projects"`
	AverageHealth      float64             `json:"average_health"`
	TechStackBreakdown map[string]int      `json:"tech_stack_breakdown"`
	ProjectTypes       map[ProjectType]int `json:"project_types"`
	HasGit             int                 `json:"has_git"`
	HasReadme          int                 `json:"has_readme"`
	TotalSizeGB        float64             `json:"total_size_gb"`
}
