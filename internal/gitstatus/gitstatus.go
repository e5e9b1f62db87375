// Package gitstatus reports uncommitted changes in a git working tree.
package gitstatus

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Status summarizes `git status --short` for one project.
type Status struct {
	HasChanges   bool `json:"has_changes"`
	FilesChanged int  `json:"files_changed"`
}

// Checker runs git with a per-call timeout.
type Checker struct {
	timeout time.Duration
	gitBin  string
}

// NewChecker creates a Checker. A non-positive timeout means no limit
// beyond the caller's context.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{timeout: timeout, gitBin: "git"}
}

// Check returns the working tree status of projectPath. Any failure (not a
// repository, git missing, timeout) yields the zero Status.
func (c *Checker) Check(ctx context.Context, projectPath string) Status {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx, c.gitBin, "-C", projectPath, "status", "--short").Output()
	if err != nil {
		return Status{}
	}
	return parseShort(string(out))
}

// parseShort counts non-blank lines of porcelain short output.
func parseShort(out string) Status {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return Status{}
	}
	n := 0
	for _, line := range strings.Split(trimmed, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return Status{HasChanges: true, FilesChanged: n}
}
