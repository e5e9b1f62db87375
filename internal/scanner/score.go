package scanner

import "path/filepath"

// testDirs are the directory names that earn the test bonus.
var testDirs = []string{"tests", "test", "__tests__"}

// ComputeHealth calculates a 0-100 health score for a project.
//
// Scoring breakdown:
//   - Base:                50 points
//   - README present:      10 points
//   - Git repository:      10 points
//   - Manifest version:    10 points
//   - Two or more techs:   10 points
//   - Test directory:      10 points
func ComputeHealth(p *Project, hasTests bool) int {
	score := 50

	if p.HasReadme {
		score += 10
	}

	if p.HasGit {
		score += 10
	}

	if p.Version != nil && *p.Version != "" {
		score += 10
	}

	if len(p.Stack) >= 2 {
		score += 10
	}

	if hasTests {
		score += 10
	}

	return clampScore(score)
}

// clampScore bounds a score to [0, 100].
func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

// hasTestDir reports whether any known test directory exists directly under dir.
func hasTestDir(dir string) bool {
	for _, name := range testDirs {
		if exists(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

// InferType picks the project type from the stack. The first matching rule wins.
func InferType(stack []string, hasGit bool) ProjectType {
	has := make(map[string]bool, len(stack))
	for _, s := range stack {
		has[s] = true
	}

	switch {
	case has["nextjs"]:
		return TypeNextJS
	case has["django"]:
		return TypeDjango
	case has["flask"]:
		return TypeFlask
	case has["python"]:
		return TypePython
	case has["react"]:
		return TypeReact
	case hasGit:
		return TypeRepository
	default:
		return TypeProject
	}
}
