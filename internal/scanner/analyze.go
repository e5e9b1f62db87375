package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
)

// minEntries is the number of direct entries a directory needs to count as a project.
const minEntries = 3

// readmeNames are checked case-sensitively.
var readmeNames = []string{"README.md", "README.txt"}

// Analyze inspects a single directory. It returns false when the directory has
// fewer than three direct entries or cannot be listed; that is an exclusion,
// not an error.
func Analyze(dir string) (*Project, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) < minEntries {
		return nil, false
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	p := &Project{
		Name:  filepath.Base(abs),
		Path:  abs,
		Stack: detectStack(abs),
		Files: []string{},
		Size:  dirSize(abs),
	}

	if info, err := os.Stat(abs); err == nil {
		p.LastModified = info.ModTime()
	}

	p.HasGit = exists(filepath.Join(abs, ".git"))
	for _, name := range readmeNames {
		if exists(filepath.Join(abs, name)) {
			p.HasReadme = true
			break
		}
	}

	if m, ok := readManifest(abs); ok {
		applyManifest(p, m)
	}

	p.Type = InferType(p.Stack, p.HasGit)
	p.HealthScore = ComputeHealth(p, hasTestDir(abs))

	return p, true
}

// dirSize sums the sizes of all regular files under dir. Symlinked files are
// counted; symlinked directories are not descended into, so cyclic trees
// terminate. Unreadable entries contribute zero.
func dirSize(dir string) int64 {
	root := dir
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		root = resolved
	}

	var total int64
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		switch {
		case d.Type().IsRegular():
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		case d.Type()&fs.ModeSymlink != 0:
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// isProjectCandidate reports whether a root entry may be analyzed: a
// non-hidden directory, or a symlink to one.
func isProjectCandidate(root string, e fs.DirEntry) bool {
	if len(e.Name()) > 0 && e.Name()[0] == '.' {
		return false
	}
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, e.Name()))
	return err == nil && info.IsDir()
}
