package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSnapshot is returned by LoadJSON when the cache file does not exist.
var ErrNoSnapshot = errors.New("no scan snapshot")

// WriteJSON serializes r to path with two-space indentation. The document is
// written to a temporary file in the same directory and renamed into place,
// so readers never observe a partial snapshot.
func WriteJSON(path string, r *Result) error {
	out := *r
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".devdash-scan-*.json")
	if err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// LoadJSON reads a snapshot previously written by WriteJSON. A missing file
// yields an error wrapping ErrNoSnapshot.
func LoadJSON(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, path)
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	return &r, nil
}

// LoadOrEmpty reads the snapshot at path, returning an empty result when the
// file does not exist yet.
func LoadOrEmpty(path string) (*Result, error) {
	r, err := LoadJSON(path)
	if errors.Is(err, ErrNoSnapshot) {
		return &Result{Projects: []Project{}}, nil
	}
	return r, err
}

// FindProject returns the first project named name, or nil.
func (r *Result) FindProject(name string) *Project {
	for i := range r.Projects {
		if r.Projects[i].Name == name {
			return &r.Projects[i]
		}
	}
	return nil
}
