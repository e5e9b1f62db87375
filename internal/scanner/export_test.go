package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// stripTimes zeroes capture-time fields so snapshots compare by value.
func stripTimes(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		p.LastModified = time.Time{}
		out[i] = p
	}
	return out
}

func TestExportJSON_RoundTrip(t *testing.T) {
	root := t.TempDir()
	mkProject(t, root, "api", map[string]string{
		"requirements.txt": "flask",
		"app.py":           "",
		".git/":            "",
		"README.md":        "",
	})
	mkProject(t, root, "ui", map[string]string{
		"package.json":  `{"name":"ui","version":"0.1.0"}`,
		"tsconfig.json": "{}",
		"src/":          "",
	})

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := New(root, WithClock(func() time.Time { return fixed }))
	projects, err := s.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "scan.json")
	if err := s.ExportJSON(out); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TotalProjects != len(projects) {
		t.Errorf("expected total_projects %d, got %d", len(projects), loaded.TotalProjects)
	}
	if loaded.RootDir != s.Root() {
		t.Errorf("expected root_dir %q, got %q", s.Root(), loaded.RootDir)
	}
	if !loaded.ScannedAt.Equal(fixed) {
		t.Errorf("expected scanned_at %v, got %v", fixed, loaded.ScannedAt)
	}
	if !reflect.DeepEqual(stripTimes(loaded.Projects), stripTimes(projects)) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", loaded.Projects, projects)
	}
	for i := range projects {
		if !loaded.Projects[i].LastModified.Equal(projects[i].LastModified) {
			t.Errorf("project %d: last_modified %v != %v", i, loaded.Projects[i].LastModified, projects[i].LastModified)
		}
	}
}

func TestExportJSON_DocumentShape(t *testing.T) {
	root := t.TempDir()
	mkProject(t, root, "plain", map[string]string{"a": "", "b": "", "c": ""})

	s := New(root)
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "scan.json")
	if err := s.ExportJSON(out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"scanned_at", "root_dir", "total_projects", "projects"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	projects := doc["projects"].([]any)
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	p := projects[0].(map[string]any)
	for _, key := range []string{"name", "path", "type", "stack", "files", "size", "last_modified", "has_git", "has_readme", "health_score"} {
		if _, ok := p[key]; !ok {
			t.Errorf("missing project key %q", key)
		}
	}
	if files, ok := p["files"].([]any); !ok || len(files) != 0 {
		t.Errorf("expected empty files array, got %v", p["files"])
	}
	if stack, ok := p["stack"].([]any); !ok || len(stack) != 0 {
		t.Errorf("expected empty stack array, got %v", p["stack"])
	}
	if _, ok := p["version"]; ok {
		t.Error("expected version to be omitted without a manifest")
	}
}

func TestExportJSON_OverwritesExisting(t *testing.T) {
	out := filepath.Join(t.TempDir(), "scan.json")
	if err := os.WriteFile(out, []byte(`{"stale": true, "padding": "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := New(t.TempDir()).ExportJSON(out); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TotalProjects != 0 || len(loaded.Projects) != 0 {
		t.Errorf("expected empty snapshot, got %+v", loaded)
	}
}

func TestExportJSON_UnwritablePath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing-dir", "scan.json")
	if err := New(t.TempDir()).ExportJSON(out); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestLoadJSON_Missing(t *testing.T) {
	_, err := LoadJSON(filepath.Join(t.TempDir(), "none.json"))
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}

	r, err := LoadOrEmpty(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatal(err)
	}
	if r.TotalProjects != 0 || r.Projects == nil {
		t.Errorf("expected empty non-nil project list, got %+v", r)
	}
}

func TestLoadJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadJSON(path)
	if err == nil || errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestResult_FindProject(t *testing.T) {
	r := &Result{Projects: []Project{{Name: "a"}, {Name: "b"}}}
	if p := r.FindProject("b"); p == nil || p.Name != "b" {
		t.Errorf("expected to find b, got %v", p)
	}
	if p := r.FindProject("z"); p != nil {
		t.Errorf("expected nil, got %v", p)
	}
}

// ---------------------------------------------------------------------------
// Summarize
// ---------------------------------------------------------------------------

func TestSummarize(t *testing.T) {
	projects := []Project{
		{Type: TypeReact, Stack: []string{"react", "typescript"}, HealthScore: 80, HasGit: true, Size: bytesPerGB},
		{Type: TypePython, Stack: []string{"python"}, HealthScore: 60, HasReadme: true, Size: bytesPerGB},
		{Type: TypeReact, Stack: []string{"react"}, HealthScore: 70},
	}

	st := Summarize(projects)
	if st.TotalProjects != 3 {
		t.Errorf("expected 3 projects, got %d", st.TotalProjects)
	}
	if st.AverageHealth != 70 {
		t.Errorf("expected average 70, got %v", st.AverageHealth)
	}
	if st.TechStackBreakdown["react"] != 2 || st.TechStackBreakdown["python"] != 1 {
		t.Errorf("unexpected stack breakdown %v", st.TechStackBreakdown)
	}
	if st.ProjectTypes[TypeReact] != 2 {
		t.Errorf("unexpected type counts %v", st.ProjectTypes)
	}
	if st.HasGit != 1 || st.HasReadme != 1 {
		t.Errorf("expected 1 git and 1 readme, got %d and %d", st.HasGit, st.HasReadme)
	}
	if st.TotalSizeGB != 2 {
		t.Errorf("expected 2 GB, got %v", st.TotalSizeGB)
	}
}

func TestSummarize_Empty(t *testing.T) {
	st := Summarize(nil)
	if st.AverageHealth != 0 || st.TotalProjects != 0 {
		t.Errorf("expected zero stats, got %+v", st)
	}
	if st.TechStackBreakdown == nil || st.ProjectTypes == nil {
		t.Error("expected non-nil maps for JSON output")
	}
}

func TestRefresh(t *testing.T) {
	root := t.TempDir()
	mkProject(t, root, "alpha", map[string]string{"README.md": "", "a.go": "", "b.go": ""})
	cache := filepath.Join(t.TempDir(), "scan.json")

	r, err := Refresh(context.Background(), root, cache)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if r.TotalProjects != 1 {
		t.Errorf("expected 1 project, got %d", r.TotalProjects)
	}

	loaded, err := LoadJSON(cache)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if loaded.FindProject("alpha") == nil {
		t.Error("expected alpha in exported snapshot")
	}
}

func TestRefresh_MissingRoot(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "scan.json")
	if _, err := Refresh(context.Background(), filepath.Join(t.TempDir(), "nope"), cache); err == nil {
		t.Fatal("expected error for missing root")
	}
	if _, err := os.Stat(cache); !os.IsNotExist(err) {
		t.Error("cache should not be written when the scan fails")
	}
}
