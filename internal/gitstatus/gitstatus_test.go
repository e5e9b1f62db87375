package gitstatus

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestParseShort(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want Status
	}{
		{"clean", "", Status{}},
		{"whitespace only", "  \n\n", Status{}},
		{"two files", " M main.go\n?? notes.txt\n", Status{HasChanges: true, FilesChanged: 2}},
		{"blank lines ignored", " M a\n\n D b\n", Status{HasChanges: true, FilesChanged: 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseShort(tc.out); got != tc.want {
				t.Errorf("parseShort(%q) = %+v, want %+v", tc.out, got, tc.want)
			}
		})
	}
}

func TestCheck_NotARepository(t *testing.T) {
	c := NewChecker(2 * time.Second)
	if got := c.Check(context.Background(), t.TempDir()); got != (Status{}) {
		t.Errorf("expected zero status outside a repository, got %+v", got)
	}
}

func TestCheck_MissingGitBinary(t *testing.T) {
	c := &Checker{timeout: time.Second, gitBin: "git-does-not-exist-devdash"}
	if got := c.Check(context.Background(), t.TempDir()); got != (Status{}) {
		t.Errorf("expected zero status, got %+v", got)
	}
}

func TestCheck_DirtyRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	if err := exec.Command("git", "-C", dir, "init", "-q").Run(); err != nil {
		t.Skipf("git init failed: %v", err)
	}
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := NewChecker(5*time.Second).Check(context.Background(), dir)
	want := Status{HasChanges: true, FilesChanged: 2}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
