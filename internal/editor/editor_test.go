package editor

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestOpen_EmptyPath(t *testing.T) {
	l := New("true")
	if err := l.Open("  "); !errors.Is(err, ErrNoPath) {
		t.Errorf("expected ErrNoPath, got %v", err)
	}
}

func TestOpen_NoCommand(t *testing.T) {
	l := New("")
	if err := l.Open(t.TempDir()); err == nil {
		t.Error("expected error for empty editor command")
	}
}

func TestOpen_MissingBinary(t *testing.T) {
	l := New("devdash-editor-does-not-exist")
	if err := l.Open(t.TempDir()); err == nil {
		t.Error("expected error for missing editor binary")
	}
}

func TestOpen_StartsCommand(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	l := New("true --flag")
	if err := l.Open(t.TempDir()); err != nil {
		t.Fatalf("Open: %v", err)
	}
}

func TestConfigured(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.json")

	if Configured(settings) {
		t.Error("expected false before settings file exists")
	}
	if err := os.WriteFile(settings, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !Configured(settings) {
		t.Error("expected true once settings file exists")
	}
	if Configured("") {
		t.Error("expected false for empty path")
	}
}
