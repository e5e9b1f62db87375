// Package editor opens project directories in an external editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrNoPath is returned when Open is called without a project path.
var ErrNoPath = errors.New("project path required")

// Launcher starts an editor process for a directory.
type Launcher struct {
	// Command is the editor binary, optionally followed by arguments
	// placed before the project path.
	Command string
}

// New returns a Launcher for command.
func New(command string) *Launcher {
	return &Launcher{Command: command}
}

// Open starts the editor on path and returns without waiting for it to exit.
func (l *Launcher) Open(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrNoPath
	}
	fields := strings.Fields(l.Command)
	if len(fields) == 0 {
		return errors.New("no editor command configured")
	}

	args := append(fields[1:], path)
	cmd := exec.Command(fields[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", fields[0], err)
	}
	// Reap the child in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Configured reports whether the editor's settings file exists.
func Configured(settingsPath string) bool {
	if settingsPath == "" {
		return false
	}
	_, err := os.Stat(settingsPath)
	return err == nil
}
