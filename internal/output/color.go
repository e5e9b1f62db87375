// Package output provides styled terminal rendering helpers for devdash.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for healthy projects and improvements.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for unhealthy projects and regressions.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for middling health.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")
)

// Styles provides reusable lipgloss styles.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style
	StyleLabel   lipgloss.Style
	StyleValue   lipgloss.Style
)

func init() {
	applyStyles(false)
}

// noColor tracks whether color output is disabled.
var noColor bool

// applyStyles (re)builds the package-level styles.
func applyStyles(plain bool) {
	base := lipgloss.NewStyle()
	if plain {
		StyleHeader = base
		StyleSuccess = base
		StyleError = base
		StyleWarning = base
		StyleMuted = base
		StyleBold = base
		StyleLabel = base.Width(24)
		StyleValue = base.Width(12)
		return
	}
	StyleHeader = base.Foreground(ColorPrimary).Bold(true)
	StyleSuccess = base.Foreground(ColorSuccess)
	StyleError = base.Foreground(ColorError)
	StyleWarning = base.Foreground(ColorWarning)
	StyleMuted = base.Foreground(ColorMuted)
	StyleBold = base.Bold(true)
	StyleLabel = base.Width(24)
	StyleValue = base.Bold(true).Width(12)
}

// SetNoColor disables or enables color output globally.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(disabled)
}

// AutoColor disables color when forced off or when stdout is not a terminal.
func AutoColor(forceOff bool) {
	if forceOff || !IsTerminal(os.Stdout.Fd()) {
		SetNoColor(true)
	}
}

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// HealthStyle picks a style for a 0-100 health score.
func HealthStyle(score float64) lipgloss.Style {
	switch {
	case score >= 80:
		return StyleSuccess
	case score >= 60:
		return StyleWarning
	default:
		return StyleError
	}
}
