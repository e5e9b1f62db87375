// Package app contains the Cobra command tree for devdash.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devdash/internal/config"
	"github.com/blackwell-systems/devdash/internal/output"
	"github.com/blackwell-systems/devdash/internal/scanner"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

// logger receives diagnostics on stderr. Command output goes to stdout.
var logger = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "devdash",
	Short: "Local development project dashboard",
	Long: `devdash scans a directory of development projects, detects each
project's technology stack, scores its health, and serves the results as a
local dashboard API.

Run 'devdash' with no arguments to see a summary of the last scan.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runDashboard,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/devdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

func setup(cmd *cobra.Command, args []string) error {
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	output.AutoColor(flagNoColor)
	return nil
}

// loadConfig loads configuration and applies the output.color preference.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	snap, err := scanner.LoadJSON(cfg.CacheFile)
	if errors.Is(err, scanner.ErrNoSnapshot) {
		if flagJSON {
			return writeJSON(w, scanner.Summarize(nil))
		}
		fmt.Fprintln(w, "devdash", appVersion)
		fmt.Fprintln(w)
		fmt.Fprintf(w, " No scan snapshot at %s. Run 'devdash scan' to create one.\n", cfg.CacheFile)
		printCommandHelp(w)
		return nil
	}
	if err != nil {
		return err
	}

	stats := scanner.Summarize(snap.Projects)
	if flagJSON {
		return writeJSON(w, stats)
	}

	fmt.Fprintln(w, output.Section("Dev Dashboard"))
	fmt.Fprintln(w)
	renderStatsSummary(w, snap, stats)
	renderTopStack(w, stats, 5)
	printCommandHelp(w)
	return nil
}

func renderStatsSummary(w io.Writer, snap *scanner.Result, stats scanner.Stats) {
	label := func(s string) string { return output.StyleLabel.Render(s) }
	value := func(s string) string { return output.StyleValue.Render(s) }

	fmt.Fprintf(w, " %s %s\n", label("Root:"), snap.RootDir)
	if !snap.ScannedAt.IsZero() {
		fmt.Fprintf(w, " %s %s\n", label("Last scan:"), formatAge(snap.ScannedAt))
	}
	fmt.Fprintf(w, " %s %s\n", label("Projects:"), value(fmt.Sprintf("%d", stats.TotalProjects)))
	fmt.Fprintf(w, " %s %s\n", label("Average health:"), output.ScoreBar(stats.AverageHealth, 20))
	fmt.Fprintf(w, " %s %s\n", label("Under git:"), value(fmt.Sprintf("%d", stats.HasGit)))
	fmt.Fprintf(w, " %s %s\n", label("With README:"), value(fmt.Sprintf("%d", stats.HasReadme)))
	fmt.Fprintf(w, " %s %s\n", label("Total size:"), value(fmt.Sprintf("%.2f GB", stats.TotalSizeGB)))
	fmt.Fprintln(w)
}

type countEntry struct {
	Name  string
	Count int
}

// sortedCounts orders a count map by descending count, then name.
func sortedCounts[K ~string](m map[K]int) []countEntry {
	out := make([]countEntry, 0, len(m))
	for k, v := range m {
		out = append(out, countEntry{Name: string(k), Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func renderTopStack(w io.Writer, stats scanner.Stats, n int) {
	entries := sortedCounts(stats.TechStackBreakdown)
	if len(entries) == 0 {
		return
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s (%d)", e.Name, e.Count)
	}
	fmt.Fprintf(w, " %s %s\n\n", output.StyleLabel.Render("Top stack:"), strings.Join(parts, ", "))
}

func printCommandHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, " Commands:")
	fmt.Fprintln(w, "  scan      Scan the project root and refresh the snapshot")
	fmt.Fprintln(w, "  projects  List projects from the snapshot")
	fmt.Fprintln(w, "  stats     Show aggregate statistics")
	fmt.Fprintln(w, "  track     Record a scan in history and compare with earlier runs")
	fmt.Fprintln(w, "  history   List recorded scan runs")
	fmt.Fprintln(w, "  serve     Run the dashboard HTTP API")
	fmt.Fprintln(w, "  mcp       Run an MCP stdio server over the snapshot")
}

// formatAge renders t relative to now, e.g. "3h ago".
func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
