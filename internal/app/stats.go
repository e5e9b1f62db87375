package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devdash/internal/output"
	"github.com/blackwell-systems/devdash/internal/scanner"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics",
	Long: `Stats aggregates the last scan snapshot: average health, how many
projects use each technology, project type counts, and total size.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := scanner.LoadOrEmpty(cfg.CacheFile)
	if err != nil {
		return err
	}
	stats := scanner.Summarize(snap.Projects)

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, stats)
	}

	fmt.Fprintln(w, output.Section("Statistics"))
	fmt.Fprintln(w)
	renderStatsSummary(w, snap, stats)

	if len(stats.TechStackBreakdown) > 0 {
		tbl := output.NewTable("Technology", "Projects")
		for _, e := range sortedCounts(stats.TechStackBreakdown) {
			tbl.AddRow(e.Name, fmt.Sprintf("%d", e.Count))
		}
		fmt.Fprint(w, tbl.Render())
		fmt.Fprintln(w)
	}

	if len(stats.ProjectTypes) > 0 {
		tbl := output.NewTable("Type", "Projects")
		for _, e := range sortedCounts(stats.ProjectTypes) {
			tbl.AddRow(e.Name, fmt.Sprintf("%d", e.Count))
		}
		fmt.Fprint(w, tbl.Render())
	}
	return nil
}
