package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devdash/internal/config"
	"github.com/blackwell-systems/devdash/internal/output"
	"github.com/blackwell-systems/devdash/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded scan runs",
	Long:  `History lists scan runs recorded by 'devdash track', newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		if runs == nil {
			runs = []store.ScanRun{}
		}
		return writeJSON(w, runs)
	}

	fmt.Fprintln(w, output.Section("Scan History"))
	fmt.Fprintln(w)
	if len(runs) == 0 {
		fmt.Fprintln(w, " No runs recorded. Run 'devdash track' to create one.")
		return nil
	}

	tbl := output.NewTable("Run", "Scanned", "Projects", "Avg Health", "Root")
	for i, r := range runs {
		trend := ""
		if i+1 < len(runs) {
			trend = " " + output.TrendArrow(r.AverageHealth-runs[i+1].AverageHealth, true)
		}
		tbl.AddRow(
			fmt.Sprintf("#%d", r.ID),
			r.ScannedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.TotalProjects),
			output.HealthStyle(r.AverageHealth).Render(fmt.Sprintf("%.1f", r.AverageHealth))+trend,
			r.RootDir,
		)
	}
	fmt.Fprint(w, tbl.Render())
	return nil
}
