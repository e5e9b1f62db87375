package app

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devdash/internal/config"
	"github.com/blackwell-systems/devdash/internal/output"
	"github.com/blackwell-systems/devdash/internal/scanner"
	"github.com/blackwell-systems/devdash/internal/store"
)

var trackCompare int

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Record a scan in history and compare with earlier runs",
	Long: `Track scans the configured root, refreshes the snapshot file, stores
the run in the history database, and compares it against an earlier run with
trend arrows for average health, project count, and per-project health.`,
	Args: cobra.NoArgs,
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().IntVar(&trackCompare, "compare", 1, "Compare against Nth previous run (1 = most recent)")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if trackCompare < 1 {
		return fmt.Errorf("--compare must be at least 1, got %d", trackCompare)
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	res, err := scanner.Refresh(cmd.Context(), cfg.RootDir, cfg.CacheFile,
		scanner.WithConcurrency(cfg.Scan.Concurrency),
		scanner.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	run := &store.ScanRun{
		ScannedAt:     res.ScannedAt,
		RootDir:       res.RootDir,
		TotalProjects: res.TotalProjects,
		AverageHealth: scanner.AverageHealth(res.Projects),
		Command:       "track",
		Version:       appVersion,
	}
	runID, err := db.RecordRun(run, toSnapshots(res.Projects))
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	current, err := db.GetRun(runID)
	if err != nil {
		return fmt.Errorf("loading current run: %w", err)
	}

	// trackCompare=1 means the immediate predecessor, offset 2 from newest.
	prev, err := db.GetRunN(trackCompare + 1)
	if err != nil {
		return fmt.Errorf("loading previous run: %w", err)
	}

	var diff *store.RunDiff
	if prev != nil {
		prevProjects, err := db.GetProjectSnapshots(prev.ID)
		if err != nil {
			return fmt.Errorf("loading previous projects: %w", err)
		}
		currProjects, err := db.GetProjectSnapshots(current.ID)
		if err != nil {
			return fmt.Errorf("loading current projects: %w", err)
		}
		diff = compareRuns(prev, current, prevProjects, currProjects)
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		result := map[string]any{"run": current}
		if diff != nil {
			result["diff"] = diff
		}
		return writeJSON(w, result)
	}
	renderTrackOutput(w, current, diff)
	return nil
}

func toSnapshots(projects []scanner.Project) []store.ProjectSnapshot {
	out := make([]store.ProjectSnapshot, len(projects))
	for i, p := range projects {
		ps := store.ProjectSnapshot{
			Name:        p.Name,
			Path:        p.Path,
			Type:        string(p.Type),
			Stack:       p.Stack,
			Size:        p.Size,
			HasGit:      p.HasGit,
			HasReadme:   p.HasReadme,
			HealthScore: p.HealthScore,
		}
		if p.PackageName != nil {
			ps.PackageName = *p.PackageName
		}
		if p.Version != nil {
			ps.Version = *p.Version
		}
		out[i] = ps
	}
	return out
}

func direction(delta float64) string {
	switch {
	case delta > 0:
		return "improved"
	case delta < 0:
		return "regressed"
	default:
		return "unchanged"
	}
}

// compareRuns computes run-level and per-project deltas. Projects are
// matched by name; unchanged projects are omitted.
func compareRuns(prev, curr *store.ScanRun, prevProjects, currProjects []store.ProjectSnapshot) *store.RunDiff {
	diff := &store.RunDiff{
		Previous: prev,
		Current:  curr,
		Projects: []store.ProjectDelta{},
	}

	for _, m := range []struct {
		name       string
		prev, curr float64
	}{
		{"average_health", prev.AverageHealth, curr.AverageHealth},
		{"total_projects", float64(prev.TotalProjects), float64(curr.TotalProjects)},
	} {
		d := m.curr - m.prev
		diff.Metrics = append(diff.Metrics, store.MetricDelta{
			Name:      m.name,
			Previous:  m.prev,
			Current:   m.curr,
			Delta:     d,
			Direction: direction(d),
		})
	}

	before := make(map[string]int, len(prevProjects))
	for _, p := range prevProjects {
		before[p.Name] = p.HealthScore
	}
	seen := make(map[string]bool, len(currProjects))
	for _, p := range currProjects {
		seen[p.Name] = true
		old, ok := before[p.Name]
		switch {
		case !ok:
			diff.Projects = append(diff.Projects, store.ProjectDelta{
				Name: p.Name, Current: p.HealthScore, Delta: p.HealthScore, Status: "new",
			})
		case old != p.HealthScore:
			diff.Projects = append(diff.Projects, store.ProjectDelta{
				Name: p.Name, Previous: old, Current: p.HealthScore, Delta: p.HealthScore - old, Status: "changed",
			})
		}
	}
	for _, p := range prevProjects {
		if !seen[p.Name] {
			diff.Projects = append(diff.Projects, store.ProjectDelta{
				Name: p.Name, Previous: p.HealthScore, Delta: -p.HealthScore, Status: "removed",
			})
		}
	}
	sort.Slice(diff.Projects, func(i, j int) bool { return diff.Projects[i].Name < diff.Projects[j].Name })
	return diff
}

func renderTrackOutput(w io.Writer, current *store.ScanRun, diff *store.RunDiff) {
	fmt.Fprintln(w, output.Section("Track: Run Comparison"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Run #%d recorded at %s\n\n", current.ID, current.ScannedAt.Local().Format("2006-01-02 15:04:05"))

	if diff == nil {
		fmt.Fprintln(w, " First run recorded. Run 'devdash track' again later to see trends.")
		return
	}

	fmt.Fprintf(w, " Comparing against run #%d (%s)\n\n",
		diff.Previous.ID, diff.Previous.ScannedAt.Local().Format("2006-01-02 15:04:05"))

	tbl := output.NewTable("Metric", "Previous", "Current", "Delta", "Trend")
	for _, d := range diff.Metrics {
		tbl.AddRow(
			d.Name,
			fmt.Sprintf("%.1f", d.Previous),
			fmt.Sprintf("%.1f", d.Current),
			fmt.Sprintf("%+.1f", d.Delta),
			output.TrendArrow(d.Delta, true),
		)
	}
	fmt.Fprint(w, tbl.Render())

	if len(diff.Projects) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.StyleMuted.Render(" No per-project health changes."))
		return
	}

	fmt.Fprintln(w, output.Section("Project Health Changes"))
	fmt.Fprintln(w)
	ptbl := output.NewTable("Project", "Previous", "Current", "Trend", "Status")
	for _, d := range diff.Projects {
		ptbl.AddRow(
			d.Name,
			fmt.Sprintf("%d", d.Previous),
			fmt.Sprintf("%d", d.Current),
			output.TrendArrow(float64(d.Delta), true),
			d.Status,
		)
	}
	fmt.Fprint(w, ptbl.Render())
}
