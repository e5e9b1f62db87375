package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devdash/internal/output"
	"github.com/blackwell-systems/devdash/internal/scanner"
)

var scanFlagConcurrency int

var scanCmd = &cobra.Command{
	Use:   "scan [root] [output]",
	Short: "Scan the project root and refresh the snapshot",
	Long: `Scan examines every non-hidden directory directly under the root,
detects its technology stack, scores its health from 0-100, and writes the
results to the snapshot file.

root defaults to the configured root_dir and output to cache_file.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanFlagConcurrency, "concurrency", 0, "Directories analyzed in parallel (default: scan.concurrency)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root, out := cfg.RootDir, cfg.CacheFile
	if len(args) > 0 {
		root = args[0]
	}
	if len(args) > 1 {
		out = args[1]
	}
	concurrency := cfg.Scan.Concurrency
	if scanFlagConcurrency > 0 {
		concurrency = scanFlagConcurrency
	}

	res, err := scanner.Refresh(cmd.Context(), root, out,
		scanner.WithConcurrency(concurrency),
		scanner.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, res)
	}

	renderProjectTable(w, "Project Scan", res.Projects)
	renderScanSummary(w, res, out)
	return nil
}

// renderProjectTable prints one row per project.
func renderProjectTable(w io.Writer, title string, projects []scanner.Project) {
	fmt.Fprintln(w, output.Section(title))
	fmt.Fprintln(w)

	if len(projects) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" No projects found."))
		return
	}

	tbl := output.NewTable("Health", "Project", "Type", "Stack", "Git", "Modified")
	for _, p := range projects {
		git := output.StyleError.Render("---")
		if p.HasGit {
			git = output.StyleSuccess.Render("yes")
		}
		stack := strings.Join(p.Stack, ",")
		if stack == "" {
			stack = output.StyleMuted.Render("-")
		}
		tbl.AddRow(
			output.HealthStyle(float64(p.HealthScore)).Render(fmt.Sprintf("%5d", p.HealthScore)),
			p.Name,
			string(p.Type),
			stack,
			git,
			formatAge(p.LastModified),
		)
	}
	fmt.Fprint(w, tbl.Render())
}

func renderScanSummary(w io.Writer, res *scanner.Result, out string) {
	fmt.Fprintln(w, output.Section("Summary"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %s %s\n",
		output.StyleLabel.Render("Projects found:"),
		output.StyleValue.Render(fmt.Sprintf("%d", res.TotalProjects)))
	fmt.Fprintf(w, " %s %s\n",
		output.StyleLabel.Render("Average health:"),
		output.ScoreBar(scanner.AverageHealth(res.Projects), 20))
	fmt.Fprintf(w, " %s %s\n",
		output.StyleLabel.Render("Snapshot:"),
		out)
	fmt.Fprintln(w)
}
