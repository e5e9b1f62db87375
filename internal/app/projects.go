package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devdash/internal/scanner"
)

var (
	projectsFlagSort      string
	projectsFlagType      string
	projectsFlagTech      string
	projectsFlagMinHealth int
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects from the snapshot",
	Long: `Projects lists the projects recorded in the last scan snapshot
without rescanning. Use 'devdash scan' to refresh it.`,
	Args: cobra.NoArgs,
	RunE: runProjects,
}

func init() {
	projectsCmd.Flags().StringVar(&projectsFlagSort, "sort", "health", "Sort by: health, name, size, modified")
	projectsCmd.Flags().StringVar(&projectsFlagType, "type", "", "Only show projects of this type (e.g. nextjs_app)")
	projectsCmd.Flags().StringVar(&projectsFlagTech, "tech", "", "Only show projects using this technology (e.g. docker)")
	projectsCmd.Flags().IntVar(&projectsFlagMinHealth, "min-health", 0, "Only show projects with health >= this value")
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := scanner.LoadOrEmpty(cfg.CacheFile)
	if err != nil {
		return err
	}

	projects := filterProjects(snap.Projects, projectsFlagType, projectsFlagTech, projectsFlagMinHealth)
	if err := sortProjects(projects, projectsFlagSort); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, projects)
	}
	renderProjectTable(w, fmt.Sprintf("Projects (%d of %d)", len(projects), len(snap.Projects)), projects)
	return nil
}

// filterProjects keeps projects matching every non-empty criterion.
func filterProjects(projects []scanner.Project, typ, tech string, minHealth int) []scanner.Project {
	out := make([]scanner.Project, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		if typ != "" && string(p.Type) != typ {
			continue
		}
		if tech != "" && !p.HasTech(tech) {
			continue
		}
		if p.HealthScore < minHealth {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func sortProjects(projects []scanner.Project, by string) error {
	var less func(a, b scanner.Project) bool
	switch by {
	case "health", "":
		less = func(a, b scanner.Project) bool { return a.HealthScore > b.HealthScore }
	case "name":
		less = func(a, b scanner.Project) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "size":
		less = func(a, b scanner.Project) bool { return a.Size > b.Size }
	case "modified":
		less = func(a, b scanner.Project) bool { return a.LastModified.After(b.LastModified) }
	default:
		return fmt.Errorf("unknown sort key %q (want health, name, size, or modified)", by)
	}
	sort.SliceStable(projects, func(i, j int) bool { return less(projects[i], projects[j]) })
	return nil
}
