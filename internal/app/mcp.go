package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devdash/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server over the snapshot",
	Long: `Start a Model Context Protocol stdio server that AI assistants can
query for project data. The server exposes four tools:

  list_projects  Projects from the snapshot, filtered by type or min_health
  get_project    One project by directory name
  get_stats      Aggregate statistics
  scan_projects  Rescan the root and refresh the snapshot

Example client configuration:
  {"mcpServers":{"devdash":{"command":"devdash","args":["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return mcp.Serve(contextOrBackground(cmd), appVersion, mcp.Options{
		RootDir:     cfg.RootDir,
		CacheFile:   cfg.CacheFile,
		Concurrency: cfg.Scan.Concurrency,
		Logger:      logger,
	})
}
