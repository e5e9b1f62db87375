// Package mcp exposes the project snapshot to MCP clients over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// Options configures the tool handlers.
type Options struct {
	RootDir     string
	CacheFile   string
	Concurrency int
	Logger      logrus.FieldLogger
}

// NewMCPServer builds the devdash MCP server without starting it.
func NewMCPServer(version string, opts Options) *server.MCPServer {
	s := server.NewMCPServer(
		"devdash",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	h := newToolHandler(opts)

	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List projects from the latest scan snapshot, optionally filtered by type or minimum health score."),
		mcp.WithString("type", mcp.Description("Only return projects of this type (e.g. nextjs_app, django_app, repository).")),
		mcp.WithNumber("min_health", mcp.Description("Only return projects with at least this health score (0-100).")),
	), h.handleListProjects)

	s.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Get one project from the latest scan snapshot by directory name."),
		mcp.WithString("name", mcp.Description("Project directory name."), mcp.Required()),
	), h.handleGetProject)

	s.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Aggregate health, stack, and type counts across the latest scan snapshot."),
	), h.handleGetStats)

	s.AddTool(mcp.NewTool("scan_projects",
		mcp.WithDescription("Rescan the configured root directory and replace the cached snapshot."),
	), h.handleScanProjects)

	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects.
func Serve(_ context.Context, version string, opts Options) error {
	return server.ServeStdio(NewMCPServer(version, opts))
}
