package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/devdash/internal/scanner"
)

// ProjectListResult is the list_projects payload.
type ProjectListResult struct {
	Total    int               `json:"total"`
	Projects []scanner.Project `json:"projects"`
}

// ScanResult is the scan_projects payload.
type ScanResult struct {
	ProjectsFound int     `json:"projects_found"`
	AverageHealth float64 `json:"average_health"`
	CacheFile     string  `json:"cache_file"`
}

type toolHandler struct {
	opts Options
	log  logrus.FieldLogger

	scanMu sync.Mutex
}

func newToolHandler(opts Options) *toolHandler {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &toolHandler{opts: opts, log: log}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) load() (*scanner.Result, *mcp.CallToolResult) {
	r, err := scanner.LoadOrEmpty(h.opts.CacheFile)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("loading snapshot: %v", err))
	}
	return r, nil
}

func (h *toolHandler) handleListProjects(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, errRes := h.load()
	if errRes != nil {
		return errRes, nil
	}

	typ := request.GetString("type", "")
	minHealth := request.GetInt("min_health", 0)

	out := ProjectListResult{Projects: []scanner.Project{}}
	for _, p := range r.Projects {
		if typ != "" && string(p.Type) != typ {
			continue
		}
		if p.HealthScore < minHealth {
			continue
		}
		out.Projects = append(out.Projects, p)
	}
	out.Total = len(out.Projects)
	return jsonResult(out)
}

func (h *toolHandler) handleGetProject(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	r, errRes := h.load()
	if errRes != nil {
		return errRes, nil
	}
	p := r.FindProject(name)
	if p == nil {
		return mcp.NewToolResultError(fmt.Sprintf("project %q not found", name)), nil
	}
	return jsonResult(p)
}

func (h *toolHandler) handleGetStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, errRes := h.load()
	if errRes != nil {
		return errRes, nil
	}
	return jsonResult(scanner.Summarize(r.Projects))
}

func (h *toolHandler) handleScanProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !h.scanMu.TryLock() {
		return mcp.NewToolResultError("a scan is already in progress"), nil
	}
	defer h.scanMu.Unlock()

	r, err := scanner.Refresh(ctx, h.opts.RootDir, h.opts.CacheFile,
		scanner.WithConcurrency(h.opts.Concurrency),
		scanner.WithLogger(h.log),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	return jsonResult(ScanResult{
		ProjectsFound: r.TotalProjects,
		AverageHealth: scanner.AverageHealth(r.Projects),
		CacheFile:     h.opts.CacheFile,
	})
}
