package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devmcp "github.com/blackwell-systems/devdash/internal/mcp"
	"github.com/blackwell-systems/devdash/internal/scanner"
)

func writeCache(t *testing.T, projects ...scanner.Project) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project_scan.json")
	require.NoError(t, scanner.WriteJSON(path, &scanner.Result{
		ScannedAt:     time.Now(),
		RootDir:       "/code",
		TotalProjects: len(projects),
		Projects:      projects,
	}))
	return path
}

func callTool(t *testing.T, opts devmcp.Options, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := devmcp.NewMCPServer("test", opts)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "tool failures are reported in the result, not as errors")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func sampleProjects() []scanner.Project {
	return []scanner.Project{
		{Name: "api", Type: scanner.TypeDjango, Stack: []string{"python", "django"}, HealthScore: 80},
		{Name: "web", Type: scanner.TypeNextJS, Stack: []string{"node", "nextjs"}, HealthScore: 100},
		{Name: "notes", Type: scanner.TypeProject, Stack: []string{}, HealthScore: 50},
	}
}

func TestListProjects_All(t *testing.T) {
	res := callTool(t, devmcp.Options{CacheFile: writeCache(t, sampleProjects()...)}, "list_projects", nil)
	require.False(t, res.IsError)

	var out devmcp.ProjectListResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, "api", out.Projects[0].Name)
}

func TestListProjects_Filters(t *testing.T) {
	cache := writeCache(t, sampleProjects()...)

	t.Run("by type", func(t *testing.T) {
		res := callTool(t, devmcp.Options{CacheFile: cache}, "list_projects", map[string]any{"type": "nextjs_app"})
		var out devmcp.ProjectListResult
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		require.Equal(t, 1, out.Total)
		assert.Equal(t, "web", out.Projects[0].Name)
	})

	t.Run("by min health", func(t *testing.T) {
		res := callTool(t, devmcp.Options{CacheFile: cache}, "list_projects", map[string]any{"min_health": 80.0})
		var out devmcp.ProjectListResult
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		assert.Equal(t, 2, out.Total)
	})
}

func TestListProjects_NoCache(t *testing.T) {
	res := callTool(t, devmcp.Options{CacheFile: filepath.Join(t.TempDir(), "missing.json")}, "list_projects", nil)
	require.False(t, res.IsError)

	var out devmcp.ProjectListResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, 0, out.Total)
	assert.NotNil(t, out.Projects)
}

func TestGetProject(t *testing.T) {
	cache := writeCache(t, sampleProjects()...)

	res := callTool(t, devmcp.Options{CacheFile: cache}, "get_project", map[string]any{"name": "api"})
	require.False(t, res.IsError)
	var p scanner.Project
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &p))
	assert.Equal(t, scanner.TypeDjango, p.Type)

	res = callTool(t, devmcp.Options{CacheFile: cache}, "get_project", map[string]any{"name": "ghost"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")

	res = callTool(t, devmcp.Options{CacheFile: cache}, "get_project", map[string]any{})
	assert.True(t, res.IsError)
}

func TestGetStats(t *testing.T) {
	res := callTool(t, devmcp.Options{CacheFile: writeCache(t, sampleProjects()...)}, "get_stats", nil)
	require.False(t, res.IsError)

	var st scanner.Stats
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &st))
	assert.Equal(t, 3, st.TotalProjects)
	assert.InDelta(t, 76.67, st.AverageHealth, 0.01)
	assert.Equal(t, 1, st.ProjectTypes[scanner.TypeNextJS])
}

func TestGetStats_CorruptCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "scan.json")
	require.NoError(t, os.WriteFile(cache, []byte("not json"), 0o644))

	res := callTool(t, devmcp.Options{CacheFile: cache}, "get_stats", nil)
	assert.True(t, res.IsError)
}

func TestScanProjects(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "svc")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	for _, f := range []string{"README.md", "go.mod"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
	}
	cache := filepath.Join(t.TempDir(), "scan.json")

	res := callTool(t, devmcp.Options{RootDir: root, CacheFile: cache}, "scan_projects", nil)
	require.False(t, res.IsError, resultText(t, res))

	var out devmcp.ScanResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, 1, out.ProjectsFound)
	assert.Equal(t, 70.0, out.AverageHealth)

	snap, err := scanner.LoadJSON(cache)
	require.NoError(t, err)
	assert.NotNil(t, snap.FindProject("svc"))
}

func TestScanProjects_MissingRoot(t *testing.T) {
	opts := devmcp.Options{RootDir: filepath.Join(t.TempDir(), "none"), CacheFile: filepath.Join(t.TempDir(), "scan.json")}

	res := callTool(t, opts, "scan_projects", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "scan failed")
}
