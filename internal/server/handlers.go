package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/devdash/internal/editor"
	"github.com/blackwell-systems/devdash/internal/gitstatus"
	"github.com/blackwell-systems/devdash/internal/lmstudio"
	"github.com/blackwell-systems/devdash/internal/scanner"
)

// gitWorkers bounds concurrent git invocations per request.
const gitWorkers = 8

// projectView is a cached project enriched with live git state.
type projectView struct {
	scanner.Project
	GitStatus gitstatus.Status `json:"git_status"`
}

type projectsResponse struct {
	ScannedAt     *time.Time    `json:"scanned_at,omitempty"`
	RootDir       string        `json:"root_dir,omitempty"`
	TotalProjects int           `json:"total_projects"`
	Projects      []projectView `json:"projects"`
}

type scanResponse struct {
	Success       bool   `json:"success"`
	ProjectsFound int    `json:"projects_found"`
	Message       string `json:"message"`
}

type queryRequest struct {
	Prompt         string `json:"prompt"`
	ProjectContext string `json:"project_context"`
}

type queryResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

type openEditorRequest struct {
	ProjectPath string `json:"project_path"`
}

type cloudAssistant struct {
	Available   bool   `json:"available"`
	Type        string `json:"type"`
	Model       string `json:"model"`
	RateLimited bool   `json:"rate_limited"`
}

type localAssistant struct {
	Configured bool   `json:"configured"`
	Type       string `json:"type"`
	Connected  bool   `json:"connected"`
	Model      string `json:"model"`
}

type aiStatusResponse struct {
	DesktopCommander cloudAssistant  `json:"desktop_commander"`
	Cline            localAssistant  `json:"cline"`
	LMStudio         lmstudio.Status `json:"lmstudio"`
	Timestamp        time.Time       `json:"timestamp"`
}

func (s *Server) loadSnapshot(w http.ResponseWriter) (*scanner.Result, bool) {
	r, err := scanner.LoadOrEmpty(s.opts.CacheFile)
	if err != nil {
		s.log.WithError(err).Error("loading snapshot")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return r, true
}

func (s *Server) gitStatus(r *http.Request, path string) gitstatus.Status {
	if s.opts.Git == nil {
		return gitstatus.Status{}
	}
	return s.opts.Git.Check(r.Context(), path)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}

	views := make([]projectView, len(snap.Projects))
	var g errgroup.Group
	g.SetLimit(gitWorkers)
	for i := range snap.Projects {
		views[i].Project = snap.Projects[i]
		g.Go(func() error {
			views[i].GitStatus = s.gitStatus(r, snap.Projects[i].Path)
			return nil
		})
	}
	_ = g.Wait()

	resp := projectsResponse{
		RootDir:       snap.RootDir,
		TotalProjects: snap.TotalProjects,
		Projects:      views,
	}
	if !snap.ScannedAt.IsZero() {
		resp.ScannedAt = &snap.ScannedAt
	}
	respondWithJson(w, http.StatusOK, resp)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}
	p := snap.FindProject(name)
	if p == nil {
		respondWithError(w, http.StatusNotFound, "Project not found")
		return
	}
	respondWithJson(w, http.StatusOK, projectView{Project: *p, GitStatus: s.gitStatus(r, p.Path)})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !s.scanMu.TryLock() {
		respondWithError(w, http.StatusConflict, "Scan already in progress")
		return
	}
	defer s.scanMu.Unlock()

	res, err := scanner.Refresh(r.Context(), s.opts.RootDir, s.opts.CacheFile,
		scanner.WithConcurrency(s.opts.Concurrency),
		scanner.WithLogger(s.log),
	)
	if err != nil {
		s.log.WithError(err).Error("scan failed")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJson(w, http.StatusOK, scanResponse{
		Success:       true,
		ProjectsFound: res.TotalProjects,
		Message:       "Scan complete",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w)
	if !ok {
		return
	}
	respondWithJson(w, http.StatusOK, scanner.Summarize(snap.Projects))
}

func (s *Server) handleSystemResources(w http.ResponseWriter, r *http.Request) {
	if s.opts.Sampler == nil {
		respondWithJson(w, http.StatusOK, struct{}{})
		return
	}
	res, err := s.opts.Sampler.Sample(r.Context())
	if err != nil {
		s.log.WithError(err).Warn("sampling system resources")
		respondWithJson(w, http.StatusOK, struct{}{})
		return
	}
	respondWithJson(w, http.StatusOK, res)
}

func (s *Server) handleAIStatus(w http.ResponseWriter, r *http.Request) {
	st := lmstudio.Status{Models: []string{}}
	if s.opts.Assistant != nil {
		st = s.opts.Assistant.Status(r.Context())
	}

	model := "Not loaded"
	if st.ActiveModel != nil {
		model = *st.ActiveModel
	}

	respondWithJson(w, http.StatusOK, aiStatusResponse{
		DesktopCommander: cloudAssistant{
			Available: true,
			Type:      "cloud",
			Model:     "Claude Sonnet 4.5",
		},
		Cline: localAssistant{
			Configured: editor.Configured(s.opts.EditorSettings),
			Type:       "local",
			Connected:  st.Online,
			Model:      model,
		},
		LMStudio:  st,
		Timestamp: s.now(),
	})
}

func (s *Server) handleAIQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		respondWithError(w, http.StatusBadRequest, "Missing prompt")
		return
	}
	if s.opts.Assistant == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No assistant configured")
		return
	}

	reply, err := s.opts.Assistant.Query(r.Context(), req.Prompt, req.ProjectContext)
	switch {
	case errors.Is(err, lmstudio.ErrRateLimited):
		respondWithError(w, http.StatusTooManyRequests, err.Error())
		return
	case err != nil:
		s.log.WithError(err).Error("ai query failed")
		respondWithError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondWithJson(w, http.StatusOK, queryResponse{Success: true, Response: reply})
}

func (s *Server) handleOpenEditor(w http.ResponseWriter, r *http.Request) {
	var req openEditorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProjectPath == "" {
		respondWithError(w, http.StatusBadRequest, "Missing project_path")
		return
	}
	if s.opts.Editor == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No editor configured")
		return
	}
	if err := s.opts.Editor.Open(req.ProjectPath); err != nil {
		s.log.WithError(err).Error("opening editor")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJson(w, http.StatusOK, map[string]any{"success": true, "message": "Opening in editor"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// staticHandler serves the built dashboard from StaticDir at the web root.
func (s *Server) staticHandler() http.Handler {
	if s.opts.StaticDir == "" {
		return http.NotFoundHandler()
	}
	return http.FileServer(staticFS{http.Dir(s.opts.StaticDir)})
}

// staticFS hides directories that have no index.html, so the file server
// never renders a listing.
type staticFS struct {
	fs http.FileSystem
}

func (f staticFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := f.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			file.Close()
			return nil, fs.ErrNotExist
		}
		index.Close()
	}
	return file, nil
}
