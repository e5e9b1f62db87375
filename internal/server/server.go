// Package server exposes the project dashboard as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/devdash/internal/gitstatus"
	"github.com/blackwell-systems/devdash/internal/lmstudio"
	"github.com/blackwell-systems/devdash/internal/sysinfo"
)

// ResourceSampler reports host resource usage.
type ResourceSampler interface {
	Sample(ctx context.Context) (*sysinfo.Resources, error)
}

// Assistant is a local language model endpoint.
type Assistant interface {
	Status(ctx context.Context) lmstudio.Status
	Query(ctx context.Context, prompt, projectContext string) (string, error)
}

// GitChecker reports uncommitted changes for a project directory.
type GitChecker interface {
	Check(ctx context.Context, path string) gitstatus.Status
}

// EditorOpener launches an editor on a project directory.
type EditorOpener interface {
	Open(path string) error
}

// Options configures a Server.
type Options struct {
	RootDir       string
	CacheFile     string
	Concurrency   int
	AllowedOrigin string
	StaticDir     string

	// EditorSettings is the editor's settings file; its presence marks the
	// local assistant as configured.
	EditorSettings string
	AssistantModel string

	Sampler   ResourceSampler
	Assistant Assistant
	Git       GitChecker
	Editor    EditorOpener
	Logger    logrus.FieldLogger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the dashboard API.
type Server struct {
	opts   Options
	log    logrus.FieldLogger
	router *mux.Router
	now    func() time.Time

	// scanMu is held for the duration of a POST /api/scan.
	scanMu sync.Mutex
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout == 0 {
		// Scans and model queries can be slow.
		opts.WriteTimeout = 120 * time.Second
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	s := &Server{
		opts:   opts,
		log:    log,
		router: mux.NewRouter(),
		now:    time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(s.requestLogger)

	r.HandleFunc("/api/projects", s.handleProjects).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{name:.+}", s.handleProject).Methods(http.MethodGet)
	r.HandleFunc("/api/scan", s.handleScan).Methods(http.MethodPost)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/system-resources", s.handleSystemResources).Methods(http.MethodGet)
	r.HandleFunc("/api/ai-status", s.handleAIStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/ai/query", s.handleAIQuery).Methods(http.MethodPost)
	r.HandleFunc("/api/project/open-cline", s.handleOpenEditor).Methods(http.MethodPost)
	r.HandleFunc("/api/project/open-editor", s.handleOpenEditor).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	// Unmatched paths fall through to the dashboard bundle. Both handlers run
	// outside mux's middleware chain.
	r.MethodNotAllowedHandler = s.requestLogger(http.HandlerFunc(s.handleMethodNotAllowed))
	r.NotFoundHandler = s.requestLogger(s.staticHandler())
}

// Handler returns the router wrapped with CORS and response compression.
func (s *Server) Handler() http.Handler {
	corsOptions := []handlers.CORSOption{
		handlers.AllowedHeaders([]string{"Accept-Encoding", "Content-Encoding", "X-Requested-With", "Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions}),
	}
	if s.opts.AllowedOrigin != "" {
		corsOptions = append(corsOptions, handlers.AllowedOrigins([]string{s.opts.AllowedOrigin}))
	}
	return handlers.CompressHandler(handlers.CORS(corsOptions...)(s.router))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    s.opts.ReadTimeout,
		WriteTimeout:   s.opts.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.log.Info("server shut down")
	return nil
}
