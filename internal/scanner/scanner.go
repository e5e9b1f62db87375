package scanner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Scanner scans the direct children of a root directory for projects and
// retains the most recent snapshot.
type Scanner struct {
	root        string
	concurrency int
	log         logrus.FieldLogger
	now         func() time.Time
	result      *Result
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConcurrency sets how many directories are analyzed in parallel.
// Values below 1 mean sequential analysis.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

// WithLogger sets the logger used for per-project progress.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scanner) {
		s.log = l
	}
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// New creates a Scanner bound to root.
func New(root string, opts ...Option) *Scanner {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Scanner{
		root:        root,
		concurrency: 1,
		log:         discard,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the absolute root directory.
func (s *Scanner) Root() string {
	return s.root
}

// Scan analyzes every qualifying child of the root and replaces the retained
// snapshot. Projects are returned in directory-listing order. Only a failure
// to list the root, or ctx cancellation, is an error.
func (s *Scanner) Scan(ctx context.Context) ([]Project, error) {
	s.log.WithField("root", s.root).Info("scanning")

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading root %s: %w", s.root, err)
	}

	var candidates []string
	for _, e := range entries {
		if isProjectCandidate(s.root, e) {
			candidates = append(candidates, filepath.Join(s.root, e.Name()))
		}
	}

	// Slots keep listing order regardless of completion order.
	slots := make([]*Project, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, dir := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if p, ok := Analyze(dir); ok {
				slots[i] = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.root, err)
	}

	projects := make([]Project, 0, len(slots))
	for _, p := range slots {
		if p == nil {
			continue
		}
		s.log.WithFields(logrus.Fields{
			"name": p.Name,
			"type": p.Type,
		}).Debug("found project")
		projects = append(projects, *p)
	}

	s.result = &Result{
		ScannedAt:     s.now(),
		RootDir:       s.root,
		TotalProjects: len(projects),
		Projects:      projects,
	}
	return cloneProjects(projects), nil
}

// Projects returns a copy of the retained project list, or nil before the first scan.
func (s *Scanner) Projects() []Project {
	if s.result == nil {
		return nil
	}
	return cloneProjects(s.result.Projects)
}

// Result returns the retained snapshot, or nil before the first scan.
func (s *Scanner) Result() *Result {
	if s.result == nil {
		return nil
	}
	r := *s.result
	r.Projects = cloneProjects(r.Projects)
	return &r
}

// ExportJSON writes the retained projects to path, stamped with the current
// time. Any existing file is replaced. Write failures are returned.
func (s *Scanner) ExportJSON(path string) error {
	projects := []Project{}
	if s.result != nil {
		projects = s.result.Projects
	}
	r := &Result{
		ScannedAt:     s.now(),
		RootDir:       s.root,
		TotalProjects: len(projects),
		Projects:      projects,
	}
	if err := WriteJSON(path, r); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"projects": len(projects),
		"path":     path,
	}).Info("exported snapshot")
	return nil
}

// Refresh scans root and exports the snapshot to cacheFile, returning the
// exported result.
func Refresh(ctx context.Context, root, cacheFile string, opts ...Option) (*Result, error) {
	s := New(root, opts...)
	if _, err := s.Scan(ctx); err != nil {
		return nil, err
	}
	if err := s.ExportJSON(cacheFile); err != nil {
		return nil, err
	}
	return s.Result(), nil
}
