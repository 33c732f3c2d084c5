// Package runner contains the individual audit test implementations. Each
// runner executes one registered test id against the session or a single
// page; scheduling of runners across phases belongs to the audit
// orchestrator.
package runner

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sitehawk/sitehawk/internal/browser"
	"github.com/sitehawk/sitehawk/internal/crawl"
	"github.com/sitehawk/sitehawk/internal/errors"
	"github.com/sitehawk/sitehawk/internal/log"
	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/session"
)

// Context carries everything a runner may need. Page is nil for
// session-scoped runners, which see the whole discovered page set instead.
type Context struct {
	Target     string
	Page       *crawl.Page
	Pages      []crawl.Page
	Driver     browser.Driver
	Session    *session.Session
	HTTPClient *http.Client
	Logger     *log.Logger
	Timeout    time.Duration
}

// Outcome is what a runner reports back. A nil Outcome with a non-nil
// error is recorded as an errored test.
type Outcome struct {
	Status  session.Status
	Details map[string]any
}

// Runner executes one audit test.
type Runner interface {
	// ID returns the test id this runner implements. It must match a
	// registered classification.
	ID() string

	// Run executes the test. Session-scoped runners receive rc.Page == nil.
	Run(ctx context.Context, rc *Context) (*Outcome, error)
}

// Registry maps test ids to their runners.
type Registry struct {
	byID map[string]Runner
}

// NewRegistry creates a registry from the given runners.
func NewRegistry(runners ...Runner) (*Registry, error) {
	r := &Registry{byID: make(map[string]Runner, len(runners))}
	for _, run := range runners {
		if _, dup := r.byID[run.ID()]; dup {
			return nil, errors.New(errors.ErrCodeRegistryDuplicateID, fmt.Sprintf("duplicate runner for test id %q", run.ID()))
		}
		r.byID[run.ID()] = run
	}
	return r, nil
}

// DefaultRegistry returns the registry with all built-in runners wired.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		&SitemapGenerate{},
		&SitemapCrawl{},
		&RobotsAudit{},
		&Screenshot{Viewport: browser.ViewportDesktop, TestID: schedule.TestScreenshotDesktop},
		&Screenshot{Viewport: browser.ViewportMobile, TestID: schedule.TestScreenshotMobile},
		&ContentScrape{},
		&PerformanceTiming{},
		&AccessibilityScan{},
		&SEOAudit{},
		&LinkCheck{},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the runner for a test id.
func (r *Registry) Lookup(testID string) (Runner, bool) {
	run, ok := r.byID[testID]
	return run, ok
}

// IDs returns every registered test id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
