// Package audit executes a complete audit run: pre-flight validation of
// the test selection, page discovery, phase-by-phase test execution under
// the scheduler's strategy, and artifact generation.
package audit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sitehawk/sitehawk/internal/browser"
	"github.com/sitehawk/sitehawk/internal/config"
	"github.com/sitehawk/sitehawk/internal/crawl"
	"github.com/sitehawk/sitehawk/internal/errors"
	"github.com/sitehawk/sitehawk/internal/log"
	"github.com/sitehawk/sitehawk/internal/report"
	"github.com/sitehawk/sitehawk/internal/runner"
	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/session"
)

// Orchestrator runs audits. It owns no state between runs; each Run
// creates a fresh session.
type Orchestrator struct {
	cfg     *config.Config
	driver  browser.Driver
	runners *runner.Registry
	sched   *schedule.Scheduler
	client  *http.Client
	logger  *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRunners replaces the default runner registry.
func WithRunners(r *runner.Registry) Option {
	return func(o *Orchestrator) { o.runners = r }
}

// WithScheduler replaces the default scheduler.
func WithScheduler(s *schedule.Scheduler) Option {
	return func(o *Orchestrator) { o.sched = s }
}

// WithHTTPClient replaces the HTTP client used for non-browser probes.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Orchestrator) { o.client = c }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator for the given configuration and browser
// driver.
func New(cfg *config.Config, driver browser.Driver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		driver:  driver,
		runners: runner.DefaultRegistry(),
		sched:   schedule.NewDefaultScheduler(schedule.WithExpectedPages(cfg.ExpectedPages())),
		client:  &http.Client{Timeout: cfg.Timeout.Std()},
		logger:  log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Scheduler returns the scheduler the orchestrator plans with.
func (o *Orchestrator) Scheduler() *schedule.Scheduler {
	return o.sched
}

// Plan runs only the pre-flight planning for the configured selection. The
// returned strategy is what Run would execute.
func (o *Orchestrator) Plan() (*schedule.ExecutionStrategy, []string, error) {
	selection := o.selection()

	strategy, err := o.sched.OrganizeTestsIntoPhases(selection, o.cfg.Crawl.Enabled)
	if err != nil {
		return nil, nil, err
	}

	if depReport := o.sched.ValidateDependencies(selection); !depReport.Valid {
		return nil, nil, errors.NewMissingDependenciesError(depReport.MissingDependencies)
	}

	return strategy, o.sched.ExecutionOrder(selection), nil
}

// Run executes the full audit and returns the results document. Artifacts
// (results.json, report.md, screenshots, sitemap.xml) are written into a
// fresh session directory. Individual test failures are recorded as
// results, not returned as errors.
func (o *Orchestrator) Run(ctx context.Context) (*report.Results, error) {
	strategy, ordered, err := o.Plan()
	if err != nil {
		return nil, err
	}

	sess, err := session.New(o.cfg.OutputDir, o.cfg.Target)
	if err != nil {
		return nil, err
	}

	o.logger.Info("audit started",
		"session", sess.ID,
		"target", o.cfg.Target,
		"tests", len(ordered),
		"estimated_duration", strategy.TotalEstimatedDuration.String(),
	)

	pages, err := o.discoverPages(ctx)
	if err != nil {
		return nil, err
	}
	o.logger.Info("pages discovered", "count", len(pages))

	for _, plan := range strategy.Phases {
		if err := o.runPhase(ctx, plan, sess, pages); err != nil {
			return nil, err
		}
	}

	results := report.BuildResults(sess, pages, ordered)
	if err := report.SaveResults(results, sess.DataPath("results.json")); err != nil {
		return nil, err
	}
	if err := report.WriteMarkdown(results, sess.ReportPath("report.md")); err != nil {
		return nil, err
	}

	o.logger.Info("audit complete",
		"session", sess.ID,
		"results", len(results.Results),
		"duration", results.CompletedAt.Sub(results.StartedAt).Round(time.Millisecond).String(),
	)

	return results, nil
}

func (o *Orchestrator) selection() []string {
	if len(o.cfg.Tests) > 0 {
		return o.cfg.Tests
	}
	return o.sched.Registry().IDs()
}

// discoverPages crawls the site, or returns just the target when crawling
// is disabled.
func (o *Orchestrator) discoverPages(ctx context.Context) ([]crawl.Page, error) {
	if !o.cfg.Crawl.Enabled {
		return []crawl.Page{{URL: o.cfg.Target}}, nil
	}

	crawler := crawl.New(o.driver, o.cfg.Crawl.MaxPages, o.cfg.Crawl.MaxDepth, o.logger)
	return crawler.Discover(ctx, o.cfg.Target)
}

// runPhase executes one phase plan: session tests sequentially first, then
// page tests across pages with bounded parallelism. Within a single page
// the tests run sequentially in execution order, so declared conflicts
// never overlap on the same page.
func (o *Orchestrator) runPhase(ctx context.Context, plan schedule.PhaseExecutionPlan, sess *session.Session, pages []crawl.Page) error {
	o.logger.Info("phase started",
		"phase", plan.Phase,
		"session_tests", len(plan.SessionTests),
		"page_tests", len(plan.PageTests),
		"max_concurrency", plan.MaxConcurrency,
	)

	for _, id := range plan.SessionTests {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.runTest(ctx, id, nil, sess, pages)
	}

	if len(plan.PageTests) == 0 {
		return nil
	}

	concurrency := plan.MaxConcurrency
	if o.cfg.Concurrency > 0 {
		concurrency = o.cfg.Concurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range pages {
		page := &pages[i]
		g.Go(func() error {
			for _, id := range plan.PageTests {
				if err := gctx.Err(); err != nil {
					return err
				}
				o.runTest(gctx, id, page, sess, pages)
			}
			return nil
		})
	}

	return g.Wait()
}

// runTest executes one test against one page (nil for session scope) and
// records the result. Runner errors become errored results; they never
// abort the audit.
func (o *Orchestrator) runTest(ctx context.Context, id string, page *crawl.Page, sess *session.Session, pages []crawl.Page) {
	pageURL := ""
	if page != nil {
		pageURL = page.URL
	}

	if blocking, ok := o.depsSatisfied(id, pageURL, sess.Results); !ok {
		sess.Results.Add(session.Result{
			TestID:  id,
			PageURL: pageURL,
			Status:  session.StatusSkipped,
			Details: map[string]any{"reason": fmt.Sprintf("dependency %s did not pass", blocking)},
		})
		o.logger.Warn("test skipped", "test", id, "page", pageURL, "dependency", blocking)
		return
	}

	run, ok := o.runners.Lookup(id)
	if !ok {
		sess.Results.Add(session.Result{
			TestID:  id,
			PageURL: pageURL,
			Status:  session.StatusError,
			Error:   "no runner registered for test id",
		})
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout.Std())
	defer cancel()

	rc := &runner.Context{
		Target:     o.cfg.Target,
		Page:       page,
		Pages:      pages,
		Driver:     o.driver,
		Session:    sess,
		HTTPClient: o.client,
		Logger:     o.logger.With("test", id),
		Timeout:    o.cfg.Timeout.Std(),
	}

	started := time.Now()
	outcome, err := run.Run(runCtx, rc)
	elapsed := time.Since(started)

	result := session.Result{
		TestID:   id,
		PageURL:  pageURL,
		Duration: elapsed,
	}
	if err != nil {
		result.Status = session.StatusError
		result.Error = err.Error()
		o.logger.WithError(err).Error("test errored", "test", id, "page", pageURL)
	} else {
		result.Status = outcome.Status
		result.Details = outcome.Details
		o.logger.Debug("test finished", "test", id, "page", pageURL, "status", string(outcome.Status), "duration", elapsed.Round(time.Millisecond).String())
	}

	sess.Results.Add(result)
}

// depsSatisfied checks whether every dependency of a test has a usable
// recorded result. A warning still satisfies a dependent; failed, errored,
// skipped, or absent results block it.
func (o *Orchestrator) depsSatisfied(id, pageURL string, store *session.Store) (string, bool) {
	tc, ok := o.sched.Registry().Lookup(id)
	if !ok {
		return "", true
	}

	for _, dep := range tc.Dependencies {
		depTC, ok := o.sched.Registry().Lookup(dep)
		if !ok {
			continue
		}

		switch {
		case depTC.Scope == schedule.ScopeSession:
			if !usable(store, dep, "") {
				return dep, false
			}
		case tc.Scope == schedule.ScopePage:
			// Page test depending on a page test: the dependency must have
			// passed on this page.
			if !usable(store, dep, pageURL) {
				return dep, false
			}
		default:
			// Session test depending on a page test: at least one page must
			// have usable output.
			if !anyUsable(store, dep) {
				return dep, false
			}
		}
	}

	return "", true
}

func usable(store *session.Store, testID, pageURL string) bool {
	r, ok := store.Get(testID, pageURL)
	if !ok {
		return false
	}
	return r.Status == session.StatusPassed || r.Status == session.StatusWarning
}

func anyUsable(store *session.Store, testID string) bool {
	for _, r := range store.ByTest(testID) {
		if r.Status == session.StatusPassed || r.Status == session.StatusWarning {
			return true
		}
	}
	return false
}
