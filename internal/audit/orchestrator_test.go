package audit

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitehawk/sitehawk/internal/browser"
	"github.com/sitehawk/sitehawk/internal/config"
	"github.com/sitehawk/sitehawk/internal/runner"
	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/session"
)

// fakeDriver serves a tiny two-link site so the crawler discovers three
// pages without a real browser.
type fakeDriver struct{}

func (d *fakeDriver) NewPage(ctx context.Context) (browser.Page, error) {
	return &fakeTab{}, nil
}

func (d *fakeDriver) Close() error { return nil }

type fakeTab struct {
	current string
}

var fakeDocs = map[string]string{
	"https://example.com/":  `<html><body><a href="/a">A</a><a href="/b">B</a></body></html>`,
	"https://example.com/a": `<html><body></body></html>`,
	"https://example.com/b": `<html><body></body></html>`,
}

func (t *fakeTab) Navigate(ctx context.Context, url string) error {
	if _, ok := fakeDocs[url]; !ok {
		return fmt.Errorf("navigate %s: connection refused", url)
	}
	t.current = url
	return nil
}

func (t *fakeTab) Title(ctx context.Context) (string, error) { return "Page", nil }

func (t *fakeTab) HTML(ctx context.Context) (string, error) { return fakeDocs[t.current], nil }

func (t *fakeTab) Screenshot(ctx context.Context, vp browser.Viewport) ([]byte, error) {
	return []byte("png"), nil
}

func (t *fakeTab) Evaluate(ctx context.Context, expr string, out any) error { return nil }

func (t *fakeTab) Close() error { return nil }

// stubRunner records its invocations and reports a canned outcome.
type stubRunner struct {
	id     string
	status session.Status
	err    error
	rec    *recorder
}

type recorder struct {
	mu    sync.Mutex
	calls []string // "test-id@page-url"
}

func (r *recorder) record(id, pageURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, id+"@"+pageURL)
}

func (r *recorder) indexOf(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.calls {
		if c == call {
			return i
		}
	}
	return -1
}

func (s *stubRunner) ID() string { return s.id }

func (s *stubRunner) Run(ctx context.Context, rc *runner.Context) (*runner.Outcome, error) {
	pageURL := ""
	if rc.Page != nil {
		pageURL = rc.Page.URL
	}
	s.rec.record(s.id, pageURL)

	if s.err != nil {
		return nil, s.err
	}
	return &runner.Outcome{Status: s.status, Details: map[string]any{"stub": true}}, nil
}

// stubRegistry wires a stub for every builtin test id. Overrides replace
// individual stubs by id.
func stubRegistry(t *testing.T, rec *recorder, overrides ...runner.Runner) *runner.Registry {
	t.Helper()

	replaced := make(map[string]runner.Runner, len(overrides))
	for _, r := range overrides {
		replaced[r.ID()] = r
	}

	var runners []runner.Runner
	for _, id := range schedule.DefaultRegistry().IDs() {
		if r, ok := replaced[id]; ok {
			runners = append(runners, r)
			continue
		}
		runners = append(runners, &stubRunner{id: id, status: session.StatusPassed, rec: rec})
	}

	reg, err := runner.NewRegistry(runners...)
	require.NoError(t, err)
	return reg
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Target = "https://example.com"
	cfg.OutputDir = t.TempDir()
	cfg.Crawl.MaxPages = 10
	cfg.Timeout = config.Duration(5 * time.Second)
	return cfg
}

func TestPlanRejectsUnknownTests(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tests = []string{"zz-bogus", schedule.TestRobotsAudit, "aa-bogus"}

	o := New(cfg, &fakeDriver{})
	_, _, err := o.Plan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST-001")
	assert.Contains(t, err.Error(), "aa-bogus, zz-bogus")
}

func TestPlanRejectsMissingDependencies(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tests = []string{schedule.TestSEOAudit}

	o := New(cfg, &fakeDriver{})
	_, _, err := o.Plan()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST-002")
	assert.Contains(t, err.Error(), schedule.TestContentScrape)
}

func TestPlanFullSelection(t *testing.T) {
	cfg := testConfig(t)

	o := New(cfg, &fakeDriver{})
	strategy, ordered, err := o.Plan()
	require.NoError(t, err)

	require.Len(t, strategy.Phases, 3)
	assert.Len(t, ordered, schedule.DefaultRegistry().Len())
	assert.Equal(t, schedule.TestSitemapGenerate, ordered[0])
}

func TestRunRecordsAllResults(t *testing.T) {
	cfg := testConfig(t)
	rec := &recorder{}

	o := New(cfg, &fakeDriver{}, WithRunners(stubRegistry(t, rec)))
	results, err := o.Run(context.Background())
	require.NoError(t, err)

	// 3 pages discovered: 4 session tests + 6 page tests x 3 pages.
	assert.Len(t, results.Pages, 3)
	assert.Len(t, results.Results, 4+6*3)
	assert.Equal(t, 22, results.Summary["passed"])
}

func TestRunWritesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	rec := &recorder{}

	o := New(cfg, &fakeDriver{}, WithRunners(stubRegistry(t, rec)))
	results, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, results.SessionID)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	sessionDir := cfg.OutputDir + "/" + entries[0].Name()
	assert.FileExists(t, sessionDir+"/data/results.json")
	assert.FileExists(t, sessionDir+"/reports/report.md")
}

func TestRunSessionTestsBeforePageTests(t *testing.T) {
	cfg := testConfig(t)
	rec := &recorder{}

	o := New(cfg, &fakeDriver{}, WithRunners(stubRegistry(t, rec)))
	_, err := o.Run(context.Background())
	require.NoError(t, err)

	// Discovery phase session tests precede every capture phase call.
	sitemapIdx := rec.indexOf(schedule.TestSitemapGenerate + "@")
	robotsIdx := rec.indexOf(schedule.TestRobotsAudit + "@")
	scrapeIdx := rec.indexOf(schedule.TestContentScrape + "@https://example.com/")

	require.NotEqual(t, -1, sitemapIdx)
	require.NotEqual(t, -1, robotsIdx)
	require.NotEqual(t, -1, scrapeIdx)
	assert.Less(t, sitemapIdx, scrapeIdx)
	assert.Less(t, robotsIdx, scrapeIdx)
}

func TestRunSkipsDependentsOfFailedSessionTest(t *testing.T) {
	cfg := testConfig(t)
	rec := &recorder{}
	reg := stubRegistry(t, rec,
		&stubRunner{id: schedule.TestSitemapGenerate, status: session.StatusFailed, rec: rec})

	o := New(cfg, &fakeDriver{}, WithRunners(reg))
	results, err := o.Run(context.Background())
	require.NoError(t, err)

	byKey := make(map[string]session.Status)
	for _, r := range results.Results {
		byKey[r.TestID+"@"+r.PageURL] = r.Status
	}

	assert.Equal(t, session.StatusFailed, byKey[schedule.TestSitemapGenerate+"@"])
	assert.Equal(t, session.StatusSkipped, byKey[schedule.TestSitemapCrawl+"@"])
	// Tests without that dependency still ran.
	assert.Equal(t, session.StatusPassed, byKey[schedule.TestRobotsAudit+"@"])
}

func TestRunSkipsDependentsPerPage(t *testing.T) {
	cfg := testConfig(t)
	rec := &recorder{}
	reg := stubRegistry(t, rec,
		&stubRunner{id: schedule.TestContentScrape, err: fmt.Errorf("tab crashed"), rec: rec})

	o := New(cfg, &fakeDriver{}, WithRunners(reg))
	results, err := o.Run(context.Background())
	require.NoError(t, err)

	for _, r := range results.Results {
		switch r.TestID {
		case schedule.TestContentScrape:
			assert.Equal(t, session.StatusError, r.Status)
			assert.Contains(t, r.Error, "tab crashed")
		case schedule.TestSEOAudit, schedule.TestLinkCheck:
			assert.Equal(t, session.StatusSkipped, r.Status, "%s@%s should be skipped", r.TestID, r.PageURL)
		}
	}
}

func TestRunErroredRunnerDoesNotAbort(t *testing.T) {
	cfg := testConfig(t)
	rec := &recorder{}
	reg := stubRegistry(t, rec,
		&stubRunner{id: schedule.TestAccessibilityScan, err: fmt.Errorf("evaluate timed out"), rec: rec})

	o := New(cfg, &fakeDriver{}, WithRunners(reg))
	results, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, results.Summary["error"])
	assert.Greater(t, results.Summary["passed"], 0)
}

func TestRunCrawlDisabledSinglePage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Crawl.Enabled = false
	rec := &recorder{}

	o := New(cfg, &fakeDriver{}, WithRunners(stubRegistry(t, rec)))
	results, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, results.Pages, 1)
	assert.Equal(t, "https://example.com", results.Pages[0].URL)
	// 4 session tests + 6 page tests x 1 page.
	assert.Len(t, results.Results, 10)
}
