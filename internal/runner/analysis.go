package runner

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/session"
)

// AccessibilityScan evaluates a set of WCAG-inspired checks inside the
// live page. Each rule reports a violation count.
type AccessibilityScan struct{}

func (r *AccessibilityScan) ID() string { return schedule.TestAccessibilityScan }

const accessibilityExpr = `(() => {
	const rules = {};

	rules.img_missing_alt = [...document.querySelectorAll('img')]
		.filter(img => !img.hasAttribute('alt')).length;

	rules.input_missing_label = [...document.querySelectorAll('input:not([type=hidden]):not([type=submit]):not([type=button]), select, textarea')]
		.filter(el => {
			if (el.labels && el.labels.length > 0) return false;
			return !el.hasAttribute('aria-label') && !el.hasAttribute('aria-labelledby');
		}).length;

	const levels = [...document.querySelectorAll('h1,h2,h3,h4,h5,h6')]
		.map(h => parseInt(h.tagName[1], 10));
	rules.heading_level_jumps = levels
		.filter((lvl, i) => i > 0 && lvl > levels[i-1] + 1).length;

	rules.missing_lang = document.documentElement.hasAttribute('lang') ? 0 : 1;

	rules.empty_anchors = [...document.querySelectorAll('a[href]')]
		.filter(a => !a.textContent.trim() && !a.hasAttribute('aria-label') && !a.querySelector('img[alt]')).length;

	return rules;
})()`

func (r *AccessibilityScan) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	tab, err := rc.Driver.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := tab.Navigate(ctx, rc.Page.URL); err != nil {
		return nil, err
	}

	var violations map[string]int
	if err := tab.Evaluate(ctx, accessibilityExpr, &violations); err != nil {
		return nil, err
	}

	total := 0
	for _, n := range violations {
		total += n
	}

	status := session.StatusPassed
	if total > 0 {
		status = session.StatusWarning
	}
	if violations["missing_lang"] > 0 {
		status = session.StatusFailed
	}

	details := map[string]any{"total_violations": total}
	for rule, n := range violations {
		details[rule] = n
	}

	return &Outcome{Status: status, Details: details}, nil
}

// SEO thresholds. Sourced from common search engine display limits.
const (
	titleMinLen       = 10
	titleMaxLen       = 60
	descriptionMinLen = 50
	descriptionMaxLen = 160
	minWordCount      = 200
)

// SEOAudit analyzes the content-scrape output for a page. It runs
// entirely off recorded results and never touches the browser.
type SEOAudit struct{}

func (r *SEOAudit) ID() string { return schedule.TestSEOAudit }

func (r *SEOAudit) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	scraped, ok := rc.Session.Results.Get(schedule.TestContentScrape, rc.Page.URL)
	if !ok || scraped.Status != session.StatusPassed {
		return &Outcome{
			Status:  session.StatusSkipped,
			Details: map[string]any{"reason": "no content-scrape data for page"},
		}, nil
	}

	var issues []string

	title, _ := scraped.Details[DetailTitle].(string)
	switch {
	case title == "":
		issues = append(issues, "page has no <title>")
	case len(title) < titleMinLen:
		issues = append(issues, fmt.Sprintf("title is too short (%d chars, want at least %d)", len(title), titleMinLen))
	case len(title) > titleMaxLen:
		issues = append(issues, fmt.Sprintf("title is too long (%d chars, want at most %d)", len(title), titleMaxLen))
	}

	desc, _ := scraped.Details[DetailMetaDescription].(string)
	switch {
	case desc == "":
		issues = append(issues, "page has no meta description")
	case len(desc) < descriptionMinLen:
		issues = append(issues, fmt.Sprintf("meta description is too short (%d chars, want at least %d)", len(desc), descriptionMinLen))
	case len(desc) > descriptionMaxLen:
		issues = append(issues, fmt.Sprintf("meta description is too long (%d chars, want at most %d)", len(desc), descriptionMaxLen))
	}

	canonical, _ := scraped.Details[DetailCanonical].(string)
	switch {
	case canonical == "":
		issues = append(issues, "page has no canonical link")
	case !sameResource(canonical, rc.Page.URL):
		issues = append(issues, fmt.Sprintf("canonical link points to %s, not this page", canonical))
	}

	h1s := detailInt(scraped.Details, DetailH1Count)
	if h1s != 1 {
		issues = append(issues, fmt.Sprintf("page has %d <h1> headings, want exactly 1", h1s))
	}

	words := detailInt(scraped.Details, DetailWordCount)
	if words < minWordCount {
		issues = append(issues, fmt.Sprintf("page is thin (%d words, want at least %d)", words, minWordCount))
	}

	status := session.StatusPassed
	if len(issues) > 0 {
		status = session.StatusWarning
	}

	return &Outcome{
		Status: status,
		Details: map[string]any{
			"issues":     issues,
			"title":      title,
			"word_count": words,
		},
	}, nil
}

// sameResource compares two URLs ignoring a trailing slash, so a
// canonical of https://example.com/ matches the page https://example.com.
func sameResource(a, b string) bool {
	return strings.TrimSuffix(a, "/") == strings.TrimSuffix(b, "/")
}

// linkCheckConcurrency bounds parallel HTTP probes.
const linkCheckConcurrency = 8

// LinkCheck probes every link collected by the content-scrape runners
// across the whole session and reports broken ones.
type LinkCheck struct{}

func (r *LinkCheck) ID() string { return schedule.TestLinkCheck }

func (r *LinkCheck) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	links := collectLinks(rc.Session.Results)
	if len(links) == 0 {
		return &Outcome{
			Status:  session.StatusSkipped,
			Details: map[string]any{"reason": "no links collected by content-scrape"},
		}, nil
	}

	var mu sync.Mutex
	broken := make(map[string]string)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(linkCheckConcurrency)

	for _, link := range links {
		g.Go(func() error {
			if reason, ok := probe(gctx, rc.HTTPClient, link); !ok {
				mu.Lock()
				broken[link] = reason
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := session.StatusPassed
	if len(broken) > 0 {
		status = session.StatusFailed
	}

	return &Outcome{
		Status: status,
		Details: map[string]any{
			"checked": len(links),
			"broken":  broken,
		},
	}, nil
}

// collectLinks merges the link lists from every content-scrape result,
// deduplicated and sorted.
func collectLinks(store *session.Store) []string {
	seen := make(map[string]bool)
	for _, result := range store.ByTest(schedule.TestContentScrape) {
		raw, ok := result.Details[DetailLinks]
		if !ok {
			continue
		}
		switch links := raw.(type) {
		case []string:
			for _, l := range links {
				seen[l] = true
			}
		case []any:
			// Results loaded back from JSON decode as []any.
			for _, l := range links {
				if s, ok := l.(string); ok {
					seen[s] = true
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// probe issues a HEAD request, retrying with GET when the server rejects
// HEAD. It returns ok=false with a reason for broken links.
func probe(ctx context.Context, client *http.Client, link string) (string, bool) {
	status, err := request(ctx, client, http.MethodHead, link)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = request(ctx, client, http.MethodGet, link)
	}
	if err != nil {
		return err.Error(), false
	}
	if status >= http.StatusBadRequest {
		return fmt.Sprintf("HTTP %d", status), false
	}
	return "", true
}

func request(ctx context.Context, client *http.Client, method, link string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, link, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return resp.StatusCode, nil
}

func detailInt(details map[string]any, key string) int {
	switch v := details[key].(type) {
	case int:
		return v
	case float64:
		// JSON round-trips numbers as float64.
		return int(v)
	default:
		return 0
	}
}
