package runner

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sitehawk/sitehawk/internal/crawl"
	"github.com/sitehawk/sitehawk/internal/report"
	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/session"
)

// SitemapGenerate writes a sitemap.xml built from the discovered page set
// into the session's report directory.
type SitemapGenerate struct{}

func (r *SitemapGenerate) ID() string { return schedule.TestSitemapGenerate }

func (r *SitemapGenerate) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	path := rc.Session.ReportPath("sitemap.xml")
	if err := report.WriteSitemap(rc.Pages, path); err != nil {
		return nil, err
	}

	return &Outcome{
		Status: session.StatusPassed,
		Details: map[string]any{
			"path":  path,
			"pages": len(rc.Pages),
		},
	}, nil
}

// SitemapCrawl fetches the site's published sitemap.xml and compares it
// against the pages the crawler actually discovered.
type SitemapCrawl struct{}

func (r *SitemapCrawl) ID() string { return schedule.TestSitemapCrawl }

func (r *SitemapCrawl) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	sitemapURL, err := resolvePath(rc.Target, "/sitemap.xml")
	if err != nil {
		return nil, err
	}

	body, status, err := fetch(ctx, rc.HTTPClient, sitemapURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return &Outcome{
			Status: session.StatusWarning,
			Details: map[string]any{
				"published": false,
				"url":       sitemapURL,
			},
		}, nil
	}
	if status != http.StatusOK {
		return &Outcome{
			Status: session.StatusWarning,
			Details: map[string]any{
				"published":   false,
				"url":         sitemapURL,
				"http_status": status,
			},
		}, nil
	}

	published, err := parseSitemapLocs(body)
	if err != nil {
		return &Outcome{
			Status: session.StatusFailed,
			Details: map[string]any{
				"published": true,
				"url":       sitemapURL,
				"parse_err": err.Error(),
			},
		}, nil
	}

	listed := make(map[string]bool, len(published))
	for _, loc := range published {
		listed[strings.TrimRight(loc, "/")] = true
	}

	var unlisted []string
	for _, p := range rc.Pages {
		if !listed[strings.TrimRight(p.URL, "/")] {
			unlisted = append(unlisted, p.URL)
		}
	}

	outcome := &Outcome{
		Status: session.StatusPassed,
		Details: map[string]any{
			"published":      true,
			"url":            sitemapURL,
			"published_urls": len(published),
			"unlisted_pages": unlisted,
		},
	}
	if len(unlisted) > 0 {
		outcome.Status = session.StatusWarning
	}
	return outcome, nil
}

// RobotsAudit fetches and inspects robots.txt.
type RobotsAudit struct{}

func (r *RobotsAudit) ID() string { return schedule.TestRobotsAudit }

func (r *RobotsAudit) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	robotsURL, err := resolvePath(rc.Target, "/robots.txt")
	if err != nil {
		return nil, err
	}

	body, status, err := fetch(ctx, rc.HTTPClient, robotsURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return &Outcome{
			Status: session.StatusWarning,
			Details: map[string]any{
				"exists": false,
				"url":    robotsURL,
			},
		}, nil
	}

	var disallows, sitemaps []string
	blocksAll := false
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "disallow":
			if value != "" {
				disallows = append(disallows, value)
			}
			if value == "/" {
				blocksAll = true
			}
		case "sitemap":
			sitemaps = append(sitemaps, value)
		}
	}

	blocked := blockedPages(rc.Pages, disallows)

	outcome := &Outcome{
		Status: session.StatusPassed,
		Details: map[string]any{
			"exists":         true,
			"url":            robotsURL,
			"disallow_rules": len(disallows),
			"sitemaps":       sitemaps,
			"blocked_pages":  blocked,
		},
	}
	switch {
	case blocksAll:
		outcome.Status = session.StatusFailed
		outcome.Details["blocks_all"] = true
	case len(blocked) > 0:
		outcome.Status = session.StatusFailed
	case len(sitemaps) == 0:
		outcome.Status = session.StatusWarning
	}
	return outcome, nil
}

// blockedPages returns the audited pages whose path falls under one of the
// disallow prefixes.
func blockedPages(pages []crawl.Page, disallows []string) []string {
	var blocked []string
	for _, p := range pages {
		parsed, err := url.Parse(p.URL)
		if err != nil {
			continue
		}
		path := parsed.Path
		if path == "" {
			path = "/"
		}
		for _, rule := range disallows {
			if strings.HasPrefix(path, rule) {
				blocked = append(blocked, p.URL)
				break
			}
		}
	}
	return blocked
}

func resolvePath(target, path string) (string, error) {
	base, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", target, err)
	}
	ref := *base
	ref.Path = path
	ref.RawQuery = ""
	ref.Fragment = ""
	return ref.String(), nil
}

// fetch GETs a URL and returns the body and status code. Transport-level
// failures are errors; HTTP error statuses are not.
func fetch(ctx context.Context, client *http.Client, rawURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", 0, err
	}

	return string(body), resp.StatusCode, nil
}

func parseSitemapLocs(body string) ([]string, error) {
	var set struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	if err := xml.Unmarshal([]byte(body), &set); err != nil {
		return nil, err
	}

	locs := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		locs = append(locs, strings.TrimSpace(u.Loc))
	}
	return locs, nil
}
