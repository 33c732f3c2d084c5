// Package crawl discovers the set of pages an audit runs against. The
// crawler only produces the page set; which tests run against it, and in
// what order, is entirely the scheduler's concern.
package crawl

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sitehawk/sitehawk/internal/browser"
	"github.com/sitehawk/sitehawk/internal/errors"
	"github.com/sitehawk/sitehawk/internal/log"
)

// Page is one discovered page.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Depth int    `json:"depth"`
}

// Crawler walks a site breadth-first from the target URL, staying on the
// same host and honoring page and depth budgets.
type Crawler struct {
	driver   browser.Driver
	maxPages int
	maxDepth int
	logger   *log.Logger
}

// New creates a Crawler. maxPages and maxDepth below 1 and 0 respectively
// fall back to conservative budgets.
func New(driver browser.Driver, maxPages, maxDepth int, logger *log.Logger) *Crawler {
	if maxPages < 1 {
		maxPages = 1
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Crawler{
		driver:   driver,
		maxPages: maxPages,
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// Discover walks the site breadth-first from target and returns the pages
// found, root first. Navigation failures on non-root pages are logged and
// skipped; a failing root page fails the crawl.
func (c *Crawler) Discover(ctx context.Context, target string) ([]Page, error) {
	base, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCrawlFailed, fmt.Sprintf("invalid crawl target %q", target), err)
	}

	tab, err := c.driver.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	type queued struct {
		url   string
		depth int
	}

	// Seed with the canonical form of the target so a link back to the
	// root (e.g. href="/") is recognized as already visited.
	start := canonicalURL(base)
	visited := map[string]bool{start: true}
	queue := []queued{{url: start, depth: 0}}
	var pages []Page

	for len(queue) > 0 && len(pages) < c.maxPages {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCrawlFailed, "crawl cancelled", err)
		}

		next := queue[0]
		queue = queue[1:]

		if err := tab.Navigate(ctx, next.url); err != nil {
			if next.depth == 0 {
				return nil, errors.Wrap(errors.ErrCodeCrawlFailed, fmt.Sprintf("failed to reach crawl root %s", next.url), err)
			}
			c.logger.WithError(err).Warn("skipping unreachable page", "url", next.url)
			continue
		}

		title, err := tab.Title(ctx)
		if err != nil {
			title = ""
		}

		pages = append(pages, Page{URL: next.url, Title: title, Depth: next.depth})
		c.logger.Debug("discovered page", "url", next.url, "depth", next.depth)

		if next.depth >= c.maxDepth {
			continue
		}

		doc, err := tab.HTML(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("could not extract links", "url", next.url)
			continue
		}

		for _, link := range ParseLinks(doc, base) {
			if visited[link] || !SameHost(link, base) {
				continue
			}
			visited[link] = true
			queue = append(queue, queued{url: link, depth: next.depth + 1})
		}
	}

	if len(pages) == 0 {
		return nil, errors.New(errors.ErrCodeCrawlNoPages, fmt.Sprintf("no pages discovered at %s", target))
	}

	return pages, nil
}
