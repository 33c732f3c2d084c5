package runner

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/net/html"

	"github.com/sitehawk/sitehawk/internal/browser"
	"github.com/sitehawk/sitehawk/internal/crawl"
	"github.com/sitehawk/sitehawk/internal/errors"
	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/session"
)

// Screenshot captures a full-page screenshot of one page under a fixed
// viewport. The desktop and mobile variants are the same runner with
// different presets.
type Screenshot struct {
	TestID   string
	Viewport browser.Viewport
}

func (r *Screenshot) ID() string { return r.TestID }

func (r *Screenshot) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	tab, err := rc.Driver.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := tab.Navigate(ctx, rc.Page.URL); err != nil {
		return nil, err
	}

	img, err := tab.Screenshot(ctx, r.Viewport)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("%s-%s.png", fingerprint([]byte(rc.Page.URL)), r.Viewport.Name)
	path := rc.Session.ScreenshotPath(name)
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return nil, errors.NewFileWriteError(path, err)
	}

	return &Outcome{
		Status: session.StatusPassed,
		Details: map[string]any{
			"path":        path,
			"viewport":    r.Viewport.Name,
			"bytes":       len(img),
			"fingerprint": fingerprint(img),
		},
	}, nil
}

// Detail keys content-scrape publishes for downstream analysis runners.
const (
	DetailTitle           = "title"
	DetailMetaDescription = "meta_description"
	DetailCanonical       = "canonical"
	DetailH1Count         = "h1_count"
	DetailWordCount       = "word_count"
	DetailLinks           = "links"
	DetailContentHash     = "content_hash"
)

// ContentScrape extracts the textual content of a page. Its details feed
// the seo-audit and link-check runners.
type ContentScrape struct{}

func (r *ContentScrape) ID() string { return schedule.TestContentScrape }

func (r *ContentScrape) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	tab, err := rc.Driver.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := tab.Navigate(ctx, rc.Page.URL); err != nil {
		return nil, err
	}

	doc, err := tab.HTML(ctx)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(rc.Page.URL)
	if err != nil {
		return nil, err
	}

	content := scrape(doc)

	return &Outcome{
		Status: session.StatusPassed,
		Details: map[string]any{
			DetailTitle:           content.title,
			DetailMetaDescription: content.metaDescription,
			DetailCanonical:       content.canonical,
			DetailH1Count:         content.h1Count,
			DetailWordCount:       content.wordCount,
			DetailLinks:           crawl.ParseLinks(doc, base),
			DetailContentHash:     fingerprint([]byte(doc)),
		},
	}, nil
}

type pageContent struct {
	title           string
	metaDescription string
	canonical       string
	h1Count         int
	wordCount       int
}

func scrape(doc string) pageContent {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return pageContent{}
	}

	var c pageContent
	var inBody bool

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil {
					c.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				if attrVal(n, "name") == "description" {
					c.metaDescription = strings.TrimSpace(attrVal(n, "content"))
				}
			case "link":
				if attrVal(n, "rel") == "canonical" {
					c.canonical = strings.TrimSpace(attrVal(n, "href"))
				}
			case "h1":
				c.h1Count++
			case "body":
				inBody = true
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode && inBody {
			c.wordCount += len(strings.Fields(n.Data))
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return c
}

func attrVal(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// PerformanceTiming samples the Navigation Timing API on a fresh page
// load. Viewport emulation is deliberately left untouched.
type PerformanceTiming struct{}

func (r *PerformanceTiming) ID() string { return schedule.TestPerformanceTiming }

// Thresholds in milliseconds above which a load is flagged.
const (
	loadWarnMillis = 3000
	loadFailMillis = 8000
)

const timingExpr = `(() => {
	const nav = performance.getEntriesByType('navigation')[0];
	if (!nav) return null;
	return {
		dom_content_loaded_ms: Math.round(nav.domContentLoadedEventEnd),
		load_ms: Math.round(nav.loadEventEnd || nav.duration),
		ttfb_ms: Math.round(nav.responseStart),
		transfer_bytes: nav.transferSize || 0,
	};
})()`

type timingSample struct {
	DOMContentLoadedMs float64 `json:"dom_content_loaded_ms"`
	LoadMs             float64 `json:"load_ms"`
	TTFBMs             float64 `json:"ttfb_ms"`
	TransferBytes      float64 `json:"transfer_bytes"`
}

func (r *PerformanceTiming) Run(ctx context.Context, rc *Context) (*Outcome, error) {
	tab, err := rc.Driver.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := tab.Navigate(ctx, rc.Page.URL); err != nil {
		return nil, err
	}

	var sample *timingSample
	if err := tab.Evaluate(ctx, timingExpr, &sample); err != nil {
		return nil, err
	}
	if sample == nil {
		return &Outcome{
			Status:  session.StatusWarning,
			Details: map[string]any{"sampled": false},
		}, nil
	}

	status := session.StatusPassed
	switch {
	case sample.LoadMs > loadFailMillis:
		status = session.StatusFailed
	case sample.LoadMs > loadWarnMillis:
		status = session.StatusWarning
	}

	return &Outcome{
		Status: status,
		Details: map[string]any{
			"dom_content_loaded_ms": sample.DOMContentLoadedMs,
			"load_ms":               sample.LoadMs,
			"ttfb_ms":               sample.TTFBMs,
			"transfer_bytes":        sample.TransferBytes,
		},
	}, nil
}

// fingerprint returns a short BLAKE3 digest used for artifact naming and
// change detection.
func fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
