package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitehawk/sitehawk/internal/crawl"
	"github.com/sitehawk/sitehawk/internal/session"
)

func sampleResults(t *testing.T) *Results {
	t.Helper()

	sess, err := session.New(t.TempDir(), "https://example.com")
	require.NoError(t, err)

	sess.Results.Add(session.Result{TestID: "robots-audit", Status: session.StatusPassed, Duration: time.Second})
	sess.Results.Add(session.Result{TestID: "seo-audit", PageURL: "https://example.com", Status: session.StatusWarning, Error: "missing meta description"})
	sess.Results.Add(session.Result{TestID: "seo-audit", PageURL: "https://example.com/about", Status: session.StatusPassed})

	pages := []crawl.Page{
		{URL: "https://example.com", Title: "Home", Depth: 0},
		{URL: "https://example.com/about", Title: "About", Depth: 1},
	}

	return BuildResults(sess, pages, []string{"robots-audit", "seo-audit"})
}

func TestBuildResults(t *testing.T) {
	r := sampleResults(t)

	assert.Equal(t, "https://example.com", r.Target)
	assert.NotEmpty(t, r.SessionID)
	assert.Len(t, r.Results, 3)
	assert.Equal(t, 2, r.Summary["passed"])
	assert.Equal(t, 1, r.Summary["warning"])
	assert.False(t, r.CompletedAt.Before(r.StartedAt))
}

func TestSaveLoadResultsRoundTrip(t *testing.T) {
	r := sampleResults(t)
	path := filepath.Join(t.TempDir(), "results.json")

	require.NoError(t, SaveResults(r, path))

	loaded, err := LoadResults(path)
	require.NoError(t, err)
	assert.Equal(t, r.SessionID, loaded.SessionID)
	assert.Equal(t, r.Summary, loaded.Summary)
	require.Len(t, loaded.Results, 3)
	assert.Equal(t, r.Results[0].TestID, loaded.Results[0].TestID)
}

func TestLoadResultsNotFound(t *testing.T) {
	_, err := LoadResults(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IO-001")
}

func TestWriteSitemap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitemap.xml")
	pages := []crawl.Page{
		{URL: "https://example.com"},
		{URL: "https://example.com/about"},
	}

	require.NoError(t, WriteSitemap(pages, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, out, "<loc>https://example.com</loc>")
	assert.Contains(t, out, "<loc>https://example.com/about</loc>")

	// Root URL stays first.
	assert.Less(t,
		strings.Index(out, "https://example.com</loc>"),
		strings.Index(out, "https://example.com/about</loc>"))
}

func TestRenderMarkdown(t *testing.T) {
	r := sampleResults(t)

	out, err := RenderMarkdown(r)
	require.NoError(t, err)

	assert.Contains(t, out, "# Site Audit Report")
	assert.Contains(t, out, "**Target:** https://example.com")
	assert.Contains(t, out, "### robots-audit")
	assert.Contains(t, out, "### seo-audit")
	assert.Contains(t, out, "missing meta description")
	assert.Contains(t, out, "| passed | 2 |")
	assert.Contains(t, out, "| warning | 1 |")
}

func TestWriteMarkdown(t *testing.T) {
	r := sampleResults(t)
	path := filepath.Join(t.TempDir(), "report.md")

	require.NoError(t, WriteMarkdown(r, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Site Audit Report")
}
