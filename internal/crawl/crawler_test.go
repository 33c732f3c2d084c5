package crawl

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitehawk/sitehawk/internal/browser"
)

// fakeSite is an in-memory site served through the browser.Driver
// interface.
type fakeSite struct {
	pages map[string]fakePage // url -> content
}

type fakePage struct {
	title string
	html  string
}

func (s *fakeSite) NewPage(ctx context.Context) (browser.Page, error) {
	return &fakeTab{site: s}, nil
}

func (s *fakeSite) Close() error { return nil }

type fakeTab struct {
	site    *fakeSite
	current string
}

func (t *fakeTab) Navigate(ctx context.Context, url string) error {
	if _, ok := t.site.pages[url]; !ok {
		return fmt.Errorf("navigate %s: connection refused", url)
	}
	t.current = url
	return nil
}

func (t *fakeTab) Title(ctx context.Context) (string, error) {
	return t.site.pages[t.current].title, nil
}

func (t *fakeTab) HTML(ctx context.Context) (string, error) {
	return t.site.pages[t.current].html, nil
}

func (t *fakeTab) Screenshot(ctx context.Context, vp browser.Viewport) ([]byte, error) {
	return []byte("png"), nil
}

func (t *fakeTab) Evaluate(ctx context.Context, expr string, out any) error {
	return nil
}

func (t *fakeTab) Close() error { return nil }

func testSite() *fakeSite {
	return &fakeSite{pages: map[string]fakePage{
		"https://example.com/": {
			title: "Home",
			html: `<html><body>
				<a href="/about">About</a>
				<a href="/blog">Blog</a>
				<a href="https://other.example.org/external">External</a>
				<a href="mailto:hi@example.com">Mail</a>
			</body></html>`,
		},
		"https://example.com/about": {
			title: "About",
			html:  `<html><body><a href="/team">Team</a></body></html>`,
		},
		"https://example.com/blog": {
			title: "Blog",
			html:  `<html><body><a href="/blog/post-1">Post</a></body></html>`,
		},
		"https://example.com/team": {
			title: "Team",
			html:  `<html><body></body></html>`,
		},
		"https://example.com/blog/post-1": {
			title: "Post 1",
			html:  `<html><body></body></html>`,
		},
	}}
}

func TestDiscoverBFS(t *testing.T) {
	c := New(testSite(), 10, 3, nil)

	pages, err := c.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Len(t, pages, 5)

	// Root first, then breadth-first by depth.
	assert.Equal(t, "https://example.com/", pages[0].URL)
	assert.Equal(t, 0, pages[0].Depth)
	assert.Equal(t, "Home", pages[0].Title)
	for i := 1; i < len(pages); i++ {
		assert.GreaterOrEqual(t, pages[i].Depth, pages[i-1].Depth)
	}

	// External host never crawled.
	for _, p := range pages {
		assert.NotContains(t, p.URL, "other.example.org")
	}
}

func TestDiscoverMaxPages(t *testing.T) {
	c := New(testSite(), 2, 3, nil)

	pages, err := c.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestDiscoverMaxDepth(t *testing.T) {
	c := New(testSite(), 10, 1, nil)

	pages, err := c.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)

	// Depth 0 and 1 only: home, about, blog.
	assert.Len(t, pages, 3)
	for _, p := range pages {
		assert.LessOrEqual(t, p.Depth, 1)
	}
}

func TestDiscoverTargetAppearsOnce(t *testing.T) {
	// Links back to the root in either spelling must not rediscover it.
	site := &fakeSite{pages: map[string]fakePage{
		"https://example.com/": {
			title: "Home",
			html: `<html><body>
				<a href="/">Home</a>
				<a href="https://example.com">Home again</a>
				<a href="/about">About</a>
			</body></html>`,
		},
		"https://example.com/about": {
			title: "About",
			html:  `<html><body><a href="https://example.com/">Back</a></body></html>`,
		},
	}}
	c := New(site, 10, 3, nil)

	pages, err := c.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Len(t, pages, 2)

	seen := make(map[string]int)
	for _, p := range pages {
		seen[p.URL]++
	}
	assert.Equal(t, 1, seen["https://example.com/"])
	assert.Equal(t, 1, seen["https://example.com/about"])
}

func TestDiscoverUnreachableRoot(t *testing.T) {
	c := New(testSite(), 10, 3, nil)

	_, err := c.Discover(context.Background(), "https://down.example.com")
	assert.Error(t, err)
}

func TestDiscoverSkipsBrokenPage(t *testing.T) {
	site := testSite()
	delete(site.pages, "https://example.com/about")
	c := New(site, 10, 3, nil)

	pages, err := c.Discover(context.Background(), "https://example.com")
	require.NoError(t, err)

	for _, p := range pages {
		assert.NotEqual(t, "https://example.com/about", p.URL)
	}
}

func TestParseLinks(t *testing.T) {
	base, err := url.Parse("https://example.com/docs/")
	require.NoError(t, err)

	doc := `<html><body>
		<a href="intro">Relative</a>
		<a href="/pricing">Absolute path</a>
		<a href="https://example.com/pricing#plans">Fragment dropped</a>
		<a href="javascript:void(0)">Script</a>
		<a href="#top">Anchor</a>
		<a href="tel:+123">Phone</a>
	</body></html>`

	links := ParseLinks(doc, base)
	assert.Equal(t, []string{
		"https://example.com/docs/intro",
		"https://example.com/pricing",
	}, links)
}

func TestSameHost(t *testing.T) {
	base, err := url.Parse("https://www.example.com")
	require.NoError(t, err)

	assert.True(t, SameHost("https://example.com/page", base))
	assert.True(t, SameHost("https://www.example.com/page", base))
	assert.False(t, SameHost("https://sub.example.com/page", base))
	assert.False(t, SameHost("https://other.org", base))
}
