package crawl

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// ParseLinks extracts the absolute form of every anchor href in the given
// document, resolved against base. Fragments are stripped, duplicates
// removed, and the result is sorted for determinism. Non-HTTP schemes
// (mailto:, javascript:, tel:) are skipped.
func ParseLinks(doc string, base *url.URL) []string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if link, ok := normalizeLink(attr.Val, base); ok {
					seen[link] = true
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)

	return links
}

// SameHost reports whether rawURL points at the same host as base,
// ignoring a leading "www." on either side.
func SameHost(rawURL string, base *url.URL) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return stripWWW(parsed.Hostname()) == stripWWW(base.Hostname())
}

func normalizeLink(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	return canonicalURL(resolved), true
}

// canonicalURL renders u with the fragment stripped and an empty path
// normalized to "/", so one page never appears under two spellings.
func canonicalURL(u *url.URL) string {
	c := *u
	c.Fragment = ""
	if c.Path == "" {
		c.Path = "/"
	}
	return c.String()
}

func stripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
