package report

import (
	"encoding/xml"
	"os"
	"time"

	"github.com/sitehawk/sitehawk/internal/crawl"
	"github.com/sitehawk/sitehawk/internal/errors"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// urlSet is the sitemap protocol root element.
type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteSitemap renders the discovered pages as a sitemap.org urlset
// document. Page order is preserved, so the root URL comes first.
func WriteSitemap(pages []crawl.Page, path string) error {
	set := urlSet{Xmlns: sitemapNamespace}
	lastMod := time.Now().Format("2006-01-02")
	for _, p := range pages {
		set.URLs = append(set.URLs, sitemapURL{Loc: p.URL, LastMod: lastMod})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to marshal sitemap", err)
	}

	doc := append([]byte(xml.Header), data...)
	doc = append(doc, '\n')

	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	return nil
}
