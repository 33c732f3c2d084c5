// Package browser abstracts the headless browser behind a small driver
// interface so the crawler, runners, and tests never depend on a concrete
// automation engine.
package browser

import "context"

// Viewport describes the emulated device a page is rendered with.
type Viewport struct {
	Name   string
	Width  int64
	Height int64
	Mobile bool
}

// Built-in viewport presets.
var (
	ViewportDesktop = Viewport{Name: "desktop", Width: 1920, Height: 1080}
	ViewportMobile  = Viewport{Name: "mobile", Width: 390, Height: 844, Mobile: true}
)

// Driver owns a browser process and hands out isolated page tabs.
type Driver interface {
	// NewPage opens a fresh browser tab. The returned Page must be closed
	// by the caller.
	NewPage(ctx context.Context) (Page, error)

	// Close shuts the browser down.
	Close() error
}

// Page is one browser tab. All operations honor the passed context's
// deadline and cancellation.
type Page interface {
	// Navigate loads the given URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error

	// Title returns the current document title.
	Title(ctx context.Context) (string, error)

	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)

	// Screenshot captures a full-page PNG under the given viewport.
	Screenshot(ctx context.Context, vp Viewport) ([]byte, error)

	// Evaluate runs a JavaScript expression and unmarshals the result
	// into out.
	Evaluate(ctx context.Context, expr string, out any) error

	// Close releases the tab.
	Close() error
}
