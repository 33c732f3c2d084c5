package browser

import (
	"context"
	"os"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/sitehawk/sitehawk/internal/errors"
)

// ChromeDriver drives a Chrome/Chromium instance over the DevTools
// protocol using chromedp.
type ChromeDriver struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// Options configures the Chrome driver.
type Options struct {
	// Headless runs the browser without a window.
	Headless bool

	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string
}

// NewChromeDriver starts a Chrome allocator. The browser process itself is
// launched lazily with the first tab. CHROME_PATH overrides binary
// discovery.
func NewChromeDriver(ctx context.Context, opts Options) (*ChromeDriver, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if path := os.Getenv("CHROME_PATH"); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)

	return &ChromeDriver{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// NewPage opens a fresh tab.
func (d *ChromeDriver) NewPage(ctx context.Context) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(d.allocCtx)

	// Launch the tab eagerly so startup failures surface here rather than
	// on the first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, errors.NewBrowserStartError(err)
	}

	return &chromePage{ctx: tabCtx, cancel: tabCancel}, nil
}

// Close shuts down the allocator and every tab created from it.
func (d *ChromeDriver) Close() error {
	d.allocCancel()
	return nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	err := p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return errors.NewNavigateError(url, err)
	}
	return nil
}

func (p *chromePage) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, chromedp.Title(&title)); err != nil {
		return "", errors.Wrap(errors.ErrCodeBrowserEvaluate, "failed to read document title", err)
	}
	return title, nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", errors.Wrap(errors.ErrCodeBrowserEvaluate, "failed to serialize document", err)
	}
	return html, nil
}

func (p *chromePage) Screenshot(ctx context.Context, vp Viewport) ([]byte, error) {
	var buf []byte
	actions := []chromedp.Action{chromedp.EmulateViewport(vp.Width, vp.Height)}
	if vp.Mobile {
		actions = []chromedp.Action{
			chromedp.EmulateViewport(vp.Width, vp.Height, chromedp.EmulateMobile),
			emulation.SetTouchEmulationEnabled(true),
		}
	}
	actions = append(actions, chromedp.FullScreenshot(&buf, 90))

	err := p.run(ctx, actions...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBrowserScreenshot, "failed to capture screenshot", err)
	}
	return buf, nil
}

func (p *chromePage) Evaluate(ctx context.Context, expr string, out any) error {
	if err := p.run(ctx, chromedp.Evaluate(expr, out)); err != nil {
		return errors.Wrap(errors.ErrCodeBrowserEvaluate, "failed to evaluate script", err)
	}
	return nil
}

func (p *chromePage) Close() error {
	p.cancel()
	return nil
}

// run executes actions on the tab while honoring the caller's context: the
// tab context is what chromedp requires, so cancellation is bridged.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
