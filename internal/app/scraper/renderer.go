package scraper

import (
	"context"
	"fmt"
	"time"

	"prep_tracker/internal/platform/logger"

	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type RenderRequest struct {
	URL               string
	NavigationTimeout time.Duration
	// WaitSelector is awaited best-effort; a miss does not fail the render.
	WaitSelector string
	WaitTimeout  time.Duration
	Scroll       bool
}

// Renderer loads a JS-rendered page and returns its final HTML.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// ChromeRenderer starts a fresh headless Chrome for every render and always shuts it down.
type ChromeRenderer struct {
	execPath  string
	userAgent string
	log       *logger.Logger
}

func NewChromeRenderer(execPath string, log *logger.Logger) *ChromeRenderer {
	return &ChromeRenderer{execPath: execPath, userAgent: defaultUserAgent, log: log.With("component", "ChromeRenderer")}
}

func (r *ChromeRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.userAgent),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Start the browser on the long-lived context so the timeouts below only cancel actions.
	if err := chromedp.Run(browserCtx); err != nil {
		return "", fmt.Errorf("start browser: %w", err)
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, req.NavigationTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(req.URL)); err != nil {
		return "", fmt.Errorf("navigate %s: %w", req.URL, err)
	}

	if req.WaitSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(navCtx, req.WaitTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(req.WaitSelector, chromedp.ByQuery))
		cancelWait()
		if err != nil {
			r.log.Debug("content marker not found, continuing", "url", req.URL, "selector", req.WaitSelector)
		}
	}

	if req.Scroll {
		if err := chromedp.Run(navCtx, chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil)); err != nil {
			r.log.Debug("scroll failed", "url", req.URL, "error", err)
		}
	}

	var html string
	if err := chromedp.Run(navCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read page %s: %w", req.URL, err)
	}
	return html, nil
}
