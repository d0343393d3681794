package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest selected text accepted from a plain HTTP
// download. Anything shorter is probably a client-side app shell.
const MinContentLength = 500

// LooksEmpty reports whether text is too short to be a server-rendered
// careers page.
func LooksEmpty(text string) bool {
	return len(strings.TrimSpace(text)) < MinContentLength
}

// Renderer produces the HTML of a page after client-side scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Browser renders pages with headless Chrome through chromedp. Chrome or
// Chromium must be installed.
type Browser struct {
	Timeout time.Duration
	// Settle is how long to wait after load for boards that fill their
	// listings with XHR.
	Settle  time.Duration
	Verbose bool
}

// NewBrowser creates a Browser with default waits.
func NewBrowser(timeout time.Duration, verbose bool) *Browser {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Browser{Timeout: timeout, Settle: 3 * time.Second, Verbose: verbose}
}

var browserFlags = append(chromedp.DefaultExecAllocatorOptions[:],
	chromedp.Flag("headless", true),
	chromedp.Flag("disable-gpu", true),
	chromedp.Flag("no-sandbox", true),
	chromedp.Flag("disable-dev-shm-usage", true),
	chromedp.UserAgent(DefaultUserAgent),
)

// Render navigates to url and returns the rendered document.
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	start := time.Now()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browserFlags...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, b.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.Settle),
		dismissConsent(),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if b.Verbose {
		log.Printf("[fetch] rendered %s in %s (%d bytes)", url, time.Since(start).Round(time.Millisecond), len(html))
	}
	return html, nil
}

// dismissConsent clicks a visible cookie "accept" button if there is one.
func dismissConsent() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
		return nil
	})
}
