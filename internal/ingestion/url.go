package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/cold-outreach/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page could not be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// Loader fetches careers pages and selects their main content as markdown.
// The returned text is not yet normalized; callers run NormalizePage once.
type Loader struct {
	Client *fetch.Client
	// UseBrowser enables a headless render when the HTTP response looks like
	// an empty client-side app.
	UseBrowser bool
	Renderer   fetch.Renderer
	Verbose    bool
}

// NewLoader creates a Loader with the given per-fetch timeout.
func NewLoader(timeout time.Duration, useBrowser, verbose bool) *Loader {
	l := &Loader{Client: fetch.NewClient(timeout), UseBrowser: useBrowser, Verbose: verbose}
	if useBrowser {
		l.Renderer = fetch.NewBrowser(timeout, verbose)
	}
	return l
}

// IngestFromURL fetches a page with default options.
func IngestFromURL(ctx context.Context, urlStr string, useBrowser bool, verbose bool) (string, *Metadata, error) {
	return NewLoader(fetch.DefaultTimeout, useBrowser, verbose).Load(ctx, urlStr)
}

// Load fetches urlStr, applies platform-specific selectors, and returns the
// page text with metadata.
func (l *Loader) Load(ctx context.Context, urlStr string) (string, *Metadata, error) {
	platform := fetch.DetectPlatform(urlStr)
	if l.Verbose {
		log.Printf("[ingest] URL: %s (platform %s)", urlStr, platform)
	}

	page, err := l.Client.Get(ctx, urlStr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if l.Verbose {
		log.Printf("[ingest] Fetched HTML: %d bytes", len(page.HTML))
	}

	selectors := fetch.SelectorsFor(platform)
	text, err := selectors.Markdown(page.HTML)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	rendered := false
	if l.UseBrowser && l.Renderer != nil && fetch.LooksEmpty(text) {
		if l.Verbose {
			log.Printf("[ingest] Content too short (%d chars < %d), rendering in browser",
				len(text), fetch.MinContentLength)
		}
		if browserHTML, browserErr := l.Renderer.Render(ctx, urlStr); browserErr != nil {
			log.Printf("[ingest] Browser rendering failed, using HTTP content: %v", browserErr)
		} else if browserText, extractErr := selectors.Markdown(browserHTML); extractErr != nil {
			log.Printf("[ingest] Browser content extraction failed: %v", extractErr)
		} else {
			text = browserText
			rendered = true
		}
	}

	if l.Verbose {
		log.Printf("[ingest] Extracted text: %d chars", len(text))
	}

	metadata := NewMetadata(text, urlStr)
	metadata.Platform = string(platform)
	metadata.Rendered = rendered
	return text, metadata, nil
}
