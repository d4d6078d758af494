package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"golang-quote-agent/pkg/logger"
)

// BrowserFetcher renders the quote page in headless Chrome before parsing.
// Needed when the plain HTTP response omits the streamed price elements.
type BrowserFetcher struct {
	cfg       FetcherConfig
	log       *logger.Logger
	renderFor time.Duration
}

// NewBrowserFetcher creates a BrowserFetcher. renderFor is how long to let
// the page settle after navigation; zero means two seconds.
func NewBrowserFetcher(cfg FetcherConfig, log *logger.Logger, renderFor time.Duration) *BrowserFetcher {
	defaults := DefaultFetcherConfig()
	if cfg.QuoteURLTemplate == "" {
		cfg.QuoteURLTemplate = defaults.QuoteURLTemplate
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if renderFor <= 0 {
		renderFor = 2 * time.Second
	}
	return &BrowserFetcher{cfg: cfg, log: log, renderFor: renderFor}
}

// Fetch navigates headless Chrome to the quote page and parses the rendered
// HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, symbol string) (*Document, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, time.Duration(f.cfg.RequestTimeout)*time.Second)
	defer cancelTimeout()

	url := fmt.Sprintf(f.cfg.QuoteURLTemplate, symbol)
	var htmlContent string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.renderFor),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return nil, fmt.Errorf("browser navigation failed: %w", err)
	}

	doc, err := NewDocument(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered page: %w", err)
	}
	f.log.Debug("Rendered quote page", logger.StringField("symbol", symbol), logger.StringField("url", url))
	return doc, nil
}
