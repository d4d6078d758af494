package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"golang-quote-agent/pkg/logger"
)

// DocumentFetcher retrieves the quote page for a symbol.
type DocumentFetcher interface {
	Fetch(ctx context.Context, symbol string) (*Document, error)
}

// FetcherConfig holds the knobs for page retrieval.
type FetcherConfig struct {
	QuoteURLTemplate  string  `mapstructure:"quote_url_template"`
	RequestTimeout    int     `mapstructure:"request_timeout"`
	SecondsPerRequest float64 `mapstructure:"seconds_per_request"`
	UserAgent         string  `mapstructure:"user_agent"`
}

// DefaultFetcherConfig returns the production defaults.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		QuoteURLTemplate:  "https://finance.yahoo.com/quote/%s/",
		RequestTimeout:    30,
		SecondsPerRequest: 1,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
}

// HTTPFetcher retrieves quote pages over plain HTTP, throttled by a rate
// limiter so repeated scrapes stay polite.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     FetcherConfig
	log     *logger.Logger
}

// NewHTTPFetcher creates an HTTPFetcher from cfg, filling zero values with the
// defaults.
func NewHTTPFetcher(cfg FetcherConfig, log *logger.Logger) *HTTPFetcher {
	defaults := DefaultFetcherConfig()
	if cfg.QuoteURLTemplate == "" {
		cfg.QuoteURLTemplate = defaults.QuoteURLTemplate
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.SecondsPerRequest <= 0 {
		cfg.SecondsPerRequest = defaults.SecondsPerRequest
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Duration(cfg.SecondsPerRequest*float64(time.Second))), 1),
		cfg:     cfg,
		log:     log,
	}
}

// Fetch downloads and parses the quote page for symbol.
func (f *HTTPFetcher) Fetch(ctx context.Context, symbol string) (*Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	url := fmt.Sprintf(f.cfg.QuoteURLTemplate, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch quote page, status code: %d", resp.StatusCode)
	}

	doc, err := NewDocument(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quote page: %w", err)
	}
	f.log.Debug("Fetched quote page", logger.StringField("symbol", symbol), logger.StringField("url", url))
	return doc, nil
}
