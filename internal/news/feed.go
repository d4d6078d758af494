// Package news fetches recent headlines for a symbol from the public RSS
// feed and can pull readable article text for individual links.
package news

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"

	"golang-quote-agent/internal/entity"
	"golang-quote-agent/pkg/logger"
)

// Config holds the feed settings.
type Config struct {
	FeedURLTemplate string `mapstructure:"feed_url_template"`
	MaxItems        int    `mapstructure:"max_items"`
	MaxAgeDays      int    `mapstructure:"max_age_days"`
	RequestTimeout  int    `mapstructure:"request_timeout"`
}

// Fetcher retrieves headlines and article content.
type Fetcher struct {
	parser *gofeed.Parser
	client *http.Client
	cfg    Config
	log    *logger.Logger
}

// NewFetcher creates a Fetcher from cfg, filling zero values with defaults.
func NewFetcher(cfg Config, log *logger.Logger) *Fetcher {
	if cfg.FeedURLTemplate == "" {
		cfg.FeedURLTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 10
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 7
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30
	}
	return &Fetcher{
		parser: gofeed.NewParser(),
		client: &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		cfg:    cfg,
		log:    log,
	}
}

// Headlines fetches the most recent headlines for symbol, newest first,
// dropping items older than the configured age.
func (f *Fetcher) Headlines(ctx context.Context, symbol string) ([]entity.NewsItem, error) {
	feedURL := fmt.Sprintf(f.cfg.FeedURLTemplate, url.QueryEscape(strings.ToUpper(strings.TrimSpace(symbol))))
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	sort.Slice(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	cutoff := time.Now().AddDate(0, 0, -f.cfg.MaxAgeDays)
	items := make([]entity.NewsItem, 0, f.cfg.MaxItems)
	for _, item := range feed.Items {
		if len(items) >= f.cfg.MaxItems {
			break
		}
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}
		news := entity.NewsItem{
			Title:       strings.TrimSpace(item.Title),
			Link:        item.Link,
			PublishedAt: item.PublishedParsed,
			Summary:     strings.TrimSpace(item.Description),
		}
		if parsed, err := url.Parse(item.Link); err == nil {
			news.Source = parsed.Hostname()
		}
		items = append(items, news)
	}

	f.log.Debug("Fetched headlines",
		logger.StringField("symbol", symbol),
		logger.IntField("count", len(items)),
	)
	return items, nil
}

// ArticleContent downloads an article and extracts its readable text.
func (f *Fetcher) ArticleContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read article body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article: %w", err)
	}
	content := doc.Content()

	textDoc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}
	text := strings.Join(strings.Fields(textDoc.Text()), " ")
	return text, nil
}
