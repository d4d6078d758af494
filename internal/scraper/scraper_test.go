package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-quote-agent/pkg/health"
	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/retry"
)

type fakeFetcher struct {
	doc   *Document
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func newTestScraper(fetcher DocumentFetcher, tracker *health.Tracker) *Scraper {
	policy := retry.Policy{MaxRetries: 3, BaseDelay: time.Millisecond, BackoffFactor: 2, MaxDelay: 5 * time.Millisecond}
	return NewScraper(fetcher, newTestExtractor(), policy, tracker, tracker, logger.NewNop())
}

func TestScrapeFullQuotePage(t *testing.T) {
	tracker := health.NewTracker(0)
	fetcher := &fakeFetcher{doc: parseDoc(t, quotePageHTML)}
	s := newTestScraper(fetcher, tracker)

	result := s.Scrape(context.Background(), "aapl")
	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, 1, fetcher.calls)

	data := result.Data
	assert.Equal(t, "AAPL", data.Symbol)
	assert.Equal(t, "Apple Inc.", data.CompanyInfo.CompanyName)

	require.NotNil(t, data.PriceInfo.CurrentPrice)
	assert.Equal(t, 150.25, *data.PriceInfo.CurrentPrice)
	require.NotNil(t, data.PriceInfo.PriceChange)
	assert.Equal(t, 2.15, *data.PriceInfo.PriceChange)
	require.NotNil(t, data.PriceInfo.DayLow)
	assert.Equal(t, 147.80, *data.PriceInfo.DayLow)
	require.NotNil(t, data.PriceInfo.DayHigh)
	assert.Equal(t, 151.20, *data.PriceInfo.DayHigh)
	require.NotNil(t, data.PriceInfo.Week52High)
	assert.Equal(t, 199.62, *data.PriceInfo.Week52High)

	require.NotNil(t, data.TradingMetrics.Volume)
	assert.Equal(t, int64(52416025), *data.TradingMetrics.Volume)
	require.NotNil(t, data.TradingMetrics.MarketCap)
	assert.Equal(t, "2,850,000,000,000", *data.TradingMetrics.MarketCap)

	require.NotNil(t, data.FinancialRatios.DividendYield)
	assert.Equal(t, 0.52, *data.FinancialRatios.DividendYield)

	status := tracker.GetStatus()
	assert.Equal(t, health.StatusHealthy, status.Status)
	assert.Equal(t, int64(1), status.Metrics.RequestsSuccessful)
}

func TestScrapeEmptyPageSucceedsWithAbsentFields(t *testing.T) {
	tracker := health.NewTracker(0)
	fetcher := &fakeFetcher{doc: parseDoc(t, `<html><body></body></html>`)}
	s := newTestScraper(fetcher, tracker)

	result := s.Scrape(context.Background(), "MSFT")
	require.True(t, result.Success)
	require.NotNil(t, result.Data)

	data := result.Data
	assert.Nil(t, data.PriceInfo.CurrentPrice)
	assert.Nil(t, data.TradingMetrics.Volume)
	assert.Nil(t, data.FinancialRatios.PERatio)
	// Company name falls back to the symbol.
	assert.Equal(t, "MSFT", data.CompanyInfo.CompanyName)
}

func TestScrapeStatisticsTableFields(t *testing.T) {
	html := `<html><body><table>
		<tr><td>Shares Outstanding</td><td>15.2B</td></tr>
		<tr><td>Book Value</td><td>4.25</td></tr>
		<tr><td>Price/Book</td><td>35.40</td></tr>
	</table></body></html>`
	tracker := health.NewTracker(0)
	s := newTestScraper(&fakeFetcher{doc: parseDoc(t, html)}, tracker)

	result := s.Scrape(context.Background(), "AAPL")
	require.True(t, result.Success)

	data := result.Data
	require.NotNil(t, data.TradingMetrics.SharesOutstanding)
	assert.Equal(t, int64(15_200_000_000), *data.TradingMetrics.SharesOutstanding)
	require.NotNil(t, data.FinancialRatios.BookValue)
	assert.Equal(t, 4.25, *data.FinancialRatios.BookValue)
	require.NotNil(t, data.FinancialRatios.PriceToBook)
	assert.Equal(t, 35.40, *data.FinancialRatios.PriceToBook)
}

func TestScrapeInvalidSymbolFailsWithoutFetching(t *testing.T) {
	tracker := health.NewTracker(0)
	fetcher := &fakeFetcher{doc: parseDoc(t, quotePageHTML)}
	s := newTestScraper(fetcher, tracker)

	for _, symbol := range []string{"", "TOOLONG", "AB12"} {
		result := s.Scrape(context.Background(), symbol)
		assert.False(t, result.Success, "symbol=%q", symbol)
		assert.Nil(t, result.Data)
		assert.NotEmpty(t, result.ErrorMessage)
	}
	assert.Equal(t, 0, fetcher.calls)
	assert.Equal(t, int64(3), tracker.GetStatus().Metrics.RequestsFailed)
}

func TestScrapePersistentFetchFailure(t *testing.T) {
	tracker := health.NewTracker(0)
	fetcher := &fakeFetcher{err: errors.New("connection timeout")}
	s := newTestScraper(fetcher, tracker)

	result := s.Scrape(context.Background(), "AAPL")
	assert.False(t, result.Success)
	assert.Nil(t, result.Data)
	assert.Contains(t, result.ErrorMessage, "connection timeout")
	// Initial attempt plus three retries.
	assert.Equal(t, 4, fetcher.calls)

	summary := tracker.GetErrorSummary(1, 5)
	assert.Equal(t, 4, summary.TotalErrors)
	assert.Equal(t, 4, summary.ByCategory["network"])
}

func TestSplitRange(t *testing.T) {
	low, high := splitRange("145.30 - 150.80")
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, 145.30, *low)
	assert.Equal(t, 150.80, *high)

	low, high = splitRange("garbage")
	assert.Nil(t, low)
	assert.Nil(t, high)
}
