package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-quote-agent/internal/entity"
	"golang-quote-agent/internal/scraper"
	"golang-quote-agent/pkg/health"
	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/retry"
)

const quotePage = `<html><body>
<h1>Apple Inc. (AAPL)</h1>
<fin-streamer data-symbol="AAPL" data-field="regularMarketPrice" value="150.25">150.25</fin-streamer>
</body></html>`

type stubFetcher struct {
	html  string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (*scraper.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return scraper.NewDocument(strings.NewReader(f.html))
}

type stubHistory struct {
	data *entity.HistoricalData
	err  error
}

func (h *stubHistory) GetHistoricalData(_ context.Context, symbol, period, interval string) (*entity.HistoricalData, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.data, nil
}

type stubNotifier struct {
	messages []string
}

func (n *stubNotifier) SendMessage(text string) error {
	n.messages = append(n.messages, text)
	return nil
}

type stubRecordRepo struct {
	records []entity.ScrapeRecord
}

func (r *stubRecordRepo) Create(_ context.Context, record *entity.ScrapeRecord) error {
	r.records = append(r.records, *record)
	return nil
}

func (r *stubRecordRepo) FindBySymbol(context.Context, string, int) ([]entity.ScrapeRecord, error) {
	return r.records, nil
}

func (r *stubRecordRepo) FindRecent(context.Context, int) ([]entity.ScrapeRecord, error) {
	return r.records, nil
}

func (r *stubRecordRepo) SuccessRateSince(context.Context, string, time.Time) (int64, int64, error) {
	return int64(len(r.records)), int64(len(r.records)), nil
}

func (r *stubRecordRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newService(fetcher *stubFetcher, history *stubHistory, opts Options) (AgentService, *health.Tracker) {
	log := logger.NewNop()
	tracker := health.NewTracker(0)
	policy := retry.Policy{MaxRetries: 1, BaseDelay: time.Millisecond, BackoffFactor: 2, MaxDelay: 5 * time.Millisecond}
	sc := scraper.NewScraper(fetcher, scraper.NewExtractor(scraper.DefaultValidationBounds(), log), policy, tracker, tracker, log)
	breaker := retry.NewCircuitBreaker(3, 50*time.Millisecond)
	return NewAgentService(sc, history, breaker, tracker, opts, log), tracker
}

func TestScrapePersistsRecord(t *testing.T) {
	fetcher := &stubFetcher{html: quotePage}
	repo := &stubRecordRepo{}
	svc, _ := newService(fetcher, &stubHistory{}, Options{RecordRepo: repo})

	result := svc.Scrape(context.Background(), "aapl")
	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, "AAPL", result.Data.Symbol)

	require.Len(t, repo.records, 1)
	assert.Equal(t, "AAPL", repo.records[0].Symbol)
	assert.True(t, repo.records[0].Success)
	require.NotNil(t, repo.records[0].CurrentPrice)
	assert.Equal(t, 150.25, *repo.records[0].CurrentPrice)
}

func TestScrapeFailureSendsAlert(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	notifier := &stubNotifier{}
	svc, _ := newService(fetcher, &stubHistory{}, Options{Notifier: notifier})

	result := svc.Scrape(context.Background(), "AAPL")
	assert.False(t, result.Success)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "AAPL")
}

func TestCircuitBreakerShortCircuitsScrapes(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	svc, _ := newService(fetcher, &stubHistory{}, Options{})

	for i := 0; i < 3; i++ {
		result := svc.Scrape(context.Background(), "AAPL")
		assert.False(t, result.Success)
	}
	callsBeforeOpen := fetcher.calls

	result := svc.Scrape(context.Background(), "AAPL")
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "circuit breaker")
	assert.Equal(t, callsBeforeOpen, fetcher.calls)
}

func TestAnalyzeBuildsReportWithDegradedSections(t *testing.T) {
	fetcher := &stubFetcher{html: quotePage}
	history := &stubHistory{err: errors.New("no chart data")}
	svc, _ := newService(fetcher, history, Options{})

	report, err := svc.Analyze(context.Background(), "AAPL", "1y")
	require.NoError(t, err)
	require.NotNil(t, report.Quote)
	assert.Equal(t, "AAPL", report.Symbol)
	// History failed, so the indicator sections are absent but the report
	// still came back.
	assert.Nil(t, report.Indicators)
	assert.Nil(t, report.Patterns)
}

func TestAnalyzeComputesIndicatorsFromHistory(t *testing.T) {
	closes := make([]entity.HistoricalDataPoint, 0, 60)
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		c := 100.0
		v := int64(1_000_000)
		closes = append(closes, entity.HistoricalDataPoint{
			Date: base.AddDate(0, 0, i), Open: &c, High: &c, Low: &c, Close: &c, Volume: &v,
		})
	}
	history := &stubHistory{data: &entity.HistoricalData{Symbol: "AAPL", DataPoints: closes}}
	svc, _ := newService(&stubFetcher{html: quotePage}, history, Options{})

	report, err := svc.Analyze(context.Background(), "AAPL", "1y")
	require.NoError(t, err)
	require.NotNil(t, report.Indicators)
	require.NotNil(t, report.Indicators.SMA20)
	assert.InDelta(t, 100, *report.Indicators.SMA20, 1e-9)
	require.NotNil(t, report.Patterns)
}

func TestHeadlinesWithoutFetcherConfigured(t *testing.T) {
	svc, _ := newService(&stubFetcher{html: quotePage}, &stubHistory{}, Options{})
	_, err := svc.Headlines(context.Background(), "AAPL")
	assert.Error(t, err)
}
