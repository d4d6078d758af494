package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang-quote-agent/internal/entity"
	"golang-quote-agent/pkg/health"
	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/normalize"
	"golang-quote-agent/pkg/retry"
)

// Scraper drives one full quote extraction: fetch with retries, run the
// strategy chain per field, assemble the typed result. Extraction failures
// for individual fields never fail the scrape; only an invalid symbol or an
// unfetchable page does.
type Scraper struct {
	fetcher   DocumentFetcher
	extractor *Extractor
	policy    retry.Policy
	errors    health.ErrorSink
	metrics   health.MetricsSink
	log       *logger.Logger
}

// NewScraper wires a Scraper. errors and metrics may be the same value; the
// health.Tracker implements both.
func NewScraper(fetcher DocumentFetcher, extractor *Extractor, policy retry.Policy, errors health.ErrorSink, metrics health.MetricsSink, log *logger.Logger) *Scraper {
	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
		policy:    policy,
		errors:    errors,
		metrics:   metrics,
		log:       log,
	}
}

var dividendYieldRe = regexp.MustCompile(`\(([\d.]+)%\)`)

// Scrape extracts everything it can for symbol. The returned result carries
// Success=false only for an invalid symbol or a page that could not be
// fetched after retries.
func (s *Scraper) Scrape(ctx context.Context, symbol string) entity.ScrapingResult {
	start := time.Now()
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if !normalize.ValidSymbol(symbol) {
		err := fmt.Errorf("invalid symbol: %q", symbol)
		s.errors.RecordError(err, entity.ErrorCategoryValidation, entity.ErrorSeverityLow, map[string]string{"symbol": symbol}, 0)
		s.metrics.RecordRequest(false, time.Since(start))
		return entity.ScrapingResult{
			Success:        false,
			ErrorMessage:   err.Error(),
			ExtractionTime: time.Since(start),
			Timestamp:      time.Now(),
		}
	}

	var doc *Document
	err := retry.Do(ctx, s.policy, func() error {
		var fetchErr error
		doc, fetchErr = s.fetcher.Fetch(ctx, symbol)
		return fetchErr
	}, func(err error, attempt int) {
		s.log.Warn("Fetch attempt failed",
			logger.StringField("symbol", symbol),
			logger.IntField("attempt", attempt),
			logger.ErrorField(err),
		)
		s.errors.RecordError(err, health.Categorize(err), entity.ErrorSeverityMedium, map[string]string{"symbol": symbol}, attempt)
	})
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		s.log.Error("Scrape failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		return entity.ScrapingResult{
			Success:        false,
			ErrorMessage:   err.Error(),
			ExtractionTime: time.Since(start),
			Timestamp:      time.Now(),
		}
	}

	data := s.assemble(doc, symbol)
	elapsed := time.Since(start)
	s.metrics.RecordRequest(true, elapsed)
	s.log.Info("Scrape complete",
		logger.StringField("symbol", symbol),
		logger.DurationField("elapsed", elapsed),
	)
	return entity.ScrapingResult{
		Success:        true,
		Data:           data,
		ExtractionTime: elapsed,
		Timestamp:      time.Now(),
	}
}

// assemble runs every field through the extractor and builds the aggregate.
// Absent fields stay nil.
func (s *Scraper) assemble(doc *Document, symbol string) *entity.StockData {
	data := entity.NewStockData(symbol)

	data.PriceInfo.CurrentPrice = s.extractor.Price(doc, symbol, FieldCurrentPrice)
	data.PriceInfo.PriceChange = s.extractor.Signed(doc, symbol, FieldPriceChange)
	data.PriceInfo.PriceChangePercent = s.extractor.Signed(doc, symbol, FieldPriceChangePercent)
	data.PriceInfo.PreviousClose = s.extractor.Price(doc, symbol, FieldPreviousClose)
	data.PriceInfo.OpenPrice = s.extractor.Price(doc, symbol, FieldOpenPrice)

	if raw, ok := s.extractor.Extract(doc, symbol, FieldDayRange); ok {
		data.PriceInfo.DayLow, data.PriceInfo.DayHigh = splitRange(raw)
	}
	if raw, ok := s.extractor.Extract(doc, symbol, FieldWeek52Range); ok {
		data.PriceInfo.Week52Low, data.PriceInfo.Week52High = splitRange(raw)
	}

	// Derive the change fields from previous close when the page omits them.
	if data.PriceInfo.PriceChange == nil && data.PriceInfo.CurrentPrice != nil && data.PriceInfo.PreviousClose != nil {
		change := *data.PriceInfo.CurrentPrice - *data.PriceInfo.PreviousClose
		data.PriceInfo.PriceChange = &change
	}
	if data.PriceInfo.PriceChangePercent == nil {
		if pct := normalize.SafeDivide(data.PriceInfo.PriceChange, data.PriceInfo.PreviousClose); pct != nil {
			scaled := *pct * 100
			data.PriceInfo.PriceChangePercent = &scaled
		}
	}

	data.TradingMetrics.Volume = s.extractor.Volume(doc, symbol, FieldVolume)
	data.TradingMetrics.AvgVolume = s.extractor.Volume(doc, symbol, FieldAvgVolume)
	data.TradingMetrics.SharesOutstanding = s.extractor.Volume(doc, symbol, FieldSharesOutstanding)
	if raw, ok := s.extractor.Extract(doc, symbol, FieldMarketCap); ok {
		expanded := normalize.ParseMarketCap(raw)
		data.TradingMetrics.MarketCap = &expanded
	}

	data.FinancialRatios.PERatio = s.extractor.Signed(doc, symbol, FieldPERatio)
	data.FinancialRatios.EPS = s.extractor.Signed(doc, symbol, FieldEPS)
	data.FinancialRatios.Beta = s.extractor.Signed(doc, symbol, FieldBeta)
	data.FinancialRatios.BookValue = s.extractor.Signed(doc, symbol, FieldBookValue)
	data.FinancialRatios.PriceToBook = s.extractor.Signed(doc, symbol, FieldPriceToBook)
	data.FinancialRatios.DividendYield = s.dividendYield(doc, symbol)

	if name := s.extractor.Text(doc, symbol, FieldCompanyName); name != nil {
		data.CompanyInfo.CompanyName = *name
	}
	data.CompanyInfo.Sector = s.extractor.Text(doc, symbol, FieldSector)
	data.CompanyInfo.Industry = s.extractor.Text(doc, symbol, FieldIndustry)

	data.PriceInfo.Timestamp = time.Now()
	data.LastUpdated = time.Now()
	return data
}

// dividendYield handles the combined "0.52 (0.47%)" display, preferring the
// percentage inside the parentheses.
func (s *Scraper) dividendYield(doc *Document, symbol string) *float64 {
	raw, ok := s.extractor.Extract(doc, symbol, FieldDividendYield)
	if !ok {
		return nil
	}
	if m := dividendYieldRe.FindStringSubmatch(raw); m != nil {
		return normalize.CleanNumeric(m[1])
	}
	return normalize.CleanNumeric(raw)
}

// splitRange parses "145.30 - 150.80" into its low and high ends.
func splitRange(raw string) (low, high *float64) {
	parts := strings.Split(raw, " - ")
	if len(parts) != 2 {
		parts = strings.SplitN(raw, "-", 2)
	}
	if len(parts) != 2 {
		return nil, nil
	}
	return normalize.CleanNumeric(parts[0]), normalize.CleanNumeric(parts[1])
}
