package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"golang-quote-agent/internal/agent/dto"
	"golang-quote-agent/internal/agent/repository"
	"golang-quote-agent/internal/analysis"
	"golang-quote-agent/internal/entity"
	"golang-quote-agent/internal/scraper"
	"golang-quote-agent/pkg/common"
	"golang-quote-agent/pkg/health"
	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/normalize"
	"golang-quote-agent/pkg/retry"
	"golang-quote-agent/pkg/telegram"
)

// AIAnalyzer produces an analysis result from the assembled context. Always
// returns a result, never an error.
type AIAnalyzer interface {
	Analyze(ctx context.Context, data *entity.StockData, indicators *analysis.Indicators, patterns *analysis.PatternSummary, items []entity.NewsItem) *entity.AnalysisResult
}

// HeadlineFetcher retrieves recent headlines for a symbol.
type HeadlineFetcher interface {
	Headlines(ctx context.Context, symbol string) ([]entity.NewsItem, error)
}

// AgentService is the orchestration layer shared by the CLI, the API service
// and the MCP server.
type AgentService interface {
	Scrape(ctx context.Context, symbol string) entity.ScrapingResult
	GetHistoricalData(ctx context.Context, symbol, period, interval string) (*entity.HistoricalData, error)
	Analyze(ctx context.Context, symbol, period string) (*dto.AnalysisReport, error)
	Headlines(ctx context.Context, symbol string) ([]entity.NewsItem, error)
	HealthStatus() health.Status
	ErrorSummary(hours, topN int) health.ErrorSummary
	RecentErrors(n int) []entity.ErrorInfo
}

// Options carries the optional collaborators. Any of them may be nil; the
// service degrades to scrape-only behavior.
type Options struct {
	RedisClient *goredis.Client
	RecordRepo  repository.ScrapeRecordRepository
	Notifier    telegram.Notifier
	Analyzer    AIAnalyzer
	News        HeadlineFetcher
	CacheTTL    time.Duration
}

type agentService struct {
	scraper *scraper.Scraper
	history analysis.HistoryRepository
	breaker *retry.CircuitBreaker
	tracker *health.Tracker
	opts    Options
	log     *logger.Logger
}

// NewAgentService wires the orchestration layer.
func NewAgentService(sc *scraper.Scraper, history analysis.HistoryRepository, breaker *retry.CircuitBreaker, tracker *health.Tracker, opts Options, log *logger.Logger) AgentService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	return &agentService{
		scraper: sc,
		history: history,
		breaker: breaker,
		tracker: tracker,
		opts:    opts,
		log:     log,
	}
}

// Scrape runs one scrape through the circuit breaker, serving cached results
// when Redis holds a fresh one.
func (s *agentService) Scrape(ctx context.Context, symbol string) entity.ScrapingResult {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if cached, ok := s.cachedResult(ctx, symbol); ok {
		return cached
	}

	var result entity.ScrapingResult
	err := s.breaker.Call(func() error {
		result = s.scraper.Scrape(ctx, symbol)
		if !result.Success {
			return errors.New(result.ErrorMessage)
		}
		return nil
	})
	if errors.Is(err, retry.ErrCircuitOpen) {
		s.tracker.RecordError(err, entity.ErrorCategoryNetwork, entity.ErrorSeverityHigh, map[string]string{"symbol": symbol}, 0)
		result = entity.ScrapingResult{
			Success:      false,
			ErrorMessage: err.Error(),
			Timestamp:    time.Now(),
		}
	}

	s.persistRecord(ctx, symbol, result)
	if result.Success {
		s.cacheResult(ctx, symbol, result)
	} else {
		s.alertFailure(symbol, result.ErrorMessage)
	}
	return result
}

// GetHistoricalData proxies to the history repository.
func (s *agentService) GetHistoricalData(ctx context.Context, symbol, period, interval string) (*entity.HistoricalData, error) {
	if !normalize.ValidSymbol(symbol) {
		return nil, fmt.Errorf("invalid symbol: %q", symbol)
	}
	return s.history.GetHistoricalData(ctx, symbol, period, interval)
}

// Analyze runs the full pipeline: scrape, history, indicators, patterns,
// headlines and AI analysis. Sections that fail are logged and left out; the
// report fails only when the scrape itself does.
func (s *agentService) Analyze(ctx context.Context, symbol, period string) (*dto.AnalysisReport, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	report := &dto.AnalysisReport{Symbol: symbol, GeneratedAt: time.Now()}

	scrapeResult := s.Scrape(ctx, symbol)
	if !scrapeResult.Success {
		return nil, fmt.Errorf("scrape failed: %s", scrapeResult.ErrorMessage)
	}
	report.Quote = scrapeResult.Data

	historical, err := s.history.GetHistoricalData(ctx, symbol, period, "1d")
	if err != nil {
		s.log.Warn("Historical data unavailable", logger.StringField("symbol", symbol), logger.ErrorField(err))
		s.tracker.RecordError(err, health.Categorize(err), entity.ErrorSeverityLow, map[string]string{"symbol": symbol}, 0)
	} else {
		report.Quote.HistoricalData = historical
		indicators := analysis.ComputeIndicators(historical)
		patterns := analysis.AnalyzePatterns(historical)
		report.Indicators = &indicators
		report.Patterns = &patterns
	}

	if s.opts.News != nil {
		items, err := s.opts.News.Headlines(ctx, symbol)
		if err != nil {
			s.log.Warn("Headlines unavailable", logger.StringField("symbol", symbol), logger.ErrorField(err))
		} else {
			report.News = items
		}
	}

	if s.opts.Analyzer != nil {
		report.AIAnalysis = s.opts.Analyzer.Analyze(ctx, report.Quote, report.Indicators, report.Patterns, report.News)
	}
	return report, nil
}

// Headlines proxies to the news fetcher.
func (s *agentService) Headlines(ctx context.Context, symbol string) ([]entity.NewsItem, error) {
	if s.opts.News == nil {
		return nil, errors.New("news fetching is not configured")
	}
	if !normalize.ValidSymbol(symbol) {
		return nil, fmt.Errorf("invalid symbol: %q", symbol)
	}
	return s.opts.News.Headlines(ctx, symbol)
}

// HealthStatus returns the current derived health status.
func (s *agentService) HealthStatus() health.Status {
	return s.tracker.GetStatus()
}

// ErrorSummary aggregates the recent error log.
func (s *agentService) ErrorSummary(hours, topN int) health.ErrorSummary {
	return s.tracker.GetErrorSummary(hours, topN)
}

// RecentErrors returns the most recent error records.
func (s *agentService) RecentErrors(n int) []entity.ErrorInfo {
	return s.tracker.RecentErrors(n)
}

func (s *agentService) cacheKey(symbol string) string {
	return common.RedisKeyQuotePrefix + symbol
}

func (s *agentService) cachedResult(ctx context.Context, symbol string) (entity.ScrapingResult, bool) {
	if s.opts.RedisClient == nil {
		return entity.ScrapingResult{}, false
	}
	raw, err := s.opts.RedisClient.Get(ctx, s.cacheKey(symbol)).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.log.Warn("Redis get failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
		}
		return entity.ScrapingResult{}, false
	}
	var result entity.ScrapingResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return entity.ScrapingResult{}, false
	}
	s.log.Debug("Served scrape from cache", logger.StringField("symbol", symbol))
	return result, true
}

func (s *agentService) cacheResult(ctx context.Context, symbol string, result entity.ScrapingResult) {
	if s.opts.RedisClient == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.opts.RedisClient.Set(ctx, s.cacheKey(symbol), raw, s.opts.CacheTTL).Err(); err != nil {
		s.log.Warn("Redis set failed", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}
}

func (s *agentService) persistRecord(ctx context.Context, symbol string, result entity.ScrapingResult) {
	if s.opts.RecordRepo == nil {
		return
	}
	record := &entity.ScrapeRecord{
		Symbol:       symbol,
		Success:      result.Success,
		ErrorMessage: result.ErrorMessage,
		ElapsedMs:    result.ExtractionTime.Milliseconds(),
	}
	if result.Data != nil {
		record.CurrentPrice = result.Data.PriceInfo.CurrentPrice
		record.PriceChangePct = result.Data.PriceInfo.PriceChangePercent
	}
	if err := s.opts.RecordRepo.Create(ctx, record); err != nil {
		s.log.Error("Failed to persist scrape record", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}
}

func (s *agentService) alertFailure(symbol, message string) {
	if s.opts.Notifier == nil {
		return
	}
	text := telegram.FormatScrapeFailure(symbol, message)
	if err := s.opts.Notifier.SendMessage(text); err != nil {
		s.log.Warn("Failed to send alert", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}
}
