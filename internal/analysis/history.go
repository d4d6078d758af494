// Package analysis retrieves historical price series and computes technical
// indicators and chart patterns over them.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"golang-quote-agent/internal/entity"
	"golang-quote-agent/pkg/logger"
)

// HistoryRepository retrieves OHLCV series for a symbol.
type HistoryRepository interface {
	GetHistoricalData(ctx context.Context, symbol, period, interval string) (*entity.HistoricalData, error)
}

// HistoryConfig holds the chart API settings.
type HistoryConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	RequestTimeout    int     `mapstructure:"request_timeout"`
	SecondsPerRequest float64 `mapstructure:"seconds_per_request"`
	UserAgent         string  `mapstructure:"user_agent"`
}

type historyRepository struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     HistoryConfig
	log     *logger.Logger
}

// NewHistoryRepository creates a chart API backed HistoryRepository.
func NewHistoryRepository(cfg HistoryConfig, log *logger.Logger) HistoryRepository {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30
	}
	if cfg.SecondsPerRequest <= 0 {
		cfg.SecondsPerRequest = 1
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0"
	}
	return &historyRepository{
		client:  &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Duration(cfg.SecondsPerRequest*float64(time.Second))), 1),
		cfg:     cfg,
		log:     log,
	}
}

// chartResponse is the chart API response shape. Null bars come through as
// nil entries in the quote arrays.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

var validPeriods = map[string]bool{
	"1d": true, "5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "ytd": true, "max": true,
}

var validIntervals = map[string]bool{
	"1m": true, "5m": true, "15m": true, "30m": true, "1h": true,
	"1d": true, "1wk": true, "1mo": true,
}

// GetHistoricalData fetches a price series. Defaults to one year of daily
// bars.
func (r *historyRepository) GetHistoricalData(ctx context.Context, symbol, period, interval string) (*entity.HistoricalData, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if period == "" || !validPeriods[period] {
		period = "1y"
	}
	if interval == "" || !validIntervals[interval] {
		interval = "1d"
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	u := fmt.Sprintf("%s/%s?interval=%s&range=%s", r.cfg.BaseURL, url.PathEscape(symbol), interval, period)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart api status %d", resp.StatusCode)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	data := &entity.HistoricalData{
		Symbol:     symbol,
		Period:     period,
		Interval:   interval,
		DataPoints: make([]entity.HistoricalDataPoint, 0, len(result.Timestamp)),
	}
	for i, ts := range result.Timestamp {
		point := entity.HistoricalDataPoint{Date: time.Unix(ts, 0).UTC()}
		if i < len(quote.Open) {
			point.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			point.High = quote.High[i]
		}
		if i < len(quote.Low) {
			point.Low = quote.Low[i]
		}
		if i < len(quote.Close) {
			point.Close = quote.Close[i]
		}
		if i < len(quote.Volume) {
			point.Volume = quote.Volume[i]
		}
		if len(result.Indicators.AdjClose) > 0 && i < len(result.Indicators.AdjClose[0].AdjClose) {
			point.AdjClose = result.Indicators.AdjClose[0].AdjClose[i]
		}
		data.DataPoints = append(data.DataPoints, point)
	}

	data.Clean()
	if len(data.DataPoints) == 0 {
		return nil, fmt.Errorf("no usable bars for %s", symbol)
	}
	r.log.Debug("Fetched historical data",
		logger.StringField("symbol", symbol),
		logger.IntField("points", len(data.DataPoints)),
	)
	return data, nil
}
