package entity

import (
	"strings"
	"time"
)

// StockPrice holds the current price block of a quote page. Every numeric
// field is optional: the source regularly omits or garbles individual values
// and absence is an expected state, not an error.
type StockPrice struct {
	CurrentPrice       *float64  `json:"current_price,omitempty"`
	PriceChange        *float64  `json:"price_change,omitempty"`
	PriceChangePercent *float64  `json:"price_change_percent,omitempty"`
	PreviousClose      *float64  `json:"previous_close,omitempty"`
	OpenPrice          *float64  `json:"open_price,omitempty"`
	DayLow             *float64  `json:"day_low,omitempty"`
	DayHigh            *float64  `json:"day_high,omitempty"`
	Week52Low          *float64  `json:"week_52_low,omitempty"`
	Week52High         *float64  `json:"week_52_high,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// TradingMetrics holds volume and capitalization figures. Market cap stays a
// display string because the source format varies too much to normalize
// losslessly.
type TradingMetrics struct {
	Volume            *int64  `json:"volume,omitempty"`
	AvgVolume         *int64  `json:"avg_volume,omitempty"`
	MarketCap         *string `json:"market_cap,omitempty"`
	SharesOutstanding *int64  `json:"shares_outstanding,omitempty"`
}

// FinancialRatios holds valuation ratios. All optional.
type FinancialRatios struct {
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	EPS           *float64 `json:"eps,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`
	BookValue     *float64 `json:"book_value,omitempty"`
	PriceToBook   *float64 `json:"price_to_book,omitempty"`
}

// CompanyInfo identifies the instrument. Symbol and CompanyName are required;
// CompanyName falls back to the symbol when no name can be extracted.
type CompanyInfo struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name"`
	Sector      *string `json:"sector,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Description *string `json:"description,omitempty"`
}

// StockData aggregates everything extracted for one symbol in one pass.
type StockData struct {
	Symbol          string          `json:"symbol"`
	PriceInfo       StockPrice      `json:"price_info"`
	TradingMetrics  TradingMetrics  `json:"trading_metrics"`
	FinancialRatios FinancialRatios `json:"financial_ratios"`
	CompanyInfo     CompanyInfo     `json:"company_info"`
	HistoricalData  *HistoricalData `json:"historical_data,omitempty"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// NewStockData creates a StockData with the symbol invariant applied: the
// symbol is uppercased and mirrored into CompanyInfo.
func NewStockData(symbol string) *StockData {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return &StockData{
		Symbol: symbol,
		CompanyInfo: CompanyInfo{
			Symbol:      symbol,
			CompanyName: symbol,
		},
		PriceInfo:   StockPrice{Timestamp: time.Now()},
		LastUpdated: time.Now(),
	}
}

// ScrapingResult is the outcome of one scrape call. When Success is false,
// Data is nil and ErrorMessage carries a human-readable reason.
type ScrapingResult struct {
	Success        bool          `json:"success"`
	Data           *StockData    `json:"data,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	ExtractionTime time.Duration `json:"extraction_time"`
	Timestamp      time.Time     `json:"timestamp"`
}
