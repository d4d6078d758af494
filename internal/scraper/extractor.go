package scraper

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/normalize"
)

// ValidationBounds rejects implausible extracted values so a wrong selector
// match cannot poison the result.
type ValidationBounds struct {
	PriceMin   float64 `mapstructure:"price_min"`
	PriceMax   float64 `mapstructure:"price_max"`
	NameMinLen int     `mapstructure:"name_min_len"`
	NameMaxLen int     `mapstructure:"name_max_len"`
	RatioMin   float64 `mapstructure:"ratio_min"`
	RatioMax   float64 `mapstructure:"ratio_max"`
}

// DefaultValidationBounds returns the production bounds.
func DefaultValidationBounds() ValidationBounds {
	return ValidationBounds{
		PriceMin:   0.01,
		PriceMax:   10000,
		NameMinLen: 2,
		NameMaxLen: 100,
		RatioMin:   -1000,
		RatioMax:   1000,
	}
}

// Extractor runs the strategy chain for a field and remembers which strategy
// last worked per (symbol, field) so repeat scrapes skip straight to it. A
// cached strategy that stops working is evicted and the full chain runs again.
type Extractor struct {
	strategies   []Strategy
	successCache *cache.Cache
	bounds       ValidationBounds
	log          *logger.Logger
}

// NewExtractor creates an Extractor with the default strategy chain.
func NewExtractor(bounds ValidationBounds, log *logger.Logger) *Extractor {
	if bounds == (ValidationBounds{}) {
		bounds = DefaultValidationBounds()
	}
	return &Extractor{
		strategies:   defaultStrategies(),
		successCache: cache.New(24*time.Hour, time.Hour),
		bounds:       bounds,
		log:          log,
	}
}

// Extract finds the raw text for a field. Absence is reported by the bool,
// never by an error.
func (e *Extractor) Extract(doc *Document, symbol, field string) (string, bool) {
	cacheKey := symbol + "_" + field

	if cached, ok := e.successCache.Get(cacheKey); ok {
		name := cached.(string)
		for _, strategy := range e.strategies {
			if strategy.Name() != name {
				continue
			}
			if value, ok := strategy.Extract(doc, symbol, field); ok && e.valid(field, value) {
				return value, true
			}
			e.successCache.Delete(cacheKey)
			e.log.Debug("Cached strategy stopped working",
				logger.StringField("symbol", symbol),
				logger.StringField("field", field),
				logger.StringField("strategy", name),
			)
			break
		}
	}

	for _, strategy := range e.strategies {
		value, ok := strategy.Extract(doc, symbol, field)
		if !ok || !e.valid(field, value) {
			continue
		}
		e.successCache.Set(cacheKey, strategy.Name(), cache.DefaultExpiration)
		return value, true
	}
	return "", false
}

// Price extracts a field and normalizes it to a price, enforcing the price
// bounds.
func (e *Extractor) Price(doc *Document, symbol, field string) *float64 {
	raw, ok := e.Extract(doc, symbol, field)
	if !ok {
		return nil
	}
	value := normalize.CleanNumeric(raw)
	if value == nil || *value < e.bounds.PriceMin || *value > e.bounds.PriceMax {
		return nil
	}
	return value
}

// Signed extracts a field that may legitimately be negative, such as a price
// change or a ratio, enforcing the ratio bounds.
func (e *Extractor) Signed(doc *Document, symbol, field string) *float64 {
	raw, ok := e.Extract(doc, symbol, field)
	if !ok {
		return nil
	}
	value := normalize.CleanNumeric(raw)
	if value == nil || *value < e.bounds.RatioMin || *value > e.bounds.RatioMax {
		return nil
	}
	return value
}

// Volume extracts a field and normalizes it to a whole count, accepting
// magnitude suffixes.
func (e *Extractor) Volume(doc *Document, symbol, field string) *int64 {
	raw, ok := e.Extract(doc, symbol, field)
	if !ok {
		return nil
	}
	return normalize.ParseMagnitude(raw)
}

// Text extracts a free-text field such as the company name or sector.
func (e *Extractor) Text(doc *Document, symbol, field string) *string {
	raw, ok := e.Extract(doc, symbol, field)
	if !ok {
		return nil
	}
	return &raw
}

// valid applies the per-field plausibility check used before a strategy is
// recorded as successful.
func (e *Extractor) valid(field, value string) bool {
	switch field {
	case FieldCurrentPrice, FieldPreviousClose, FieldOpenPrice:
		v := normalize.CleanNumeric(value)
		return v != nil && *v >= e.bounds.PriceMin && *v <= e.bounds.PriceMax
	case FieldPriceChange, FieldPriceChangePercent, FieldPERatio, FieldEPS, FieldBeta,
		FieldBookValue, FieldPriceToBook:
		v := normalize.CleanNumeric(value)
		return v != nil && *v >= e.bounds.RatioMin && *v <= e.bounds.RatioMax
	case FieldDayRange, FieldWeek52Range:
		return strings.Contains(value, "-")
	case FieldVolume, FieldAvgVolume, FieldSharesOutstanding:
		return normalize.ParseMagnitude(value) != nil
	case FieldCompanyName:
		trimmed := strings.TrimSpace(value)
		if len(trimmed) < e.bounds.NameMinLen || len(trimmed) > e.bounds.NameMaxLen {
			return false
		}
		return normalize.CleanNumeric(trimmed) == nil
	default:
		return strings.TrimSpace(value) != ""
	}
}
