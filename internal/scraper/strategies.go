package scraper

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field identifiers. Every extraction is addressed by (symbol, field).
const (
	FieldCurrentPrice       = "current_price"
	FieldPriceChange        = "price_change"
	FieldPriceChangePercent = "price_change_percent"
	FieldPreviousClose      = "previous_close"
	FieldOpenPrice          = "open_price"
	FieldDayRange           = "day_range"
	FieldWeek52Range        = "week_52_range"
	FieldVolume             = "volume"
	FieldAvgVolume          = "avg_volume"
	FieldMarketCap          = "market_cap"
	FieldPERatio            = "pe_ratio"
	FieldEPS                = "eps"
	FieldDividendYield      = "dividend_yield"
	FieldBeta               = "beta"
	FieldSharesOutstanding  = "shares_outstanding"
	FieldBookValue          = "book_value"
	FieldPriceToBook        = "price_to_book"
	FieldCompanyName        = "company_name"
	FieldSector             = "sector"
	FieldIndustry           = "industry"
)

// Strategy is one way of locating a field on the page. A false return means
// the strategy does not apply or found nothing, never an error.
type Strategy interface {
	Name() string
	Extract(doc *Document, symbol, field string) (string, bool)
}

// defaultStrategies returns the full chain in priority order. The success
// cache short-circuits this ordering for fields that extracted before.
func defaultStrategies() []Strategy {
	return []Strategy{
		&attributeStrategy{},
		&cssSelectorStrategy{},
		&headerStrategy{},
		&metadataStrategy{},
		&structuredDataStrategy{},
		&tableStrategy{},
		&textPatternStrategy{},
		&contextualStrategy{},
	}
}

// attributeStrategy reads the streamed price elements addressed by
// data-symbol and data-field attributes. The value attribute carries the raw
// number; the element text is the display fallback.
type attributeStrategy struct{}

var streamerFields = map[string]string{
	FieldCurrentPrice:       "regularMarketPrice",
	FieldPriceChange:        "regularMarketChange",
	FieldPriceChangePercent: "regularMarketChangePercent",
}

func (s *attributeStrategy) Name() string { return "attribute" }

func (s *attributeStrategy) Extract(doc *Document, symbol, field string) (string, bool) {
	dataField, ok := streamerFields[field]
	if !ok {
		return "", false
	}
	selector := fmt.Sprintf(`[data-symbol=%q][data-field=%q]`, symbol, dataField)
	if value, ok := doc.Attr(selector, "value"); ok {
		return value, true
	}
	return doc.Text(selector)
}

// cssSelectorStrategy reads the statistics table cells addressed by
// data-testid attributes.
type cssSelectorStrategy struct{}

var testIDFields = map[string]string{
	FieldPreviousClose: "PREV_CLOSE-value",
	FieldOpenPrice:     "OPEN-value",
	FieldDayRange:      "DAYS_RANGE-value",
	FieldWeek52Range:   "FIFTY_TWO_WK_RANGE-value",
	FieldVolume:        "TD_VOLUME-value",
	FieldAvgVolume:     "AVERAGE_VOLUME_3MONTH-value",
	FieldMarketCap:     "MARKET_CAP-value",
	FieldPERatio:       "PE_RATIO-value",
	FieldEPS:           "EPS_RATIO-value",
	FieldDividendYield: "DIVIDEND_AND_YIELD-value",
	FieldBeta:          "BETA_5Y-value",
}

func (s *cssSelectorStrategy) Name() string { return "css_selector" }

func (s *cssSelectorStrategy) Extract(doc *Document, symbol, field string) (string, bool) {
	testID, ok := testIDFields[field]
	if !ok {
		return "", false
	}
	return doc.Text(fmt.Sprintf(`[data-testid=%q]`, testID))
}

// headerStrategy reads the company name from the page header, stripping a
// trailing "(SYMBOL)" suffix.
type headerStrategy struct{}

var headerParenRe = regexp.MustCompile(`\s*\([A-Z.^-]+\)\s*$`)

func (s *headerStrategy) Name() string { return "header" }

func (s *headerStrategy) Extract(doc *Document, symbol, field string) (string, bool) {
	if field != FieldCompanyName {
		return "", false
	}
	text, ok := doc.Text("h1")
	if !ok {
		return "", false
	}
	name := strings.TrimSpace(headerParenRe.ReplaceAllString(text, ""))
	if name == "" {
		return "", false
	}
	return name, true
}

// metadataStrategy falls back to document metadata for the company name.
type metadataStrategy struct{}

func (s *metadataStrategy) Name() string { return "metadata" }

func (s *metadataStrategy) Extract(doc *Document, symbol, field string) (string, bool) {
	if field != FieldCompanyName {
		return "", false
	}
	for _, selector := range []string{`meta[property="og:title"]`, `meta[name="title"]`} {
		if content, ok := doc.Attr(selector, "content"); ok {
			if name := trimTitleSuffix(content); name != "" {
				return name, true
			}
		}
	}
	if title, ok := doc.Text("title"); ok {
		if name := trimTitleSuffix(title); name != "" {
			return name, true
		}
	}
	return "", false
}

// trimTitleSuffix reduces "Apple Inc. (AAPL) Stock Price ..." to the name.
func trimTitleSuffix(title string) string {
	title = strings.TrimSpace(title)
	if idx := strings.Index(title, "("); idx > 0 {
		title = title[:idx]
	} else if idx := strings.Index(title, " - "); idx > 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}

// structuredDataStrategy scans JSON-LD script blocks for the company name.
type structuredDataStrategy struct{}

func (s *structuredDataStrategy) Name() string { return "structured_data" }

func (s *structuredDataStrategy) Extract(doc *Document, symbol, field string) (string, bool) {
	if field != FieldCompanyName {
		return "", false
	}
	var result string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			return true
		}
		if name, ok := payload["name"].(string); ok && strings.TrimSpace(name) != "" {
			result = strings.TrimSpace(name)
			return false
		}
		return true
	})
	return result, result != ""
}

// tableStrategy walks summary table rows matching a label cell against
// field-specific keywords and taking the last cell as the value.
type tableStrategy struct{}

var tableLabels = map[string][]string{
	FieldPreviousClose:     {"previous close"},
	FieldOpenPrice:         {"open"},
	FieldDayRange:          {"day's range", "days range"},
	FieldWeek52Range:       {"52 week range", "52-week range"},
	FieldVolume:            {"volume"},
	FieldAvgVolume:         {"avg. volume", "average volume"},
	FieldMarketCap:         {"market cap"},
	FieldPERatio:           {"pe ratio", "p/e ratio"},
	FieldEPS:               {"eps"},
	FieldDividendYield:     {"dividend & yield", "forward dividend", "dividend"},
	FieldBeta:              {"beta"},
	FieldSharesOutstanding: {"shares outstanding"},
	FieldBookValue:         {"book value"},
	FieldPriceToBook:       {"price/book", "price to book"},
	FieldSector:            {"sector"},
	FieldIndustry:          {"industry"},
}

func (s *tableStrategy) Name() string { return "table" }

func (s *tableStrategy) Extract(doc *Document, symbol, field string) (string, bool) {
	keywords, ok := tableLabels[field]
	if !ok {
		return "", false
	}
	var result string
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return true
		}
		label := strings.ToLower(strings.TrimSpace(cells.First().Text()))
		for _, keyword := range keywords {
			if strings.Contains(label, keyword) {
				value := strings.TrimSpace(cells.Last().Text())
				if value != "" {
					result = value
					return false
				}
			}
		}
		return true
	})
	return result, result != ""
}

// textPatternStrategy matches labeled values in the page text. Last resort
// before the contextual scan.
type textPatternStrategy struct{}

var textPatterns = map[string][]*regexp.Regexp{
	FieldCurrentPrice: {
		regexp.MustCompile(`(?i)current price[:\s]+\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)price[:\s]+\$?([\d,]+\.\d{2})`),
	},
	FieldPERatio: {
		regexp.MustCompile(`(?i)p/?e\s*ratio[^\d-]*(-?[\d,]+\.?\d*)`),
	},
	FieldEPS: {
		regexp.MustCompile(`(?i)eps[^\d-]*(-?[\d,]+\.?\d*)`),
	},
	FieldMarketCap: {
		regexp.MustCompile(`(?i)market cap[^\d]*([\d,]+\.?\d*\s*[KMBT])`),
	},
}

func (s *textPatternStrategy) Name() string { return "text_pattern" }

func (s *textPatternStrategy) Extract(doc *Document, symbol, field string) (string, bool) {
	patterns, ok := textPatterns[field]
	if !ok {
		return "", false
	}
	text := doc.FullText()
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// contextualStrategy locates a label keyword in any element and pulls the
// first numeric token from the element's own text after the label.
type contextualStrategy struct{}

var contextualValueRe = regexp.MustCompile(`-?[\d,]+\.?\d*%?`)

func (s *contextualStrategy) Name() string { return "contextual" }

func (s *contextualStrategy) Extract(doc *Document, symbol, field string) (string, bool) {
	keywords, ok := tableLabels[field]
	if !ok {
		return "", false
	}
	var result string
	doc.Find("li, div, span, p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Children().Length() > 3 {
			return true
		}
		text := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(text)
		for _, keyword := range keywords {
			idx := strings.Index(lower, keyword)
			if idx < 0 {
				continue
			}
			rest := text[idx+len(keyword):]
			if m := contextualValueRe.FindString(rest); m != "" {
				result = m
				return false
			}
		}
		return true
	})
	return result, result != ""
}
