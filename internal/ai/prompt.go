package ai

import (
	"fmt"
	"strings"

	"golang-quote-agent/internal/analysis"
	"golang-quote-agent/internal/entity"
	"golang-quote-agent/pkg/normalize"
)

// BuildStockAnalysisPrompt renders the quote snapshot, indicators, patterns
// and headlines into the analysis prompt. Absent values are shown as N/A so
// the model never sees fabricated numbers.
func BuildStockAnalysisPrompt(data *entity.StockData, indicators *analysis.Indicators, patterns *analysis.PatternSummary, news []entity.NewsItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a financial analyst. Analyze the following stock data for %s (%s).\n\n", data.CompanyInfo.CompanyName, data.Symbol)

	b.WriteString("## Quote\n")
	fmt.Fprintf(&b, "- Current price: %s\n", normalize.FormatCurrency(data.PriceInfo.CurrentPrice))
	fmt.Fprintf(&b, "- Change: %s (%s)\n", normalize.FormatCurrency(data.PriceInfo.PriceChange), normalize.FormatPercent(data.PriceInfo.PriceChangePercent))
	fmt.Fprintf(&b, "- Previous close: %s, Open: %s\n", normalize.FormatCurrency(data.PriceInfo.PreviousClose), normalize.FormatCurrency(data.PriceInfo.OpenPrice))
	fmt.Fprintf(&b, "- Day range: %s - %s\n", normalize.FormatCurrency(data.PriceInfo.DayLow), normalize.FormatCurrency(data.PriceInfo.DayHigh))
	fmt.Fprintf(&b, "- 52 week range: %s - %s\n", normalize.FormatCurrency(data.PriceInfo.Week52Low), normalize.FormatCurrency(data.PriceInfo.Week52High))
	fmt.Fprintf(&b, "- Volume: %s (avg %s)\n", normalize.FormatVolume(data.TradingMetrics.Volume), normalize.FormatVolume(data.TradingMetrics.AvgVolume))
	if data.TradingMetrics.MarketCap != nil {
		fmt.Fprintf(&b, "- Market cap: %s\n", *data.TradingMetrics.MarketCap)
	}
	fmt.Fprintf(&b, "- PE: %s, EPS: %s, Dividend yield: %s, Beta: %s\n",
		formatOptional(data.FinancialRatios.PERatio),
		formatOptional(data.FinancialRatios.EPS),
		normalize.FormatPercent(data.FinancialRatios.DividendYield),
		formatOptional(data.FinancialRatios.Beta),
	)

	if indicators != nil {
		b.WriteString("\n## Technical indicators\n")
		fmt.Fprintf(&b, "- SMA20: %s, SMA50: %s, SMA200: %s\n",
			formatOptional(indicators.SMA20), formatOptional(indicators.SMA50), formatOptional(indicators.SMA200))
		fmt.Fprintf(&b, "- RSI(14): %s\n", formatOptional(indicators.RSI14))
		fmt.Fprintf(&b, "- MACD: %s, Signal: %s, Histogram: %s\n",
			formatOptional(indicators.MACD), formatOptional(indicators.MACDSignal), formatOptional(indicators.MACDHistogram))
		fmt.Fprintf(&b, "- Bollinger: %s / %s / %s\n",
			formatOptional(indicators.BollingerLower), formatOptional(indicators.BollingerMiddle), formatOptional(indicators.BollingerUpper))
		fmt.Fprintf(&b, "- Volatility (annualized): %s\n", normalize.FormatPercent(indicators.Volatility))
	}

	if patterns != nil {
		b.WriteString("\n## Patterns\n")
		fmt.Fprintf(&b, "- Trend: %s (strength %.2f)\n", patterns.Trend, patterns.TrendStrength)
		if len(patterns.SupportLevels) > 0 {
			fmt.Fprintf(&b, "- Support levels: %v\n", patterns.SupportLevels)
		}
		if len(patterns.ResistanceLevels) > 0 {
			fmt.Fprintf(&b, "- Resistance levels: %v\n", patterns.ResistanceLevels)
		}
		if len(patterns.CandlestickPatterns) > 0 {
			fmt.Fprintf(&b, "- Candlestick patterns: %s\n", strings.Join(patterns.CandlestickPatterns, ", "))
		}
		if len(patterns.ChartPatterns) > 0 {
			fmt.Fprintf(&b, "- Chart patterns: %s\n", strings.Join(patterns.ChartPatterns, ", "))
		}
	}

	if len(news) > 0 {
		b.WriteString("\n## Recent headlines\n")
		for i, item := range news {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Source)
		}
	}

	b.WriteString(`
Respond with a JSON object only, no prose around it:
{
  "insights": ["..."],
  "recommendations": ["..."],
  "confidence_score": 0.0
}
confidence_score is between 0 and 1.
`)
	return b.String()
}

func formatOptional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}
