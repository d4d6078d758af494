package main

import (
	"fmt"
	"strings"

	"golang-quote-agent/internal/agent/dto"
	"golang-quote-agent/internal/entity"
	"golang-quote-agent/pkg/health"
	"golang-quote-agent/pkg/normalize"
)

func formatQuote(data *entity.StockData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", data.CompanyInfo.CompanyName, data.Symbol)
	fmt.Fprintf(&b, "- Price: %s\n", normalize.FormatCurrency(data.PriceInfo.CurrentPrice))
	fmt.Fprintf(&b, "- Change: %s (%s)\n",
		normalize.FormatCurrency(data.PriceInfo.PriceChange),
		normalize.FormatPercent(data.PriceInfo.PriceChangePercent))
	fmt.Fprintf(&b, "- Previous close: %s, Open: %s\n",
		normalize.FormatCurrency(data.PriceInfo.PreviousClose),
		normalize.FormatCurrency(data.PriceInfo.OpenPrice))
	fmt.Fprintf(&b, "- Day range: %s - %s\n",
		normalize.FormatCurrency(data.PriceInfo.DayLow),
		normalize.FormatCurrency(data.PriceInfo.DayHigh))
	fmt.Fprintf(&b, "- 52 week range: %s - %s\n",
		normalize.FormatCurrency(data.PriceInfo.Week52Low),
		normalize.FormatCurrency(data.PriceInfo.Week52High))
	fmt.Fprintf(&b, "- Volume: %s (avg %s)\n",
		normalize.FormatVolume(data.TradingMetrics.Volume),
		normalize.FormatVolume(data.TradingMetrics.AvgVolume))
	if data.TradingMetrics.MarketCap != nil {
		fmt.Fprintf(&b, "- Market cap: %s\n", *data.TradingMetrics.MarketCap)
	}
	fmt.Fprintf(&b, "- PE: %s, EPS: %s, Dividend yield: %s, Beta: %s\n",
		optional(data.FinancialRatios.PERatio),
		optional(data.FinancialRatios.EPS),
		normalize.FormatPercent(data.FinancialRatios.DividendYield),
		optional(data.FinancialRatios.Beta))
	return b.String()
}

func formatPriceLine(data *entity.StockData) string {
	return fmt.Sprintf("%s: %s, change %s (%s)",
		data.Symbol,
		normalize.FormatCurrency(data.PriceInfo.CurrentPrice),
		normalize.FormatCurrency(data.PriceInfo.PriceChange),
		normalize.FormatPercent(data.PriceInfo.PriceChangePercent))
}

func formatHistory(data *entity.HistoricalData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s historical data (%s, %s): %d bars\n\n", data.Symbol, data.Period, data.Interval, len(data.DataPoints))

	points := data.DataPoints
	if len(points) > 20 {
		points = points[len(points)-20:]
		b.WriteString("Showing the last 20 bars.\n\n")
	}
	b.WriteString("| Date | Open | High | Low | Close | Volume |\n")
	b.WriteString("|------|------|------|-----|-------|--------|\n")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			p.Date.Format("2006-01-02"),
			optional(p.Open), optional(p.High), optional(p.Low), optional(p.Close),
			normalize.FormatVolume(p.Volume))
	}
	return b.String()
}

func formatReport(report *dto.AnalysisReport) string {
	var b strings.Builder
	b.WriteString(formatQuote(report.Quote))

	if report.Indicators != nil {
		ind := report.Indicators
		b.WriteString("\n## Technical indicators\n\n")
		fmt.Fprintf(&b, "- SMA 20/50/200: %s / %s / %s\n", optional(ind.SMA20), optional(ind.SMA50), optional(ind.SMA200))
		fmt.Fprintf(&b, "- RSI(14): %s\n", optional(ind.RSI14))
		fmt.Fprintf(&b, "- MACD: %s, signal %s, histogram %s\n", optional(ind.MACD), optional(ind.MACDSignal), optional(ind.MACDHistogram))
		fmt.Fprintf(&b, "- Bollinger bands: %s / %s / %s\n", optional(ind.BollingerLower), optional(ind.BollingerMiddle), optional(ind.BollingerUpper))
		fmt.Fprintf(&b, "- Annualized volatility: %s\n", normalize.FormatPercent(ind.Volatility))
	}

	if report.Patterns != nil {
		fmt.Fprintf(&b, "\n## Patterns\n\n- Trend: %s (strength %.2f)\n", report.Patterns.Trend, report.Patterns.TrendStrength)
		if len(report.Patterns.SupportLevels) > 0 {
			fmt.Fprintf(&b, "- Support levels: %v\n", report.Patterns.SupportLevels)
		}
		if len(report.Patterns.ResistanceLevels) > 0 {
			fmt.Fprintf(&b, "- Resistance levels: %v\n", report.Patterns.ResistanceLevels)
		}
		if len(report.Patterns.CandlestickPatterns) > 0 {
			fmt.Fprintf(&b, "- Candlestick: %s\n", strings.Join(report.Patterns.CandlestickPatterns, ", "))
		}
		if len(report.Patterns.ChartPatterns) > 0 {
			fmt.Fprintf(&b, "- Chart: %s\n", strings.Join(report.Patterns.ChartPatterns, ", "))
		}
	}

	if len(report.News) > 0 {
		b.WriteString("\n## Recent headlines\n\n")
		for _, item := range report.News {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Source)
		}
	}

	if report.AIAnalysis != nil {
		fmt.Fprintf(&b, "\n## AI analysis (%s)\n\n", report.AIAnalysis.AnalysisType)
		for _, insight := range report.AIAnalysis.Insights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
		if len(report.AIAnalysis.Recommendations) > 0 {
			b.WriteString("\nRecommendations:\n")
			for _, rec := range report.AIAnalysis.Recommendations {
				fmt.Fprintf(&b, "- %s\n", rec)
			}
		}
		if report.AIAnalysis.ConfidenceScore != nil {
			fmt.Fprintf(&b, "\nConfidence: %.2f\n", *report.AIAnalysis.ConfidenceScore)
		}
	}
	return b.String()
}

func formatCompareRow(data *entity.StockData) string {
	return fmt.Sprintf("| %s | %s | %s | %s | %s |",
		data.Symbol,
		normalize.FormatCurrency(data.PriceInfo.CurrentPrice),
		normalize.FormatPercent(data.PriceInfo.PriceChangePercent),
		optional(data.FinancialRatios.PERatio),
		normalize.FormatVolume(data.TradingMetrics.Volume))
}

func formatComparison(rows []string, failures map[string]string) string {
	var b strings.Builder
	b.WriteString("# Stock comparison\n\n")
	if len(rows) > 0 {
		b.WriteString("| Symbol | Price | Change % | PE | Volume |\n")
		b.WriteString("|--------|-------|----------|----|--------|\n")
		for _, row := range rows {
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}
	if len(failures) > 0 {
		b.WriteString("\nFailed symbols:\n")
		for symbol, message := range failures {
			fmt.Fprintf(&b, "- %s: %s\n", symbol, message)
		}
	}
	return b.String()
}

func formatHealth(status health.Status, summary health.ErrorSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scraper health: %s\n\n", status.Status)
	fmt.Fprintf(&b, "- Uptime: %s\n", status.Uptime)
	fmt.Fprintf(&b, "- Success rate: %.1f%%\n", status.SuccessRate*100)
	fmt.Fprintf(&b, "- Requests: %d total, %d successful, %d failed\n",
		status.Metrics.RequestsTotal, status.Metrics.RequestsSuccessful, status.Metrics.RequestsFailed)
	fmt.Fprintf(&b, "- Average response time: %s\n", status.Metrics.AverageResponseTime)

	fmt.Fprintf(&b, "\n## Errors in the last %d hours: %d\n", summary.TimePeriodHours, summary.TotalErrors)
	if len(summary.ByCategory) > 0 {
		b.WriteString("\nBy category:\n")
		for category, count := range summary.ByCategory {
			fmt.Fprintf(&b, "- %s: %d\n", category, count)
		}
	}
	if len(summary.MostCommon) > 0 {
		b.WriteString("\nMost common:\n")
		for _, common := range summary.MostCommon {
			fmt.Fprintf(&b, "- %s (%d)\n", common.Error, common.Count)
		}
	}
	return b.String()
}

func optional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}
