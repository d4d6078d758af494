package telegram

import (
	"fmt"
	"strings"

	"golang-quote-agent/pkg/health"
)

// FormatScrapeFailure formats a Markdown alert for a failed scrape.
func FormatScrapeFailure(symbol, message string) string {
	var b strings.Builder
	b.WriteString("🚨 *Scrape Failed* 🚨\n\n")
	fmt.Fprintf(&b, "📈 *Symbol:* `%s`\n", symbol)
	fmt.Fprintf(&b, "💬 *Reason:* %s\n", message)
	return b.String()
}

// FormatHealthAlert formats a Markdown alert for a degraded or unhealthy
// scraper, with an icon per status.
func FormatHealthAlert(status health.Status, summary health.ErrorSummary) string {
	var statusIcon string
	switch status.Status {
	case health.StatusHealthy:
		statusIcon = "🟢"
	case health.StatusDegraded:
		statusIcon = "🟡"
	default:
		statusIcon = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *Scraper Health: %s*\n\n", statusIcon, status.Status)
	fmt.Fprintf(&b, "🎯 *Success rate:* %.0f%%\n", status.SuccessRate*100)
	fmt.Fprintf(&b, "📊 *Requests:* %d total, %d failed\n",
		status.Metrics.RequestsTotal, status.Metrics.RequestsFailed)
	fmt.Fprintf(&b, "⏱ *Avg response:* %s\n", status.Metrics.AverageResponseTime)

	if summary.TotalErrors > 0 {
		fmt.Fprintf(&b, "\n*Errors in the last %dh:* %d\n", summary.TimePeriodHours, summary.TotalErrors)
		for category, count := range summary.ByCategory {
			fmt.Fprintf(&b, "- %s: %d\n", category, count)
		}
	}
	return b.String()
}
