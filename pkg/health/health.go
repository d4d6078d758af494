// Package health holds the process-wide error log and request counters. The
// aggregates are explicit injectable values, not globals: core components
// depend on the ErrorSink and MetricsSink interfaces so tests can substitute
// an in-memory fake.
package health

import (
	"strings"
	"time"

	"golang-quote-agent/internal/entity"
)

// ErrorSink receives every caught error, whether it was retried, surfaced or
// absorbed.
type ErrorSink interface {
	RecordError(err error, category entity.ErrorCategory, severity entity.ErrorSeverity, context map[string]string, retryCount int)
}

// MetricsSink receives the outcome and elapsed time of every request.
type MetricsSink interface {
	RecordRequest(success bool, elapsed time.Duration)
}

// Health status values derived from the success rate.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Success-rate thresholds for the status derivation. Fixed design constants.
const (
	healthyRate  = 0.95
	degradedRate = 0.80
)

// Categorize classifies an error into a category by matching indicative
// keywords in its message. Best-effort string matching; anything unmatched is
// unknown.
func Categorize(err error) entity.ErrorCategory {
	if err == nil {
		return entity.ErrorCategoryUnknown
	}
	msg := strings.ToLower(err.Error())

	categories := []struct {
		category entity.ErrorCategory
		keywords []string
	}{
		{entity.ErrorCategoryNetwork, []string{"connection", "timeout", "network", "dns", "socket", "deadline"}},
		{entity.ErrorCategoryBrowser, []string{"webdriver", "selenium", "chrome", "browser", "chromedp"}},
		{entity.ErrorCategoryParsing, []string{"parse", "json", "xml", "html", "unmarshal", "decode"}},
		{entity.ErrorCategoryValidation, []string{"validation", "invalid", "missing", "required"}},
		{entity.ErrorCategoryAPI, []string{"api", "key", "quota", "rate limit", "unauthorized"}},
		{entity.ErrorCategorySystem, []string{"memory", "disk", "permission", "file", "directory"}},
	}

	for _, c := range categories {
		for _, keyword := range c.keywords {
			if strings.Contains(msg, keyword) {
				return c.category
			}
		}
	}
	return entity.ErrorCategoryUnknown
}
