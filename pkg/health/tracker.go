package health

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"golang-quote-agent/internal/entity"
)

const (
	defaultMaxErrors   = 1000
	maxErrorAge        = 7 * 24 * time.Hour
	cleanupInterval    = time.Hour
	responseTimeWindow = 100
	truncateMessageAt  = 50
)

// Metrics is a snapshot of the request counters.
type Metrics struct {
	RequestsTotal       int64         `json:"requests_total"`
	RequestsSuccessful  int64         `json:"requests_successful"`
	RequestsFailed      int64         `json:"requests_failed"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	LastSuccess         *time.Time    `json:"last_success,omitempty"`
	LastFailure         *time.Time    `json:"last_failure,omitempty"`
}

// Status is the derived health report.
type Status struct {
	Status      string  `json:"status"`
	Uptime      string  `json:"uptime"`
	SuccessRate float64 `json:"success_rate"`
	Metrics     Metrics `json:"metrics"`
}

// CommonError is one (type, truncated message) pair with its occurrence count.
type CommonError struct {
	Error string `json:"error"`
	Count int    `json:"count"`
}

// ErrorSummary aggregates the rolling error log over a lookback window.
type ErrorSummary struct {
	TotalErrors     int                          `json:"total_errors"`
	ByCategory      map[entity.ErrorCategory]int `json:"by_category"`
	BySeverity      map[entity.ErrorSeverity]int `json:"by_severity"`
	MostCommon      []CommonError                `json:"most_common"`
	TimePeriodHours int                          `json:"time_period_hours"`
}

// Tracker is the process-wide error log and health monitor. It implements
// ErrorSink and MetricsSink. All mutation goes through the mutex so the
// aggregate tolerates concurrent callers.
type Tracker struct {
	mu            sync.Mutex
	maxErrors     int
	errors        []entity.ErrorInfo
	lastCleanup   time.Time
	startTime     time.Time
	metrics       Metrics
	responseTimes []time.Duration
	now           func() time.Time
}

// NewTracker creates a tracker with the given log capacity; capacity <= 0
// uses the default of 1000.
func NewTracker(maxErrors int) *Tracker {
	if maxErrors <= 0 {
		maxErrors = defaultMaxErrors
	}
	now := time.Now()
	return &Tracker{
		maxErrors:   maxErrors,
		lastCleanup: now,
		startTime:   now,
		now:         time.Now,
	}
}

// RecordError appends an immutable ErrorInfo to the rolling log.
func (t *Tracker) RecordError(err error, category entity.ErrorCategory, severity entity.ErrorSeverity, context map[string]string, retryCount int) {
	if err == nil {
		return
	}
	info := entity.ErrorInfo{
		Timestamp:    t.now(),
		ErrorType:    fmt.Sprintf("%T", err),
		ErrorMessage: err.Error(),
		Category:     category,
		Severity:     severity,
		Context:      context,
		RetryCount:   retryCount,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.errors = append(t.errors, info)
	t.cleanupLocked()
}

// RecordRequest updates the request counters and the rolling response-time
// window.
func (t *Tracker) RecordRequest(success bool, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.metrics.RequestsTotal++
	if success {
		t.metrics.RequestsSuccessful++
		t.metrics.LastSuccess = &now
	} else {
		t.metrics.RequestsFailed++
		t.metrics.LastFailure = &now
	}

	t.responseTimes = append(t.responseTimes, elapsed)
	if len(t.responseTimes) > responseTimeWindow {
		t.responseTimes = t.responseTimes[len(t.responseTimes)-responseTimeWindow:]
	}
	var sum time.Duration
	for _, rt := range t.responseTimes {
		sum += rt
	}
	t.metrics.AverageResponseTime = sum / time.Duration(len(t.responseTimes))
}

// GetStatus derives the current health status from the success rate.
func (t *Tracker) GetStatus() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	rate := 0.0
	if t.metrics.RequestsTotal > 0 {
		rate = float64(t.metrics.RequestsSuccessful) / float64(t.metrics.RequestsTotal)
	}

	status := StatusUnhealthy
	switch {
	case rate >= healthyRate:
		status = StatusHealthy
	case rate >= degradedRate:
		status = StatusDegraded
	}

	return Status{
		Status:      status,
		Uptime:      t.now().Sub(t.startTime).Round(time.Second).String(),
		SuccessRate: rate,
		Metrics:     t.metrics,
	}
}

// GetErrorSummary aggregates errors recorded within the last `hours` hours,
// surfacing the topN most frequent (type, truncated message) pairs.
func (t *Tracker) GetErrorSummary(hours, topN int) ErrorSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-time.Duration(hours) * time.Hour)
	summary := ErrorSummary{
		ByCategory:      make(map[entity.ErrorCategory]int),
		BySeverity:      make(map[entity.ErrorSeverity]int),
		TimePeriodHours: hours,
	}

	counts := make(map[string]int)
	for _, e := range t.errors {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		summary.TotalErrors++
		summary.ByCategory[e.Category]++
		summary.BySeverity[e.Severity]++

		msg := e.ErrorMessage
		if len(msg) > truncateMessageAt {
			msg = msg[:truncateMessageAt]
		}
		counts[e.ErrorType+": "+msg]++
	}

	for key, count := range counts {
		summary.MostCommon = append(summary.MostCommon, CommonError{Error: key, Count: count})
	}
	sort.Slice(summary.MostCommon, func(i, j int) bool {
		if summary.MostCommon[i].Count != summary.MostCommon[j].Count {
			return summary.MostCommon[i].Count > summary.MostCommon[j].Count
		}
		return summary.MostCommon[i].Error < summary.MostCommon[j].Error
	})
	if topN > 0 && len(summary.MostCommon) > topN {
		summary.MostCommon = summary.MostCommon[:topN]
	}
	return summary
}

// RecentErrors returns a copy of up to n most recent error records.
func (t *Tracker) RecentErrors(n int) []entity.ErrorInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n <= 0 || n > len(t.errors) {
		n = len(t.errors)
	}
	out := make([]entity.ErrorInfo, n)
	copy(out, t.errors[len(t.errors)-n:])
	return out
}

// EvictAged drops entries older than seven days. Intended to be triggered
// hourly by a scheduler; RecordError also runs it opportunistically.
func (t *Tracker) EvictAged() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evictAgedLocked()
	t.lastCleanup = t.now()
}

func (t *Tracker) cleanupLocked() {
	if len(t.errors) > t.maxErrors {
		t.errors = t.errors[len(t.errors)-t.maxErrors:]
	}
	if t.now().Sub(t.lastCleanup) > cleanupInterval {
		t.evictAgedLocked()
		t.lastCleanup = t.now()
	}
}

func (t *Tracker) evictAgedLocked() {
	cutoff := t.now().Add(-maxErrorAge)
	kept := t.errors[:0]
	for _, e := range t.errors {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	t.errors = kept
}
