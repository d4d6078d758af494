package health

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-quote-agent/internal/entity"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		err  error
		want entity.ErrorCategory
	}{
		{errors.New("connection refused"), entity.ErrorCategoryNetwork},
		{errors.New("context deadline exceeded (timeout)"), entity.ErrorCategoryNetwork},
		{errors.New("chromedp navigation failed"), entity.ErrorCategoryBrowser},
		{errors.New("failed to unmarshal json body"), entity.ErrorCategoryParsing},
		{errors.New("invalid symbol"), entity.ErrorCategoryValidation},
		{errors.New("quota exceeded"), entity.ErrorCategoryAPI},
		{errors.New("permission denied"), entity.ErrorCategorySystem},
		{errors.New("something odd"), entity.ErrorCategoryUnknown},
		{nil, entity.ErrorCategoryUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.err), "err=%v", tt.err)
	}
}

func TestHealthStatusThresholds(t *testing.T) {
	tests := []struct {
		name      string
		successes int
		failures  int
		want      string
	}{
		{"96 of 100 is healthy", 96, 4, StatusHealthy},
		{"85 of 100 is degraded", 85, 15, StatusDegraded},
		{"60 of 100 is unhealthy", 60, 40, StatusUnhealthy},
		{"no requests is unhealthy", 0, 0, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(0)
			for i := 0; i < tt.successes; i++ {
				tr.RecordRequest(true, 10*time.Millisecond)
			}
			for i := 0; i < tt.failures; i++ {
				tr.RecordRequest(false, 10*time.Millisecond)
			}
			status := tr.GetStatus()
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, int64(tt.successes+tt.failures), status.Metrics.RequestsTotal)
		})
	}
}

func TestResponseTimeWindow(t *testing.T) {
	tr := NewTracker(0)
	for i := 0; i < 150; i++ {
		tr.RecordRequest(true, time.Second)
	}
	// Only the last 100 samples feed the average.
	assert.Equal(t, time.Second, tr.GetStatus().Metrics.AverageResponseTime)
	assert.Len(t, tr.responseTimes, 100)
}

func TestErrorSummaryGrouping(t *testing.T) {
	tr := NewTracker(0)
	for i := 0; i < 3; i++ {
		tr.RecordError(errors.New("connection reset"), entity.ErrorCategoryNetwork, entity.ErrorSeverityMedium, nil, i)
	}
	tr.RecordError(errors.New("bad html"), entity.ErrorCategoryParsing, entity.ErrorSeverityHigh, map[string]string{"symbol": "AAPL"}, 0)

	summary := tr.GetErrorSummary(24, 5)
	assert.Equal(t, 4, summary.TotalErrors)
	assert.Equal(t, 3, summary.ByCategory[entity.ErrorCategoryNetwork])
	assert.Equal(t, 1, summary.ByCategory[entity.ErrorCategoryParsing])
	assert.Equal(t, 3, summary.BySeverity[entity.ErrorSeverityMedium])
	assert.Equal(t, 1, summary.BySeverity[entity.ErrorSeverityHigh])
	require.NotEmpty(t, summary.MostCommon)
	assert.Equal(t, 3, summary.MostCommon[0].Count)
}

func TestErrorLogCapacity(t *testing.T) {
	tr := NewTracker(10)
	for i := 0; i < 25; i++ {
		tr.RecordError(fmt.Errorf("failure %d", i), entity.ErrorCategoryUnknown, entity.ErrorSeverityLow, nil, 0)
	}
	recent := tr.RecentErrors(0)
	require.Len(t, recent, 10)
	// Oldest entries dropped first.
	assert.Equal(t, "failure 15", recent[0].ErrorMessage)
	assert.Equal(t, "failure 24", recent[9].ErrorMessage)
}

func TestEvictAged(t *testing.T) {
	tr := NewTracker(0)
	current := time.Now()
	tr.now = func() time.Time { return current.Add(-8 * 24 * time.Hour) }
	tr.RecordError(errors.New("ancient failure"), entity.ErrorCategoryUnknown, entity.ErrorSeverityLow, nil, 0)
	tr.now = func() time.Time { return current }
	tr.RecordError(errors.New("fresh failure"), entity.ErrorCategoryUnknown, entity.ErrorSeverityLow, nil, 0)

	tr.EvictAged()
	recent := tr.RecentErrors(0)
	require.Len(t, recent, 1)
	assert.Equal(t, "fresh failure", recent[0].ErrorMessage)
}
