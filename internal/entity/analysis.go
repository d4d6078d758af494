package entity

import "time"

// Analysis type tags.
const (
	AnalysisTypeComprehensive = "comprehensive"
	AnalysisTypeDisabled      = "disabled"
	AnalysisTypeError         = "error"
)

// AnalysisResult is the outcome of an AI analysis call. A failed call still
// produces a result, tagged AnalysisTypeError, so the rest of the pipeline
// stays usable.
type AnalysisResult struct {
	Symbol            string    `json:"symbol"`
	AnalysisType      string    `json:"analysis_type"`
	Insights          []string  `json:"insights"`
	Recommendations   []string  `json:"recommendations"`
	ConfidenceScore   *float64  `json:"confidence_score,omitempty"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
}

// NewsItem is one headline fetched for a symbol.
type NewsItem struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Summary     string     `json:"summary,omitempty"`
}
