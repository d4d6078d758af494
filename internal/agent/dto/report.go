package dto

import (
	"time"

	"golang-quote-agent/internal/analysis"
	"golang-quote-agent/internal/entity"
)

// AnalysisReport bundles everything the full pipeline produces for one
// symbol. Sections that could not be produced stay nil; the report itself is
// still delivered.
type AnalysisReport struct {
	Symbol      string                   `json:"symbol"`
	Quote       *entity.StockData        `json:"quote,omitempty"`
	Indicators  *analysis.Indicators     `json:"indicators,omitempty"`
	Patterns    *analysis.PatternSummary `json:"patterns,omitempty"`
	News        []entity.NewsItem        `json:"news,omitempty"`
	AIAnalysis  *entity.AnalysisResult   `json:"ai_analysis,omitempty"`
	GeneratedAt time.Time                `json:"generated_at"`
}
