package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-quote-agent/internal/entity"
	"golang-quote-agent/pkg/logger"
)

func TestParseAnalysisPayload(t *testing.T) {
	raw := `{"insights":["strong momentum"],"recommendations":["hold"],"confidence_score":0.8}`
	payload, ok := parseAnalysisPayload(raw)
	require.True(t, ok)
	assert.Equal(t, []string{"strong momentum"}, payload.Insights)
	assert.Equal(t, []string{"hold"}, payload.Recommendations)
	require.NotNil(t, payload.ConfidenceScore)
	assert.Equal(t, 0.8, *payload.ConfidenceScore)
}

func TestParseAnalysisPayloadFencedBlock(t *testing.T) {
	raw := "```json\n{\"insights\":[\"oversold\"],\"recommendations\":[],\"confidence_score\":0.6}\n```"
	payload, ok := parseAnalysisPayload(raw)
	require.True(t, ok)
	assert.Equal(t, []string{"oversold"}, payload.Insights)
}

func TestParseAnalysisPayloadClampsConfidence(t *testing.T) {
	payload, ok := parseAnalysisPayload(`{"insights":["a"],"recommendations":[],"confidence_score":1.7}`)
	require.True(t, ok)
	require.NotNil(t, payload.ConfidenceScore)
	assert.Equal(t, 1.0, *payload.ConfidenceScore)

	payload, ok = parseAnalysisPayload(`{"insights":["a"],"recommendations":[],"confidence_score":-0.3}`)
	require.True(t, ok)
	require.NotNil(t, payload.ConfidenceScore)
	assert.Equal(t, 0.0, *payload.ConfidenceScore)
}

func TestParseAnalysisPayloadRejectsProse(t *testing.T) {
	_, ok := parseAnalysisPayload("The stock looks fine overall.")
	assert.False(t, ok)

	_, ok = parseAnalysisPayload(`{"insights":[],"recommendations":[]}`)
	assert.False(t, ok)
}

func TestAnalyzeDisabledWithoutAPIKey(t *testing.T) {
	a := NewAnalyzer(Config{}, logger.NewNop(), nil)
	assert.False(t, a.Enabled())

	result := a.Analyze(context.Background(), entity.NewStockData("AAPL"), nil, nil, nil)
	require.NotNil(t, result)
	assert.Equal(t, entity.AnalysisTypeDisabled, result.AnalysisType)
	assert.Equal(t, "AAPL", result.Symbol)
	assert.NotEmpty(t, result.Insights)
}

func TestBuildPromptShowsAbsentValuesAsNA(t *testing.T) {
	prompt := BuildStockAnalysisPrompt(entity.NewStockData("MSFT"), nil, nil, nil)
	assert.Contains(t, prompt, "MSFT")
	assert.Contains(t, prompt, "N/A")
	assert.Contains(t, prompt, "confidence_score")
}
