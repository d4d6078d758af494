// Package ai generates quote analysis through the Gemini API. The analyzer
// degrades instead of failing: no key yields a disabled result and an API
// failure yields an error-tagged result, so callers never branch on an error.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"golang-quote-agent/internal/analysis"
	"golang-quote-agent/internal/entity"
	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/ratelimit"
)

// Config holds the Gemini API settings.
type Config struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Analyzer calls the Gemini API with the assembled quote context.
type Analyzer struct {
	client         *http.Client
	cfg            Config
	log            *logger.Logger
	requestLimiter *rate.Limiter
	tokenLimiter   *ratelimit.TokenLimiter
	genAiClient    *genai.Client
}

// NewAnalyzer creates an Analyzer. A nil genai client is allowed; token
// counting is then skipped.
func NewAnalyzer(cfg Config, log *logger.Logger, genAiClient *genai.Client) *Analyzer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.MaxRequestPerMinute <= 0 {
		cfg.MaxRequestPerMinute = 10
	}
	if cfg.MaxTokenPerMinute <= 0 {
		cfg.MaxTokenPerMinute = 1_000_000
	}
	return &Analyzer{
		client:         &http.Client{Timeout: 90 * time.Second},
		cfg:            cfg,
		log:            log,
		requestLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.MaxRequestPerMinute)), 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.MaxTokenPerMinute),
		genAiClient:    genAiClient,
	}
}

// Enabled reports whether an API key is configured.
func (a *Analyzer) Enabled() bool {
	return a.cfg.APIKey != ""
}

// Analyze produces an AnalysisResult for the given snapshot. The result is
// never nil.
func (a *Analyzer) Analyze(ctx context.Context, data *entity.StockData, indicators *analysis.Indicators, patterns *analysis.PatternSummary, news []entity.NewsItem) *entity.AnalysisResult {
	result := &entity.AnalysisResult{
		Symbol:            data.Symbol,
		AnalysisType:      entity.AnalysisTypeComprehensive,
		AnalysisTimestamp: time.Now(),
	}

	if !a.Enabled() {
		result.AnalysisType = entity.AnalysisTypeDisabled
		result.Insights = []string{"AI analysis is disabled: no API key configured"}
		return result
	}

	prompt := BuildStockAnalysisPrompt(data, indicators, patterns, news)
	text, err := a.generate(ctx, prompt)
	if err != nil {
		a.log.Error("AI analysis failed", logger.StringField("symbol", data.Symbol), logger.ErrorField(err))
		result.AnalysisType = entity.AnalysisTypeError
		result.Insights = []string{fmt.Sprintf("analysis failed: %v", err)}
		return result
	}

	payload, ok := parseAnalysisPayload(text)
	if !ok {
		// Keep the raw answer rather than discarding it.
		confidence := 0.5
		result.Insights = []string{strings.TrimSpace(text)}
		result.ConfidenceScore = &confidence
		return result
	}

	result.Insights = payload.Insights
	result.Recommendations = payload.Recommendations
	result.ConfidenceScore = payload.ConfidenceScore
	return result
}

func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	if a.genAiClient != nil {
		contents := []*genai.Content{genai.NewContentFromText(prompt, "user")}
		tokenResp, err := a.genAiClient.Models.CountTokens(ctx, a.cfg.Model, contents, nil)
		if err != nil {
			return "", fmt.Errorf("failed to count tokens: %w", err)
		}
		if err := a.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
			return "", fmt.Errorf("failed to wait for token limit: %w", err)
		}
	}
	if err := a.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := GeminiAPIRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", a.cfg.BaseURL, a.cfg.Model, a.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-OK response from Gemini API: %d - %s", resp.StatusCode, string(respBody))
	}

	var geminiResp GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content found in Gemini response")
	}
	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// parseAnalysisPayload tries to read the model's answer as the requested JSON
// shape, tolerating a fenced code block around it.
func parseAnalysisPayload(text string) (analysisPayload, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.Trim(cleaned, "`json\n`")
	cleaned = strings.TrimSpace(cleaned)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return analysisPayload{}, false
	}
	if len(payload.Insights) == 0 && len(payload.Recommendations) == 0 {
		return analysisPayload{}, false
	}
	if payload.ConfidenceScore != nil {
		clamped := math.Min(math.Max(*payload.ConfidenceScore, 0), 1)
		payload.ConfidenceScore = &clamped
	}
	return payload, true
}
