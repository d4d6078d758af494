package config

import (
	"golang-quote-agent/internal/ai"
	"golang-quote-agent/internal/analysis"
	"golang-quote-agent/internal/news"
	"golang-quote-agent/internal/scraper"
	"golang-quote-agent/pkg/config"
)

// Scraper holds scraping pipeline configuration.
type Scraper struct {
	Fetcher        scraper.FetcherConfig    `mapstructure:"fetcher"`
	Validation     scraper.ValidationBounds `mapstructure:"validation"`
	UseBrowser     bool                     `mapstructure:"use_browser"`
	MaxRetries     int                      `mapstructure:"max_retries"`
	BaseDelay      string                   `mapstructure:"base_delay"`
	BackoffFactor  float64                  `mapstructure:"backoff_factor"`
	MaxDelay       string                   `mapstructure:"max_delay"`
	CacheTTL       string                   `mapstructure:"cache_ttl"`
	MaxErrorsKept  int                      `mapstructure:"max_errors_kept"`
	CircuitBreaker CircuitBreaker           `mapstructure:"circuit_breaker"`
}

// CircuitBreaker holds the breaker thresholds guarding the scrape path.
type CircuitBreaker struct {
	FailureThreshold int    `mapstructure:"failure_threshold"`
	RecoveryTimeout  string `mapstructure:"recovery_timeout"`
}

// Telegram holds alerting configuration.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

// Config holds the full configuration for the quote agent services.
type Config struct {
	App      config.App             `mapstructure:"app"`
	Logger   config.Logger          `mapstructure:"logger"`
	Database config.Database        `mapstructure:"database"`
	Redis    config.Redis           `mapstructure:"redis"`
	API      config.API             `mapstructure:"api"`
	Scraper  Scraper                `mapstructure:"scraper"`
	History  analysis.HistoryConfig `mapstructure:"history"`
	Gemini   ai.Config              `mapstructure:"gemini"`
	News     news.Config            `mapstructure:"news"`
	Telegram Telegram               `mapstructure:"telegram"`
}

// Load loads the agent configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
