package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang-quote-agent/internal/agent/config"
	"golang-quote-agent/internal/agent/service"
	"golang-quote-agent/internal/ai"
	"golang-quote-agent/internal/analysis"
	"golang-quote-agent/internal/news"
	"golang-quote-agent/internal/scraper"
	"golang-quote-agent/pkg/health"
	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/retry"

	"github.com/mark3labs/mcp-go/server"
	"google.golang.org/genai"
)

func main() {
	configPath := os.Getenv("QUOTE_AGENT_CONFIG")
	if configPath == "" {
		configPath = "configs/config-agent.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging so stdio stays clean for the protocol.
	appLogger, err := logger.New("warn", "console")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	var fetcher scraper.DocumentFetcher
	if cfg.Scraper.UseBrowser {
		fetcher = scraper.NewBrowserFetcher(cfg.Scraper.Fetcher, appLogger, 0)
	} else {
		fetcher = scraper.NewHTTPFetcher(cfg.Scraper.Fetcher, appLogger)
	}
	tracker := health.NewTracker(cfg.Scraper.MaxErrorsKept)
	extractor := scraper.NewExtractor(cfg.Scraper.Validation, appLogger)

	policy := retry.DefaultPolicy()
	if cfg.Scraper.MaxRetries > 0 {
		policy.MaxRetries = cfg.Scraper.MaxRetries
	}
	sc := scraper.NewScraper(fetcher, extractor, policy, tracker, tracker, appLogger)

	failureThreshold := cfg.Scraper.CircuitBreaker.FailureThreshold
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	breaker := retry.NewCircuitBreaker(failureThreshold, time.Minute)

	opts := service.Options{
		News: news.NewFetcher(cfg.News, appLogger),
	}
	var genAiClient *genai.Client
	if cfg.Gemini.APIKey != "" {
		genAiClient, err = genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.Gemini.APIKey})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
	}
	opts.Analyzer = ai.NewAnalyzer(cfg.Gemini, appLogger, genAiClient)

	historyRepo := analysis.NewHistoryRepository(cfg.History, appLogger)
	agentSvc := service.NewAgentService(sc, historyRepo, breaker, tracker, opts, appLogger)

	mcpServer := server.NewMCPServer(
		"quote-agent",
		cfg.App.Version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createScrapeStockTool(), handleScrapeStock(agentSvc, appLogger))
	mcpServer.AddTool(createGetStockPriceTool(), handleGetStockPrice(agentSvc, appLogger))
	mcpServer.AddTool(createGetHistoricalDataTool(), handleGetHistoricalData(agentSvc, appLogger))
	mcpServer.AddTool(createAnalyzeStockTool(), handleAnalyzeStock(agentSvc, appLogger))
	mcpServer.AddTool(createCompareStocksTool(), handleCompareStocks(agentSvc, appLogger))
	mcpServer.AddTool(createHealthStatusTool(), handleHealthStatus(agentSvc, appLogger))

	if err := server.ServeStdio(mcpServer); err != nil {
		appLogger.Fatal("MCP server failed", logger.ErrorField(err))
	}
}
