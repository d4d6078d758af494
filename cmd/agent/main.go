package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang-quote-agent/internal/agent/config"
	"golang-quote-agent/internal/agent/dto"
	"golang-quote-agent/internal/agent/service"
	"golang-quote-agent/internal/ai"
	"golang-quote-agent/internal/analysis"
	"golang-quote-agent/internal/entity"
	"golang-quote-agent/internal/news"
	"golang-quote-agent/internal/scraper"
	"golang-quote-agent/pkg/health"
	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/normalize"
	"golang-quote-agent/pkg/retry"

	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var (
	configPath string
	period     string
	interval   string
)

func buildAgent(ctx context.Context) (service.AgentService, *logger.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := cfg.Logger.Level
	if level == "" {
		level = "warn"
	}
	encoding := cfg.Logger.Encoding
	if encoding == "" {
		encoding = "console"
	}
	appLogger, err := logger.New(level, encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	var fetcher scraper.DocumentFetcher
	if cfg.Scraper.UseBrowser {
		fetcher = scraper.NewBrowserFetcher(cfg.Scraper.Fetcher, appLogger, 0)
	} else {
		fetcher = scraper.NewHTTPFetcher(cfg.Scraper.Fetcher, appLogger)
	}

	tracker := health.NewTracker(cfg.Scraper.MaxErrorsKept)
	extractor := scraper.NewExtractor(cfg.Scraper.Validation, appLogger)
	sc := scraper.NewScraper(fetcher, extractor, retryPolicy(cfg.Scraper), tracker, tracker, appLogger)

	breaker := retry.NewCircuitBreaker(
		orDefault(cfg.Scraper.CircuitBreaker.FailureThreshold, 5),
		parseDuration(cfg.Scraper.CircuitBreaker.RecoveryTimeout, time.Minute),
	)

	opts := service.Options{
		News: news.NewFetcher(cfg.News, appLogger),
	}
	if cfg.Gemini.APIKey != "" {
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.Gemini.APIKey})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		opts.Analyzer = ai.NewAnalyzer(cfg.Gemini, appLogger, genAiClient)
	} else {
		opts.Analyzer = ai.NewAnalyzer(cfg.Gemini, appLogger, nil)
	}

	historyRepo := analysis.NewHistoryRepository(cfg.History, appLogger)
	return service.NewAgentService(sc, historyRepo, breaker, tracker, opts, appLogger), appLogger
}

func retryPolicy(cfg config.Scraper) retry.Policy {
	policy := retry.DefaultPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxRetries = cfg.MaxRetries
	}
	if cfg.BackoffFactor > 0 {
		policy.BackoffFactor = cfg.BackoffFactor
	}
	policy.BaseDelay = parseDuration(cfg.BaseDelay, policy.BaseDelay)
	policy.MaxDelay = parseDuration(cfg.MaxDelay, policy.MaxDelay)
	return policy
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [symbol]",
	Short: "Scrape the current quote for a symbol",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		agent, _ := buildAgent(ctx)
		result := agent.Scrape(ctx, args[0])
		if !result.Success {
			fmt.Fprintf(os.Stderr, "scrape failed: %s\n", result.ErrorMessage)
			os.Exit(1)
		}
		printQuote(result.Data)
		fmt.Printf("\nExtraction took %s\n", result.ExtractionTime.Round(time.Millisecond))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [symbol]",
	Short: "Fetch the historical price series for a symbol",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		agent, _ := buildAgent(ctx)
		data, err := agent.GetHistoricalData(ctx, args[0], period, interval)
		if err != nil {
			fmt.Fprintf(os.Stderr, "history failed: %v\n", err)
			os.Exit(1)
		}
		printHistory(data)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Run the full analysis pipeline for a symbol",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		agent, _ := buildAgent(ctx)
		report, err := agent.Analyze(ctx, args[0], period)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
			os.Exit(1)
		}
		printReport(report)
	},
}

var newsCmd = &cobra.Command{
	Use:   "news [symbol]",
	Short: "Fetch recent headlines for a symbol",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		agent, _ := buildAgent(ctx)
		items, err := agent.Headlines(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "news failed: %v\n", err)
			os.Exit(1)
		}
		printNews(items)
	},
}

func printQuote(data *entity.StockData) {
	fmt.Printf("%s (%s)\n", data.CompanyInfo.CompanyName, data.Symbol)
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Price:          %s\n", normalize.FormatCurrency(data.PriceInfo.CurrentPrice))
	fmt.Printf("Change:         %s (%s)\n",
		normalize.FormatCurrency(data.PriceInfo.PriceChange),
		normalize.FormatPercent(data.PriceInfo.PriceChangePercent))
	fmt.Printf("Previous close: %s\n", normalize.FormatCurrency(data.PriceInfo.PreviousClose))
	fmt.Printf("Open:           %s\n", normalize.FormatCurrency(data.PriceInfo.OpenPrice))
	fmt.Printf("Day range:      %s - %s\n",
		normalize.FormatCurrency(data.PriceInfo.DayLow),
		normalize.FormatCurrency(data.PriceInfo.DayHigh))
	fmt.Printf("52 week range:  %s - %s\n",
		normalize.FormatCurrency(data.PriceInfo.Week52Low),
		normalize.FormatCurrency(data.PriceInfo.Week52High))
	fmt.Printf("Volume:         %s (avg %s)\n",
		normalize.FormatVolume(data.TradingMetrics.Volume),
		normalize.FormatVolume(data.TradingMetrics.AvgVolume))
	if data.TradingMetrics.MarketCap != nil {
		fmt.Printf("Market cap:     %s\n", *data.TradingMetrics.MarketCap)
	} else {
		fmt.Printf("Market cap:     N/A\n")
	}
	fmt.Printf("PE ratio:       %s\n", formatFloat(data.FinancialRatios.PERatio))
	fmt.Printf("EPS:            %s\n", formatFloat(data.FinancialRatios.EPS))
	fmt.Printf("Dividend yield: %s\n", normalize.FormatPercent(data.FinancialRatios.DividendYield))
	fmt.Printf("Beta:           %s\n", formatFloat(data.FinancialRatios.Beta))
	if normalize.IsMarketHours(time.Now()) {
		fmt.Println("\nMarket is open.")
	} else {
		fmt.Println("\nMarket is closed.")
	}
}

func printHistory(data *entity.HistoricalData) {
	fmt.Printf("%s: %d bars (%s, %s)\n", data.Symbol, len(data.DataPoints), data.Period, data.Interval)
	points := data.DataPoints
	if len(points) > 10 {
		points = points[len(points)-10:]
		fmt.Println("(showing the last 10)")
	}
	for _, p := range points {
		fmt.Printf("%s  O:%s H:%s L:%s C:%s V:%s\n",
			p.Date.Format("2006-01-02"),
			formatFloat(p.Open), formatFloat(p.High), formatFloat(p.Low), formatFloat(p.Close),
			normalize.FormatVolume(p.Volume))
	}
}

func printReport(report *dto.AnalysisReport) {
	printQuote(report.Quote)

	if report.Indicators != nil {
		ind := report.Indicators
		fmt.Println("\nTechnical indicators")
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("SMA 20/50/200:  %s / %s / %s\n", formatFloat(ind.SMA20), formatFloat(ind.SMA50), formatFloat(ind.SMA200))
		fmt.Printf("RSI(14):        %s\n", formatFloat(ind.RSI14))
		fmt.Printf("MACD:           %s (signal %s)\n", formatFloat(ind.MACD), formatFloat(ind.MACDSignal))
		fmt.Printf("Bollinger:      %s / %s / %s\n", formatFloat(ind.BollingerLower), formatFloat(ind.BollingerMiddle), formatFloat(ind.BollingerUpper))
		fmt.Printf("Volatility:     %s\n", normalize.FormatPercent(ind.Volatility))
	}

	if report.Patterns != nil {
		fmt.Printf("\nTrend: %s (strength %.2f)\n", report.Patterns.Trend, report.Patterns.TrendStrength)
		if len(report.Patterns.SupportLevels) > 0 {
			fmt.Printf("Support:    %v\n", report.Patterns.SupportLevels)
		}
		if len(report.Patterns.ResistanceLevels) > 0 {
			fmt.Printf("Resistance: %v\n", report.Patterns.ResistanceLevels)
		}
	}

	if report.AIAnalysis != nil {
		fmt.Printf("\nAI analysis (%s)\n", report.AIAnalysis.AnalysisType)
		fmt.Println(strings.Repeat("-", 40))
		for _, insight := range report.AIAnalysis.Insights {
			fmt.Printf("* %s\n", insight)
		}
		for _, rec := range report.AIAnalysis.Recommendations {
			fmt.Printf("> %s\n", rec)
		}
		if report.AIAnalysis.ConfidenceScore != nil {
			fmt.Printf("Confidence: %.2f\n", *report.AIAnalysis.ConfidenceScore)
		}
	}
}

func printNews(items []entity.NewsItem) {
	if len(items) == 0 {
		fmt.Println("No recent headlines.")
		return
	}
	for _, item := range items {
		date := "N/A"
		if item.PublishedAt != nil {
			date = item.PublishedAt.Format("2006-01-02")
		}
		fmt.Printf("[%s] %s (%s)\n  %s\n", date, item.Title, item.Source, item.Link)
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "agent",
		Short: "Stock quote scraping and analysis agent",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-agent.yaml", "Path to the configuration file")
	historyCmd.Flags().StringVarP(&period, "period", "p", "1y", "History period (1mo, 3mo, 6mo, 1y, 2y, 5y, max)")
	historyCmd.Flags().StringVarP(&interval, "interval", "i", "1d", "Bar interval (1d, 1wk, 1mo)")
	analyzeCmd.Flags().StringVarP(&period, "period", "p", "1y", "History period for the indicator window")

	rootCmd.AddCommand(scrapeCmd, historyCmd, analyzeCmd, newsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing agent CLI: %s\n", err)
		os.Exit(1)
	}
}
