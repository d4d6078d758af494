package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-quote-agent/internal/agent/config"
	delivery "golang-quote-agent/internal/agent/delivery/http"
	"golang-quote-agent/internal/agent/repository"
	"golang-quote-agent/internal/agent/service"
	"golang-quote-agent/internal/ai"
	"golang-quote-agent/internal/analysis"
	"golang-quote-agent/internal/news"
	"golang-quote-agent/internal/scraper"
	"golang-quote-agent/pkg/health"
	"golang-quote-agent/pkg/logger"
	"golang-quote-agent/pkg/postgres"
	"golang-quote-agent/pkg/redis"
	"golang-quote-agent/pkg/retry"
	"golang-quote-agent/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the quote agent API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize scraping pipeline
	var fetcher scraper.DocumentFetcher
	if cfg.Scraper.UseBrowser {
		fetcher = scraper.NewBrowserFetcher(cfg.Scraper.Fetcher, appLogger, 0)
	} else {
		fetcher = scraper.NewHTTPFetcher(cfg.Scraper.Fetcher, appLogger)
	}
	tracker := health.NewTracker(cfg.Scraper.MaxErrorsKept)
	extractor := scraper.NewExtractor(cfg.Scraper.Validation, appLogger)
	sc := scraper.NewScraper(fetcher, extractor, retryPolicy(cfg.Scraper), tracker, tracker, appLogger)

	failureThreshold := cfg.Scraper.CircuitBreaker.FailureThreshold
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	breaker := retry.NewCircuitBreaker(failureThreshold, parseDuration(cfg.Scraper.CircuitBreaker.RecoveryTimeout, time.Minute))

	// Initialize repositories and collaborators
	recordRepo := repository.NewScrapeRecordRepository(db.DB)
	historyRepo := analysis.NewHistoryRepository(cfg.History, appLogger)

	opts := service.Options{
		RedisClient: redisClient.Client,
		RecordRepo:  recordRepo,
		News:        news.NewFetcher(cfg.News, appLogger),
		CacheTTL:    parseDuration(cfg.Scraper.CacheTTL, time.Minute),
	}

	if cfg.Telegram.Enabled {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
		opts.Notifier = notifier
	}

	var genAiClient *genai.Client
	if cfg.Gemini.APIKey != "" {
		genAiClient, err = genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.Gemini.APIKey})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
	}
	opts.Analyzer = ai.NewAnalyzer(cfg.Gemini, appLogger, genAiClient)

	agentSvc := service.NewAgentService(sc, historyRepo, breaker, tracker, opts, appLogger)

	// Hourly maintenance: evict aged errors, prune old scrape records, alert
	// when the success rate degrades.
	scheduler := cron.New()
	_, err = scheduler.AddFunc("@hourly", func() {
		tracker.EvictAged()
		deleted, err := recordRepo.DeleteOlderThan(context.Background(), time.Now().AddDate(0, 0, -30))
		if err != nil {
			appLogger.Error("Failed to prune scrape records", logger.ErrorField(err))
		} else if deleted > 0 {
			appLogger.Info("Pruned scrape records", logger.Field("deleted", deleted))
		}

		status := tracker.GetStatus()
		if status.Status == health.StatusUnhealthy && opts.Notifier != nil {
			text := telegram.FormatHealthAlert(status, tracker.GetErrorSummary(1, 3))
			if err := opts.Notifier.SendMessage(text); err != nil {
				appLogger.Warn("Failed to send health alert", logger.ErrorField(err))
			}
		}
	})
	if err != nil {
		appLogger.Fatal("Failed to schedule maintenance job", logger.ErrorField(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")

	stockHandler := delivery.NewStockHandler(agentSvc, appLogger)
	stockHandler.RegisterRoutes(apiV1.Group("/stocks"))

	healthHandler := delivery.NewHealthHandler(agentSvc, appLogger)
	healthHandler.RegisterRoutes(apiV1.Group("/health"))

	recordHandler := delivery.NewRecordHandler(recordRepo, appLogger)
	recordHandler.RegisterRoutes(apiV1.Group("/scrapes"))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
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

func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-agent.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
