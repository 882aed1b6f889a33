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

	"golang-portfolio-analytics/internal/analytics/config"
	delivery "golang-portfolio-analytics/internal/analytics/delivery/http"
	"golang-portfolio-analytics/internal/analytics/repository"
	"golang-portfolio-analytics/internal/analytics/service"
	"golang-portfolio-analytics/pkg/logger"
	"golang-portfolio-analytics/pkg/postgres"
	"golang-portfolio-analytics/pkg/redis"
	"golang-portfolio-analytics/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the risk analytics service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Risk Analytics Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
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

	// Initialize repositories
	portfolioRepo := repository.NewPortfolioRepository(db.DB)
	historyRepo := repository.NewEvaluationHistoryRepository(db.DB)
	priceHistoryRepo, err := repository.NewYahooFinanceRepository(cfg.PriceProvider, appLogger, redisClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize price history repository", logger.ErrorField(err))
	}

	// Initialize Telegram notifier
	var telegramNotifier telegram.Notifier
	if cfg.Telegram.Enabled {
		telegramNotifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize services
	calculator := service.NewRiskCalculator(cfg.Thresholds, cfg.Analytics.RiskFreeRatePct)
	riskSummarySvc := service.NewRiskSummaryService(cfg, appLogger, calculator, portfolioRepo, priceHistoryRepo, historyRepo, telegramNotifier)

	// Start the price cache refresher
	if cfg.PriceRefresher.Enabled {
		refresher := service.NewPriceRefresher(cfg, appLogger, portfolioRepo, priceHistoryRepo)
		if err := refresher.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start price refresher", logger.ErrorField(err))
		}
		defer refresher.Stop()
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	riskHandler := delivery.NewRiskHandler(riskSummarySvc, appLogger)
	historyHandler := delivery.NewEvaluationHistoryHandler(historyRepo, appLogger)
	apiV1 := e.Group("/api/v1")
	riskHandler.RegisterRoutes(apiV1)
	historyHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	appLogger.Info("Risk analytics service started. Waiting for requests...")

	<-ctx.Done()

	appLogger.Info("Shutting down risk analytics service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Failed to shut down server gracefully", logger.ErrorField(err))
	}
	appLogger.Info("Risk analytics service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "analytics-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-analytics.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing analytics-service CLI: %s\n", err)
		os.Exit(1)
	}
}
