package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"alpaca-trade-bot-go/internal/alpaca"
	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/database"
	"alpaca-trade-bot-go/internal/logger"
	"alpaca-trade-bot-go/internal/notify"
	"alpaca-trade-bot-go/internal/sentiment"
	tradesignal "alpaca-trade-bot-go/internal/signal"
	"alpaca-trade-bot-go/internal/trader"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Fatal startup checks run before anything can place an order.
	if err := trader.Preflight(cfg); err != nil {
		log.Fatal("Preflight failed", zap.Error(err))
	}
	log.Info("Preflight OK")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Initialize the broker client and collaborators
	broker := alpaca.NewClient(&cfg.Alpaca, log)
	notifier := notify.New(&cfg.Notify, log)

	var sentimentProvider tradesignal.SentimentProvider
	if cfg.Trading.UseSentimentFilter {
		sentimentProvider = sentiment.NewClient(&cfg.Sentiment, log)
		log.Info("Sentiment filter enabled", zap.String("base_url", cfg.Sentiment.BaseURL))
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Initialize and run the trading engine
	engine := trader.NewEngine(log, cfg, broker, db, sentimentProvider, notifier)

	if cfg.Server.Port > 0 {
		api := trader.NewAPIServer(engine, log)
		api.Start()
		defer api.Stop(context.Background())
	}

	engine.Run(ctx)

	log.Info("Bot has been shut down.")
}
