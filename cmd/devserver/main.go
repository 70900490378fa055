package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os/signal"
	"syscall"

	appconfig "github.com/abirbhav/Dining-Concierge-Chatbot/internal/config"
	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/server"
	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; anything else is worth stopping for.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	var cfg appconfig.DevServerConfig
	if err := appconfig.Load(&cfg); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := appconfig.NewLogger(cfg.CommonConfig)
	cfg.LogConfig(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to create dev server", logger.ErrorField(err))
		log.Fatal(err)
	}

	if err := srv.Run(ctx); err != nil {
		appLogger.Error("Dev server stopped with error", logger.ErrorField(err))
		log.Fatal(err)
	}
	appLogger.Info("Dev server stopped")
}
