package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"repair-bot/config"
	telegram "repair-bot/internal/api"
	"repair-bot/internal/container"
	"repair-bot/internal/infrastructure/storage"
	"repair-bot/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger, err := log.New(log.Options{Level: cfg.LogLevel, File: cfg.LogFile, Env: cfg.AppEnv})
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_TOKEN is required")
	}

	params, err := config.LoadTuning(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load tuning")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapters, err := container.NewAdapters(ctx, cfg, params, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create adapters")
	}
	defer adapters.Close()

	// Хранилища в памяти
	userRepo := storage.NewMemoryUserRepository()
	sessions := storage.NewMemorySessionStore(cfg.MaxPhotos)

	appContainer := container.New(userRepo, sessions, adapters, params, logger)

	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create bot")
	}

	logger.Info("Bot is running...")
	if err := bot.Run(ctx); err != nil {
		logger.WithError(err).Error("Bot error")
	}
}
