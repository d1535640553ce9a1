package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kapu/anilist-discord-bot-go/internal/app"
	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/health"
	"github.com/kapu/anilist-discord-bot-go/internal/platform/bootstrap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := bootstrap.NewLogger(cfg, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	health.Init(cfg.Version)

	logger.Info("AniList Discord Bot starting...",
		slog.String("version", cfg.Version),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("watchlist_backend", cfg.Storage.WatchlistBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	buildCtx, buildCancel := context.WithTimeout(ctx, constants.AppTimeout.Build)
	runtime, err := app.BuildRuntime(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", slog.Any("error", err))
		return 1
	}
	defer runtime.Close()

	if err := runtime.Run(ctx); err != nil {
		logger.Error("Bot stopped with error", slog.Any("error", err))
		return 1
	}
	return 0
}
