package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/app"
	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/platform/bootstrap"
	"github.com/kapu/anilist-discord-bot-go/internal/service/store"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

func main() {
	from := flag.String("from", config.BackendFile, "source backend (file, valkey, postgres, sqlite)")
	to := flag.String("to", "", "destination backend (file, valkey, postgres, sqlite)")
	dryRun := flag.Bool("dry-run", false, "count records without writing")
	flag.Parse()

	src, dst := util.Normalize(*from), util.Normalize(*to)
	if dst == "" || src == dst {
		fmt.Fprintln(os.Stderr, "Usage: migrate_store -from <backend> -to <backend> [-dry-run]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := bootstrap.NewLogger(cfg, "migrate_store.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrate(ctx, cfg, logger, src, dst, *dryRun); err != nil {
		logger.Error("Store migration failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger, from, to string, dryRun bool) error {
	srcStore, cleanupSrc, err := app.InitializeStore(ctx, from, cfg, logger)
	if err != nil {
		return fmt.Errorf("open source store: %w", err)
	}
	defer cleanupSrc()

	dstStore, cleanupDst, err := app.InitializeStore(ctx, to, cfg, logger)
	if err != nil {
		return fmt.Errorf("open destination store: %w", err)
	}
	defer cleanupDst()

	logger.Info("Store migration started",
		slog.String("from", from),
		slog.String("to", to),
		slog.Bool("dry_run", dryRun),
	)

	stats, err := store.Copy(ctx, srcStore, dstStore, time.Now(), dryRun)
	if err != nil {
		return err
	}

	logger.Info("Store migration completed",
		slog.Int("copied", stats.Copied),
		slog.Int("expired_skipped", stats.Expired),
		slog.Int("failed", stats.Failed),
	)
	return nil
}
