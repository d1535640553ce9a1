package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/bot"
	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/health"
	"github.com/kapu/anilist-discord-bot-go/internal/platform/bootstrap"
	"github.com/kapu/anilist-discord-bot-go/internal/server"
	"github.com/kapu/anilist-discord-bot-go/internal/service/ai"
	"github.com/kapu/anilist-discord-bot-go/internal/service/anilist"
	"github.com/kapu/anilist-discord-bot-go/internal/service/notification"
	"github.com/kapu/anilist-discord-bot-go/internal/service/store"
	"github.com/kapu/anilist-discord-bot-go/internal/service/watchlist"
)

func noop() {}

// ProvideCacheResources - Valkey 가 설정된 경우에만 캐시 리소스를 만든다. 미설정이면 nil.
func ProvideCacheResources(cfg config.ValkeyConfig, logger *slog.Logger) (*bootstrap.CacheResources, func(), error) {
	if !cfg.Enabled {
		logger.Info("Valkey not configured, running without cache")
		return nil, noop, nil
	}
	resources, err := bootstrap.NewCacheResources(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache resources: %w", err)
	}
	health.Register("valkey", func(ctx context.Context) error {
		if !resources.Service.IsConnected(ctx) {
			return errors.New("valkey ping failed")
		}
		return nil
	})
	return resources, resources.Close, nil
}

// ProvideDatabaseResources - backend 에 맞는 GORM 리소스를 만든다.
func ProvideDatabaseResources(ctx context.Context, backend string, cfg *config.Config, logger *slog.Logger) (*bootstrap.DatabaseResources, func(), error) {
	var (
		resources *bootstrap.DatabaseResources
		err       error
	)
	switch backend {
	case config.BackendPostgres:
		resources, err = bootstrap.NewPostgresResources(ctx, cfg.Postgres, logger)
	case config.BackendSQLite:
		resources, err = bootstrap.NewSQLiteResources(cfg.Storage.SQLitePath, logger)
	default:
		return nil, nil, fmt.Errorf("backend %q is not a database backend", backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database resources: %w", err)
	}
	health.Register(resources.Backend, resources.Ping)
	return resources, resources.Close, nil
}

// ProvideNotificationStore - 알림 저장소 백엔드를 선택한다.
func ProvideNotificationStore(
	ctx context.Context,
	backend string,
	cfg *config.Config,
	cacheRes *bootstrap.CacheResources,
	logger *slog.Logger,
) (store.Store, func(), error) {
	switch backend {
	case config.BackendFile:
		return store.NewFileStore(cfg.Storage.NotificationFile, logger), noop, nil
	case config.BackendValkey:
		if cacheRes == nil {
			return nil, nil, fmt.Errorf("valkey notification store requires a configured cache")
		}
		return store.NewValkeyStore(cacheRes.Service), noop, nil
	case config.BackendPostgres, config.BackendSQLite:
		dbRes, cleanup, err := ProvideDatabaseResources(ctx, backend, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		gormStore, err := store.NewGormStore(ctx, dbRes.DB)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create %s notification store: %w", backend, err)
		}
		return gormStore, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown notification store backend %q", backend)
	}
}

// ProvideWatchlistService - 관심 목록 저장소(file 또는 valkey)를 선택한다.
func ProvideWatchlistService(cfg *config.Config, cacheRes *bootstrap.CacheResources, logger *slog.Logger) (*watchlist.Service, error) {
	var setStore watchlist.SetStore
	switch cfg.Storage.WatchlistBackend {
	case config.BackendFile:
		setStore = watchlist.NewFileStore(cfg.Storage.WatchlistFile, logger)
	case config.BackendValkey:
		if cacheRes == nil {
			return nil, fmt.Errorf("valkey watchlist requires a configured cache")
		}
		setStore = watchlist.NewValkeyStore(cacheRes.Service)
	default:
		return nil, fmt.Errorf("unknown watchlist backend %q", cfg.Storage.WatchlistBackend)
	}
	logger.Info("Watchlist store selected", slog.String("backend", cfg.Storage.WatchlistBackend))
	return watchlist.NewService(setStore, logger), nil
}

// ProvideAniListService - AniList 클라이언트와 조회 서비스. 캐시가 있으면 상세 정보를 캐싱한다.
func ProvideAniListService(cfg *config.Config, cacheRes *bootstrap.CacheResources, logger *slog.Logger) *anilist.Service {
	client := anilist.NewAPIClient(anilist.ClientConfig{
		BaseURL:    cfg.AniList.APIURL,
		RatePerMin: cfg.AniList.RatePerMin,
	}, logger)

	var detailCache anilist.DetailCache
	if cacheRes != nil {
		detailCache = cacheRes.Service
	}
	return anilist.NewService(client, detailCache, logger)
}

// ProvideFinder - AI 키가 없거나 제공자 초기화에 실패하면 비활성 Finder 를 돌려준다.
func ProvideFinder(ctx context.Context, cfg *config.Config, searcher ai.Searcher, logger *slog.Logger) *ai.Finder {
	recommender, err := ai.NewRecommender(ctx, cfg.AI, logger)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Info("AI provider not configured, /anime find disabled")
		return ai.NewFinder(nil, searcher, logger)
	case err != nil:
		logger.Warn("AI provider initialization failed, /anime find disabled", slog.Any("error", err))
		return ai.NewFinder(nil, searcher, logger)
	}
	return ai.NewFinder(recommender, searcher, logger)
}

// ProvideDiscordSession - 봇 토큰으로 discordgo 세션을 만든다. 연결은 Bot.Run 에서 연다.
func ProvideDiscordSession(cfg *config.Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return dg, nil
}

// ProvideBotDependencies - 봇 의존성을 조립한다.
func ProvideBotDependencies(
	cfg *config.Config,
	logger *slog.Logger,
	session bot.Session,
	aniList *anilist.Service,
	notifications *notification.Service,
	watchlistSvc *watchlist.Service,
	finder *ai.Finder,
) *bot.Dependencies {
	return &bot.Dependencies{
		Config:         cfg,
		Logger:         logger,
		Session:        session,
		MessageAdapter: adapter.NewMessageAdapter(adapter.RootCommand),
		Formatter:      adapter.NewResponseFormatter(finder.Enabled()),
		AniList:        aniList,
		Notifications:  notifications,
		Watchlist:      watchlistSvc,
		Finder:         finder,
	}
}

// ProvideBot: 봇 인스턴스를 생성하여 제공한다.
func ProvideBot(deps *bot.Dependencies) (*bot.Bot, error) {
	created, err := bot.NewBot(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return created, nil
}

// ProvideHTTPServer - SERVER_PORT 가 0 이면 HTTP 서버 없이 동작한다.
func ProvideHTTPServer(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	notifications *notification.Service,
	watchlistSvc *watchlist.Service,
) (*http.Server, error) {
	if cfg.Server.Port == 0 {
		logger.Info("HTTP server disabled")
		return nil, nil
	}

	handler := server.NewAPIHandler(notifications, watchlistSvc, logger)
	router, err := server.NewRouter(ctx, server.RouterConfig{
		APIKey:       cfg.Server.APIKey,
		AllowOrigins: cfg.Server.AllowOrigins,
	}, logger, handler)
	if err != nil {
		return nil, fmt.Errorf("failed to create http router: %w", err)
	}
	return server.NewHTTPServer(cfg.Server.Port, router), nil
}
