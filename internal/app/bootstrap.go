package app

import (
	"context"
	"log/slog"
	"slices"

	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/service/notification"
	"github.com/kapu/anilist-discord-bot-go/internal/service/store"
)

// cleanupStack: 역순으로 실행되는 정리 함수 모음
type cleanupStack []func()

func (s *cleanupStack) push(fn func()) {
	if fn != nil {
		*s = append(*s, fn)
	}
}

func (s cleanupStack) run() {
	for _, fn := range slices.Backward(s) {
		fn()
	}
}

// InitializeBotRuntime - cmd/bot 런타임 (Discord 세션 + 알림 스케줄러 + HTTP API)
func InitializeBotRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*BotRuntime, func(), error) {
	var cleanups cleanupStack
	fail := func(err error) (*BotRuntime, func(), error) {
		cleanups.run()
		return nil, nil, err
	}

	cacheRes, cleanupCache, err := ProvideCacheResources(cfg.Valkey, logger)
	if err != nil {
		return fail(err)
	}
	cleanups.push(cleanupCache)

	notificationStore, cleanupStore, err := ProvideNotificationStore(ctx, cfg.Storage.Backend, cfg, cacheRes, logger)
	if err != nil {
		return fail(err)
	}
	cleanups.push(cleanupStore)
	logger.Info("Notification store selected", slog.String("backend", cfg.Storage.Backend))

	watchlistSvc, err := ProvideWatchlistService(cfg, cacheRes, logger)
	if err != nil {
		return fail(err)
	}

	aniList := ProvideAniListService(cfg, cacheRes, logger)
	finder := ProvideFinder(ctx, cfg, aniList, logger)
	notifications := notification.NewService(notificationStore, aniList, logger)
	cleanups.push(notifications.Close)

	session, err := ProvideDiscordSession(cfg)
	if err != nil {
		return fail(err)
	}

	deps := ProvideBotDependencies(cfg, logger, session, aniList, notifications, watchlistSvc, finder)
	botBot, err := ProvideBot(deps)
	if err != nil {
		return fail(err)
	}

	httpServer, err := ProvideHTTPServer(ctx, cfg, logger, notifications, watchlistSvc)
	if err != nil {
		return fail(err)
	}

	runtime := &BotRuntime{
		Config:        cfg,
		Logger:        logger,
		Session:       session,
		Bot:           botBot,
		Notifications: notifications,
		HTTPServer:    httpServer,
	}
	return runtime, cleanups.run, nil
}

// InitializeStore - cmd/tools/migrate_store 전용. 지정한 백엔드의 알림 저장소만 연다.
func InitializeStore(ctx context.Context, backend string, cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	var cleanups cleanupStack

	cacheCfg := cfg.Valkey
	if backend != config.BackendValkey {
		cacheCfg.Enabled = false
	}
	cacheRes, cleanupCache, err := ProvideCacheResources(cacheCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanups.push(cleanupCache)

	st, cleanupStore, err := ProvideNotificationStore(ctx, backend, cfg, cacheRes, logger)
	if err != nil {
		cleanups.run()
		return nil, nil, err
	}
	cleanups.push(cleanupStore)

	return st, cleanups.run, nil
}
