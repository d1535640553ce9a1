package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/kapu/anilist-discord-bot-go/internal/bot"
	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/service/notification"
)

// BotRuntime: cmd/bot 이 실행하는 조립 완료된 서비스 묶음
type BotRuntime struct {
	Config *config.Config
	Logger *slog.Logger

	Session       *discordgo.Session
	Bot           *bot.Bot
	Notifications *notification.Service
	HTTPServer    *http.Server

	cleanup func()
}

// Close - 런타임 리소스 정리 (타이머, DB, 캐시 연결 해제)
func (r *BotRuntime) Close() {
	if r != nil && r.cleanup != nil {
		r.cleanup()
	}
}

// BuildRuntime: 설정으로부터 런타임을 조립한다. 실패하면 이미 연 리소스를 정리한다.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*BotRuntime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	runtime, cleanup, err := InitializeBotRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("runtime initialization failed: %w", err)
	}
	runtime.cleanup = cleanup

	return runtime, nil
}

// Run: 디스코드 세션, 알림 정리 루프, HTTP 서버를 함께 실행한다.
// 하나가 실패하거나 ctx 가 끝나면 나머지도 멈추고 반환한다.
func (r *BotRuntime) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.Bot.Run(gctx, r.Session)
	})

	g.Go(func() error {
		r.Logger.Info("Notification cleanup loop started",
			slog.Duration("interval", r.Config.Notification.CleanupInterval),
		)
		return r.Notifications.Run(gctx, r.Config.Notification.CleanupInterval)
	})

	if r.HTTPServer != nil {
		g.Go(func() error {
			r.Logger.Info("HTTP server started", slog.String("addr", r.HTTPServer.Addr))
			if err := r.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.AppTimeout.Shutdown)
			defer cancel()
			if err := r.HTTPServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("HTTP server shutdown failed: %w", err)
			}
			return nil
		})
	}

	r.Logger.Info("Bot started, waiting for signals...")
	err := g.Wait()
	r.Notifications.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	r.Logger.Info("Shutdown complete")
	return nil
}
