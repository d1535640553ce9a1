package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// BaseCommand: 모든 커맨드가 공통으로 가지는 기본 의존성과 검증 로직을 제공합니다.
type BaseCommand struct {
	deps *Dependencies
}

// NewBaseCommand: 새로운 BaseCommand 인스턴스를 생성합니다.
func NewBaseCommand(deps *Dependencies) BaseCommand {
	return BaseCommand{deps: deps}
}

// EnsureBaseDeps: 기본 의존성이 올바르게 설정되었는지 검증합니다.
// 모든 커맨드에서 공통으로 필요한 SendResponse, SendError, Formatter, Logger를 확인한다.
func (b *BaseCommand) EnsureBaseDeps() error {
	if b == nil || b.deps == nil {
		return fmt.Errorf("command dependencies not configured")
	}

	if b.deps.SendResponse == nil || b.deps.SendError == nil {
		return fmt.Errorf("response callbacks not configured")
	}

	if b.deps.Formatter == nil {
		return fmt.Errorf("formatter not configured")
	}

	if b.deps.Logger == nil {
		b.deps.Logger = slog.Default()
	}

	if b.deps.Now == nil {
		b.deps.Now = time.Now
	}

	return nil
}

// Deps: 의존성 객체를 반환합니다.
func (b *BaseCommand) Deps() *Dependencies {
	if b == nil {
		return nil
	}
	return b.deps
}

// reply: 단일 응답을 전송한다.
func (b *BaseCommand) reply(ctx context.Context, cmdCtx *domain.CommandContext, resp adapter.Response) error {
	return b.deps.SendResponse(ctx, cmdCtx, resp)
}

// fail: 에러 이모지를 붙여 전송한다.
func (b *BaseCommand) fail(ctx context.Context, cmdCtx *domain.CommandContext, message string) error {
	return b.deps.SendError(ctx, cmdCtx, adapter.ErrorMessage(message))
}

// animeTitle: 제목 조회 실패 시 빈 문자열을 돌려준다. 포맷터가 ID 기반 대체 표기를 사용한다.
func (b *BaseCommand) animeTitle(ctx context.Context, animeID int) string {
	if b.deps.AniList == nil {
		return ""
	}
	media, err := b.deps.AniList.GetAnimeByID(ctx, animeID)
	if err != nil || media == nil {
		return ""
	}
	return media.DisplayTitle()
}
