package command

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// NextCommand: 다음 에피소드 방영 정보를 보여준다.
type NextCommand struct {
	BaseCommand
}

// NewNextCommand 는 동작을 수행한다.
func NewNextCommand(deps *Dependencies) *NextCommand {
	return &NextCommand{BaseCommand: NewBaseCommand(deps)}
}

// Name 는 동작을 수행한다.
func (c *NextCommand) Name() string {
	return string(domain.CommandNext)
}

// Description 는 동작을 수행한다.
func (c *NextCommand) Description() string {
	return "Get next episode information for an anime"
}

// Execute 는 동작을 수행한다.
func (c *NextCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if err := c.ensureDeps(); err != nil {
		return err
	}

	animeID, ok := intParam(params, "id")
	if !ok || animeID <= 0 {
		return c.fail(ctx, cmdCtx, adapter.ErrNeedValidAnimeID)
	}

	media, err := c.Deps().AniList.GetAnimeByID(ctx, animeID)
	if err != nil {
		if stdErrors.Is(err, domain.ErrAnimeNotFound) {
			return c.reply(ctx, cmdCtx, adapter.TextResponse(fmt.Sprintf(adapter.MsgNoAnimeWithID, animeID)))
		}
		c.Deps().Logger.Error("Failed to fetch anime",
			slog.Int("anime_id", animeID),
			slog.Any("error", err),
		)
		return c.fail(ctx, cmdCtx, adapter.ErrFetchAnimeFailed)
	}

	return c.reply(ctx, cmdCtx, c.Deps().Formatter.NextEpisode(media, c.Deps().Now()))
}

func (c *NextCommand) ensureDeps() error {
	if err := c.EnsureBaseDeps(); err != nil {
		return err
	}
	if c.Deps().AniList == nil {
		return fmt.Errorf("next command services not configured")
	}
	return nil
}
