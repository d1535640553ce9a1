package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// ReleaseCommand: 현재 방영 중인 작품 목록
type ReleaseCommand struct {
	BaseCommand
}

// NewReleaseCommand 는 동작을 수행한다.
func NewReleaseCommand(deps *Dependencies) *ReleaseCommand {
	return &ReleaseCommand{BaseCommand: NewBaseCommand(deps)}
}

// Name 는 동작을 수행한다.
func (c *ReleaseCommand) Name() string {
	return string(domain.CommandRelease)
}

// Description 는 동작을 수행한다.
func (c *ReleaseCommand) Description() string {
	return "Show all currently releasing anime"
}

// Execute 는 동작을 수행한다.
func (c *ReleaseCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if err := c.ensureDeps(); err != nil {
		return err
	}

	page, ok := intParam(params, "page")
	if !ok || page < 1 {
		page = 1
	}
	perPage, ok := intParam(params, "perpage")
	if !ok || perPage < 1 {
		perPage = constants.PaginationConfig.ReleasePerPage
	}
	perPage = min(max(perPage, constants.CommandConfig.MinReleasePerPage), constants.CommandConfig.MaxReleasePerPage)

	result, err := c.Deps().AniList.Releasing(ctx, page, perPage)
	if err != nil {
		c.Deps().Logger.Error("Failed to fetch releasing anime",
			slog.Int("page", page),
			slog.Int("per_page", perPage),
			slog.Any("error", err),
		)
		return c.fail(ctx, cmdCtx, adapter.ErrReleaseFetchFailed)
	}

	return c.reply(ctx, cmdCtx, c.Deps().Formatter.ReleasingList(result))
}

func (c *ReleaseCommand) ensureDeps() error {
	if err := c.EnsureBaseDeps(); err != nil {
		return err
	}
	if c.Deps().AniList == nil {
		return fmt.Errorf("release command services not configured")
	}
	return nil
}
