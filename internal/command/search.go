package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// SearchCommand: 제목(또는 숫자 ID)으로 애니메이션을 검색한다.
type SearchCommand struct {
	BaseCommand
}

// NewSearchCommand 는 동작을 수행한다.
func NewSearchCommand(deps *Dependencies) *SearchCommand {
	return &SearchCommand{BaseCommand: NewBaseCommand(deps)}
}

// Name 는 동작을 수행한다.
func (c *SearchCommand) Name() string {
	return string(domain.CommandSearch)
}

// Description 는 동작을 수행한다.
func (c *SearchCommand) Description() string {
	return "Search for anime by title"
}

// Execute 는 동작을 수행한다.
func (c *SearchCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if err := c.ensureDeps(); err != nil {
		return err
	}

	query := stringParam(params, "query")
	if query == "" {
		return c.fail(ctx, cmdCtx, adapter.ErrNeedSearchQuery)
	}

	page, err := c.Deps().AniList.Search(ctx, query)
	if err != nil {
		c.Deps().Logger.Error("Anime search failed",
			slog.String("query", query),
			slog.Any("error", err),
		)
		return c.fail(ctx, cmdCtx, adapter.ErrSearchFailed)
	}

	return c.reply(ctx, cmdCtx, c.Deps().Formatter.SearchResults(query, page))
}

func (c *SearchCommand) ensureDeps() error {
	if err := c.EnsureBaseDeps(); err != nil {
		return err
	}
	if c.Deps().AniList == nil {
		return fmt.Errorf("search command services not configured")
	}
	return nil
}
