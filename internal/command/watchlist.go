package command

import (
	"context"
	"log/slog"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// WatchlistCommand: 사용자 관심 목록 관리 (add, remove, list)
type WatchlistCommand struct {
	BaseCommand
}

// NewWatchlistCommand 는 동작을 수행한다.
func NewWatchlistCommand(deps *Dependencies) *WatchlistCommand {
	return &WatchlistCommand{BaseCommand: NewBaseCommand(deps)}
}

// Name 는 동작을 수행한다.
func (c *WatchlistCommand) Name() string {
	return string(domain.CommandWatchlist)
}

// Description 는 동작을 수행한다.
func (c *WatchlistCommand) Description() string {
	return "Manage your anime watchlist"
}

// Execute 는 동작을 수행한다.
func (c *WatchlistCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if err := c.EnsureBaseDeps(); err != nil {
		return err
	}

	if c.Deps().Watchlist == nil {
		return c.fail(ctx, cmdCtx, adapter.ErrWatchlistFetchFailed)
	}

	action := stringParam(params, "action")
	if action == "" {
		action = domain.ActionList
	}
	animeID, _ := intParam(params, "id")

	switch action {
	case domain.ActionAdd, domain.ActionRemove:
		if animeID <= 0 {
			return c.fail(ctx, cmdCtx, adapter.ErrNeedAnimeIDForAction)
		}
		return c.handleChange(ctx, cmdCtx, action, animeID)
	case domain.ActionList:
		return c.handleList(ctx, cmdCtx)
	default:
		return c.fail(ctx, cmdCtx, adapter.ErrUnknownWatchlistAct)
	}
}

func (c *WatchlistCommand) handleChange(ctx context.Context, cmdCtx *domain.CommandContext, action string, animeID int) error {
	result := c.Deps().Watchlist.Add
	if action == domain.ActionRemove {
		result = c.Deps().Watchlist.Remove
	}

	outcome := result(ctx, cmdCtx.UserID, animeID)
	title := ""
	if outcome.Success {
		title = c.animeTitle(ctx, animeID)
	}

	c.Deps().Logger.Info("Watchlist changed",
		slog.String("action", action),
		slog.Int("anime_id", animeID),
		slog.String("user_id", cmdCtx.UserID),
		slog.Bool("success", outcome.Success),
	)
	return c.reply(ctx, cmdCtx, c.Deps().Formatter.WatchlistChanged(action, animeID, title, outcome.Success, outcome.Message))
}

func (c *WatchlistCommand) handleList(ctx context.Context, cmdCtx *domain.CommandContext) error {
	ids, err := c.Deps().Watchlist.List(ctx, cmdCtx.UserID)
	if err != nil {
		return c.fail(ctx, cmdCtx, adapter.ErrWatchlistFetchFailed)
	}

	titles := c.lookupTitles(ctx, ids)
	entries := make([]adapter.WatchlistListEntry, len(ids))
	for i, id := range ids {
		entries[i] = adapter.WatchlistListEntry{AnimeID: id, Title: titles[i]}
	}
	return c.reply(ctx, cmdCtx, c.Deps().Formatter.WatchlistList(entries))
}
