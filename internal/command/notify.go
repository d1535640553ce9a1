package command

import (
	"context"
	"log/slog"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// NotifyCommand: 에피소드 방영 알림 관리 (add, cancel, list)
type NotifyCommand struct {
	BaseCommand
}

// NewNotifyCommand 는 동작을 수행한다.
func NewNotifyCommand(deps *Dependencies) *NotifyCommand {
	return &NotifyCommand{BaseCommand: NewBaseCommand(deps)}
}

// Name 는 동작을 수행한다.
func (c *NotifyCommand) Name() string {
	return string(domain.CommandNotify)
}

// Description 는 동작을 수행한다.
func (c *NotifyCommand) Description() string {
	return "Manage episode notifications"
}

// Execute 는 동작을 수행한다.
func (c *NotifyCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if err := c.EnsureBaseDeps(); err != nil {
		return err
	}

	if c.Deps().Notifications == nil {
		return c.fail(ctx, cmdCtx, adapter.ErrNotifyServiceDisabled)
	}

	action := stringParam(params, "action")
	if action == "" {
		action = domain.ActionList
	}
	animeID, _ := intParam(params, "id")

	switch action {
	case domain.ActionAdd, domain.ActionCancel:
		if animeID <= 0 {
			return c.fail(ctx, cmdCtx, adapter.ErrNeedAnimeIDForAction)
		}
		if action == domain.ActionAdd {
			return c.handleAdd(ctx, cmdCtx, animeID)
		}
		return c.handleCancel(ctx, cmdCtx, animeID)
	case domain.ActionList:
		return c.handleList(ctx, cmdCtx)
	default:
		c.Deps().Logger.Info("Invalid notify action received",
			slog.String("user_id", cmdCtx.UserID),
			slog.String("action", action),
		)
		return c.fail(ctx, cmdCtx, adapter.ErrUnknownNotifyAction)
	}
}

func (c *NotifyCommand) handleAdd(ctx context.Context, cmdCtx *domain.CommandContext, animeID int) error {
	c.Deps().Logger.Info("Notification add requested",
		slog.Int("anime_id", animeID),
		slog.String("channel_id", cmdCtx.ChannelID),
		slog.String("user_id", cmdCtx.UserID),
	)

	result := c.Deps().Notifications.AddNotification(ctx, animeID, cmdCtx.ChannelID, cmdCtx.UserID)
	return c.reply(ctx, cmdCtx, c.Deps().Formatter.NotificationAdded(result))
}

func (c *NotifyCommand) handleCancel(ctx context.Context, cmdCtx *domain.CommandContext, animeID int) error {
	removed := c.Deps().Notifications.RemoveUserNotification(ctx, animeID, cmdCtx.ChannelID, cmdCtx.UserID)

	title := ""
	if removed {
		title = c.animeTitle(ctx, animeID)
	}
	return c.reply(ctx, cmdCtx, c.Deps().Formatter.NotificationCancelled(animeID, title, removed))
}

func (c *NotifyCommand) handleList(ctx context.Context, cmdCtx *domain.CommandContext) error {
	entries := c.Deps().Notifications.GetUserNotifications(cmdCtx.UserID, "")

	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.AnimeID
	}
	titles := c.lookupTitles(ctx, ids)

	items := make([]adapter.NotificationListEntry, len(entries))
	for i, e := range entries {
		items[i] = adapter.NotificationListEntry{Entry: e, Title: titles[i]}
	}
	return c.reply(ctx, cmdCtx, c.Deps().Formatter.NotificationList(items))
}
