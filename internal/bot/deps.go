package bot

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/command"
	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/service/notification"
)

// Session: 봇이 사용하는 discordgo.Session 메서드 부분집합
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// NotificationScheduler: 명령 계층의 알림 관리 기능에 세션 연결(Attach)을 더한 것
type NotificationScheduler interface {
	command.NotificationManager
	Attach(ctx context.Context, messenger notification.Messenger) (int, error)
}

// Dependencies: NewBot 에 주입되는 의존성. Notifications 는 선택이다.
type Dependencies struct {
	Config         *config.Config
	Logger         *slog.Logger
	Session        Session
	MessageAdapter *adapter.MessageAdapter
	Formatter      *adapter.ResponseFormatter
	AniList        command.AnimeCatalog
	Notifications  NotificationScheduler
	Watchlist      command.WatchlistManager
	Finder         command.AnimeFinder
}
