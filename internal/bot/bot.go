package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/command"
	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	appErrors "github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// Bot: 디스코드 세션, 명령 레지스트리, 알림 스케줄러 연결을 관리하는 메인 구조체
type Bot struct {
	config          *config.Config
	logger          *slog.Logger
	session         Session
	messageAdapter  *adapter.MessageAdapter
	formatter       *adapter.ResponseFormatter
	notifications   NotificationScheduler
	commandRegistry *command.Registry
	dispatcher      command.Dispatcher
	attachMu        sync.Mutex
	attached        bool
}

// NewBot: 필요한 의존성(Dependencies)을 주입받아 새로운 Bot 인스턴스를 생성하고 초기화한다.
func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, fmt.Errorf("bot dependencies are required")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config dependency is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger dependency is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("discord session dependency is required")
	}
	if deps.Formatter == nil {
		return nil, fmt.Errorf("response formatter dependency is required")
	}
	if deps.AniList == nil {
		return nil, fmt.Errorf("anilist dependency is required")
	}
	if deps.MessageAdapter == nil {
		deps.MessageAdapter = adapter.NewMessageAdapter(adapter.RootCommand)
	}

	bot := &Bot{
		config:         deps.Config,
		logger:         deps.Logger,
		session:        deps.Session,
		messageAdapter: deps.MessageAdapter,
		formatter:      deps.Formatter,
		notifications:  deps.Notifications,
	}

	bot.initializeCommands(deps)

	return bot, nil
}

func (b *Bot) initializeCommands(deps *Dependencies) {
	cmdDeps := &command.Dependencies{
		AniList:       deps.AniList,
		Notifications: deps.Notifications,
		Watchlist:     deps.Watchlist,
		Finder:        deps.Finder,
		Formatter:     b.formatter,
		SendResponse:  b.sendResponse,
		SendError:     b.sendError,
		Logger:        b.logger,
	}

	b.commandRegistry = command.NewDefaultRegistry(cmdDeps)
	b.dispatcher = command.NewSequentialDispatcher(b.commandRegistry, command.NormalizeParams, b.logger)
	cmdDeps.Dispatcher = b.dispatcher

	b.logger.Info("Commands initialized",
		slog.Int("count", b.commandRegistry.Count()),
		slog.Bool("ai_enabled", b.formatter.AIEnabled()),
	)
}

// Run: 세션 핸들러를 등록하고 게이트웨이에 연결한다. ctx 가 끝날 때까지 대기한다.
func (b *Bot) Run(ctx context.Context, dg *discordgo.Session) error {
	b.logger.Info("Starting AniList Discord Bot...")

	dg.Identify.Intents = discordgo.IntentsGuilds
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		appID := r.User.ID
		if r.Application != nil && r.Application.ID != "" {
			appID = r.Application.ID
		}
		b.logger.Info("Discord session ready",
			slog.String("user", r.User.Username),
			slog.Int("guilds", len(r.Guilds)),
		)
		b.HandleReady(ctx, appID, s.State)
	})
	dg.AddHandler(func(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
		b.HandleInteraction(ctx, ic.Interaction)
	})

	if err := dg.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	b.logger.Info("Bot started successfully")

	<-ctx.Done()
	b.logger.Info("Context canceled, closing discord session...")
	if err := dg.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

// HandleReady: 슬래시 명령을 등록하고 알림 스케줄러를 세션에 연결한다. 연결은 성공할 때까지 Ready 마다 시도한다.
func (b *Bot) HandleReady(ctx context.Context, appID string, state *discordgo.State) {
	if err := b.RegisterCommands(ctx, appID); err != nil {
		b.logger.Error("Failed to register slash commands", slog.Any("error", err))
	}

	if b.notifications == nil {
		return
	}
	b.attachMu.Lock()
	defer b.attachMu.Unlock()
	if b.attached {
		return
	}

	loadCtx, cancel := context.WithTimeout(ctx, constants.NotificationConfig.LoadTimeout)
	defer cancel()

	loaded, err := b.notifications.Attach(loadCtx, NewDiscordMessenger(b.session, state))
	if err != nil {
		// 다음 Ready 에서 다시 시도한다.
		b.logger.Error("Failed to load notifications", slog.Any("error", err))
		return
	}
	b.attached = true
	b.logger.Info("Notification scheduler attached", slog.Int("loaded", loaded))
}

// RegisterCommands: 길드 ID 가 설정되어 있으면 길드 명령, 아니면 전역 명령으로 덮어쓴다.
func (b *Bot) RegisterCommands(ctx context.Context, appID string) error {
	defs := ApplicationCommands(b.formatter.AIEnabled())
	created, err := b.session.ApplicationCommandBulkOverwrite(appID, b.config.Discord.GuildID, defs, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}

	scope := "global"
	if b.config.Discord.GuildID != "" {
		scope = "guild"
	}
	b.logger.Info("Slash commands registered",
		slog.String("scope", scope),
		slog.Int("count", len(created)),
	)
	return nil
}

// HandleInteraction: 슬래시 명령 인터랙션을 지연 응답한 뒤 명령을 실행하고 응답을 수정한다.
func (b *Bot) HandleInteraction(ctx context.Context, interaction *discordgo.Interaction) {
	if interaction == nil || interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	commandType := "unknown"
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic in HandleInteraction",
				slog.Any("panic", r),
				slog.String("command", commandType),
			)
		}
	}()

	parsed := b.messageAdapter.ParseInteraction(interaction.ApplicationCommandData())
	commandType = parsed.Type.String()

	user := interactionUser(interaction)
	cmdCtx := domain.NewCommandContext(interaction.GuildID, interaction.ChannelID, user.ID, user.Username).
		WithInteraction(interaction.AppID, interaction.Token)

	if err := b.deferResponse(ctx, interaction, isEphemeral(parsed.Type)); err != nil {
		b.logger.Error("Failed to acknowledge interaction",
			slog.String("type", commandType),
			slog.Any("error", err),
		)
		return
	}

	if parsed.Type == domain.CommandUnknown {
		b.logger.Warn("Unknown command", slog.String("raw", parsed.RawMessage))
		if err := b.sendError(ctx, cmdCtx, adapter.ErrorMessage(adapter.ErrUnknownCommand)); err != nil {
			b.logger.Warn("Failed to send unknown command message", slog.Any("error", err))
		}
		return
	}

	b.logger.Info("Command received",
		slog.String("raw", parsed.RawMessage),
		slog.String("type", commandType),
		slog.String("user_id", cmdCtx.UserID),
		slog.String("user_name", cmdCtx.UserName),
		slog.String("guild_id", cmdCtx.GuildID),
		slog.String("channel_id", cmdCtx.ChannelID),
	)

	execCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout.BotCommand)
	defer cancel()

	if _, err := b.dispatcher.Publish(execCtx, cmdCtx, command.Event{Type: parsed.Type, Params: parsed.Params}); err != nil {
		b.logger.Error("Failed to execute command", slog.String("type", commandType), slog.Any("error", err))
		if sendErr := b.sendError(ctx, cmdCtx, adapter.ErrorMessage(b.getErrorMessage(err, commandType))); sendErr != nil {
			b.logger.Warn("Failed to send error message", slog.Any("error", sendErr))
		}
	}
}

func (b *Bot) deferResponse(ctx context.Context, interaction *discordgo.Interaction, ephemeral bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return b.session.InteractionRespond(interaction, resp, discordgo.WithContext(ctx))
}

// sendResponse: 첫 응답으로 지연 응답을 수정하고 나머지는 후속 메시지로 보낸다.
func (b *Bot) sendResponse(ctx context.Context, cmdCtx *domain.CommandContext, responses ...adapter.Response) error {
	if len(responses) == 0 {
		return nil
	}

	interaction := &discordgo.Interaction{AppID: cmdCtx.AppID, Token: cmdCtx.InteractionToken}

	first := responses[0]
	content := first.Content
	embeds := first.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	if _, err := b.session.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx)); err != nil {
		serviceErr := appErrors.NewServiceError("discord", "edit_response", err)
		return fmt.Errorf("failed to edit interaction response: %w", serviceErr)
	}

	for _, resp := range responses[1:] {
		if resp.IsEmpty() {
			continue
		}
		if _, err := b.session.FollowupMessageCreate(interaction, true, &discordgo.WebhookParams{
			Content: resp.Content,
			Embeds:  resp.Embeds,
		}, discordgo.WithContext(ctx)); err != nil {
			serviceErr := appErrors.NewServiceError("discord", "followup", err)
			return fmt.Errorf("failed to send follow-up message: %w", serviceErr)
		}
	}
	return nil
}

func (b *Bot) sendError(ctx context.Context, cmdCtx *domain.CommandContext, message string) error {
	if err := b.sendResponse(ctx, cmdCtx, adapter.TextResponse(message)); err != nil {
		return fmt.Errorf("failed to send error message: %w", err)
	}
	return nil
}

func (b *Bot) getErrorMessage(err error, commandType string) string {
	if err == nil {
		return ""
	}

	var serviceErr *appErrors.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Service == "discord" {
		return adapter.ErrDiscordRequestFailed
	}

	var apiErr *appErrors.APIError
	if errors.As(err, &apiErr) {
		return adapter.ErrExternalAPICallFailed
	}

	var circuitErr *appErrors.CircuitOpenError
	if errors.As(err, &circuitErr) {
		return adapter.ErrExternalAPICallFailed
	}

	var cacheErr *appErrors.CacheError
	if errors.As(err, &cacheErr) {
		return adapter.ErrStorageUnavailable
	}

	var storeErr *appErrors.StoreError
	if errors.As(err, &storeErr) {
		return adapter.ErrStorageUnavailable
	}

	var validationErr *appErrors.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	return fmt.Sprintf(adapter.ErrCommandProcessingFailed, commandType)
}

// interactionUser: 길드에서는 Member.User, DM 에서는 User 에 호출자가 담긴다.
func interactionUser(interaction *discordgo.Interaction) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	if interaction.User != nil {
		return interaction.User
	}
	return &discordgo.User{ID: "unknown", Username: "unknown"}
}
