package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	appErrors "github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// DiscordMessenger: notification.Messenger 구현. 캐시된 길드 상태를 먼저 보고 없으면 REST 로 채널을 조회한다.
type DiscordMessenger struct {
	session Session
	state   *discordgo.State
}

// NewDiscordMessenger: state 는 nil 이어도 된다. 그때는 채널 확인을 REST 로 한다.
func NewDiscordMessenger(session Session, state *discordgo.State) *DiscordMessenger {
	return &DiscordMessenger{session: session, state: state}
}

// ChannelAvailable: 봇이 볼 수 있는 텍스트 채널인지 확인한다.
func (m *DiscordMessenger) ChannelAvailable(ctx context.Context, channelID string) bool {
	if channelID == "" {
		return false
	}
	if m.state != nil {
		if ch, err := m.state.Channel(channelID); err == nil && ch != nil {
			return isTextChannel(ch)
		}
	}

	ch, err := m.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil || ch == nil {
		return false
	}
	return isTextChannel(ch)
}

// SendMessage: 채널에 일반 텍스트 메시지를 보낸다.
func (m *DiscordMessenger) SendMessage(ctx context.Context, channelID, content string) error {
	if _, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		serviceErr := appErrors.NewServiceError("discord", "send_message", err)
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, serviceErr)
	}
	return nil
}

func isTextChannel(ch *discordgo.Channel) bool {
	switch ch.Type {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGroupDM,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeGuildNewsThread:
		return true
	default:
		return false
	}
}
