package domain

import "time"

// CommandContext: 슬래시 명령 한 건의 호출 정보
type CommandContext struct {
	GuildID   string
	ChannelID string
	UserID    string
	UserName  string
	// 지연 응답(deferred response) 수정에 필요한 인터랙션 식별자
	AppID            string
	InteractionToken string
	Timestamp        time.Time
}

// NewCommandContext: 상호작용 한 건의 발신 위치와 사용자
func NewCommandContext(guildID, channelID, userID, userName string) *CommandContext {
	return &CommandContext{
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		UserName:  userName,
		Timestamp: time.Now(),
	}
}

// WithInteraction: 인터랙션 응답 수정에 필요한 식별자를 설정한다.
func (c *CommandContext) WithInteraction(appID, token string) *CommandContext {
	c.AppID = appID
	c.InteractionToken = token
	return c
}
