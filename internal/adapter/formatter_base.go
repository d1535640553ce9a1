package adapter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// Response: 디스코드 인터랙션 응답 본문 (텍스트와 임베드)
type Response struct {
	Content string
	Embeds  []*discordgo.MessageEmbed
}

// IsEmpty: 본문과 임베드가 모두 없으면 true
func (r Response) IsEmpty() bool {
	return r.Content == "" && len(r.Embeds) == 0
}

// TextResponse: 임베드 없는 텍스트 응답
func TextResponse(content string) Response {
	return Response{Content: content}
}

// ResponseFormatter: 봇의 응답 메시지를 생성하는 포맷터 (디스코드 Embed 적용)
type ResponseFormatter struct {
	aiEnabled bool
}

// NewResponseFormatter: aiEnabled 는 도움말에 /anime find 를 노출할지 결정한다.
func NewResponseFormatter(aiEnabled bool) *ResponseFormatter {
	return &ResponseFormatter{aiEnabled: aiEnabled}
}

// AIEnabled: find 하위 명령 노출 여부
func (f *ResponseFormatter) AIEnabled() bool {
	return f != nil && f.aiEnabled
}

// FormatError: 에러 메시지를 사용자 친화적인 포맷으로 변환한다.
func (f *ResponseFormatter) FormatError(message string) Response {
	return TextResponse(ErrorMessage(message))
}

func newEmbed(title, url string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: util.TruncateString(title, constants.StringLimits.EmbedTitle),
		URL:   url,
		Color: color,
	}
}

func withThumbnail(embed *discordgo.MessageEmbed, imageURL string) *discordgo.MessageEmbed {
	if imageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: imageURL}
	}
	return embed
}

func withDescription(embed *discordgo.MessageEmbed, description string) *discordgo.MessageEmbed {
	embed.Description = util.TruncateString(description, constants.StringLimits.EmbedDescription)
	return embed
}

// field: 빈 값은 디스코드가 거부하므로 "Unknown" 으로 채운다.
func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	if util.TrimSpace(value) == "" {
		value = "Unknown"
	}
	return &discordgo.MessageEmbedField{
		Name:   util.TruncateString(name, constants.StringLimits.EmbedFieldName),
		Value:  util.TruncateString(value, constants.StringLimits.EmbedFieldValue),
		Inline: inline,
	}
}

// mediaFields: 검색/추천 임베드 공통 필드 (Romaji, Native, Format, Status, ID)
func mediaFields(media domain.Media) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		field("Romaji Title", media.Title.Romaji, true),
		field("Native Title", media.Title.Native, true),
		field("Format", media.Format, true),
		field("Status", string(media.Status), true),
		field("AniList ID", strconv.Itoa(media.ID), true),
	}
}

func percent(confidence float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(confidence*100)))
}

// statusEmoji: 시즌 목록에서 방영 상태를 한 글자로 표시한다.
func statusEmoji(status domain.MediaStatus) string {
	switch status {
	case domain.StatusReleasing:
		return "🟢"
	case domain.StatusFinished:
		return "✅"
	case domain.StatusNotYetReleased:
		return "🔜"
	case domain.StatusCancelled:
		return "❌"
	case domain.StatusHiatus:
		return "⏸️"
	default:
		return "❓"
	}
}
