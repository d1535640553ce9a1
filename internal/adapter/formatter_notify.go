package adapter

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// NotificationListEntry: 알림 목록 한 줄 (제목은 조회 실패 시 비어 있을 수 있다)
type NotificationListEntry struct {
	Entry domain.NotificationEntry
	Title string
}

// NotificationAdded: 등록 실패는 결과 메시지를 그대로 텍스트로 돌려준다.
func (f *ResponseFormatter) NotificationAdded(result domain.NotificationResult) Response {
	if !result.Success {
		return f.FormatError(result.Message)
	}

	embed := withDescription(newEmbed(DefaultEmoji.Success+" Notification Set!", "", constants.EmbedColors.Success), result.Message)
	if result.AiringDate != nil {
		embed.Fields = []*discordgo.MessageEmbedField{
			field("Airing Date", util.FormatAirDate(*result.AiringDate)+" ("+util.FormatRelative(*result.AiringDate)+")", false),
		}
	}
	return Response{Embeds: []*discordgo.MessageEmbed{embed}}
}

// NotificationCancelled: removed 가 false 면 "없음" 안내를 만든다.
func (f *ResponseFormatter) NotificationCancelled(animeID int, title string, removed bool) Response {
	if !removed {
		return TextResponse(MsgNoActiveNotification)
	}
	if title == "" {
		title = fmt.Sprintf("Anime ID %d", animeID)
	}
	embed := withDescription(
		newEmbed(DefaultEmoji.Cancel+" Notification Cancelled", "", constants.EmbedColors.Warning),
		fmt.Sprintf("Notification canceled for **%s**", title),
	)
	return Response{Embeds: []*discordgo.MessageEmbed{embed}}
}

// NotificationList: 방영 시각 순으로 정렬된 목록을 받는다.
func (f *ResponseFormatter) NotificationList(entries []NotificationListEntry) Response {
	if len(entries) == 0 {
		return TextResponse(MsgNoNotifications)
	}

	var sb strings.Builder
	for _, item := range entries {
		title := item.Title
		if title == "" {
			title = fmt.Sprintf("Anime #%d", item.Entry.AnimeID)
		}
		airing := item.Entry.AiringTime()
		fmt.Fprintf(&sb, "• **%s** (ID: %d)\n  Episode %d - %s (%s)\n\n",
			title, item.Entry.AnimeID, item.Entry.Episode, util.FormatAirDate(airing), util.FormatRelative(airing))
	}

	embed := withDescription(
		newEmbed(DefaultEmoji.Alarm+" Your Anime Notifications", "", constants.EmbedColors.Primary),
		strings.TrimRight(sb.String(), "\n"),
	)
	return Response{Embeds: []*discordgo.MessageEmbed{embed}}
}
