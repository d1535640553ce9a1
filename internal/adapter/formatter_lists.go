package adapter

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// ReleasingList: 방영 중 작품 목록. 각 줄에 다음 에피소드 방영 일시를 붙인다.
func (f *ResponseFormatter) ReleasingList(page *domain.MediaPage) Response {
	if page == nil || len(page.Media) == 0 {
		return TextResponse(MsgNoReleasingAnime)
	}

	lines := make([]string, 0, len(page.Media))
	for _, m := range page.Media {
		info := " - No schedule"
		if next := m.NextAiringEpisode; next != nil {
			info = fmt.Sprintf(" - Ep %d on %s", next.Episode, util.FormatCompactDateTime(next.AiringTime()))
		}
		lines = append(lines, fmt.Sprintf("**%s** (ID: %d)%s", m.DisplayTitle(), m.ID, info))
	}

	embed := withDescription(newEmbed("Currently Releasing Anime", "", constants.EmbedColors.Primary), strings.Join(lines, "\n"))
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Showing %d of %d releasing anime", len(page.Media), max(page.PageInfo.Total, len(page.Media))),
	}
	return Response{Embeds: []*discordgo.MessageEmbed{embed}}
}

// SeasonList: 시즌 작품을 임베드당 20개씩 나눈다. 첫 임베드에만 footer 를 단다.
// 메시지당 임베드 제한(10개)을 넘으면 여러 Response 로 나뉜다.
func (f *ResponseFormatter) SeasonList(media []domain.Media, season string, year int) []Response {
	label := util.TitleCase(season)
	if len(media) == 0 {
		return []Response{TextResponse(fmt.Sprintf(MsgNoSeasonAnime, label, year))}
	}

	perEmbed := constants.PaginationConfig.SeasonPerEmbed
	total := (len(media) + perEmbed - 1) / perEmbed
	embeds := make([]*discordgo.MessageEmbed, 0, total)

	for part := range total {
		start := part * perEmbed
		end := min(start+perEmbed, len(media))

		var sb strings.Builder
		for i, m := range media[start:end] {
			fmt.Fprintf(&sb, "%d. **%s** %s (ID: %d)\n", start+i+1, m.DisplayTitle(), statusEmoji(m.Status), m.ID)
		}

		title := fmt.Sprintf("%s %d Anime", label, year)
		if total > 1 {
			title += fmt.Sprintf(" (Part %d/%d)", part+1, total)
		}
		embed := withDescription(newEmbed(title, "", constants.EmbedColors.Primary), strings.TrimRight(sb.String(), "\n"))
		if part == 0 {
			embed.Footer = &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Showing all %d anime from %s %d", len(media), label, year),
			}
		}
		embeds = append(embeds, embed)
	}

	return chunkEmbeds(embeds, constants.PaginationConfig.MaxEmbedsPerMsg)
}

func chunkEmbeds(embeds []*discordgo.MessageEmbed, size int) []Response {
	responses := make([]Response, 0, (len(embeds)+size-1)/size)
	for start := 0; start < len(embeds); start += size {
		end := min(start+size, len(embeds))
		responses = append(responses, Response{Embeds: embeds[start:end]})
	}
	return responses
}
