package adapter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// SearchResults: 첫 결과는 임베드로, 나머지(최대 4개)는 본문 목록으로 보여준다.
func (f *ResponseFormatter) SearchResults(query string, page *domain.MediaPage) Response {
	if page == nil || len(page.Media) == 0 {
		return f.FormatError(fmt.Sprintf(MsgNoAnimeForQuery, query))
	}

	total := max(page.PageInfo.Total, len(page.Media))
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s) for \"%s\"", total, query)
	if len(page.Media) > 1 {
		sb.WriteString("\n\nShowing top result. Other matches:")
		for _, m := range page.Media[1:min(len(page.Media), 5)] {
			fmt.Fprintf(&sb, "\n• %s", m.DisplayTitle())
		}
	}

	top := page.Media[0]
	embed := withThumbnail(newEmbed(top.DisplayTitle(), top.SiteURL, constants.EmbedColors.Primary), top.CoverImage.Large)
	embed.Fields = mediaFields(top)

	return Response{
		Content: sb.String(),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}
}

// NextEpisode: 다음 에피소드 정보. 종영/취소 작품은 총 에피소드 수를 보여준다.
func (f *ResponseFormatter) NextEpisode(media *domain.Media, now time.Time) Response {
	if media == nil {
		return f.FormatError(ErrFetchAnimeFailed)
	}

	embed := withThumbnail(newEmbed(media.DisplayTitle(), media.SiteURL, constants.EmbedColors.Primary), media.CoverImage.Large)
	status := string(media.Status)

	switch next := media.NextAiringEpisode; {
	case media.Status.PrecludesAiring():
		episodes := "Unknown"
		if media.Episodes != nil {
			episodes = strconv.Itoa(*media.Episodes)
		}
		withDescription(embed, "This anime has finished airing.")
		embed.Fields = []*discordgo.MessageEmbedField{
			field("Status", status, true),
			field("Format", media.Format, true),
			field("Total Episodes", episodes, true),
		}
	case next != nil:
		airing := next.AiringTime()
		countdown := util.FormatCountdown(int64(airing.Sub(now).Seconds()))
		withDescription(embed, fmt.Sprintf("Next episode airs in %s (%s)", countdown, util.FormatAirDate(airing)))
		embed.Fields = []*discordgo.MessageEmbedField{
			field("Status", status, true),
			field("Format", media.Format, true),
			field("Next Episode", strconv.Itoa(next.Episode), true),
			field("Air Date", util.FormatAirDate(airing)+" ("+util.FormatRelative(airing)+")", false),
		}
	default:
		withDescription(embed, "No upcoming episodes scheduled.")
		embed.Fields = []*discordgo.MessageEmbedField{
			field("Status", status, true),
			field("Format", media.Format, true),
		}
	}

	return Response{Embeds: []*discordgo.MessageEmbed{embed}}
}

// FindResults: 가장 신뢰도가 높은 추천을 임베드로, 다음 두 개를 본문으로 보여준다.
func (f *ResponseFormatter) FindResults(description, provider string, matches []domain.AnimeMatch) Response {
	if len(matches) == 0 {
		return f.FormatError(fmt.Sprintf(MsgNoFindMatch, description))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s **AI Found Anime Based on:** \"%s\"\n\n", DefaultEmoji.Robot, description)
	if len(matches) > 1 {
		sb.WriteString("**Other possible matches:**")
		for i, m := range matches[1:min(len(matches), 3)] {
			fmt.Fprintf(&sb, "\n%d. **%s** (%s match)", i+2, m.Anime.DisplayTitle(), percent(m.Confidence))
		}
	}

	best := matches[0]
	embed := newEmbed(DefaultEmoji.Target+" "+best.Anime.DisplayTitle(), best.Anime.SiteURL, constants.EmbedColors.Success)
	withThumbnail(embed, best.Anime.CoverImage.Large)
	withDescription(embed, best.Reason)
	embed.Fields = append(mediaFields(best.Anime), field("AI Confidence", percent(best.Confidence), true))
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Powered by " + providerName(provider) + " + AniList"}

	return Response{
		Content: strings.TrimRight(sb.String(), "\n"),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}
}

func providerName(provider string) string {
	switch util.Normalize(provider) {
	case "openai":
		return "OpenAI"
	case "":
		return "AI"
	default:
		return util.TitleCase(provider)
	}
}
