package adapter

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
)

// WatchlistListEntry 는 관심 목록 한 줄이다.
type WatchlistListEntry struct {
	AnimeID int
	Title   string
}

// WatchlistChanged: 추가/제거 결과. 성공 시 제목을 포함한 확인 메시지를 만든다.
func (f *ResponseFormatter) WatchlistChanged(action string, animeID int, title string, success bool, message string) Response {
	if !success {
		return f.FormatError(message)
	}
	if title == "" {
		title = fmt.Sprintf("Anime ID %d", animeID)
	}

	verb := "Added **%s** (ID: %d) to your watchlist."
	if action == "remove" {
		verb = "Removed **%s** (ID: %d) from your watchlist."
	}
	return TextResponse(SuccessMessage(fmt.Sprintf(verb, title, animeID)))
}

// WatchlistList: 관심 목록을 임베드 목록으로 만든다. 비어 있으면 안내 문구.
func (f *ResponseFormatter) WatchlistList(entries []WatchlistListEntry) Response {
	if len(entries) == 0 {
		return TextResponse(EmptyMessage(DefaultEmoji.List, MsgWatchlistEmpty))
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Title == "" {
			lines = append(lines, fmt.Sprintf("• AniList ID: %d", e.AnimeID))
			continue
		}
		lines = append(lines, fmt.Sprintf("• **%s** (ID: %d)", e.Title, e.AnimeID))
	}

	embed := withDescription(newEmbed("Your Anime Watchlist", "", constants.EmbedColors.Primary), strings.Join(lines, "\n"))
	return Response{Embeds: []*discordgo.MessageEmbed{embed}}
}
