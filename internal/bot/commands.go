package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

func minValue(v float64) *float64 { return &v }

// ApplicationCommands: /anime 슬래시 명령 정의. find 는 AI 제공자가 설정된 경우에만 노출된다.
func ApplicationCommands(aiEnabled bool) []*discordgo.ApplicationCommand {
	subcommands := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        string(domain.CommandSearch),
			Description: "Search for anime by title",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Anime title or AniList ID",
				Required:    true,
			}},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        string(domain.CommandNext),
			Description: "Get next episode information for an anime",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "id",
				Description: "AniList ID of the anime",
				Required:    true,
				MinValue:    minValue(1),
			}},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        string(domain.CommandNotify),
			Description: "Manage episode notifications",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "Action to perform (shows your notifications if omitted)",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Add notification", Value: domain.ActionAdd},
						{Name: "Cancel notification", Value: domain.ActionCancel},
						{Name: "List notifications", Value: domain.ActionList},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "AniList ID of the anime (required for add/cancel)",
					MinValue:    minValue(1),
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        string(domain.CommandWatchlist),
			Description: "Manage your anime watchlist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "Action to perform (shows your watchlist if omitted)",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Add to watchlist", Value: domain.ActionAdd},
						{Name: "Remove from watchlist", Value: domain.ActionRemove},
						{Name: "Show watchlist", Value: domain.ActionList},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "AniList ID of the anime (required for add/remove)",
					MinValue:    minValue(1),
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        string(domain.CommandRelease),
			Description: "Show all currently releasing anime",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page number",
					MinValue:    minValue(1),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "perpage",
					Description: "Results per page",
					MinValue:    minValue(float64(constants.CommandConfig.MinReleasePerPage)),
					MaxValue:    float64(constants.CommandConfig.MaxReleasePerPage),
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        string(domain.CommandSeason),
			Description: "Get all anime from a specific season and year",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "season",
					Description: "Season (defaults to the current season)",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Winter", Value: "winter"},
						{Name: "Spring", Value: "spring"},
						{Name: "Summer", Value: "summer"},
						{Name: "Fall", Value: "fall"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "year",
					Description: "Year (defaults to the current year)",
					MinValue:    minValue(1940),
				},
			},
		},
	}

	if aiEnabled {
		subcommands = append(subcommands, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        string(domain.CommandFind),
			Description: "Find anime by description using AI",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "prompt",
				Description: "Describe the anime you are looking for",
				Required:    true,
				MaxLength:   constants.AIInputLimits.MaxQueryLength,
			}},
		})
	}

	subcommands = append(subcommands, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        string(domain.CommandHelp),
		Description: "Show help for all /anime commands",
	})

	return []*discordgo.ApplicationCommand{{
		Name:        adapter.RootCommand,
		Description: "Anime information from AniList",
		Options:     subcommands,
	}}
}

// isEphemeral: 개인 목록/알림 명령은 요청한 사용자에게만 보인다.
func isEphemeral(cmdType domain.CommandType) bool {
	return cmdType == domain.CommandNotify || cmdType == domain.CommandWatchlist
}
