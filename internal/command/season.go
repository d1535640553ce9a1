package command

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

var validSeasons = []string{"winter", "spring", "summer", "fall"}

// SeasonCommand: 시즌별 작품 목록. season 이 없으면 현재 시즌, year 가 없으면 올해를 사용한다.
type SeasonCommand struct {
	BaseCommand
}

// NewSeasonCommand 는 동작을 수행한다.
func NewSeasonCommand(deps *Dependencies) *SeasonCommand {
	return &SeasonCommand{BaseCommand: NewBaseCommand(deps)}
}

// Name 는 동작을 수행한다.
func (c *SeasonCommand) Name() string {
	return string(domain.CommandSeason)
}

// Description 는 동작을 수행한다.
func (c *SeasonCommand) Description() string {
	return "Get all anime from a specific season and year"
}

// Execute 는 동작을 수행한다.
func (c *SeasonCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if err := c.ensureDeps(); err != nil {
		return err
	}

	season, year := c.resolveSeason(params)
	if !slices.Contains(validSeasons, season) {
		return c.fail(ctx, cmdCtx, adapter.ErrInvalidSeason)
	}

	page, err := c.Deps().AniList.Seasonal(ctx, season, year, 1, constants.PaginationConfig.SeasonPerPage)
	if err != nil {
		c.Deps().Logger.Error("Failed to fetch seasonal anime",
			slog.String("season", season),
			slog.Int("year", year),
			slog.Any("error", err),
		)
		return c.fail(ctx, cmdCtx, adapter.ErrSeasonFetchFailed)
	}

	return c.Deps().SendResponse(ctx, cmdCtx, c.Deps().Formatter.SeasonList(page.Media, season, year)...)
}

func (c *SeasonCommand) resolveSeason(params map[string]any) (string, int) {
	now := c.Deps().Now()
	season := util.Normalize(stringParam(params, "season"))
	year, hasYear := intParam(params, "year")

	if season == "" {
		current, currentYear := util.CurrentSeason(now)
		season = strings.ToLower(current)
		if !hasYear {
			year, hasYear = currentYear, true
		}
	}
	if !hasYear || year <= 0 {
		year = now.Year()
	}
	return season, year
}

func (c *SeasonCommand) ensureDeps() error {
	if err := c.EnsureBaseDeps(); err != nil {
		return err
	}
	if c.Deps().AniList == nil {
		return fmt.Errorf("season command services not configured")
	}
	return nil
}
