package command

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// FindCommand: 줄거리/분위기 설명으로 AI 추천 작품을 찾는다.
type FindCommand struct {
	BaseCommand
}

// NewFindCommand 는 동작을 수행한다.
func NewFindCommand(deps *Dependencies) *FindCommand {
	return &FindCommand{BaseCommand: NewBaseCommand(deps)}
}

// Name 는 동작을 수행한다.
func (c *FindCommand) Name() string {
	return string(domain.CommandFind)
}

// Description 는 동작을 수행한다.
func (c *FindCommand) Description() string {
	return "Find anime by description using AI"
}

// Execute 는 동작을 수행한다.
func (c *FindCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	if err := c.EnsureBaseDeps(); err != nil {
		return err
	}

	finder := c.Deps().Finder
	if finder == nil || !finder.Enabled() {
		return c.fail(ctx, cmdCtx, adapter.ErrFindDisabled)
	}

	description := stringParam(params, "prompt")
	if description == "" {
		return c.fail(ctx, cmdCtx, adapter.ErrNeedDescription)
	}
	if limit := constants.AIInputLimits.MaxQueryLength; utf8.RuneCountInString(description) > limit {
		return c.fail(ctx, cmdCtx, fmt.Sprintf(adapter.ErrDescriptionTooLong, limit))
	}

	matches, err := finder.Find(ctx, description)
	if err != nil {
		if errors.IsValidationError(err) {
			return c.fail(ctx, cmdCtx, adapter.ErrNeedDescription)
		}
		c.Deps().Logger.Error("AI find failed",
			slog.String("provider", finder.Provider()),
			slog.Any("error", err),
		)
		return c.fail(ctx, cmdCtx, adapter.ErrFindFailed)
	}

	return c.reply(ctx, cmdCtx, c.Deps().Formatter.FindResults(description, finder.Provider(), matches))
}
