package command

import (
	"context"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// HelpCommand: /anime help
type HelpCommand struct {
	BaseCommand
}

// NewHelpCommand 는 동작을 수행한다.
func NewHelpCommand(deps *Dependencies) *HelpCommand {
	return &HelpCommand{BaseCommand: NewBaseCommand(deps)}
}

// Name 는 동작을 수행한다.
func (c *HelpCommand) Name() string {
	return string(domain.CommandHelp)
}

// Description 는 동작을 수행한다.
func (c *HelpCommand) Description() string {
	return "Show help for all /anime commands"
}

// Execute 는 동작을 수행한다.
func (c *HelpCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	if err := c.EnsureBaseDeps(); err != nil {
		return err
	}
	return c.reply(ctx, cmdCtx, c.Deps().Formatter.FormatHelp())
}
