package adapter

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// RootCommand: 모든 하위 명령이 속한 슬래시 명령 이름
const RootCommand = "anime"

// MessageAdapter: 슬래시 명령 인터랙션을 명령 타입과 파라미터로 변환한다.
type MessageAdapter struct {
	root string
}

// NewMessageAdapter: root 는 최상위 슬래시 명령 이름 ("anime")
func NewMessageAdapter(root string) *MessageAdapter {
	if util.TrimSpace(root) == "" {
		root = RootCommand
	}
	return &MessageAdapter{root: root}
}

// ParsedCommand: 하위 명령과 옵션 값을 평탄화한 결과
type ParsedCommand struct {
	Type       domain.CommandType
	Params     map[string]any
	RawMessage string
}

// ParseInteraction: /anime <sub> [options] 구조를 해석한다. 정수 옵션은 int, 문자열은 공백을 제거한 string 이 된다.
func (ma *MessageAdapter) ParseInteraction(data discordgo.ApplicationCommandInteractionData) *ParsedCommand {
	if !strings.EqualFold(data.Name, ma.root) || len(data.Options) == 0 {
		return ma.createUnknownCommand("/" + data.Name)
	}

	sub := data.Options[0]
	if sub == nil || sub.Type != discordgo.ApplicationCommandOptionSubCommand {
		return ma.createUnknownCommand("/" + data.Name)
	}

	cmdType := domain.CommandType(util.Normalize(sub.Name))
	if !cmdType.IsValid() {
		cmdType = domain.CommandUnknown
	}

	params := make(map[string]any, len(sub.Options))
	raw := []string{"/" + ma.root, sub.Name}
	for _, opt := range sub.Options {
		if opt == nil {
			continue
		}
		value, ok := optionValue(opt)
		if !ok {
			continue
		}
		params[opt.Name] = value
		raw = append(raw, fmt.Sprintf("%s:%v", opt.Name, value))
	}

	return &ParsedCommand{
		Type:       cmdType,
		Params:     params,
		RawMessage: strings.Join(raw, " "),
	}
}

func optionValue(opt *discordgo.ApplicationCommandInteractionDataOption) (any, bool) {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return int(opt.IntValue()), true
	case discordgo.ApplicationCommandOptionString:
		return util.TrimSpace(opt.StringValue()), true
	case discordgo.ApplicationCommandOptionBoolean:
		return opt.BoolValue(), true
	default:
		return nil, false
	}
}

func (ma *MessageAdapter) createUnknownCommand(raw string) *ParsedCommand {
	return &ParsedCommand{
		Type:       domain.CommandUnknown,
		Params:     map[string]any{},
		RawMessage: raw,
	}
}
