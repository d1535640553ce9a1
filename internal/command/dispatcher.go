package command

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// NormalizeFunc: 명령어 타입과 파라미터를 기반으로 실행할 명령어 키와 최종 파라미터를 결정하는 함수 타입
type NormalizeFunc func(domain.CommandType, map[string]any) (string, map[string]any)

// NormalizeParams: 기본 정규화. action 은 소문자로 바꾸고 비어 있으면 list 로 채운다.
func NormalizeParams(cmdType domain.CommandType, params map[string]any) (string, map[string]any) {
	switch cmdType {
	case domain.CommandNotify, domain.CommandWatchlist:
		action := util.Normalize(stringParam(params, "action"))
		if action == "" {
			action = domain.ActionList
		}
		params["action"] = action
	case domain.CommandSeason:
		if season := stringParam(params, "season"); season != "" {
			params["season"] = util.Normalize(season)
		}
	}
	return cmdType.String(), params
}

type sequentialDispatcher struct {
	registry  *Registry
	normalize NormalizeFunc
	logger    *slog.Logger
}

// NewSequentialDispatcher: 이벤트를 순차적으로 처리하는 기본 Dispatcher 구현체를 생성합니다.
func NewSequentialDispatcher(registry *Registry, normalize NormalizeFunc, logger *slog.Logger) Dispatcher {
	if normalize == nil {
		normalize = NormalizeParams
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &sequentialDispatcher{registry: registry, normalize: normalize, logger: logger}
}

func (d *sequentialDispatcher) Publish(ctx context.Context, cmdCtx *domain.CommandContext, events ...Event) (int, error) {
	if d == nil || d.registry == nil || cmdCtx == nil {
		return 0, nil
	}

	executed := 0
	for _, event := range events {
		if event.Type == domain.CommandUnknown {
			continue
		}

		key, params := d.normalize(event.Type, cloneParams(event.Params))
		started := time.Now()
		if err := d.registry.Execute(ctx, cmdCtx, key, params); err != nil {
			return executed, err
		}
		d.logger.Debug("Command executed",
			slog.String("command", key),
			slog.String("user_id", cmdCtx.UserID),
			slog.Duration("elapsed", time.Since(started)),
		)
		executed++
	}
	return executed, nil
}

func cloneParams(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	return maps.Clone(src)
}
