package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// ErrUnknownCommand: 등록되지 않은 명령어를 호출했을 때 발생하는 오류
var ErrUnknownCommand = errors.New("unknown command")

// Registry: /anime 하위 명령 핸들러를 등록하고 이름 기반으로 조회/실행하는 레지스트리
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Command
}

// NewRegistry: 새로운 명령어 레지스트리 인스턴스를 생성합니다.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Command),
	}
}

// Register: 핸들러를 등록한다. 이름은 정규화되며 같은 이름은 나중 등록이 덮어쓴다.
func (r *Registry) Register(handlers ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		r.handlers[util.Normalize(handler.Name())] = handler
	}
}

// Execute: 주어진 키(명령어 이름)에 해당하는 핸들러를 찾아 명령을 실행한다. (스레드 안전)
func (r *Registry) Execute(ctx context.Context, cmdCtx *domain.CommandContext, key string, params map[string]any) error {
	if r == nil {
		return fmt.Errorf("command registry is nil")
	}

	handler := r.Get(key)
	if handler == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, key)
	}

	if err := handler.Execute(ctx, cmdCtx, params); err != nil {
		return fmt.Errorf("failed to execute command %s: %w", key, err)
	}
	return nil
}

// Get: 정규화된 이름으로 핸들러를 찾는다. 없으면 nil.
func (r *Registry) Get(key string) Command {
	if r == nil || key == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[util.Normalize(key)]
}

// Names: 등록된 명령 이름 (정렬됨)
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Count: 현재 등록된 명령어의 총 개수를 반환합니다.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// NewDefaultRegistry: /anime 하위 명령 전체를 등록한 레지스트리를 만든다.
func NewDefaultRegistry(deps *Dependencies) *Registry {
	registry := NewRegistry()
	registry.Register(
		NewHelpCommand(deps),
		NewSearchCommand(deps),
		NewNextCommand(deps),
		NewSeasonCommand(deps),
		NewReleaseCommand(deps),
		NewFindCommand(deps),
		NewNotifyCommand(deps),
		NewWatchlistCommand(deps),
	)
	return registry
}
