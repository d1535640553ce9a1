package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/adapter"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/service/watchlist"
)

// Command: 봇 명령어를 처리하는 인터페이스 정의 (이름, 설명, 실행 로직)
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error
}

// Event: 명령어 실행 이벤트 정보 (타입 및 파라미터 포함)
type Event struct {
	Type   domain.CommandType
	Params map[string]any
}

// Dispatcher: 명령어 이벤트를 발행하여 적절한 처리기로 전달하는 인터페이스
type Dispatcher interface {
	Publish(ctx context.Context, cmdCtx *domain.CommandContext, events ...Event) (int, error)
}

// AnimeCatalog: AniList 조회 (anilist.Service 가 구현한다)
type AnimeCatalog interface {
	Search(ctx context.Context, query string) (*domain.MediaPage, error)
	GetAnimeByID(ctx context.Context, id int) (*domain.Media, error)
	Seasonal(ctx context.Context, season string, year, page, perPage int) (*domain.MediaPage, error)
	Releasing(ctx context.Context, page, perPage int) (*domain.MediaPage, error)
}

// NotificationManager: 방영 알림 등록/취소/조회 (notification.Service 가 구현한다)
type NotificationManager interface {
	AddNotification(ctx context.Context, animeID int, channelID, userID string) domain.NotificationResult
	RemoveUserNotification(ctx context.Context, animeID int, channelID, userID string) bool
	GetUserNotifications(userID, channelID string) []domain.NotificationEntry
}

// WatchlistManager: 관심 목록 (watchlist.Service 가 구현한다)
type WatchlistManager interface {
	Add(ctx context.Context, userID string, animeID int) watchlist.Result
	Remove(ctx context.Context, userID string, animeID int) watchlist.Result
	List(ctx context.Context, userID string) ([]int, error)
}

// AnimeFinder: 설명 기반 AI 검색 (ai.Finder 가 구현한다)
type AnimeFinder interface {
	Enabled() bool
	Provider() string
	Find(ctx context.Context, description string) ([]domain.AnimeMatch, error)
}

// Dependencies: 명령어 실행에 필요한 외부 서비스(AniList, 알림, 관심 목록, AI) 및 응답 콜백 모음
type Dependencies struct {
	AniList       AnimeCatalog
	Notifications NotificationManager
	Watchlist     WatchlistManager
	Finder        AnimeFinder
	Formatter     *adapter.ResponseFormatter
	// SendResponse: 첫 응답은 지연 응답 수정, 나머지는 후속 메시지로 전송된다.
	SendResponse func(ctx context.Context, cmdCtx *domain.CommandContext, responses ...adapter.Response) error
	SendError    func(ctx context.Context, cmdCtx *domain.CommandContext, message string) error
	Dispatcher   Dispatcher
	Logger       *slog.Logger
	Now          func() time.Time
}
