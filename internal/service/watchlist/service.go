package watchlist

import (
	"context"
	"log/slog"
	"slices"
)

// 사용자 노출 메시지
const (
	MsgAdded         = "Anime added to your watchlist."
	MsgAlreadyListed = "Anime already in your watchlist."
	MsgRemoved       = "Anime removed from your watchlist."
	MsgNotListed     = "Anime not found in your watchlist."
	MsgAddFailed     = "Failed to add anime to watchlist."
	MsgRemoveFailed  = "Failed to remove anime from watchlist."
)

// Result: 관심 목록 변경 결과
type Result struct {
	Success bool
	Message string
}

// Service 는 관심 목록 서비스다.
type Service struct {
	store  SetStore
	logger *slog.Logger
}

// NewService: st 위에 사용자 메시지 결과를 돌려주는 관심 목록 서비스를 만든다.
func NewService(st SetStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// Add: 이미 있으면 실패 결과를 돌려준다. 저장소 오류는 메시지로 변환된다.
func (s *Service) Add(ctx context.Context, userID string, animeID int) Result {
	exists, err := s.store.IsMember(ctx, userID, animeID)
	if err != nil {
		s.logger.Error("Failed to check watchlist",
			slog.String("user_id", userID),
			slog.Int("anime_id", animeID),
			slog.Any("error", err),
		)
		return Result{Message: MsgAddFailed}
	}
	if exists {
		return Result{Message: MsgAlreadyListed}
	}

	if err := s.store.Add(ctx, userID, animeID); err != nil {
		s.logger.Error("Failed to add to watchlist",
			slog.String("user_id", userID),
			slog.Int("anime_id", animeID),
			slog.Any("error", err),
		)
		return Result{Message: MsgAddFailed}
	}

	s.logger.Info("Watchlist entry added",
		slog.String("user_id", userID),
		slog.Int("anime_id", animeID),
	)
	return Result{Success: true, Message: MsgAdded}
}

// Remove: 저장소 오류도 사용자 메시지 결과로 바꾼다.
func (s *Service) Remove(ctx context.Context, userID string, animeID int) Result {
	removed, err := s.store.Remove(ctx, userID, animeID)
	if err != nil {
		s.logger.Error("Failed to remove from watchlist",
			slog.String("user_id", userID),
			slog.Int("anime_id", animeID),
			slog.Any("error", err),
		)
		return Result{Message: MsgRemoveFailed}
	}
	if !removed {
		return Result{Message: MsgNotListed}
	}
	return Result{Success: true, Message: MsgRemoved}
}

// List: 오름차순 ID 목록. 조회 실패는 빈 목록과 에러를 함께 반환한다.
func (s *Service) List(ctx context.Context, userID string) ([]int, error) {
	ids, err := s.store.Members(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to read watchlist",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return []int{}, err
	}
	slices.Sort(ids)
	return ids, nil
}
