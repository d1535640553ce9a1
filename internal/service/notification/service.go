// Package notification: 에피소드 방영 알림을 예약/영속화/재적재하고 방영 시각에 채널로 전달한다.
package notification

import (
	"cmp"
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/service/store"
)

// MetadataProvider: 애니메이션의 현재 방영 상태를 조회한다. 없는 ID 는 domain.ErrAnimeNotFound 를 반환한다.
type MetadataProvider interface {
	GetAnimeByID(ctx context.Context, id int) (*domain.Media, error)
}

// Messenger: 플랫폼(Discord) 세션. 세션이 준비된 뒤 Attach 로 연결된다.
type Messenger interface {
	ChannelAvailable(ctx context.Context, channelID string) bool
	SendMessage(ctx context.Context, channelID, content string) error
}

// 사용자 노출 메시지
const (
	msgNotInitialized = "Bot client not initialized"
	msgNotFound       = "No anime found with ID %d"
	msgNoSchedule     = "No upcoming episodes scheduled for %s"
	msgFinished       = "This anime has finished airing"
	msgCancelled      = "This anime has been cancelled"
	msgAlreadyAired   = "This episode has already aired"
	msgAlreadyExists  = "You already have a notification set for %s"
	msgFailed         = "An error occurred while setting up the notification"
	msgScheduled      = "Notification set for %s Episode %d"
)

// scheduledEntry: 메모리 인덱스 항목. 포인터 동일성으로 "내가 예약한 그 항목"인지 판별한다.
type scheduledEntry struct {
	entry domain.NotificationEntry
	timer Timer
}

// Service: 알림 인덱스(메모리)와 영속 저장소를 함께 관리한다.
// 인덱스와 불변식 검사는 하나의 mutex 아래에서 수행된다.
type Service struct {
	store    store.Store
	provider MetadataProvider
	clock    Clock
	logger   *slog.Logger

	mu        sync.Mutex
	entries   map[string]*scheduledEntry
	messenger Messenger
	closed    bool
}

// Option 은 Service 생성 옵션이다.
type Option func(*Service)

// WithClock: 시각/타이머 소스를 교체한다.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService: 저장소와 메타데이터 조회기로 스케줄러를 만든다. Attach 전까지는 등록을 거부한다.
func NewService(st store.Store, provider MetadataProvider, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:    st,
		provider: provider,
		clock:    SystemClock(),
		logger:   logger,
		entries:  make(map[string]*scheduledEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach: 플랫폼 세션을 연결하고 저장소에서 알림을 재적재한다.
func (s *Service) Attach(ctx context.Context, messenger Messenger) (int, error) {
	s.mu.Lock()
	s.messenger = messenger
	s.mu.Unlock()

	return s.LoadNotifications(ctx)
}

func (s *Service) currentMessenger() Messenger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messenger
}

// AddNotification: 다음 에피소드 방영 알림을 등록한다. 실패도 결과 값으로 반환한다.
func (s *Service) AddNotification(ctx context.Context, animeID int, channelID, userID string) domain.NotificationResult {
	if s.currentMessenger() == nil {
		return domain.NewNotificationFailure(domain.NotificationNotInitialized, msgNotInitialized)
	}

	if animeID <= 0 {
		return domain.NewNotificationFailure(domain.NotificationNotFound, fmt.Sprintf(msgNotFound, animeID))
	}

	anime, err := s.provider.GetAnimeByID(ctx, animeID)
	if err != nil {
		if stdErrors.Is(err, domain.ErrAnimeNotFound) {
			return domain.NewNotificationFailure(domain.NotificationNotFound, fmt.Sprintf(msgNotFound, animeID))
		}
		s.logger.Error("Failed to fetch anime for notification",
			slog.Int("anime_id", animeID),
			slog.Any("error", err),
		)
		return domain.NewNotificationFailure(domain.NotificationFailed, msgFailed)
	}
	if anime == nil {
		return domain.NewNotificationFailure(domain.NotificationNotFound, fmt.Sprintf(msgNotFound, animeID))
	}

	title := anime.DisplayTitle()

	// 종료/취소 상태를 먼저 본다. 종료된 작품은 nextAiringEpisode 도 비어 있다.
	switch anime.Status {
	case domain.StatusFinished:
		return domain.NewNotificationFailure(domain.NotificationFinished, msgFinished)
	case domain.StatusCancelled:
		return domain.NewNotificationFailure(domain.NotificationCancelled, msgCancelled)
	}
	if anime.NextAiringEpisode == nil {
		return domain.NewNotificationFailure(domain.NotificationNoSchedule, fmt.Sprintf(msgNoSchedule, title))
	}

	airingAt := anime.NextAiringEpisode.AiringAt * 1000
	now := s.clock.Now()
	if airingAt <= now.UnixMilli() {
		return domain.NewNotificationFailure(domain.NotificationAlreadyAired, msgAlreadyAired)
	}

	entry := domain.NotificationEntry{
		AnimeID:   animeID,
		ChannelID: channelID,
		UserID:    userID,
		AiringAt:  airingAt,
		Episode:   anime.NextAiringEpisode.Episode,
	}
	key := entry.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return domain.NewNotificationFailure(domain.NotificationAlreadyExists, fmt.Sprintf(msgAlreadyExists, title))
	}

	replaced, err := s.removeConflictsLocked(ctx, animeID, userID)
	if err != nil {
		s.logger.Error("Failed to replace notification in another channel",
			slog.Int("anime_id", animeID),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return domain.NewNotificationFailure(domain.NotificationFailed, msgFailed)
	}
	if len(replaced) > 0 {
		s.logger.Info("Replaced notification in another channel",
			slog.Int("anime_id", animeID),
			slog.String("user_id", userID),
			slog.Any("replaced_keys", replaced),
		)
	}

	delay := time.UnixMilli(airingAt).Sub(now)
	se := &scheduledEntry{entry: entry}
	se.timer = s.clock.AfterFunc(delay, func() { s.dispatch(se) })
	s.entries[key] = se

	if err := s.store.Put(ctx, key, entry, ttlHint(delay)); err != nil {
		se.timer.Stop()
		delete(s.entries, key)
		s.logger.Error("Failed to persist notification",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return domain.NewNotificationFailure(domain.NotificationFailed, msgFailed)
	}

	s.logger.Info("Notification scheduled",
		slog.String("key", key),
		slog.Int("episode", entry.Episode),
		slog.Time("airing_at", entry.AiringTime()),
		slog.Duration("delay", delay),
	)

	airingDate := entry.AiringTime()
	return domain.NotificationResult{
		Success:    true,
		Code:       domain.NotificationOK,
		Message:    fmt.Sprintf(msgScheduled, title, entry.Episode),
		Title:      title,
		Episode:    entry.Episode,
		AiringDate: &airingDate,
	}
}

// removeConflictsLocked: 같은 (애니메이션, 사용자) 조합의 다른 채널 알림을 제거한다. s.mu 보유 상태에서 호출한다.
// 저장소 삭제가 하나라도 실패하면 거기서 멈추고 오류를 반환한다.
func (s *Service) removeConflictsLocked(ctx context.Context, animeID int, userID string) ([]string, error) {
	var keys []string
	for key, se := range s.entries {
		if se.entry.AnimeID == animeID && se.entry.UserID == userID {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	removed := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := s.removeLocked(ctx, key); err != nil {
			return removed, err
		}
		removed = append(removed, key)
	}
	return removed, nil
}

// removeLocked: 저장소에서 먼저 지우고, 성공했을 때만 타이머를 멈추고 메모리에서 뺀다.
// 삭제에 실패하면 재기동 후에도 레코드가 살아 있으므로 항목을 그대로 둔다.
func (s *Service) removeLocked(ctx context.Context, key string) error {
	if _, err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete notification %s: %w", key, err)
	}
	if se, ok := s.entries[key]; ok {
		se.timer.Stop()
		delete(s.entries, key)
	}
	return nil
}

func (s *Service) deleteFromStore(ctx context.Context, key string) {
	if _, err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete notification from store",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// RemoveUserNotification: 정확한 키의 알림을 취소한다. 없거나 저장소 삭제에 실패하면 false.
func (s *Service) RemoveUserNotification(ctx context.Context, animeID int, channelID, userID string) bool {
	key := domain.NotificationKey(animeID, channelID, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	if err := s.removeLocked(ctx, key); err != nil {
		s.logger.Error("Failed to cancel notification",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}

	s.logger.Info("Notification cancelled", slog.String("key", key))
	return true
}

// GetUserNotifications: 메모리 인덱스만 조회한다. channelID 가 비어 있으면 모든 채널.
func (s *Service) GetUserNotifications(userID, channelID string) []domain.NotificationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.NotificationEntry, 0)
	for _, se := range s.entries {
		if se.entry.UserID != userID {
			continue
		}
		if channelID != "" && se.entry.ChannelID != channelID {
			continue
		}
		result = append(result, se.entry)
	}
	slices.SortFunc(result, func(a, b domain.NotificationEntry) int {
		if c := cmp.Compare(a.AiringAt, b.AiringAt); c != 0 {
			return c
		}
		return strings.Compare(a.Key(), b.Key())
	})
	return result
}

// Count: 현재 예약된 알림 수
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup: 방영 시각이 지났는데 남아 있는 항목을 제거하고 제거 개수를 반환한다.
// 저장소 삭제에 실패한 항목은 메모리에 남겨 다음 주기에 다시 시도한다.
func (s *Service) Cleanup(ctx context.Context) int {
	nowMs := s.clock.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for key, se := range s.entries {
		if se.entry.AiringAt <= nowMs {
			expired = append(expired, key)
		}
	}
	removed := 0
	for _, key := range expired {
		if err := s.removeLocked(ctx, key); err != nil {
			s.logger.Warn("Failed to clean up notification, retrying next cycle",
				slog.String("key", key),
				slog.Any("error", err),
			)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Cleaned up expired notifications", slog.Int("count", removed))
	}
	return removed
}

// LoadNotifications: 저장소의 알림을 읽어 타이머를 다시 건다. 이미 지난 항목은 저장소에서도 지운다.
// 같은 (애니메이션, 사용자) 조합이 여러 채널에 남아 있으면 방영 시각이 가장 늦은 것 하나만 살린다.
func (s *Service) LoadNotifications(ctx context.Context) (int, error) {
	keys, err := s.store.ListKeys(ctx, "")
	if err != nil {
		s.logger.Error("Failed to list persisted notifications", slog.Any("error", err))
		return 0, fmt.Errorf("list notifications: %w", err)
	}
	slices.Sort(keys)

	now := s.clock.Now()
	dropped := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	winners := make(map[pairKey]domain.NotificationEntry)
	var stale []string
	for _, key := range keys {
		entry, found, err := s.store.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Failed to read persisted notification",
				slog.String("key", key),
				slog.Any("error", err),
			)
			continue
		}
		if !found {
			continue
		}
		if entry.AiringAt <= now.UnixMilli() {
			stale = append(stale, key)
			continue
		}

		pair := pairOf(entry)
		if live, ok := s.livePairLocked(pair); ok && live.Key() != entry.Key() {
			// 재기동 뒤 새로 등록된 알림이 우선이다.
			stale = append(stale, key)
			continue
		}
		prev, ok := winners[pair]
		switch {
		case !ok:
			winners[pair] = entry
		case entry.AiringAt > prev.AiringAt:
			stale = append(stale, prev.Key())
			winners[pair] = entry
		default:
			stale = append(stale, key)
		}
	}

	for _, key := range stale {
		if _, err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to drop stale notification",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
		dropped++
	}

	for _, entry := range winners {
		key := entry.Key()
		if prev, ok := s.entries[key]; ok {
			prev.timer.Stop()
		}
		se := &scheduledEntry{entry: entry}
		se.timer = s.clock.AfterFunc(entry.AiringTime().Sub(now), func() { s.dispatch(se) })
		s.entries[key] = se
	}

	s.logger.Info("Loaded notifications from store",
		slog.Int("loaded", len(winners)),
		slog.Int("dropped", dropped),
	)
	return len(winners), nil
}

// pairKey: 한 사용자가 한 작품에 대해 가질 수 있는 알림은 하나다.
type pairKey struct {
	animeID int
	userID  string
}

func pairOf(entry domain.NotificationEntry) pairKey {
	return pairKey{animeID: entry.AnimeID, userID: entry.UserID}
}

func (s *Service) livePairLocked(pair pairKey) (domain.NotificationEntry, bool) {
	for _, se := range s.entries {
		if pairOf(se.entry) == pair {
			return se.entry, true
		}
	}
	return domain.NotificationEntry{}, false
}

// Run: interval 마다 Cleanup 을 실행한다. ctx 가 취소되면 반환한다.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = constants.NotificationConfig.CleanupInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Cleanup(ctx)
		}
	}
}

// Close: 모든 대기 중 타이머를 멈춘다. 저장소 내용은 유지된다.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, se := range s.entries {
		se.timer.Stop()
	}
}

func ttlHint(delay time.Duration) time.Duration {
	return store.TTLHint(delay)
}
