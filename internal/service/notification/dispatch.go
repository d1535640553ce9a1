package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

const aniListAnimeURL = "https://anilist.co/anime/%d"

// dispatch: 타이머 만료 시 호출된다. 전송 성공 여부와 관계없이 항목을 제거한다(재시도 없음).
func (s *Service) dispatch(se *scheduledEntry) {
	s.mu.Lock()
	messenger, closed := s.messenger, s.closed
	s.mu.Unlock()

	// 종료 중이면 저장소 레코드를 남겨 다음 기동 시 재적재되게 한다.
	if closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.NotificationConfig.DispatchTimeout)
	defer cancel()
	defer s.finishDispatch(ctx, se)

	entry := se.entry
	log := s.logger.With(slog.String("key", entry.Key()))

	if messenger == nil || !messenger.ChannelAvailable(ctx, entry.ChannelID) {
		log.Warn("Notification channel unavailable, dropping")
		return
	}

	title := fmt.Sprintf("Anime #%d", entry.AnimeID)
	siteURL := fmt.Sprintf(aniListAnimeURL, entry.AnimeID)

	anime, err := s.provider.GetAnimeByID(ctx, entry.AnimeID)
	switch {
	case err != nil:
		log.Warn("Failed to refresh anime before dispatch", slog.Any("error", err))
	case anime != nil:
		title = anime.DisplayTitle()
		if anime.SiteURL != "" {
			siteURL = anime.SiteURL
		}
	}

	if err := messenger.SendMessage(ctx, entry.ChannelID, FormatAiredMessage(entry, title, siteURL)); err != nil {
		log.Error("Failed to send notification", slog.Any("error", err))
		return
	}

	log.Info("Notification delivered", slog.Int("episode", entry.Episode))
}

// finishDispatch: 인덱스의 항목이 여전히 se 일 때만 제거한다.
// 그 사이 같은 키로 새로 등록된 알림은 건드리지 않는다.
func (s *Service) finishDispatch(ctx context.Context, se *scheduledEntry) {
	key := se.entry.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.entries[key]; ok {
		if current != se {
			return
		}
		delete(s.entries, key)
	}
	s.deleteFromStore(ctx, key)
}

// FormatAiredMessage: 방영 알림 본문
func FormatAiredMessage(entry domain.NotificationEntry, title, siteURL string) string {
	return fmt.Sprintf("🎉 <@%s> Episode %d of **%s** has just aired!\n\n🔗 [AniList Details](%s)",
		entry.UserID, entry.Episode, title, siteURL)
}
