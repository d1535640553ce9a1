// Package store: 알림 레코드를 보관하는 영속 저장소 계약과 백엔드 구현(파일, Valkey, GORM)을 제공한다.
package store

import (
	"context"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// Store: 알림 스케줄러가 의존하는 저장소 계약.
// ttlHint 는 자연 만료까지 남은 시간으로, 지원하지 않는 백엔드는 무시한다.
// 존재하지 않는 키의 Delete 는 에러가 아니라 false 다.
type Store interface {
	Put(ctx context.Context, key string, rec domain.NotificationEntry, ttlHint time.Duration) error
	Get(ctx context.Context, key string) (domain.NotificationEntry, bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// 백엔드 이름 (로그/에러 표기용)
const (
	backendFile   = "file"
	backendValkey = "valkey"
	backendGorm   = "gorm"
)
