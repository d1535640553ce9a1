package store

import (
	"context"
	stdErrors "errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// notificationRow: notifications 테이블 행. ExpiresAt(Unix 밀리초, 0 이면 만료 없음)이 지난 행은 조회되지 않는다.
type notificationRow struct {
	Key       string `gorm:"column:notification_key;primaryKey;size:191"`
	AnimeID   int    `gorm:"column:anime_id;not null;index:idx_notifications_anime_user"`
	ChannelID string `gorm:"column:channel_id;size:64;not null"`
	UserID    string `gorm:"column:user_id;size:64;not null;index:idx_notifications_anime_user"`
	Episode   int    `gorm:"column:episode;not null"`
	AiringAt  int64  `gorm:"column:airing_at;not null"`
	ExpiresAt int64  `gorm:"column:expires_at;not null;default:0;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (notificationRow) TableName() string {
	return "notifications"
}

func (r notificationRow) toEntry() domain.NotificationEntry {
	return domain.NotificationEntry{
		AnimeID:   r.AnimeID,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		AiringAt:  r.AiringAt,
		Episode:   r.Episode,
	}
}

// GormStore: PostgreSQL 또는 SQLite 테이블에 알림을 보관한다.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ Store = (*GormStore)(nil)

// NewGormStore: 테이블을 자동 마이그레이션하고 저장소를 생성한다.
func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&notificationRow{}); err != nil {
		return nil, errors.NewStoreError(backendGorm, "migrate", "notifications", err)
	}
	return &GormStore{db: db, now: time.Now}, nil
}

// Put: notification_key 충돌 시 전체 컬럼을 갱신한다(upsert).
func (s *GormStore) Put(ctx context.Context, key string, rec domain.NotificationEntry, ttlHint time.Duration) error {
	row := notificationRow{
		Key:       key,
		AnimeID:   rec.AnimeID,
		ChannelID: rec.ChannelID,
		UserID:    rec.UserID,
		Episode:   rec.Episode,
		AiringAt:  rec.AiringAt,
	}
	if ttlHint > 0 {
		row.ExpiresAt = s.now().Add(ttlHint).UnixMilli()
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "notification_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"anime_id", "channel_id", "user_id", "episode", "airing_at", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return errors.NewStoreError(backendGorm, "put", key, err)
	}
	return nil
}

// Get: expires_at 이 지난 행은 없는 것으로 본다.
func (s *GormStore) Get(ctx context.Context, key string) (domain.NotificationEntry, bool, error) {
	var row notificationRow
	err := s.live(ctx).Where("notification_key = ?", key).Take(&row).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotificationEntry{}, false, nil
	}
	if err != nil {
		return domain.NotificationEntry{}, false, errors.NewStoreError(backendGorm, "get", key, err)
	}
	return row.toEntry(), true, nil
}

// Delete: 지운 행이 있으면 true
func (s *GormStore) Delete(ctx context.Context, key string) (bool, error) {
	result := s.db.WithContext(ctx).Where("notification_key = ?", key).Delete(&notificationRow{})
	if result.Error != nil {
		return false, errors.NewStoreError(backendGorm, "delete", key, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListKeys: 만료된 행을 먼저 정리한 뒤 prefix 로 시작하는 키를 반환한다.
func (s *GormStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if _, err := s.PurgeExpired(ctx); err != nil {
		return nil, err
	}

	var keys []string
	err := s.live(ctx).
		Model(&notificationRow{}).
		Where("notification_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Pluck("notification_key", &keys).Error
	if err != nil {
		return nil, errors.NewStoreError(backendGorm, "list", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// PurgeExpired: expires_at 이 지난 행을 삭제하고 삭제된 개수를 반환한다.
func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at > 0 AND expires_at <= ?", s.now().UnixMilli()).
		Delete(&notificationRow{})
	if result.Error != nil {
		return 0, errors.NewStoreError(backendGorm, "purge", "", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) live(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Where("(expires_at = 0 OR expires_at > ?)", s.now().UnixMilli())
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
