package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// KeyValueCache: ValkeyStore 가 사용하는 캐시 연산 (cache.Service 가 구현한다)
type KeyValueCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// ValkeyStore: 레코드마다 "notification:<key>" 형태의 개별 키를 쓰고 TTL 로 자연 만료시킨다.
type ValkeyStore struct {
	cache     KeyValueCache
	namespace string
}

var _ Store = (*ValkeyStore)(nil)

// NewValkeyStore: 레코드마다 notification:<key> 키 하나를 쓴다.
func NewValkeyStore(cache KeyValueCache) *ValkeyStore {
	return &ValkeyStore{
		cache:     cache,
		namespace: constants.CacheKeys.NotificationPrefix,
	}
}

func (s *ValkeyStore) fullKey(key string) string {
	return s.namespace + key
}

// Put: ttlHint 가 0 이하이면 만료 없이 저장한다.
func (s *ValkeyStore) Put(ctx context.Context, key string, rec domain.NotificationEntry, ttlHint time.Duration) error {
	if err := s.cache.Set(ctx, s.fullKey(key), rec, ttlHint); err != nil {
		return errors.NewStoreError(backendValkey, "put", key, err)
	}
	return nil
}

// Get: 키가 만료되었거나 없으면 found=false
func (s *ValkeyStore) Get(ctx context.Context, key string) (domain.NotificationEntry, bool, error) {
	var rec domain.NotificationEntry
	found, err := s.cache.Get(ctx, s.fullKey(key), &rec)
	if err != nil {
		return domain.NotificationEntry{}, false, errors.NewStoreError(backendValkey, "get", key, err)
	}
	return rec, found, nil
}

// Delete: DEL 결과가 1 이상이면 true
func (s *ValkeyStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.cache.Del(ctx, s.fullKey(key))
	if err != nil {
		return false, errors.NewStoreError(backendValkey, "delete", key, err)
	}
	return n > 0, nil
}

// ListKeys: 네임스페이스를 제거한 논리 키 목록을 반환한다.
func (s *ValkeyStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	pattern := s.fullKey(escapeGlob(prefix)) + "*"
	raw, err := s.cache.Keys(ctx, pattern)
	if err != nil {
		return nil, errors.NewStoreError(backendValkey, "list", prefix, err)
	}

	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if logical, ok := strings.CutPrefix(k, s.namespace); ok {
			keys = append(keys, logical)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// escapeGlob: SCAN MATCH 패턴의 특수문자를 이스케이프한다.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
