package watchlist

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
)

// SetCache: ValkeyStore 가 사용하는 Set 연산 (cache.Service 가 구현한다)
type SetCache interface {
	SAddWithExpire(ctx context.Context, key string, members []string, ttl time.Duration) (int64, error)
	SRem(ctx context.Context, key string, members []string) (int64, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
}

// ValkeyStore: "watchlist:user:<id>" Set 에 저장한다. 추가할 때마다 30일 만료가 갱신된다.
type ValkeyStore struct {
	cache SetCache
	ttl   time.Duration
}

var _ SetStore = (*ValkeyStore)(nil)

// NewValkeyStore: 사용자마다 watchlist:user:<id> 집합 하나를 쓴다.
func NewValkeyStore(cache SetCache) *ValkeyStore {
	return &ValkeyStore{cache: cache, ttl: constants.CacheTTL.Watchlist}
}

func userKey(userID string) string {
	return constants.CacheKeys.WatchlistPrefix + userID
}

// IsMember: SISMEMBER
func (s *ValkeyStore) IsMember(ctx context.Context, userID string, animeID int) (bool, error) {
	ok, err := s.cache.SIsMember(ctx, userKey(userID), strconv.Itoa(animeID))
	if err != nil {
		return false, fmt.Errorf("watchlist is member: %w", err)
	}
	return ok, nil
}

// Add: SADD 와 EXPIRE 를 함께 보낸다.
func (s *ValkeyStore) Add(ctx context.Context, userID string, animeID int) error {
	if _, err := s.cache.SAddWithExpire(ctx, userKey(userID), []string{strconv.Itoa(animeID)}, s.ttl); err != nil {
		return fmt.Errorf("watchlist add: %w", err)
	}
	return nil
}

// Remove: SREM. 지운 멤버가 없으면 false
func (s *ValkeyStore) Remove(ctx context.Context, userID string, animeID int) (bool, error) {
	n, err := s.cache.SRem(ctx, userKey(userID), []string{strconv.Itoa(animeID)})
	if err != nil {
		return false, fmt.Errorf("watchlist remove: %w", err)
	}
	return n > 0, nil
}

// Members: 숫자가 아닌 멤버는 건너뛴다.
func (s *ValkeyStore) Members(ctx context.Context, userID string) ([]int, error) {
	raw, err := s.cache.SMembers(ctx, userKey(userID))
	if err != nil {
		return nil, fmt.Errorf("watchlist members: %w", err)
	}
	ids := make([]int, 0, len(raw))
	for _, member := range raw {
		if id, err := strconv.Atoi(member); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
