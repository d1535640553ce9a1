package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// Service: Valkey(Redis) 클라이언트를 래핑하여 캐싱 기능을 제공하는 서비스
// 기본 Key-Value 외에도 알림/관심 목록 저장에 필요한 Set, TTL 연산을 지원한다.
type Service struct {
	client    valkey.Client
	logger    *slog.Logger
	closeOnce sync.Once
}

// Config: Valkey 연결 설정을 담는 구조체
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewCacheService: 새로운 Valkey 캐시 서비스 인스턴스를 생성하고 연결을 수립한다.
func NewCacheService(cfg Config, logger *slog.Logger) (*Service, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{addr},
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ConnWriteTimeout:  constants.ValkeyConfig.ConnWriteTimeout,
		BlockingPoolSize:  constants.ValkeyConfig.BlockingPoolSize,
		PipelineMultiplex: constants.ValkeyConfig.PipelineMultiplex,
		Dialer:            net.Dialer{Timeout: constants.ValkeyConfig.DialTimeout},
	})
	if err != nil {
		return nil, errors.NewCacheError("init", "", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ValkeyConfig.ReadyTimeout)
	defer cancel()

	// Ping 테스트
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.NewCacheError("ping", "", err)
	}

	logger.Info("Cache store connected",
		slog.String("addr", addr),
		slog.Int("db", cfg.DB),
		slog.Int("pool_size", constants.ValkeyConfig.BlockingPoolSize),
	)

	return NewFromClient(client, logger), nil
}

// NewFromClient: 이미 생성된 valkey 클라이언트로 서비스를 구성한다.
func NewFromClient(client valkey.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		logger: logger,
	}
}

// Get: 키에 해당하는 값을 조회하여 dest 에 언마샬링한다. 키가 없으면 found=false 를 반환한다.
func (c *Service) Get(ctx context.Context, key string, dest any) (bool, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if util.IsValkeyNil(resp.Error()) {
		return false, nil // Key doesn't exist - not an error
	}
	if resp.Error() != nil {
		c.logger.Error("Cache get operation failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return false, errors.NewCacheError("get", key, resp.Error())
	}

	value, err := resp.ToString()
	if err != nil {
		c.logger.Error("Cache value conversion failed", slog.String("key", key), slog.Any("error", err))
		return false, errors.NewCacheError("get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache value unmarshal failed", slog.String("key", key), slog.Any("error", err))
			return false, errors.NewCacheError("get", key, err)
		}
	}

	return true, nil
}

// Set: 값을 JSON으로 마샬링하여 키에 저장한다. (TTL 지정 가능)
func (c *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("set", key, err)
	}

	var cmd valkey.Completed
	if ttl > 0 {
		cmd = c.client.B().Set().Key(key).Value(string(jsonData)).ExSeconds(ttlSeconds(ttl)).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(string(jsonData)).Build()
	}

	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Error("Cache set failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("set", key, err)
	}

	return nil
}

// Del: 지정된 키를 삭제하고 실제로 삭제된 키 개수를 반환한다.
func (c *Service) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	resp := c.client.Do(ctx, c.client.B().Del().Key(keys...).Build())
	if resp.Error() != nil {
		c.logger.Error("Cache delete failed", slog.Int("count", len(keys)), slog.Any("error", resp.Error()))
		return 0, errors.NewCacheError("del", fmt.Sprintf("%d keys", len(keys)), resp.Error())
	}

	deleted, err := resp.AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("del", "", err)
	}

	return deleted, nil
}

// Keys: 주어진 패턴과 일치하는 모든 키를 SCAN 으로 수집한다.
func (c *Service) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)
	var cursor uint64
	for {
		resp := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build())
		if resp.Error() != nil {
			c.logger.Error("Cache keys search failed", slog.String("pattern", pattern), slog.Any("error", resp.Error()))
			return []string{}, errors.NewCacheError("scan", pattern, resp.Error())
		}

		entry, err := resp.AsScanEntry()
		if err != nil {
			return []string{}, errors.NewCacheError("scan", pattern, err)
		}
		keys = append(keys, entry.Elements...)

		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

// SAddWithExpire: 멤버 추가와 만료 시간 갱신을 한 번의 파이프라인으로 처리한다.
func (c *Service) SAddWithExpire(ctx context.Context, key string, members []string, ttl time.Duration) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	resps := c.client.DoMulti(ctx,
		c.client.B().Sadd().Key(key).Member(members...).Build(),
		c.client.B().Expire().Key(key).Seconds(ttlSeconds(ttl)).Build(),
	)
	for _, resp := range resps {
		if resp.Error() != nil {
			c.logger.Error("Cache sadd/expire failed", slog.String("key", key), slog.Any("error", resp.Error()))
			return 0, errors.NewCacheError("sadd", key, resp.Error())
		}
	}

	added, err := resps[0].AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("sadd", key, err)
	}
	return added, nil
}

// SRem: Set 자료구조에서 멤버들을 제거한다.
func (c *Service) SRem(ctx context.Context, key string, members []string) (int64, error) {
	if len(members) == 0 {
		return 0, nil
	}

	resp := c.client.Do(ctx, c.client.B().Srem().Key(key).Member(members...).Build())
	if resp.Error() != nil {
		c.logger.Error("Cache srem failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return 0, errors.NewCacheError("srem", key, resp.Error())
	}

	removed, err := resp.AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("srem", key, err)
	}

	return removed, nil
}

// SMembers: Set의 모든 멤버를 조회한다.
func (c *Service) SMembers(ctx context.Context, key string) ([]string, error) {
	resp := c.client.Do(ctx, c.client.B().Smembers().Key(key).Build())
	if resp.Error() != nil {
		c.logger.Error("Cache smembers failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return []string{}, errors.NewCacheError("smembers", key, resp.Error())
	}

	members, err := resp.AsStrSlice()
	if err != nil {
		return []string{}, errors.NewCacheError("smembers", key, err)
	}

	return members, nil
}

// SIsMember: 특정 값이 Set에 포함되어 있는지 확인한다.
func (c *Service) SIsMember(ctx context.Context, key, member string) (bool, error) {
	resp := c.client.Do(ctx, c.client.B().Sismember().Key(key).Member(member).Build())
	if resp.Error() != nil {
		c.logger.Error("Cache sismember failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return false, errors.NewCacheError("sismember", key, resp.Error())
	}

	exists, err := resp.AsBool()
	if err != nil {
		return false, errors.NewCacheError("sismember", key, err)
	}

	return exists, nil
}

// Expire: 키의 만료 시간을 설정한다.
func (c *Service) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Do(ctx, c.client.B().Expire().Key(key).Seconds(ttlSeconds(ttl)).Build()).Error(); err != nil {
		c.logger.Error("Cache expire failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("expire", key, err)
	}
	return nil
}

// TTL: 키의 남은 만료 시간을 반환한다. 만료가 없으면 -1s, 키가 없으면 -2s 이다.
func (c *Service) TTL(ctx context.Context, key string) (time.Duration, error) {
	resp := c.client.Do(ctx, c.client.B().Ttl().Key(key).Build())
	if resp.Error() != nil {
		return 0, errors.NewCacheError("ttl", key, resp.Error())
	}
	seconds, err := resp.AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("ttl", key, err)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Exists: 키가 존재하는지 확인한다.
func (c *Service) Exists(ctx context.Context, key string) (bool, error) {
	resp := c.client.Do(ctx, c.client.B().Exists().Key(key).Build())
	if resp.Error() != nil {
		c.logger.Error("Cache exists failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return false, errors.NewCacheError("exists", key, resp.Error())
	}

	count, err := resp.AsInt64()
	if err != nil {
		return false, errors.NewCacheError("exists", key, err)
	}

	return count > 0, nil
}

// Close: 캐시 스토어 연결을 안전하게 종료한다.
func (c *Service) Close() error {
	c.closeOnce.Do(func() {
		if c.client == nil {
			return
		}

		c.client.Close()
		c.logger.Info("Cache store disconnected")
	})

	return nil
}

// IsConnected: 캐시 스토어와 연결되어 있는지(PING 응답 여부) 확인한다.
func (c *Service) IsConnected(ctx context.Context) bool {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error() == nil
}

// ttlSeconds: EXPIRE/EX 인자는 초 단위 정수이므로 1초 미만은 1초로 올린다.
func ttlSeconds(ttl time.Duration) int64 {
	seconds := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		seconds++
	}
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
