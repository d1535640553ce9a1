package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
)

// TTLHint: 방영 후 1시간까지 보관하되 최소 60초
func TTLHint(delay time.Duration) time.Duration {
	return max(delay+constants.CacheTTL.NotificationPad, constants.CacheTTL.NotificationMin)
}

// CopyStats 는 Copy 결과 집계다.
type CopyStats struct {
	Copied  int
	Expired int
	Failed  int
}

// Copy: src 의 모든 레코드를 dst 로 복사한다. 방영 시각이 지난 레코드는 건너뛴다.
// dryRun 이면 dst 에 쓰지 않고 집계만 한다. 개별 레코드 실패는 Failed 로 세고 계속 진행한다.
func Copy(ctx context.Context, src, dst Store, now time.Time, dryRun bool) (CopyStats, error) {
	var stats CopyStats

	keys, err := src.ListKeys(ctx, "")
	if err != nil {
		return stats, fmt.Errorf("list source keys: %w", err)
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rec, found, err := src.Get(ctx, key)
		if err != nil {
			stats.Failed++
			continue
		}
		if !found {
			continue
		}

		delay := rec.AiringTime().Sub(now)
		if delay <= 0 {
			stats.Expired++
			continue
		}
		if dryRun {
			stats.Copied++
			continue
		}
		if err := dst.Put(ctx, rec.Key(), rec, TTLHint(delay)); err != nil {
			stats.Failed++
			continue
		}
		stats.Copied++
	}
	return stats, nil
}
