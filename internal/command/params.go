package command

import (
	"context"
	"strconv"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// stringParam: 문자열 옵션. 없거나 타입이 다르면 빈 문자열.
func stringParam(params map[string]any, key string) string {
	switch v := params[key].(type) {
	case string:
		return util.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

// intParam: 정수 옵션. 문자열 숫자도 허용한다. 없으면 (0, false).
func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(util.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// lookupTitles: ID 별 표시 제목을 동시에 조회한다. 실패한 항목은 빈 문자열로 남는다.
func (b *BaseCommand) lookupTitles(ctx context.Context, ids []int) []string {
	titles := make([]string, len(ids))
	if len(ids) == 0 {
		return titles
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(min(len(ids), constants.CommandConfig.TitleLookupConcurrency))
	for idx, id := range ids {
		p.Go(func() {
			title := b.animeTitle(ctx, id)
			mu.Lock()
			titles[idx] = title
			mu.Unlock()
		})
	}
	p.Wait()
	return titles
}
