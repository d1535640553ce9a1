// Package health: 서비스 상태 정보
package health

import (
	"context"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"
)

// CheckFunc: 의존성(캐시, DB) 연결 상태를 확인한다.
type CheckFunc func(ctx context.Context) error

var (
	startTime = time.Now()
	version   = "dev"
	initOnce  sync.Once

	checksMu sync.RWMutex
	checks   = map[string]CheckFunc{}
)

// Init: 서비스 시작 시 호출 (버전 정보 설정)
func Init(v string) {
	initOnce.Do(func() {
		startTime = time.Now()
		if v != "" {
			version = v
		}
	})
}

// Register: 이름으로 상태 확인 함수를 등록한다. 같은 이름은 덮어쓴다.
func Register(name string, check CheckFunc) {
	checksMu.Lock()
	defer checksMu.Unlock()
	checks[name] = check
}

// Unregister: 연결을 닫을 때 해당 상태 확인을 뺀다.
func Unregister(name string) {
	checksMu.Lock()
	defer checksMu.Unlock()
	delete(checks, name)
}

// Response: /health 엔드포인트 표준 응답
type Response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Checks     map[string]string `json:"checks,omitempty"`
}

// Get: 등록된 확인 함수를 이름 순으로 실행한다. 하나라도 실패하면 status 는 "degraded".
func Get(ctx context.Context) Response {
	checksMu.RLock()
	snapshot := maps.Clone(checks)
	checksMu.RUnlock()

	resp := Response{
		Status:     "ok",
		Version:    version,
		Uptime:     formatDuration(time.Since(startTime)),
		Goroutines: runtime.NumGoroutine(),
	}
	if len(snapshot) == 0 {
		return resp
	}

	resp.Checks = make(map[string]string, len(snapshot))
	for _, name := range slices.Sorted(maps.Keys(snapshot)) {
		if err := snapshot[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}
	return resp
}

// GetVersion: 현재 버전 반환
func GetVersion() string {
	return version
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
