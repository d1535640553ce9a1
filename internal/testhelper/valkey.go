// Package testhelper: 여러 패키지 테스트에서 공유하는 인프라 헬퍼를 제공한다.
package testhelper

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"
)

// NewMiniValkey: 인메모리 miniredis 서버와 그에 연결된 valkey 클라이언트를 생성한다.
// 테스트 종료 시 클라이언트와 서버를 함께 정리한다.
func NewMiniValkey(t *testing.T) (valkey.Client, *miniredis.Miniredis) {
	t.Helper()

	mini := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mini.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("failed to create valkey client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		t.Fatalf("failed to ping miniredis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		mini.Close()
	})

	return client, mini
}

// DiscardLogger: 출력을 버리는 slog 로거
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
