package server_test

import (
	"context"
	"crypto/tls"
	stdErrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"golang.org/x/net/http2"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/health"
	"github.com/kapu/anilist-discord-bot-go/internal/server"
)

type fakeNotifications struct {
	entries []domain.NotificationEntry
}

func (f *fakeNotifications) GetUserNotifications(userID, channelID string) []domain.NotificationEntry {
	var out []domain.NotificationEntry
	for _, e := range f.entries {
		if e.UserID == userID && (channelID == "" || e.ChannelID == channelID) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeNotifications) Count() int { return len(f.entries) }

type fakeWatchlist struct {
	ids map[string][]int
	err error
}

func (f *fakeWatchlist) List(_ context.Context, userID string) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ids[userID], nil
}

func newTestServer(t *testing.T, apiKey string, watchlist server.WatchlistReader) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifications := &fakeNotifications{entries: []domain.NotificationEntry{
		{AnimeID: 1, ChannelID: "c1", UserID: "u1", Episode: 3, AiringAt: 1000},
		{AnimeID: 2, ChannelID: "c2", UserID: "u1", Episode: 7, AiringAt: 2000},
		{AnimeID: 3, ChannelID: "c1", UserID: "u2", Episode: 1, AiringAt: 3000},
	}}
	handler := server.NewAPIHandler(notifications, watchlist, logger)

	router, err := server.NewRouter(context.Background(), server.RouterConfig{APIKey: apiKey}, logger, handler)
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	ts := httptest.NewServer(server.WrapH2C(router))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, client *http.Client, url string, header map[string]string, dest any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
	}
	return resp.StatusCode
}

func TestNotificationsEndpoint(t *testing.T) {
	ts := newTestServer(t, "", nil)

	var body struct {
		Notifications []struct {
			AnimeID   int    `json:"animeId"`
			ChannelID string `json:"channelId"`
			Episode   int    `json:"episode"`
		} `json:"notifications"`
	}
	if status := getJSON(t, ts.Client(), ts.URL+"/api/notifications/u1", nil, &body); status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if len(body.Notifications) != 2 {
		t.Fatalf("expected 2 notifications for u1, got %d", len(body.Notifications))
	}

	body.Notifications = nil
	getJSON(t, ts.Client(), ts.URL+"/api/notifications/u1?channel=c2", nil, &body)
	if len(body.Notifications) != 1 || body.Notifications[0].AnimeID != 2 {
		t.Fatalf("channel filter not applied: %+v", body.Notifications)
	}
}

func TestWatchlistEndpoint(t *testing.T) {
	ts := newTestServer(t, "", &fakeWatchlist{ids: map[string][]int{"u1": {21, 1735}}})

	var body struct {
		AnimeIDs []int `json:"animeIds"`
	}
	if status := getJSON(t, ts.Client(), ts.URL+"/api/watchlist/u1", nil, &body); status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if len(body.AnimeIDs) != 2 || body.AnimeIDs[0] != 21 {
		t.Fatalf("unexpected watchlist %v", body.AnimeIDs)
	}
}

func TestWatchlistEndpoint_Errors(t *testing.T) {
	disabled := newTestServer(t, "", nil)
	if status := getJSON(t, disabled.Client(), disabled.URL+"/api/watchlist/u1", nil, nil); status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without watchlist, got %d", status)
	}

	broken := newTestServer(t, "", &fakeWatchlist{err: stdErrors.New("valkey down")})
	if status := getJSON(t, broken.Client(), broken.URL+"/api/watchlist/u1", nil, nil); status != http.StatusInternalServerError {
		t.Fatalf("expected 500 on store error, got %d", status)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ts := newTestServer(t, "secret", nil)
	url := ts.URL + "/api/notifications/u1"

	tests := map[string]struct {
		header map[string]string
		want   int
	}{
		"missing": {header: nil, want: http.StatusUnauthorized},
		"wrong":   {header: map[string]string{server.APIKeyHeader: "nope"}, want: http.StatusForbidden},
		"valid":   {header: map[string]string{server.APIKeyHeader: "secret"}, want: http.StatusOK},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := getJSON(t, ts.Client(), url, tt.header, nil); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}

	if got := getJSON(t, ts.Client(), ts.URL+"/nowhere", map[string]string{server.APIKeyHeader: "secret"}, nil); got != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path with valid key, got %d", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, "secret", nil)

	var resp health.Response
	if status := getJSON(t, ts.Client(), ts.URL+"/health", nil, &resp); status != http.StatusOK || resp.Status != "ok" {
		t.Fatalf("expected healthy response without key, got %d %+v", status, resp)
	}

	health.Register("valkey", func(context.Context) error { return stdErrors.New("connection refused") })
	defer health.Unregister("valkey")

	resp = health.Response{}
	if status := getJSON(t, ts.Client(), ts.URL+"/health", nil, &resp); status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when a check fails, got %d", status)
	}
	if resp.Status != "degraded" || resp.Checks["valkey"] != "connection refused" {
		t.Fatalf("unexpected degraded response %+v", resp)
	}
}

// TestH2CProtocolDetection: prior knowledge h2c 클라이언트가 HTTP/2 로 응답받는지 확인
func TestH2CProtocolDetection(t *testing.T) {
	ts := newTestServer(t, "", nil)

	h2cClient := &http.Client{Transport: &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}}

	resp, err := h2cClient.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("h2c request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.ProtoMajor != 2 {
		t.Fatalf("expected HTTP/2, got HTTP/%d.%d", resp.ProtoMajor, resp.ProtoMinor)
	}
}

// TestHTTP1Fallback: 같은 핸들러가 HTTP/1.1 클라이언트도 받는지 확인
func TestHTTP1Fallback(t *testing.T) {
	ts := newTestServer(t, "", nil)

	client := &http.Client{Transport: &http.Transport{ForceAttemptHTTP2: false}}
	resp, err := client.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("http/1.1 request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.ProtoMajor != 1 {
		t.Fatalf("expected HTTP/1.1, got HTTP/%d.%d", resp.ProtoMajor, resp.ProtoMinor)
	}
}
