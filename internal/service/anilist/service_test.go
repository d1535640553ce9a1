package anilist

import (
	"context"
	stdErrors "errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/service/cache"
	"github.com/kapu/anilist-discord-bot-go/internal/testhelper"
)

type recordedQuery struct {
	operation string
	variables map[string]any
}

type fakeRequester struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []recordedQuery
	count     int32
}

func (f *fakeRequester) Query(_ context.Context, operation, _ string, variables map[string]any, dest any) error {
	atomic.AddInt32(&f.count, 1)
	f.mu.Lock()
	f.calls = append(f.calls, recordedQuery{operation: operation, variables: variables})
	body, ok := f.responses[operation]
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAnimeNotFound
	}
	return json.Unmarshal([]byte(body), dest)
}

func (f *fakeRequester) last() recordedQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func TestServiceGetAnimeByID_CachesDetails(t *testing.T) {
	client, _ := testhelper.NewMiniValkey(t)
	cacheSvc := cache.NewFromClient(client, testhelper.DiscardLogger())

	future := time.Now().Add(time.Hour).Unix()
	req := &fakeRequester{responses: map[string]string{
		"anime_details": `{"Media":{"id":21,"title":{"romaji":"One Piece"},"status":"RELEASING","nextAiringEpisode":{"episode":1100,"airingAt":` + strconv.FormatInt(future, 10) + `}}}`,
	}}
	svc := NewService(req, cacheSvc, testhelper.DiscardLogger())
	ctx := context.Background()

	first, err := svc.GetAnimeByID(ctx, 21)
	if err != nil {
		t.Fatalf("GetAnimeByID() error: %v", err)
	}
	if first.NextAiringEpisode == nil || first.NextAiringEpisode.Episode != 1100 {
		t.Fatalf("unexpected media: %+v", first)
	}

	second, err := svc.GetAnimeByID(ctx, 21)
	if err != nil {
		t.Fatalf("second GetAnimeByID() error: %v", err)
	}
	if second.ID != 21 || atomic.LoadInt32(&req.count) != 1 {
		t.Fatalf("expected cached response, requests=%d", atomic.LoadInt32(&req.count))
	}

	// 캐시된 방영 시각이 지나면 다시 조회한다.
	svc.now = func() time.Time { return time.Unix(future+1, 0) }
	if _, err := svc.GetAnimeByID(ctx, 21); err != nil {
		t.Fatalf("third GetAnimeByID() error: %v", err)
	}
	if atomic.LoadInt32(&req.count) != 2 {
		t.Fatalf("stale airing data must bypass the cache, requests=%d", atomic.LoadInt32(&req.count))
	}
}

func TestServiceGetAnimeByID_NotFound(t *testing.T) {
	t.Parallel()

	req := &fakeRequester{responses: map[string]string{"anime_details": `{"Media":null}`}}
	svc := NewService(req, nil, testhelper.DiscardLogger())

	if _, err := svc.GetAnimeByID(context.Background(), 999999); !stdErrors.Is(err, domain.ErrAnimeNotFound) {
		t.Fatalf("expected ErrAnimeNotFound, got %v", err)
	}
	if _, err := svc.GetAnimeByID(context.Background(), 0); err == nil {
		t.Fatalf("expected validation error for id 0")
	}
}

func TestServiceSearch(t *testing.T) {
	t.Parallel()

	req := &fakeRequester{responses: map[string]string{
		"search_by_id":   `{"Media":{"id":21,"title":{"romaji":"One Piece"}}}`,
		"search_by_text": `{"Page":{"pageInfo":{"total":2},"media":[{"id":1},{"id":2}]}}`,
	}}
	svc := NewService(req, nil, testhelper.DiscardLogger())
	ctx := context.Background()

	byID, err := svc.Search(ctx, "21")
	if err != nil {
		t.Fatalf("Search(id) error: %v", err)
	}
	if len(byID.Media) != 1 || byID.Media[0].ID != 21 || req.last().operation != "search_by_id" {
		t.Fatalf("unexpected id search: %+v", byID)
	}

	byText, err := svc.Search(ctx, "frieren")
	if err != nil {
		t.Fatalf("Search(text) error: %v", err)
	}
	if len(byText.Media) != 2 || byText.PageInfo.Total != 2 {
		t.Fatalf("unexpected text search: %+v", byText)
	}
	vars := req.last().variables
	if vars["q"] != "frieren" || vars["page"] != 1 || vars["perPage"] != 5 {
		t.Fatalf("unexpected variables: %+v", vars)
	}

	if _, err := svc.Search(ctx, "   "); err == nil {
		t.Fatalf("expected validation error for blank query")
	}
}

func TestServiceSeasonalAndReleasing(t *testing.T) {
	t.Parallel()

	req := &fakeRequester{responses: map[string]string{
		"seasonal_anime":  `{"Page":{"media":[{"id":3}]}}`,
		"releasing_anime": `{"Page":null}`,
	}}
	svc := NewService(req, nil, testhelper.DiscardLogger())
	ctx := context.Background()

	page, err := svc.Seasonal(ctx, "fall", 2024, 0, 0)
	if err != nil {
		t.Fatalf("Seasonal() error: %v", err)
	}
	vars := req.last().variables
	if vars["season"] != "FALL" || vars["seasonYear"] != 2024 || vars["type"] != "ANIME" || vars["perPage"] != 50 {
		t.Fatalf("unexpected variables: %+v", vars)
	}
	if len(page.Media) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}

	if _, err := svc.Seasonal(ctx, "monsoon", 2024, 1, 10); err == nil {
		t.Fatalf("expected validation error for unknown season")
	}

	releasing, err := svc.Releasing(ctx, 2, 100)
	if err != nil {
		t.Fatalf("Releasing() error: %v", err)
	}
	if releasing.Media == nil || len(releasing.Media) != 0 {
		t.Fatalf("expected empty non-nil media, got %+v", releasing)
	}
	vars = req.last().variables
	if vars["page"] != 2 || vars["perPage"] != 50 {
		t.Fatalf("unexpected variables: %+v", vars)
	}
}

func TestCleanDescription(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input    string
		maxLen   int
		expected string
	}{
		"empty": {input: "", expected: ""},
		"strips tags and breaks": {
			input:    "The <i>adventure</i> is over.<br><br>\n<br>Frieren lives on.<br>(Source: Crunchyroll)",
			expected: "The adventure is over.\n\nFrieren lives on.",
		},
		"decodes entities": {input: "Tom &amp; Jerry", expected: "Tom & Jerry"},
		"truncates":        {input: "abcdefghij", maxLen: 8, expected: "abcde..."},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := CleanDescription(tc.input, tc.maxLen); got != tc.expected {
				t.Fatalf("CleanDescription() = %q, expected %q", got, tc.expected)
			}
		})
	}
}
