package ai

import (
	"context"
	stdErrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

const sampleRecommendations = `[
  {"title": "Steins;Gate", "reason": "Time travel thriller", "confidence": 0.7},
  {"title": "Re:Zero", "reason": "Repeating deaths", "confidence": 0.95},
  {"title": "Unknown Show", "reason": "Not on AniList", "confidence": 0.5}
]`

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseRecommendations(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    int
		wantErr bool
	}{
		"plain array":        {input: sampleRecommendations, want: 3},
		"fenced json":        {input: "```json\n" + sampleRecommendations + "\n```", want: 3},
		"surrounding prose":  {input: "Here you go:\n" + sampleRecommendations + "\nEnjoy!", want: 3},
		"drops blank fields": {input: `[{"title":"","reason":"x","confidence":1},{"title":"A","reason":"","confidence":1},{"title":"B","reason":"ok","confidence":0.4}]`, want: 1},
		"empty":              {input: "   ", wantErr: true},
		"not json":           {input: "I cannot help with that", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRecommendations(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d recommendations, got %d (%v)", tt.want, len(got), got)
			}
		})
	}
}

func TestParseRecommendations_ClampsConfidenceAndLimits(t *testing.T) {
	t.Parallel()

	input := `[
	  {"title":"A","reason":"r","confidence":1.5},
	  {"title":"B","reason":"r","confidence":-2},
	  {"title":"C","reason":"r","confidence":0.1},
	  {"title":"D","reason":"r","confidence":0.1},
	  {"title":"E","reason":"r","confidence":0.1},
	  {"title":"F","reason":"r","confidence":0.1}
	]`
	got, err := ParseRecommendations(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected list capped at 5, got %d", len(got))
	}
	if got[0].Confidence != 1 || got[1].Confidence != 0 {
		t.Fatalf("expected confidence clamped to [0,1], got %v and %v", got[0].Confidence, got[1].Confidence)
	}
}

func TestBuildPrompt_EmbedsDescription(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(`a boy says "hello" to a robot`)
	if !strings.Contains(prompt, `a boy says 'hello' to a robot`) {
		t.Fatalf("prompt does not embed description: %s", prompt)
	}
	if !strings.Contains(prompt, "Return 1-3 recommendations") {
		t.Fatalf("prompt missing guidelines")
	}
}

type fakeRecommender struct {
	recs []domain.Recommendation
	err  error
}

func (f *fakeRecommender) Name() string { return "fake" }

func (f *fakeRecommender) Recommend(context.Context, string) ([]domain.Recommendation, error) {
	return f.recs, f.err
}

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]domain.Media
	fail    map[string]bool
	queries []string
}

func (f *fakeSearcher) SearchByText(_ context.Context, query string, page, perPage int) (*domain.MediaPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if page != 1 || perPage != 5 {
		return nil, stdErrors.New("unexpected paging")
	}
	if f.fail[query] {
		return nil, errors.NewAPIError("search_by_text", 500, nil)
	}
	return &domain.MediaPage{Media: f.results[query]}, nil
}

func TestFinder_MatchesAndSortsByConfidence(t *testing.T) {
	t.Parallel()

	recs, err := ParseRecommendations(sampleRecommendations)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	searcher := &fakeSearcher{results: map[string][]domain.Media{
		"Steins;Gate": {{ID: 9253, Title: domain.MediaTitle{Romaji: "Steins;Gate"}}, {ID: 1}},
		"Re:Zero":     {{ID: 21355, Title: domain.MediaTitle{Romaji: "Re:Zero kara Hajimeru Isekai Seikatsu"}}},
	}}
	finder := NewFinder(&fakeRecommender{recs: recs}, searcher, newTestLogger())

	matches, err := finder.Find(context.Background(), "  a guy keeps dying and coming back  ")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Anime.ID != 21355 || matches[0].Confidence != 0.95 {
		t.Fatalf("expected Re:Zero first, got %+v", matches[0])
	}
	if matches[1].Anime.ID != 9253 || matches[1].Reason != "Time travel thriller" {
		t.Fatalf("expected first search hit for Steins;Gate, got %+v", matches[1])
	}
	if len(searcher.queries) != 3 {
		t.Fatalf("expected every recommendation searched, got %v", searcher.queries)
	}
}

func TestFinder_SkipsFailedLookups(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{
		results: map[string][]domain.Media{"B": {{ID: 2}}},
		fail:    map[string]bool{"A": true},
	}
	finder := NewFinder(&fakeRecommender{recs: []domain.Recommendation{
		{Title: "A", Reason: "r", Confidence: 0.9},
		{Title: "B", Reason: "r", Confidence: 0.2},
	}}, searcher, newTestLogger())

	matches, err := finder.Find(context.Background(), "something")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Anime.ID != 2 {
		t.Fatalf("expected only B, got %+v", matches)
	}
}

func TestFinder_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewFinder(nil, &fakeSearcher{}, nil).Find(context.Background(), "x"); !stdErrors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	finder := NewFinder(&fakeRecommender{}, &fakeSearcher{}, newTestLogger())
	var vErr *errors.ValidationError
	if _, err := finder.Find(context.Background(), "   "); !stdErrors.As(err, &vErr) {
		t.Fatalf("expected validation error for blank description, got %v", err)
	}
	if _, err := finder.Find(context.Background(), strings.Repeat("a", 501)); !stdErrors.As(err, &vErr) {
		t.Fatalf("expected validation error for long description, got %v", err)
	}

	upstream := stdErrors.New("quota exceeded")
	failing := NewFinder(&fakeRecommender{err: upstream}, &fakeSearcher{}, newTestLogger())
	if _, err := failing.Find(context.Background(), "x"); !stdErrors.Is(err, upstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}

	empty, err := finder.Find(context.Background(), "x")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil result, got %v, %v", empty, err)
	}
}

func TestNewRecommender_SelectsByPriority(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := NewRecommender(ctx, config.AIConfig{}, newTestLogger()); !stdErrors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	r, err := NewRecommender(ctx, config.AIConfig{OpenAIKey: "o", ClaudeKey: "c"}, newTestLogger())
	if err != nil || r.Name() != "openai" {
		t.Fatalf("expected openai, got %v, %v", r, err)
	}
	r, err = NewRecommender(ctx, config.AIConfig{ClaudeKey: "c", GeminiKey: "g"}, newTestLogger())
	if err != nil || r.Name() != "claude" {
		t.Fatalf("expected claude, got %v, %v", r, err)
	}
}

func TestOpenAIRecommender_ParsesChatCompletion(t *testing.T) {
	t.Parallel()

	models := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		model, _ := body["model"].(string)
		models <- model

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": sampleRecommendations},
			}},
		})
	}))
	defer server.Close()

	r := NewOpenAIRecommender(OpenAIOptions{APIKey: "test", Model: "gpt-test", BaseURL: server.URL + "/"})
	recs, err := r.Recommend(context.Background(), "time travel")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if got := <-models; got != "gpt-test" {
		t.Fatalf("expected model gpt-test, got %q", got)
	}
	if len(recs) != 3 || recs[0].Title != "Steins;Gate" {
		t.Fatalf("unexpected recommendations: %+v", recs)
	}
}

func TestOpenAIRecommender_MapsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	r := NewOpenAIRecommender(OpenAIOptions{APIKey: "bad", BaseURL: server.URL + "/"})
	_, err := r.Recommend(context.Background(), "x")
	var apiErr *errors.APIError
	if !stdErrors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected APIError 401, got %v", err)
	}
}

func TestClaudeRecommender_JoinsTextBlocks(t *testing.T) {
	t.Parallel()

	half := len(sampleRecommendations) / 2
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_1",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-test",
			"content": []map[string]any{
				{"type": "text", "text": sampleRecommendations[:half]},
				{"type": "text", "text": sampleRecommendations[half:]},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	defer server.Close()

	r := NewClaudeRecommender(ClaudeOptions{APIKey: "test", Model: "claude-test", BaseURL: server.URL + "/"})
	recs, err := r.Recommend(context.Background(), "time travel")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %+v", recs)
	}
}

func TestGeminiRecommender_ParsesCandidates(t *testing.T) {
	t.Parallel()

	paths := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case paths <- r.URL.Path:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": sampleRecommendations}},
				},
			}},
		})
	}))
	defer server.Close()

	r, err := NewGeminiRecommender(context.Background(), GeminiOptions{APIKey: "test", Model: "gemini-test", BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("NewGeminiRecommender failed: %v", err)
	}
	recs, err := r.Recommend(context.Background(), "time travel")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if got := <-paths; !strings.Contains(got, "gemini-test:generateContent") {
		t.Fatalf("unexpected request path %q", got)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %+v", recs)
	}
}
