// Package ai: 설명 문장으로 애니메이션 제목을 추천받는 LLM 제공자들을 묶는다.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

var (
	// ErrNotConfigured 는 AI 제공자 키가 하나도 없을 때 반환된다.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrEmptyResponse 는 모델이 빈 응답을 돌려줬을 때 반환된다.
	ErrEmptyResponse = errors.New("empty ai response")
)

// Recommender: 설명으로부터 추천 목록을 만드는 제공자
type Recommender interface {
	Name() string
	Recommend(ctx context.Context, description string) ([]domain.Recommendation, error)
}

const systemPrompt = "You are an anime expert. You help people find anime based on descriptions. Always respond with valid JSON only."

const userPromptTemplate = `Based on this description: "%s"

Please recommend anime titles that match this description. Return your response as a JSON array of objects with the following structure:
[
  {
    "title": "Exact anime title",
    "reason": "Brief explanation of why this matches",
    "confidence": 0.95
  }
]

Guidelines:
- Return 1-3 recommendations
- Use exact anime titles (romaji or English)
- Confidence should be between 0.0 and 1.0
- Only return valid JSON, no other text
- Focus on popular/well-known anime`

// BuildPrompt 는 사용자 프롬프트를 만든다.
func BuildPrompt(description string) string {
	return fmt.Sprintf(userPromptTemplate, strings.ReplaceAll(description, `"`, `'`))
}

// NewRecommender: 설정된 키 기준으로 OpenAI > Claude > Gemini 순서로 제공자를 고른다.
func NewRecommender(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Recommender, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		r   Recommender
		err error
	)
	switch {
	case cfg.OpenAIKey != "":
		r = NewOpenAIRecommender(OpenAIOptions{APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel})
	case cfg.ClaudeKey != "":
		r = NewClaudeRecommender(ClaudeOptions{APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel})
	case cfg.GeminiKey != "":
		r, err = NewGeminiRecommender(ctx, GeminiOptions{APIKey: cfg.GeminiKey, Model: cfg.GeminiModel})
	default:
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, err
	}

	logger.Info("AI recommender selected", slog.String("provider", r.Name()))
	return r, nil
}

// ParseRecommendations: 모델 응답에서 JSON 배열을 추출해 유효한 항목만 남긴다.
// 코드 펜스(```json)나 앞뒤 설명 문장이 섞여 있어도 처리한다.
func ParseRecommendations(text string) ([]domain.Recommendation, error) {
	payload := extractJSONArray(text)
	if payload == "" {
		return nil, ErrEmptyResponse
	}

	var raw []domain.Recommendation
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}

	result := make([]domain.Recommendation, 0, len(raw))
	for _, rec := range raw {
		rec.Title = strings.TrimSpace(rec.Title)
		rec.Reason = strings.TrimSpace(rec.Reason)
		if rec.Title == "" || rec.Reason == "" {
			continue
		}
		rec.Confidence = min(max(rec.Confidence, 0), 1)
		result = append(result, rec)
		if len(result) == constants.AIInputLimits.MaxRecommendations {
			break
		}
	}
	return result, nil
}

func extractJSONArray(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(text, "```"); ok {
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.LastIndex(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		text = strings.TrimSpace(rest)
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}
