package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// GeminiOptions 는 Gemini 제공자 설정이다.
type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiRecommender 는 GenerateContent 를 JSON 응답 모드로 호출한다.
type GeminiRecommender struct {
	client *genai.Client
	model  string
}

// NewGeminiRecommender 는 Gemini 제공자를 생성한다.
func NewGeminiRecommender(ctx context.Context, opts GeminiOptions) (*GeminiRecommender, error) {
	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: opts.BaseURL,
			Timeout: genai.Ptr(constants.APIConfig.AITimeout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiRecommender{client: client, model: model}, nil
}

// Name 는 동작을 수행한다.
func (r *GeminiRecommender) Name() string { return "gemini" }

// Recommend: JSON 응답 모드로 추천 목록을 받는다.
func (r *GeminiRecommender) Recommend(ctx context.Context, description string) ([]domain.Recommendation, error) {
	contents := []*genai.Content{genai.NewContentFromText(BuildPrompt(description), genai.RoleUser)}
	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   int32(constants.AIInputLimits.MaxOutputTokens),
	})
	if err != nil {
		return nil, errors.NewAPIError("gemini_recommend", 0, err)
	}
	return ParseRecommendations(resp.Text())
}
