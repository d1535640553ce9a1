package ai

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// OpenAIOptions 는 OpenAI 제공자 설정이다. BaseURL 은 테스트나 호환 엔드포인트용이다.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIRecommender 는 Chat Completions API 로 추천을 받는다.
type OpenAIRecommender struct {
	client openai.Client
	model  string
}

// NewOpenAIRecommender 는 OpenAI 제공자를 생성한다.
func NewOpenAIRecommender(opts OpenAIOptions) *OpenAIRecommender {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(1),
		option.WithRequestTimeout(constants.APIConfig.AITimeout),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIRecommender{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}
}

// Name 는 동작을 수행한다.
func (r *OpenAIRecommender) Name() string { return "openai" }

// Recommend: chat completion 응답 본문을 추천 목록으로 파싱한다.
func (r *OpenAIRecommender) Recommend(ctx context.Context, description string) ([]domain.Recommendation, error) {
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(description)),
		},
		Temperature:         openai.Float(0.3),
		MaxCompletionTokens: openai.Int(int64(constants.AIInputLimits.MaxOutputTokens)),
	})
	if err != nil {
		return nil, errors.NewAPIError("openai_recommend", statusOf(err), err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return ParseRecommendations(resp.Choices[0].Message.Content)
}

func statusOf(err error) int {
	var apiErr *openai.Error
	if stdErrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
