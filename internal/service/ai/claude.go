package ai

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// ClaudeOptions 는 Anthropic 제공자 설정이다.
type ClaudeOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// ClaudeRecommender 는 Messages API 로 추천을 받는다.
type ClaudeRecommender struct {
	client anthropic.Client
	model  string
}

// NewClaudeRecommender 는 Claude 제공자를 생성한다.
func NewClaudeRecommender(opts ClaudeOptions) *ClaudeRecommender {
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
		model = "claude-3-5-haiku-latest"
	}
	return &ClaudeRecommender{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
	}
}

// Name 는 동작을 수행한다.
func (r *ClaudeRecommender) Name() string { return "claude" }

// Recommend: 텍스트 블록만 이어 붙여 파싱한다.
func (r *ClaudeRecommender) Recommend(ctx context.Context, description string) ([]domain.Recommendation, error) {
	msg, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: int64(constants.AIInputLimits.MaxOutputTokens),
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(description))),
		},
	})
	if err != nil {
		status := 0
		var apiErr *anthropic.Error
		if stdErrors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return nil, errors.NewAPIError("claude_recommend", status, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("claude: %w", ErrEmptyResponse)
	}
	return ParseRecommendations(sb.String())
}
