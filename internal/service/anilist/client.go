// Package anilist: AniList GraphQL API 클라이언트와 애니메이션 조회 서비스를 제공한다.
package anilist

import (
	"bytes"
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// Requester: GraphQL 요청 수행 인터페이스 (Service 테스트에서 교체 가능)
type Requester interface {
	Query(ctx context.Context, operation, query string, variables map[string]any, dest any) error
}

// ClientConfig 는 APIClient 설정이다.
type ClientConfig struct {
	BaseURL    string
	RatePerMin int
	Burst      int
	HTTPClient *http.Client
}

// APIClient: AniList GraphQL 엔드포인트 클라이언트.
// 분당 요청 제한, 지수 백오프 재시도, 서킷 브레이커를 포함한다.
type APIClient struct {
	httpClient  *http.Client
	baseURL     string
	logger      *slog.Logger
	rateLimiter *rate.Limiter
	breaker     *util.CircuitBreaker
	maxAttempts int
	backoff     func(attempt int) time.Duration
}

var _ Requester = (*APIClient)(nil)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// NewAPIClient: 새로운 AniList API 클라이언트를 생성한다.
func NewAPIClient(cfg ClientConfig, logger *slog.Logger) *APIClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.APIConfig.AniListBaseURL
	}
	if cfg.RatePerMin <= 0 {
		cfg.RatePerMin = constants.APIConfig.AniListRatePerMin
	}
	if cfg.Burst <= 0 {
		cfg.Burst = constants.APIConfig.AniListBurst
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: constants.APIConfig.AniListTimeout}
	}

	return &APIClient{
		httpClient:  cfg.HTTPClient,
		baseURL:     cfg.BaseURL,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMin)), cfg.Burst),
		breaker: util.NewCircuitBreaker(
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		maxAttempts: constants.RetryConfig.MaxAttempts,
		backoff:     computeDelay,
	}
}

// CircuitStatus: 모니터링용 서킷 브레이커 상태
func (c *APIClient) CircuitStatus() util.CircuitBreakerStatus {
	return c.breaker.GetStatus()
}

// Query: GraphQL 쿼리를 실행하고 data 필드를 dest 로 디코딩한다.
// 404 응답은 domain.ErrAnimeNotFound 로 변환된다.
func (c *APIClient) Query(ctx context.Context, operation, query string, variables map[string]any, dest any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	if !c.breaker.CanExecute() {
		retryAfter := c.breaker.RetryAfter()
		c.logger.Warn("AniList circuit breaker is open",
			slog.String("operation", operation),
			slog.Duration("retry_after", retryAfter),
		)
		return &errors.CircuitOpenError{RetryAfterMs: retryAfter.Milliseconds()}
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return err
			}
		}

		data, err := c.doOnce(ctx, operation, payload)
		if err == nil {
			c.breaker.RecordSuccess()
			if dest == nil {
				return nil
			}
			if err := json.Unmarshal(data, dest); err != nil {
				return errors.NewAPIError(operation, http.StatusOK, fmt.Errorf("decode data: %w", err))
			}
			return nil
		}

		var apiErr *errors.APIError
		if !stdErrors.As(err, &apiErr) || !apiErr.Retryable() {
			return err
		}

		lastErr = err
		timeout := time.Duration(0)
		if apiErr.StatusCode == http.StatusTooManyRequests {
			timeout = constants.CircuitBreakerConfig.RateLimitTimeout
		}
		c.breaker.RecordFailure(timeout)
		if !c.breaker.CanExecute() {
			break
		}

		c.logger.Warn("AniList request failed, retrying",
			slog.String("operation", operation),
			slog.Int("attempt", attempt+1),
			slog.Int("status", apiErr.StatusCode),
			slog.Any("error", err),
		)
	}

	return lastErr
}

func (c *APIClient) doOnce(ctx context.Context, operation string, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewAPIError(operation, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAPIError(operation, 0, fmt.Errorf("read response: %w", err))
	}

	var envelope graphQLResponse
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode == http.StatusNotFound || hasNotFound(envelope.Errors) {
		return nil, domain.ErrAnimeNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, errors.NewAPIError(operation, resp.StatusCode, stdErrors.New(firstMessage(envelope.Errors, resp.Status)))
	}
	if decodeErr != nil {
		return nil, errors.NewAPIError(operation, resp.StatusCode, fmt.Errorf("decode envelope: %w", decodeErr))
	}
	if len(envelope.Errors) > 0 {
		return nil, errors.NewAPIError(operation, resp.StatusCode, fmt.Errorf("graphql: %s", envelope.Errors[0].Message))
	}
	return envelope.Data, nil
}

func hasNotFound(errs []graphQLError) bool {
	for _, e := range errs {
		if e.Status == http.StatusNotFound {
			return true
		}
	}
	return false
}

func firstMessage(errs []graphQLError, fallback string) string {
	if len(errs) > 0 && errs[0].Message != "" {
		return errs[0].Message
	}
	return fallback
}

func computeDelay(attempt int) time.Duration {
	base := constants.RetryConfig.BaseDelay * time.Duration(math.Pow(2, float64(attempt)))
	jitter := time.Duration(rand.Float64() * float64(constants.RetryConfig.Jitter))
	return base + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ParseID: 검색어가 양의 정수이면 AniList ID 로 해석한다.
func ParseID(query string) (int, bool) {
	id, err := strconv.Atoi(util.TrimSpace(query))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
