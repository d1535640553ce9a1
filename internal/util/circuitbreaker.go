package util

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitState: 서킷 브레이커의 상태 (닫힘, 열림, 반열림)
type CircuitState string

// CircuitState 상수 목록.
const (
	// CircuitStateClosed: 정상 작동 상태 (요청 허용)
	CircuitStateClosed CircuitState = "CLOSED"
	// CircuitStateOpen: 연속 실패로 인한 차단 상태 (요청 거부)
	CircuitStateOpen CircuitState = "OPEN"
	// CircuitStateHalfOpen: 대기 시간이 지나 한 번의 시험 요청을 허용하는 상태
	CircuitStateHalfOpen CircuitState = "HALF_OPEN"
)

func (s CircuitState) String() string {
	return string(s)
}

// CircuitBreaker: 장애 전파 방지를 위한 서킷 브레이커.
// 연속 실패가 임계치에 도달하면 resetTimeout 동안 요청을 차단한다.
type CircuitBreaker struct {
	state            CircuitState
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	nextRetryTime    time.Time
	now              func() time.Time
	logger           *slog.Logger
	mu               sync.Mutex
}

// NewCircuitBreaker: 새로운 서킷 브레이커 인스턴스를 생성한다.
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, logger *slog.Logger) *CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &CircuitBreaker{
		state:            CircuitStateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		logger:           logger,
	}
}

// SetClock: 테스트용 시각 소스를 지정한다.
func (cb *CircuitBreaker) SetClock(now func() time.Time) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.now = now
}

// GetState: 현재 상태를 반환한다. 대기 시간이 지난 OPEN 은 HALF_OPEN 으로 전이된다.
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateOpen && !cb.now().Before(cb.nextRetryTime) {
		cb.transitionTo(CircuitStateHalfOpen)
	}
	return cb.state
}

// CanExecute: 현재 요청 실행이 가능한지(서킷이 열려있지 않은지) 확인한다.
func (cb *CircuitBreaker) CanExecute() bool {
	return cb.GetState() != CircuitStateOpen
}

// RetryAfter: OPEN 상태에서 다음 시도까지 남은 시간. 그 외에는 0.
func (cb *CircuitBreaker) RetryAfter() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitStateOpen {
		return 0
	}
	return max(cb.nextRetryTime.Sub(cb.now()), 0)
}

// RecordSuccess: 요청 성공을 기록한다. HALF_OPEN 이었다면 CLOSED 로 복구한다.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateHalfOpen {
		cb.logger.Info("Circuit Breaker: Service recovered, transitioning to CLOSED")
		cb.transitionTo(CircuitStateClosed)
	}
	cb.failureCount = 0
}

// RecordFailure: 요청 실패를 기록한다. customTimeout 이 0 보다 크면 기본 대기 시간 대신 사용한다.
func (cb *CircuitBreaker) RecordFailure(customTimeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++

	timeout := cb.resetTimeout
	if customTimeout > 0 {
		timeout = customTimeout
	}

	cb.logger.Warn("Circuit Breaker: Failure recorded",
		slog.Int("count", cb.failureCount),
		slog.Int("threshold", cb.failureThreshold),
	)

	if cb.state == CircuitStateHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.nextRetryTime = cb.now().Add(timeout)
		cb.transitionTo(CircuitStateOpen)
	}
}

func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState

	nextRetry := "n/a"
	if newState == CircuitStateOpen {
		nextRetry = cb.nextRetryTime.Format(time.RFC3339)
	}

	cb.logger.Info("Circuit Breaker: State transition",
		slog.String("from", oldState.String()),
		slog.String("to", newState.String()),
		slog.Int("failure_count", cb.failureCount),
		slog.String("next_retry", nextRetry),
	)
}

// Reset: 서킷 브레이커 상태를 강제로 초기화(Closed, 실패 횟수 0)한다.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitStateClosed
	cb.failureCount = 0
	cb.nextRetryTime = time.Time{}
}

// GetStatus: 모니터링을 위해 현재 상태 스냅샷을 반환한다.
func (cb *CircuitBreaker) GetStatus() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{
		State:        cb.state,
		FailureCount: cb.failureCount,
	}
	if cb.state == CircuitStateOpen {
		next := cb.nextRetryTime
		status.NextRetryTime = &next
	}
	return status
}

// CircuitBreakerStatus: 서킷 브레이커의 상세 상태 정보 (스냅샷)
type CircuitBreakerStatus struct {
	State         CircuitState `json:"state"`
	FailureCount  int          `json:"failure_count"`
	NextRetryTime *time.Time   `json:"next_retry_time,omitempty"`
}
