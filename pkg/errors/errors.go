// Package errors: 애니메이션 봇 전체에서 사용되는 에러 타입들을 정의한다.
// 표준 Go 에러 스타일(Unwrap 지원 구조체)을 따른다.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// APIError: 외부 API 호출 중 발생한 에러 (AniList, OpenAI, Claude 등)
type APIError struct {
	Operation  string // 수행 중이던 API 작업
	StatusCode int    // HTTP 상태 코드 (0이면 네트워크 오류)
	Err        error  // 원인 에러
}

func (e APIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("api error operation=%s status=%d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("api error operation=%s status=%d: %v", e.Operation, e.StatusCode, e.Err)
}

func (e APIError) Unwrap() error { return e.Err }

// NewAPIError: API 에러를 생성한다.
func NewAPIError(operation string, statusCode int, cause error) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        cause,
	}
}

// Retryable: 재시도할 가치가 있는 상태 코드인지 확인한다. (네트워크 오류, 429, 5xx)
func (e APIError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// CacheError: 캐시 작업 중 발생한 에러
type CacheError struct {
	Operation string // get, set, delete 등
	Key       string // 캐시 키
	Err       error  // 원인 에러
}

func (e CacheError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cache error operation=%s key=%s", e.Operation, e.Key)
	}
	return fmt.Sprintf("cache error operation=%s key=%s: %v", e.Operation, e.Key, e.Err)
}

func (e CacheError) Unwrap() error { return e.Err }

// NewCacheError: 캐시 에러를 생성한다.
func NewCacheError(operation, key string, cause error) *CacheError {
	return &CacheError{
		Operation: operation,
		Key:       key,
		Err:       cause,
	}
}

// StoreError: 영속 저장소(파일, valkey, DB) 작업 중 발생한 에러
type StoreError struct {
	Backend   string // file, valkey, postgres, sqlite
	Operation string // put, get, delete, list
	Key       string
	Err       error
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store error backend=%s operation=%s key=%s", e.Backend, e.Operation, e.Key)
	}
	return fmt.Sprintf("store error backend=%s operation=%s key=%s: %v", e.Backend, e.Operation, e.Key, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

// NewStoreError: 저장소 에러를 생성한다.
func NewStoreError(backend, operation, key string, cause error) *StoreError {
	return &StoreError{
		Backend:   backend,
		Operation: operation,
		Key:       key,
		Err:       cause,
	}
}

// CircuitOpenError: 서킷 브레이커가 열려있을 때 발생하는 에러
type CircuitOpenError struct {
	RetryAfterMs int64
}

func (e CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit breaker open retry_after_ms=%d", e.RetryAfterMs)
}

// ValidationError: 입력 검증 실패 에러
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error field=%s: %s", e.Field, e.Message)
}

// NewValidationError: 검증 에러를 생성한다.
func NewValidationError(message, field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ServiceError: 내부 서비스 로직 에러
type ServiceError struct {
	Service   string // 서비스 이름
	Operation string // 작업 이름
	Err       error  // 원인 에러
}

func (e ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("service error service=%s operation=%s", e.Service, e.Operation)
	}
	return fmt.Sprintf("service error service=%s operation=%s: %v", e.Service, e.Operation, e.Err)
}

func (e ServiceError) Unwrap() error { return e.Err }

// NewServiceError: 서비스 에러를 생성한다.
func NewServiceError(service, operation string, cause error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Err:       cause,
	}
}

// IsValidationError: 체인에 ValidationError 가 있는지 확인한다.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return stdErrors.As(err, &verr)
}
