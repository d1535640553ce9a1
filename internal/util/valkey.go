package util

import (
	"errors"

	"github.com/valkey-io/valkey-go"
)

// IsValkeyNil: 키 없음(nil 응답) 에러인지 확인한다. %w 로 감싼 에러도 판별한다.
func IsValkeyNil(err error) bool {
	if err == nil {
		return false
	}
	if valkey.IsValkeyNil(err) {
		return true
	}
	var verr *valkey.ValkeyError
	return errors.As(err, &verr) && verr.IsNil()
}
