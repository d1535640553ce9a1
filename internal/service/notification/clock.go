package notification

import "time"

// Timer: 예약된 콜백 핸들. Stop 이 true 를 반환하면 콜백은 실행되지 않는다.
type Timer interface {
	Stop() bool
}

// Clock: 현재 시각과 일회성 타이머를 제공한다. 테스트에서는 가짜 구현으로 교체된다.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// SystemClock: time 패키지 기반 Clock
func SystemClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
