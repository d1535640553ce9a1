package domain

import (
	"fmt"
	"time"
)

// NotificationEntry: 방영 알림 한 건. 저장소에 그대로 직렬화되며 타이머 핸들은 포함하지 않는다.
// AiringAt 은 Unix 밀리초 단위다.
type NotificationEntry struct {
	AnimeID   int    `json:"animeId"`
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
	AiringAt  int64  `json:"airingAt"`
	Episode   int    `json:"episode"`
}

// NotificationKey: "animeId-channelId-userId" 형식의 복합 키를 만든다.
func NotificationKey(animeID int, channelID, userID string) string {
	return fmt.Sprintf("%d-%s-%s", animeID, channelID, userID)
}

// Key: "<animeID>-<channelID>-<userID>" 복합 키
func (e NotificationEntry) Key() string {
	return NotificationKey(e.AnimeID, e.ChannelID, e.UserID)
}

// AiringTime: AiringAt 은 unix 밀리초 단위다.
func (e NotificationEntry) AiringTime() time.Time {
	return time.UnixMilli(e.AiringAt)
}

// NotificationCode: 알림 등록 결과 분류
type NotificationCode string

// NotificationCode 상수 목록.
const (
	NotificationOK             NotificationCode = "ok"
	NotificationNotInitialized NotificationCode = "not_initialized"
	NotificationNotFound       NotificationCode = "not_found"
	NotificationNoSchedule     NotificationCode = "no_schedule"
	NotificationFinished       NotificationCode = "finished"
	NotificationCancelled      NotificationCode = "cancelled"
	NotificationAlreadyAired   NotificationCode = "already_aired"
	NotificationAlreadyExists  NotificationCode = "already_exists"
	NotificationFailed         NotificationCode = "failed"
)

// NotificationResult: 알림 등록 결과. 실패도 에러가 아니라 값으로 전달된다.
type NotificationResult struct {
	Success    bool
	Code       NotificationCode
	Message    string
	Title      string
	Episode    int
	AiringDate *time.Time
}

// NewNotificationFailure: Success=false 결과를 만든다.
func NewNotificationFailure(code NotificationCode, message string) NotificationResult {
	return NotificationResult{
		Success: false,
		Code:    code,
		Message: message,
	}
}
