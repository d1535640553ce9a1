package util

import (
	"fmt"
	"strings"
	"time"
)

// Discord 타임스탬프 스타일
const (
	TimestampRelative    = "R" // "in 2 hours"
	TimestampFull        = "F" // "Monday, December 25, 2023 3:30 PM"
	TimestampShort       = "f" // "December 25, 2023 3:30 PM"
	TimestampDate        = "D" // "December 25, 2023"
	TimestampShortTimeOf = "t" // "3:30 PM"
)

// DiscordTimestamp: 클라이언트 로컬 시간대로 렌더링되는 Discord 타임스탬프 마크업을 만든다.
func DiscordTimestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// FormatAirDate: 방영 일시 전체 표기 (<t:unix:F>)
func FormatAirDate(t time.Time) string {
	return DiscordTimestamp(t, TimestampFull)
}

// FormatRelative: 상대 시간 표기 (<t:unix:R>)
func FormatRelative(t time.Time) string {
	return DiscordTimestamp(t, TimestampRelative)
}

// FormatCompactDateTime: 목록용 짧은 일시 표기 (<t:unix:f>)
func FormatCompactDateTime(t time.Time) string {
	return DiscordTimestamp(t, TimestampShort)
}

// FormatCountdown: 남은 초를 "2 days 3 hours 5 minutes" 형태로 변환한다.
// 1분 미만이면 "less than a minute" 를 반환한다.
func FormatCountdown(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 {
		return "less than a minute"
	}
	return strings.Join(parts, " ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// CurrentSeason: 주어진 시각이 속한 AniList 시즌(WINTER/SPRING/SUMMER/FALL)과 연도를 반환한다.
// 12월은 다음 해 WINTER 로 취급한다.
func CurrentSeason(now time.Time) (string, int) {
	year := now.Year()
	switch now.Month() {
	case time.December:
		return "WINTER", year + 1
	case time.January, time.February:
		return "WINTER", year
	case time.March, time.April, time.May:
		return "SPRING", year
	case time.June, time.July, time.August:
		return "SUMMER", year
	default:
		return "FALL", year
	}
}
