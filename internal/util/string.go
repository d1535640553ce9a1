package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TruncateString: 주어진 문자열을 최대 길이(Rune 기준)로 자르고, 초과 시 "..."을 붙여 반환합니다.
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TrimSpace: 문자열 양쪽 끝의 공백을 제거한다. (strings.TrimSpace 래퍼)
func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// Normalize: 문자열을 소문자로 변환하고 양쪽 공백을 제거합니다.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TitleCase: AniList 열거값(RELEASING, NOT_YET_RELEASED, TV_SHORT 등)을 "Not Yet Released" 처럼 사람이 읽는 형태로 바꾼다.
func TitleCase(enum string) string {
	if enum == "" {
		return ""
	}
	words := strings.ReplaceAll(strings.ToLower(enum), "_", " ")
	return cases.Title(language.English).String(words)
}
