package anilist

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

var (
	lineBreakPattern   = regexp.MustCompile(`(?i)<br\s*/?>`)
	blankLinesPattern  = regexp.MustCompile(`\n{3,}`)
	sourceLinePattern  = regexp.MustCompile(`(?i)\(source:[^)]*\)`)
	inlineSpacePattern = regexp.MustCompile(`[ \t]+`)
)

// CleanDescription: AniList HTML 설명을 Discord 에 표시할 평문으로 바꾸고 maxLen 으로 자른다.
func CleanDescription(html string, maxLen int) string {
	if util.TrimSpace(html) == "" {
		return ""
	}

	normalized := lineBreakPattern.ReplaceAllString(html, "\n")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(normalized))
	text := normalized
	if err == nil {
		text = doc.Text()
	}

	text = sourceLinePattern.ReplaceAllString(text, "")
	text = inlineSpacePattern.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = util.TrimSpace(line)
	}
	text = blankLinesPattern.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	text = util.TrimSpace(text)

	if maxLen > 0 {
		text = util.TruncateString(text, maxLen)
	}
	return text
}
