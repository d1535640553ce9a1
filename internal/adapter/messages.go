package adapter

import "fmt"

// UIEmoji: 사용자 메시지에 사용하는 이모지 모음입니다.
type UIEmoji struct {
	Success string
	Error   string
	Alarm   string
	Muted   string
	Cancel  string
	List    string
	Search  string
	Robot   string
	Target  string
	Party   string
	Link    string
}

// DefaultEmoji: 모든 사용자 메시지에 사용되는 이모지 단일 정의다.
var DefaultEmoji = UIEmoji{
	Success: "✅",
	Error:   "❌",
	Alarm:   "🔔",
	Muted:   "🔕",
	Cancel:  "🚫",
	List:    "📋",
	Search:  "🔍",
	Robot:   "🤖",
	Target:  "🎯",
	Party:   "🎉",
	Link:    "🔗",
}

// MessageBuilder: 공통 메시지 패턴을 생성합니다.
type MessageBuilder struct {
	emoji UIEmoji
}

// NewMessageBuilder: 기본 이모지를 사용하는 MessageBuilder를 생성합니다.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{emoji: DefaultEmoji}
}

// ErrorMessage: 에러 메시지를 생성합니다.
func (mb *MessageBuilder) ErrorMessage(message string) string {
	return fmt.Sprintf("%s %s", mb.emoji.Error, message)
}

// SuccessMessage: 성공 메시지를 생성합니다.
func (mb *MessageBuilder) SuccessMessage(message string) string {
	return fmt.Sprintf("%s %s", mb.emoji.Success, message)
}

// EmptyMessage: 빈 상태 메시지를 생성합니다.
func (mb *MessageBuilder) EmptyMessage(emoji, message string) string {
	return fmt.Sprintf("%s %s", emoji, message)
}

var defaultMessageBuilder = NewMessageBuilder()

// ErrorMessage: 전역 MessageBuilder로 에러 메시지를 생성합니다.
func ErrorMessage(message string) string {
	return defaultMessageBuilder.ErrorMessage(message)
}

// SuccessMessage: 전역 MessageBuilder로 성공 메시지를 생성합니다.
func SuccessMessage(message string) string {
	return defaultMessageBuilder.SuccessMessage(message)
}

// EmptyMessage: 전역 MessageBuilder로 메시지를 생성합니다.
func EmptyMessage(emoji, message string) string {
	return defaultMessageBuilder.EmptyMessage(emoji, message)
}

// 사용자 안내/에러 메시지 상수
const (
	// search
	ErrNeedSearchQuery = "Please provide an anime name to search for."
	MsgNoAnimeForQuery = "No anime found for \"%s\"."
	ErrSearchFailed    = "An error occurred while searching for anime."

	// next
	ErrNeedValidAnimeID = "Please provide a valid anime ID."
	MsgNoAnimeWithID    = "No anime found with ID %d."
	ErrFetchAnimeFailed = "An error occurred while fetching anime data."

	// season
	ErrInvalidSeason     = "Invalid season. Please use: winter, spring, summer, or fall."
	MsgNoSeasonAnime     = "No anime found for %s %d."
	ErrSeasonFetchFailed = "An error occurred while fetching seasonal anime."

	// release
	MsgNoReleasingAnime   = "No releasing anime found."
	ErrReleaseFetchFailed = "An error occurred while fetching releasing anime."

	// find
	ErrFindDisabled       = "The find command is disabled because no AI API key is configured. Please set the OPENAI_API_KEY, CLAUDE_API_KEY or GEMINI_API_KEY environment variable to use AI-powered anime search."
	ErrNeedDescription    = "Please provide a description to search for anime."
	ErrDescriptionTooLong = "Please keep the description under %d characters."
	MsgNoFindMatch        = "No anime found matching the description: \"%s\""
	ErrFindFailed         = "An error occurred while finding anime. Please try again with a different description."

	// notify / watchlist
	ErrNeedAnimeIDForAction  = "Please provide an anime ID for this action."
	ErrUnknownNotifyAction   = "Unknown notify action."
	ErrUnknownWatchlistAct   = "Unknown watchlist action."
	MsgNoActiveNotification  = "No active notification found for this anime."
	MsgNoNotifications       = "You have no active episode notifications."
	ErrNotificationsFailed   = "An error occurred while fetching your notifications."
	ErrNotifyServiceDisabled = "Notification service is not available."
	MsgWatchlistEmpty        = "Your watchlist is empty."
	ErrWatchlistFetchFailed  = "An error occurred while fetching your watchlist."

	// 공통
	ErrUnknownCommand          = "Unknown subcommand."
	ErrDisplayHelpFailed       = "Unable to display help right now."
	ErrCommandProcessingFailed = "An error occurred while processing the %s command."
	ErrExternalAPICallFailed   = "AniList is temporarily unavailable. Please try again later."
	ErrStorageUnavailable      = "Storage is temporarily unavailable. Please try again later."
	ErrDiscordRequestFailed    = "Discord rejected the response. Please try again."
)
