package domain

// CommandType 는 /anime 하위 명령 식별자다.
type CommandType string

// CommandType 상수 목록.
const (
	CommandSearch    CommandType = "search"
	CommandNext      CommandType = "next"
	CommandSeason    CommandType = "season"
	CommandRelease   CommandType = "release"
	CommandFind      CommandType = "find"
	CommandNotify    CommandType = "notify"
	CommandWatchlist CommandType = "watchlist"
	CommandHelp      CommandType = "help"
	CommandUnknown   CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

// IsValid: 알 수 없는 하위 명령이면 false
func (c CommandType) IsValid() bool {
	switch c {
	case CommandSearch, CommandNext, CommandSeason, CommandRelease, CommandFind,
		CommandNotify, CommandWatchlist, CommandHelp, CommandUnknown:
		return true
	default:
		return false
	}
}

// 알림/관심 목록 명령의 action 값
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionCancel = "cancel"
	ActionList   = "list"
)
