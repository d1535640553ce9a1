package constants

import "time"

// CacheTTL: 캐시/저장소 레코드 보관 기간
var CacheTTL = struct {
	AnimeDetails    time.Duration
	Watchlist       time.Duration
	NotificationPad time.Duration
	NotificationMin time.Duration
}{
	AnimeDetails:    10 * time.Minute,    // 10분 - 애니메이션 상세 (다음 방영 정보 포함)
	Watchlist:       30 * 24 * time.Hour, // 30일 - 관심 목록 (추가 시마다 갱신)
	NotificationPad: 1 * time.Hour,       // 방영 시각 이후 1시간까지 보관
	NotificationMin: 60 * time.Second,    // 최소 보관 시간
}

// CacheKeys 는 Valkey 키 접두사 모음이다.
var CacheKeys = struct {
	NotificationPrefix string
	WatchlistPrefix    string
	AnimeDetailsPrefix string
}{
	NotificationPrefix: "notification:",
	WatchlistPrefix:    "watchlist:user:",
	AnimeDetailsPrefix: "anilist:media:",
}

// ValkeyConfig: valkey 클라이언트 연결 기본값
var ValkeyConfig = struct {
	ReadyTimeout      time.Duration
	ConnWriteTimeout  time.Duration
	DialTimeout       time.Duration
	BlockingPoolSize  int
	PipelineMultiplex int
}{
	ReadyTimeout:      5 * time.Second,
	ConnWriteTimeout:  3 * time.Second,
	DialTimeout:       5 * time.Second,
	BlockingPoolSize:  100,
	PipelineMultiplex: 4,
}

// NotificationConfig 는 알림 스케줄러 기본 설정이다.
var NotificationConfig = struct {
	CleanupInterval time.Duration
	DispatchTimeout time.Duration
	PersistTimeout  time.Duration
	LoadTimeout     time.Duration
}{
	CleanupInterval: 1 * time.Hour,
	DispatchTimeout: 30 * time.Second,
	PersistTimeout:  5 * time.Second,
	LoadTimeout:     30 * time.Second,
}

// AIInputLimits: 추천 요청 입력/출력 상한
var AIInputLimits = struct {
	MaxQueryLength     int
	MaxRecommendations int
	MaxOutputTokens    int
}{
	MaxQueryLength:     500,
	MaxRecommendations: 5,
	MaxOutputTokens:    1024,
}

// RetryConfig: AniList 요청 재시도 (지수 백오프)
var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

// CircuitBreakerConfig: 연속 실패 시 AniList 호출 차단
var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	RateLimitTimeout time.Duration
}{
	FailureThreshold: 3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:     30 * time.Second, // 기본 재시도 대기 시간 (30초)
	RateLimitTimeout: 1 * time.Minute,  // AniList 429 는 분 단위로 풀린다
}

// APIConfig 는 패키지 변수다.
var APIConfig = struct {
	AniListBaseURL    string
	AniListTimeout    time.Duration
	AniListRatePerMin int
	AniListBurst      int
	OpenAIBaseURL     string
	ClaudeBaseURL     string
	AITimeout         time.Duration
}{
	AniListBaseURL:    "https://graphql.anilist.co",
	AniListTimeout:    15 * time.Second,
	AniListRatePerMin: 90,
	AniListBurst:      5,
	OpenAIBaseURL:     "https://api.openai.com/v1",
	ClaudeBaseURL:     "https://api.anthropic.com/v1",
	AITimeout:         30 * time.Second,
}

// PaginationConfig 는 패키지 변수다.
var PaginationConfig = struct {
	SearchPerPage   int
	ReleasePerPage  int
	SeasonPerPage   int
	SeasonPerEmbed  int
	MaxEmbedFields  int
	MaxEmbedsPerMsg int
}{
	SearchPerPage:   5,
	ReleasePerPage:  15,
	SeasonPerPage:   50,
	SeasonPerEmbed:  20,
	MaxEmbedFields:  25, // Discord Embed 필드 최대 개수
	MaxEmbedsPerMsg: 10, // 메시지 하나에 실을 수 있는 Embed 최대 개수
}

// StringLimits 는 패키지 변수다.
var StringLimits = struct {
	EmbedTitle       int
	EmbedDescription int
	EmbedFieldName   int
	EmbedFieldValue  int
	Synopsis         int
}{
	EmbedTitle:       256,
	EmbedDescription: 4096,
	EmbedFieldName:   256,
	EmbedFieldValue:  1024,
	Synopsis:         400,
}

// EmbedColors 는 Discord Embed 색상이다.
var EmbedColors = struct {
	Primary int
	Success int
	Error   int
	Warning int
	Muted   int
}{
	Primary: 0x02A9FF, // AniList 블루
	Success: 0x00FF00,
	Error:   0xFF0000,
	Warning: 0xFFA500,
	Muted:   0x808080,
}

// AppTimeout 는 앱 빌드/종료 타임아웃 설정이다.
var AppTimeout = struct {
	Build    time.Duration
	Shutdown time.Duration
}{
	Build:    30 * time.Second,
	Shutdown: 10 * time.Second,
}

// ServerTimeout 는 HTTP 서버 타임아웃이다.
var ServerTimeout = struct {
	ReadHeader time.Duration
	Idle       time.Duration
}{
	ReadHeader: 5 * time.Second,
	Idle:       60 * time.Second,
}

// ServerConfig 는 서버 기본 설정이다.
var ServerConfig = struct {
	TrustedProxies []string
}{
	TrustedProxies: []string{"127.0.0.1", "::1"},
}

// CORSConfig 는 CORS 기본 설정이다.
var CORSConfig = struct {
	AllowMethods []string
	AllowHeaders []string
}{
	AllowMethods: []string{"GET", "OPTIONS"},
	AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
}

// RequestTimeout 는 HTTP 요청 및 서비스 타임아웃 설정
var RequestTimeout = struct {
	APIRequest   time.Duration
	BotCommand   time.Duration
	DatabasePing time.Duration
}{
	APIRequest:   10 * time.Second,
	BotCommand:   45 * time.Second,
	DatabasePing: 5 * time.Second,
}

// DatabaseConfig 는 데이터베이스 연결 설정이다.
var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	MaxOpenConns:    10,
	MaxIdleConns:    2,
	ConnMaxLifetime: 5 * time.Minute,
}

// DatabaseDefaults 는 PostgreSQL 기본값이다. (env 미설정 시)
var DatabaseDefaults = struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}{
	Host:     "localhost",
	Port:     5432,
	User:     "anime_bot",
	Password: "anime_bot",
	Database: "anime_bot",
}

// CommandConfig 는 슬래시 명령 처리 설정이다.
var CommandConfig = struct {
	TitleLookupConcurrency int
	MinReleasePerPage      int
	MaxReleasePerPage      int
}{
	TitleLookupConcurrency: 5, // 목록 명령의 제목 조회 동시 실행 수
	MinReleasePerPage:      1,
	MaxReleasePerPage:      25, // Discord 옵션 max_value 와 일치
}
