package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// 저장소 백엔드 식별자
const (
	BackendFile     = "file"
	BackendValkey   = "valkey"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config: 애니메이션 디스코드 봇의 전체 동작에 필요한 설정을 담는 구조체
type Config struct {
	Discord      DiscordConfig
	AniList      AniListConfig
	AI           AIConfig
	Server       ServerConfig
	Valkey       ValkeyConfig
	Postgres     PostgresConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Logging      LoggingConfig
	Version      string
}

// DiscordConfig: 디스코드 봇 토큰 및 슬래시 명령 등록 범위 설정
type DiscordConfig struct {
	Token   string
	GuildID string // 비어 있으면 전역 명령으로 등록
}

// AniListConfig: AniList GraphQL 엔드포인트 설정
type AniListConfig struct {
	APIURL     string
	RatePerMin int
}

// AIConfig: 설명 기반 검색(/anime find)에 사용하는 AI 제공자 설정
type AIConfig struct {
	OpenAIKey   string
	OpenAIModel string
	ClaudeKey   string
	ClaudeModel string
	GeminiKey   string
	GeminiModel string
}

// Enabled: 하나 이상의 AI 제공자 키가 설정되어 있는지 확인한다.
func (c AIConfig) Enabled() bool {
	return c.OpenAIKey != "" || c.ClaudeKey != "" || c.GeminiKey != ""
}

// ServerConfig: 상태 확인 및 조회용 HTTP API 서버 설정 (Port 0 이면 비활성화)
type ServerConfig struct {
	Port         int
	APIKey       string // 비어 있으면 /api 인증을 건너뛴다
	AllowOrigins []string
}

// ValkeyConfig: 캐시 용도의 Redis(Valkey) 연결 설정
type ValkeyConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// PostgresConfig: PostgreSQL 연결 설정 (postgres 백엔드 선택 시 사용)
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// StorageConfig: 알림/관심 목록 영속 저장소 설정
type StorageConfig struct {
	Backend          string
	NotificationFile string
	WatchlistBackend string
	WatchlistFile    string
	SQLitePath       string
}

// NotificationConfig: 알림 정리(cleanup) 주기 설정
type NotificationConfig struct {
	CleanupInterval time.Duration
}

// LoggingConfig: 애플리케이션 로그 설정 (레벨, 디렉토리, 로테이션 정책)
type LoggingConfig struct {
	Level      string
	File       string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load: .env 파일 및 환경 변수로부터 설정을 로드하고, 기본값을 적용하여 Config 객체를 생성한다.
func Load() (*Config, error) {
	_ = godotenv.Load()

	valkeyCfg, err := loadValkeyConfig()
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	defaultWatchlistBackend := BackendFile
	if valkeyCfg.Enabled {
		defaultWatchlistBackend = BackendValkey
	}

	cfg := &Config{
		Discord: DiscordConfig{
			Token:   util.TrimSpace(getEnv("DISCORD_BOT_TOKEN", "")),
			GuildID: util.TrimSpace(getEnv("DISCORD_GUILD_ID", "")),
		},
		AniList: AniListConfig{
			APIURL:     getEnv("ANILIST_API", constants.APIConfig.AniListBaseURL),
			RatePerMin: getEnvInt("ANILIST_RATE_PER_MIN", constants.APIConfig.AniListRatePerMin),
		},
		AI: AIConfig{
			OpenAIKey:   util.TrimSpace(getEnv("OPENAI_API_KEY", "")),
			OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			ClaudeKey:   util.TrimSpace(getEnv("CLAUDE_API_KEY", "")),
			ClaudeModel: getEnv("CLAUDE_MODEL", "claude-3-5-haiku-latest"),
			GeminiKey:   util.TrimSpace(getEnv("GEMINI_API_KEY", "")),
			GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 30001),
			APIKey:       util.TrimSpace(getEnv("API_SECRET_KEY", "")),
			AllowOrigins: parseCommaSeparated(getEnv("CORS_ALLOW_ORIGINS", "")),
		},
		Valkey: valkeyCfg,
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", constants.DatabaseDefaults.Host),
			Port:     getEnvInt("POSTGRES_PORT", constants.DatabaseDefaults.Port),
			User:     getEnv("POSTGRES_USER", constants.DatabaseDefaults.User),
			Password: getEnv("POSTGRES_PASSWORD", constants.DatabaseDefaults.Password),
			Database: getEnv("POSTGRES_DB", constants.DatabaseDefaults.Database),
		},
		Storage: StorageConfig{
			Backend:          util.Normalize(getEnv("STORAGE_BACKEND", BackendFile)),
			NotificationFile: getEnv("STORAGE_FILE", "data/notifications.json"),
			WatchlistBackend: util.Normalize(getEnv("WATCHLIST_BACKEND", defaultWatchlistBackend)),
			WatchlistFile:    getEnv("WATCHLIST_FILE", "data/watchlist.json"),
			SQLitePath:       getEnv("SQLITE_PATH", "data/bot.db"),
		},
		Notification: NotificationConfig{
			CleanupInterval: getEnvDuration("NOTIFICATION_CLEANUP_INTERVAL", constants.NotificationConfig.CleanupInterval),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", "bot.log"),
			Dir:        getEnv("LOG_DIR", "logs"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Version: util.TrimSpace(getEnv("APP_VERSION", "1.0.0")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate: 필수 설정값이 누락되지 않았는지, 백엔드 조합이 올바른지 검증한다.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if c.Server.Port < 0 {
		return fmt.Errorf("SERVER_PORT must not be negative")
	}
	if c.Notification.CleanupInterval <= 0 {
		return fmt.Errorf("NOTIFICATION_CLEANUP_INTERVAL must be positive")
	}

	switch c.Storage.Backend {
	case BackendFile, BackendPostgres, BackendSQLite:
	case BackendValkey:
		if !c.Valkey.Enabled {
			return fmt.Errorf("STORAGE_BACKEND=valkey requires CACHE_HOST or REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Storage.WatchlistBackend {
	case BackendFile:
	case BackendValkey:
		if !c.Valkey.Enabled {
			return fmt.Errorf("WATCHLIST_BACKEND=valkey requires CACHE_HOST or REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown WATCHLIST_BACKEND %q", c.Storage.WatchlistBackend)
	}
	return nil
}

// loadValkeyConfig: REDIS_URL 이 있으면 우선 적용하고, 없으면 CACHE_* 값을 사용한다.
func loadValkeyConfig() (ValkeyConfig, error) {
	cfg := ValkeyConfig{
		Host:     getEnv("CACHE_HOST", ""),
		Port:     getEnvInt("CACHE_PORT", 6379),
		Password: getEnv("CACHE_PASSWORD", ""),
		DB:       getEnvInt("CACHE_DB", 0),
	}

	if raw := util.TrimSpace(os.Getenv("REDIS_URL")); raw != "" {
		parsed, err := parseRedisURL(raw)
		if err != nil {
			return ValkeyConfig{}, err
		}
		cfg = parsed
	}

	cfg.Enabled = cfg.Host != ""
	return cfg, nil
}

func parseRedisURL(raw string) (ValkeyConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ValkeyConfig{}, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return ValkeyConfig{}, fmt.Errorf("invalid REDIS_URL scheme %q", u.Scheme)
	}

	cfg := ValkeyConfig{
		Host: u.Hostname(),
		Port: 6379,
	}
	if port := u.Port(); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return ValkeyConfig{}, fmt.Errorf("invalid REDIS_URL port: %w", err)
		}
		cfg.Port = p
	}
	if u.User != nil {
		if pass, ok := u.User.Password(); ok {
			cfg.Password = pass
		}
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return ValkeyConfig{}, fmt.Errorf("invalid REDIS_URL db: %w", err)
		}
		cfg.DB = n
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := util.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
