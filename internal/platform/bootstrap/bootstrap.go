// Package bootstrap: 로거와 외부 연결(캐시, DB) 리소스를 설정으로부터 만든다.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kapu/anilist-discord-bot-go/internal/config"
	"github.com/kapu/anilist-discord-bot-go/internal/service/cache"
	"github.com/kapu/anilist-discord-bot-go/internal/service/database"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
)

// CacheResources: 초기화된 캐시 서비스 인스턴스와 리소스 해제(Close) 함수를 캡슐화한 구조체
type CacheResources struct {
	Service *cache.Service
	Close   func()
}

// DatabaseResources: GORM 핸들, 상태 확인(Ping), 리소스 해제(Close) 함수를 캡슐화한 구조체
type DatabaseResources struct {
	Backend string
	DB      *gorm.DB
	Ping    func(ctx context.Context) error
	Close   func()
}

// NewLogger: 설정(Config)을 기반으로 새로운 slog 로거 인스턴스를 생성합니다.
func NewLogger(cfg *config.Config, fileName string) (*slog.Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if fileName == "" {
		fileName = cfg.Logging.File
	}
	logger, err := util.NewLogger(util.LogConfig{
		Level:      cfg.Logging.Level,
		Dir:        cfg.Logging.Dir,
		File:       fileName,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// NewCacheResources: Valkey 설정을 기반으로 캐시 서비스를 초기화하고 리소스 객체를 반환합니다.
func NewCacheResources(cfg config.ValkeyConfig, logger *slog.Logger) (*CacheResources, error) {
	cacheSvc, err := cache.NewCacheService(cache.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}

	return &CacheResources{
		Service: cacheSvc,
		Close: func() {
			_ = cacheSvc.Close()
		},
	}, nil
}

// NewPostgresResources: PostgreSQL 설정을 기반으로 DB 서비스를 초기화하고 리소스 객체를 반환합니다.
func NewPostgresResources(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DatabaseResources, error) {
	dbSvc, err := database.OpenPostgres(ctx, database.PostgresConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}

	return &DatabaseResources{
		Backend: config.BackendPostgres,
		DB:      dbSvc.GORM(),
		Ping:    dbSvc.Ping,
		Close: func() {
			_ = dbSvc.Close()
		},
	}, nil
}

// NewSQLiteResources: 단일 파일 SQLite DB 를 열고 리소스 객체를 반환합니다.
func NewSQLiteResources(path string, logger *slog.Logger) (*DatabaseResources, error) {
	dbSvc, err := database.OpenSQLite(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite service: %w", err)
	}

	return &DatabaseResources{
		Backend: config.BackendSQLite,
		DB:      dbSvc.GORM(),
		Ping:    dbSvc.Ping,
		Close: func() {
			_ = dbSvc.Close()
		},
	}, nil
}
