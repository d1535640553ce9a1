// Package database: 알림 저장소가 쓰는 GORM 연결(PostgreSQL, SQLite)을 연다.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq" // PostgreSQL 드라이버 등록
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
)

// Service 는 하나의 DB 연결과 그 위의 GORM 핸들이다.
type Service struct {
	name   string
	db     *sql.DB
	gormDB *gorm.DB
}

// PostgresConfig 는 PostgreSQL 접속 정보다.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN: lib/pq 형식의 접속 문자열
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Database)
}

var silentGorm = &gorm.Config{
	Logger: gormLogger.Default.LogMode(gormLogger.Silent),
}

// OpenPostgres: lib/pq 로 연결 풀을 만들고 Ping 이 통과하면 GORM 을 그 위에 올린다.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*Service, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(constants.DatabaseConfig.MaxOpenConns)
	db.SetMaxIdleConns(constants.DatabaseConfig.MaxIdleConns)
	db.SetConnMaxLifetime(constants.DatabaseConfig.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout.DatabasePing)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), silentGorm)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	logger.Info("PostgreSQL connected",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Database),
	)
	return &Service{name: "postgres", db: db, gormDB: gormDB}, nil
}

// OpenSQLite: path 에 SQLite 파일을 연다 (순수 Go 드라이버). ":memory:" 는 인메모리 DB.
func OpenSQLite(path string, logger *slog.Logger) (*Service, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir failed: %w", err)
			}
		}
	}

	gormDB, err := gorm.Open(sqlite.Open(path), silentGorm)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// 단일 writer. 인메모리 DB 는 커넥션마다 별개다.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	logger.Info("SQLite opened", slog.String("path", path))
	return &Service{name: "sqlite", db: db, gormDB: gormDB}, nil
}

// GORM 핸들
func (s *Service) GORM() *gorm.DB {
	return s.gormDB
}

// Ping: 헬스 체크용
func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", s.name, err)
	}
	return nil
}

// Close 는 연결을 닫는다.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", s.name, err)
	}
	return nil
}
