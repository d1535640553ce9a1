package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// FileStore: 전체 알림 목록을 하나의 JSON 배열 파일로 보관한다.
// 변경이 있을 때마다 컬렉션 전체를 임시 파일에 쓰고 rename 으로 교체한다.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	loaded  bool
	records map[string]domain.NotificationEntry
}

var _ Store = (*FileStore)(nil)

// NewFileStore: path 의 JSON 배열 파일을 쓴다. 파일은 첫 접근 때 읽고, 변경마다 통째로 다시 쓴다.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:    path,
		logger:  logger,
		records: make(map[string]domain.NotificationEntry),
	}
}

// Put: 레코드를 추가/갱신하고 파일을 다시 쓴다. ttlHint 는 무시한다.
func (s *FileStore) Put(ctx context.Context, key string, rec domain.NotificationEntry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}

	prev, existed := s.records[key]
	s.records[key] = rec
	if err := s.flush(); err != nil {
		if existed {
			s.records[key] = prev
		} else {
			delete(s.records, key)
		}
		return errors.NewStoreError(backendFile, "put", key, err)
	}
	return nil
}

// Get: 키가 없으면 found=false
func (s *FileStore) Get(ctx context.Context, key string) (domain.NotificationEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return domain.NotificationEntry{}, false, err
	}
	rec, ok := s.records[key]
	return rec, ok, nil
}

// Delete: 키가 있으면 삭제하고 파일을 다시 쓴다.
func (s *FileStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return false, err
	}

	rec, ok := s.records[key]
	if !ok {
		return false, nil
	}
	delete(s.records, key)
	if err := s.flush(); err != nil {
		s.records[key] = rec
		return false, errors.NewStoreError(backendFile, "delete", key, err)
	}
	return true, nil
}

// ListKeys: prefix 가 비어 있으면 전체 키
func (s *FileStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ensureLoaded: 최초 접근 시 파일을 읽는다.
// 파일이 없거나 비어있거나 "null" 이면 빈 목록, 파싱 실패 시 경고 후 빈 배열로 초기화한다.
func (s *FileStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		s.loaded = true
		return nil
	case err != nil:
		return errors.NewStoreError(backendFile, "load", s.path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		s.loaded = true
		return nil
	}

	var entries []domain.NotificationEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		s.logger.Warn("Notification file is corrupted, resetting",
			slog.String("path", s.path),
			slog.Any("error", err),
		)
		s.records = make(map[string]domain.NotificationEntry)
		if flushErr := s.flush(); flushErr != nil {
			return errors.NewStoreError(backendFile, "reset", s.path, flushErr)
		}
		s.loaded = true
		return nil
	}

	for _, entry := range entries {
		s.records[entry.Key()] = entry
	}
	s.loaded = true
	return nil
}

// flush: 현재 레코드 전체를 키 순서대로 원자적으로 기록한다. 비어 있으면 "[]" 를 쓴다.
func (s *FileStore) flush() error {
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]domain.NotificationEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, s.records[key])
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal notifications: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic: 같은 디렉토리의 임시 파일에 쓴 뒤 rename 한다.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// WriteJSONFile: 임의의 값을 들여쓰기된 JSON 으로 원자적으로 기록한다. (관심 목록 파일 등에서 재사용)
func WriteJSONFile(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return writeFileAtomic(path, data)
}
