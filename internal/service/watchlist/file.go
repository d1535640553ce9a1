package watchlist

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/goccy/go-json"

	"github.com/kapu/anilist-discord-bot-go/internal/service/store"
)

// FileStore: {"<userID>": [animeID, ...]} 형태의 JSON 파일. 만료가 없다.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	loaded bool
	lists  map[string][]int
}

var _ SetStore = (*FileStore)(nil)

// NewFileStore: path 의 JSON 파일을 사용자별 작품 ID 집합으로 쓴다. 파일은 첫 접근 때 읽는다.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger,
		lists:  make(map[string][]int),
	}
}

// IsMember: 파일 백엔드에는 만료가 없다.
func (s *FileStore) IsMember(_ context.Context, userID string, animeID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	return slices.Contains(s.lists[userID], animeID), nil
}

// Add: 이미 있으면 아무것도 하지 않는다. 목록은 정렬 상태로 유지한다.
func (s *FileStore) Add(_ context.Context, userID string, animeID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	prev := s.lists[userID]
	if slices.Contains(prev, animeID) {
		return nil
	}

	next := append(slices.Clone(prev), animeID)
	slices.Sort(next)
	s.lists[userID] = next
	if err := store.WriteJSONFile(s.path, s.lists); err != nil {
		s.restore(userID, prev)
		return fmt.Errorf("watchlist add: %w", err)
	}
	return nil
}

// Remove: 없던 항목이면 false
func (s *FileStore) Remove(_ context.Context, userID string, animeID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	prev := s.lists[userID]
	idx := slices.Index(prev, animeID)
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(prev), idx, idx+1)
	if len(next) == 0 {
		delete(s.lists, userID)
	} else {
		s.lists[userID] = next
	}
	if err := store.WriteJSONFile(s.path, s.lists); err != nil {
		s.restore(userID, prev)
		return false, fmt.Errorf("watchlist remove: %w", err)
	}
	return true, nil
}

// Members: 오름차순 정렬된 ID 목록
func (s *FileStore) Members(_ context.Context, userID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return slices.Clone(s.lists[userID]), nil
}

func (s *FileStore) restore(userID string, prev []int) {
	if len(prev) == 0 {
		delete(s.lists, userID)
		return
	}
	s.lists[userID] = prev
}

// ensureLoaded: 파일이 없거나 비어 있으면 빈 목록, 손상되어 있으면 경고 후 빈 목록으로 시작한다.
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
		return fmt.Errorf("read watchlist file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		lists := make(map[string][]int)
		if err := json.Unmarshal(trimmed, &lists); err != nil {
			s.logger.Warn("Watchlist file is corrupted, starting empty",
				slog.String("path", s.path),
				slog.Any("error", err),
			)
		} else {
			s.lists = lists
		}
	}
	s.loaded = true
	return nil
}
