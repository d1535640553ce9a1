package anilist

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// DetailCache: 상세 정보 캐시 (cache.Service 가 구현한다)
type DetailCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service: AniList 조회 서비스. 상세 조회는 singleflight 로 중복 요청을 합치고 선택적으로 캐싱한다.
type Service struct {
	requester Requester
	cache     DetailCache
	logger    *slog.Logger
	sf        singleflight.Group
	now       func() time.Time
}

// NewService: cache 가 nil 이면 캐싱 없이 동작한다.
func NewService(requester Requester, cache DetailCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		requester: requester,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

type mediaEnvelope struct {
	Media *domain.Media `json:"Media"`
}

type pageEnvelope struct {
	Page *domain.MediaPage `json:"Page"`
}

// GetAnimeByID: 다음 방영 정보를 포함한 상세 정보를 조회한다. 없는 ID 는 domain.ErrAnimeNotFound.
func (s *Service) GetAnimeByID(ctx context.Context, id int) (*domain.Media, error) {
	if id <= 0 {
		return nil, errors.NewValidationError("anime id must be positive", "id")
	}

	key := constants.CacheKeys.AnimeDetailsPrefix + strconv.Itoa(id)
	if media, ok := s.cachedDetails(ctx, key); ok {
		return media, nil
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		var env mediaEnvelope
		if err := s.requester.Query(ctx, "anime_details", queryAnimeDetails, map[string]any{"id": id}, &env); err != nil {
			return nil, err
		}
		if env.Media == nil {
			return nil, domain.ErrAnimeNotFound
		}
		s.storeDetails(ctx, key, env.Media)
		return env.Media, nil
	})
	if err != nil {
		return nil, err
	}

	media := *v.(*domain.Media)
	return &media, nil
}

// cachedDetails: 캐시된 다음 방영 시각이 이미 지났으면 캐시를 무시한다.
func (s *Service) cachedDetails(ctx context.Context, key string) (*domain.Media, bool) {
	if s.cache == nil {
		return nil, false
	}

	var media domain.Media
	found, err := s.cache.Get(ctx, key, &media)
	if err != nil {
		s.logger.Warn("Failed to read anime cache", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	if next := media.NextAiringEpisode; next != nil && !next.AiringTime().After(s.now()) {
		return nil, false
	}
	return &media, true
}

func (s *Service) storeDetails(ctx context.Context, key string, media *domain.Media) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, media, constants.CacheTTL.AnimeDetails); err != nil {
		s.logger.Warn("Failed to cache anime details", slog.String("key", key), slog.Any("error", err))
	}
}

// SearchByID: 검색 임베드용 요약 정보를 조회한다.
func (s *Service) SearchByID(ctx context.Context, id int) (*domain.Media, error) {
	var env mediaEnvelope
	if err := s.requester.Query(ctx, "search_by_id", querySearchByID, map[string]any{"id": id}, &env); err != nil {
		return nil, err
	}
	if env.Media == nil {
		return nil, domain.ErrAnimeNotFound
	}
	return env.Media, nil
}

// SearchByText: 제목 검색. 일치도, 인기순으로 정렬된 한 페이지를 반환한다.
func (s *Service) SearchByText(ctx context.Context, query string, page, perPage int) (*domain.MediaPage, error) {
	query = util.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("search query is empty", "query")
	}

	vars := map[string]any{
		"q":       query,
		"page":    max(page, 1),
		"perPage": clampPerPage(perPage, constants.PaginationConfig.SearchPerPage),
	}
	return s.queryPage(ctx, "search_by_text", querySearchByText, vars)
}

// Search: 숫자 검색어는 ID 조회, 그 외에는 텍스트 검색(1페이지, 5개)을 수행한다.
func (s *Service) Search(ctx context.Context, query string) (*domain.MediaPage, error) {
	if id, ok := ParseID(query); ok {
		media, err := s.SearchByID(ctx, id)
		if err != nil {
			if stdErrors.Is(err, domain.ErrAnimeNotFound) {
				return &domain.MediaPage{Media: []domain.Media{}}, nil
			}
			return nil, err
		}
		return &domain.MediaPage{
			PageInfo: domain.PageInfo{Total: 1, CurrentPage: 1, LastPage: 1},
			Media:    []domain.Media{*media},
		}, nil
	}
	return s.SearchByText(ctx, query, 1, constants.PaginationConfig.SearchPerPage)
}

// Seasonal: season 은 WINTER/SPRING/SUMMER/FALL (대소문자 무관).
func (s *Service) Seasonal(ctx context.Context, season string, year, page, perPage int) (*domain.MediaPage, error) {
	season = strings.ToUpper(util.TrimSpace(season))
	if !validSeason(season) {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown season %q", season), "season")
	}

	vars := map[string]any{
		"season":     season,
		"seasonYear": year,
		"type":       "ANIME",
		"page":       max(page, 1),
		"perPage":    clampPerPage(perPage, constants.PaginationConfig.SeasonPerPage),
	}
	return s.queryPage(ctx, "seasonal_anime", querySeasonalAnime, vars)
}

// Releasing: 현재 방영 중인 작품 (인기순)
func (s *Service) Releasing(ctx context.Context, page, perPage int) (*domain.MediaPage, error) {
	vars := map[string]any{
		"page":    max(page, 1),
		"perPage": clampPerPage(perPage, constants.PaginationConfig.ReleasePerPage),
	}
	return s.queryPage(ctx, "releasing_anime", queryReleasingAnime, vars)
}

func (s *Service) queryPage(ctx context.Context, operation, query string, vars map[string]any) (*domain.MediaPage, error) {
	var env pageEnvelope
	if err := s.requester.Query(ctx, operation, query, vars, &env); err != nil {
		return nil, err
	}
	if env.Page == nil {
		return &domain.MediaPage{Media: []domain.Media{}}, nil
	}
	if env.Page.Media == nil {
		env.Page.Media = []domain.Media{}
	}
	return env.Page, nil
}

func validSeason(season string) bool {
	switch season {
	case "WINTER", "SPRING", "SUMMER", "FALL":
		return true
	}
	return false
}

// clampPerPage: AniList 페이지 크기는 1~50 이다.
func clampPerPage(perPage, fallback int) int {
	if perPage <= 0 {
		perPage = fallback
	}
	return min(perPage, 50)
}
