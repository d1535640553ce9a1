package ai

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/sourcegraph/conc/pool"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/util"
	"github.com/kapu/anilist-discord-bot-go/pkg/errors"
)

// Searcher: 추천 제목을 AniList 에서 찾는다 (anilist.Service 가 구현한다)
type Searcher interface {
	SearchByText(ctx context.Context, query string, page, perPage int) (*domain.MediaPage, error)
}

// Finder: AI 추천과 AniList 검색을 결합한다.
type Finder struct {
	recommender Recommender
	searcher    Searcher
	logger      *slog.Logger
}

// NewFinder: recommender 가 nil 이면 Find 는 ErrNotConfigured 를 반환한다.
func NewFinder(recommender Recommender, searcher Searcher, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{
		recommender: recommender,
		searcher:    searcher,
		logger:      logger,
	}
}

// Enabled: 추천 제공자가 설정되어 있는지
func (f *Finder) Enabled() bool {
	return f != nil && f.recommender != nil
}

// Provider: 선택된 추천 제공자 이름 (미설정 시 빈 문자열)
func (f *Finder) Provider() string {
	if !f.Enabled() {
		return ""
	}
	return f.recommender.Name()
}

// Find: 추천마다 AniList 첫 검색 결과를 붙이고 신뢰도 내림차순으로 정렬한다.
// 검색에 실패하거나 결과가 없는 추천은 건너뛴다.
func (f *Finder) Find(ctx context.Context, description string) ([]domain.AnimeMatch, error) {
	if !f.Enabled() {
		return nil, ErrNotConfigured
	}

	description = util.TrimSpace(description)
	if description == "" {
		return nil, errors.NewValidationError("description is empty", "description")
	}
	if utf8.RuneCountInString(description) > constants.AIInputLimits.MaxQueryLength {
		return nil, errors.NewValidationError("description is too long", "description")
	}

	recs, err := f.recommender.Recommend(ctx, description)
	if err != nil {
		return nil, errors.NewServiceError("ai", "recommend", err)
	}
	if len(recs) == 0 {
		return []domain.AnimeMatch{}, nil
	}

	results := make([]*domain.AnimeMatch, len(recs))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(len(recs))
	for idx, rec := range recs {
		p.Go(func() {
			match := f.lookup(ctx, rec)
			mu.Lock()
			results[idx] = match
			mu.Unlock()
		})
	}
	p.Wait()

	matches := make([]domain.AnimeMatch, 0, len(recs))
	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	slices.SortStableFunc(matches, func(a, b domain.AnimeMatch) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	f.logger.Info("AI find completed",
		slog.String("provider", f.recommender.Name()),
		slog.Int("recommendations", len(recs)),
		slog.Int("matches", len(matches)),
	)
	return matches, nil
}

func (f *Finder) lookup(ctx context.Context, rec domain.Recommendation) *domain.AnimeMatch {
	page, err := f.searcher.SearchByText(ctx, rec.Title, 1, constants.PaginationConfig.SearchPerPage)
	if err != nil {
		f.logger.Warn("Could not find recommended anime on AniList",
			slog.String("title", rec.Title),
			slog.Any("error", err),
		)
		return nil
	}
	if page == nil || len(page.Media) == 0 {
		return nil
	}
	return &domain.AnimeMatch{
		Anime:      page.Media[0],
		Reason:     rec.Reason,
		Confidence: rec.Confidence,
	}
}
