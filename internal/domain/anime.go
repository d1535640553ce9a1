package domain

import (
	"errors"
	"time"
)

// ErrAnimeNotFound: 메타데이터 제공자가 해당 ID 의 애니메이션을 찾지 못했을 때 반환된다.
var ErrAnimeNotFound = errors.New("anime not found")

// MediaStatus 는 AniList 방영 상태다.
type MediaStatus string

// MediaStatus 상수 목록.
const (
	StatusReleasing      MediaStatus = "RELEASING"
	StatusFinished       MediaStatus = "FINISHED"
	StatusNotYetReleased MediaStatus = "NOT_YET_RELEASED"
	StatusCancelled      MediaStatus = "CANCELLED"
	StatusHiatus         MediaStatus = "HIATUS"
)

// PrecludesAiring: 더 이상 새 에피소드가 방영될 수 없는 상태인지 확인한다.
func (s MediaStatus) PrecludesAiring() bool {
	return s == StatusFinished || s == StatusCancelled
}

// MediaTitle: 영어 제목은 없을 수 있다.
type MediaTitle struct {
	Romaji  string  `json:"romaji"`
	English *string `json:"english"`
	Native  string  `json:"native"`
}

// Display: 영어 제목이 있으면 영어, 없으면 로마자 제목을 반환한다.
func (t MediaTitle) Display() string {
	if t.English != nil && *t.English != "" {
		return *t.English
	}
	return t.Romaji
}

// CoverImage: AniList 표지 이미지 URL
type CoverImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium,omitempty"`
}

// NextAiringEpisode: 다음 방영 에피소드 정보. AiringAt 은 Unix 초 단위다.
type NextAiringEpisode struct {
	Episode         int   `json:"episode"`
	AiringAt        int64 `json:"airingAt"`
	TimeUntilAiring int64 `json:"timeUntilAiring,omitempty"`
}

// AiringTime: AiringAt 은 unix 초 단위다.
func (n NextAiringEpisode) AiringTime() time.Time {
	return time.Unix(n.AiringAt, 0)
}

// Media: AniList 애니메이션 레코드. 쿼리에 따라 일부 필드만 채워진다.
type Media struct {
	ID                int                `json:"id"`
	Title             MediaTitle         `json:"title"`
	Format            string             `json:"format,omitempty"`
	Status            MediaStatus        `json:"status,omitempty"`
	Episodes          *int               `json:"episodes,omitempty"`
	Description       string             `json:"description,omitempty"`
	Genres            []string           `json:"genres,omitempty"`
	AverageScore      *int               `json:"averageScore,omitempty"`
	Season            string             `json:"season,omitempty"`
	SeasonYear        *int               `json:"seasonYear,omitempty"`
	NextAiringEpisode *NextAiringEpisode `json:"nextAiringEpisode"`
	CoverImage        CoverImage         `json:"coverImage"`
	SiteURL           string             `json:"siteUrl,omitempty"`
}

// DisplayTitle: 영어 제목이 있으면 영어, 없으면 로마자 제목
func (m *Media) DisplayTitle() string {
	if m == nil {
		return ""
	}
	return m.Title.Display()
}

// PageInfo 는 AniList 페이지네이션 정보다.
type PageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
}

// MediaPage: Page 쿼리 결과 한 페이지
type MediaPage struct {
	PageInfo PageInfo `json:"pageInfo"`
	Media    []Media  `json:"media"`
}

// Recommendation: AI 가 설명으로부터 추천한 제목
type Recommendation struct {
	Title      string  `json:"title"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// AnimeMatch: AI 추천을 AniList 검색 결과와 연결한 결과
type AnimeMatch struct {
	Anime      Media   `json:"anime"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}
