// Package watchlist: 사용자별 관심 애니메이션 ID 집합을 관리한다.
package watchlist

import "context"

// SetStore: 사용자별 ID 집합 저장소. Add/Remove 는 멱등이다.
type SetStore interface {
	IsMember(ctx context.Context, userID string, animeID int) (bool, error)
	Add(ctx context.Context, userID string, animeID int) error
	Remove(ctx context.Context, userID string, animeID int) (bool, error)
	Members(ctx context.Context, userID string) ([]int, error)
}
