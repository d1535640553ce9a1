package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/domain"
)

// NotificationReader: 예약된 알림 조회 (notification.Service 가 구현한다)
type NotificationReader interface {
	GetUserNotifications(userID, channelID string) []domain.NotificationEntry
	Count() int
}

// WatchlistReader: 관심 목록 조회 (watchlist.Service 가 구현한다)
type WatchlistReader interface {
	List(ctx context.Context, userID string) ([]int, error)
}

// APIHandler: 봇 상태를 읽기 전용 JSON 으로 노출한다.
// watchlist 가 nil 이면 /api/watchlist 는 503 을 반환한다.
type APIHandler struct {
	notifications NotificationReader
	watchlist     WatchlistReader
	logger        *slog.Logger
}

// NewAPIHandler: 읽기 전용 API 핸들러. notifications/watchlist 가 nil 이면 해당 엔드포인트는 503 을 반환한다.
func NewAPIHandler(notifications NotificationReader, watchlist WatchlistReader, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		notifications: notifications,
		watchlist:     watchlist,
		logger:        logger,
	}
}

type notificationView struct {
	AnimeID   int    `json:"animeId"`
	ChannelID string `json:"channelId"`
	Episode   int    `json:"episode"`
	AiringAt  int64  `json:"airingAt"`
}

// GetNotifications: 사용자의 예약 알림을 방영 시각 순으로 반환한다. ?channel= 로 채널을 좁힐 수 있다.
func (h *APIHandler) GetNotifications(c *gin.Context) {
	if h.notifications == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications disabled"})
		return
	}

	userID := c.Param("userID")
	entries := h.notifications.GetUserNotifications(userID, c.Query("channel"))

	views := make([]notificationView, 0, len(entries))
	for _, e := range entries {
		views = append(views, notificationView{
			AnimeID:   e.AnimeID,
			ChannelID: e.ChannelID,
			Episode:   e.Episode,
			AiringAt:  e.AiringAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"userId":        userID,
		"notifications": views,
	})
}

// GetWatchlist: GET /api/watchlist/:userID
func (h *APIHandler) GetWatchlist(c *gin.Context) {
	if h.watchlist == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	userID := c.Param("userID")
	ids, err := h.watchlist.List(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to get watchlist", slog.String("user_id", userID), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"userId":   userID,
		"animeIds": ids,
	})
}

// GetStats: GET /api/stats (예약된 알림 수)
func (h *APIHandler) GetStats(c *gin.Context) {
	scheduled := 0
	if h.notifications != nil {
		scheduled = h.notifications.Count()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":                  "ok",
		"scheduled_notifications": scheduled,
		"watchlist_enabled":       h.watchlist != nil,
	})
}
