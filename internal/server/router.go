package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/kapu/anilist-discord-bot-go/internal/constants"
	"github.com/kapu/anilist-discord-bot-go/internal/health"
)

// RouterConfig 는 라우터 설정이다.
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// NewRouter: /health 와 /api 조회 라우트를 가진 Gin 엔진을 만든다.
func NewRouter(ctx context.Context, cfg RouterConfig, logger *slog.Logger, handler *APIHandler) (*gin.Engine, error) {
	if handler == nil {
		return nil, fmt.Errorf("api handler must not be nil")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(constants.ServerConfig.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(ctx, logger, "/health"))
	if len(cfg.AllowOrigins) > 0 {
		router.Use(cors.New(newCORSConfig(cfg.AllowOrigins)))
	}
	router.Use(SecurityHeadersMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health", func(c *gin.Context) {
		resp := health.Get(c.Request.Context())
		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	})

	api := router.Group("/api")
	api.Use(APIKeyAuthMiddleware(cfg.APIKey))
	api.GET("/stats", handler.GetStats)
	api.GET("/notifications/:userID", handler.GetNotifications)
	api.GET("/watchlist/:userID", handler.GetWatchlist)

	router.NoRoute(NoRouteHandler(cfg.APIKey))

	if cfg.APIKey != "" {
		logger.Info("api_key_auth_enabled")
	} else {
		logger.Warn("api_key_auth_disabled", slog.String("reason", "API_SECRET_KEY not set"))
	}
	return router, nil
}

func newCORSConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowMethods = constants.CORSConfig.AllowMethods
	corsConfig.AllowHeaders = append(slices.Clone(constants.CORSConfig.AllowHeaders), APIKeyHeader)
	return corsConfig
}

// NewHTTPServer: h2c 로 감싼 http.Server 를 만든다.
func NewHTTPServer(port int, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           WrapH2C(router),
		ReadHeaderTimeout: constants.ServerTimeout.ReadHeader,
		IdleTimeout:       constants.ServerTimeout.Idle,
	}
}
