package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader: /api 인증 헤더 이름
const APIKeyHeader = "X-API-Key" //nolint:gosec // G101: 헤더 이름

// APIKeyAuthMiddleware: X-API-Key 헤더를 검증한다. apiKey 가 비어 있으면 모든 요청을 허용한다.
func APIKeyAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		if status, body, ok := checkAPIKey(c, apiKey); !ok {
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}

// NoRouteHandler: 미등록 경로는 키가 없으면 401, 틀리면 403, 맞으면 404 로 응답한다.
func NoRouteHandler(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey != "" {
			if status, body, ok := checkAPIKey(c, apiKey); !ok {
				c.JSON(status, body)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "endpoint not found",
		})
	}
}

func checkAPIKey(c *gin.Context, apiKey string) (int, gin.H, bool) {
	provided := c.GetHeader(APIKeyHeader)
	if provided == "" {
		return http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "API key required"}, false
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
		return http.StatusForbidden, gin.H{"error": "forbidden", "message": "invalid API key"}, false
	}
	return 0, nil, true
}
