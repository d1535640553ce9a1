package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggerMiddleware: slog 기반 HTTP 접속 로깅 미들웨어
// skipPaths 는 "/exact" 또는 "/prefix*" 형식을 지원한다.
func LoggerMiddleware(ctx context.Context, logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	exactSkip := make(map[string]bool)
	var prefixSkip []string
	for _, pattern := range skipPaths {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && prefix != "" {
			prefixSkip = append(prefixSkip, prefix)
			continue
		}
		exactSkip[pattern] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if shouldSkipPath(path, exactSkip, prefixSkip) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()

		// 정상 요청은 DEBUG, 4xx 는 WARN, 5xx 는 ERROR
		level := slog.LevelDebug
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		if !logger.Enabled(ctx, level) {
			return
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("ip", c.ClientIP()),
			slog.String("ua", truncateUA(c.Request.UserAgent())),
		}
		if latency >= 100*time.Millisecond {
			attrs = append(attrs, slog.Duration("latency", latency))
		}

		logger.LogAttrs(ctx, level, "HTTP", attrs...)
	}
}

func shouldSkipPath(path string, exactSkip map[string]bool, prefixSkip []string) bool {
	if exactSkip[path] {
		return true
	}
	for _, prefix := range prefixSkip {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func truncateUA(ua string) string {
	const maxLen = 80
	if len(ua) > maxLen {
		return ua[:maxLen] + "..."
	}
	return ua
}
