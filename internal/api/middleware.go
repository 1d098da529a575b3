package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"NewsDesk/pkg/response"
)

// RequestLogger logs one line per request. Health checks are skipped.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if path == "/api/health" {
			return
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			logger.Error("request failed", append(attrs, "error", c.Errors.String())...)
			return
		}
		logger.Info("request completed", attrs...)
	}
}

// AdminOnly hides a route group when admin routes are disabled.
func AdminOnly(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			response.NotFound(c, "not found")
			return
		}
		c.Next()
	}
}
