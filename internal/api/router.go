// Package api exposes the newsroom over HTTP.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"NewsDesk/internal/api/handler"
	"NewsDesk/internal/logging"
)

// RouterOptions toggles the admin surface.
type RouterOptions struct {
	AdminEnabled bool
	Logger       *slog.Logger
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(h *handler.Handler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/mdx-articles", h.PublishedArticles)

	admin := api.Group("", AdminOnly(opts.AdminEnabled))
	{
		admin.POST("/ingest", h.Ingest)

		admin.GET("/articles", h.ListArticles)
		admin.DELETE("/articles", h.DeleteArticles)
		admin.DELETE("/articles/range", h.DeleteArticleRange)

		admin.POST("/process", h.Process)

		admin.POST("/queue", h.Enqueue)
		admin.GET("/queue", h.QueueSnapshot)
		admin.DELETE("/queue", h.CancelQueue)
		admin.DELETE("/queue/errors", h.ClearQueueErrors)

		admin.GET("/summaries", h.ListSummaries)
		admin.DELETE("/summaries", h.DeleteSummary)
		admin.POST("/deploy", h.Deploy)

		admin.GET("/metrics", h.Metrics)
		admin.GET("/stats", h.Stats)

		admin.GET("/generate-categories", h.CategoryStatus)
		admin.POST("/generate-categories", h.GenerateCategories)
	}
	return r
}
