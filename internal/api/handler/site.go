package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"NewsDesk/internal/usecase"
	"NewsDesk/pkg/response"
)

// Metrics aggregates recent processing durations; ?limit=0 covers all runs.
func (h *Handler) Metrics(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil || limit < 0 {
		response.BadRequest(c, "limit must be a non-negative integer")
		return
	}

	m, err := h.maintenance.Metrics(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := gin.H{"metrics": m}
	if m.AverageSeconds != nil {
		out["averageMinutes"] = minutes(*m.AverageSeconds)
		out["totalMinutes"] = minutes(*m.TotalSeconds)
	}
	response.Success(c, out)
}

func minutes(seconds float64) float64 {
	return math.Round(seconds/60*100) / 100
}

func (h *Handler) Stats(c *gin.Context) {
	counts, err := h.maintenance.Counts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, counts)
}

// Health answers 503 when the database is unreachable.
func (h *Handler) Health(c *gin.Context) {
	health := h.maintenance.Health(c.Request.Context())
	if !health.Database {
		c.JSON(http.StatusServiceUnavailable, response.Response{Success: false, Data: health, Error: health.Error})
		return
	}
	response.Success(c, health)
}

// PublishedArticles lists site artifacts, optionally filtered by ?category slug.
func (h *Handler) PublishedArticles(c *gin.Context) {
	articles, categories, err := h.catalogue.Published(c.Query("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"articles": articles, "categories": categories})
}

func (h *Handler) CategoryStatus(c *gin.Context) {
	status, err := h.catalogue.CategoryStatus()
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, status)
}

// GenerateCategories streams backfill progress as server-sent events. Errors
// raised before the first event are answered as plain JSON.
func (h *Handler) GenerateCategories(c *gin.Context) {
	streaming := false
	emit := func(evt usecase.BackfillEvent) {
		if !streaming {
			streaming = true
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Status(http.StatusOK)
		}
		c.SSEvent("message", evt)
		c.Writer.Flush()
	}

	err := h.catalogue.Backfill(c.Request.Context(), emit)
	if err == nil {
		return
	}
	if !streaming {
		h.fail(c, err)
		return
	}
	h.logger.Warn("category backfill aborted", "error", err)
	emit(usecase.BackfillEvent{Type: usecase.EventError, Error: err.Error()})
}
