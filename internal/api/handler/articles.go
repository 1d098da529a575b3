package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"NewsDesk/internal/usecase"
	"NewsDesk/pkg/response"
)

const defaultPageLimit = 50

// Ingest fetches the last ?days days (clamped to 1..30, default 1).
func (h *Handler) Ingest(c *gin.Context) {
	days, err := queryInt(c, "days", usecase.DefaultIngestDays)
	if err != nil {
		days = usecase.DefaultIngestDays
	}
	report, err := h.ingestor.Ingest(c.Request.Context(), days)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, report)
}

// ListArticles returns pending articles; ?page enables pagination.
func (h *Handler) ListArticles(c *gin.Context) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	limit, err := queryInt(c, "limit", defaultPageLimit)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if page < 1 {
		limit = 0
	}

	result, err := h.maintenance.ListPending(c.Request.Context(), page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, result)
}

type deleteArticlesRequest struct {
	IDs []string `json:"ids"`
}

// DeleteArticles removes pending articles given as {ids} or ?id.
func (h *Handler) DeleteArticles(c *gin.Context) {
	var req deleteArticlesRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ids := req.IDs
	if len(ids) == 0 {
		if id := c.Query("id"); id != "" {
			ids = []string{id}
		}
	}

	n, err := h.maintenance.DeletePending(c.Request.Context(), ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": n, "message": fmt.Sprintf("Deleted %d articles", n)})
}

// DeleteArticleRange removes pending articles published between ?from and ?to.
func (h *Handler) DeleteArticleRange(c *gin.Context) {
	from, err := parseDay(c.Query("from"), false)
	if err != nil {
		response.BadRequest(c, "from must be YYYY-MM-DD or RFC 3339")
		return
	}
	to, err := parseDay(c.Query("to"), true)
	if err != nil {
		response.BadRequest(c, "to must be YYYY-MM-DD or RFC 3339")
		return
	}

	n, err := h.maintenance.PurgeRange(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

type processRequest struct {
	GuardianIDs           []string `json:"guardianIds"`
	DeleteAfterProcessing bool     `json:"deleteAfterProcessing"`
}

// Process summarizes a batch and waits for the result.
func (h *Handler) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.pipeline.ProcessBatch(c.Request.Context(), req.GuardianIDs, req.DeleteAfterProcessing)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, result)
}

// Enqueue adds articles to the processing queue without waiting.
func (h *Handler) Enqueue(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	items, err := h.queue.Enqueue(c.Request.Context(), req.GuardianIDs, req.DeleteAfterProcessing)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Accepted(c, gin.H{"items": items})
}

func (h *Handler) QueueSnapshot(c *gin.Context) {
	response.Success(c, gin.H{"items": h.queue.Snapshot()})
}

// CancelQueue drops every item still waiting.
func (h *Handler) CancelQueue(c *gin.Context) {
	response.Success(c, gin.H{"cancelled": h.queue.Cancel()})
}

func (h *Handler) ClearQueueErrors(c *gin.Context) {
	response.Success(c, gin.H{"cleared": h.queue.ClearErrors()})
}

func (h *Handler) ListSummaries(c *gin.Context) {
	summaries, err := h.maintenance.ListSummaries(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"summaries": summaries, "count": len(summaries)})
}

type deleteSummaryRequest struct {
	GuardianID string `json:"guardianId"`
}

func (h *Handler) DeleteSummary(c *gin.Context) {
	var req deleteSummaryRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.GuardianID == "" {
		req.GuardianID = c.Query("guardianId")
	}

	if err := h.maintenance.DeleteSummary(c.Request.Context(), req.GuardianID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"guardianId": req.GuardianID})
}

type deployRequest struct {
	SummaryID int64 `json:"summaryId" binding:"required"`
}

// Deploy publishes a summary as a site artifact.
func (h *Handler) Deploy(c *gin.Context) {
	var req deployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	article, err := h.publisher.Publish(c.Request.Context(), req.SummaryID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, gin.H{
		"slug":     article.Slug,
		"filename": article.Slug + ".mdx",
		"article":  article,
	})
}
