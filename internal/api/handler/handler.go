package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/queue"
	"NewsDesk/internal/usecase"
	"NewsDesk/pkg/response"
)

// Deps lists the use cases served over HTTP.
type Deps struct {
	Ingestor    *usecase.Ingestor
	Pipeline    *usecase.Pipeline
	Queue       *queue.Queue
	Publisher   *usecase.Publisher
	Catalogue   *usecase.Catalogue
	Maintenance *usecase.Maintenance
	Logger      *slog.Logger
}

// Handler adapts use cases to gin.
type Handler struct {
	ingestor    *usecase.Ingestor
	pipeline    *usecase.Pipeline
	queue       *queue.Queue
	publisher   *usecase.Publisher
	catalogue   *usecase.Catalogue
	maintenance *usecase.Maintenance
	logger      *slog.Logger
}

func New(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		ingestor:    deps.Ingestor,
		pipeline:    deps.Pipeline,
		queue:       deps.Queue,
		publisher:   deps.Publisher,
		catalogue:   deps.Catalogue,
		maintenance: deps.Maintenance,
		logger:      logger,
	}
}

// fail maps domain errors onto HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrGeneratorUnavailable):
		response.ServiceUnavailable(c, err.Error())
	default:
		h.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		response.InternalError(c, err)
	}
}

// bindOptionalJSON decodes a JSON body when one is present.
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

// parseDay accepts YYYY-MM-DD or RFC 3339. A bare date used as an upper
// bound covers the whole day.
func parseDay(raw string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
