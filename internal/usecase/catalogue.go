package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/ports"
)

// Catalogue reads the published artifacts and fills in missing categories.
type Catalogue struct {
	content    ports.ContentStore
	summarizer ports.Summarizer
	logger     *slog.Logger
	now        func() time.Time
}

func NewCatalogue(content ports.ContentStore, summarizer ports.Summarizer, log *slog.Logger) *Catalogue {
	if log == nil {
		log = logging.Discard()
	}
	return &Catalogue{content: content, summarizer: summarizer, logger: log, now: time.Now}
}

// Published lists artifacts newest first, optionally filtered by category
// slug, with the category index of the whole catalogue.
func (c *Catalogue) Published(categorySlug string) ([]domain.PublishedArticle, []domain.Category, error) {
	all, err := c.content.List()
	if err != nil {
		return nil, nil, fmt.Errorf("list artifacts: %w", err)
	}
	categories := Categories(all)
	if categorySlug != "" {
		all = FilterByCategory(all, categorySlug)
	}
	return all, categories, nil
}

// CategoryStatus counts artifacts with and without a stored category.
type CategoryStatus struct {
	Total           int `json:"totalMDXFiles"`
	WithoutCategory int `json:"filesWithoutCategory"`
	WithCategory    int `json:"filesWithCategory"`
}

func (c *Catalogue) CategoryStatus() (CategoryStatus, error) {
	all, err := c.content.List()
	if err != nil {
		return CategoryStatus{}, fmt.Errorf("list artifacts: %w", err)
	}
	status := CategoryStatus{Total: len(all)}
	for _, a := range all {
		if a.Category == "" {
			status.WithoutCategory++
		}
	}
	status.WithCategory = status.Total - status.WithoutCategory
	return status, nil
}

// Backfill event types.
const (
	EventStart      = "start"
	EventProcessing = "processing"
	EventProcessed  = "processed"
	EventError      = "error"
	EventComplete   = "complete"
)

// BackfillEvent reports progress of a category backfill.
type BackfillEvent struct {
	Type      string  `json:"type"`
	Current   int     `json:"current,omitempty"`
	Total     int     `json:"total"`
	Filename  string  `json:"filename,omitempty"`
	Title     string  `json:"title,omitempty"`
	Category  string  `json:"category,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Processed int     `json:"processed,omitempty"`
	Errors    int     `json:"errors,omitempty"`
	Error     string  `json:"error,omitempty"`
	Message   string  `json:"message,omitempty"`
}

// Backfill asks the model for a category for every artifact that has none and
// rewrites its front matter. Each step is reported through emit; a failing
// artifact is reported and skipped.
func (c *Catalogue) Backfill(ctx context.Context, emit func(BackfillEvent)) error {
	if emit == nil {
		emit = func(BackfillEvent) {}
	}
	if !c.summarizer.Available(ctx) {
		return domain.ErrGeneratorUnavailable
	}

	all, err := c.content.List()
	if err != nil {
		return fmt.Errorf("list artifacts: %w", err)
	}
	var pending []domain.PublishedArticle
	for _, a := range all {
		if a.Category == "" {
			pending = append(pending, a)
		}
	}

	total := len(pending)
	emit(BackfillEvent{Type: EventStart, Total: total, Message: fmt.Sprintf("Starting category generation for %d files", total)})
	if total == 0 {
		emit(BackfillEvent{Type: EventComplete, Message: "All files already have categories"})
		return nil
	}

	processed, failures := 0, 0
	for _, a := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		filename := a.Slug + ".mdx"
		started := c.now()
		emit(BackfillEvent{Type: EventProcessing, Current: processed + 1, Total: total, Filename: filename, Title: a.Title})

		category, err := c.summarizer.Categorize(ctx, a.Title, a.Summary)
		if err == nil {
			a.Category = category
			err = c.content.Update(a)
		}
		processed++
		if err != nil {
			failures++
			c.logger.Warn("category backfill failed", "file", filename, "error", err)
			emit(BackfillEvent{Type: EventError, Current: processed, Total: total, Filename: filename, Error: err.Error()})
			continue
		}

		seconds := math.Round(c.now().Sub(started).Seconds()*10) / 10
		c.logger.Info("category generated", "file", filename, "category", category, "seconds", seconds)
		emit(BackfillEvent{Type: EventProcessed, Current: processed, Total: total, Filename: filename, Category: category, Duration: seconds})
	}

	emit(BackfillEvent{
		Type:      EventComplete,
		Total:     total,
		Processed: processed,
		Errors:    failures,
		Message:   fmt.Sprintf("Completed: %d categories generated, %d errors", processed-failures, failures),
	})
	return nil
}

// FilterByCategory keeps articles whose display category has the given slug.
func FilterByCategory(articles []domain.PublishedArticle, slug string) []domain.PublishedArticle {
	out := make([]domain.PublishedArticle, 0, len(articles))
	for _, a := range articles {
		if domain.CategorySlug(a.DisplayCategory()) == slug {
			out = append(out, a)
		}
	}
	return out
}

// Categories groups articles by category slug, most recently updated first.
func Categories(articles []domain.PublishedArticle) []domain.Category {
	index := make(map[string]int)
	var out []domain.Category
	for _, a := range articles {
		name := a.DisplayCategory()
		slug := domain.CategorySlug(name)
		i, ok := index[slug]
		if !ok {
			index[slug] = len(out)
			out = append(out, domain.Category{Name: name, Slug: slug, ArticleCount: 1, LatestPostDate: a.PublishedAt})
			continue
		}
		out[i].ArticleCount++
		if a.PublishedAt.After(out[i].LatestPostDate) {
			out[i].LatestPostDate = a.PublishedAt
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LatestPostDate.After(out[j].LatestPostDate)
	})
	return out
}
