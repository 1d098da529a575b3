package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// Maintenance groups the admin operations on pending articles, summaries and
// store statistics.
type Maintenance struct {
	articles   ports.ArticleRepository
	summaries  ports.SummaryRepository
	stats      ports.StatsRepository
	summarizer ports.Summarizer
}

func NewMaintenance(articles ports.ArticleRepository, summaries ports.SummaryRepository, stats ports.StatsRepository, summarizer ports.Summarizer) *Maintenance {
	return &Maintenance{articles: articles, summaries: summaries, stats: stats, summarizer: summarizer}
}

// PendingPage is one page of pending articles. Limit 0 means everything.
type PendingPage struct {
	Articles []domain.Article `json:"articles"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// ListPending returns pending articles newest first. page < 1 returns all.
func (m *Maintenance) ListPending(ctx context.Context, page, limit int) (PendingPage, error) {
	total, err := m.articles.CountArticles(ctx)
	if err != nil {
		return PendingPage{}, fmt.Errorf("count articles: %w", err)
	}

	offset := 0
	if page < 1 || limit < 1 {
		page, limit = 0, 0
	} else {
		offset = (page - 1) * limit
	}

	articles, err := m.articles.ListArticles(ctx, offset, limit)
	if err != nil {
		return PendingPage{}, fmt.Errorf("list articles: %w", err)
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return PendingPage{Articles: articles, Total: total, Page: page, Limit: limit}, nil
}

// DeletePending removes pending articles; the seen ledger is untouched.
func (m *Maintenance) DeletePending(ctx context.Context, ids []string) (int64, error) {
	ids = domain.CompactIDs(ids)
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no article ids provided", domain.ErrValidation)
	}
	return m.articles.DeleteArticles(ctx, ids...)
}

// PurgeRange removes pending articles published in [from, to).
func (m *Maintenance) PurgeRange(ctx context.Context, from, to time.Time) (int64, error) {
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		return 0, fmt.Errorf("%w: range must satisfy from < to", domain.ErrValidation)
	}
	return m.articles.DeletePublishedBetween(ctx, from, to)
}

func (m *Maintenance) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	summaries, err := m.summaries.ListSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	return summaries, nil
}

// DeleteSummary drops a summary without publishing it.
func (m *Maintenance) DeleteSummary(ctx context.Context, guardianID string) error {
	if guardianID == "" {
		return fmt.Errorf("%w: guardianId is required", domain.ErrValidation)
	}
	n, err := m.summaries.DeleteSummary(ctx, guardianID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *Maintenance) Counts(ctx context.Context) (domain.TableCounts, error) {
	return m.stats.Counts(ctx)
}

// Metrics aggregates the most recent limit processing durations; limit <= 0
// covers every run. With no runs the aggregates are nil.
func (m *Maintenance) Metrics(ctx context.Context, limit int) (domain.ProcessingMetrics, error) {
	if limit < 0 {
		limit = 0
	}
	durations, err := m.summaries.RecentDurations(ctx, limit)
	if err != nil {
		return domain.ProcessingMetrics{}, fmt.Errorf("load durations: %w", err)
	}
	return AggregateDurations(durations, limit), nil
}

// AggregateDurations computes count, total, mean and extremes in seconds,
// rounded to two decimals.
func AggregateDurations(durations []float64, limit int) domain.ProcessingMetrics {
	metrics := domain.ProcessingMetrics{Count: len(durations), Limit: limit}
	if len(durations) == 0 {
		return metrics
	}

	total, lo, hi := 0.0, durations[0], durations[0]
	for _, d := range durations {
		total += d
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	avg := total / float64(len(durations))

	metrics.TotalSeconds = round2(total)
	metrics.AverageSeconds = round2(avg)
	metrics.MinSeconds = round2(lo)
	metrics.MaxSeconds = round2(hi)
	return metrics
}

// Health reports database and generator reachability.
type Health struct {
	Database  bool   `json:"database"`
	Generator bool   `json:"ollama"`
	Error     string `json:"error,omitempty"`
}

func (m *Maintenance) Health(ctx context.Context) Health {
	var h Health
	if err := m.stats.Ping(ctx); err != nil {
		h.Error = err.Error()
	} else {
		h.Database = true
	}
	h.Generator = m.summarizer != nil && m.summarizer.Available(ctx)
	return h
}

func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
