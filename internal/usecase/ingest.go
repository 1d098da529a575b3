package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/ports"
)

const (
	MinIngestDays     = 1
	MaxIngestDays     = 30
	DefaultIngestDays = 1

	windowDateLayout = "2006-01-02"
)

// Ingestor pulls a window of recent articles and stores the ones never seen.
type Ingestor struct {
	source   ports.ArticleSource
	articles ports.ArticleRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewIngestor(source ports.ArticleSource, articles ports.ArticleRepository, log *slog.Logger) *Ingestor {
	if log == nil {
		log = logging.Discard()
	}
	return &Ingestor{source: source, articles: articles, logger: log, now: time.Now}
}

// ClampDays bounds the requested look-back to [MinIngestDays, MaxIngestDays].
func ClampDays(days int) int {
	return max(MinIngestDays, min(days, MaxIngestDays))
}

// Window returns the [from, to) date range covering the last days plus today.
func Window(now time.Time, days int) (time.Time, time.Time) {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -days), today.AddDate(0, 0, 1)
}

// Ingest fetches the window, records every candidate id in the seen ledger and
// stores only articles whose id was never seen before. A previously seen id is
// never stored again, even when its article was deleted since.
func (i *Ingestor) Ingest(ctx context.Context, days int) (domain.IngestReport, error) {
	days = ClampDays(days)
	from, to := Window(i.now(), days)
	report := domain.IngestReport{
		Days: days,
		From: from.Format(windowDateLayout),
		To:   to.Format(windowDateLayout),
	}

	fetched, err := i.source.FetchWindow(ctx, from, to)
	if err != nil {
		return report, fmt.Errorf("fetch window: %w", err)
	}
	report.TotalAvailable = fetched.TotalAvailable
	report.Fetched = len(fetched.Articles)

	candidates := make([]domain.Article, 0, len(fetched.Articles))
	ids := make([]string, 0, len(fetched.Articles))
	inBatch := make(map[string]bool, len(fetched.Articles))
	for _, a := range fetched.Articles {
		if a.ID == "" || inBatch[a.ID] {
			continue
		}
		inBatch[a.ID] = true
		candidates = append(candidates, a)
		ids = append(ids, a.ID)
	}

	seen, err := i.articles.AlreadySeen(ctx, ids)
	if err != nil {
		return report, fmt.Errorf("load seen ids: %w", err)
	}

	fresh := make([]domain.Article, 0, len(candidates))
	for _, a := range candidates {
		if !seen[a.ID] {
			fresh = append(fresh, a)
		}
	}

	if err := i.articles.SaveFetched(ctx, fresh, ids); err != nil {
		return report, fmt.Errorf("save fetched: %w", err)
	}

	report.New = len(fresh)
	report.Duplicates = report.Fetched - report.New
	report.Articles = fresh

	i.logger.Info("ingest finished",
		"days", days,
		"from", report.From,
		"to", report.To,
		"total", report.TotalAvailable,
		"fetched", report.Fetched,
		"new", report.New,
		"duplicates", report.Duplicates,
	)
	return report, nil
}
