package ports

import (
	"context"
	"time"

	"NewsDesk/internal/domain"
)

// ArticleSource pulls candidate articles published inside [from, to).
type ArticleSource interface {
	FetchWindow(ctx context.Context, from, to time.Time) (domain.FetchResult, error)
}

// ArticleRepository stores fetched articles and the ledger of every id ever seen.
type ArticleRepository interface {
	AlreadySeen(ctx context.Context, ids []string) (map[string]bool, error)
	SaveFetched(ctx context.Context, articles []domain.Article, seenIDs []string) error
	GetArticle(ctx context.Context, id string) (domain.Article, error)
	ListArticles(ctx context.Context, offset, limit int) ([]domain.Article, error)
	CountArticles(ctx context.Context) (int64, error)
	DeleteArticles(ctx context.Context, ids ...string) (int64, error)
	DeletePublishedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// SummaryRepository stores processed summaries and their duration history.
type SummaryRepository interface {
	IsProcessed(ctx context.Context, guardianID string) (bool, error)
	SaveSummary(ctx context.Context, summary domain.Summary) error
	GetSummary(ctx context.Context, id int64) (domain.Summary, error)
	ListSummaries(ctx context.Context) ([]domain.Summary, error)
	DeleteSummary(ctx context.Context, guardianID string) (int64, error)
	// ConsumeSummary deletes the summary inside a transaction that commits only
	// when publish returns nil.
	ConsumeSummary(ctx context.Context, id int64, publish func() error) error
	RecentDurations(ctx context.Context, limit int) ([]float64, error)
}

// StatsRepository exposes store-wide diagnostics.
type StatsRepository interface {
	Counts(ctx context.Context) (domain.TableCounts, error)
	Ping(ctx context.Context) error
}

// Generator sends a prompt to a text-generation model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Available(ctx context.Context) bool
}

// Summarizer turns article text into a title, summary and category.
type Summarizer interface {
	Summarize(ctx context.Context, title, body string) (domain.Digest, error)
	Categorize(ctx context.Context, title, summary string) (string, error)
	Available(ctx context.Context) bool
}

// ContentStore persists published artifacts keyed by slug.
type ContentStore interface {
	Create(article domain.PublishedArticle) error
	Remove(slug string) error
	List() ([]domain.PublishedArticle, error)
	Update(article domain.PublishedArticle) error
}

// Notifier announces published articles to an outside channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
