package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/ports"
)

// Publisher turns a stored summary into a site artifact and retires the summary.
type Publisher struct {
	summaries ports.SummaryRepository
	content   ports.ContentStore
	notifier  ports.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewPublisher builds a publisher; notifier may be nil.
func NewPublisher(summaries ports.SummaryRepository, content ports.ContentStore, notifier ports.Notifier, log *slog.Logger) *Publisher {
	if log == nil {
		log = logging.Discard()
	}
	return &Publisher{summaries: summaries, content: content, notifier: notifier, logger: log, now: time.Now}
}

// Publish writes the summary as an artifact and deletes it in one step: the
// summary is only removed when the artifact exists, and the artifact is
// removed again when the delete cannot be committed.
func (p *Publisher) Publish(ctx context.Context, summaryID int64) (domain.PublishedArticle, error) {
	summary, err := p.summaries.GetSummary(ctx, summaryID)
	if err != nil {
		return domain.PublishedArticle{}, err
	}

	article, err := p.artifact(summary)
	if err != nil {
		return domain.PublishedArticle{}, err
	}

	written := false
	err = p.summaries.ConsumeSummary(ctx, summaryID, func() error {
		if err := p.content.Create(article); err != nil {
			return err
		}
		written = true
		return nil
	})
	if err != nil {
		if written {
			if rmErr := p.content.Remove(article.Slug); rmErr != nil {
				p.logger.Error("remove orphaned artifact", "slug", article.Slug, "error", rmErr)
			}
		}
		return domain.PublishedArticle{}, fmt.Errorf("publish %s: %w", article.Slug, err)
	}

	p.logger.Info("article published", "slug", article.Slug, "guardian_id", article.ID)
	p.announce(ctx, article)
	return article, nil
}

func (p *Publisher) artifact(s domain.Summary) (domain.PublishedArticle, error) {
	title := strings.TrimSpace(s.TransformedTitle)
	body := strings.TrimSpace(s.Summary)
	if s.GuardianID == "" || title == "" || body == "" {
		return domain.PublishedArticle{}, fmt.Errorf("%w: summary %d is missing required fields", domain.ErrValidation, s.ID)
	}

	slug := domain.Slug(title)
	if slug == "" {
		return domain.PublishedArticle{}, fmt.Errorf("%w: title %q yields an empty slug", domain.ErrValidation, title)
	}

	section := s.Section
	if section == "" {
		section = "News"
	}
	category := s.Category
	if category == "" {
		category = section
	}
	published := s.PublishedDate
	if published.IsZero() {
		published = p.now()
	}

	return domain.PublishedArticle{
		ID:          s.GuardianID,
		Slug:        slug,
		Title:       title,
		Summary:     body,
		Section:     section,
		Category:    category,
		ImageURL:    s.ImageURL,
		PublishedAt: published,
		Body:        body,
	}, nil
}

func (p *Publisher) announce(ctx context.Context, a domain.PublishedArticle) {
	if p.notifier == nil {
		return
	}
	message := fmt.Sprintf("%s\n\n%s\n\nCategory: %s", a.Title, a.Summary, a.Category)
	if err := p.notifier.PublishDigest(ctx, message); err != nil {
		p.logger.Warn("announce publication", "slug", a.Slug, "error", err)
	}
}
