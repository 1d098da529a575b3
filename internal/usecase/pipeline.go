package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/summarizer"
)

// BatchRunner executes processing requests on behalf of the pipeline. The
// work queue implements it so batches share its single worker.
type BatchRunner interface {
	Submit(ctx context.Context, ids []string, deleteAfter bool) []domain.Outcome
}

// PipelineDeps wires the driven adapters into the processing pipeline.
type PipelineDeps struct {
	Articles   ports.ArticleRepository
	Summaries  ports.SummaryRepository
	Summarizer ports.Summarizer
	Logger     *slog.Logger
}

// Pipeline moves articles from pending to summarized.
type Pipeline struct {
	articles   ports.ArticleRepository
	summaries  ports.SummaryRepository
	summarizer ports.Summarizer
	logger     *slog.Logger
	now        func() time.Time

	runner BatchRunner
	inline sync.Mutex
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		articles:   deps.Articles,
		summaries:  deps.Summaries,
		summarizer: deps.Summarizer,
		logger:     logger,
		now:        time.Now,
	}
}

// UseRunner routes batches through r instead of processing them inline.
func (p *Pipeline) UseRunner(r BatchRunner) {
	p.runner = r
}

// ProcessOne summarizes a single pending article. Errors are reported in the
// outcome, never returned, so one article cannot abort a batch.
func (p *Pipeline) ProcessOne(ctx context.Context, id string, deleteAfter bool) domain.Outcome {
	done, err := p.summaries.IsProcessed(ctx, id)
	if err != nil {
		return p.failed(id, fmt.Errorf("check processed: %w", err))
	}
	if done {
		if deleteAfter {
			if _, err := p.articles.DeleteArticles(ctx, id); err != nil {
				p.logger.Warn("delete processed article", "id", id, "error", err)
			}
		}
		return domain.Outcome{GuardianID: id, Status: domain.StatusSkipped, Message: "already processed"}
	}

	article, err := p.articles.GetArticle(ctx, id)
	if err != nil {
		return p.failed(id, err)
	}

	text := summarizer.ArticleText(article)
	if strings.TrimSpace(text) == "" {
		return p.failed(id, domain.ErrNoContent)
	}

	started := p.now()
	digest, err := p.summarizer.Summarize(ctx, article.WebTitle, text)
	if err != nil {
		return p.failed(id, err)
	}
	elapsed := p.now().Sub(started).Seconds()

	err = p.summaries.SaveSummary(ctx, domain.Summary{
		GuardianID:                id,
		TransformedTitle:          digest.Title,
		Summary:                   digest.Summary,
		Section:                   article.SectionName,
		Category:                  digest.Category,
		ImageURL:                  article.Thumbnail,
		PublishedDate:             article.WebPublicationDate,
		ProcessedAt:               p.now(),
		ProcessingDurationSeconds: &elapsed,
	})
	if err != nil {
		return p.failed(id, fmt.Errorf("save summary: %w", err))
	}

	if deleteAfter {
		if _, err := p.articles.DeleteArticles(ctx, id); err != nil {
			p.logger.Warn("delete processed article", "id", id, "error", err)
		}
	}

	p.logger.Info("article summarized", "id", id, "category", digest.Category, "seconds", elapsed)
	return domain.Outcome{
		GuardianID:       id,
		Status:           domain.StatusSuccess,
		TransformedTitle: digest.Title,
		Summary:          digest.Summary,
		Category:         digest.Category,
	}
}

// ProcessBatch checks the generator once, then processes ids in order.
func (p *Pipeline) ProcessBatch(ctx context.Context, ids []string, deleteAfter bool) (domain.BatchResult, error) {
	ids = domain.CompactIDs(ids)
	if len(ids) == 0 {
		return domain.BatchResult{}, fmt.Errorf("%w: no article ids provided", domain.ErrValidation)
	}
	if !p.summarizer.Available(ctx) {
		return domain.BatchResult{}, domain.ErrGeneratorUnavailable
	}

	var outcomes []domain.Outcome
	if p.runner != nil {
		outcomes = p.runner.Submit(ctx, ids, deleteAfter)
	} else {
		outcomes = p.processInline(ctx, ids, deleteAfter)
	}

	result := domain.BatchResult{Results: []domain.Outcome{}, Errors: []domain.Outcome{}}
	for _, o := range outcomes {
		result.Add(o)
	}
	p.logger.Info("batch finished", "requested", len(ids), "ok", len(result.Results), "failed", len(result.Errors))
	return result, nil
}

// processInline is used when no queue worker is attached (CLI runs).
func (p *Pipeline) processInline(ctx context.Context, ids []string, deleteAfter bool) []domain.Outcome {
	p.inline.Lock()
	defer p.inline.Unlock()

	outcomes := make([]domain.Outcome, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, p.failed(id, err))
			continue
		}
		outcomes = append(outcomes, p.ProcessOne(ctx, id, deleteAfter))
	}
	return outcomes
}

func (p *Pipeline) failed(id string, err error) domain.Outcome {
	level := slog.LevelWarn
	if errors.Is(err, context.Canceled) {
		level = slog.LevelInfo
	}
	p.logger.Log(context.Background(), level, "article processing failed", "id", id, "error", err)
	return domain.Outcome{GuardianID: id, Status: domain.StatusError, Error: err.Error()}
}
