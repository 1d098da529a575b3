package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
	"NewsDesk/internal/scanner"
)

// StrategySource implements ArticleSource via a registered scanner strategy.
type StrategySource struct {
	registry *scanner.Registry
	provider string
	options  map[string]string
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the configured provider.
func NewStrategySource(reg *scanner.Registry, provider string, options map[string]string, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		provider: provider,
		options:  options,
		logger:   log,
	}
}

// FetchWindow resolves the provider scanner and runs it for [from, to).
func (s *StrategySource) FetchWindow(ctx context.Context, from, to time.Time) (domain.FetchResult, error) {
	if s.registry == nil {
		return domain.FetchResult{}, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.provider)
	if err != nil {
		return domain.FetchResult{}, fmt.Errorf("provider %s: %w", s.provider, err)
	}

	s.debug("fetch window", "provider", s.provider,
		"from", from.Format(dateLayout), "to", to.Format(dateLayout))

	result, err := strategy.Scan(ctx, scanner.Request{From: from, To: to, Options: s.options})
	if err != nil {
		return result, fmt.Errorf("scan %s: %w", s.provider, err)
	}

	s.debug("window done", "provider", s.provider, "pages", result.Pages,
		"articles", len(result.Articles), "total", result.TotalAvailable)
	return result, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
