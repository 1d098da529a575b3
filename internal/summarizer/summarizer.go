package summarizer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// Service turns article text into a Digest using a text generator.
type Service struct {
	gen    ports.Generator
	policy *bluemonday.Policy
}

var _ ports.Summarizer = (*Service)(nil)

func New(gen ports.Generator) *Service {
	return &Service{gen: gen, policy: bluemonday.StrictPolicy()}
}

// Summarize asks the model for a simplified title, summary and category.
func (s *Service) Summarize(ctx context.Context, title, body string) (domain.Digest, error) {
	if s == nil || s.gen == nil {
		return domain.Digest{}, errors.New("summarizer is not configured")
	}
	if strings.TrimSpace(body) == "" {
		return domain.Digest{}, domain.ErrNoContent
	}

	raw, err := s.gen.Generate(ctx, articlePrompt(title, body))
	if err != nil {
		return domain.Digest{}, fmt.Errorf("generate summary: %w", err)
	}

	digest, err := Parse(s.sanitize(raw))
	if err != nil {
		return domain.Digest{}, fmt.Errorf("%w: %q", err, truncate(raw, 200))
	}
	return digest, nil
}

// Categorize returns a category for an already written summary.
func (s *Service) Categorize(ctx context.Context, title, summary string) (string, error) {
	if s == nil || s.gen == nil {
		return "", errors.New("summarizer is not configured")
	}

	raw, err := s.gen.Generate(ctx, categoryPrompt(title, summary))
	if err != nil {
		return "", fmt.Errorf("generate category: %w", err)
	}

	for _, line := range strings.Split(s.sanitize(raw), "\n") {
		line = clean(categoryPrefix.ReplaceAllString(line, ""))
		if line != "" {
			return NormalizeCategory(strings.Trim(line, `"'.`)), nil
		}
	}
	return DefaultCategory, nil
}

func (s *Service) Available(ctx context.Context) bool {
	return s != nil && s.gen != nil && s.gen.Available(ctx)
}

// sanitize strips any markup the model emitted; entities are decoded again so
// "Trade & Tariffs" survives.
func (s *Service) sanitize(raw string) string {
	return html.UnescapeString(s.policy.Sanitize(raw))
}

// PlainText converts article HTML into whitespace-normalized text.
func PlainText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.Join(strings.Fields(markup), " ")
	}
	doc.Find("script, style").Remove()

	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.Join(strings.Fields(sel.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return strings.Join(strings.Fields(doc.Text()), " ")
	}
	return strings.Join(parts, "\n\n")
}

// ArticleText picks the body text, falling back to the trail text. The body
// arrives as plain text and is only trimmed; the trail text is HTML.
func ArticleText(a domain.Article) string {
	if text := strings.TrimSpace(a.BodyText); text != "" {
		return text
	}
	return PlainText(a.TrailText)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
