package summarizer

import (
	"regexp"
	"strings"

	"NewsDesk/internal/domain"
)

// DefaultCategory is used when the model names none.
const DefaultCategory = "News"

const maxCategoryWords = 3

var (
	titleExpr    = regexp.MustCompile(`(?is)TITLE:\s*(.+?)(?:\n|SUMMARY:|$)`)
	summaryExpr  = regexp.MustCompile(`(?is)SUMMARY:\s*(.+?)(?:\n|CATEGORY:|$)`)
	categoryExpr = regexp.MustCompile(`(?i)CATEGORY:[ \t]*([^\n]*)`)

	titlePrefix    = regexp.MustCompile(`(?i)^\s*TITLE:\s*`)
	summaryPrefix  = regexp.MustCompile(`(?i)^\s*SUMMARY:\s*`)
	categoryPrefix = regexp.MustCompile(`(?i)^\s*CATEGORY:\s*`)
)

// Parse extracts title, summary and category from a model response. Marker
// extraction is tried first; when TITLE or SUMMARY is missing a line-based
// fallback takes over.
func Parse(response string) (domain.Digest, error) {
	titleMatch := titleExpr.FindStringSubmatch(response)
	summaryMatch := summaryExpr.FindStringSubmatch(response)
	if titleMatch == nil || summaryMatch == nil {
		return parseLines(response)
	}

	digest := domain.Digest{
		Title:    clean(titleMatch[1]),
		Summary:  clean(summaryMatch[1]),
		Category: DefaultCategory,
	}
	if m := categoryExpr.FindStringSubmatch(response); m != nil {
		digest.Category = NormalizeCategory(clean(m[1]))
	}

	if digest.Title == "" || digest.Summary == "" {
		return parseLines(response)
	}
	return digest, nil
}

func parseLines(response string) (domain.Digest, error) {
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	digest := domain.Digest{Category: DefaultCategory}
	if len(lines) > 0 {
		digest.Title = clean(titlePrefix.ReplaceAllString(lines[0], ""))
	}

	for _, line := range lines[min(1, len(lines)):] {
		switch {
		case categoryPrefix.MatchString(line):
			digest.Category = NormalizeCategory(clean(categoryPrefix.ReplaceAllString(line, "")))
		case digest.Summary == "":
			digest.Summary = clean(summaryPrefix.ReplaceAllString(line, ""))
		}
	}

	if digest.Title == "" || digest.Summary == "" {
		return domain.Digest{}, domain.ErrParse
	}
	return digest, nil
}

// NormalizeCategory keeps at most three words; an empty category becomes News.
func NormalizeCategory(category string) string {
	words := strings.Fields(category)
	if len(words) == 0 {
		return DefaultCategory
	}
	if len(words) > maxCategoryWords {
		words = words[:maxCategoryWords]
	}
	return strings.Join(words, " ")
}

// clean drops surrounding whitespace and markdown emphasis left by the model.
func clean(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_"))
}
