package domain

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	dashRun       = regexp.MustCompile(`-+`)
	nonAlnumRun   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slug derives the artifact name from a title. The result only contains
// lowercase ASCII letters, digits and single dashes, and may be empty.
func Slug(title string) string {
	s := strings.ToLower(title)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CategorySlug derives the URL segment for a category name.
func CategorySlug(name string) string {
	s := strings.ReplaceAll(strings.ToLower(name), "&", "and")
	s = nonAlnumRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
