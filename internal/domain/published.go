package domain

import "time"

// PublishedArticle is a content artifact read back from the site directory.
type PublishedArticle struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Section     string    `json:"section"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	PublishedAt time.Time `json:"publishedAt"`
	Body        string    `json:"-"`
}

// Category groups published articles sharing a category slug.
type Category struct {
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	ArticleCount   int       `json:"articleCount"`
	LatestPostDate time.Time `json:"latestPostDate"`
}

// DisplayCategory is the category shown to readers: the stored category, then
// the section, then News.
func (a PublishedArticle) DisplayCategory() string {
	switch {
	case a.Category != "":
		return a.Category
	case a.Section != "":
		return a.Section
	default:
		return "News"
	}
}
