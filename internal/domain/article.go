package domain

import "time"

// Article is a news item pulled from the content source and kept until it is
// processed or deleted.
type Article struct {
	ID                 string    `json:"id"`
	Type               string    `json:"type"`
	SectionID          string    `json:"sectionId"`
	SectionName        string    `json:"sectionName"`
	WebPublicationDate time.Time `json:"webPublicationDate"`
	WebTitle           string    `json:"webTitle"`
	WebURL             string    `json:"webUrl"`
	PillarID           string    `json:"pillarId"`
	PillarName         string    `json:"pillarName"`
	Thumbnail          string    `json:"thumbnail"`
	TrailText          string    `json:"trailText"`
	BodyText           string    `json:"-"`
	Byline             string    `json:"byline"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Digest is what the language model produces for one article.
type Digest struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

// Summary is a processed article waiting to be published.
type Summary struct {
	ID                        int64     `json:"id"`
	GuardianID                string    `json:"guardianId"`
	TransformedTitle          string    `json:"transformedTitle"`
	Summary                   string    `json:"summary"`
	Section                   string    `json:"section"`
	Category                  string    `json:"category"`
	ImageURL                  string    `json:"imageUrl"`
	PublishedDate             time.Time `json:"publishedDate"`
	ProcessedAt               time.Time `json:"processedAt"`
	ProcessingDurationSeconds *float64  `json:"processingDurationSeconds"`
}

// ProcessingStatus enumerates per-article outcomes of a processing attempt.
type ProcessingStatus string

const (
	StatusSuccess ProcessingStatus = "success"
	StatusSkipped ProcessingStatus = "skipped"
	StatusError   ProcessingStatus = "error"
)

// Outcome reports what happened to one article id during processing.
type Outcome struct {
	GuardianID       string           `json:"guardianId"`
	Status           ProcessingStatus `json:"status"`
	TransformedTitle string           `json:"transformedTitle,omitempty"`
	Summary          string           `json:"summary,omitempty"`
	Category         string           `json:"category,omitempty"`
	Message          string           `json:"message,omitempty"`
	Error            string           `json:"error,omitempty"`
}

// Failed reports whether the outcome is an error.
func (o Outcome) Failed() bool { return o.Status == StatusError }

// BatchResult splits a batch into successes/skips and errors.
type BatchResult struct {
	Results []Outcome `json:"results"`
	Errors  []Outcome `json:"errors"`
}

// Add files the outcome under results or errors.
func (b *BatchResult) Add(o Outcome) {
	if o.Failed() {
		b.Errors = append(b.Errors, o)
		return
	}
	b.Results = append(b.Results, o)
}

// FetchResult is what a content source returned for one window.
type FetchResult struct {
	Articles       []Article
	TotalAvailable int
	Pages          int
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	Days           int       `json:"daysRequested"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	TotalAvailable int       `json:"totalAvailable"`
	Fetched        int       `json:"fetched"`
	New            int       `json:"new"`
	Duplicates     int       `json:"duplicates"`
	Articles       []Article `json:"-"`
}

// ProcessingMetrics aggregates summarization durations.
type ProcessingMetrics struct {
	Count          int      `json:"count"`
	AverageSeconds *float64 `json:"averageSeconds"`
	TotalSeconds   *float64 `json:"totalSeconds"`
	MinSeconds     *float64 `json:"minSeconds"`
	MaxSeconds     *float64 `json:"maxSeconds"`
	Limit          int      `json:"limit"`
}

// TableCounts is a snapshot of row counts per table.
type TableCounts struct {
	Articles   int64 `json:"articles"`
	SeenIDs    int64 `json:"fetchedArticleIds"`
	Summaries  int64 `json:"summaries"`
	Processing int64 `json:"processingRuns"`
}
