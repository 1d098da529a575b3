package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/infrastructure/storage"
)

func newStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	repo := storage.NewSQLiteRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

type fakeSummarizer struct {
	mu        sync.Mutex
	available bool
	err       error
	category  string
	calls     []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, title, body string) (domain.Digest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, title)
	if f.err != nil {
		return domain.Digest{}, f.err
	}
	return domain.Digest{Title: "Simple " + title, Summary: "Short: " + body, Category: "Climate Policy"}, nil
}

func (f *fakeSummarizer) Categorize(_ context.Context, title, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, title)
	if f.err != nil {
		return "", f.err
	}
	return f.category, nil
}

func (f *fakeSummarizer) Available(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeSummarizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type staticSource struct {
	articles []domain.Article
	total    int
	from, to time.Time
}

func (s *staticSource) FetchWindow(_ context.Context, from, to time.Time) (domain.FetchResult, error) {
	s.from, s.to = from, to
	return domain.FetchResult{Articles: s.articles, TotalAvailable: s.total, Pages: 1}, nil
}

func pendingArticle(id, body, trail string) domain.Article {
	return domain.Article{
		ID:                 id,
		SectionName:        "Environment",
		WebPublicationDate: time.Date(2025, time.November, 8, 9, 0, 0, 0, time.UTC),
		WebTitle:           "Headline " + id,
		Thumbnail:          "https://media.example.org/" + id + ".jpg",
		BodyText:           body,
		TrailText:          trail,
	}
}

func seed(t *testing.T, repo *storage.SQLiteRepository, articles ...domain.Article) {
	t.Helper()
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	require.NoError(t, repo.SaveFetched(context.Background(), articles, ids))
}
