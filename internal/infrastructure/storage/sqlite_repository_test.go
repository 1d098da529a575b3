package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	repo := NewSQLiteRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func article(id string, published time.Time) domain.Article {
	return domain.Article{
		ID:                 id,
		Type:               "article",
		SectionName:        "World news",
		WebPublicationDate: published,
		WebTitle:           "Title " + id,
		WebURL:             "https://example.org/" + id,
		TrailText:          "<p>trail</p>",
		BodyText:           "body of " + id,
	}
}

func TestSaveFetchedAndLedger(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepository(t)

	published := time.Date(2025, time.November, 8, 10, 30, 0, 0, time.UTC)
	require.NoError(t, repo.SaveFetched(ctx, []domain.Article{article("a", published)}, []string{"a", "b"}))
	require.NoError(t, repo.SaveFetched(ctx, nil, []string{"a", "b"}))

	seen, err := repo.AlreadySeen(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": true}, seen)

	got, err := repo.GetArticle(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Title a", got.WebTitle)
	assert.Equal(t, "body of a", got.BodyText)
	assert.True(t, published.Equal(got.WebPublicationDate))
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetArticle(ctx, "b")
	require.ErrorIs(t, err, domain.ErrNotFound)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Articles)
	assert.EqualValues(t, 2, counts.SeenIDs)
}

func TestListDeleteAndRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepository(t)

	day := func(d int) time.Time { return time.Date(2025, time.November, d, 12, 0, 0, 0, time.UTC) }
	batch := []domain.Article{article("old", day(1)), article("mid", day(5)), article("new", day(9))}
	require.NoError(t, repo.SaveFetched(ctx, batch, []string{"old", "mid", "new"}))

	list, err := repo.ListArticles(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[2].ID)

	page, err := repo.ListArticles(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "mid", page[0].ID)

	n, err := repo.DeletePublishedBetween(ctx, day(4), day(6))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteArticles(ctx, "old", "missing")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	total, err := repo.CountArticles(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	seen, err := repo.AlreadySeen(ctx, []string{"old", "mid"})
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestSaveSummaryUpsertsByGuardianID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepository(t)

	first := 3.5
	require.NoError(t, repo.SaveSummary(ctx, domain.Summary{
		GuardianID: "a", TransformedTitle: "One", Summary: "S1", Category: "Climate Policy",
		ProcessedAt: time.Now(), ProcessingDurationSeconds: &first,
	}))
	second := 1.5
	require.NoError(t, repo.SaveSummary(ctx, domain.Summary{
		GuardianID: "a", TransformedTitle: "Two", Summary: "S2", Category: "Energy Policy",
		ProcessedAt: time.Now(), ProcessingDurationSeconds: &second,
	}))

	done, err := repo.IsProcessed(ctx, "a")
	require.NoError(t, err)
	assert.True(t, done)

	list, err := repo.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Two", list[0].TransformedTitle)
	assert.Equal(t, "Energy Policy", list[0].Category)
	require.NotNil(t, list[0].ProcessingDurationSeconds)
	assert.InDelta(t, 1.5, *list[0].ProcessingDurationSeconds, 1e-9)

	durations, err := repo.RecentDurations(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, durations, 2)

	durations, err = repo.RecentDurations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, durations, 1)
	assert.InDelta(t, 1.5, durations[0], 1e-9)
}

func TestConsumeSummary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveSummary(ctx, domain.Summary{GuardianID: "a", TransformedTitle: "T", Summary: "S", ProcessedAt: time.Now()}))
	list, err := repo.ListSummaries(ctx)
	require.NoError(t, err)
	id := list[0].ID

	boom := errors.New("disk full")
	err = repo.ConsumeSummary(ctx, id, func() error { return boom })
	require.ErrorIs(t, err, boom)

	got, err := repo.GetSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a", got.GuardianID)

	called := false
	require.NoError(t, repo.ConsumeSummary(ctx, id, func() error { called = true; return nil }))
	assert.True(t, called)

	_, err = repo.GetSummary(ctx, id)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.ConsumeSummary(ctx, id, func() error { t.Fatal("publish must not run"); return nil })
	require.ErrorIs(t, err, domain.ErrNotFound)

	durations, err := repo.RecentDurations(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, durations)
}

func TestDeleteSummary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveSummary(ctx, domain.Summary{GuardianID: "a", TransformedTitle: "T", Summary: "S", ProcessedAt: time.Now()}))
	n, err := repo.DeleteSummary(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteSummary(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.NoError(t, repo.Ping(ctx))
}
