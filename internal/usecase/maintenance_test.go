package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
)

func TestAggregateDurations(t *testing.T) {
	t.Parallel()

	empty := AggregateDurations(nil, 10)
	assert.Equal(t, 0, empty.Count)
	assert.Nil(t, empty.AverageSeconds)
	assert.Equal(t, 10, empty.Limit)

	m := AggregateDurations([]float64{1.004, 2.5, 4}, 0)
	assert.Equal(t, 3, m.Count)
	assert.InDelta(t, 7.5, *m.TotalSeconds, 1e-9)
	assert.InDelta(t, 2.5, *m.AverageSeconds, 1e-9)
	assert.InDelta(t, 1.0, *m.MinSeconds, 1e-9)
	assert.InDelta(t, 4.0, *m.MaxSeconds, 1e-9)
}

func TestMaintenanceOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStore(t)

	older := pendingArticle("older", "b", "")
	older.WebPublicationDate = time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	seed(t, repo, older, pendingArticle("a", "b", ""), pendingArticle("b", "b", ""))

	m := NewMaintenance(repo, repo, repo, &fakeSummarizer{available: true})

	page, err := m.ListPending(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Articles, 2)

	all, err := m.ListPending(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all.Articles, 3)
	assert.Equal(t, "older", all.Articles[2].ID)

	_, err = m.PurgeRange(ctx, time.Now(), time.Now().Add(-time.Hour))
	require.ErrorIs(t, err, domain.ErrValidation)

	n, err := m.PurgeRange(ctx, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = m.DeletePending(ctx, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	n, err = m.DeletePending(ctx, []string{"a"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.ErrorIs(t, m.DeleteSummary(ctx, "nope"), domain.ErrNotFound)

	d := 2.0
	require.NoError(t, repo.SaveSummary(ctx, domain.Summary{GuardianID: "b", TransformedTitle: "T", Summary: "S", ProcessingDurationSeconds: &d}))
	require.NoError(t, m.DeleteSummary(ctx, "b"))

	metrics, err := m.Metrics(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Count)
	assert.InDelta(t, 2.0, *metrics.AverageSeconds, 1e-9)

	counts, err := m.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Articles)
	assert.EqualValues(t, 3, counts.SeenIDs)
	assert.EqualValues(t, 0, counts.Summaries)
	assert.EqualValues(t, 1, counts.Processing)

	health := m.Health(ctx)
	assert.True(t, health.Database)
	assert.True(t, health.Generator)
}
