package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/infrastructure/source"
	"NewsDesk/internal/scanner"
)

func TestClampDaysAndWindow(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ClampDays(0))
	assert.Equal(t, 1, ClampDays(-4))
	assert.Equal(t, 7, ClampDays(7))
	assert.Equal(t, 30, ClampDays(45))

	now := time.Date(2025, time.November, 8, 23, 59, 0, 0, time.UTC)
	from, to := Window(now, 3)
	assert.Equal(t, "2025-11-05", from.Format(windowDateLayout))
	assert.Equal(t, "2025-11-09", to.Format(windowDateLayout))
}

func TestIngestDedupAcrossRuns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStore(t)

	src := &staticSource{total: 3, articles: []domain.Article{
		pendingArticle("a", "body", ""),
		pendingArticle("b", "body", ""),
		pendingArticle("a", "body", ""),
	}}
	ing := NewIngestor(src, repo, nil)
	ing.now = func() time.Time { return time.Date(2025, time.November, 8, 12, 0, 0, 0, time.UTC) }

	report, err := ing.Ingest(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Days)
	assert.Equal(t, "2025-11-07", report.From)
	assert.Equal(t, "2025-11-09", report.To)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.New)
	assert.Equal(t, 1, report.Duplicates)

	_, err = repo.DeleteArticles(ctx, "a")
	require.NoError(t, err)

	report, err = ing.Ingest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, report.New)
	assert.Equal(t, 3, report.Duplicates)

	_, err = repo.GetArticle(ctx, "a")
	require.ErrorIs(t, err, domain.ErrNotFound)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Articles)
	assert.EqualValues(t, 2, counts.SeenIDs)
}

func TestIngestPagesThroughGuardian(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStore(t)

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("page-size"))
		results := ""
		for i := (page - 1) * size; i < min(page*size, 120); i++ {
			if results != "" {
				results += ","
			}
			results += fmt.Sprintf(`{"id":"news/%d","webTitle":"Story %d","webPublicationDate":"2025-11-08T10:00:00Z","fields":{"bodyText":"text"}}`, i, i)
		}
		_, _ = fmt.Fprintf(w, `{"response":{"status":"ok","total":120,"results":[%s]}}`, results)
	}))
	defer server.Close()

	registry := scanner.NewRegistry()
	registry.Register(source.NewGuardianScanner(server.Client(), source.GuardianOptions{Endpoint: server.URL, PageSize: 50}, nil))
	ing := NewIngestor(source.NewStrategySource(registry, "guardian", nil, nil), repo, nil)

	report, err := ing.Ingest(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, requests.Load())
	assert.Equal(t, 120, report.TotalAvailable)
	assert.Equal(t, 120, report.Fetched)
	assert.Equal(t, 120, report.New)

	total, err := repo.CountArticles(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 120, total)
}
