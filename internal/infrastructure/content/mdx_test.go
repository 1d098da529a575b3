package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
)

func sampleArticle(slug string, published time.Time) domain.PublishedArticle {
	return domain.PublishedArticle{
		ID:          "world/2025/nov/08/" + slug,
		Slug:        slug,
		Title:       `Prices "finally" fall`,
		Summary:     "Food prices fell: the first drop this year.",
		Section:     "Business",
		Category:    "Cost of Living",
		ImageURL:    "https://media.example.org/a.jpg",
		PublishedAt: published,
	}
}

func TestMDXStoreCreateAndList(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "articles")
	store := NewMDXStore(dir, nil)

	older := sampleArticle("older", time.Date(2025, time.November, 7, 9, 0, 0, 0, time.UTC))
	newer := sampleArticle("newer", time.Date(2025, time.November, 8, 9, 0, 0, 0, time.UTC))
	require.NoError(t, store.Create(older))
	require.NoError(t, store.Create(newer))

	raw, err := os.ReadFile(filepath.Join(dir, "newer.mdx"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "guardianId: world/2025/nov/08/newer")
	assert.Contains(t, string(raw), "\n---\n\nFood prices fell: the first drop this year.\n")

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Slug)
	assert.Equal(t, `Prices "finally" fall`, list[0].Title)
	assert.Equal(t, "Food prices fell: the first drop this year.", list[0].Summary)
	assert.Equal(t, "Cost of Living", list[0].Category)
	assert.True(t, newer.PublishedAt.Equal(list[0].PublishedAt))
}

func TestMDXStoreCreateConflict(t *testing.T) {
	t.Parallel()

	store := NewMDXStore(t.TempDir(), nil)
	first := sampleArticle("same-title", time.Now())
	require.NoError(t, store.Create(first))

	second := first
	second.Summary = "something else"
	err := store.Create(second)
	require.ErrorIs(t, err, domain.ErrConflict)

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.Summary, list[0].Summary)
}

func TestMDXStoreUpdateAndRemove(t *testing.T) {
	t.Parallel()

	store := NewMDXStore(t.TempDir(), nil)
	article := sampleArticle("story", time.Now())
	article.Category = ""
	require.NoError(t, store.Create(article))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Category)
	assert.Equal(t, "Business", list[0].DisplayCategory())

	updated := list[0]
	updated.Category = "Food Prices"
	require.NoError(t, store.Update(updated))

	list, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, "Food Prices", list[0].Category)
	assert.Equal(t, article.Summary, list[0].Body)

	require.NoError(t, store.Remove("story"))
	require.NoError(t, store.Remove("story"))
	list, err = store.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	require.ErrorIs(t, store.Update(updated), domain.ErrNotFound)
	require.ErrorIs(t, store.Remove("../etc/passwd"), domain.ErrValidation)
}

func TestMDXStoreListSkipsMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.mdx"), []byte("no front matter"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.mdx"), []byte("---\ntitle: \"Ok\"\nsummary: \"S\"\npublishedAt: \"2025-11-08T10:00:00.000Z\"\n---\n\nS\n"), 0o644))

	list, err := NewMDXStore(dir, nil).List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ok", list[0].ID)
	assert.Equal(t, 2025, list[0].PublishedAt.Year())

	missing, err := NewMDXStore(filepath.Join(dir, "absent"), nil).List()
	require.NoError(t, err)
	assert.Empty(t, missing)
}
