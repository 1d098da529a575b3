package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDesk/internal/domain"
)

type stubGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *stubGenerator) Available(context.Context) bool { return g.err == nil }

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    domain.Digest
		wantErr bool
	}{
		{
			name:  "markers",
			input: "TITLE: Rents rise again\nSUMMARY: Rents in big cities went up for the fifth month.\nCATEGORY: Housing Market",
			want:  domain.Digest{Title: "Rents rise again", Summary: "Rents in big cities went up for the fifth month.", Category: "Housing Market"},
		},
		{
			name:  "markers without category",
			input: "TITLE: A\nSUMMARY: B",
			want:  domain.Digest{Title: "A", Summary: "B", Category: "News"},
		},
		{
			name:  "markdown emphasis",
			input: "**TITLE:** Storm hits coast\n**SUMMARY:** Heavy winds closed roads.\n**CATEGORY:** Extreme Weather",
			want:  domain.Digest{Title: "Storm hits coast", Summary: "Heavy winds closed roads.", Category: "Extreme Weather"},
		},
		{
			name:  "long category truncated",
			input: "TITLE: A\nSUMMARY: B\nCATEGORY: Very Long Category Name Here",
			want:  domain.Digest{Title: "A", Summary: "B", Category: "Very Long Category"},
		},
		{
			name:  "fallback on missing summary marker",
			input: "TITLE: Foo\nBar baz",
			want:  domain.Digest{Title: "Foo", Summary: "Bar baz", Category: "News"},
		},
		{
			name:  "fallback reads category line",
			input: "Foo\n\nBar baz\nCATEGORY: Public Health",
			want:  domain.Digest{Title: "Foo", Summary: "Bar baz", Category: "Public Health"},
		},
		{
			name:    "single line",
			input:   "just one line",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "   \n",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "News", NormalizeCategory(""))
	assert.Equal(t, "News", NormalizeCategory("   "))
	assert.Equal(t, "Climate Policy", NormalizeCategory("  Climate   Policy "))
	assert.Equal(t, "NATO & Defense", NormalizeCategory("NATO & Defense Spending"))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{reply: "TITLE: <b>Trade</b> talks stall\nSUMMARY: Talks ended early.\nCATEGORY: Trade &amp; Tariffs"}
	svc := New(gen)

	digest, err := svc.Summarize(context.Background(), "Original", "Body text")
	require.NoError(t, err)
	assert.Equal(t, "Trade talks stall", digest.Title)
	assert.Equal(t, "Trade & Tariffs", digest.Category)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Original Title: Original")
	assert.Contains(t, gen.prompts[0], "Body text")
}

func TestSummarizeErrors(t *testing.T) {
	t.Parallel()

	_, err := New(&stubGenerator{}).Summarize(context.Background(), "t", "  ")
	require.ErrorIs(t, err, domain.ErrNoContent)

	boom := errors.New("connection refused")
	_, err = New(&stubGenerator{err: boom}).Summarize(context.Background(), "t", "body")
	require.ErrorIs(t, err, boom)

	_, err = New(&stubGenerator{reply: "nothing useful"}).Summarize(context.Background(), "t", "body")
	require.ErrorIs(t, err, domain.ErrParse)
}

func TestCategorize(t *testing.T) {
	t.Parallel()

	category, err := New(&stubGenerator{reply: "\nCategory: \"Energy Policy\"\n"}).Categorize(context.Background(), "t", "s")
	require.NoError(t, err)
	assert.Equal(t, "Energy Policy", category)

	category, err = New(&stubGenerator{reply: ""}).Categorize(context.Background(), "t", "s")
	require.NoError(t, err)
	assert.Equal(t, "News", category)
}

func TestArticleText(t *testing.T) {
	t.Parallel()

	markup := "<p>First  paragraph.</p><script>x()</script><p>Second\nline.</p>"
	assert.Equal(t, "First paragraph.\n\nSecond line.", PlainText(markup))

	body := "Profits rose as a<b and c > d in 2024.\n\nAnalysts were surprised."
	assert.Equal(t, body, ArticleText(domain.Article{BodyText: "  " + body + "\n"}))
	assert.Equal(t, "Teaser text", ArticleText(domain.Article{TrailText: "<strong>Teaser</strong> text"}))
	assert.True(t, strings.TrimSpace(ArticleText(domain.Article{})) == "")
}
