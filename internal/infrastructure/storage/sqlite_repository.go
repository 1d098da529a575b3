package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// timeLayout is fixed-width so that lexical order equals chronological order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// idChunk keeps IN lists well below SQLite's bound variable limit.
const idChunk = 500

var articleColumns = []string{
	"id", "type", "section_id", "section_name", "web_publication_date",
	"web_title", "web_url", "pillar_id", "pillar_name", "thumbnail",
	"trail_text", "body_text", "byline", "created_at",
}

var summaryColumns = []string{
	"id", "guardian_id", "transformed_title", "summary", "section", "category",
	"image_url", "published_date", "processed_at", "processing_duration_seconds",
}

// SQLiteRepository persists articles, the seen-id ledger and summaries in SQLite.
type SQLiteRepository struct {
	db  *sql.DB
	qb  sq.StatementBuilderType
	now func() time.Time
}

var (
	_ ports.ArticleRepository = (*SQLiteRepository)(nil)
	_ ports.SummaryRepository = (*SQLiteRepository)(nil)
	_ ports.StatsRepository   = (*SQLiteRepository)(nil)
)

// NewSQLiteRepository wires a sql.DB opened with Open.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		qb:  sq.StatementBuilder.PlaceholderFormat(sq.Question),
		now: time.Now,
	}
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AlreadySeen returns the subset of ids present in the ledger.
func (r *SQLiteRepository) AlreadySeen(ctx context.Context, ids []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for start := 0; start < len(ids); start += idChunk {
		end := min(start+idChunk, len(ids))
		query, args, err := r.qb.Select("id").
			From("fetched_article_ids").
			Where(sq.Eq{"id": ids[start:end]}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build seen query: %w", err)
		}

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query seen: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("scan id: %w", err)
			}
			result[id] = true
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("rows iteration: %w", err)
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("close rows: %w", err)
		}
	}
	return result, nil
}

// SaveFetched inserts new articles and records every seen id in one transaction.
func (r *SQLiteRepository) SaveFetched(ctx context.Context, articles []domain.Article, seenIDs []string) error {
	if len(articles) == 0 && len(seenIDs) == 0 {
		return nil
	}
	now := r.now().UTC()

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range articles {
			createdAt := a.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			query, args, err := r.qb.Insert("articles").
				Options("OR REPLACE").
				Columns(articleColumns...).
				Values(
					a.ID, nullString(a.Type), nullString(a.SectionID), nullString(a.SectionName),
					formatTime(a.WebPublicationDate), a.WebTitle, a.WebURL,
					nullString(a.PillarID), nullString(a.PillarName), nullString(a.Thumbnail),
					nullString(a.TrailText), nullString(a.BodyText), nullString(a.Byline),
					formatTime(createdAt),
				).
				ToSql()
			if err != nil {
				return fmt.Errorf("build article insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert article %s: %w", a.ID, err)
			}
		}

		for _, id := range seenIDs {
			query, args, err := r.qb.Insert("fetched_article_ids").
				Options("OR IGNORE").
				Columns("id", "fetched_at").
				Values(id, formatTime(now)).
				ToSql()
			if err != nil {
				return fmt.Errorf("build ledger insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("track id %s: %w", id, err)
			}
		}
		return nil
	})
}

// GetArticle loads one article; domain.ErrNotFound when absent.
func (r *SQLiteRepository) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	query, args, err := r.qb.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build article query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("get article %s: %w", id, err)
	}
	return article, nil
}

// ListArticles returns pending articles newest publication first. limit <= 0 means all.
func (r *SQLiteRepository) ListArticles(ctx context.Context, offset, limit int) ([]domain.Article, error) {
	builder := r.qb.Select(articleColumns...).
		From("articles").
		OrderBy("web_publication_date DESC", "id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
		if offset > 0 {
			builder = builder.Offset(uint64(offset))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]domain.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// CountArticles counts pending articles.
func (r *SQLiteRepository) CountArticles(ctx context.Context) (int64, error) {
	return r.count(ctx, "articles")
}

// DeleteArticles removes pending articles and reports how many rows went away.
// The ledger is untouched.
func (r *SQLiteRepository) DeleteArticles(ctx context.Context, ids ...string) (int64, error) {
	var removed int64
	for start := 0; start < len(ids); start += idChunk {
		end := min(start+idChunk, len(ids))
		query, args, err := r.qb.Delete("articles").
			Where(sq.Eq{"id": ids[start:end]}).
			ToSql()
		if err != nil {
			return removed, fmt.Errorf("build delete: %w", err)
		}
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return removed, fmt.Errorf("delete articles: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("rows affected: %w", err)
		}
		removed += n
	}
	return removed, nil
}

// DeletePublishedBetween removes pending articles published in [from, to).
func (r *SQLiteRepository) DeletePublishedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	query, args, err := r.qb.Delete("articles").
		Where(sq.GtOrEq{"web_publication_date": formatTime(from)}).
		Where(sq.Lt{"web_publication_date": formatTime(to)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build range delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete range: %w", err)
	}
	return res.RowsAffected()
}

// IsProcessed reports whether a summary exists for the external id.
func (r *SQLiteRepository) IsProcessed(ctx context.Context, guardianID string) (bool, error) {
	query, args, err := r.qb.Select("COUNT(*)").
		From("summaries").
		Where(sq.Eq{"guardian_id": guardianID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build processed query: %w", err)
	}
	var cnt int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&cnt); err != nil {
		return false, fmt.Errorf("query processed: %w", err)
	}
	return cnt > 0, nil
}

// SaveSummary upserts the summary by guardian id and appends a processing run
// when a duration is known.
func (r *SQLiteRepository) SaveSummary(ctx context.Context, s domain.Summary) error {
	processedAt := s.ProcessedAt
	if processedAt.IsZero() {
		processedAt = r.now()
	}

	var duration any
	if s.ProcessingDurationSeconds != nil {
		duration = *s.ProcessingDurationSeconds
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := r.qb.Insert("summaries").
			Columns(summaryColumns[1:]...).
			Values(
				s.GuardianID, s.TransformedTitle, s.Summary,
				nullString(s.Section), nullString(s.Category), nullString(s.ImageURL),
				formatTime(s.PublishedDate), formatTime(processedAt), duration,
			).
			Suffix(`ON CONFLICT(guardian_id) DO UPDATE SET
				transformed_title = excluded.transformed_title,
				summary = excluded.summary,
				section = excluded.section,
				category = excluded.category,
				image_url = excluded.image_url,
				published_date = excluded.published_date,
				processed_at = excluded.processed_at,
				processing_duration_seconds = excluded.processing_duration_seconds`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build summary upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert summary %s: %w", s.GuardianID, err)
		}

		if s.ProcessingDurationSeconds == nil {
			return nil
		}
		query, args, err = r.qb.Insert("processing_runs").
			Columns("guardian_id", "duration_seconds", "processed_at").
			Values(s.GuardianID, duration, formatTime(processedAt)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build run insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("record run %s: %w", s.GuardianID, err)
		}
		return nil
	})
}

// GetSummary loads a summary by its row id.
func (r *SQLiteRepository) GetSummary(ctx context.Context, id int64) (domain.Summary, error) {
	query, args, err := r.qb.Select(summaryColumns...).
		From("summaries").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Summary{}, fmt.Errorf("build summary query: %w", err)
	}
	s, err := scanSummary(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Summary{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Summary{}, fmt.Errorf("get summary %d: %w", id, err)
	}
	return s, nil
}

// ListSummaries returns summaries newest publication first.
func (r *SQLiteRepository) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	query, args, err := r.qb.Select(summaryColumns...).
		From("summaries").
		OrderBy("published_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summaries query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.Summary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return summaries, nil
}

// DeleteSummary removes a summary by guardian id.
func (r *SQLiteRepository) DeleteSummary(ctx context.Context, guardianID string) (int64, error) {
	query, args, err := r.qb.Delete("summaries").
		Where(sq.Eq{"guardian_id": guardianID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build summary delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete summary: %w", err)
	}
	return res.RowsAffected()
}

// ConsumeSummary deletes the summary row and runs publish inside the same
// transaction; the delete is rolled back when publish fails.
func (r *SQLiteRepository) ConsumeSummary(ctx context.Context, id int64, publish func() error) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := r.qb.Delete("summaries").
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build consume: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("consume summary %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		} else if n == 0 {
			return domain.ErrNotFound
		}
		return publish()
	})
}

// RecentDurations returns durations of the most recent processing runs.
// limit <= 0 means all runs.
func (r *SQLiteRepository) RecentDurations(ctx context.Context, limit int) ([]float64, error) {
	builder := r.qb.Select("duration_seconds").
		From("processing_runs").
		OrderBy("processed_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build durations query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query durations: %w", err)
	}
	defer rows.Close()

	var durations []float64
	for rows.Next() {
		var d float64
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan duration: %w", err)
		}
		durations = append(durations, d)
	}
	return durations, rows.Err()
}

// Counts reports row counts of every table.
func (r *SQLiteRepository) Counts(ctx context.Context) (domain.TableCounts, error) {
	var (
		counts domain.TableCounts
		err    error
	)
	if counts.Articles, err = r.count(ctx, "articles"); err != nil {
		return counts, err
	}
	if counts.SeenIDs, err = r.count(ctx, "fetched_article_ids"); err != nil {
		return counts, err
	}
	if counts.Summaries, err = r.count(ctx, "summaries"); err != nil {
		return counts, err
	}
	if counts.Processing, err = r.count(ctx, "processing_runs"); err != nil {
		return counts, err
	}
	return counts, nil
}

func (r *SQLiteRepository) count(ctx context.Context, table string) (int64, error) {
	query, args, err := r.qb.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", table, err)
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var a domain.Article
	var typ, sectionID, sectionName, published, pillarID, pillar sql.NullString
	var thumb, trail, body, byline sql.NullString
	var created string
	err := row.Scan(&a.ID, &typ, &sectionID, &sectionName, &published,
		&a.WebTitle, &a.WebURL, &pillarID, &pillar, &thumb,
		&trail, &body, &byline, &created)
	if err != nil {
		return domain.Article{}, err
	}
	a.Type = typ.String
	a.SectionID = sectionID.String
	a.SectionName = sectionName.String
	a.WebPublicationDate = parseTime(published.String)
	a.PillarID = pillarID.String
	a.PillarName = pillar.String
	a.Thumbnail = thumb.String
	a.TrailText = trail.String
	a.BodyText = body.String
	a.Byline = byline.String
	a.CreatedAt = parseTime(created)
	return a, nil
}

func scanSummary(row rowScanner) (domain.Summary, error) {
	var s domain.Summary
	var section, category, image, published sql.NullString
	var processed string
	var duration sql.NullFloat64
	err := row.Scan(&s.ID, &s.GuardianID, &s.TransformedTitle, &s.Summary,
		&section, &category, &image, &published, &processed, &duration)
	if err != nil {
		return domain.Summary{}, err
	}
	s.Section = section.String
	s.Category = category.String
	s.ImageURL = image.String
	s.PublishedDate = parseTime(published.String)
	s.ProcessedAt = parseTime(processed)
	if duration.Valid {
		d := duration.Float64
		s.ProcessingDurationSeconds = &d
	}
	return s, nil
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, v); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
