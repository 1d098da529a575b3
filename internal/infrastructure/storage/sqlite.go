package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	type TEXT,
	section_id TEXT,
	section_name TEXT,
	web_publication_date TEXT,
	web_title TEXT,
	web_url TEXT,
	pillar_id TEXT,
	pillar_name TEXT,
	thumbnail TEXT,
	trail_text TEXT,
	body_text TEXT,
	byline TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(web_publication_date);

CREATE TABLE IF NOT EXISTS fetched_article_ids (
	id TEXT PRIMARY KEY,
	fetched_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS summaries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guardian_id TEXT UNIQUE NOT NULL,
	transformed_title TEXT NOT NULL,
	summary TEXT NOT NULL,
	section TEXT,
	category TEXT,
	image_url TEXT,
	published_date TEXT,
	processed_at TEXT NOT NULL,
	processing_duration_seconds REAL
);

CREATE TABLE IF NOT EXISTS processing_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	guardian_id TEXT NOT NULL,
	duration_seconds REAL NOT NULL,
	processed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_processing_runs_processed ON processing_runs(processed_at);
`

// Open opens (creating if needed) the SQLite database at path and applies the schema.
// SQLite serialises writers anyway; a single connection keeps transactions and
// ":memory:" databases consistent.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}
