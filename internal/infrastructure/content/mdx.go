package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/ports"
)

const extension = ".mdx"

// MDXStore keeps published articles as MDX files (YAML front matter followed by
// the article body) in a single directory read by the site build.
type MDXStore struct {
	dir    string
	logger *slog.Logger
}

var _ ports.ContentStore = (*MDXStore)(nil)

func NewMDXStore(dir string, log *slog.Logger) *MDXStore {
	if log == nil {
		log = logging.Discard()
	}
	return &MDXStore{dir: dir, logger: log}
}

// Dir returns the content directory.
func (s *MDXStore) Dir() string { return s.dir }

type frontMatter struct {
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Section     string `yaml:"section"`
	Category    string `yaml:"category,omitempty"`
	ImageURL    string `yaml:"imageUrl"`
	PublishedAt string `yaml:"publishedAt"`
	GuardianID  string `yaml:"guardianId"`
}

// Create writes a new artifact. An existing file with the same slug is never
// overwritten; domain.ErrConflict is returned instead.
func (s *MDXStore) Create(article domain.PublishedArticle) error {
	path, err := s.path(article.Slug)
	if err != nil {
		return err
	}
	payload, err := render(article)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", domain.ErrConflict, article.Slug+extension)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Update rewrites an existing artifact through a temp file and rename.
func (s *MDXStore) Update(article domain.PublishedArticle) error {
	path, err := s.path(article.Slug)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, article.Slug+extension)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	payload, err := render(article)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+article.Slug+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Remove deletes an artifact; a missing file is not an error.
func (s *MDXStore) Remove(slug string) error {
	path, err := s.path(slug)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// List reads every artifact, newest first. Unreadable files are logged and
// skipped; a missing directory yields an empty list.
func (s *MDXStore) List() ([]domain.PublishedArticle, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	var articles []domain.PublishedArticle
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, extension) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skip unreadable artifact", "file", name, "error", err)
			continue
		}
		article, err := parse(strings.TrimSuffix(name, extension), raw)
		if err != nil {
			s.logger.Warn("skip malformed artifact", "file", name, "error", err)
			continue
		}
		articles = append(articles, article)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		}
		return articles[i].Slug < articles[j].Slug
	})
	return articles, nil
}

func (s *MDXStore) path(slug string) (string, error) {
	if slug == "" || domain.Slug(slug) != slug {
		return "", fmt.Errorf("%w: invalid slug %q", domain.ErrValidation, slug)
	}
	return filepath.Join(s.dir, slug+extension), nil
}

func render(article domain.PublishedArticle) ([]byte, error) {
	meta := frontMatter{
		Title:      article.Title,
		Summary:    article.Summary,
		Section:    article.Section,
		Category:   article.Category,
		ImageURL:   article.ImageURL,
		GuardianID: article.ID,
	}
	if !article.PublishedAt.IsZero() {
		meta.PublishedAt = article.PublishedAt.UTC().Format(time.RFC3339)
	}

	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	body := article.Body
	if body == "" {
		body = article.Summary
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return []byte(b.String()), nil
}

func parse(slug string, raw []byte) (domain.PublishedArticle, error) {
	header, body, err := splitFrontMatter(string(raw))
	if err != nil {
		return domain.PublishedArticle{}, err
	}

	var meta frontMatter
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return domain.PublishedArticle{}, fmt.Errorf("decode front matter: %w", err)
	}

	article := domain.PublishedArticle{
		ID:       meta.GuardianID,
		Slug:     slug,
		Title:    meta.Title,
		Summary:  meta.Summary,
		Section:  meta.Section,
		Category: meta.Category,
		ImageURL: meta.ImageURL,
		Body:     body,
	}
	if article.ID == "" {
		article.ID = slug
	}
	if meta.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339, meta.PublishedAt); err == nil {
			article.PublishedAt = ts
		}
	}
	return article, nil
}

func splitFrontMatter(text string) (string, string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return "", "", errors.New("missing front matter")
	}
	rest := text[len("---\n"):]

	var header string
	switch {
	case strings.HasPrefix(rest, "---"):
		rest = rest[len("---"):]
	default:
		end := strings.Index(rest, "\n---")
		if end < 0 {
			return "", "", errors.New("unterminated front matter")
		}
		header = rest[:end]
		rest = rest[end+len("\n---"):]
	}

	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		rest = ""
	}
	return header, strings.TrimSpace(rest), nil
}
