package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/scanner"
)

const (
	defaultGuardianEndpoint = "https://content.guardianapis.com/search"
	defaultPageSize         = 50
	defaultShowFields       = "thumbnail,trailText,byline,bodyText"
	dateLayout              = "2006-01-02"
)

// GuardianScanner pages through the Guardian search API for a date window.
type GuardianScanner struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	pageSize  int
	pageDelay time.Duration
	logger    *slog.Logger
}

var _ scanner.Scanner = (*GuardianScanner)(nil)

// GuardianOptions configures the scanner; zero values fall back to API defaults.
type GuardianOptions struct {
	Endpoint  string
	APIKey    string
	PageSize  int
	PageDelay time.Duration
}

// NewGuardianScanner wires an HTTP client; pageSize defaults to 50 (API max).
func NewGuardianScanner(client *http.Client, opts GuardianOptions, log *slog.Logger) *GuardianScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaultGuardianEndpoint
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.PageDelay < 0 {
		opts.PageDelay = 0
	}
	if log == nil {
		log = logging.Discard()
	}
	return &GuardianScanner{
		client:    client,
		endpoint:  opts.Endpoint,
		apiKey:    opts.APIKey,
		pageSize:  opts.PageSize,
		pageDelay: opts.PageDelay,
		logger:    log,
	}
}

// Name identifies the strategy inside the registry.
func (g *GuardianScanner) Name() string {
	return "guardian"
}

// Scan collects every article in the window. A failing page ends pagination and
// the pages fetched so far are returned; only context cancellation is an error.
func (g *GuardianScanner) Scan(ctx context.Context, req scanner.Request) (domain.FetchResult, error) {
	var result domain.FetchResult

	limit := rate.Inf
	if g.pageDelay > 0 {
		limit = rate.Every(g.pageDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	for page := 1; ; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("wait for page %d: %w", page, err)
		}

		articles, total, err := g.fetchPage(ctx, req, page)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			g.logger.Warn("stop paginating", "page", page, "error", err)
			break
		}
		result.Pages++
		result.TotalAvailable = total

		if len(articles) == 0 {
			g.logger.Debug("no more articles", "after_page", page-1)
			break
		}

		result.Articles = append(result.Articles, articles...)
		g.logger.Debug("fetched page", "page", page, "count", len(articles),
			"fetched", len(result.Articles), "total", total)

		if len(result.Articles) >= total {
			break
		}
	}

	return result, nil
}

type searchEnvelope struct {
	Response struct {
		Status  string         `json:"status"`
		Total   int            `json:"total"`
		Pages   int            `json:"pages"`
		Results []guardianItem `json:"results"`
	} `json:"response"`
}

type guardianItem struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	SectionID          string `json:"sectionId"`
	SectionName        string `json:"sectionName"`
	WebPublicationDate string `json:"webPublicationDate"`
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	PillarID           string `json:"pillarId"`
	PillarName         string `json:"pillarName"`
	Fields             struct {
		Thumbnail string `json:"thumbnail"`
		TrailText string `json:"trailText"`
		Byline    string `json:"byline"`
		BodyText  string `json:"bodyText"`
	} `json:"fields"`
}

func (g *GuardianScanner) fetchPage(ctx context.Context, req scanner.Request, page int) ([]domain.Article, int, error) {
	pageURL, err := buildPageURL(g.endpoint, g.apiKey, req, page, g.pageSize)
	if err != nil {
		return nil, 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "NewsDesk/1.0")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, fmt.Errorf("guardian returned %s", resp.Status)
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, 0, fmt.Errorf("decode page: %w", err)
	}

	articles := make([]domain.Article, 0, len(envelope.Response.Results))
	for _, item := range envelope.Response.Results {
		articles = append(articles, item.toArticle())
	}
	return articles, envelope.Response.Total, nil
}

func (i guardianItem) toArticle() domain.Article {
	published, _ := time.Parse(time.RFC3339, i.WebPublicationDate)
	return domain.Article{
		ID:                 i.ID,
		Type:               i.Type,
		SectionID:          i.SectionID,
		SectionName:        i.SectionName,
		WebPublicationDate: published.UTC(),
		WebTitle:           i.WebTitle,
		WebURL:             i.WebURL,
		PillarID:           i.PillarID,
		PillarName:         i.PillarName,
		Thumbnail:          i.Fields.Thumbnail,
		TrailText:          i.Fields.TrailText,
		Byline:             i.Fields.Byline,
		BodyText:           i.Fields.BodyText,
	}
}

func buildPageURL(base, apiKey string, req scanner.Request, page, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %s: %w", base, err)
	}

	showFields := req.Options["showFields"]
	if strings.TrimSpace(showFields) == "" {
		showFields = defaultShowFields
	}
	orderBy := req.Options["orderBy"]
	if orderBy == "" {
		orderBy = "newest"
	}

	query := parsed.Query()
	query.Set("api-key", apiKey)
	query.Set("from-date", req.From.Format(dateLayout))
	if !req.To.IsZero() {
		query.Set("to-date", req.To.Format(dateLayout))
	}
	query.Set("page-size", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page))
	query.Set("order-by", orderBy)
	query.Set("show-fields", showFields)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
