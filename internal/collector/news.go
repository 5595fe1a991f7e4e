package collector

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/internal/config"
	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

const (
	defaultNewsAPIBaseURL = "https://newsapi.org"
	newsLookbackDays      = 30
	newsPageSize          = 100
	newsQueryMaxLen       = 500
)

// NewsCollector collects articles from the NewsAPI "everything" endpoint.
// The free tier only serves the last thirty days, which matches the
// temporal windows the news metrics look at.
type NewsCollector struct {
	client   *Client
	store    storage.RecordStore
	apiKey   string
	maxPages int
	log      *logrus.Logger
	settings
}

// NewNewsCollector creates a NewsAPI collector. An API key is required.
func NewNewsCollector(client *Client, store storage.RecordStore, cfg config.CollectorsConfig, log *logrus.Logger, opts ...Option) *NewsCollector {
	maxPages := cfg.MaxPagesPerQuery
	if maxPages <= 0 {
		maxPages = 10
	}
	return &NewsCollector{
		client:   client,
		store:    store,
		apiKey:   cfg.NewsAPIKey,
		maxPages: maxPages,
		log:      log,
		settings: applyOptions(defaultNewsAPIBaseURL, opts),
	}
}

// buildQuery formats keywords and exclusions in NewsAPI's boolean syntax:
// ("kw1" OR "kw2") AND NOT ("excluded1" OR "excluded2"). NewsAPI rejects
// queries longer than 500 characters.
func (c *NewsCollector) buildQuery(tech *types.Technology) string {
	query := "("
	for i, kw := range tech.Keywords {
		if i > 0 {
			query += " OR "
		}
		query += `"` + kw + `"`
	}
	query += ")"

	if len(tech.ExcludedTerms) > 0 {
		query += " AND NOT ("
		for i, term := range tech.ExcludedTerms {
			if i > 0 {
				query += " OR "
			}
			query += `"` + term + `"`
		}
		query += ")"
	}

	if len(query) > newsQueryMaxLen {
		c.log.WithField("length", len(query)).Warn("news query exceeds limit, truncating")
		query = query[:newsQueryMaxLen-3] + "..."
	}
	return query
}

// articleID derives a stable identifier from the article URL; NewsAPI does
// not assign IDs of its own.
func articleID(rawURL string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(rawURL)))
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Collect fetches recent coverage matching the technology's keywords and
// upserts it into the record store.
func (c *NewsCollector) Collect(ctx context.Context, tech *types.Technology) (*Stats, error) {
	if tech == nil || len(tech.Keywords) == 0 {
		return nil, fmt.Errorf("collector: technology with keywords required")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("collector: NewsAPI key required")
	}

	query := c.buildQuery(tech)
	end := c.now()
	start := end.AddDate(0, 0, -newsLookbackDays)

	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"query":      query,
	}).Info("starting news collection")

	stats := &Stats{TechnologyID: tech.ID, Stream: types.StreamNews}

	for page := 1; page <= c.maxPages; page++ {
		params := url.Values{}
		params.Set("q", query)
		params.Set("from", start.Format("2006-01-02"))
		params.Set("to", end.Format("2006-01-02"))
		params.Set("language", "en")
		params.Set("sortBy", "publishedAt")
		params.Set("pageSize", strconv.Itoa(newsPageSize))
		params.Set("page", strconv.Itoa(page))

		headers := map[string]string{"X-Api-Key": c.apiKey}

		var resp newsAPIResponse
		if err := c.client.GetJSON(ctx, c.baseURL+"/v2/everything", params, headers, &resp); err != nil {
			return stats, fmt.Errorf("collector: news fetch failed: %w", err)
		}
		if resp.Status != "ok" {
			return stats, fmt.Errorf("collector: news API error %s: %s", resp.Code, resp.Message)
		}

		if page == 1 {
			stats.TotalFound = resp.TotalResults
		}
		if len(resp.Articles) == 0 {
			break
		}

		articles := make([]types.NewsArticle, 0, len(resp.Articles))
		for _, a := range resp.Articles {
			if a.URL == "" {
				continue
			}
			articles = append(articles, types.NewsArticle{
				ArticleID:   articleID(a.URL),
				Title:       a.Title,
				Description: a.Description,
				Content:     a.Content,
				URL:         a.URL,
				PublishedAt: a.PublishedAt,
				Author:      a.Author,
				SourceID:    a.Source.ID,
				SourceName:  a.Source.Name,
			})
		}

		if err := c.store.SaveArticles(ctx, tech.ID, articles); err != nil {
			return stats, fmt.Errorf("collector: failed to save articles: %w", err)
		}

		stats.Fetched += len(resp.Articles)
		stats.Saved += len(articles)
		stats.Pages++

		// Short page means the result set is exhausted.
		if len(resp.Articles) < newsPageSize {
			break
		}
	}

	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"saved":      stats.Saved,
		"pages":      stats.Pages,
	}).Info("news collection completed")
	return stats, nil
}
