package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/internal/config"
	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

const defaultRedditBaseURL = "https://www.reddit.com"

// redditBatches caps collection at 250 posts across three requests; the
// search endpoint serves at most 100 results per request.
var redditBatches = []int{100, 100, 50}

// RedditCollector collects discussion posts from the Reddit search API.
type RedditCollector struct {
	client    *Client
	store     storage.RecordStore
	userAgent string
	log       *logrus.Logger
	settings
}

// NewRedditCollector creates a Reddit collector. Reddit requires a
// descriptive User-Agent; requests without one get aggressively throttled.
func NewRedditCollector(client *Client, store storage.RecordStore, cfg config.CollectorsConfig, log *logrus.Logger, opts ...Option) *RedditCollector {
	userAgent := cfg.RedditUserAgent
	if userAgent == "" {
		userAgent = "hypecycle/1.0"
	}
	return &RedditCollector{
		client:    client,
		store:     store,
		userAgent: userAgent,
		log:       log,
		settings:  applyOptions(defaultRedditBaseURL, opts),
	}
}

// buildQuery formats keywords and exclusions in Reddit's search syntax:
// "kw1" OR "kw2" NOT "excluded1" NOT "excluded2".
func (c *RedditCollector) buildQuery(tech *types.Technology) string {
	quoted := make([]string, len(tech.Keywords))
	for i, kw := range tech.Keywords {
		quoted[i] = `"` + kw + `"`
	}
	query := strings.Join(quoted, " OR ")

	for _, term := range tech.ExcludedTerms {
		query += ` NOT "` + term + `"`
	}
	return query
}

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Dist     int    `json:"dist"`
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Score       *int    `json:"score"`
				NumComments *int    `json:"num_comments"`
				Author      string  `json:"author"`
				Subreddit   string  `json:"subreddit"`
				CreatedUTC  float64 `json:"created_utc"`
				Permalink   string  `json:"permalink"`
				URL         string  `json:"url"`
				IsSelf      bool    `json:"is_self"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Collect fetches up to 250 recent posts matching the technology's keywords
// and upserts them into the record store.
func (c *RedditCollector) Collect(ctx context.Context, tech *types.Technology) (*Stats, error) {
	if tech == nil || len(tech.Keywords) == 0 {
		return nil, fmt.Errorf("collector: technology with keywords required")
	}

	query := c.buildQuery(tech)
	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"query":      query,
	}).Info("starting reddit collection")

	stats := &Stats{TechnologyID: tech.ID, Stream: types.StreamSocial}
	after := ""

	for _, limit := range redditBatches {
		params := url.Values{}
		params.Set("q", query)
		params.Set("sort", "new")
		params.Set("type", "link")
		params.Set("limit", strconv.Itoa(limit))
		if after != "" {
			params.Set("after", after)
		}

		headers := map[string]string{"User-Agent": c.userAgent}

		var resp redditListing
		if err := c.client.GetJSON(ctx, c.baseURL+"/search.json", params, headers, &resp); err != nil {
			return stats, fmt.Errorf("collector: reddit fetch failed: %w", err)
		}

		posts := make([]types.SocialPost, 0, len(resp.Data.Children))
		for _, child := range resp.Data.Children {
			p := child.Data
			if p.ID == "" {
				continue
			}
			postType := "link"
			if p.IsSelf {
				postType = "self"
			}
			posts = append(posts, types.SocialPost{
				PostID:      p.ID,
				Title:       p.Title,
				Body:        p.Selftext,
				Score:       p.Score,
				NumComments: p.NumComments,
				Author:      p.Author,
				Subreddit:   p.Subreddit,
				CreatedUTC:  int64(p.CreatedUTC),
				Permalink:   p.Permalink,
				URL:         p.URL,
				PostType:    postType,
			})
		}

		if err := c.store.SavePosts(ctx, tech.ID, posts); err != nil {
			return stats, fmt.Errorf("collector: failed to save posts: %w", err)
		}

		stats.TotalFound += resp.Data.Dist
		stats.Fetched += len(resp.Data.Children)
		stats.Saved += len(posts)
		stats.Pages++

		if resp.Data.After == "" {
			break
		}
		after = resp.Data.After
	}

	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"saved":      stats.Saved,
		"pages":      stats.Pages,
	}).Info("reddit collection completed")
	return stats, nil
}
