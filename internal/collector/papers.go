package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/internal/config"
	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

const (
	defaultSemanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1"
	paperLookbackYears            = 10
	paperFields                   = "paperId,title,year,citationCount,publicationDate,abstract,authors,venue,openAccessPdf"
)

// PaperCollector collects scientific publications from the Semantic Scholar
// bulk search API using continuation-token pagination.
type PaperCollector struct {
	client   *Client
	store    storage.RecordStore
	apiKey   string
	maxPages int
	log      *logrus.Logger
	settings
}

// NewPaperCollector creates a Semantic Scholar collector. The API key is
// optional; it raises upstream rate limits when present.
func NewPaperCollector(client *Client, store storage.RecordStore, cfg config.CollectorsConfig, log *logrus.Logger, opts ...Option) *PaperCollector {
	maxPages := cfg.MaxPagesPerQuery
	if maxPages <= 0 {
		maxPages = 10
	}
	return &PaperCollector{
		client:   client,
		store:    store,
		apiKey:   cfg.SemanticScholarAPIKey,
		maxPages: maxPages,
		log:      log,
		settings: applyOptions(defaultSemanticScholarBaseURL, opts),
	}
}

// buildQuery formats keywords and exclusions in Semantic Scholar's bulk
// search syntax: ("kw1" | "kw2") -"excluded1" -"excluded2".
func (c *PaperCollector) buildQuery(tech *types.Technology) string {
	quoted := make([]string, len(tech.Keywords))
	for i, kw := range tech.Keywords {
		quoted[i] = `"` + kw + `"`
	}
	query := "(" + strings.Join(quoted, " | ") + ")"

	for _, term := range tech.ExcludedTerms {
		query += ` -"` + term + `"`
	}
	return query
}

func (c *PaperCollector) dateRange() string {
	end := c.now()
	start := end.AddDate(-paperLookbackYears, 0, 0)
	return start.Format("2006-01-02") + ":" + end.Format("2006-01-02")
}

type semanticScholarResponse struct {
	Total int    `json:"total"`
	Token string `json:"token"`
	Data  []struct {
		PaperID         string `json:"paperId"`
		Title           string `json:"title"`
		Year            *int   `json:"year"`
		CitationCount   *int   `json:"citationCount"`
		PublicationDate string `json:"publicationDate"`
		Abstract        string `json:"abstract"`
		Authors         []struct {
			Name string `json:"name"`
		} `json:"authors"`
		Venue         string `json:"venue"`
		OpenAccessPDF *struct {
			URL string `json:"url"`
		} `json:"openAccessPdf"`
	} `json:"data"`
}

// Collect fetches papers matching the technology's keywords published in
// the last ten years and upserts them into the record store.
func (c *PaperCollector) Collect(ctx context.Context, tech *types.Technology) (*Stats, error) {
	if tech == nil || len(tech.Keywords) == 0 {
		return nil, fmt.Errorf("collector: technology with keywords required")
	}

	query := c.buildQuery(tech)
	dates := c.dateRange()
	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"query":      query,
		"dates":      dates,
	}).Info("starting paper collection")

	stats := &Stats{TechnologyID: tech.ID, Stream: types.StreamPaper}
	token := ""

	for page := 0; page < c.maxPages; page++ {
		params := url.Values{}
		params.Set("query", query)
		params.Set("fields", paperFields)
		params.Set("publicationDateOrYear", dates)
		if token != "" {
			params.Set("token", token)
		}

		headers := map[string]string{}
		if c.apiKey != "" {
			headers["x-api-key"] = c.apiKey
		}

		var resp semanticScholarResponse
		if err := c.client.GetJSON(ctx, c.baseURL+"/paper/search/bulk", params, headers, &resp); err != nil {
			return stats, fmt.Errorf("collector: paper fetch failed: %w", err)
		}

		if page == 0 {
			stats.TotalFound = resp.Total
		}

		papers := make([]types.Paper, 0, len(resp.Data))
		for _, p := range resp.Data {
			if p.PaperID == "" {
				continue
			}
			paper := types.Paper{
				PaperID:         p.PaperID,
				Title:           p.Title,
				Year:            p.Year,
				CitationCount:   p.CitationCount,
				PublicationDate: p.PublicationDate,
				Abstract:        p.Abstract,
				Venue:           p.Venue,
			}
			for _, a := range p.Authors {
				paper.Authors = append(paper.Authors, a.Name)
			}
			if p.OpenAccessPDF != nil {
				paper.OpenAccessPDF = p.OpenAccessPDF.URL
			}
			papers = append(papers, paper)
		}

		if err := c.store.SavePapers(ctx, tech.ID, papers); err != nil {
			return stats, fmt.Errorf("collector: failed to save papers: %w", err)
		}

		stats.Fetched += len(resp.Data)
		stats.Saved += len(papers)
		stats.Pages++
		c.log.WithFields(logrus.Fields{
			"page":  stats.Pages,
			"count": len(papers),
		}).Debug("paper batch saved")

		if resp.Token == "" {
			break
		}
		token = resp.Token
	}

	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"saved":      stats.Saved,
		"pages":      stats.Pages,
	}).Info("paper collection completed")
	return stats, nil
}
