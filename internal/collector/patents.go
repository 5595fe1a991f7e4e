package collector

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/internal/config"
	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

const (
	defaultPatentsViewBaseURL = "https://search.patentsview.org"
	patentLookbackYears       = 10
	patentBatchSize           = 1000
)

// PatentCollector collects granted patents from the PatentsView search API.
// PatentsView takes a JSON query document and pages with a sort-key cursor.
type PatentCollector struct {
	client   *Client
	store    storage.RecordStore
	apiKey   string
	maxPages int
	log      *logrus.Logger
	settings
}

// NewPatentCollector creates a PatentsView collector.
func NewPatentCollector(client *Client, store storage.RecordStore, cfg config.CollectorsConfig, log *logrus.Logger, opts ...Option) *PatentCollector {
	maxPages := cfg.MaxPagesPerQuery
	if maxPages <= 0 {
		maxPages = 10
	}
	return &PatentCollector{
		client:   client,
		store:    store,
		apiKey:   cfg.PatentsViewAPIKey,
		maxPages: maxPages,
		log:      log,
		settings: applyOptions(defaultPatentsViewBaseURL, opts),
	}
}

// buildQuery assembles the PatentsView JSON query: a patent matches when
// any keyword appears in its title or abstract within the year range, and
// is dropped when any excluded term appears.
func (c *PatentCollector) buildQuery(tech *types.Technology) map[string]any {
	endYear := c.now().Year()
	startYear := endYear - patentLookbackYears

	var keywordConds []map[string]any
	for _, kw := range tech.Keywords {
		keywordConds = append(keywordConds,
			map[string]any{"_text_all": map[string]string{"patent_title": kw}},
			map[string]any{"_text_all": map[string]string{"patent_abstract": kw}})
	}

	and := []any{
		map[string]any{"_or": keywordConds},
		map[string]any{"_gte": map[string]int{"patent_year": startYear}},
		map[string]any{"_lte": map[string]int{"patent_year": endYear}},
	}

	if len(tech.ExcludedTerms) > 0 {
		var excludedConds []map[string]any
		for _, term := range tech.ExcludedTerms {
			excludedConds = append(excludedConds,
				map[string]any{"_text_all": map[string]string{"patent_title": term}},
				map[string]any{"_text_all": map[string]string{"patent_abstract": term}})
		}
		and = append(and, map[string]any{"_not": map[string]any{"_or": excludedConds}})
	}

	return map[string]any{"_and": and}
}

type patentsViewResponse struct {
	TotalHits int `json:"total_hits"`
	Patents   []struct {
		PatentID          string                 `json:"patent_id"`
		Title             string                 `json:"patent_title"`
		Abstract          string                 `json:"patent_abstract"`
		Date              string                 `json:"patent_date"`
		Year              *int                   `json:"patent_year"`
		Type              string                 `json:"patent_type"`
		BackwardCitations *int                   `json:"patent_num_us_patents_cited"`
		ForwardCitations  *int                   `json:"patent_num_times_cited_by_us_patents"`
		Assignees         []types.PatentAssignee `json:"assignees"`
	} `json:"patents"`
}

// Collect fetches patents matching the technology's keywords granted in the
// last ten years and upserts them into the record store.
func (c *PatentCollector) Collect(ctx context.Context, tech *types.Technology) (*Stats, error) {
	if tech == nil || len(tech.Keywords) == 0 {
		return nil, fmt.Errorf("collector: technology with keywords required")
	}

	query := c.buildQuery(tech)
	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
	}).Info("starting patent collection")

	stats := &Stats{TechnologyID: tech.ID, Stream: types.StreamPatent}
	var cursor []any

	for page := 0; page < c.maxPages; page++ {
		options := map[string]any{
			"size":              patentBatchSize,
			"exclude_withdrawn": true,
		}
		if cursor != nil {
			options["after"] = cursor
		}

		payload := map[string]any{
			"q": query,
			"f": []string{
				"patent_id", "patent_title", "patent_abstract",
				"patent_date", "patent_year", "patent_type",
				"patent_num_us_patents_cited",
				"patent_num_times_cited_by_us_patents",
				"assignees",
			},
			"s": []map[string]string{
				{"patent_year": "desc"},
				{"patent_id": "asc"},
			},
			"o": options,
		}

		headers := map[string]string{}
		if c.apiKey != "" {
			headers["X-Api-Key"] = c.apiKey
		}

		var resp patentsViewResponse
		if err := c.client.PostJSON(ctx, c.baseURL+"/api/v1/patent/", payload, headers, &resp); err != nil {
			return stats, fmt.Errorf("collector: patent fetch failed: %w", err)
		}

		if page == 0 {
			stats.TotalFound = resp.TotalHits
		}

		patents := make([]types.Patent, 0, len(resp.Patents))
		for _, p := range resp.Patents {
			if p.PatentID == "" {
				continue
			}
			patents = append(patents, types.Patent{
				PatentID:          p.PatentID,
				Title:             p.Title,
				Abstract:          p.Abstract,
				Date:              p.Date,
				Year:              p.Year,
				Type:              p.Type,
				BackwardCitations: p.BackwardCitations,
				ForwardCitations:  p.ForwardCitations,
				Assignees:         p.Assignees,
			})
		}

		if err := c.store.SavePatents(ctx, tech.ID, patents); err != nil {
			return stats, fmt.Errorf("collector: failed to save patents: %w", err)
		}

		stats.Fetched += len(resp.Patents)
		stats.Saved += len(patents)
		stats.Pages++

		// Cursor pagination: resume after the last (year, id) sort key.
		if len(resp.Patents) < patentBatchSize {
			break
		}
		last := resp.Patents[len(resp.Patents)-1]
		cursor = []any{last.Year, last.PatentID}
	}

	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"saved":      stats.Saved,
		"pages":      stats.Pages,
	}).Info("patent collection completed")
	return stats, nil
}
