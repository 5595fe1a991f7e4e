package analysis

import (
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// minEmergingNewsTerm is the recent-half count a term must reach before
// it counts as emerging or declining in news coverage.
const minEmergingNewsTerm = 5

// NewsExtractor turns a technology's news coverage corpus into a metrics
// snapshot.
type NewsExtractor struct {
	settings
}

// NewNewsExtractor builds an extractor with the given options.
func NewNewsExtractor(opts ...Option) *NewsExtractor {
	return &NewsExtractor{settings: newSettings(opts)}
}

// Extract computes the news snapshot. News analysis needs at least
// MinNewsRecords articles; below that it returns InsufficientDataError.
func (e *NewsExtractor) Extract(articles []types.NewsArticle) (*types.NewsSnapshot, error) {
	if len(articles) == 0 {
		return nil, ErrNoRecords
	}
	if len(articles) < MinNewsRecords {
		return nil, &InsufficientDataError{
			Stream: types.StreamNews, Found: len(articles), Required: MinNewsRecords,
		}
	}
	e.log.WithFields(logrus.Fields{
		"stream":  types.StreamNews,
		"records": len(articles),
	}).Info("extracting news metrics")

	sorted := make([]types.NewsArticle, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt < sorted[j].PublishedAt
	})

	snap := &types.NewsSnapshot{TotalArticles: len(sorted)}
	e.volumeMetrics(sorted, snap)
	e.sourceMetrics(sorted, snap)
	e.authorMetrics(sorted, snap)
	e.topicMetrics(sorted, snap)
	e.temporalMetrics(sorted, snap)
	e.qualityMetrics(sorted, snap)
	return snap, nil
}

// parsePublishedAt accepts ISO 8601 timestamps as collectors deliver
// them: with or without a time component, "Z" or numeric offsets.
func parsePublishedAt(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (e *NewsExtractor) volumeMetrics(articles []types.NewsArticle, snap *types.NewsSnapshot) {
	monthCounts := make(map[string]int)
	for _, a := range articles {
		if t, ok := parsePublishedAt(a.PublishedAt); ok {
			monthCounts[t.Format("2006-01")]++
		}
	}
	snap.ArticleVelocity = monthCounts
	snap.VelocityTrend = ClassifyTrend(monthCounts)

	if len(monthCounts) == 0 {
		return
	}
	snap.PeakMonth = PeakBucket(monthCounts)
	snap.PeakCount = monthCounts[snap.PeakMonth]
	snap.AvgArticlesPerMonth = float64(len(articles)) / float64(len(monthCounts))

	months := SortedKeys(monthCounts)
	window := min(3, len(months))
	recent := 0
	for _, m := range months[len(months)-window:] {
		recent += monthCounts[m]
	}
	snap.RecentVelocity = float64(recent) / float64(window)
}

func (e *NewsExtractor) sourceMetrics(articles []types.NewsArticle, snap *types.NewsSnapshot) {
	sources := make(map[string]int)
	for _, a := range articles {
		name := a.SourceName
		if name == "" {
			name = "unknown"
		}
		sources[name]++
	}
	snap.UniqueSources = len(sources)
	snap.TopSources = TopCounts(sources, topDistributionLimit)
	snap.SourceConcentrationHHI = HHI(sources)
}

func (e *NewsExtractor) authorMetrics(articles []types.NewsArticle, snap *types.NewsSnapshot) {
	authors := make(map[string]int)
	withoutAuthor := 0
	for _, a := range articles {
		if strings.TrimSpace(a.Author) == "" {
			withoutAuthor++
			continue
		}
		authors[a.Author]++
	}
	snap.UniqueAuthors = len(authors)
	snap.TopAuthors = TopCounts(authors, topDistributionLimit)
	snap.ArticlesWithoutAuthorPercentage = float64(withoutAuthor) / float64(len(articles)) * 100
}

func (e *NewsExtractor) topicMetrics(articles []types.NewsArticle, snap *types.NewsSnapshot) {
	allTexts := make([]string, 0, len(articles)*3)
	for _, a := range articles {
		if a.Title != "" {
			allTexts = append(allTexts, a.Title)
		}
		if a.Description != "" {
			allTexts = append(allTexts, a.Description)
		}
		if a.Content != "" {
			allTexts = append(allTexts, a.Content)
		}
	}
	mid := len(articles) / 2
	stats := ExtractTopics(types.StreamNews, allTexts,
		articleTexts(articles[:mid]), articleTexts(articles[mid:]), minEmergingNewsTerm)
	snap.TopKeywords = stats.Top
	snap.EmergingKeywords = stats.Emerging
	snap.DecliningKeywords = stats.Declining
}

func articleTexts(articles []types.NewsArticle) []string {
	texts := make([]string, 0, len(articles))
	for _, a := range articles {
		texts = append(texts, a.Title+" "+a.Description)
	}
	return texts
}

func (e *NewsExtractor) temporalMetrics(articles []types.NewsArticle, snap *types.NewsSnapshot) {
	var dates []time.Time
	for _, a := range articles {
		if t, ok := parsePublishedAt(a.PublishedAt); ok {
			dates = append(dates, t)
		}
	}
	if len(dates) == 0 {
		snap.FirstArticleDate = "unknown"
		return
	}
	first := dates[0]
	for _, d := range dates[1:] {
		if d.Before(first) {
			first = d
		}
	}
	snap.FirstArticleDate = first.Format("2006-01-02")

	now := e.now()
	oneMonthAgo := now.AddDate(0, 0, -30)
	threeMonthsAgo := now.AddDate(0, 0, -90)
	threeMonthsAfterFirst := first.AddDate(0, 0, 90)

	for _, d := range dates {
		if !d.Before(oneMonthAgo) {
			snap.ArticlesLastMonth++
		}
		if !d.Before(threeMonthsAgo) {
			snap.ArticlesLast3Months++
		}
		if !d.After(threeMonthsAfterFirst) {
			snap.ArticlesFirst3Months++
		}
	}
	snap.GrowthRateEarlyVsLate = GrowthPercent(
		float64(snap.ArticlesFirst3Months), float64(snap.ArticlesLast3Months))
}

func (e *NewsExtractor) qualityMetrics(articles []types.NewsArticle, snap *types.NewsSnapshot) {
	for _, a := range articles {
		if a.Content != "" {
			snap.ArticlesWithContent++
		}
		if a.Description != "" {
			snap.ArticlesWithDescription++
		}
	}
	snap.CoveragePercentage = float64(snap.ArticlesWithContent+snap.ArticlesWithDescription) /
		(float64(len(articles)) * 2) * 100
}
