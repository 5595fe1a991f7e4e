package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techscope/hypecycle/pkg/types"
)

func fixtureArticles() []types.NewsArticle {
	// Published-at strings deliberately mix the layouts collectors emit.
	layouts := map[time.Month]string{
		time.January:  "2024-01-15T12:00:00Z",
		time.February: "2024-02-15T12:00:00",
		time.March:    "2024-03-15",
		time.April:    "2024-04-15T12:00:00Z",
		time.May:      "2024-05-15T12:00:00",
		time.June:     "2024-06-15",
	}

	var articles []types.NewsArticle
	for m := time.January; m <= time.June; m++ {
		source := "TechCrunch"
		if m%2 == 0 {
			source = "Wired"
		}
		for i := 0; i < 2; i++ {
			a := types.NewsArticle{
				ArticleID:   fmt.Sprintf("%d-%d", m, i),
				Title:       "fusion startup raises funding",
				URL:         "https://example.org",
				PublishedAt: layouts[m],
				SourceName:  source,
			}
			if i == 0 {
				a.Author = "Jane Doe"
				a.Description = "a longer look at compact fusion reactors"
			}
			articles = append(articles, a)
		}
	}
	return articles
}

func TestNewsExtractor_Empty(t *testing.T) {
	e := NewNewsExtractor(quietLogger())
	_, err := e.Extract(nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestNewsExtractor_InsufficientData(t *testing.T) {
	e := NewNewsExtractor(quietLogger())
	_, err := e.Extract(fixtureArticles()[:9])

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, types.StreamNews, ide.Stream)
	assert.Equal(t, 9, ide.Found)
	assert.Equal(t, 10, ide.Required)
}

func TestParsePublishedAt(t *testing.T) {
	for _, s := range []string{"2024-01-15T12:00:00Z", "2024-01-15T12:00:00+02:00", "2024-01-15T12:00:00", "2024-01-15"} {
		ts, ok := parsePublishedAt(s)
		assert.True(t, ok, s)
		assert.Equal(t, 2024, ts.Year())
	}
	_, ok := parsePublishedAt("")
	assert.False(t, ok)
	_, ok = parsePublishedAt("January 15, 2024")
	assert.False(t, ok)
}

func TestNewsExtractor_Extract(t *testing.T) {
	e := NewNewsExtractor(socialClock(), quietLogger())
	snap, err := e.Extract(fixtureArticles())
	require.NoError(t, err)

	// Volume: two articles in each of six months.
	assert.Equal(t, 12, snap.TotalArticles)
	assert.Equal(t, types.TrendStable, snap.VelocityTrend)
	assert.Equal(t, "2024-01", snap.PeakMonth)
	assert.Equal(t, 2, snap.PeakCount)
	assert.InDelta(t, 2.0, snap.AvgArticlesPerMonth, 1e-9)
	assert.InDelta(t, 2.0, snap.RecentVelocity, 1e-9)

	// Sources alternate month by month.
	assert.Equal(t, 2, snap.UniqueSources)
	assert.Equal(t, []types.RankedCount{
		{Name: "TechCrunch", Count: 6},
		{Name: "Wired", Count: 6},
	}, snap.TopSources)
	assert.InDelta(t, 0.5, snap.SourceConcentrationHHI, 1e-9)

	// Authors: one bylined article per month.
	assert.Equal(t, 1, snap.UniqueAuthors)
	assert.Equal(t, []types.RankedCount{{Name: "Jane Doe", Count: 6}}, snap.TopAuthors)
	assert.InDelta(t, 50.0, snap.ArticlesWithoutAuthorPercentage, 1e-9)

	// Temporal, clock pinned to 2024-06-15.
	assert.Equal(t, "2024-01-15", snap.FirstArticleDate)
	assert.Equal(t, 2, snap.ArticlesLastMonth)
	assert.Equal(t, 6, snap.ArticlesLast3Months)
	assert.Equal(t, 6, snap.ArticlesFirst3Months)
	assert.InDelta(t, 0.0, snap.GrowthRateEarlyVsLate, 1e-9)

	// Quality: no content, half carry descriptions.
	assert.Equal(t, 0, snap.ArticlesWithContent)
	assert.Equal(t, 6, snap.ArticlesWithDescription)
	assert.InDelta(t, 25.0, snap.CoveragePercentage, 1e-9)
}
