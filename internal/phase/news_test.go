package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techscope/hypecycle/pkg/types"
)

func TestNewsEngine_PeakFrenzy(t *testing.T) {
	snap := &types.NewsSnapshot{
		TotalArticles:          240,
		VelocityTrend:          types.TrendIncreasing,
		AvgArticlesPerMonth:    20,
		RecentVelocity:         30,
		UniqueSources:          12,
		SourceConcentrationHHI: 0.05,
		UniqueAuthors:          60,
		EmergingKeywords:       []string{"breakthrough", "funding", "valuation", "launch", "partnership", "milestone", "record"},
		DecliningKeywords:      []string{"prototype"},
		GrowthRateEarlyVsLate:  150,
		ArticlesFirst3Months:   40,
		ArticlesLast3Months:    90,
		CoveragePercentage:     40,
		TopSources: []types.RankedCount{
			{Name: "TechCrunch", Count: 45},
			{Name: "Reuters", Count: 30},
		},
	}

	engine := NewNewsEngine(DefaultThresholds().News, testLogger())
	v := engine.DeterminePhase(snap)

	assert.Equal(t, types.PhasePeakInflatedExpectations, v.Phase)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
	assert.Contains(t, v.Rationale, "News-based Phase: Peak of Inflated Expectations")
	assert.Contains(t, v.Rationale, "Emerging keywords: 7 (hype terms)")
	assert.Contains(t, v.Rationale, "Top news sources:")
	assert.Contains(t, v.Rationale, "  - TechCrunch: 45 articles")
}

func TestNewsEngine_Trough(t *testing.T) {
	snap := &types.NewsSnapshot{
		TotalArticles:          180,
		VelocityTrend:          types.TrendDecreasing,
		UniqueSources:          9,
		SourceConcentrationHHI: 0.15,
		EmergingKeywords:       []string{},
		DecliningKeywords:      []string{"revolutionary", "disrupt"},
		GrowthRateEarlyVsLate:  -55,
		ArticlesFirst3Months:   60,
		ArticlesLast3Months:    20,
	}

	engine := NewNewsEngine(DefaultThresholds().News, testLogger())
	v := engine.DeterminePhase(snap)

	assert.Equal(t, types.PhaseTroughDisillusionment, v.Phase)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
	assert.Contains(t, v.Rationale, "Growth rate: -55.0%")
	assert.Contains(t, v.Rationale, "Declining keywords: 2")
}
