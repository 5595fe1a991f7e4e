package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techscope/hypecycle/pkg/types"
)

func TestPaperEngine_TechnologyTrigger(t *testing.T) {
	snap := &types.PaperSnapshot{
		TotalPapers:             120,
		PublicationVelocity:     map[int]int{2022: 4, 2023: 8, 2024: 10},
		VelocityTrend:           types.TrendIncreasing,
		AvgPapersPerYear:        10,
		PeakYear:                2024,
		PeakCount:               10,
		AvgCitationsPerPaper:    4,
		CitationGrowthRate:      5,
		BasicResearchPercentage: 85,
		AcademicVenuePercentage: 97,
		IndustryVenuePercentage: 3,
		PapersLastYear:          10,
		PapersLast2Years:        5,
		GrowthRateEarlyVsLate:   120,
	}

	engine := NewPaperEngine(DefaultThresholds().Paper, testLogger())
	v := engine.DeterminePhase(snap)

	assert.Equal(t, types.PhaseTechnologyTrigger, v.Phase)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
	// A recent peak plus rising velocity gives the peak phase partial credit.
	assert.InDelta(t, 0.5, v.Scores[types.PhasePeakInflatedExpectations], 1e-9)
	assert.Contains(t, v.Rationale, "Phase determined: Technology Trigger")
	assert.Contains(t, v.Rationale, "Key indicators:")
	assert.Contains(t, v.Rationale, "High basic research percentage: 85.0%")
	assert.Contains(t, v.Rationale, "Phase scores (for comparison):")
}

func TestPaperEngine_TroughAfterPeak(t *testing.T) {
	snap := &types.PaperSnapshot{
		TotalPapers:               300,
		PublicationVelocity:       map[int]int{2019: 30, 2020: 80, 2021: 100, 2022: 50, 2023: 40},
		VelocityTrend:             types.TrendDecreasing,
		AvgPapersPerYear:          60,
		PeakYear:                  2021,
		PeakCount:                 100,
		AvgCitationsPerPaper:      25,
		CitationGrowthRate:        2,
		AppliedResearchPercentage: 35,
		PapersLastYear:            40,
		PapersLast2Years:          90,
		GrowthRateEarlyVsLate:     -40,
	}

	engine := NewPaperEngine(DefaultThresholds().Paper, testLogger())
	v := engine.DeterminePhase(snap)

	// Declining velocity, a peak two years back, stagnant citations, and
	// output well below peak meet every trough indicator.
	assert.Equal(t, types.PhaseTroughDisillusionment, v.Phase)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
	assert.Contains(t, v.Rationale, "Peak was in 2021, now declining")
}
