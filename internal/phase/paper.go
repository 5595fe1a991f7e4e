package phase

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// NewPaperEngine builds the rule engine for the paper stream.
func NewPaperEngine(t PaperThresholds, log *logrus.Logger) *Engine[*types.PaperSnapshot] {
	return NewEngine(types.StreamPaper, paperRules(t), paperRationale(), log)
}

func paperRules(t PaperThresholds) RuleSet[*types.PaperSnapshot] {
	return RuleSet[*types.PaperSnapshot]{
		types.PhaseTechnologyTrigger: {
			{"rapid_early_growth", 0.3, func(m *types.PaperSnapshot) bool {
				return m.VelocityTrend == types.TrendIncreasing && m.GrowthRateEarlyVsLate > 50
			}},
			{"basic_research_dominant", 0.25, func(m *types.PaperSnapshot) bool {
				return m.BasicResearchPercentage > t.BasicResearchHigh
			}},
			{"low_citations", 0.2, func(m *types.PaperSnapshot) bool {
				return m.AvgCitationsPerPaper < 20
			}},
			{"academic_venues_dominant", 0.15, func(m *types.PaperSnapshot) bool {
				return m.AcademicVenuePercentage > 90
			}},
			{"recent_output_below_average", 0.1, func(m *types.PaperSnapshot) bool {
				if len(m.PublicationVelocity) == 0 {
					return false
				}
				return float64(m.PapersLast2Years) < m.AvgPapersPerYear*2
			}},
		},
		types.PhasePeakInflatedExpectations: {
			{"peak_recent", 0.3, func(m *types.PaperSnapshot) bool {
				gap, ok := yearsSincePeak(m.PublicationVelocity, m.PeakYear)
				return ok && gap <= t.PeakRecencyYears
			}},
			{"rapid_citation_growth", 0.25, func(m *types.PaperSnapshot) bool {
				return m.CitationGrowthRate > t.CitationGrowthHigh
			}},
			{"shifting_toward_applied", 0.25, func(m *types.PaperSnapshot) bool {
				return m.AppliedResearchPercentage >= 40 && m.AppliedResearchPercentage <= 60 &&
					m.ResearchTypeTrend == "toward_applied"
			}},
			{"velocity_high", 0.2, func(m *types.PaperSnapshot) bool {
				return m.VelocityTrend == types.TrendIncreasing || m.VelocityTrend == types.TrendPeakReached
			}},
		},
		types.PhaseTroughDisillusionment: {
			{"velocity_declining", 0.35, func(m *types.PaperSnapshot) bool {
				return m.VelocityTrend == types.TrendDecreasing
			}},
			{"just_past_peak", 0.3, func(m *types.PaperSnapshot) bool {
				gap, ok := yearsSincePeak(m.PublicationVelocity, m.PeakYear)
				return ok && gap >= 1 && gap <= 3
			}},
			{"citation_growth_stagnant", 0.2, func(m *types.PaperSnapshot) bool {
				return m.CitationGrowthRate < t.CitationGrowthModerate
			}},
			{"output_well_below_peak", 0.15, func(m *types.PaperSnapshot) bool {
				return float64(m.PapersLastYear) < float64(m.PeakCount)*0.7
			}},
		},
		types.PhaseSlopeEnlightenment: {
			{"applied_research_high", 0.3, func(m *types.PaperSnapshot) bool {
				return m.AppliedResearchPercentage >= t.AppliedResearchHigh &&
					m.AppliedResearchPercentage < t.AppliedResearchVeryHigh
			}},
			{"steady_growth", 0.25, func(m *types.PaperSnapshot) bool {
				return (m.VelocityTrend == types.TrendStable || m.VelocityTrend == types.TrendIncreasing) &&
					m.GrowthRateEarlyVsLate > 0
			}},
			{"moderate_citation_growth", 0.25, func(m *types.PaperSnapshot) bool {
				return m.CitationGrowthRate >= t.CitationGrowthModerate &&
					m.CitationGrowthRate < t.CitationGrowthHigh
			}},
			{"peak_4_to_7_years_ago", 0.2, func(m *types.PaperSnapshot) bool {
				gap, ok := yearsSincePeak(m.PublicationVelocity, m.PeakYear)
				return ok && gap >= 4 && gap <= 7
			}},
		},
		types.PhasePlateauProductivity: {
			{"applied_research_very_high", 0.35, func(m *types.PaperSnapshot) bool {
				return m.AppliedResearchPercentage > t.AppliedResearchVeryHigh
			}},
			{"velocity_stable", 0.25, func(m *types.PaperSnapshot) bool {
				return m.VelocityTrend == types.TrendStable
			}},
			{"well_cited_corpus", 0.2, func(m *types.PaperSnapshot) bool {
				return m.AvgCitationsPerPaper > 50
			}},
			{"industry_venues_present", 0.1, func(m *types.PaperSnapshot) bool {
				return m.IndustryVenuePercentage > 30
			}},
			{"peak_long_ago", 0.1, func(m *types.PaperSnapshot) bool {
				gap, ok := yearsSincePeak(m.PublicationVelocity, m.PeakYear)
				return ok && gap >= 8
			}},
		},
	}
}

func paperRationale() RationaleText[*types.PaperSnapshot] {
	return RationaleText[*types.PaperSnapshot]{
		Header:      "Phase determined",
		Indicators:  "Key indicators:",
		ScoresTitle: "Phase scores (for comparison):",
		Headline: func(m *types.PaperSnapshot, p types.Phase) []string {
			switch p {
			case types.PhaseTechnologyTrigger:
				return []string{
					fmt.Sprintf("- High basic research percentage: %.1f%%", m.BasicResearchPercentage),
					fmt.Sprintf("- Publication trend: %s", m.VelocityTrend),
					fmt.Sprintf("- Average citations: %.1f (low, indicating early stage)", m.AvgCitationsPerPaper),
					fmt.Sprintf("- Academic venue dominance: %.1f%%", m.AcademicVenuePercentage),
				}
			case types.PhasePeakInflatedExpectations:
				return []string{
					fmt.Sprintf("- Peak publication year: %d (%d papers)", m.PeakYear, m.PeakCount),
					fmt.Sprintf("- Citation growth rate: %.1f%% (rapid)", m.CitationGrowthRate),
					fmt.Sprintf("- Applied research percentage: %.1f%% (increasing)", m.AppliedResearchPercentage),
					fmt.Sprintf("- Research type trend: %s", m.ResearchTypeTrend),
				}
			case types.PhaseTroughDisillusionment:
				return []string{
					fmt.Sprintf("- Publication velocity: %s (declining)", m.VelocityTrend),
					fmt.Sprintf("- Peak was in %d, now declining", m.PeakYear),
					fmt.Sprintf("- Papers last year: %d (down from peak: %d)", m.PapersLastYear, m.PeakCount),
					fmt.Sprintf("- Citation growth: %.1f%% (stagnant)", m.CitationGrowthRate),
				}
			case types.PhaseSlopeEnlightenment:
				return []string{
					fmt.Sprintf("- Applied research percentage: %.1f%% (high)", m.AppliedResearchPercentage),
					fmt.Sprintf("- Publication trend: %s (stable/gradual growth)", m.VelocityTrend),
					fmt.Sprintf("- Citation growth: %.1f%% (moderate)", m.CitationGrowthRate),
					"- Research focus: shifting to practical implementations",
				}
			default:
				return []string{
					fmt.Sprintf("- Applied research percentage: %.1f%% (very high)", m.AppliedResearchPercentage),
					fmt.Sprintf("- Publication velocity: %s (stable plateau)", m.VelocityTrend),
					fmt.Sprintf("- Average citations: %.1f (well-established)", m.AvgCitationsPerPaper),
					fmt.Sprintf("- Industry involvement: %.1f%%", m.IndustryVenuePercentage),
				}
			}
		},
	}
}
