package phase

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// NewPatentEngine builds the rule engine for the patent stream.
func NewPatentEngine(t PatentThresholds, log *logrus.Logger) *Engine[*types.PatentSnapshot] {
	return NewEngine(types.StreamPatent, patentRules(t), patentRationale(), log)
}

// newEntrantsDeclining checks whether fewer assignees filed their first
// patent in the last two observed years than before that, over the most
// recent three years of entrant data.
func newEntrantsDeclining(byYear map[int]int) bool {
	if len(byYear) == 0 {
		return false
	}
	years := sortedYears(byYear)
	if len(years) > 3 {
		years = years[len(years)-3:]
	}
	if len(years) < 2 {
		return false
	}
	recent := 0
	for _, y := range years[len(years)-2:] {
		recent += byYear[y]
	}
	earlier := recent
	if len(years) > 2 {
		earlier = 0
		for _, y := range years[:len(years)-2] {
			earlier += byYear[y]
		}
	}
	return float64(recent) < float64(earlier)*0.8
}

func sortedYears(m map[int]int) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

func patentRules(t PatentThresholds) RuleSet[*types.PatentSnapshot] {
	return RuleSet[*types.PatentSnapshot]{
		types.PhaseTechnologyTrigger: {
			{"few_patents", 0.25, func(m *types.PatentSnapshot) bool {
				return m.TotalPatents < t.LowPatentCount
			}},
			{"academic_heavy", 0.25, func(m *types.PatentSnapshot) bool {
				return m.AcademicPercentage > t.HighAcademicPct
			}},
			{"low_forward_citations", 0.15, func(m *types.PatentSnapshot) bool {
				return m.AvgForwardCitations < 2
			}},
			{"young_technology", 0.15, func(m *types.PatentSnapshot) bool {
				return m.TechnologyAgeYears < t.YoungTechnologyYears
			}},
			{"few_assignees", 0.1, func(m *types.PatentSnapshot) bool {
				return m.UniqueAssigneesCount < 20
			}},
			{"narrow_geography", 0.1, func(m *types.PatentSnapshot) bool {
				return m.UniqueCountries < t.LowCountrySpread
			}},
		},
		types.PhasePeakInflatedExpectations: {
			{"peak_recent", 0.25, func(m *types.PatentSnapshot) bool {
				gap, ok := yearsSincePeak(m.PatentVelocity, m.PeakYear)
				return ok && gap <= t.RecentPeakYears
			}},
			{"velocity_high", 0.25, func(m *types.PatentSnapshot) bool {
				return m.VelocityTrend == types.TrendIncreasing || m.VelocityTrend == types.TrendPeakReached
			}},
			{"corporate_transition", 0.15, func(m *types.PatentSnapshot) bool {
				return m.CorporatePercentage >= 40 && m.CorporatePercentage <= 70
			}},
			{"many_competitors", 0.15, func(m *types.PatentSnapshot) bool {
				return m.AssigneeConcentrationHHI < t.LowHHI
			}},
			{"recent_velocity_above_average", 0.1, func(m *types.PatentSnapshot) bool {
				return m.RecentVelocity > m.AvgPatentsPerYear*1.2
			}},
			{"geography_expanding", 0.1, func(m *types.PatentSnapshot) bool {
				return m.UniqueCountries > t.LowCountrySpread && m.UniqueCountries < t.HighCountrySpread
			}},
		},
		types.PhaseTroughDisillusionment: {
			{"velocity_declining", 0.30, func(m *types.PatentSnapshot) bool {
				return m.VelocityTrend == types.TrendDecreasing
			}},
			{"just_past_peak", 0.25, func(m *types.PatentSnapshot) bool {
				gap, ok := yearsSincePeak(m.PatentVelocity, m.PeakYear)
				return ok && gap >= 1 && gap <= 5
			}},
			{"output_well_below_peak", 0.15, func(m *types.PatentSnapshot) bool {
				return float64(m.PatentsLastYear) < float64(m.PeakCount)*0.6
			}},
			{"low_citation_ratio", 0.15, func(m *types.PatentSnapshot) bool {
				return m.CitationRatio < t.LowCitationRatio
			}},
			{"consolidating", 0.1, func(m *types.PatentSnapshot) bool {
				return m.AssigneeConcentrationHHI >= t.LowHHI && m.AssigneeConcentrationHHI <= t.HighHHI
			}},
			{"new_entrants_declining", 0.05, func(m *types.PatentSnapshot) bool {
				return newEntrantsDeclining(m.NewEntrantsByYear)
			}},
		},
		types.PhaseSlopeEnlightenment: {
			{"velocity_stable", 0.25, func(m *types.PatentSnapshot) bool {
				return m.VelocityTrend == types.TrendStable
			}},
			{"industry_led", 0.20, func(m *types.PatentSnapshot) bool {
				return m.CorporatePercentage >= 70 && m.CorporatePercentage < 90
			}},
			{"peak_4_to_10_years_ago", 0.20, func(m *types.PatentSnapshot) bool {
				gap, ok := yearsSincePeak(m.PatentVelocity, m.PeakYear)
				return ok && gap >= 4 && gap <= 10
			}},
			{"established_landscape", 0.15, func(m *types.PatentSnapshot) bool {
				return m.AssigneeConcentrationHHI >= t.LowHHI && m.AssigneeConcentrationHHI <= t.HighHHI
			}},
			{"international_adoption", 0.1, func(m *types.PatentSnapshot) bool {
				return m.UniqueCountries >= t.LowCountrySpread
			}},
			{"moderate_citation_ratio", 0.1, func(m *types.PatentSnapshot) bool {
				return m.CitationRatio >= t.LowCitationRatio && m.CitationRatio <= t.HighCitationRatio
			}},
		},
		types.PhasePlateauProductivity: {
			{"velocity_stable", 0.20, func(m *types.PatentSnapshot) bool {
				return m.VelocityTrend == types.TrendStable
			}},
			{"corporate_dominated", 0.20, func(m *types.PatentSnapshot) bool {
				return m.CorporatePercentage > 85
			}},
			{"concentrated_market", 0.15, func(m *types.PatentSnapshot) bool {
				return m.AssigneeConcentrationHHI > t.HighHHI
			}},
			{"mature_technology", 0.15, func(m *types.PatentSnapshot) bool {
				return m.TechnologyAgeYears > t.MatureTechnologyYears
			}},
			{"global_adoption", 0.1, func(m *types.PatentSnapshot) bool {
				return m.UniqueCountries >= t.HighCountrySpread
			}},
			{"influential_patents", 0.1, func(m *types.PatentSnapshot) bool {
				return m.CitationRatio > t.HighCitationRatio
			}},
			{"peak_long_ago", 0.1, func(m *types.PatentSnapshot) bool {
				gap, ok := yearsSincePeak(m.PatentVelocity, m.PeakYear)
				return ok && gap > 10
			}},
		},
	}
}

func patentRationale() RationaleText[*types.PatentSnapshot] {
	return RationaleText[*types.PatentSnapshot]{
		Header:      "Patent-based Phase",
		Indicators:  "Key patent indicators:",
		ScoresTitle: "Phase scores (patent-based):",
		Headline: func(m *types.PatentSnapshot, p types.Phase) []string {
			switch p {
			case types.PhaseTechnologyTrigger:
				return []string{
					fmt.Sprintf("- Total patents: %d (early stage)", m.TotalPatents),
					fmt.Sprintf("- Academic percentage: %.1f%% (research-driven)", m.AcademicPercentage),
					fmt.Sprintf("- Technology age: %d years (young)", m.TechnologyAgeYears),
					fmt.Sprintf("- Avg forward citations: %.1f (low, patents too new)", m.AvgForwardCitations),
					fmt.Sprintf("- Unique assignees: %d (few early players)", m.UniqueAssigneesCount),
				}
			case types.PhasePeakInflatedExpectations:
				return []string{
					fmt.Sprintf("- Peak year: %d (recent)", m.PeakYear),
					fmt.Sprintf("- Velocity trend: %s (high activity)", m.VelocityTrend),
					fmt.Sprintf("- Corporate percentage: %.1f%% (transitioning)", m.CorporatePercentage),
					fmt.Sprintf("- HHI concentration: %.3f (many competitors)", m.AssigneeConcentrationHHI),
					fmt.Sprintf("- Recent velocity: %.1f patents/year", m.RecentVelocity),
				}
			case types.PhaseTroughDisillusionment:
				return []string{
					fmt.Sprintf("- Velocity trend: %s (declining)", m.VelocityTrend),
					fmt.Sprintf("- Peak was in %d, now declining", m.PeakYear),
					fmt.Sprintf("- Patents last year: %d (down from peak: %d)", m.PatentsLastYear, m.PeakCount),
					fmt.Sprintf("- Citation ratio: %.2f (low impact)", m.CitationRatio),
					"- New entrants declining (consolidation phase)",
				}
			case types.PhaseSlopeEnlightenment:
				gapLine := "- Years since peak: N/A"
				if gap, ok := yearsSincePeak(m.PatentVelocity, m.PeakYear); ok {
					gapLine = fmt.Sprintf("- Years since peak: %d", gap)
				}
				return []string{
					fmt.Sprintf("- Velocity trend: %s (stabilizing)", m.VelocityTrend),
					fmt.Sprintf("- Corporate percentage: %.1f%% (industry-led)", m.CorporatePercentage),
					fmt.Sprintf("- HHI concentration: %.3f (established players)", m.AssigneeConcentrationHHI),
					fmt.Sprintf("- Geographic spread: %d countries", m.UniqueCountries),
					gapLine,
				}
			default:
				return []string{
					fmt.Sprintf("- Velocity trend: %s (stable plateau)", m.VelocityTrend),
					fmt.Sprintf("- Corporate percentage: %.1f%% (industry dominated)", m.CorporatePercentage),
					fmt.Sprintf("- HHI concentration: %.3f (consolidated)", m.AssigneeConcentrationHHI),
					fmt.Sprintf("- Technology age: %d years (mature)", m.TechnologyAgeYears),
					fmt.Sprintf("- Geographic spread: %d countries (global)", m.UniqueCountries),
				}
			}
		},
		ExtraTitle: "Top patent holders:",
		Extra: func(m *types.PatentSnapshot) []string {
			lines := []string{}
			for i, rc := range m.TopAssignees {
				if i == 5 {
					break
				}
				lines = append(lines, fmt.Sprintf("  - %s: %d patents", rc.Name, rc.Count))
			}
			return lines
		},
	}
}
