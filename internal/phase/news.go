package phase

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// NewNewsEngine builds the rule engine for the news stream.
func NewNewsEngine(t NewsThresholds, log *logrus.Logger) *Engine[*types.NewsSnapshot] {
	return NewEngine(types.StreamNews, newsRules(t), newsRationale(), log)
}

func newsRules(t NewsThresholds) RuleSet[*types.NewsSnapshot] {
	return RuleSet[*types.NewsSnapshot]{
		types.PhaseTechnologyTrigger: {
			{"limited_coverage", 0.30, func(m *types.NewsSnapshot) bool {
				return m.TotalArticles < t.LowArticleCount
			}},
			{"few_sources", 0.25, func(m *types.NewsSnapshot) bool {
				return m.UniqueSources < t.LowSourceCount
			}},
			{"specialized_media", 0.20, func(m *types.NewsSnapshot) bool {
				return m.SourceConcentrationHHI > t.HighHHI
			}},
			{"few_bylines", 0.15, func(m *types.NewsSnapshot) bool {
				return m.UniqueAuthors < 20
			}},
			{"wire_service_heavy", 0.10, func(m *types.NewsSnapshot) bool {
				return m.ArticlesWithoutAuthorPercentage > 40
			}},
		},
		types.PhasePeakInflatedExpectations: {
			{"velocity_high", 0.30, func(m *types.NewsSnapshot) bool {
				return m.VelocityTrend == types.TrendIncreasing || m.VelocityTrend == types.TrendPeakReached
			}},
			{"broad_coverage", 0.20, func(m *types.NewsSnapshot) bool {
				return m.UniqueSources > t.LowSourceCount
			}},
			{"diverse_sources", 0.20, func(m *types.NewsSnapshot) bool {
				return m.SourceConcentrationHHI < t.LowHHI
			}},
			{"recent_velocity_above_average", 0.15, func(m *types.NewsSnapshot) bool {
				return m.RecentVelocity > m.AvgArticlesPerMonth*1.2
			}},
			{"hype_vocabulary", 0.15, func(m *types.NewsSnapshot) bool {
				return len(m.EmergingKeywords) > 5
			}},
		},
		types.PhaseTroughDisillusionment: {
			{"velocity_declining", 0.35, func(m *types.NewsSnapshot) bool {
				return m.VelocityTrend == types.TrendDecreasing
			}},
			{"negative_growth", 0.25, func(m *types.NewsSnapshot) bool {
				return m.GrowthRateEarlyVsLate < t.DeclineThreshold
			}},
			{"coverage_well_below_early", 0.20, func(m *types.NewsSnapshot) bool {
				return float64(m.ArticlesLast3Months) < float64(m.ArticlesFirst3Months)*0.5
			}},
			{"vocabulary_fading", 0.10, func(m *types.NewsSnapshot) bool {
				return len(m.DecliningKeywords) > len(m.EmergingKeywords)
			}},
			{"sources_dropping_off", 0.10, func(m *types.NewsSnapshot) bool {
				return m.SourceConcentrationHHI > t.LowHHI
			}},
		},
		types.PhaseSlopeEnlightenment: {
			{"velocity_stable", 0.30, func(m *types.NewsSnapshot) bool {
				return m.VelocityTrend == types.TrendStable
			}},
			{"moderate_source_spread", 0.25, func(m *types.NewsSnapshot) bool {
				return m.UniqueSources >= t.LowSourceCount && m.UniqueSources <= t.HighSourceCount
			}},
			{"established_coverage", 0.20, func(m *types.NewsSnapshot) bool {
				return m.SourceConcentrationHHI >= t.LowHHI && m.SourceConcentrationHHI <= t.HighHHI
			}},
			{"vocabulary_turning_over", 0.15, func(m *types.NewsSnapshot) bool {
				return len(m.EmergingKeywords) > 0 && len(m.DecliningKeywords) > 0
			}},
			{"substantive_articles", 0.10, func(m *types.NewsSnapshot) bool {
				return m.CoveragePercentage > 60
			}},
		},
		types.PhasePlateauProductivity: {
			{"large_corpus", 0.25, func(m *types.NewsSnapshot) bool {
				return m.TotalArticles > t.HighArticleCount
			}},
			{"velocity_stable", 0.25, func(m *types.NewsSnapshot) bool {
				return m.VelocityTrend == types.TrendStable
			}},
			{"mainstream_spread", 0.20, func(m *types.NewsSnapshot) bool {
				return m.UniqueSources > t.HighSourceCount
			}},
			{"diverse_sources", 0.15, func(m *types.NewsSnapshot) bool {
				return m.SourceConcentrationHHI < t.LowHHI
			}},
			{"substantive_articles", 0.15, func(m *types.NewsSnapshot) bool {
				return m.CoveragePercentage > 70
			}},
		},
	}
}

func newsRationale() RationaleText[*types.NewsSnapshot] {
	return RationaleText[*types.NewsSnapshot]{
		Header:      "News-based Phase",
		Indicators:  "Key News indicators:",
		ScoresTitle: "Phase scores (News-based):",
		Headline: func(m *types.NewsSnapshot, p types.Phase) []string {
			switch p {
			case types.PhaseTechnologyTrigger:
				return []string{
					fmt.Sprintf("- Total articles: %d (limited coverage)", m.TotalArticles),
					fmt.Sprintf("- Unique sources: %d (niche media)", m.UniqueSources),
					fmt.Sprintf("- Source HHI: %.3f (concentrated)", m.SourceConcentrationHHI),
					fmt.Sprintf("- Unique authors: %d", m.UniqueAuthors),
				}
			case types.PhasePeakInflatedExpectations:
				return []string{
					fmt.Sprintf("- Velocity trend: %s (media frenzy)", m.VelocityTrend),
					fmt.Sprintf("- Unique sources: %d (broad coverage)", m.UniqueSources),
					fmt.Sprintf("- Source HHI: %.3f (diverse)", m.SourceConcentrationHHI),
					fmt.Sprintf("- Emerging keywords: %d (hype terms)", len(m.EmergingKeywords)),
				}
			case types.PhaseTroughDisillusionment:
				return []string{
					fmt.Sprintf("- Velocity trend: %s (declining)", m.VelocityTrend),
					fmt.Sprintf("- Growth rate: %.1f%%", m.GrowthRateEarlyVsLate),
					fmt.Sprintf("- Articles last 3 months: %d", m.ArticlesLast3Months),
					fmt.Sprintf("- Declining keywords: %d", len(m.DecliningKeywords)),
				}
			case types.PhaseSlopeEnlightenment:
				return []string{
					fmt.Sprintf("- Velocity trend: %s (stable)", m.VelocityTrend),
					fmt.Sprintf("- Unique sources: %d", m.UniqueSources),
					fmt.Sprintf("- Source HHI: %.3f", m.SourceConcentrationHHI),
					fmt.Sprintf("- Data coverage: %.1f%%", m.CoveragePercentage),
				}
			default:
				return []string{
					fmt.Sprintf("- Total articles: %d (established)", m.TotalArticles),
					fmt.Sprintf("- Velocity trend: %s", m.VelocityTrend),
					fmt.Sprintf("- Unique sources: %d (mainstream)", m.UniqueSources),
					fmt.Sprintf("- Source HHI: %.3f", m.SourceConcentrationHHI),
				}
			}
		},
		ExtraTitle: "Top news sources:",
		Extra: func(m *types.NewsSnapshot) []string {
			lines := []string{}
			for i, rc := range m.TopSources {
				if i == 5 {
					break
				}
				lines = append(lines, fmt.Sprintf("  - %s: %d articles", rc.Name, rc.Count))
			}
			return lines
		},
	}
}
