package phase

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// NewSocialEngine builds the rule engine for the social stream.
func NewSocialEngine(t SocialThresholds, log *logrus.Logger) *Engine[*types.SocialSnapshot] {
	return NewEngine(types.StreamSocial, socialRules(t), socialRationale(), log)
}

func socialRules(t SocialThresholds) RuleSet[*types.SocialSnapshot] {
	return RuleSet[*types.SocialSnapshot]{
		types.PhaseTechnologyTrigger: {
			{"few_posts", 0.25, func(m *types.SocialSnapshot) bool {
				return m.TotalPosts < t.LowPostCount
			}},
			{"niche_communities", 0.25, func(m *types.SocialSnapshot) bool {
				return m.UniqueSubreddits < t.LowSubredditCount
			}},
			{"low_engagement", 0.20, func(m *types.SocialSnapshot) bool {
				return m.AvgScorePerPost < t.LowAvgScore
			}},
			{"small_community", 0.15, func(m *types.SocialSnapshot) bool {
				return m.UniqueAuthors < 30
			}},
			{"few_evangelists", 0.15, func(m *types.SocialSnapshot) bool {
				return m.AuthorConcentrationHHI > t.HighHHI
			}},
		},
		types.PhasePeakInflatedExpectations: {
			{"velocity_high", 0.25, func(m *types.SocialSnapshot) bool {
				return m.VelocityTrend == types.TrendIncreasing || m.VelocityTrend == types.TrendPeakReached
			}},
			{"high_engagement", 0.20, func(m *types.SocialSnapshot) bool {
				return m.AvgScorePerPost > t.HighAvgScore
			}},
			{"viral_posts", 0.15, func(m *types.SocialSnapshot) bool {
				return m.HighlyEngagedCount > 10
			}},
			{"discussion_spreading", 0.15, func(m *types.SocialSnapshot) bool {
				return m.UniqueSubreddits > t.LowSubredditCount
			}},
			{"diverse_discussion", 0.15, func(m *types.SocialSnapshot) bool {
				return m.SubredditConcentrationHHI < t.LowHHI
			}},
			{"engagement_rising", 0.10, func(m *types.SocialSnapshot) bool {
				return m.EngagementTrend == types.TrendIncreasing
			}},
		},
		types.PhaseTroughDisillusionment: {
			{"velocity_declining", 0.30, func(m *types.SocialSnapshot) bool {
				return m.VelocityTrend == types.TrendDecreasing
			}},
			{"engagement_declining", 0.25, func(m *types.SocialSnapshot) bool {
				return m.EngagementTrend == types.TrendDecreasing
			}},
			{"negative_growth", 0.20, func(m *types.SocialSnapshot) bool {
				return m.GrowthRateEarlyVsLate < t.DeclineThreshold
			}},
			{"volume_well_below_early", 0.15, func(m *types.SocialSnapshot) bool {
				return float64(m.PostsLast3Months) < float64(m.PostsFirst3Months)*0.5
			}},
			{"vocabulary_fading", 0.10, func(m *types.SocialSnapshot) bool {
				return len(m.DecliningKeywords) > len(m.EmergingKeywords)
			}},
		},
		types.PhaseSlopeEnlightenment: {
			{"velocity_stable", 0.25, func(m *types.SocialSnapshot) bool {
				return m.VelocityTrend == types.TrendStable
			}},
			{"engagement_stable", 0.20, func(m *types.SocialSnapshot) bool {
				return m.EngagementTrend == types.TrendStable
			}},
			{"moderate_spread", 0.20, func(m *types.SocialSnapshot) bool {
				return m.UniqueSubreddits >= t.LowSubredditCount && m.UniqueSubreddits <= t.HighSubredditCount
			}},
			{"practical_post_mix", 0.15, func(m *types.SocialSnapshot) bool {
				return m.LinkPostPercentage >= 30 && m.LinkPostPercentage <= 60
			}},
			{"established_communities", 0.10, func(m *types.SocialSnapshot) bool {
				return m.SubredditConcentrationHHI >= t.LowHHI && m.SubredditConcentrationHHI <= t.HighHHI
			}},
			{"vocabulary_turning_over", 0.10, func(m *types.SocialSnapshot) bool {
				return len(m.EmergingKeywords) > 0 && len(m.DecliningKeywords) > 0
			}},
		},
		types.PhasePlateauProductivity: {
			{"large_corpus", 0.25, func(m *types.SocialSnapshot) bool {
				return m.TotalPosts > t.HighPostCount
			}},
			{"velocity_stable", 0.20, func(m *types.SocialSnapshot) bool {
				return m.VelocityTrend == types.TrendStable
			}},
			{"mainstream_spread", 0.20, func(m *types.SocialSnapshot) bool {
				return m.UniqueSubreddits > t.HighSubredditCount
			}},
			{"engagement_stable", 0.15, func(m *types.SocialSnapshot) bool {
				return m.EngagementTrend == types.TrendStable
			}},
			{"resource_sharing", 0.10, func(m *types.SocialSnapshot) bool {
				return m.LinkPostPercentage > 40
			}},
			{"substantive_posts", 0.10, func(m *types.SocialSnapshot) bool {
				return m.CoveragePercentage > 50
			}},
		},
	}
}

func socialRationale() RationaleText[*types.SocialSnapshot] {
	return RationaleText[*types.SocialSnapshot]{
		Header:      "Reddit-based Phase",
		Indicators:  "Key Reddit indicators:",
		ScoresTitle: "Phase scores (Reddit-based):",
		Headline: func(m *types.SocialSnapshot, p types.Phase) []string {
			switch p {
			case types.PhaseTechnologyTrigger:
				return []string{
					fmt.Sprintf("- Total posts: %d (niche topic)", m.TotalPosts),
					fmt.Sprintf("- Unique subreddits: %d (concentrated)", m.UniqueSubreddits),
					fmt.Sprintf("- Avg score: %.1f (low mainstream interest)", m.AvgScorePerPost),
					fmt.Sprintf("- Unique authors: %d (early community)", m.UniqueAuthors),
				}
			case types.PhasePeakInflatedExpectations:
				return []string{
					fmt.Sprintf("- Velocity trend: %s (high activity)", m.VelocityTrend),
					fmt.Sprintf("- Avg score: %.1f (high engagement)", m.AvgScorePerPost),
					fmt.Sprintf("- Highly engaged posts: %d", m.HighlyEngagedCount),
					fmt.Sprintf("- Unique subreddits: %d (spreading)", m.UniqueSubreddits),
					fmt.Sprintf("- Engagement trend: %s", m.EngagementTrend),
				}
			case types.PhaseTroughDisillusionment:
				return []string{
					fmt.Sprintf("- Velocity trend: %s (declining)", m.VelocityTrend),
					fmt.Sprintf("- Engagement trend: %s", m.EngagementTrend),
					fmt.Sprintf("- Growth rate: %.1f%%", m.GrowthRateEarlyVsLate),
					fmt.Sprintf("- Declining keywords: %d", len(m.DecliningKeywords)),
				}
			case types.PhaseSlopeEnlightenment:
				return []string{
					fmt.Sprintf("- Velocity trend: %s (stable)", m.VelocityTrend),
					fmt.Sprintf("- Engagement trend: %s", m.EngagementTrend),
					fmt.Sprintf("- Unique subreddits: %d", m.UniqueSubreddits),
					fmt.Sprintf("- Link posts: %.1f%% (practical focus)", m.LinkPostPercentage),
				}
			default:
				return []string{
					fmt.Sprintf("- Total posts: %d (mature topic)", m.TotalPosts),
					fmt.Sprintf("- Velocity trend: %s", m.VelocityTrend),
					fmt.Sprintf("- Unique subreddits: %d (mainstream)", m.UniqueSubreddits),
					fmt.Sprintf("- Link posts: %.1f%%", m.LinkPostPercentage),
				}
			}
		},
		ExtraTitle: "Top subreddits:",
		Extra: func(m *types.SocialSnapshot) []string {
			lines := []string{}
			for i, rc := range m.TopSubreddits {
				if i == 5 {
					break
				}
				lines = append(lines, fmt.Sprintf("  - r/%s: %d posts", rc.Name, rc.Count))
			}
			return lines
		},
	}
}
