package phase

// Thresholds bundles the tunable cutoffs of every stream's rule table.
// The zero value is not usable; start from DefaultThresholds and
// override selectively, e.g. from a YAML file.
type Thresholds struct {
	Paper   PaperThresholds   `yaml:"paper"`
	Patent  PatentThresholds  `yaml:"patent"`
	Social  SocialThresholds  `yaml:"social"`
	News    NewsThresholds    `yaml:"news"`
	Finance FinanceThresholds `yaml:"finance"`
}

// PaperThresholds tunes the paper-stream rules.
type PaperThresholds struct {
	HighCitationThreshold  int     `yaml:"high_citation_threshold"`
	CitationGrowthHigh     float64 `yaml:"citation_growth_high"`     // % YoY
	CitationGrowthModerate float64 `yaml:"citation_growth_moderate"` // % YoY
	BasicResearchHigh      float64 `yaml:"basic_research_high"`      // %
	AppliedResearchHigh    float64 `yaml:"applied_research_high"`    // %
	AppliedResearchVeryHigh float64 `yaml:"applied_research_very_high"` // %
	PeakRecencyYears       int     `yaml:"peak_recency_years"`
	MinPapersForAnalysis   int     `yaml:"min_papers_for_analysis"`
}

// PatentThresholds tunes the patent-stream rules.
type PatentThresholds struct {
	LowPatentCount        int     `yaml:"low_patent_count"`
	HighPatentCount       int     `yaml:"high_patent_count"`
	HighCitationRatio     float64 `yaml:"high_citation_ratio"`
	LowCitationRatio      float64 `yaml:"low_citation_ratio"`
	HighHHI               float64 `yaml:"high_hhi"`
	LowHHI                float64 `yaml:"low_hhi"`
	HighAcademicPct       float64 `yaml:"high_academic_pct"`
	LowCountrySpread      int     `yaml:"low_country_spread"`
	HighCountrySpread     int     `yaml:"high_country_spread"`
	YoungTechnologyYears  int     `yaml:"young_technology_years"`
	MatureTechnologyYears int     `yaml:"mature_technology_years"`
	RecentPeakYears       int     `yaml:"recent_peak_years"`
}

// SocialThresholds tunes the social-stream rules.
type SocialThresholds struct {
	LowPostCount       int     `yaml:"low_post_count"`
	HighPostCount      int     `yaml:"high_post_count"`
	HighAvgScore       float64 `yaml:"high_avg_score"`
	LowAvgScore        float64 `yaml:"low_avg_score"`
	DeclineThreshold   float64 `yaml:"decline_threshold"` // % growth
	HighHHI            float64 `yaml:"high_hhi"`
	LowHHI             float64 `yaml:"low_hhi"`
	LowSubredditCount  int     `yaml:"low_subreddit_count"`
	HighSubredditCount int     `yaml:"high_subreddit_count"`
}

// NewsThresholds tunes the news-stream rules.
type NewsThresholds struct {
	LowArticleCount  int     `yaml:"low_article_count"`
	HighArticleCount int     `yaml:"high_article_count"`
	DeclineThreshold float64 `yaml:"decline_threshold"` // % growth
	LowSourceCount   int     `yaml:"low_source_count"`
	HighSourceCount  int     `yaml:"high_source_count"`
	HighHHI          float64 `yaml:"high_hhi"`
	LowHHI           float64 `yaml:"low_hhi"`
}

// FinanceThresholds tunes the finance-stream rules.
type FinanceThresholds struct {
	HighReturn         float64 `yaml:"high_return"` // % total return
	ModerateReturnLow  float64 `yaml:"moderate_return_low"`
	ModerateReturnHigh float64 `yaml:"moderate_return_high"`
	HighVolatility     float64 `yaml:"high_volatility"` // % daily stdev
	LowVolatility      float64 `yaml:"low_volatility"`
	SevereDrawdown     float64 `yaml:"severe_drawdown"` // %
	ModerateDrawdown   float64 `yaml:"moderate_drawdown"`
	StrongBullish      float64 `yaml:"strong_bullish"` // % 3-month change
	StrongBearish      float64 `yaml:"strong_bearish"`
}

// DefaultThresholds returns the calibrated cutoffs every engine starts
// from.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Paper: PaperThresholds{
			HighCitationThreshold:   100,
			CitationGrowthHigh:      30.0,
			CitationGrowthModerate:  10.0,
			BasicResearchHigh:       70.0,
			AppliedResearchHigh:     60.0,
			AppliedResearchVeryHigh: 80.0,
			PeakRecencyYears:        3,
			MinPapersForAnalysis:    100,
		},
		Patent: PatentThresholds{
			LowPatentCount:        50,
			HighPatentCount:       500,
			HighCitationRatio:     1.0,
			LowCitationRatio:      0.3,
			HighHHI:               0.25,
			LowHHI:                0.10,
			HighAcademicPct:       50.0,
			LowCountrySpread:      5,
			HighCountrySpread:     20,
			YoungTechnologyYears:  5,
			MatureTechnologyYears: 15,
			RecentPeakYears:       3,
		},
		Social: SocialThresholds{
			LowPostCount:       50,
			HighPostCount:      500,
			HighAvgScore:       100.0,
			LowAvgScore:        20.0,
			DeclineThreshold:   -20.0,
			HighHHI:            0.25,
			LowHHI:             0.10,
			LowSubredditCount:  3,
			HighSubredditCount: 15,
		},
		News: NewsThresholds{
			LowArticleCount:  30,
			HighArticleCount: 300,
			DeclineThreshold: -20.0,
			LowSourceCount:   5,
			HighSourceCount:  20,
			HighHHI:          0.25,
			LowHHI:           0.10,
		},
		Finance: FinanceThresholds{
			HighReturn:         50.0,
			ModerateReturnLow:  5.0,
			ModerateReturnHigh: 30.0,
			HighVolatility:     3.0,
			LowVolatility:      1.0,
			SevereDrawdown:     40.0,
			ModerateDrawdown:   20.0,
			StrongBullish:      30.0,
			StrongBearish:      -20.0,
		},
	}
}
