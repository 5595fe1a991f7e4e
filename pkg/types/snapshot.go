package types

import (
	"encoding/json"
	"fmt"
)

// Trend is a qualitative classification of a velocity series' recent
// direction.
type Trend string

// Trend constants shared by all streams.
const (
	TrendIncreasing       Trend = "increasing"
	TrendDecreasing       Trend = "decreasing"
	TrendStable           Trend = "stable"
	TrendPeakReached      Trend = "peak_reached"
	TrendInsufficientData Trend = "insufficient_data"
)

// RankedCount is a (name, count) pair in a ranked categorical breakdown.
// It marshals as a two-element JSON array ["name", count] so that ranked
// lists stay order-stable through persistence and rendering.
type RankedCount struct {
	Name  string
	Count int
}

// MarshalJSON encodes the pair as ["name", count].
func (r RankedCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Name, r.Count})
}

// UnmarshalJSON decodes a ["name", count] pair.
func (r *RankedCount) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ranked count must be a two-element array: %w", err)
	}
	if err := json.Unmarshal(raw[0], &r.Name); err != nil {
		return fmt.Errorf("ranked count name: %w", err)
	}
	if err := json.Unmarshal(raw[1], &r.Count); err != nil {
		return fmt.Errorf("ranked count value: %w", err)
	}
	return nil
}

// PaperSnapshot is the immutable metrics snapshot computed from a paper
// record set. All percentage fields are 0-100.
type PaperSnapshot struct {
	// Publication velocity
	TotalPapers         int           `json:"total_papers"`
	PublicationVelocity map[int]int   `json:"publication_velocity"` // year -> count
	VelocityTrend       Trend         `json:"velocity_trend"`
	AvgPapersPerYear    float64       `json:"avg_papers_per_year"`
	PeakYear            int           `json:"peak_year"`
	PeakCount           int           `json:"peak_count"`
	RecentVelocity      float64       `json:"recent_velocity"` // papers/year over the last 2 years

	// Citations
	TotalCitations      int     `json:"total_citations"`
	AvgCitationsPerPaper float64 `json:"avg_citations_per_paper"`
	MedianCitations     float64 `json:"median_citations"`
	CitationGrowthRate  float64 `json:"citation_growth_rate"` // % change year-over-year
	HighlyCitedCount    int     `json:"highly_cited_count"`

	// Research type distribution
	BasicResearchPercentage   float64 `json:"basic_research_percentage"`
	AppliedResearchPercentage float64 `json:"applied_research_percentage"`
	MixedResearchPercentage   float64 `json:"mixed_research_percentage"`
	ResearchTypeTrend         string  `json:"research_type_trend"` // "toward_applied", "toward_basic", "stable"

	// Topics
	TopKeywords       []RankedCount `json:"top_keywords"`
	EmergingKeywords  []string      `json:"emerging_keywords"`
	DecliningKeywords []string      `json:"declining_keywords"`

	// Venues
	AcademicVenuePercentage float64 `json:"academic_venue_percentage"`
	IndustryVenuePercentage float64 `json:"industry_venue_percentage"`
	ConferencePercentage    float64 `json:"conference_percentage"`
	JournalPercentage       float64 `json:"journal_percentage"`

	// Temporal comparison
	PapersLastYear        int     `json:"papers_last_year"`
	PapersLast2Years      int     `json:"papers_last_2_years"`
	PapersFirst2Years     int     `json:"papers_first_2_years"`
	GrowthRateEarlyVsLate float64 `json:"growth_rate_early_vs_late"`

	// Data quality
	PapersWithAbstracts int     `json:"papers_with_abstracts"`
	PapersWithPDF       int     `json:"papers_with_pdf"`
	CoveragePercentage  float64 `json:"coverage_percentage"`
}

// PatentSnapshot is the immutable metrics snapshot computed from a patent
// record set.
type PatentSnapshot struct {
	// Volume
	TotalPatents      int         `json:"total_patents"`
	PatentVelocity    map[int]int `json:"patent_velocity"` // year -> count
	VelocityTrend     Trend       `json:"velocity_trend"`
	AvgPatentsPerYear float64     `json:"avg_patents_per_year"`
	PeakYear          int         `json:"peak_year"`
	PeakCount         int         `json:"peak_count"`
	RecentVelocity    float64     `json:"recent_velocity"`

	// Citations
	TotalForwardCitations   int     `json:"total_forward_citations"`
	TotalBackwardCitations  int     `json:"total_backward_citations"`
	AvgForwardCitations     float64 `json:"avg_forward_citations"`
	AvgBackwardCitations    float64 `json:"avg_backward_citations"`
	CitationRatio           float64 `json:"citation_ratio"` // forward/backward
	MedianForwardCitations  float64 `json:"median_forward_citations"`
	HighlyCitedCount        int     `json:"highly_cited_count"`

	// Assignees
	UniqueAssigneesCount     int           `json:"unique_assignees_count"`
	TopAssignees             []RankedCount `json:"top_assignees"`
	AssigneeConcentrationHHI float64       `json:"assignee_concentration_hhi"`
	CorporatePercentage      float64       `json:"corporate_percentage"`
	AcademicPercentage       float64       `json:"academic_percentage"`
	IndividualPercentage     float64       `json:"individual_percentage"`
	NewEntrantsByYear        map[int]int   `json:"new_entrants_by_year"`

	// Geography
	CountryDistribution map[string]int `json:"country_distribution"`
	UniqueCountries     int            `json:"unique_countries"`
	TopCountries        []RankedCount  `json:"top_countries"`

	// Patent types
	UtilityPercentage   float64 `json:"utility_percentage"`
	DesignPercentage    float64 `json:"design_percentage"`
	OtherTypePercentage float64 `json:"other_type_percentage"`

	// Temporal
	FirstPatentYear     int `json:"first_patent_year"`
	TechnologyAgeYears  int `json:"technology_age_years"`
	PatentsLastYear     int `json:"patents_last_year"`
	PatentsLast2Years   int `json:"patents_last_2_years"`

	// Data quality
	PatentsWithAbstract int     `json:"patents_with_abstract"`
	CoveragePercentage  float64 `json:"coverage_percentage"`
}

// SocialSnapshot is the immutable metrics snapshot computed from a social
// discussion record set. Velocity buckets are "YYYY-MM" strings.
type SocialSnapshot struct {
	// Volume
	TotalPosts       int            `json:"total_posts"`
	PostVelocity     map[string]int `json:"post_velocity"` // "YYYY-MM" -> count
	VelocityTrend    Trend          `json:"velocity_trend"`
	AvgPostsPerMonth float64        `json:"avg_posts_per_month"`
	PeakMonth        string         `json:"peak_month"`
	PeakCount        int            `json:"peak_count"`
	RecentVelocity   float64        `json:"recent_velocity"` // posts/month over the last 3 months

	// Engagement
	TotalScore         int     `json:"total_score"`
	AvgScorePerPost    float64 `json:"avg_score_per_post"`
	MedianScore        float64 `json:"median_score"`
	TotalComments      int     `json:"total_comments"`
	AvgCommentsPerPost float64 `json:"avg_comments_per_post"`
	MedianComments     float64 `json:"median_comments"`
	EngagementTrend    Trend   `json:"engagement_trend"`
	HighlyEngagedCount int     `json:"highly_engaged_count"`

	// Communities
	UniqueSubreddits          int           `json:"unique_subreddits"`
	TopSubreddits             []RankedCount `json:"top_subreddits"`
	SubredditConcentrationHHI float64       `json:"subreddit_concentration_hhi"`

	// Authors
	UniqueAuthors          int           `json:"unique_authors"`
	TopAuthors             []RankedCount `json:"top_authors"`
	AuthorConcentrationHHI float64       `json:"author_concentration_hhi"`

	// Post types
	SelfPostPercentage float64 `json:"self_post_percentage"`
	LinkPostPercentage float64 `json:"link_post_percentage"`

	// Topics
	TopKeywords       []RankedCount `json:"top_keywords"`
	EmergingKeywords  []string      `json:"emerging_keywords"`
	DecliningKeywords []string      `json:"declining_keywords"`

	// Temporal comparison
	FirstPostDate         string  `json:"first_post_date"` // YYYY-MM-DD
	PostsLastMonth        int     `json:"posts_last_month"`
	PostsLast3Months      int     `json:"posts_last_3_months"`
	PostsFirst3Months     int     `json:"posts_first_3_months"`
	GrowthRateEarlyVsLate float64 `json:"growth_rate_early_vs_late"`

	// Data quality
	PostsWithBody      int     `json:"posts_with_body"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}

// NewsSnapshot is the immutable metrics snapshot computed from a news
// coverage record set. Velocity buckets are "YYYY-MM" strings.
type NewsSnapshot struct {
	// Volume
	TotalArticles       int            `json:"total_articles"`
	ArticleVelocity     map[string]int `json:"article_velocity"` // "YYYY-MM" -> count
	VelocityTrend       Trend          `json:"velocity_trend"`
	AvgArticlesPerMonth float64        `json:"avg_articles_per_month"`
	PeakMonth           string         `json:"peak_month"`
	PeakCount           int            `json:"peak_count"`
	RecentVelocity      float64        `json:"recent_velocity"`

	// Sources
	UniqueSources          int           `json:"unique_sources"`
	TopSources             []RankedCount `json:"top_sources"`
	SourceConcentrationHHI float64       `json:"source_concentration_hhi"`

	// Authors
	UniqueAuthors                    int           `json:"unique_authors"`
	TopAuthors                       []RankedCount `json:"top_authors"`
	ArticlesWithoutAuthorPercentage  float64       `json:"articles_without_author_percentage"`

	// Topics
	TopKeywords       []RankedCount `json:"top_keywords"`
	EmergingKeywords  []string      `json:"emerging_keywords"`
	DecliningKeywords []string      `json:"declining_keywords"`

	// Temporal comparison
	FirstArticleDate      string  `json:"first_article_date"` // YYYY-MM-DD
	ArticlesLastMonth     int     `json:"articles_last_month"`
	ArticlesLast3Months   int     `json:"articles_last_3_months"`
	ArticlesFirst3Months  int     `json:"articles_first_3_months"`
	GrowthRateEarlyVsLate float64 `json:"growth_rate_early_vs_late"`

	// Data quality
	ArticlesWithContent     int     `json:"articles_with_content"`
	ArticlesWithDescription int     `json:"articles_with_description"`
	CoveragePercentage      float64 `json:"coverage_percentage"`
}

// TickerPerformance summarizes one ticker's contribution to a finance
// snapshot.
type TickerPerformance struct {
	TotalReturnPct    float64  `json:"total_return_pct"`
	AvgDailyReturnPct float64  `json:"avg_daily_return_pct"`
	VolatilityPct     float64  `json:"volatility_pct"`
	NumRecords        int      `json:"num_records"`
	LatestPrice       *float64 `json:"latest_price,omitempty"`
}

// FinanceSnapshot is the immutable metrics snapshot computed from a price
// bar record set, optionally enriched with fundamentals.
type FinanceSnapshot struct {
	// Overview
	TickersAnalyzed   []string `json:"tickers_analyzed"`
	TotalPriceRecords int      `json:"total_price_records"`
	DateRangeStart    string   `json:"date_range_start"`
	DateRangeEnd      string   `json:"date_range_end"`

	// Returns (aggregated across tickers; percentages)
	AvgDailyReturn float64 `json:"avg_daily_return"`
	TotalReturn    float64 `json:"total_return"`
	Volatility     float64 `json:"volatility"`   // stdev of daily returns, %
	MaxDrawdown    float64 `json:"max_drawdown"` // mean of per-ticker peak-to-trough declines, %
	SharpeRatio    float64 `json:"sharpe_ratio"` // annualized, 0% risk-free rate

	// Price trend
	PriceTrend             string  `json:"price_trend"` // "bullish", "bearish", "sideways"
	PriceChangeLastMonth   float64 `json:"price_change_last_month"`
	PriceChangeLast3Months float64 `json:"price_change_last_3_months"`

	// Volume
	AvgDailyVolume         float64 `json:"avg_daily_volume"`
	VolumeTrend            Trend   `json:"volume_trend"`
	VolumeChangePercentage float64 `json:"volume_change_percentage"`

	// Per-ticker breakdown
	TickerPerformance map[string]TickerPerformance `json:"ticker_performance"`

	// Fundamentals
	AvgPERatio           *float64 `json:"avg_pe_ratio"`
	AvgMarketCap         *float64 `json:"avg_market_cap"`
	SectorsRepresented   []string `json:"sectors_represented"`
	IndustriesRepresented []string `json:"industries_represented"`

	// Cross-ticker correlation (nil when fewer than two overlapping tickers)
	AvgCorrelationBetweenTickers *float64 `json:"avg_correlation_between_tickers"`

	// Data quality
	RecordsWithVolume  int     `json:"records_with_volume"`
	CoveragePercentage float64 `json:"coverage_percentage"`
}
