package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// minEmergingSocialTerm is the recent-half count a term must reach before
// it counts as emerging or declining in social discussion.
const minEmergingSocialTerm = 5

const topDistributionLimit = 10

// SocialExtractor turns a technology's social discussion corpus into a
// metrics snapshot.
type SocialExtractor struct {
	settings
}

// NewSocialExtractor builds an extractor with the given options.
func NewSocialExtractor(opts ...Option) *SocialExtractor {
	return &SocialExtractor{settings: newSettings(opts)}
}

// Extract computes the social snapshot. Social analysis needs at least
// MinSocialRecords posts; below that it returns InsufficientDataError.
func (e *SocialExtractor) Extract(posts []types.SocialPost) (*types.SocialSnapshot, error) {
	if len(posts) == 0 {
		return nil, ErrNoRecords
	}
	if len(posts) < MinSocialRecords {
		return nil, &InsufficientDataError{
			Stream: types.StreamSocial, Found: len(posts), Required: MinSocialRecords,
		}
	}
	e.log.WithFields(logrus.Fields{
		"stream":  types.StreamSocial,
		"records": len(posts),
	}).Info("extracting social metrics")

	sorted := make([]types.SocialPost, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedUTC < sorted[j].CreatedUTC
	})

	snap := &types.SocialSnapshot{TotalPosts: len(sorted)}
	e.volumeMetrics(sorted, snap)
	e.engagementMetrics(sorted, snap)
	e.distributionMetrics(sorted, snap)
	e.topicMetrics(sorted, snap)
	e.temporalMetrics(sorted, snap)
	e.qualityMetrics(sorted, snap)
	return snap, nil
}

// monthKey renders a unix timestamp as its "YYYY-MM" bucket.
func monthKey(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01")
}

func (e *SocialExtractor) volumeMetrics(posts []types.SocialPost, snap *types.SocialSnapshot) {
	monthCounts := make(map[string]int)
	for _, p := range posts {
		if p.CreatedUTC > 0 {
			monthCounts[monthKey(p.CreatedUTC)]++
		}
	}
	snap.PostVelocity = monthCounts
	snap.VelocityTrend = ClassifyTrend(monthCounts)

	if len(monthCounts) == 0 {
		return
	}
	snap.PeakMonth = PeakBucket(monthCounts)
	snap.PeakCount = monthCounts[snap.PeakMonth]
	snap.AvgPostsPerMonth = float64(len(posts)) / float64(len(monthCounts))

	months := SortedKeys(monthCounts)
	window := min(3, len(months))
	recent := 0
	for _, m := range months[len(months)-window:] {
		recent += monthCounts[m]
	}
	snap.RecentVelocity = float64(recent) / float64(window)
}

func (e *SocialExtractor) engagementMetrics(posts []types.SocialPost, snap *types.SocialSnapshot) {
	scores := []float64{}
	comments := []float64{}
	for _, p := range posts {
		if p.Score != nil {
			scores = append(scores, float64(*p.Score))
			snap.TotalScore += *p.Score
		}
		if p.NumComments != nil {
			comments = append(comments, float64(*p.NumComments))
			snap.TotalComments += *p.NumComments
		}
	}
	if len(scores) > 0 {
		snap.AvgScorePerPost = Mean(scores)
		snap.MedianScore = Median(scores)
	}
	if len(comments) > 0 {
		snap.AvgCommentsPerPost = Mean(comments)
		snap.MedianComments = Median(comments)
	}

	// Highly engaged means the top decile, but never below a score of 100.
	threshold := 100.0
	if len(scores) > 1 {
		threshold = math.Max(100, Percentile(scores, 90))
	}
	for _, s := range scores {
		if s >= threshold {
			snap.HighlyEngagedCount++
		}
	}

	// Engagement trend compares average score across the two halves of
	// the corpus, missing scores counted as zero.
	mid := len(posts) / 2
	firstAvg := avgScore(posts[:mid])
	secondAvg := avgScore(posts[mid:])
	switch {
	case mid == 0:
		snap.EngagementTrend = types.TrendInsufficientData
	case secondAvg > firstAvg*trendGrowthFactor:
		snap.EngagementTrend = types.TrendIncreasing
	case secondAvg < firstAvg*trendDeclineFactor:
		snap.EngagementTrend = types.TrendDecreasing
	default:
		snap.EngagementTrend = types.TrendStable
	}
}

func avgScore(posts []types.SocialPost) float64 {
	if len(posts) == 0 {
		return 0.0
	}
	total := 0
	for _, p := range posts {
		if p.Score != nil {
			total += *p.Score
		}
	}
	return float64(total) / float64(len(posts))
}

func (e *SocialExtractor) distributionMetrics(posts []types.SocialPost, snap *types.SocialSnapshot) {
	subreddits := make(map[string]int)
	authors := make(map[string]int)
	var selfPosts, linkPosts int
	for _, p := range posts {
		sub := p.Subreddit
		if sub == "" {
			sub = "unknown"
		}
		subreddits[sub]++

		author := p.Author
		if author == "" {
			author = "[deleted]"
		}
		authors[author]++

		switch p.PostType {
		case "self":
			selfPosts++
		case "link":
			linkPosts++
		}
	}

	snap.UniqueSubreddits = len(subreddits)
	snap.TopSubreddits = TopCounts(subreddits, topDistributionLimit)
	snap.SubredditConcentrationHHI = HHI(subreddits)

	snap.UniqueAuthors = len(authors)
	snap.TopAuthors = TopCounts(authors, topDistributionLimit)
	snap.AuthorConcentrationHHI = HHI(authors)

	total := float64(len(posts))
	snap.SelfPostPercentage = float64(selfPosts) / total * 100
	snap.LinkPostPercentage = float64(linkPosts) / total * 100
}

func (e *SocialExtractor) topicMetrics(posts []types.SocialPost, snap *types.SocialSnapshot) {
	allTexts := make([]string, 0, len(posts)*2)
	for _, p := range posts {
		if p.Title != "" {
			allTexts = append(allTexts, p.Title)
		}
		if p.Body != "" {
			allTexts = append(allTexts, p.Body)
		}
	}
	mid := len(posts) / 2
	stats := ExtractTopics(types.StreamSocial, allTexts,
		postTexts(posts[:mid]), postTexts(posts[mid:]), minEmergingSocialTerm)
	snap.TopKeywords = stats.Top
	snap.EmergingKeywords = stats.Emerging
	snap.DecliningKeywords = stats.Declining
}

func postTexts(posts []types.SocialPost) []string {
	texts := make([]string, 0, len(posts))
	for _, p := range posts {
		texts = append(texts, p.Title+" "+p.Body)
	}
	return texts
}

func (e *SocialExtractor) temporalMetrics(posts []types.SocialPost, snap *types.SocialSnapshot) {
	var first int64
	for _, p := range posts {
		if p.CreatedUTC > 0 && (first == 0 || p.CreatedUTC < first) {
			first = p.CreatedUTC
		}
	}
	if first == 0 {
		snap.FirstPostDate = "unknown"
		return
	}
	snap.FirstPostDate = time.Unix(first, 0).UTC().Format("2006-01-02")

	now := e.now().Unix()
	const day = int64(24 * 60 * 60)
	oneMonthAgo := now - 30*day
	threeMonthsAgo := now - 90*day
	threeMonthsAfterFirst := first + 90*day

	for _, p := range posts {
		if p.CreatedUTC == 0 {
			continue
		}
		if p.CreatedUTC >= oneMonthAgo {
			snap.PostsLastMonth++
		}
		if p.CreatedUTC >= threeMonthsAgo {
			snap.PostsLast3Months++
		}
		if p.CreatedUTC <= threeMonthsAfterFirst {
			snap.PostsFirst3Months++
		}
	}
	snap.GrowthRateEarlyVsLate = GrowthPercent(
		float64(snap.PostsFirst3Months), float64(snap.PostsLast3Months))
}

func (e *SocialExtractor) qualityMetrics(posts []types.SocialPost, snap *types.SocialSnapshot) {
	for _, p := range posts {
		if p.Body != "" {
			snap.PostsWithBody++
		}
	}
	snap.CoveragePercentage = float64(snap.PostsWithBody) / float64(len(posts)) * 100
}
