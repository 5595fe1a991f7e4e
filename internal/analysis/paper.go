package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// Lexicons for classifying a paper's research character from its title
// and abstract. A paper leans basic or applied when one side's hit count
// more than doubles the other's; everything else is mixed.
var basicScienceTerms = []string{
	"mechanism", "pathway", "fundamental", "theoretical", "discovery",
	"novel", "characterization", "identification", "isolation", "purification",
	"analysis of", "role of", "function of", "expression of", "regulation of",
	"molecular", "cellular", "biochemical", "genetics", "genomics",
	"proteomics", "metabolomics", "in vitro", "model system", "structure",
	"evolution", "phylogeny", "diversity", "morphology", "physiology",
}

var appliedResearchTerms = []string{
	"application", "production", "optimization", "yield", "efficiency",
	"commercial", "industrial", "scalable", "scale-up", "process", "manufacturing",
	"product", "development", "implementation", "protocol", "method",
	"therapeutic", "treatment", "drug", "bioactive", "functional food",
	"bioreactor", "cultivation", "cost-effective", "sustainable production",
	"market", "industry", "economic", "practical", "clinical", "pilot scale",
}

// Venue lexicons. Conference vs journal and industry vs academic are
// independent axes, so the four percentages pair up to 100 rather than
// summing to 100 across all four.
var (
	industryVenueTerms   = []string{"industrial", "applied", "engineering", "technology", "biotechnology"}
	conferenceVenueTerms = []string{"conference", "symposium", "workshop", "proceedings", "meeting"}
)

// minEmergingPaperTerm is the recent-half count a term must reach before
// it counts as emerging or declining in the paper corpus.
const minEmergingPaperTerm = 10

// PaperExtractor turns a technology's paper corpus into a metrics
// snapshot.
type PaperExtractor struct {
	settings
}

// NewPaperExtractor builds an extractor with the given options.
func NewPaperExtractor(opts ...Option) *PaperExtractor {
	return &PaperExtractor{settings: newSettings(opts)}
}

// Extract computes the paper snapshot. Papers may arrive in any order;
// the extractor sorts them by year so chronological splits behave.
// An empty corpus yields ErrNoRecords.
func (e *PaperExtractor) Extract(papers []types.Paper) (*types.PaperSnapshot, error) {
	if len(papers) == 0 {
		return nil, ErrNoRecords
	}
	e.log.WithFields(logrus.Fields{
		"stream":  types.StreamPaper,
		"records": len(papers),
	}).Info("extracting paper metrics")

	sorted := make([]types.Paper, len(papers))
	copy(sorted, papers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return yearOf(sorted[i]) < yearOf(sorted[j])
	})

	snap := &types.PaperSnapshot{TotalPapers: len(sorted)}
	e.velocityMetrics(sorted, snap)
	e.citationMetrics(sorted, snap)
	e.researchTypeMetrics(sorted, snap)
	e.topicMetrics(sorted, snap)
	e.venueMetrics(sorted, snap)
	e.temporalMetrics(sorted, snap)
	e.qualityMetrics(sorted, snap)
	return snap, nil
}

func yearOf(p types.Paper) int {
	if p.Year == nil {
		return 0
	}
	return *p.Year
}

func (e *PaperExtractor) velocityMetrics(papers []types.Paper, snap *types.PaperSnapshot) {
	yearCounts := make(map[int]int)
	for _, p := range papers {
		if p.Year != nil {
			yearCounts[*p.Year]++
		}
	}
	snap.PublicationVelocity = yearCounts
	snap.VelocityTrend = ClassifyTrend(yearCounts)

	if len(yearCounts) > 0 {
		snap.PeakYear = PeakBucket(yearCounts)
		snap.PeakCount = yearCounts[snap.PeakYear]
		snap.AvgPapersPerYear = float64(len(papers)) / float64(len(yearCounts))
	}

	currentYear := e.now().Year()
	recentYears := 0
	recentCount := 0
	for y, c := range yearCounts {
		if y >= currentYear-2 {
			recentYears++
			recentCount += c
		}
	}
	snap.RecentVelocity = float64(recentCount) / float64(max(recentYears, 1))
}

func (e *PaperExtractor) citationMetrics(papers []types.Paper, snap *types.PaperSnapshot) {
	citations := []float64{}
	byYear := make(map[int][]float64)
	for _, p := range papers {
		if p.CitationCount == nil {
			continue
		}
		c := float64(*p.CitationCount)
		citations = append(citations, c)
		snap.TotalCitations += *p.CitationCount
		if p.Year != nil {
			byYear[*p.Year] = append(byYear[*p.Year], c)
		}
	}
	if len(citations) == 0 {
		return
	}

	snap.AvgCitationsPerPaper = Mean(citations)
	snap.MedianCitations = Median(citations)

	// Highly cited means the top decile, but never below 100 citations.
	threshold := math.Max(100, Percentile(citations, 90))
	for _, c := range citations {
		if c >= threshold {
			snap.HighlyCitedCount++
		}
	}

	// Growth: average citations in the latest year against the year before.
	if len(byYear) >= 2 {
		years := SortedKeys(byYear)
		recentAvg := Mean(byYear[years[len(years)-1]])
		earlierAvg := Mean(byYear[years[len(years)-2]])
		snap.CitationGrowthRate = (recentAvg - earlierAvg) / math.Max(earlierAvg, 1) * 100
	}
}

// classifyResearchType labels one paper by lexicon hits in its title and
// abstract.
func classifyResearchType(p types.Paper) string {
	text := strings.ToLower(p.Title) + " " + strings.ToLower(p.Abstract)
	basic := 0
	for _, term := range basicScienceTerms {
		if strings.Contains(text, term) {
			basic++
		}
	}
	applied := 0
	for _, term := range appliedResearchTerms {
		if strings.Contains(text, term) {
			applied++
		}
	}
	switch {
	case basic > applied*2:
		return "basic"
	case applied > basic*2:
		return "applied"
	default:
		return "mixed"
	}
}

func (e *PaperExtractor) researchTypeMetrics(papers []types.Paper, snap *types.PaperSnapshot) {
	var basic, applied, mixed int
	for _, p := range papers {
		switch classifyResearchType(p) {
		case "basic":
			basic++
		case "applied":
			applied++
		default:
			mixed++
		}
	}
	total := float64(len(papers))
	snap.BasicResearchPercentage = float64(basic) / total * 100
	snap.AppliedResearchPercentage = float64(applied) / total * 100
	snap.MixedResearchPercentage = float64(mixed) / total * 100

	mid := len(papers) / 2
	firstApplied := appliedShare(papers[:mid])
	secondApplied := appliedShare(papers[mid:])
	switch {
	case secondApplied > firstApplied+10:
		snap.ResearchTypeTrend = "toward_applied"
	case secondApplied < firstApplied-10:
		snap.ResearchTypeTrend = "toward_basic"
	default:
		snap.ResearchTypeTrend = "stable"
	}
}

func appliedShare(papers []types.Paper) float64 {
	if len(papers) == 0 {
		return 0.0
	}
	applied := 0
	for _, p := range papers {
		if classifyResearchType(p) == "applied" {
			applied++
		}
	}
	return float64(applied) / float64(len(papers)) * 100
}

func (e *PaperExtractor) topicMetrics(papers []types.Paper, snap *types.PaperSnapshot) {
	allTexts := make([]string, 0, len(papers)*2)
	for _, p := range papers {
		if p.Abstract != "" {
			allTexts = append(allTexts, p.Abstract)
		}
		if p.Title != "" {
			allTexts = append(allTexts, p.Title)
		}
	}
	mid := len(papers) / 2
	stats := ExtractTopics(types.StreamPaper, allTexts,
		paperTexts(papers[:mid]), paperTexts(papers[mid:]), minEmergingPaperTerm)
	snap.TopKeywords = stats.Top
	snap.EmergingKeywords = stats.Emerging
	snap.DecliningKeywords = stats.Declining
}

func paperTexts(papers []types.Paper) []string {
	texts := make([]string, 0, len(papers))
	for _, p := range papers {
		texts = append(texts, p.Title+" "+p.Abstract)
	}
	return texts
}

func (e *PaperExtractor) venueMetrics(papers []types.Paper, snap *types.PaperSnapshot) {
	var industry, conference int
	for _, p := range papers {
		venue := strings.ToLower(p.Venue)
		if containsAny(venue, conferenceVenueTerms) {
			conference++
		}
		if containsAny(venue, industryVenueTerms) {
			industry++
		}
	}
	total := float64(len(papers))
	snap.ConferencePercentage = float64(conference) / total * 100
	snap.JournalPercentage = float64(len(papers)-conference) / total * 100
	snap.IndustryVenuePercentage = float64(industry) / total * 100
	snap.AcademicVenuePercentage = float64(len(papers)-industry) / total * 100
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func (e *PaperExtractor) temporalMetrics(papers []types.Paper, snap *types.PaperSnapshot) {
	currentYear := e.now().Year()
	earliest := 0
	for _, p := range papers {
		if p.Year == nil {
			continue
		}
		y := *p.Year
		if y == currentYear-1 {
			snap.PapersLastYear++
		}
		if y >= currentYear-2 {
			snap.PapersLast2Years++
		}
		if earliest == 0 || y < earliest {
			earliest = y
		}
	}
	if earliest == 0 {
		return
	}
	for _, p := range papers {
		if p.Year != nil && *p.Year <= earliest+2 {
			snap.PapersFirst2Years++
		}
	}
	snap.GrowthRateEarlyVsLate = GrowthPercent(
		float64(snap.PapersFirst2Years), float64(snap.PapersLast2Years))
}

func (e *PaperExtractor) qualityMetrics(papers []types.Paper, snap *types.PaperSnapshot) {
	for _, p := range papers {
		if p.Abstract != "" {
			snap.PapersWithAbstracts++
		}
		if p.OpenAccessPDF != "" {
			snap.PapersWithPDF++
		}
	}
	snap.CoveragePercentage = float64(snap.PapersWithAbstracts+snap.PapersWithPDF) /
		(float64(len(papers)) * 2) * 100
}
