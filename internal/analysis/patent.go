package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// Lexicons for classifying patent assignees. Academic terms win over
// corporate terms because university spin-out names often carry both.
var academicAssigneeTerms = []string{
	"university", "università", "universität", "universite", "universidad",
	"college", "institute", "institut", "research", "laboratory", "lab",
	"national", "federal", "government", "hospital", "medical center",
	"school", "academy", "foundation", "council", "center for",
	"centre for", "dept", "department",
}

var corporateAssigneeTerms = []string{
	"inc", "corp", "corporation", "ltd", "llc", "gmbh", "co.", "company",
	"technologies", "pharmaceuticals", "biotech", "systems", "solutions",
	"industries", "enterprises", "holdings", "group", "limited", "s.a.",
	"ag", "bv", "nv", "plc", "pty", "pvt", "srl", "spa",
}

const topAssigneeLimit = 10

// PatentExtractor turns a technology's patent corpus into a metrics
// snapshot.
type PatentExtractor struct {
	settings
}

// NewPatentExtractor builds an extractor with the given options.
func NewPatentExtractor(opts ...Option) *PatentExtractor {
	return &PatentExtractor{settings: newSettings(opts)}
}

// Extract computes the patent snapshot. Patent analysis needs at least
// MinPatentRecords records; below that it returns InsufficientDataError.
func (e *PatentExtractor) Extract(patents []types.Patent) (*types.PatentSnapshot, error) {
	if len(patents) == 0 {
		return nil, ErrNoRecords
	}
	if len(patents) < MinPatentRecords {
		return nil, &InsufficientDataError{
			Stream: types.StreamPatent, Found: len(patents), Required: MinPatentRecords,
		}
	}
	e.log.WithFields(logrus.Fields{
		"stream":  types.StreamPatent,
		"records": len(patents),
	}).Info("extracting patent metrics")

	sorted := make([]types.Patent, len(patents))
	copy(sorted, patents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return patentYear(sorted[i]) < patentYear(sorted[j])
	})

	snap := &types.PatentSnapshot{TotalPatents: len(sorted)}
	e.volumeMetrics(sorted, snap)
	e.citationMetrics(sorted, snap)
	e.assigneeMetrics(sorted, snap)
	e.geographicMetrics(sorted, snap)
	e.typeMetrics(sorted, snap)
	e.temporalMetrics(sorted, snap)
	e.qualityMetrics(sorted, snap)
	return snap, nil
}

func patentYear(p types.Patent) int {
	if p.Year == nil {
		return 0
	}
	return *p.Year
}

func (e *PatentExtractor) volumeMetrics(patents []types.Patent, snap *types.PatentSnapshot) {
	yearCounts := make(map[int]int)
	for _, p := range patents {
		if p.Year != nil {
			yearCounts[*p.Year]++
		}
	}
	snap.PatentVelocity = yearCounts
	snap.VelocityTrend = ClassifyTrend(yearCounts)

	if len(yearCounts) > 0 {
		snap.PeakYear = PeakBucket(yearCounts)
		snap.PeakCount = yearCounts[snap.PeakYear]
		snap.AvgPatentsPerYear = float64(len(patents)) / float64(len(yearCounts))
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

func (e *PatentExtractor) citationMetrics(patents []types.Patent, snap *types.PatentSnapshot) {
	forward := make([]float64, len(patents))
	for i, p := range patents {
		if p.ForwardCitations != nil {
			forward[i] = float64(*p.ForwardCitations)
			snap.TotalForwardCitations += *p.ForwardCitations
		}
		if p.BackwardCitations != nil {
			snap.TotalBackwardCitations += *p.BackwardCitations
		}
	}
	n := float64(len(patents))
	snap.AvgForwardCitations = float64(snap.TotalForwardCitations) / n
	snap.AvgBackwardCitations = float64(snap.TotalBackwardCitations) / n
	snap.CitationRatio = float64(snap.TotalForwardCitations) /
		math.Max(float64(snap.TotalBackwardCitations), 1)
	snap.MedianForwardCitations = Median(forward)

	// Highly cited means the top decile, but never below 50 citations.
	threshold := math.Max(50, Percentile(forward, 90))
	for _, c := range forward {
		if c >= threshold {
			snap.HighlyCitedCount++
		}
	}
}

// classifyAssignee labels one assignee entry. An entry with no
// organization but a personal name is an individual; an organization
// matching no lexicon is assumed corporate.
func classifyAssignee(a types.PatentAssignee) string {
	org := strings.ToLower(a.Organization)
	if org == "" && (a.IndividualFirstName != "" || a.IndividualLastName != "") {
		return "individual"
	}
	if containsAny(org, academicAssigneeTerms) {
		return "academic"
	}
	if containsAny(org, corporateAssigneeTerms) {
		return "corporate"
	}
	if org != "" {
		return "corporate"
	}
	return "individual"
}

func (e *PatentExtractor) assigneeMetrics(patents []types.Patent, snap *types.PatentSnapshot) {
	counts := make(map[string]int)
	typeCounts := map[string]int{}
	firstYear := make(map[string]int)

	for _, p := range patents {
		for _, a := range p.Assignees {
			name := a.Organization
			if name == "" {
				name = a.IndividualFirstName
			}
			if name == "" {
				continue
			}
			counts[name]++
			if _, seen := firstYear[name]; !seen && p.Year != nil {
				firstYear[name] = *p.Year
			}
			typeCounts[classifyAssignee(a)]++
		}
	}

	snap.UniqueAssigneesCount = len(counts)
	snap.TopAssignees = TopCounts(counts, topAssigneeLimit)
	snap.AssigneeConcentrationHHI = HHI(counts)

	totalEntries := typeCounts["corporate"] + typeCounts["academic"] + typeCounts["individual"]
	if totalEntries > 0 {
		snap.CorporatePercentage = float64(typeCounts["corporate"]) / float64(totalEntries) * 100
		snap.AcademicPercentage = float64(typeCounts["academic"]) / float64(totalEntries) * 100
		snap.IndividualPercentage = float64(typeCounts["individual"]) / float64(totalEntries) * 100
	}

	newEntrants := make(map[int]int)
	for _, y := range firstYear {
		newEntrants[y]++
	}
	snap.NewEntrantsByYear = newEntrants
}

func (e *PatentExtractor) geographicMetrics(patents []types.Patent, snap *types.PatentSnapshot) {
	countries := make(map[string]int)
	for _, p := range patents {
		for _, a := range p.Assignees {
			if a.Country != "" {
				countries[a.Country]++
			}
		}
	}
	snap.CountryDistribution = countries
	snap.UniqueCountries = len(countries)
	snap.TopCountries = TopCounts(countries, topAssigneeLimit)
}

func (e *PatentExtractor) typeMetrics(patents []types.Patent, snap *types.PatentSnapshot) {
	var utility, design int
	for _, p := range patents {
		switch strings.ToLower(p.Type) {
		case "utility":
			utility++
		case "design":
			design++
		}
	}
	total := float64(len(patents))
	snap.UtilityPercentage = float64(utility) / total * 100
	snap.DesignPercentage = float64(design) / total * 100
	snap.OtherTypePercentage = 100 - snap.UtilityPercentage - snap.DesignPercentage
}

func (e *PatentExtractor) temporalMetrics(patents []types.Patent, snap *types.PatentSnapshot) {
	currentYear := e.now().Year()
	for _, p := range patents {
		if p.Year == nil {
			continue
		}
		y := *p.Year
		if snap.FirstPatentYear == 0 || y < snap.FirstPatentYear {
			snap.FirstPatentYear = y
		}
		if y == currentYear-1 {
			snap.PatentsLastYear++
		}
		if y >= currentYear-2 {
			snap.PatentsLast2Years++
		}
	}
	if snap.FirstPatentYear > 0 {
		snap.TechnologyAgeYears = currentYear - snap.FirstPatentYear
	}
}

func (e *PatentExtractor) qualityMetrics(patents []types.Patent, snap *types.PatentSnapshot) {
	for _, p := range patents {
		if p.Abstract != "" {
			snap.PatentsWithAbstract++
		}
	}
	snap.CoveragePercentage = float64(snap.PatentsWithAbstract) / float64(len(patents)) * 100
}
