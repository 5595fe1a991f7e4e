// Package report renders stored analyses into markdown reports: an
// executive summary across streams, per-stream metric sections, the rule
// engine's rationale, and a methodology appendix.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

// Generator builds markdown reports from the technology catalog and the
// stored per-stream analyses.
type Generator struct {
	techs    storage.TechnologyStore
	analyses storage.AnalysisStore
	log      *logrus.Logger
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a report generator.
func NewGenerator(techs storage.TechnologyStore, analyses storage.AnalysisStore, log *logrus.Logger, opts ...Option) *Generator {
	g := &Generator{techs: techs, analyses: analyses, log: log, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders the full markdown report for a technology. It requires
// at least one stored analysis.
func (g *Generator) Generate(ctx context.Context, technologyID int64) (string, error) {
	tech, err := g.techs.GetTechnology(ctx, technologyID)
	if err != nil {
		return "", fmt.Errorf("report: failed to load technology: %w", err)
	}
	analyses, err := g.analyses.ListAnalyses(ctx, technologyID)
	if err != nil {
		return "", fmt.Errorf("report: failed to load analyses: %w", err)
	}
	if len(analyses) == 0 {
		return "", fmt.Errorf("report: no analyses stored for technology %d", technologyID)
	}
	return g.build(tech, analyses), nil
}

// WriteFile renders the report and writes it to dir as
// HYPE_CYCLE_ANALYSIS_<NAME>.md, returning the file path.
func (g *Generator) WriteFile(ctx context.Context, technologyID int64, dir string) (string, error) {
	content, err := g.Generate(ctx, technologyID)
	if err != nil {
		return "", err
	}
	tech, err := g.techs.GetTechnology(ctx, technologyID)
	if err != nil {
		return "", fmt.Errorf("report: failed to load technology: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: failed to create report directory: %w", err)
	}
	name := strings.ToUpper(strings.ReplaceAll(tech.Name, " ", "_"))
	path := filepath.Join(dir, "HYPE_CYCLE_ANALYSIS_"+name+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("report: failed to write report: %w", err)
	}

	g.log.WithField("path", path).Info("report generated")
	return path, nil
}

// headline picks the verdict the summary leads with: the highest
// confidence wins, earlier streams win ties.
func headline(analyses []types.Analysis) types.Analysis {
	best := analyses[0]
	for _, a := range analyses[1:] {
		if a.Confidence > best.Confidence {
			best = a
		}
	}
	return best
}

var streamTitles = map[types.Stream]string{
	types.StreamPaper:   "Scientific Papers",
	types.StreamPatent:  "Patents",
	types.StreamSocial:  "Social Discussion (Reddit)",
	types.StreamNews:    "News Coverage",
	types.StreamFinance: "Financial Markets",
}

func (g *Generator) build(tech *types.Technology, analyses []types.Analysis) string {
	var b strings.Builder
	lead := headline(analyses)

	fmt.Fprintf(&b, "# Hype Cycle Analysis Report - %s\n\n", tech.Name)
	fmt.Fprintf(&b, "**Analysis Date**: %s\n", lead.AnalyzedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Technology ID**: %d\n", tech.ID)
	fmt.Fprintf(&b, "**Streams Analyzed**: %d of %d\n\n", len(analyses), len(types.AllStreams))
	b.WriteString("---\n\n## Executive Summary\n\n")
	fmt.Fprintf(&b, "Across %d evidence streams, **%s** is currently assessed as **%s** on the Gartner Hype Cycle.\n\n",
		len(analyses), tech.Name, lead.Phase.DisplayName())
	fmt.Fprintf(&b, "**Leading Signal**: %s (confidence %.0f%%)\n\n", streamTitles[lead.Stream], lead.Confidence*100)

	b.WriteString("| Stream | Phase | Confidence | Records |\n")
	b.WriteString("|--------|-------|------------|--------|\n")
	for _, a := range analyses {
		fmt.Fprintf(&b, "| %s | %s | %.0f%% | %d |\n",
			streamTitles[a.Stream], a.Phase.DisplayName(), a.Confidence*100, a.RecordsAnalyzed)
	}

	b.WriteString("\n### Phase Description\n\n")
	b.WriteString(lead.Phase.Description())
	b.WriteString("\n\n### Characteristic Indicators\n\n")
	for _, indicator := range lead.Phase.Indicators() {
		fmt.Fprintf(&b, "- %s\n", indicator)
	}
	b.WriteString("\n")

	for _, a := range analyses {
		g.streamSection(&b, a)
	}

	b.WriteString("---\n\n## Visualizations (Suggested)\n\n")
	b.WriteString("1. **Velocity Timeline**: records per period for each stream\n")
	b.WriteString("2. **Hype Cycle Curve**: per-stream position markers on the standard curve\n")
	b.WriteString("3. **Concentration Trends**: HHI over time for assignees, subreddits, and sources\n")
	b.WriteString("4. **Keyword Shift**: emerging vs declining vocabulary per stream\n\n")

	b.WriteString("---\n\n## Recommendations\n\n")
	fmt.Fprintf(&b, "### Based on %s Phase\n\n", lead.Phase.DisplayName())
	for _, rec := range phaseRecommendations(lead.Phase) {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	b.WriteString("\n### For Next Analysis\n\n")
	b.WriteString("- Re-collect all streams before the next run to capture velocity shifts\n")
	b.WriteString("- Compare stream verdicts over successive runs to detect phase transitions\n")
	b.WriteString("- Review streams skipped for insufficient data and broaden keywords if needed\n\n")

	g.methodology(&b, analyses)

	fmt.Fprintf(&b, "\n---\n\n**Report Generated**: %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Technology**: %s\n", tech.Name)
	fmt.Fprintf(&b, "**Hype Cycle Phase**: %s\n", lead.Phase.DisplayName())
	return b.String()
}

func (g *Generator) streamSection(b *strings.Builder, a types.Analysis) {
	fmt.Fprintf(b, "---\n\n## %s\n\n", streamTitles[a.Stream])
	fmt.Fprintf(b, "**Phase**: %s (confidence %.0f%%) over %d records\n\n",
		a.Phase.DisplayName(), a.Confidence*100, a.RecordsAnalyzed)

	var err error
	switch a.Stream {
	case types.StreamPaper:
		err = renderSnapshot(b, a.Snapshot, paperMetrics)
	case types.StreamPatent:
		err = renderSnapshot(b, a.Snapshot, patentMetrics)
	case types.StreamSocial:
		err = renderSnapshot(b, a.Snapshot, socialMetrics)
	case types.StreamNews:
		err = renderSnapshot(b, a.Snapshot, newsMetrics)
	case types.StreamFinance:
		err = renderSnapshot(b, a.Snapshot, financeMetrics)
	}
	if err != nil {
		g.log.WithError(err).WithField("stream", a.Stream).Warn("snapshot unavailable, skipping metrics")
	}

	b.WriteString("### Phase Determination Rationale\n\n```\n")
	b.WriteString(strings.TrimRight(a.Rationale, "\n"))
	b.WriteString("\n```\n\n")
}

// renderSnapshot normalizes the stored snapshot (raw JSON after a reload,
// a typed pointer right after analysis) and renders its metrics section.
func renderSnapshot[T any](b *strings.Builder, snapshot any, render func(*strings.Builder, *T)) error {
	if snapshot == nil {
		return fmt.Errorf("no snapshot")
	}
	raw, ok := snapshot.(json.RawMessage)
	if !ok {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		raw = data
	}
	var snap T
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	render(b, &snap)
	return nil
}

func rankedList(b *strings.Builder, items []types.RankedCount, max int, unit string) {
	for i, item := range items {
		if i >= max {
			break
		}
		fmt.Fprintf(b, "- **%s**: %d %s\n", item.Name, item.Count, unit)
	}
	if len(items) == 0 {
		b.WriteString("- None detected\n")
	}
}

func keywordLists(b *strings.Builder, top []types.RankedCount, emerging, declining []string) {
	b.WriteString("### Top Keywords\n\n")
	rankedList(b, top, 10, "occurrences")
	b.WriteString("\n### Emerging Keywords\n\n")
	if len(emerging) == 0 {
		b.WriteString("- No significant emerging keywords detected\n")
	}
	for _, kw := range emerging {
		fmt.Fprintf(b, "- %s\n", kw)
	}
	b.WriteString("\n### Declining Keywords\n\n")
	if len(declining) == 0 {
		b.WriteString("- No significant declining keywords detected\n")
	}
	for _, kw := range declining {
		fmt.Fprintf(b, "- %s\n", kw)
	}
	b.WriteString("\n")
}

func paperMetrics(b *strings.Builder, s *types.PaperSnapshot) {
	b.WriteString("### Publication Velocity\n\n")
	fmt.Fprintf(b, "- **Average papers per year**: %.1f\n", s.AvgPapersPerYear)
	fmt.Fprintf(b, "- **Peak year**: %d (%d papers)\n", s.PeakYear, s.PeakCount)
	fmt.Fprintf(b, "- **Recent velocity** (last 2 years): %.1f papers/year\n", s.RecentVelocity)
	fmt.Fprintf(b, "- **Trend**: %s\n\n", s.VelocityTrend)

	b.WriteString("### Citation Metrics\n\n")
	fmt.Fprintf(b, "- **Total citations**: %d\n", s.TotalCitations)
	fmt.Fprintf(b, "- **Average citations per paper**: %.1f\n", s.AvgCitationsPerPaper)
	fmt.Fprintf(b, "- **Median citations**: %.1f\n", s.MedianCitations)
	fmt.Fprintf(b, "- **Citation growth rate**: %.1f%%\n", s.CitationGrowthRate)
	fmt.Fprintf(b, "- **Highly cited papers**: %d\n\n", s.HighlyCitedCount)

	b.WriteString("### Research Type Distribution\n\n")
	fmt.Fprintf(b, "- **Basic research**: %.1f%%\n", s.BasicResearchPercentage)
	fmt.Fprintf(b, "- **Applied research**: %.1f%%\n", s.AppliedResearchPercentage)
	fmt.Fprintf(b, "- **Mixed research**: %.1f%%\n", s.MixedResearchPercentage)
	fmt.Fprintf(b, "- **Trend**: %s\n\n", s.ResearchTypeTrend)

	b.WriteString("### Venue Distribution\n\n")
	fmt.Fprintf(b, "- **Academic venues**: %.1f%%\n", s.AcademicVenuePercentage)
	fmt.Fprintf(b, "- **Industry venues**: %.1f%%\n", s.IndustryVenuePercentage)
	fmt.Fprintf(b, "- **Conferences**: %.1f%%\n", s.ConferencePercentage)
	fmt.Fprintf(b, "- **Journals**: %.1f%%\n\n", s.JournalPercentage)

	keywordLists(b, s.TopKeywords, s.EmergingKeywords, s.DecliningKeywords)

	b.WriteString("### Data Quality\n\n")
	fmt.Fprintf(b, "- **Papers with abstracts**: %d\n", s.PapersWithAbstracts)
	fmt.Fprintf(b, "- **Papers with PDFs**: %d\n", s.PapersWithPDF)
	fmt.Fprintf(b, "- **Overall coverage**: %.1f%%\n\n", s.CoveragePercentage)
}

func hhiInterpretation(hhi float64) string {
	switch {
	case hhi < 0.15:
		return "Low concentration (competitive market)"
	case hhi < 0.25:
		return "Moderate concentration"
	default:
		return "High concentration (few dominant players)"
	}
}

func patentMetrics(b *strings.Builder, s *types.PatentSnapshot) {
	b.WriteString("### Patent Volume\n\n")
	fmt.Fprintf(b, "- **Total patents analyzed**: %d\n", s.TotalPatents)
	fmt.Fprintf(b, "- **Average patents per year**: %.1f\n", s.AvgPatentsPerYear)
	fmt.Fprintf(b, "- **Peak year**: %d (%d patents)\n", s.PeakYear, s.PeakCount)
	fmt.Fprintf(b, "- **Recent velocity** (last 2 years): %.1f patents/year\n", s.RecentVelocity)
	fmt.Fprintf(b, "- **Velocity trend**: %s\n", s.VelocityTrend)
	fmt.Fprintf(b, "- **Technology age**: %d years (first patent: %d)\n\n", s.TechnologyAgeYears, s.FirstPatentYear)

	b.WriteString("### Citation Metrics\n\n")
	fmt.Fprintf(b, "- **Total forward citations**: %d\n", s.TotalForwardCitations)
	fmt.Fprintf(b, "- **Total backward citations**: %d\n", s.TotalBackwardCitations)
	fmt.Fprintf(b, "- **Citation ratio** (forward/backward): %.2f\n", s.CitationRatio)
	fmt.Fprintf(b, "- **Median forward citations**: %.1f\n", s.MedianForwardCitations)
	fmt.Fprintf(b, "- **Highly cited patents**: %d\n\n", s.HighlyCitedCount)

	b.WriteString("### Assignee Analysis\n\n")
	fmt.Fprintf(b, "- **Unique assignees**: %d\n", s.UniqueAssigneesCount)
	fmt.Fprintf(b, "- **Assignee concentration (HHI)**: %.3f\n", s.AssigneeConcentrationHHI)
	fmt.Fprintf(b, "  - *Interpretation*: %s\n", hhiInterpretation(s.AssigneeConcentrationHHI))
	fmt.Fprintf(b, "- **Corporate**: %.1f%% / **Academic**: %.1f%% / **Individual**: %.1f%%\n\n",
		s.CorporatePercentage, s.AcademicPercentage, s.IndividualPercentage)

	b.WriteString("#### Top Assignees\n\n")
	rankedList(b, s.TopAssignees, 10, "patents")

	b.WriteString("\n### Geographic Distribution\n\n")
	fmt.Fprintf(b, "- **Unique countries**: %d\n\n", s.UniqueCountries)
	b.WriteString("#### Top Countries\n\n")
	rankedList(b, s.TopCountries, 5, "patents")

	b.WriteString("\n### Patent Type Distribution\n\n")
	fmt.Fprintf(b, "- **Utility patents**: %.1f%%\n", s.UtilityPercentage)
	fmt.Fprintf(b, "- **Design patents**: %.1f%%\n", s.DesignPercentage)
	fmt.Fprintf(b, "- **Other types**: %.1f%%\n\n", s.OtherTypePercentage)

	b.WriteString("### Data Quality\n\n")
	fmt.Fprintf(b, "- **Patents with abstracts**: %d\n", s.PatentsWithAbstract)
	fmt.Fprintf(b, "- **Coverage**: %.1f%%\n\n", s.CoveragePercentage)
}

func socialMetrics(b *strings.Builder, s *types.SocialSnapshot) {
	b.WriteString("### Discussion Volume\n\n")
	fmt.Fprintf(b, "- **Total posts**: %d\n", s.TotalPosts)
	fmt.Fprintf(b, "- **Average posts per month**: %.1f\n", s.AvgPostsPerMonth)
	fmt.Fprintf(b, "- **Peak month**: %s (%d posts)\n", s.PeakMonth, s.PeakCount)
	fmt.Fprintf(b, "- **Trend**: %s\n\n", s.VelocityTrend)

	b.WriteString("### Engagement\n\n")
	fmt.Fprintf(b, "- **Average score per post**: %.1f (median %.1f)\n", s.AvgScorePerPost, s.MedianScore)
	fmt.Fprintf(b, "- **Average comments per post**: %.1f (median %.1f)\n", s.AvgCommentsPerPost, s.MedianComments)
	fmt.Fprintf(b, "- **Engagement trend**: %s\n", s.EngagementTrend)
	fmt.Fprintf(b, "- **Highly engaged posts**: %d\n\n", s.HighlyEngagedCount)

	b.WriteString("### Communities\n\n")
	fmt.Fprintf(b, "- **Unique subreddits**: %d\n", s.UniqueSubreddits)
	fmt.Fprintf(b, "- **Subreddit concentration (HHI)**: %.3f\n", s.SubredditConcentrationHHI)
	fmt.Fprintf(b, "  - *Interpretation*: %s\n\n", hhiInterpretation(s.SubredditConcentrationHHI))
	b.WriteString("#### Top Subreddits\n\n")
	rankedList(b, s.TopSubreddits, 5, "posts")

	b.WriteString("\n### Post Mix\n\n")
	fmt.Fprintf(b, "- **Self posts**: %.1f%% / **Link posts**: %.1f%%\n", s.SelfPostPercentage, s.LinkPostPercentage)
	fmt.Fprintf(b, "- **Unique authors**: %d\n\n", s.UniqueAuthors)

	keywordLists(b, s.TopKeywords, s.EmergingKeywords, s.DecliningKeywords)

	b.WriteString("### Data Quality\n\n")
	fmt.Fprintf(b, "- **Posts with body text**: %d\n", s.PostsWithBody)
	fmt.Fprintf(b, "- **Coverage**: %.1f%%\n\n", s.CoveragePercentage)
}

func newsMetrics(b *strings.Builder, s *types.NewsSnapshot) {
	b.WriteString("### Coverage Volume\n\n")
	fmt.Fprintf(b, "- **Total articles**: %d\n", s.TotalArticles)
	fmt.Fprintf(b, "- **Average articles per month**: %.1f\n", s.AvgArticlesPerMonth)
	fmt.Fprintf(b, "- **Peak month**: %s (%d articles)\n", s.PeakMonth, s.PeakCount)
	fmt.Fprintf(b, "- **Trend**: %s\n\n", s.VelocityTrend)

	b.WriteString("### Sources\n\n")
	fmt.Fprintf(b, "- **Unique sources**: %d\n", s.UniqueSources)
	fmt.Fprintf(b, "- **Source concentration (HHI)**: %.3f\n", s.SourceConcentrationHHI)
	fmt.Fprintf(b, "  - *Interpretation*: %s\n\n", hhiInterpretation(s.SourceConcentrationHHI))
	b.WriteString("#### Top Sources\n\n")
	rankedList(b, s.TopSources, 5, "articles")

	b.WriteString("\n### Authorship\n\n")
	fmt.Fprintf(b, "- **Unique authors**: %d\n", s.UniqueAuthors)
	fmt.Fprintf(b, "- **Articles without byline**: %.1f%%\n\n", s.ArticlesWithoutAuthorPercentage)

	keywordLists(b, s.TopKeywords, s.EmergingKeywords, s.DecliningKeywords)

	b.WriteString("### Data Quality\n\n")
	fmt.Fprintf(b, "- **Articles with content**: %d\n", s.ArticlesWithContent)
	fmt.Fprintf(b, "- **Articles with description**: %d\n", s.ArticlesWithDescription)
	fmt.Fprintf(b, "- **Coverage**: %.1f%%\n\n", s.CoveragePercentage)
}

func financeMetrics(b *strings.Builder, s *types.FinanceSnapshot) {
	b.WriteString("### Market Overview\n\n")
	fmt.Fprintf(b, "- **Tickers analyzed**: %s\n", strings.Join(s.TickersAnalyzed, ", "))
	fmt.Fprintf(b, "- **Price records**: %d (%s to %s)\n\n", s.TotalPriceRecords, s.DateRangeStart, s.DateRangeEnd)

	b.WriteString("### Returns and Risk\n\n")
	fmt.Fprintf(b, "- **Total return**: %.1f%%\n", s.TotalReturn)
	fmt.Fprintf(b, "- **Volatility** (daily stdev): %.2f%%\n", s.Volatility)
	fmt.Fprintf(b, "- **Max drawdown**: %.1f%%\n", s.MaxDrawdown)
	fmt.Fprintf(b, "- **Sharpe ratio** (annualized): %.2f\n\n", s.SharpeRatio)

	b.WriteString("### Trend\n\n")
	fmt.Fprintf(b, "- **Price trend**: %s\n", s.PriceTrend)
	fmt.Fprintf(b, "- **Change last month**: %.1f%%\n", s.PriceChangeLastMonth)
	fmt.Fprintf(b, "- **Change last 3 months**: %.1f%%\n", s.PriceChangeLast3Months)
	fmt.Fprintf(b, "- **Volume trend**: %s (%.1f%%)\n\n", s.VolumeTrend, s.VolumeChangePercentage)

	b.WriteString("### Fundamentals\n\n")
	if s.AvgPERatio != nil {
		fmt.Fprintf(b, "- **Average P/E ratio**: %.1f\n", *s.AvgPERatio)
	} else {
		b.WriteString("- **Average P/E ratio**: N/A\n")
	}
	if len(s.SectorsRepresented) > 0 {
		fmt.Fprintf(b, "- **Sectors**: %s\n", strings.Join(s.SectorsRepresented, ", "))
	}
	if s.AvgCorrelationBetweenTickers != nil {
		fmt.Fprintf(b, "- **Average cross-ticker correlation**: %.2f\n", *s.AvgCorrelationBetweenTickers)
	}
	b.WriteString("\n### Per-Ticker Performance\n\n")
	b.WriteString("| Ticker | Total Return | Volatility | Records |\n")
	b.WriteString("|--------|--------------|------------|--------|\n")
	for _, ticker := range s.TickersAnalyzed {
		perf, ok := s.TickerPerformance[ticker]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "| %s | %.1f%% | %.2f%% | %d |\n",
			ticker, perf.TotalReturnPct, perf.VolatilityPct, perf.NumRecords)
	}
	b.WriteString("\n### Data Quality\n\n")
	fmt.Fprintf(b, "- **Records with volume**: %d\n", s.RecordsWithVolume)
	fmt.Fprintf(b, "- **Coverage**: %.1f%%\n\n", s.CoveragePercentage)
}

func phaseRecommendations(phase types.Phase) []string {
	switch phase {
	case types.PhaseTechnologyTrigger:
		return []string{
			"**Monitor publication growth**: track whether velocity continues to increase",
			"**Watch for applied research**: a shift past 40% applied suggests movement toward the Peak",
			"**Identify key researchers**: early contributors often become leaders in the field",
			"**Track patent activity**: filings may indicate commercialization attempts",
			"**Monitor funding**: research grants and venture capital interest are key signals",
		}
	case types.PhasePeakInflatedExpectations:
		return []string{
			"**Prepare for potential decline**: the Peak is often followed by a trough within 1-3 years",
			"**Evaluate practical applications**: distinguish hype from real progress",
			"**Monitor failure rates**: rising problem/challenge coverage signals an approaching Trough",
			"**Track industry adoption**: real products vs announcements and promises",
			"**Be cautious with investment**: the Peak is high-risk for new positions",
		}
	case types.PhaseTroughDisillusionment:
		return []string{
			"**Identify survivors**: focus on groups still producing quality output",
			"**Look for practical solutions**: work addressing real-world challenges",
			"**Watch for stabilization**: velocity bottoming out means the Slope is near",
			"**Evaluate realistic applications**: grand visions give way to achievable uses",
			"**Investment opportunity**: the Trough can be a good entry point for long-term investors",
		}
	case types.PhaseSlopeEnlightenment:
		return []string{
			"**Track applied research growth**: should continue rising toward 80%+",
			"**Monitor commercial products**: second and third generation solutions emerging",
			"**Identify best practices**: standards and protocols being established",
			"**Watch industry partnerships**: academia-industry collaboration increasing",
			"**Consider market entry**: a good time for commercial applications",
		}
	default:
		return []string{
			"**Monitor mainstream adoption**: the technology is becoming standard in its field",
			"**Track incremental improvements**: optimization matters more than breakthroughs",
			"**Watch for disruption**: mature technologies can be displaced by newer ones",
			"**Evaluate market saturation**: stable velocity indicates a mature market",
			"**Focus on efficiency**: cost reduction becomes the key differentiator",
		}
	}
}

func (g *Generator) methodology(b *strings.Builder, analyses []types.Analysis) {
	b.WriteString("---\n\n## Appendix: Methodology\n\n### Data Sources\n\n")
	b.WriteString("- **Papers**: Semantic Scholar API\n")
	b.WriteString("- **Patents**: PatentsView API\n")
	b.WriteString("- **Social**: Reddit search API\n")
	b.WriteString("- **News**: NewsAPI\n")
	b.WriteString("- **Finance**: Yahoo Finance\n\n")

	b.WriteString("### Phase Determination\n\n")
	b.WriteString("- **Method**: Rule-based scoring; each stream is scored against weighted indicators for all five phases\n")
	b.WriteString("- **Confidence**: the winning phase's accumulated indicator weight, capped at 1.0\n")
	b.WriteString("- **Independence**: streams are analyzed separately; no stream's verdict feeds another's\n\n")

	b.WriteString("### Limitations\n\n")
	b.WriteString("- Keyword analysis uses lexical counting, not NLP\n")
	b.WriteString("- Thresholds are configurable and may need calibration for specific domains\n")
	b.WriteString("- Coverage depends on upstream data quality per stream\n")

	var missing []string
	present := make(map[types.Stream]bool)
	for _, a := range analyses {
		present[a.Stream] = true
	}
	for _, stream := range types.AllStreams {
		if !present[stream] {
			missing = append(missing, string(stream))
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(b, "- Streams without sufficient data this run: %s\n", strings.Join(missing, ", "))
	}
}
