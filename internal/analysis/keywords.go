package analysis

import (
	"regexp"
	"strings"

	"github.com/techscope/hypecycle/pkg/types"
)

// tokenPattern matches meaningful lowercase terms: four letters or more.
// Shorter tokens are almost entirely function words and noise.
var tokenPattern = regexp.MustCompile(`\b[a-z]{4,}\b`)

// baseStopwords are function words excluded from topic rankings for every
// stream. Streams layer their own jargon on top (see stopwordsFor).
var baseStopwords = newStopSet(
	"this", "that", "with", "from", "were", "have", "been", "their",
	"which", "these", "more", "other", "such", "into", "only", "also",
	"than", "some", "time", "very", "when", "them", "they", "there",
	"where", "what", "about", "after", "before", "would", "could",
	"should", "being", "between", "through", "during", "using",
)

var socialStopwords = newStopSet(
	"just", "like", "know", "think", "want", "really", "anyone",
	"something", "getting", "going", "looking", "reddit", "post",
)

var newsStopwords = newStopSet(
	"said", "says", "will", "year", "years", "according", "news",
	"report", "reported", "reports", "article", "read",
)

func newStopSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// stopwordsFor returns the merged stopword set for a stream.
func stopwordsFor(stream types.Stream) map[string]bool {
	extra := map[string]bool{}
	switch stream {
	case types.StreamSocial:
		extra = socialStopwords
	case types.StreamNews:
		extra = newsStopwords
	}
	merged := make(map[string]bool, len(baseStopwords)+len(extra))
	for w := range baseStopwords {
		merged[w] = true
	}
	for w := range extra {
		merged[w] = true
	}
	return merged
}

// Tokenize lowercases text and extracts its meaningful terms.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// wordCounts tallies tokens across a set of texts.
func wordCounts(texts []string) map[string]int {
	counts := make(map[string]int)
	for _, t := range texts {
		for _, tok := range Tokenize(t) {
			counts[tok]++
		}
	}
	return counts
}

// TopicStats summarizes the vocabulary of a record stream: the dominant
// terms overall, plus the terms surging or fading between the early and
// recent halves of the corpus.
type TopicStats struct {
	Top       []types.RankedCount
	Emerging  []string
	Declining []string
}

// Limits on ranked keyword output.
const (
	topKeywordPool    = 50
	topKeywordLimit   = 20
	shiftCandidates   = 30
	shiftKeywordLimit = 10
)

// ExtractTopics computes topic statistics for one stream. allTexts feeds
// the overall ranking; earlyTexts and recentTexts are the two halves of
// the corpus in chronological order. A term is emerging when its recent
// count more than doubles its early count and clears minCount; declining
// is the mirror image.
func ExtractTopics(stream types.Stream, allTexts, earlyTexts, recentTexts []string, minCount int) TopicStats {
	stop := stopwordsFor(stream)

	top := make([]types.RankedCount, 0, topKeywordLimit)
	for _, rc := range TopCounts(wordCounts(allTexts), topKeywordPool) {
		if stop[rc.Name] {
			continue
		}
		top = append(top, rc)
		if len(top) == topKeywordLimit {
			break
		}
	}

	earlyCounts := wordCounts(earlyTexts)
	recentCounts := wordCounts(recentTexts)

	return TopicStats{
		Top:       top,
		Emerging:  shiftedTerms(recentCounts, earlyCounts, stop, minCount),
		Declining: shiftedTerms(earlyCounts, recentCounts, stop, minCount),
	}
}

// shiftedTerms scans the top terms of the dominant half and keeps those
// that more than double their count in the other half while clearing
// minCount.
func shiftedTerms(dominant, other map[string]int, stop map[string]bool, minCount int) []string {
	terms := []string{}
	for _, rc := range TopCounts(dominant, shiftCandidates) {
		if stop[rc.Name] {
			continue
		}
		if rc.Count > other[rc.Name]*2 && rc.Count >= minCount {
			terms = append(terms, rc.Name)
		}
		if len(terms) == shiftKeywordLimit {
			break
		}
	}
	return terms
}
