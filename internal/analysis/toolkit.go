package analysis

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/techscope/hypecycle/pkg/types"
)

// trendWindow is the number of buckets compared at each end of a time
// series when classifying its trend.
const trendWindow = 3

// Trend growth/decline cutoffs. The recent-window average must move by
// more than 20% relative to the early window before a series counts as
// increasing or decreasing.
const (
	trendGrowthFactor  = 1.2
	trendDeclineFactor = 0.8
)

// ClassifyTrend buckets a counted time series into one of the five trend
// labels. Keys are bucket identifiers in their natural order: publication
// years for papers and patents, "YYYY-MM" strings for posts and articles.
//
// Fewer than 2*trendWindow buckets is not enough signal to compare the
// ends of the series, so the result is TrendInsufficientData.
func ClassifyTrend[K cmp.Ordered](counts map[K]int) types.Trend {
	if len(counts) < 2*trendWindow {
		return types.TrendInsufficientData
	}

	keys := SortedKeys(counts)
	early := keys[:trendWindow]
	recent := keys[len(keys)-trendWindow:]

	var earlySum, recentSum int
	for _, k := range early {
		earlySum += counts[k]
	}
	for _, k := range recent {
		recentSum += counts[k]
	}
	earlyAvg := float64(earlySum) / float64(trendWindow)
	recentAvg := float64(recentSum) / float64(trendWindow)

	switch {
	case recentAvg > earlyAvg*trendGrowthFactor:
		return types.TrendIncreasing
	case recentAvg < earlyAvg*trendDeclineFactor:
		return types.TrendDecreasing
	}

	peak := PeakBucket(counts)
	if slices.Contains(recent, peak) {
		return types.TrendPeakReached
	}
	return types.TrendStable
}

// PeakBucket returns the key of the bucket with the highest count. Ties
// resolve to the earliest bucket so results are stable across runs.
func PeakBucket[K cmp.Ordered](counts map[K]int) K {
	var peak K
	best := -1
	for _, k := range SortedKeys(counts) {
		if counts[k] > best {
			peak = k
			best = counts[k]
		}
	}
	return peak
}

// SortedKeys returns the map's keys in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// HHI computes the Herfindahl-Hirschman index of a share distribution:
// the sum of squared shares. 0 means perfectly dispersed, 1 means a
// single entity holds everything. An empty distribution scores 0.
func HHI[K comparable](counts map[K]int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0.0
	}
	var hhi float64
	for _, c := range counts {
		share := float64(c) / float64(total)
		hhi += share * share
	}
	return hhi
}

// HHI interpretation bands.
const (
	hhiModerateFloor     = 0.10
	hhiConcentratedFloor = 0.25
)

// InterpretHHI maps an HHI value to its qualitative band.
func InterpretHHI(hhi float64) string {
	switch {
	case hhi > hhiConcentratedFloor:
		return "concentrated"
	case hhi >= hhiModerateFloor:
		return "moderately_concentrated"
	default:
		return "competitive"
	}
}

// TopCounts returns the n highest-count entries as ranked pairs. Ordering
// is count descending, then name ascending, so output is deterministic.
func TopCounts(counts map[string]int, n int) []types.RankedCount {
	ranked := make([]types.RankedCount, 0, len(counts))
	for name, c := range counts {
		ranked = append(ranked, types.RankedCount{Name: name, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Median returns the middle value of the distribution, averaging the two
// central values for even lengths. Returns 0 for an empty slice.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Stdev returns the population standard deviation, or 0 for fewer than
// two samples.
func Stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0.0
	}
	mean := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// Percentile returns the p-th percentile (0..100) using linear
// interpolation between closest ranks. Returns 0 for an empty slice.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// GrowthPercent returns the percentage change from early to recent.
// A zero early value yields 0 rather than a division blowup.
func GrowthPercent(early, recent float64) float64 {
	if early == 0 {
		return 0.0
	}
	return (recent - early) / early * 100
}
