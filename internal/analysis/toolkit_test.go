package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techscope/hypecycle/pkg/types"
)

func TestClassifyTrend_InsufficientData(t *testing.T) {
	counts := map[int]int{2020: 5, 2021: 8, 2022: 12, 2023: 14, 2024: 13}
	assert.Equal(t, types.TrendInsufficientData, ClassifyTrend(counts))
}

func TestClassifyTrend_Increasing(t *testing.T) {
	counts := map[int]int{
		2018: 2, 2019: 3, 2020: 4,
		2021: 8, 2022: 10, 2023: 14,
	}
	assert.Equal(t, types.TrendIncreasing, ClassifyTrend(counts))
}

func TestClassifyTrend_Decreasing(t *testing.T) {
	counts := map[int]int{
		2018: 20, 2019: 18, 2020: 22,
		2021: 9, 2022: 8, 2023: 7,
	}
	assert.Equal(t, types.TrendDecreasing, ClassifyTrend(counts))
}

func TestClassifyTrend_PeakReached(t *testing.T) {
	// Ends are within 20% of each other, but the maximum bucket sits in
	// the recent window.
	counts := map[int]int{
		2018: 10, 2019: 10, 2020: 10,
		2021: 10, 2022: 11, 2023: 10,
	}
	assert.Equal(t, types.TrendPeakReached, ClassifyTrend(counts))
}

func TestClassifyTrend_Stable(t *testing.T) {
	counts := map[int]int{
		2017: 10, 2018: 12, 2019: 10,
		2020: 9, 2021: 10, 2022: 11, 2023: 10,
	}
	assert.Equal(t, types.TrendStable, ClassifyTrend(counts))
}

func TestClassifyTrend_ThresholdBoundaries(t *testing.T) {
	// Pins the 1.2/0.8 growth bands with exact window-average ratios.
	tests := []struct {
		name   string
		counts map[int]int
		want   types.Trend
	}{
		{
			name: "recent exactly 1.3x early is increasing",
			counts: map[int]int{
				2018: 10, 2019: 10, 2020: 10,
				2021: 13, 2022: 13, 2023: 13,
			},
			want: types.TrendIncreasing,
		},
		{
			name: "recent exactly 0.7x early is decreasing",
			counts: map[int]int{
				2018: 10, 2019: 10, 2020: 10,
				2021: 7, 2022: 7, 2023: 7,
			},
			want: types.TrendDecreasing,
		},
		{
			name: "equal window averages with an early peak are stable",
			counts: map[int]int{
				2018: 10, 2019: 12, 2020: 9,
				2021: 11, 2022: 10, 2023: 10,
			},
			want: types.TrendStable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(tt.counts))
		})
	}
}

func TestClassifyTrend_MonthKeys(t *testing.T) {
	counts := map[string]int{
		"2023-01": 3, "2023-02": 4, "2023-03": 3,
		"2023-04": 9, "2023-05": 11, "2023-06": 12,
	}
	assert.Equal(t, types.TrendIncreasing, ClassifyTrend(counts))
}

func TestPeakBucket_TieResolvesToEarliest(t *testing.T) {
	counts := map[int]int{2019: 5, 2020: 9, 2021: 9, 2022: 4}
	assert.Equal(t, 2020, PeakBucket(counts))
}

func TestHHI(t *testing.T) {
	assert.Equal(t, 0.0, HHI(map[string]int{}))
	assert.InDelta(t, 1.0, HHI(map[string]int{"only": 42}), 1e-9)
	// Two equal holders: 0.5^2 + 0.5^2.
	assert.InDelta(t, 0.5, HHI(map[string]int{"a": 10, "b": 10}), 1e-9)
}

func TestInterpretHHI(t *testing.T) {
	assert.Equal(t, "competitive", InterpretHHI(0.05))
	assert.Equal(t, "moderately_concentrated", InterpretHHI(0.10))
	assert.Equal(t, "moderately_concentrated", InterpretHHI(0.25))
	assert.Equal(t, "concentrated", InterpretHHI(0.26))
}

func TestTopCounts_Deterministic(t *testing.T) {
	counts := map[string]int{"beta": 3, "alpha": 3, "gamma": 7, "delta": 1}
	got := TopCounts(counts, 3)
	want := []types.RankedCount{
		{Name: "gamma", Count: 7},
		{Name: "alpha", Count: 3},
		{Name: "beta", Count: 3},
	}
	assert.Equal(t, want, got)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestStdev(t *testing.T) {
	assert.Equal(t, 0.0, Stdev([]float64{7}))
	assert.InDelta(t, 2.0, Stdev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestPercentile(t *testing.T) {
	xs := []float64{15, 20, 35, 40, 50}
	assert.InDelta(t, 15, Percentile(xs, 0), 1e-9)
	assert.InDelta(t, 50, Percentile(xs, 100), 1e-9)
	assert.InDelta(t, 35, Percentile(xs, 50), 1e-9)
	// Linear interpolation between ranks 3 and 4.
	assert.InDelta(t, 46, Percentile(xs, 90), 1e-9)
	assert.Equal(t, 0.0, Percentile(nil, 90))
}

func TestGrowthPercent(t *testing.T) {
	assert.Equal(t, 0.0, GrowthPercent(0, 50))
	assert.InDelta(t, 100, GrowthPercent(10, 20), 1e-9)
	assert.InDelta(t, -50, GrowthPercent(10, 5), 1e-9)
}
