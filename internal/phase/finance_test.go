package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techscope/hypecycle/pkg/types"
)

func TestFinanceEngine_Trough(t *testing.T) {
	pe := 15.0
	snap := &types.FinanceSnapshot{
		TickersAnalyzed:        []string{"AAA", "BBB"},
		TotalPriceRecords:      500,
		TotalReturn:            -42,
		Volatility:             2.0,
		MaxDrawdown:            55,
		SharpeRatio:            -0.8,
		PriceTrend:             "bearish",
		PriceChangeLast3Months: -35,
		VolumeTrend:            types.TrendDecreasing,
		AvgPERatio:             &pe,
		SectorsRepresented:     []string{"Energy", "Technology"},
		TickerPerformance: map[string]types.TickerPerformance{
			"AAA": {TotalReturnPct: -40.5, VolatilityPct: 2.31},
		},
	}

	engine := NewFinanceEngine(DefaultThresholds().Finance, testLogger())
	v := engine.DeterminePhase(snap)

	assert.Equal(t, types.PhaseTroughDisillusionment, v.Phase)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
	assert.Contains(t, v.Rationale, "Finance-based Phase: Trough of Disillusionment")
	assert.Contains(t, v.Rationale, "Max drawdown: 55.0%")
	assert.Contains(t, v.Rationale, "Ticker performance:")
	assert.Contains(t, v.Rationale, "  - AAA: -40.5% return, 2.31% volatility")
}

func TestFinanceEngine_PeakFrenzy(t *testing.T) {
	pe := 80.0
	snap := &types.FinanceSnapshot{
		TickersAnalyzed:        []string{"AAA", "BBB", "CCC", "DDD"},
		TotalReturn:            130,
		Volatility:             4.5,
		MaxDrawdown:            12,
		SharpeRatio:            2.1,
		PriceTrend:             "bullish",
		PriceChangeLast3Months: 48,
		VolumeTrend:            types.TrendIncreasing,
		AvgPERatio:             &pe,
	}

	engine := NewFinanceEngine(DefaultThresholds().Finance, testLogger())
	v := engine.DeterminePhase(snap)

	// Every peak indicator fires: bullish trend, strong gains, surging
	// volume, speculative volatility, high return, stretched valuations.
	assert.Equal(t, types.PhasePeakInflatedExpectations, v.Phase)
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
	// High volatility also nudges the trigger phase, but not enough.
	assert.InDelta(t, 0.25, v.Scores[types.PhaseTechnologyTrigger], 1e-9)
}

func TestFinanceEngine_MissingPERendersNA(t *testing.T) {
	snap := &types.FinanceSnapshot{
		TickersAnalyzed: []string{"AAA"},
		Volatility:      5.0,
		PriceTrend:      "sideways",
		VolumeTrend:     types.TrendDecreasing,
	}

	engine := NewFinanceEngine(DefaultThresholds().Finance, testLogger())
	v := engine.DeterminePhase(snap)

	assert.Equal(t, types.PhaseTechnologyTrigger, v.Phase)
	assert.Contains(t, v.Rationale, "- Avg P/E ratio: N/A")
}
