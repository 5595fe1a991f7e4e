package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techscope/hypecycle/pkg/types"
)

func floatp(v float64) *float64 { return &v }
func int64p(v int64) *int64     { return &v }

// fixtureBars builds 30 daily bars for two perfectly correlated tickers:
// AMD closes are exactly twice NVDA's, so their daily returns match.
func fixtureBars() []types.PriceBar {
	var bars []types.PriceBar
	for i := 0; i < 30; i++ {
		date := fmt.Sprintf("2024-01-%02d", i+2)
		volume := int64(1000)
		if i >= 15 {
			volume = 2000
		}
		bars = append(bars,
			types.PriceBar{Ticker: "NVDA", Date: date, Close: floatp(100 + float64(i)), Volume: int64p(volume)},
			types.PriceBar{Ticker: "AMD", Date: date, Close: floatp(200 + 2*float64(i)), Volume: int64p(volume)},
		)
	}
	return bars
}

func TestFinanceExtractor_Empty(t *testing.T) {
	e := NewFinanceExtractor(quietLogger())
	_, err := e.Extract(nil, nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestFinanceExtractor_InsufficientData(t *testing.T) {
	e := NewFinanceExtractor(quietLogger())
	_, err := e.Extract(fixtureBars()[:10], nil)

	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, types.StreamFinance, ide.Stream)
	assert.Equal(t, 10, ide.Found)
	assert.Equal(t, 20, ide.Required)
}

func TestFinanceExtractor_Extract(t *testing.T) {
	info := []types.StockInfo{
		{Ticker: "NVDA", Sector: "Technology", Industry: "Semiconductors", PERatio: floatp(60)},
		{Ticker: "AMD", Sector: "Technology", Industry: "Semiconductors", PERatio: floatp(40)},
	}

	e := NewFinanceExtractor(quietLogger())
	snap, err := e.Extract(fixtureBars(), info)
	require.NoError(t, err)

	// Overview.
	assert.Equal(t, []string{"AMD", "NVDA"}, snap.TickersAnalyzed)
	assert.Equal(t, 60, snap.TotalPriceRecords)
	assert.Equal(t, "2024-01-02", snap.DateRangeStart)
	assert.Equal(t, "2024-01-31", snap.DateRangeEnd)

	// Returns: both tickers rise 29% over the window with no pullback.
	assert.InDelta(t, 29.0, snap.TotalReturn, 1e-9)
	assert.InDelta(t, 0.0, snap.MaxDrawdown, 1e-9)
	assert.Greater(t, snap.AvgDailyReturn, 0.0)
	assert.Greater(t, snap.Volatility, 0.0)
	assert.Greater(t, snap.SharpeRatio, 0.0)

	// Price trend: the 3-month window falls back to the full series.
	assert.Equal(t, "bullish", snap.PriceTrend)
	assert.InDelta(t, 29.0, snap.PriceChangeLast3Months, 1e-9)
	assert.InDelta(t, (129.0-109.0)/109.0*100, snap.PriceChangeLastMonth, 1e-9)

	// Volume doubles between the halves.
	assert.InDelta(t, 1500.0, snap.AvgDailyVolume, 1e-9)
	assert.Equal(t, types.TrendIncreasing, snap.VolumeTrend)
	assert.InDelta(t, 100.0, snap.VolumeChangePercentage, 1e-9)

	// Per-ticker breakdown.
	require.Contains(t, snap.TickerPerformance, "NVDA")
	nvda := snap.TickerPerformance["NVDA"]
	assert.InDelta(t, 29.0, nvda.TotalReturnPct, 1e-9)
	assert.Equal(t, 30, nvda.NumRecords)
	require.NotNil(t, nvda.LatestPrice)
	assert.InDelta(t, 129.0, *nvda.LatestPrice, 1e-9)

	// Fundamentals.
	require.NotNil(t, snap.AvgPERatio)
	assert.InDelta(t, 50.0, *snap.AvgPERatio, 1e-9)
	assert.Nil(t, snap.AvgMarketCap)
	assert.Equal(t, []string{"Technology"}, snap.SectorsRepresented)
	assert.Equal(t, []string{"Semiconductors"}, snap.IndustriesRepresented)

	// Identical return series correlate perfectly.
	require.NotNil(t, snap.AvgCorrelationBetweenTickers)
	assert.InDelta(t, 1.0, *snap.AvgCorrelationBetweenTickers, 1e-9)

	// Quality: every bar carries volume.
	assert.Equal(t, 60, snap.RecordsWithVolume)
	assert.InDelta(t, 100.0, snap.CoveragePercentage, 1e-9)
}

func TestFinanceExtractor_Bearish(t *testing.T) {
	var bars []types.PriceBar
	for i := 0; i < 25; i++ {
		bars = append(bars, types.PriceBar{
			Ticker: "PLTR",
			Date:   fmt.Sprintf("2024-02-%02d", i+1),
			Close:  floatp(200 - 4*float64(i)),
		})
	}

	e := NewFinanceExtractor(quietLogger())
	snap, err := e.Extract(bars, nil)
	require.NoError(t, err)

	assert.Equal(t, "bearish", snap.PriceTrend)
	assert.InDelta(t, -48.0, snap.TotalReturn, 1e-9)
	assert.InDelta(t, 48.0, snap.MaxDrawdown, 1e-9)
	// A single ticker has no cross-correlation, and no fundamentals arrived.
	assert.Nil(t, snap.AvgCorrelationBetweenTickers)
	assert.Nil(t, snap.AvgPERatio)
	assert.Empty(t, snap.SectorsRepresented)
	assert.Equal(t, types.TrendInsufficientData, snap.VolumeTrend)
}

func TestFinanceExtractor_AdjCloseWins(t *testing.T) {
	bar := types.PriceBar{Close: floatp(100), AdjClose: floatp(95)}
	assert.InDelta(t, 95.0, closePrice(bar), 1e-9)

	bar.AdjClose = floatp(0)
	assert.InDelta(t, 100.0, closePrice(bar), 1e-9)
}

func TestPearson_ZeroVariance(t *testing.T) {
	_, ok := pearson([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.False(t, ok)

	corr, ok := pearson([]float64{1, 2, 3}, []float64{6, 4, 2})
	require.True(t, ok)
	assert.InDelta(t, -1.0, corr, 1e-9)
}
