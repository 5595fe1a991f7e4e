package analysis

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// Price trend cutoffs and windows, in percent and trading days.
const (
	bullishChangePct    = 10.0
	volumeShiftPct      = 20.0
	tradingDaysPerMonth = 21
	tradingDaysPerQtr   = 63
	tradingDaysPerYear  = 252
	minCorrelationDays  = 20
)

// FinanceExtractor turns a technology's market data into a metrics
// snapshot.
type FinanceExtractor struct {
	settings
}

// NewFinanceExtractor builds an extractor with the given options.
func NewFinanceExtractor(opts ...Option) *FinanceExtractor {
	return &FinanceExtractor{settings: newSettings(opts)}
}

// Extract computes the finance snapshot from daily price bars, optionally
// enriched with fundamentals. It needs at least MinFinanceRecords bars
// across all tickers; below that it returns InsufficientDataError.
func (e *FinanceExtractor) Extract(bars []types.PriceBar, info []types.StockInfo) (*types.FinanceSnapshot, error) {
	if len(bars) == 0 {
		return nil, ErrNoRecords
	}
	if len(bars) < MinFinanceRecords {
		return nil, &InsufficientDataError{
			Stream: types.StreamFinance, Found: len(bars), Required: MinFinanceRecords,
		}
	}
	e.log.WithFields(logrus.Fields{
		"stream":      types.StreamFinance,
		"records":     len(bars),
		"info_records": len(info),
	}).Info("extracting finance metrics")

	byTicker := groupByTicker(bars)

	snap := &types.FinanceSnapshot{TotalPriceRecords: len(bars)}
	e.overviewMetrics(bars, byTicker, snap)
	e.priceMetrics(byTicker, snap)
	e.volumeMetrics(byTicker, snap)
	e.tickerBreakdown(byTicker, snap)
	e.fundamentalMetrics(info, snap)
	e.correlationMetrics(byTicker, snap)
	e.qualityMetrics(bars, snap)
	return snap, nil
}

// groupByTicker splits bars per ticker, each series sorted by date.
func groupByTicker(bars []types.PriceBar) map[string][]types.PriceBar {
	byTicker := make(map[string][]types.PriceBar)
	for _, b := range bars {
		byTicker[b.Ticker] = append(byTicker[b.Ticker], b)
	}
	for _, series := range byTicker {
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Date < series[j].Date
		})
	}
	return byTicker
}

// closePrice prefers the adjusted close over the raw close. Zero means
// no usable price for the bar.
func closePrice(b types.PriceBar) float64 {
	if b.AdjClose != nil && *b.AdjClose != 0 {
		return *b.AdjClose
	}
	if b.Close != nil {
		return *b.Close
	}
	return 0.0
}

// closeSeries returns the usable close prices of a sorted bar series.
func closeSeries(series []types.PriceBar) []float64 {
	closes := make([]float64, 0, len(series))
	for _, b := range series {
		if p := closePrice(b); p > 0 {
			closes = append(closes, p)
		}
	}
	return closes
}

// dailyReturns converts a close series into day-over-day returns.
func dailyReturns(closes []float64) []float64 {
	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] > 0 {
			returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
		}
	}
	return returns
}

func (e *FinanceExtractor) overviewMetrics(bars []types.PriceBar, byTicker map[string][]types.PriceBar, snap *types.FinanceSnapshot) {
	snap.TickersAnalyzed = SortedKeys(byTicker)
	snap.DateRangeStart = "unknown"
	snap.DateRangeEnd = "unknown"
	for _, b := range bars {
		if b.Date == "" {
			continue
		}
		if snap.DateRangeStart == "unknown" || b.Date < snap.DateRangeStart {
			snap.DateRangeStart = b.Date
		}
		if snap.DateRangeEnd == "unknown" || b.Date > snap.DateRangeEnd {
			snap.DateRangeEnd = b.Date
		}
	}
}

func (e *FinanceExtractor) priceMetrics(byTicker map[string][]types.PriceBar, snap *types.FinanceSnapshot) {
	var allReturns []float64
	var totalReturns []float64
	var drawdowns []float64

	for _, ticker := range SortedKeys(byTicker) {
		closes := closeSeries(byTicker[ticker])
		if len(closes) < 2 {
			continue
		}
		allReturns = append(allReturns, dailyReturns(closes)...)
		if closes[0] > 0 {
			totalReturns = append(totalReturns, (closes[len(closes)-1]-closes[0])/closes[0])
		}
		drawdowns = append(drawdowns, maxDrawdown(closes))
	}

	if len(allReturns) > 0 {
		snap.AvgDailyReturn = Mean(allReturns) * 100
		snap.Volatility = Stdev(allReturns) * 100
		if snap.Volatility > 0 {
			// Annualized with a 0% risk-free rate.
			snap.SharpeRatio = (snap.AvgDailyReturn * tradingDaysPerYear) /
				(snap.Volatility * math.Sqrt(tradingDaysPerYear))
		}
	}
	if len(totalReturns) > 0 {
		snap.TotalReturn = Mean(totalReturns) * 100
	}
	if len(drawdowns) > 0 {
		snap.MaxDrawdown = Mean(drawdowns) * 100
	}

	e.priceTrend(byTicker, snap)
}

// maxDrawdown returns the deepest peak-to-trough decline of a close
// series as a fraction of the peak.
func maxDrawdown(closes []float64) float64 {
	peak := closes[0]
	maxDD := 0.0
	for _, p := range closes {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			maxDD = math.Max(maxDD, (peak-p)/peak)
		}
	}
	return maxDD
}

func (e *FinanceExtractor) priceTrend(byTicker map[string][]types.PriceBar, snap *types.FinanceSnapshot) {
	var changes1m, changes3m []float64

	for _, ticker := range SortedKeys(byTicker) {
		series := byTicker[ticker]
		if len(series) < 5 {
			continue
		}
		closes := closeSeries(series)
		if len(closes) == 0 {
			continue
		}
		last := closes[len(closes)-1]

		monthAgo := closes[max(0, len(closes)-tradingDaysPerMonth)]
		if monthAgo > 0 {
			changes1m = append(changes1m, (last-monthAgo)/monthAgo*100)
		}
		qtrAgo := closes[max(0, len(closes)-tradingDaysPerQtr)]
		if qtrAgo > 0 {
			changes3m = append(changes3m, (last-qtrAgo)/qtrAgo*100)
		}
	}

	snap.PriceChangeLastMonth = Mean(changes1m)
	snap.PriceChangeLast3Months = Mean(changes3m)

	switch {
	case snap.PriceChangeLast3Months > bullishChangePct:
		snap.PriceTrend = "bullish"
	case snap.PriceChangeLast3Months < -bullishChangePct:
		snap.PriceTrend = "bearish"
	default:
		snap.PriceTrend = "sideways"
	}
}

func (e *FinanceExtractor) volumeMetrics(byTicker map[string][]types.PriceBar, snap *types.FinanceSnapshot) {
	var all, early, recent []float64

	for _, ticker := range SortedKeys(byTicker) {
		volumes := []float64{}
		for _, b := range byTicker[ticker] {
			if b.Volume != nil && *b.Volume > 0 {
				volumes = append(volumes, float64(*b.Volume))
			}
		}
		if len(volumes) == 0 {
			continue
		}
		all = append(all, volumes...)
		mid := len(volumes) / 2
		early = append(early, volumes[:mid]...)
		recent = append(recent, volumes[mid:]...)
	}

	snap.AvgDailyVolume = Mean(all)

	if len(early) == 0 || len(recent) == 0 {
		snap.VolumeTrend = types.TrendInsufficientData
		return
	}
	earlyAvg := Mean(early)
	if earlyAvg > 0 {
		snap.VolumeChangePercentage = (Mean(recent) - earlyAvg) / earlyAvg * 100
	}
	switch {
	case snap.VolumeChangePercentage > volumeShiftPct:
		snap.VolumeTrend = types.TrendIncreasing
	case snap.VolumeChangePercentage < -volumeShiftPct:
		snap.VolumeTrend = types.TrendDecreasing
	default:
		snap.VolumeTrend = types.TrendStable
	}
}

func (e *FinanceExtractor) tickerBreakdown(byTicker map[string][]types.PriceBar, snap *types.FinanceSnapshot) {
	perf := make(map[string]types.TickerPerformance, len(byTicker))

	for ticker, series := range byTicker {
		closes := closeSeries(series)
		if len(closes) < 2 {
			continue
		}
		returns := dailyReturns(closes)
		if len(returns) == 0 {
			continue
		}
		totalReturn := 0.0
		if closes[0] > 0 {
			totalReturn = (closes[len(closes)-1] - closes[0]) / closes[0] * 100
		}
		latest := closes[len(closes)-1]
		perf[ticker] = types.TickerPerformance{
			TotalReturnPct:    round2(totalReturn),
			AvgDailyReturnPct: round4(Mean(returns) * 100),
			VolatilityPct:     round2(Stdev(returns) * 100),
			NumRecords:        len(series),
			LatestPrice:       &latest,
		}
	}
	snap.TickerPerformance = perf
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }

func (e *FinanceExtractor) fundamentalMetrics(info []types.StockInfo, snap *types.FinanceSnapshot) {
	snap.SectorsRepresented = []string{}
	snap.IndustriesRepresented = []string{}
	if len(info) == 0 {
		return
	}

	var peRatios, marketCaps []float64
	sectors := map[string]bool{}
	industries := map[string]bool{}
	for _, s := range info {
		if s.PERatio != nil && *s.PERatio > 0 {
			peRatios = append(peRatios, *s.PERatio)
		}
		if s.MarketCap != nil && *s.MarketCap > 0 {
			marketCaps = append(marketCaps, *s.MarketCap)
		}
		if s.Sector != "" {
			sectors[s.Sector] = true
		}
		if s.Industry != "" {
			industries[s.Industry] = true
		}
	}

	if len(peRatios) > 0 {
		avg := Mean(peRatios)
		snap.AvgPERatio = &avg
	}
	if len(marketCaps) > 0 {
		avg := Mean(marketCaps)
		snap.AvgMarketCap = &avg
	}
	snap.SectorsRepresented = SortedKeys(sectors)
	snap.IndustriesRepresented = SortedKeys(industries)
}

func (e *FinanceExtractor) correlationMetrics(byTicker map[string][]types.PriceBar, snap *types.FinanceSnapshot) {
	if len(byTicker) < 2 {
		return
	}

	// Per-ticker daily returns keyed by date so series can be aligned.
	returnsByTicker := make(map[string]map[string]float64)
	for ticker, series := range byTicker {
		returns := make(map[string]float64)
		for i := 1; i < len(series); i++ {
			prev := closePrice(series[i-1])
			curr := closePrice(series[i])
			if prev > 0 && curr > 0 {
				returns[series[i].Date] = (curr - prev) / prev
			}
		}
		if len(returns) > 0 {
			returnsByTicker[ticker] = returns
		}
	}

	tickers := SortedKeys(returnsByTicker)
	var correlations []float64
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			a, b := returnsByTicker[tickers[i]], returnsByTicker[tickers[j]]
			var xs, ys []float64
			for date, ra := range a {
				if rb, ok := b[date]; ok {
					xs = append(xs, ra)
					ys = append(ys, rb)
				}
			}
			if len(xs) < minCorrelationDays {
				continue
			}
			if corr, ok := pearson(xs, ys); ok {
				correlations = append(correlations, corr)
			}
		}
	}
	if len(correlations) > 0 {
		avg := Mean(correlations)
		snap.AvgCorrelationBetweenTickers = &avg
	}
}

// pearson computes the correlation coefficient of two equal-length
// series. A series with zero variance has no defined correlation.
func pearson(xs, ys []float64) (float64, bool) {
	meanX, meanY := Mean(xs), Mean(ys)
	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0.0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

func (e *FinanceExtractor) qualityMetrics(bars []types.PriceBar, snap *types.FinanceSnapshot) {
	for _, b := range bars {
		if b.Volume != nil && *b.Volume > 0 {
			snap.RecordsWithVolume++
		}
	}
	snap.CoveragePercentage = float64(snap.RecordsWithVolume) / float64(len(bars)) * 100
}
