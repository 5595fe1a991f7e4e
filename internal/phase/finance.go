package phase

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/pkg/types"
)

// NewFinanceEngine builds the rule engine for the finance stream.
func NewFinanceEngine(t FinanceThresholds, log *logrus.Logger) *Engine[*types.FinanceSnapshot] {
	return NewEngine(types.StreamFinance, financeRules(t), financeRationale(), log)
}

func financeRules(t FinanceThresholds) RuleSet[*types.FinanceSnapshot] {
	return RuleSet[*types.FinanceSnapshot]{
		types.PhaseTechnologyTrigger: {
			{"high_volatility", 0.25, func(m *types.FinanceSnapshot) bool {
				return m.Volatility > t.HighVolatility
			}},
			{"few_tickers", 0.25, func(m *types.FinanceSnapshot) bool {
				return len(m.TickersAnalyzed) <= 3
			}},
			{"volume_declining", 0.20, func(m *types.FinanceSnapshot) bool {
				return m.VolumeTrend == types.TrendDecreasing
			}},
			{"no_earnings_data", 0.15, func(m *types.FinanceSnapshot) bool {
				return m.AvgPERatio == nil
			}},
			{"uncorrelated_tickers", 0.15, func(m *types.FinanceSnapshot) bool {
				return m.AvgCorrelationBetweenTickers != nil && *m.AvgCorrelationBetweenTickers < 0.3
			}},
		},
		types.PhasePeakInflatedExpectations: {
			{"bullish_trend", 0.25, func(m *types.FinanceSnapshot) bool {
				return m.PriceTrend == "bullish"
			}},
			{"strong_recent_gains", 0.20, func(m *types.FinanceSnapshot) bool {
				return m.PriceChangeLast3Months > t.StrongBullish
			}},
			{"volume_surging", 0.20, func(m *types.FinanceSnapshot) bool {
				return m.VolumeTrend == types.TrendIncreasing
			}},
			{"speculative_volatility", 0.15, func(m *types.FinanceSnapshot) bool {
				return m.Volatility > t.HighVolatility
			}},
			{"high_total_return", 0.10, func(m *types.FinanceSnapshot) bool {
				return m.TotalReturn > t.HighReturn
			}},
			{"stretched_valuations", 0.10, func(m *types.FinanceSnapshot) bool {
				return m.AvgPERatio != nil && *m.AvgPERatio > 50
			}},
		},
		types.PhaseTroughDisillusionment: {
			{"bearish_trend", 0.30, func(m *types.FinanceSnapshot) bool {
				return m.PriceTrend == "bearish"
			}},
			{"severe_drawdown", 0.25, func(m *types.FinanceSnapshot) bool {
				return m.MaxDrawdown > t.SevereDrawdown
			}},
			{"steep_recent_losses", 0.20, func(m *types.FinanceSnapshot) bool {
				return m.PriceChangeLast3Months < t.StrongBearish
			}},
			{"volume_declining", 0.15, func(m *types.FinanceSnapshot) bool {
				return m.VolumeTrend == types.TrendDecreasing
			}},
			{"negative_sharpe", 0.10, func(m *types.FinanceSnapshot) bool {
				return m.SharpeRatio < 0
			}},
		},
		types.PhaseSlopeEnlightenment: {
			{"moderate_recovery", 0.25, func(m *types.FinanceSnapshot) bool {
				return m.PriceChangeLast3Months >= t.ModerateReturnLow &&
					m.PriceChangeLast3Months <= t.ModerateReturnHigh
			}},
			{"constructive_trend", 0.20, func(m *types.FinanceSnapshot) bool {
				return m.PriceTrend == "sideways" || m.PriceTrend == "bullish"
			}},
			{"volume_stable", 0.20, func(m *types.FinanceSnapshot) bool {
				return m.VolumeTrend == types.TrendStable
			}},
			{"volatility_easing", 0.15, func(m *types.FinanceSnapshot) bool {
				return m.Volatility < t.HighVolatility
			}},
			{"drawdown_recovered", 0.10, func(m *types.FinanceSnapshot) bool {
				return m.MaxDrawdown >= t.ModerateDrawdown && m.MaxDrawdown < t.SevereDrawdown
			}},
			{"positive_sharpe", 0.10, func(m *types.FinanceSnapshot) bool {
				return m.SharpeRatio > 0 && m.SharpeRatio < 1
			}},
		},
		types.PhasePlateauProductivity: {
			{"sideways_trend", 0.25, func(m *types.FinanceSnapshot) bool {
				return m.PriceTrend == "sideways"
			}},
			{"low_volatility", 0.20, func(m *types.FinanceSnapshot) bool {
				return m.Volatility < t.LowVolatility
			}},
			{"volume_stable", 0.20, func(m *types.FinanceSnapshot) bool {
				return m.VolumeTrend == types.TrendStable
			}},
			{"fair_valuations", 0.15, func(m *types.FinanceSnapshot) bool {
				return m.AvgPERatio != nil && *m.AvgPERatio > 10 && *m.AvgPERatio < 30
			}},
			{"strong_sharpe", 0.10, func(m *types.FinanceSnapshot) bool {
				return m.SharpeRatio >= 1
			}},
			{"diversified_sectors", 0.10, func(m *types.FinanceSnapshot) bool {
				return len(m.SectorsRepresented) > 1
			}},
		},
	}
}

func financeRationale() RationaleText[*types.FinanceSnapshot] {
	return RationaleText[*types.FinanceSnapshot]{
		Header:      "Finance-based Phase",
		Indicators:  "Key Finance indicators:",
		ScoresTitle: "Phase scores (Finance-based):",
		Headline: func(m *types.FinanceSnapshot, p types.Phase) []string {
			peLine := "- Avg P/E ratio: N/A"
			if m.AvgPERatio != nil {
				peLine = fmt.Sprintf("- Avg P/E ratio: %.1f", *m.AvgPERatio)
			}
			switch p {
			case types.PhaseTechnologyTrigger:
				return []string{
					fmt.Sprintf("- Volatility: %.2f%% (high uncertainty)", m.Volatility),
					fmt.Sprintf("- Tickers analyzed: %d (limited presence)", len(m.TickersAnalyzed)),
					fmt.Sprintf("- Volume trend: %s", m.VolumeTrend),
					peLine,
				}
			case types.PhasePeakInflatedExpectations:
				return []string{
					fmt.Sprintf("- Price trend: %s (rapid growth)", m.PriceTrend),
					fmt.Sprintf("- 3-month change: %.1f%%", m.PriceChangeLast3Months),
					fmt.Sprintf("- Volume trend: %s (buying frenzy)", m.VolumeTrend),
					fmt.Sprintf("- Volatility: %.2f%% (speculation)", m.Volatility),
					fmt.Sprintf("- Total return: %.1f%%", m.TotalReturn),
				}
			case types.PhaseTroughDisillusionment:
				return []string{
					fmt.Sprintf("- Price trend: %s (decline)", m.PriceTrend),
					fmt.Sprintf("- Max drawdown: %.1f%%", m.MaxDrawdown),
					fmt.Sprintf("- 3-month change: %.1f%%", m.PriceChangeLast3Months),
					fmt.Sprintf("- Volume trend: %s", m.VolumeTrend),
					fmt.Sprintf("- Sharpe ratio: %.2f", m.SharpeRatio),
				}
			case types.PhaseSlopeEnlightenment:
				return []string{
					fmt.Sprintf("- Price trend: %s (recovery)", m.PriceTrend),
					fmt.Sprintf("- 3-month change: %.1f%%", m.PriceChangeLast3Months),
					fmt.Sprintf("- Volatility: %.2f%% (stabilizing)", m.Volatility),
					fmt.Sprintf("- Volume trend: %s", m.VolumeTrend),
					fmt.Sprintf("- Sharpe ratio: %.2f", m.SharpeRatio),
				}
			default:
				return []string{
					fmt.Sprintf("- Price trend: %s (stable)", m.PriceTrend),
					fmt.Sprintf("- Volatility: %.2f%% (mature)", m.Volatility),
					fmt.Sprintf("- Volume trend: %s", m.VolumeTrend),
					peLine,
					fmt.Sprintf("- Sharpe ratio: %.2f", m.SharpeRatio),
				}
			}
		},
		ExtraTitle: "Ticker performance:",
		Extra: func(m *types.FinanceSnapshot) []string {
			tickers := make([]string, 0, len(m.TickerPerformance))
			for ticker := range m.TickerPerformance {
				tickers = append(tickers, ticker)
			}
			sort.Strings(tickers)
			if len(tickers) > 5 {
				tickers = tickers[:5]
			}
			lines := make([]string, 0, len(tickers))
			for _, ticker := range tickers {
				perf := m.TickerPerformance[ticker]
				lines = append(lines, fmt.Sprintf("  - %s: %.1f%% return, %.2f%% volatility",
					ticker, perf.TotalReturnPct, perf.VolatilityPct))
			}
			return lines
		},
	}
}
