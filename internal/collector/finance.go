package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/techscope/hypecycle/internal/config"
	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

const (
	defaultYahooBaseURL  = "https://query1.finance.yahoo.com"
	financeLookbackYears = 10
)

// marketIndices are always collected alongside the technology's tickers so
// correlation against the broad market is possible.
var marketIndices = []string{"^GSPC", "^IXIC"}

// FinanceCollector collects daily price history and fundamentals from the
// Yahoo Finance chart and quoteSummary endpoints.
type FinanceCollector struct {
	client *Client
	store  storage.RecordStore
	log    *logrus.Logger
	settings
}

// NewFinanceCollector creates a Yahoo Finance collector.
func NewFinanceCollector(client *Client, store storage.RecordStore, cfg config.CollectorsConfig, log *logrus.Logger, opts ...Option) *FinanceCollector {
	_ = cfg // Yahoo needs no API key; rate limiting comes from the shared client.
	return &FinanceCollector{
		client:   client,
		store:    store,
		log:      log,
		settings: applyOptions(defaultYahooBaseURL, opts),
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			Price *struct {
				LongName  string `json:"longName"`
				MarketCap *struct {
					Raw float64 `json:"raw"`
				} `json:"marketCap"`
			} `json:"price"`
			SummaryDetail *struct {
				TrailingPE *struct {
					Raw float64 `json:"raw"`
				} `json:"trailingPE"`
			} `json:"summaryDetail"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

func tickerType(ticker string) string {
	if strings.HasPrefix(ticker, "^") {
		return "index"
	}
	return "stock"
}

// Collect fetches ten years of daily bars for the technology's tickers plus
// the market indices, and fundamentals for the stock tickers. A ticker that
// fails is skipped so one delisting never sinks the whole run.
func (c *FinanceCollector) Collect(ctx context.Context, tech *types.Technology) (*Stats, error) {
	if tech == nil {
		return nil, fmt.Errorf("collector: technology required")
	}

	seen := make(map[string]bool)
	var tickers []string
	for _, t := range append(append([]string{}, tech.Tickers...), marketIndices...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}

	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"tickers":    tickers,
	}).Info("starting finance collection")

	stats := &Stats{TechnologyID: tech.ID, Stream: types.StreamFinance}
	end := c.now()
	start := end.AddDate(-financeLookbackYears, 0, 0)

	for _, ticker := range tickers {
		bars, err := c.fetchBars(ctx, ticker, start, end)
		if err != nil {
			c.log.WithError(err).WithField("ticker", ticker).Warn("skipping ticker")
			continue
		}
		if err := c.store.SavePriceBars(ctx, tech.ID, bars); err != nil {
			return stats, fmt.Errorf("collector: failed to save price bars: %w", err)
		}
		stats.Fetched += len(bars)
		stats.Saved += len(bars)
		stats.Pages++

		if tickerType(ticker) == "stock" {
			info, err := c.fetchInfo(ctx, ticker)
			if err != nil {
				c.log.WithError(err).WithField("ticker", ticker).Warn("no fundamentals available")
				continue
			}
			if err := c.store.SaveStockInfo(ctx, tech.ID, []types.StockInfo{*info}); err != nil {
				return stats, fmt.Errorf("collector: failed to save stock info: %w", err)
			}
		}
	}

	c.log.WithFields(logrus.Fields{
		"technology": tech.Name,
		"bars":       stats.Saved,
	}).Info("finance collection completed")
	return stats, nil
}

func (c *FinanceCollector) fetchBars(ctx context.Context, ticker string, start, end time.Time) ([]types.PriceBar, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "div,split")

	var resp yahooChartResponse
	endpoint := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker)
	if err := c.client.GetJSON(ctx, endpoint, params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", ticker)
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	kind := tickerType(ticker)
	bars := make([]types.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar := types.PriceBar{
			Ticker:     ticker,
			TickerType: kind,
			Date:       time.Unix(ts, 0).UTC().Format("2006-01-02"),
		}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Close) {
			bar.Close = quote.Close[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		if i < len(adjClose) {
			bar.AdjClose = adjClose[i]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func (c *FinanceCollector) fetchInfo(ctx context.Context, ticker string) (*types.StockInfo, error) {
	params := url.Values{}
	params.Set("modules", "assetProfile,summaryDetail,price")

	var resp yahooQuoteSummaryResponse
	endpoint := c.baseURL + "/v10/finance/quoteSummary/" + url.PathEscape(ticker)
	if err := c.client.GetJSON(ctx, endpoint, params, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no fundamentals for %s", ticker)
	}

	result := resp.QuoteSummary.Result[0]
	info := &types.StockInfo{Ticker: ticker}
	if result.AssetProfile != nil {
		info.Sector = result.AssetProfile.Sector
		info.Industry = result.AssetProfile.Industry
	}
	if result.Price != nil {
		info.Name = result.Price.LongName
		if result.Price.MarketCap != nil {
			marketCap := result.Price.MarketCap.Raw
			info.MarketCap = &marketCap
		}
	}
	if result.SummaryDetail != nil && result.SummaryDetail.TrailingPE != nil {
		pe := result.SummaryDetail.TrailingPE.Raw
		info.PERatio = &pe
	}
	return info, nil
}
