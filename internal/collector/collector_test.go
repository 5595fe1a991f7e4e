package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techscope/hypecycle/internal/config"
	"github.com/techscope/hypecycle/internal/storage/sqlite"
	"github.com/techscope/hypecycle/pkg/types"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testCollectorsConfig() config.CollectorsConfig {
	return config.CollectorsConfig{
		NewsAPIKey:        "test-key",
		RedditUserAgent:   "hypecycle-test/1.0",
		RequestsPerSecond: 1000,
		RequestBurst:      100,
		MaxPagesPerQuery:  5,
	}
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestTechnology(t *testing.T, store *sqlite.Store) *types.Technology {
	t.Helper()
	tech := &types.Technology{
		Name:          "quantum computing",
		Keywords:      []string{"quantum computing", "quantum computer"},
		ExcludedTerms: []string{"quantum mechanics course"},
		Tickers:       []string{"NVDA"},
	}
	require.NoError(t, store.CreateTechnology(context.Background(), tech))
	return tech
}

func TestPaperCollector_BuildQuery(t *testing.T) {
	c := &PaperCollector{}
	tech := &types.Technology{
		Keywords:      []string{"quantum computing", "qubit"},
		ExcludedTerms: []string{"astrology"},
	}
	got := c.buildQuery(tech)
	assert.Equal(t, `("quantum computing" | "qubit") -"astrology"`, got)
}

func TestPaperCollector_PaginatesAndSaves(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/paper/search/bulk", r.URL.Path)
		requests++
		if r.URL.Query().Get("token") == "" {
			fmt.Fprint(w, `{"total": 3, "token": "next-page", "data": [
				{"paperId": "p1", "title": "First", "year": 2021, "citationCount": 5,
				 "authors": [{"name": "Alice"}], "openAccessPdf": {"url": "https://example.org/p1.pdf"}},
				{"paperId": "p2", "title": "Second", "year": 2022}
			]}`)
			return
		}
		require.Equal(t, "next-page", r.URL.Query().Get("token"))
		fmt.Fprint(w, `{"total": 3, "data": [{"paperId": "p3", "title": "Third", "year": 2023}]}`)
	}))
	defer server.Close()

	store := newTestStore(t)
	tech := newTestTechnology(t, store)
	client := NewClient(testCollectorsConfig(), quietLogger())
	collector := NewPaperCollector(client, store, testCollectorsConfig(), quietLogger(), WithBaseURL(server.URL))

	stats, err := collector.Collect(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	assert.Equal(t, 3, stats.TotalFound)
	assert.Equal(t, 3, stats.Saved)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, types.StreamPaper, stats.Stream)

	papers, err := store.ListPapers(context.Background(), tech.ID)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "First", papers[0].Title)
	assert.Equal(t, []string{"Alice"}, papers[0].Authors)
	assert.Equal(t, "https://example.org/p1.pdf", papers[0].OpenAccessPDF)
	require.NotNil(t, papers[0].CitationCount)
	assert.Equal(t, 5, *papers[0].CitationCount)
}

func TestRedditCollector_MapsPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "hypecycle-test/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"data": {"after": null, "dist": 2, "children": [
			{"data": {"id": "abc", "title": "Big if true", "selftext": "body", "score": 42,
			 "num_comments": 7, "author": "alice", "subreddit": "technology",
			 "created_utc": 1718000000.0, "is_self": true}},
			{"data": {"id": "def", "title": "Link post", "url": "https://example.org",
			 "created_utc": 1718100000.0, "is_self": false}}
		]}}`)
	}))
	defer server.Close()

	store := newTestStore(t)
	tech := newTestTechnology(t, store)
	client := NewClient(testCollectorsConfig(), quietLogger())
	collector := NewRedditCollector(client, store, testCollectorsConfig(), quietLogger(), WithBaseURL(server.URL))

	stats, err := collector.Collect(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Saved)
	assert.Equal(t, 1, stats.Pages)

	posts, err := store.ListPosts(context.Background(), tech.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "self", posts[0].PostType)
	assert.Equal(t, int64(1718000000), posts[0].CreatedUTC)
	require.NotNil(t, posts[0].Score)
	assert.Equal(t, 42, *posts[0].Score)
	assert.Equal(t, "link", posts[1].PostType)
	assert.Nil(t, posts[1].Score)
}

func TestNewsCollector_RequiresAPIKey(t *testing.T) {
	store := newTestStore(t)
	tech := newTestTechnology(t, store)
	cfg := testCollectorsConfig()
	cfg.NewsAPIKey = ""
	client := NewClient(cfg, quietLogger())
	collector := NewNewsCollector(client, store, cfg, quietLogger())

	_, err := collector.Collect(context.Background(), tech)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NewsAPI key required")
}

func TestNewsCollector_SavesWithDerivedIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		fmt.Fprint(w, `{"status": "ok", "totalResults": 1, "articles": [
			{"source": {"id": "techcrunch", "name": "TechCrunch"},
			 "author": "Jane Doe", "title": "Quantum leap",
			 "url": "https://techcrunch.com/quantum", "publishedAt": "2024-06-10T08:00:00Z"}
		]}`)
	}))
	defer server.Close()

	store := newTestStore(t)
	tech := newTestTechnology(t, store)
	client := NewClient(testCollectorsConfig(), quietLogger())
	collector := NewNewsCollector(client, store, testCollectorsConfig(), quietLogger(), WithBaseURL(server.URL))

	stats, err := collector.Collect(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Saved)

	articles, err := store.ListArticles(context.Background(), tech.ID)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, articleID("https://techcrunch.com/quantum"), articles[0].ArticleID)
	assert.Equal(t, "TechCrunch", articles[0].SourceName)
	assert.Equal(t, "techcrunch", articles[0].SourceID)
}

func TestNewsCollector_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "error", "code": "rateLimited", "message": "too many requests"}`)
	}))
	defer server.Close()

	store := newTestStore(t)
	tech := newTestTechnology(t, store)
	client := NewClient(testCollectorsConfig(), quietLogger())
	collector := NewNewsCollector(client, store, testCollectorsConfig(), quietLogger(), WithBaseURL(server.URL))

	_, err := collector.Collect(context.Background(), tech)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rateLimited")
}

func TestFinanceCollector_BarsAndFundamentals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v8/finance/chart/NVDA":
			fmt.Fprint(w, `{"chart": {"result": [{
				"timestamp": [1704153600, 1704240000],
				"indicators": {
					"quote": [{"open": [495.0, 498.5], "high": [500.0, 505.0],
					           "low": [490.0, 495.0], "close": [499.0, 503.0],
					           "volume": [1000000, null]}],
					"adjclose": [{"adjclose": [498.7, 502.8]}]
				}
			}], "error": null}}`)
		case r.URL.Path == "/v10/finance/quoteSummary/NVDA":
			fmt.Fprint(w, `{"quoteSummary": {"result": [{
				"assetProfile": {"sector": "Technology", "industry": "Semiconductors"},
				"price": {"longName": "NVIDIA Corporation", "marketCap": {"raw": 2.5e12}},
				"summaryDetail": {"trailingPE": {"raw": 65.4}}
			}]}}`)
		default:
			// Market indices are not served; the collector must skip them.
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	store := newTestStore(t)
	tech := newTestTechnology(t, store)
	client := NewClient(testCollectorsConfig(), quietLogger())
	collector := NewFinanceCollector(client, store, testCollectorsConfig(), quietLogger(), WithBaseURL(server.URL))

	stats, err := collector.Collect(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Saved)

	bars, err := store.ListPriceBars(context.Background(), tech.ID)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "NVDA", bars[0].Ticker)
	assert.Equal(t, "stock", bars[0].TickerType)
	assert.Equal(t, "2024-01-02", bars[0].Date)
	require.NotNil(t, bars[0].AdjClose)
	assert.InDelta(t, 498.7, *bars[0].AdjClose, 1e-9)
	require.NotNil(t, bars[0].Volume)
	assert.Equal(t, int64(1000000), *bars[0].Volume)
	assert.Nil(t, bars[1].Volume)

	info, err := store.ListStockInfo(context.Background(), tech.ID)
	require.NoError(t, err)
	require.Len(t, info, 1)
	assert.Equal(t, "Technology", info[0].Sector)
	require.NotNil(t, info[0].PERatio)
	assert.InDelta(t, 65.4, *info[0].PERatio, 1e-9)
}

func TestClient_CircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testCollectorsConfig(), quietLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := client.GetJSON(ctx, server.URL, nil, nil, nil)
		require.Error(t, err)
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	}

	err := client.GetJSON(ctx, server.URL, nil, nil, nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestTickerType(t *testing.T) {
	assert.Equal(t, "index", tickerType("^GSPC"))
	assert.Equal(t, "stock", tickerType("NVDA"))
}

func TestArticleID_Stable(t *testing.T) {
	a := articleID("https://example.org/story")
	b := articleID("https://example.org/story")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, articleID("https://example.org/other"))
}

func TestPaperCollector_StopsAtPageCap(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page := requests
		fmt.Fprintf(w, `{"total": 100, "token": "t%d", "data": [{"paperId": "p%d", "title": "Paper"}]}`, page, page)
	}))
	defer server.Close()

	store := newTestStore(t)
	tech := newTestTechnology(t, store)
	cfg := testCollectorsConfig()
	cfg.MaxPagesPerQuery = 3
	client := NewClient(cfg, quietLogger())
	collector := NewPaperCollector(client, store, cfg, quietLogger(), WithBaseURL(server.URL))

	stats, err := collector.Collect(context.Background(), tech)
	require.NoError(t, err)
	assert.Equal(t, 3, requests)
	assert.Equal(t, 3, stats.Pages)
}
