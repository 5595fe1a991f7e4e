package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

// newTestStore creates an in-memory SQLite store for testing. New applies
// the full Schema, so no additional DDL is required in tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err, "failed to create test store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestTechnology(t *testing.T, store *Store, name string) *types.Technology {
	t.Helper()
	tech := &types.Technology{
		Name:        name,
		Description: "test technology",
		Keywords:    []string{name, name + " systems"},
		Tickers:     []string{"NVDA"},
	}
	require.NoError(t, store.CreateTechnology(context.Background(), tech))
	require.NotZero(t, tech.ID)
	return tech
}

func intp(v int) *int { return &v }

func TestTechnologyLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tech := newTestTechnology(t, store, "quantum computing")

	got, err := store.GetTechnology(ctx, tech.ID)
	require.NoError(t, err)
	assert.Equal(t, "quantum computing", got.Name)
	assert.Equal(t, []string{"quantum computing", "quantum computing systems"}, got.Keywords)
	assert.Equal(t, []string{"NVDA"}, got.Tickers)
	assert.Nil(t, got.ExcludedTerms)

	byName, err := store.GetTechnologyByName(ctx, "quantum computing")
	require.NoError(t, err)
	assert.Equal(t, tech.ID, byName.ID)

	_, err = store.GetTechnology(ctx, tech.ID+1000)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetTechnologyByName(ctx, "does not exist")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.DeleteTechnology(ctx, tech.ID))
	_, err = store.GetTechnology(ctx, tech.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.DeleteTechnology(ctx, tech.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateTechnology_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.CreateTechnology(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.CreateTechnology(ctx, &types.Technology{}), storage.ErrInvalidInput)

	newTestTechnology(t, store, "graphene")
	err := store.CreateTechnology(ctx, &types.Technology{Name: "graphene"})
	assert.Error(t, err, "duplicate name must be rejected")
}

func TestListTechnologies_OrderedByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	newTestTechnology(t, store, "solid-state batteries")
	newTestTechnology(t, store, "edge computing")
	newTestTechnology(t, store, "neuromorphic chips")

	techs, err := store.ListTechnologies(ctx)
	require.NoError(t, err)
	require.Len(t, techs, 3)
	assert.Equal(t, "edge computing", techs[0].Name)
	assert.Equal(t, "neuromorphic chips", techs[1].Name)
	assert.Equal(t, "solid-state batteries", techs[2].Name)
}

func TestPapers_RoundTripAndUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tech := newTestTechnology(t, store, "federated learning")

	papers := []types.Paper{
		{PaperID: "p1", Title: "A survey", Year: intp(2020), CitationCount: intp(12)},
		{PaperID: "p2", Title: "A follow-up", Year: intp(2022)},
	}
	require.NoError(t, store.SavePapers(ctx, tech.ID, papers))

	got, err := store.ListPapers(ctx, tech.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A survey", got[0].Title)
	require.NotNil(t, got[0].CitationCount)
	assert.Equal(t, 12, *got[0].CitationCount)
	assert.Nil(t, got[1].CitationCount)

	// Saving the same upstream ID again replaces the payload.
	require.NoError(t, store.SavePapers(ctx, tech.ID, []types.Paper{
		{PaperID: "p1", Title: "A survey, revised", Year: intp(2020), CitationCount: intp(40)},
	}))
	got, err = store.ListPapers(ctx, tech.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A survey, revised", got[0].Title)
	assert.Equal(t, 40, *got[0].CitationCount)

	count, err := store.CountRecords(ctx, tech.ID, types.StreamPaper)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecords_EmptyBatchAndMissingID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tech := newTestTechnology(t, store, "digital twins")

	require.NoError(t, store.SavePatents(ctx, tech.ID, nil))

	err := store.SavePatents(ctx, tech.ID, []types.Patent{{Title: "no id"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	got, err := store.ListPatents(ctx, tech.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPriceBarsAndStockInfo_SeparateStreams(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tech := newTestTechnology(t, store, "autonomous driving")

	bars := []types.PriceBar{
		{Ticker: "NVDA", Date: "2024-01-02", Close: floatp(500)},
		{Ticker: "NVDA", Date: "2024-01-03", Close: floatp(510)},
		{Ticker: "AMD", Date: "2024-01-02", Close: floatp(140)},
	}
	require.NoError(t, store.SavePriceBars(ctx, tech.ID, bars))
	require.NoError(t, store.SaveStockInfo(ctx, tech.ID, []types.StockInfo{
		{Ticker: "NVDA", Sector: "Technology", PERatio: floatp(65)},
	}))

	gotBars, err := store.ListPriceBars(ctx, tech.ID)
	require.NoError(t, err)
	assert.Len(t, gotBars, 3)

	gotInfo, err := store.ListStockInfo(ctx, tech.ID)
	require.NoError(t, err)
	require.Len(t, gotInfo, 1)
	assert.Equal(t, "Technology", gotInfo[0].Sector)

	// Fundamentals do not inflate the finance record count.
	count, err := store.CountRecords(ctx, tech.ID, types.StreamFinance)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAnalyses_UpsertAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tech := newTestTechnology(t, store, "spatial computing")

	analyzedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	save := func(stream types.Stream, phase types.Phase, confidence float64) {
		t.Helper()
		require.NoError(t, store.SaveAnalysis(ctx, &types.Analysis{
			RunID:        "run-1",
			TechnologyID: tech.ID,
			Stream:       stream,
			Phase:        phase,
			Confidence:   confidence,
			Scores:       map[types.Phase]float64{phase: confidence},
			Rationale:    "because",
			Snapshot:     map[string]int{"total": 42},
			AnalyzedAt:   analyzedAt,
		}))
	}

	save(types.StreamNews, types.PhasePeakInflatedExpectations, 0.8)
	save(types.StreamPaper, types.PhaseTechnologyTrigger, 0.6)

	got, err := store.GetAnalysis(ctx, tech.ID, types.StreamPaper)
	require.NoError(t, err)
	assert.Equal(t, types.PhaseTechnologyTrigger, got.Phase)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)

	raw, ok := got.Snapshot.(json.RawMessage)
	require.True(t, ok, "stored snapshot comes back as raw JSON")
	var snapshot map[string]int
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, 42, snapshot["total"])

	// A second run for the same stream replaces the first.
	save(types.StreamPaper, types.PhasePeakInflatedExpectations, 0.9)
	got, err = store.GetAnalysis(ctx, tech.ID, types.StreamPaper)
	require.NoError(t, err)
	assert.Equal(t, types.PhasePeakInflatedExpectations, got.Phase)

	analyses, err := store.ListAnalyses(ctx, tech.ID)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, types.StreamPaper, analyses[0].Stream)
	assert.Equal(t, types.StreamNews, analyses[1].Stream)

	_, err = store.GetAnalysis(ctx, tech.ID, types.StreamFinance)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteTechnology_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tech := newTestTechnology(t, store, "photonic computing")

	require.NoError(t, store.SavePosts(ctx, tech.ID, []types.SocialPost{
		{PostID: "s1", Title: "big if true", Score: intp(100)},
	}))
	require.NoError(t, store.SaveAnalysis(ctx, &types.Analysis{
		RunID:        "run-1",
		TechnologyID: tech.ID,
		Stream:       types.StreamSocial,
		Phase:        types.PhaseTechnologyTrigger,
		Confidence:   0.5,
		Scores:       map[types.Phase]float64{types.PhaseTechnologyTrigger: 0.5},
		Rationale:    "r",
		AnalyzedAt:   time.Now().UTC(),
	}))

	require.NoError(t, store.DeleteTechnology(ctx, tech.ID))

	count, err := store.CountRecords(ctx, tech.ID, types.StreamSocial)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.GetAnalysis(ctx, tech.ID, types.StreamSocial)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func floatp(v float64) *float64 { return &v }
