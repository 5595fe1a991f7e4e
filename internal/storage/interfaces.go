// Package storage defines the persistence interfaces for the hypecycle
// system: the technology catalog, collected evidence records, and stored
// analysis results. Backends implement these independently; sqlite and
// postgres implementations ship in subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/techscope/hypecycle/pkg/types"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// TechnologyStore manages the catalog of tracked technologies.
type TechnologyStore interface {
	// CreateTechnology inserts a new technology and fills in its ID.
	// Names are unique; re-creating an existing name is an error.
	CreateTechnology(ctx context.Context, tech *types.Technology) error

	// GetTechnology retrieves a technology by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetTechnology(ctx context.Context, id int64) (*types.Technology, error)

	// GetTechnologyByName retrieves a technology by its exact name.
	// Returns ErrNotFound if it doesn't exist.
	GetTechnologyByName(ctx context.Context, name string) (*types.Technology, error)

	// ListTechnologies returns all technologies ordered by name.
	ListTechnologies(ctx context.Context) ([]types.Technology, error)

	// DeleteTechnology removes a technology and all of its records and
	// analyses. Returns ErrNotFound if it doesn't exist.
	DeleteTechnology(ctx context.Context, id int64) error
}

// RecordStore persists collected evidence records per technology and
// stream. Saves have upsert semantics keyed by the record's natural
// upstream identifier, so re-running a collector never duplicates rows.
type RecordStore interface {
	SavePapers(ctx context.Context, technologyID int64, papers []types.Paper) error
	ListPapers(ctx context.Context, technologyID int64) ([]types.Paper, error)

	SavePatents(ctx context.Context, technologyID int64, patents []types.Patent) error
	ListPatents(ctx context.Context, technologyID int64) ([]types.Patent, error)

	SavePosts(ctx context.Context, technologyID int64, posts []types.SocialPost) error
	ListPosts(ctx context.Context, technologyID int64) ([]types.SocialPost, error)

	SaveArticles(ctx context.Context, technologyID int64, articles []types.NewsArticle) error
	ListArticles(ctx context.Context, technologyID int64) ([]types.NewsArticle, error)

	SavePriceBars(ctx context.Context, technologyID int64, bars []types.PriceBar) error
	ListPriceBars(ctx context.Context, technologyID int64) ([]types.PriceBar, error)

	SaveStockInfo(ctx context.Context, technologyID int64, info []types.StockInfo) error
	ListStockInfo(ctx context.Context, technologyID int64) ([]types.StockInfo, error)

	// CountRecords returns the number of stored records for one stream.
	CountRecords(ctx context.Context, technologyID int64, stream types.Stream) (int, error)
}

// AnalysisStore persists analysis results, one row per technology and
// stream with upsert semantics: a new run replaces the previous verdict.
type AnalysisStore interface {
	// SaveAnalysis upserts the analysis for (technology, stream).
	SaveAnalysis(ctx context.Context, analysis *types.Analysis) error

	// GetAnalysis retrieves the latest analysis for one stream.
	// Returns ErrNotFound if no analysis has been stored.
	GetAnalysis(ctx context.Context, technologyID int64, stream types.Stream) (*types.Analysis, error)

	// ListAnalyses returns all stored analyses for a technology, ordered
	// by stream in presentation order.
	ListAnalyses(ctx context.Context, technologyID int64) ([]types.Analysis, error)
}

// Store is the full persistence surface a backend provides.
type Store interface {
	TechnologyStore
	RecordStore
	AnalysisStore

	// Close releases any resources held by the store.
	Close() error
}
