package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/techscope/hypecycle/internal/storage"
	"github.com/techscope/hypecycle/pkg/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database at the given DSN, configures WAL mode, and
// creates the schema. Use ":memory:" for an ephemeral store in tests.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows concurrent readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Connections live for the lifetime of the store.

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}

	// Wait instead of returning an immediate SQLITE_BUSY when the connection
	// is held by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateTechnology inserts a new technology and fills in its ID.
func (s *Store) CreateTechnology(ctx context.Context, tech *types.Technology) error {
	if tech == nil {
		return storage.ErrInvalidInput
	}
	if tech.Name == "" {
		return fmt.Errorf("%w: technology name is required", storage.ErrInvalidInput)
	}

	keywordsJSON, excludedJSON, tickersJSON, err := marshalTechnologyLists(tech)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO technologies (name, description, keywords, excluded_terms, tickers)
		VALUES (?, ?, ?, ?, ?)`,
		tech.Name, tech.Description, keywordsJSON, excludedJSON, tickersJSON)
	if err != nil {
		return fmt.Errorf("sqlite: failed to create technology: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: failed to read technology id: %w", err)
	}
	tech.ID = id
	return nil
}

// GetTechnology retrieves a technology by ID.
func (s *Store) GetTechnology(ctx context.Context, id int64) (*types.Technology, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, keywords, excluded_terms, tickers
		FROM technologies WHERE id = ?`, id)
	return scanTechnology(row)
}

// GetTechnologyByName retrieves a technology by its exact name.
func (s *Store) GetTechnologyByName(ctx context.Context, name string) (*types.Technology, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, keywords, excluded_terms, tickers
		FROM technologies WHERE name = ?`, name)
	return scanTechnology(row)
}

// ListTechnologies returns all technologies ordered by name.
func (s *Store) ListTechnologies(ctx context.Context) ([]types.Technology, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, keywords, excluded_terms, tickers
		FROM technologies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list technologies: %w", err)
	}
	defer rows.Close()

	var techs []types.Technology
	for rows.Next() {
		tech, err := scanTechnology(rows)
		if err != nil {
			return nil, err
		}
		techs = append(techs, *tech)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate technologies: %w", err)
	}
	return techs, nil
}

// DeleteTechnology removes a technology; records and analyses cascade.
func (s *Store) DeleteTechnology(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM technologies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete technology: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to check delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) SavePapers(ctx context.Context, technologyID int64, papers []types.Paper) error {
	return saveRecords(ctx, s, technologyID, types.StreamPaper, papers, storage.PaperID)
}

func (s *Store) ListPapers(ctx context.Context, technologyID int64) ([]types.Paper, error) {
	return listRecords[types.Paper](ctx, s, technologyID, types.StreamPaper)
}

func (s *Store) SavePatents(ctx context.Context, technologyID int64, patents []types.Patent) error {
	return saveRecords(ctx, s, technologyID, types.StreamPatent, patents, storage.PatentID)
}

func (s *Store) ListPatents(ctx context.Context, technologyID int64) ([]types.Patent, error) {
	return listRecords[types.Patent](ctx, s, technologyID, types.StreamPatent)
}

func (s *Store) SavePosts(ctx context.Context, technologyID int64, posts []types.SocialPost) error {
	return saveRecords(ctx, s, technologyID, types.StreamSocial, posts, storage.PostID)
}

func (s *Store) ListPosts(ctx context.Context, technologyID int64) ([]types.SocialPost, error) {
	return listRecords[types.SocialPost](ctx, s, technologyID, types.StreamSocial)
}

func (s *Store) SaveArticles(ctx context.Context, technologyID int64, articles []types.NewsArticle) error {
	return saveRecords(ctx, s, technologyID, types.StreamNews, articles, storage.ArticleID)
}

func (s *Store) ListArticles(ctx context.Context, technologyID int64) ([]types.NewsArticle, error) {
	return listRecords[types.NewsArticle](ctx, s, technologyID, types.StreamNews)
}

func (s *Store) SavePriceBars(ctx context.Context, technologyID int64, bars []types.PriceBar) error {
	return saveRecords(ctx, s, technologyID, types.StreamFinance, bars, storage.PriceBarID)
}

func (s *Store) ListPriceBars(ctx context.Context, technologyID int64) ([]types.PriceBar, error) {
	return listRecords[types.PriceBar](ctx, s, technologyID, types.StreamFinance)
}

func (s *Store) SaveStockInfo(ctx context.Context, technologyID int64, info []types.StockInfo) error {
	return saveRecords(ctx, s, technologyID, storage.StockInfoStream, info, storage.StockInfoID)
}

func (s *Store) ListStockInfo(ctx context.Context, technologyID int64) ([]types.StockInfo, error) {
	return listRecords[types.StockInfo](ctx, s, technologyID, storage.StockInfoStream)
}

// CountRecords returns the number of stored records for one stream.
func (s *Store) CountRecords(ctx context.Context, technologyID int64, stream types.Stream) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records WHERE technology_id = ? AND stream = ?`,
		technologyID, stream).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to count records: %w", err)
	}
	return count, nil
}

// SaveAnalysis upserts the analysis for (technology, stream).
func (s *Store) SaveAnalysis(ctx context.Context, analysis *types.Analysis) error {
	if analysis == nil {
		return storage.ErrInvalidInput
	}
	if analysis.TechnologyID == 0 || analysis.Stream == "" {
		return fmt.Errorf("%w: analysis needs a technology and stream", storage.ErrInvalidInput)
	}

	scoresJSON, err := json.Marshal(analysis.Scores)
	if err != nil {
		return fmt.Errorf("sqlite: failed to marshal scores: %w", err)
	}

	var snapshotJSON []byte
	if analysis.Snapshot != nil {
		snapshotJSON, err = json.Marshal(analysis.Snapshot)
		if err != nil {
			return fmt.Errorf("sqlite: failed to marshal snapshot: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (technology_id, stream, run_id, phase, confidence, scores, rationale, snapshot, records_analyzed, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(technology_id, stream) DO UPDATE SET
			run_id = excluded.run_id,
			phase = excluded.phase,
			confidence = excluded.confidence,
			scores = excluded.scores,
			rationale = excluded.rationale,
			snapshot = excluded.snapshot,
			records_analyzed = excluded.records_analyzed,
			analyzed_at = excluded.analyzed_at`,
		analysis.TechnologyID, analysis.Stream, analysis.RunID, analysis.Phase,
		analysis.Confidence, string(scoresJSON), analysis.Rationale,
		nullableString(snapshotJSON), analysis.RecordsAnalyzed, analysis.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save analysis: %w", err)
	}
	return nil
}

// GetAnalysis retrieves the latest analysis for one stream.
func (s *Store) GetAnalysis(ctx context.Context, technologyID int64, stream types.Stream) (*types.Analysis, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT technology_id, stream, run_id, phase, confidence, scores, rationale, snapshot, records_analyzed, analyzed_at
		FROM analyses WHERE technology_id = ? AND stream = ?`,
		technologyID, stream)
	return scanAnalysis(row)
}

// ListAnalyses returns all stored analyses for a technology ordered by
// stream in presentation order.
func (s *Store) ListAnalyses(ctx context.Context, technologyID int64) ([]types.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT technology_id, stream, run_id, phase, confidence, scores, rationale, snapshot, records_analyzed, analyzed_at
		FROM analyses WHERE technology_id = ?`, technologyID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list analyses: %w", err)
	}
	defer rows.Close()

	byStream := make(map[types.Stream]types.Analysis)
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		byStream[analysis.Stream] = *analysis
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate analyses: %w", err)
	}

	analyses := make([]types.Analysis, 0, len(byStream))
	for _, stream := range types.AllStreams {
		if analysis, ok := byStream[stream]; ok {
			analyses = append(analyses, analysis)
		}
	}
	return analyses, nil
}

// saveRecords upserts a batch of encoded records inside one transaction.
func saveRecords[T any](ctx context.Context, s *Store, technologyID int64, stream types.Stream, items []T, id func(T) string) error {
	if len(items) == 0 {
		return nil
	}

	rows, err := storage.EncodeRecords(items, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (technology_id, stream, record_id, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(technology_id, stream, record_id) DO UPDATE SET payload = excluded.payload`)
	if err != nil {
		return fmt.Errorf("sqlite: failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, technologyID, stream, row.ID, string(row.Payload)); err != nil {
			return fmt.Errorf("sqlite: failed to save record %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: failed to commit records: %w", err)
	}
	return nil
}

// listRecords loads and decodes every stored record for one stream.
func listRecords[T any](ctx context.Context, s *Store, technologyID int64, stream types.Stream) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM records
		WHERE technology_id = ? AND stream = ?
		ORDER BY record_id`, technologyID, stream)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list records: %w", err)
	}
	defer rows.Close()

	var payloads [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan record: %w", err)
		}
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate records: %w", err)
	}

	return storage.DecodeRecords[T](payloads)
}

// scanner abstracts sql.Row and sql.Rows for the shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanTechnology(row scanner) (*types.Technology, error) {
	var (
		tech                                   types.Technology
		description                            sql.NullString
		keywordsJSON, excludedJSON, tickersJSON sql.NullString
	)
	err := row.Scan(&tech.ID, &tech.Name, &description, &keywordsJSON, &excludedJSON, &tickersJSON)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to scan technology: %w", err)
	}

	tech.Description = description.String
	if err := unmarshalStringList(keywordsJSON, &tech.Keywords); err != nil {
		return nil, err
	}
	if err := unmarshalStringList(excludedJSON, &tech.ExcludedTerms); err != nil {
		return nil, err
	}
	if err := unmarshalStringList(tickersJSON, &tech.Tickers); err != nil {
		return nil, err
	}
	return &tech, nil
}

func scanAnalysis(row scanner) (*types.Analysis, error) {
	var (
		analysis     types.Analysis
		scoresJSON   string
		snapshotJSON sql.NullString
	)
	err := row.Scan(&analysis.TechnologyID, &analysis.Stream, &analysis.RunID,
		&analysis.Phase, &analysis.Confidence, &scoresJSON, &analysis.Rationale,
		&snapshotJSON, &analysis.RecordsAnalyzed, &analysis.AnalyzedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to scan analysis: %w", err)
	}

	if err := json.Unmarshal([]byte(scoresJSON), &analysis.Scores); err != nil {
		return nil, fmt.Errorf("sqlite: failed to unmarshal scores: %w", err)
	}
	if snapshotJSON.Valid && snapshotJSON.String != "" {
		analysis.Snapshot = json.RawMessage(snapshotJSON.String)
	}
	return &analysis, nil
}

func marshalTechnologyLists(tech *types.Technology) (keywords, excluded, tickers sql.NullString, err error) {
	if keywords, err = marshalStringList(tech.Keywords); err != nil {
		return
	}
	if excluded, err = marshalStringList(tech.ExcludedTerms); err != nil {
		return
	}
	tickers, err = marshalStringList(tech.Tickers)
	return
}

func marshalStringList(list []string) (sql.NullString, error) {
	if len(list) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("sqlite: failed to marshal list: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalStringList(src sql.NullString, dst *[]string) error {
	if !src.Valid || src.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(src.String), dst); err != nil {
		return fmt.Errorf("sqlite: failed to unmarshal list: %w", err)
	}
	return nil
}

func nullableString(data []byte) sql.NullString {
	if len(data) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}
