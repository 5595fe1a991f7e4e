// Package postgres provides the PostgreSQL implementation of the storage
// interfaces, for deployments where several collectors and analyzers share
// one database.
package postgres

// Schema contains the SQL statements to create the database schema for
// PostgreSQL. Evidence payloads use JSONB so ad-hoc queries against record
// fields remain possible.
const Schema = `
-- Technologies table: the catalog of tracked technologies
CREATE TABLE IF NOT EXISTS technologies (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT,

    -- JSON arrays
    keywords JSONB,
    excluded_terms JSONB,
    tickers JSONB,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Records table: collected evidence, one JSONB payload per record
CREATE TABLE IF NOT EXISTS records (
    technology_id BIGINT NOT NULL REFERENCES technologies(id) ON DELETE CASCADE,
    stream TEXT NOT NULL,
    record_id TEXT NOT NULL,
    payload JSONB NOT NULL,
    collected_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    PRIMARY KEY (technology_id, stream, record_id)
);

-- Analyses table: latest verdict per technology and stream
CREATE TABLE IF NOT EXISTS analyses (
    technology_id BIGINT NOT NULL REFERENCES technologies(id) ON DELETE CASCADE,
    stream TEXT NOT NULL,
    run_id TEXT NOT NULL,
    phase TEXT NOT NULL,
    confidence DOUBLE PRECISION NOT NULL,
    scores JSONB NOT NULL,
    rationale TEXT NOT NULL,
    snapshot JSONB,
    records_analyzed INTEGER NOT NULL DEFAULT 0,
    analyzed_at TIMESTAMP NOT NULL,

    PRIMARY KEY (technology_id, stream)
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_records_tech_stream ON records(technology_id, stream);
CREATE INDEX IF NOT EXISTS idx_analyses_tech ON analyses(technology_id);
`
