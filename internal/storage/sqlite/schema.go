// Package sqlite provides the SQLite implementation of the storage
// interfaces. It is the default backend for single-machine deployments.
package sqlite

// Schema contains the SQL statements to create the database schema.
// Evidence records are stored as JSON payloads keyed by their natural
// upstream identifier, so collector re-runs upsert instead of duplicate.
const Schema = `
-- Technologies table: the catalog of tracked technologies
CREATE TABLE IF NOT EXISTS technologies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT,

    -- JSON arrays
    keywords TEXT,
    excluded_terms TEXT,
    tickers TEXT,

    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Records table: collected evidence, one JSON payload per record
CREATE TABLE IF NOT EXISTS records (
    technology_id INTEGER NOT NULL,
    stream TEXT NOT NULL,
    record_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    collected_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    PRIMARY KEY (technology_id, stream, record_id),
    FOREIGN KEY (technology_id) REFERENCES technologies(id) ON DELETE CASCADE
);

-- Analyses table: latest verdict per technology and stream
CREATE TABLE IF NOT EXISTS analyses (
    technology_id INTEGER NOT NULL,
    stream TEXT NOT NULL,
    run_id TEXT NOT NULL,
    phase TEXT NOT NULL,
    confidence REAL NOT NULL,
    scores TEXT NOT NULL,
    rationale TEXT NOT NULL,
    snapshot TEXT,
    records_analyzed INTEGER NOT NULL DEFAULT 0,
    analyzed_at TIMESTAMP NOT NULL,

    PRIMARY KEY (technology_id, stream),
    FOREIGN KEY (technology_id) REFERENCES technologies(id) ON DELETE CASCADE
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_records_tech_stream ON records(technology_id, stream);
CREATE INDEX IF NOT EXISTS idx_analyses_tech ON analyses(technology_id);
`
