package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the journal database schema.
const Schema = `
-- Journal records table
CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,

    -- Timestamps
    started_at TIMESTAMP NOT NULL,
    recorded_at TIMESTAMP NOT NULL,

    -- Call identity
    function_name TEXT,
    variant_name TEXT,
    model TEXT,
    episode_id TEXT,
    inference_id TEXT,
    metric_name TEXT,

    -- Call shape and timing
    streamed BOOLEAN NOT NULL,
    duration_ms INTEGER NOT NULL,

    -- Usage
    input_tokens INTEGER,
    output_tokens INTEGER,
    finish_reason TEXT,

    -- Outcome
    status TEXT NOT NULL,
    error TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_history_started_at ON history(started_at);
CREATE INDEX IF NOT EXISTS idx_history_kind ON history(kind);
CREATE INDEX IF NOT EXISTS idx_history_function_name ON history(function_name);
CREATE INDEX IF NOT EXISTS idx_history_episode_id ON history(episode_id);
CREATE INDEX IF NOT EXISTS idx_history_status ON history(status);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
