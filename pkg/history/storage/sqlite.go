package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tensorzero/tensorzero-go/pkg/history"
)

// SQLiteConfig contains configuration for the SQLite journal store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the history.Store interface using SQLite.
// The driver is selected at build time; see driver_modernc.go.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// selectColumns lists the history columns in the order scanRow reads them.
const selectColumns = `id, kind, started_at, recorded_at,
	function_name, variant_name, model, episode_id, inference_id, metric_name,
	streamed, duration_ms, input_tokens, output_tokens, finish_reason,
	status, error`

// NewSQLiteStore opens (creating if necessary) the journal database.
// It initializes the schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "history.storage.sqlite")

	// The journal lives under a data directory that may not exist yet
	// on first run.
	if dir := filepath.Dir(config.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, history.NewStorageError("sqlite", "mkdir", err)
		}
	}

	db, err := sql.Open(sqliteDriverName, config.Path)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite journal store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return history.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return history.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return history.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return history.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return history.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return history.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Append persists a journal record to the database.
func (s *SQLiteStore) Append(ctx context.Context, record *history.Record) error {
	query := `
		INSERT INTO history (
			id, kind, started_at, recorded_at,
			function_name, variant_name, model, episode_id, inference_id, metric_name,
			streamed, duration_ms, input_tokens, output_tokens, finish_reason,
			status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorVal any
	if record.Error != "" {
		errorVal = record.Error
	}

	// Times are bound in UTC so the driver's text encoding compares
	// consistently in range queries.
	_, err := s.db.ExecContext(ctx, query,
		record.ID, string(record.Kind), record.StartedAt.UTC(), record.RecordedAt.UTC(),
		record.FunctionName, record.VariantName, record.Model, record.EpisodeID, record.InferenceID, record.MetricName,
		record.Streamed, record.Duration.Milliseconds(), record.InputTokens, record.OutputTokens, record.FinishReason,
		string(record.Status), errorVal,
	)
	if err != nil {
		return history.NewStorageError("sqlite", "append", err)
	}

	return nil
}

// Query retrieves journal records matching the query filters.
func (s *SQLiteStore) Query(ctx context.Context, query *history.Query) ([]*history.Record, error) {
	sqlQuery, args, err := s.buildSelect(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*history.Record{}
	for rows.Next() {
		record, err := s.scanRow(rows)
		if err != nil {
			return nil, history.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, history.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream streams matching records over a channel, for result sets too
// large to hold in memory. Both channels are closed when the query
// completes or fails.
func (s *SQLiteStore) QueryStream(ctx context.Context, query *history.Query) (<-chan *history.Record, <-chan error, error) {
	sqlQuery, args, err := s.buildSelect(query)
	if err != nil {
		return nil, nil, err
	}

	recordsCh := make(chan *history.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- history.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			record, err := s.scanRow(rows)
			if err != nil {
				errCh <- history.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- history.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of journal records matching the query filters.
func (s *SQLiteStore) Count(ctx context.Context, query *history.Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM history"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, history.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes journal records matching the query filters.
// Returns the number of records deleted.
func (s *SQLiteStore) Delete(ctx context.Context, query *history.Query) (int64, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "DELETE FROM history"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, history.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the store.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return history.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite journal store closed")
	return nil
}

// buildSelect assembles the full SELECT statement for Query and QueryStream.
func (s *SQLiteStore) buildSelect(query *history.Query) (string, []any, error) {
	whereClause, args := s.buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM history"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	// Sort columns are interpolated into the statement, so only
	// whitelisted names are accepted.
	sortBy := "started_at"
	if query.SortBy != "" {
		if !history.ValidSortFields[query.SortBy] {
			return "", nil, history.NewQueryError(query, fmt.Errorf("invalid sort field: %s", query.SortBy))
		}
		sortBy = query.SortBy
	}
	sortOrder := "DESC"
	if query.SortOrder != "" {
		if !history.ValidSortOrders[query.SortOrder] {
			return "", nil, history.NewQueryError(query, fmt.Errorf("invalid sort order: %s", query.SortOrder))
		}
		sortOrder = strings.ToUpper(query.SortOrder)
	}
	sqlQuery += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	limit := history.DefaultLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)

	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	return sqlQuery, args, nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the clause (without the "WHERE" keyword) and its arguments.
func (s *SQLiteStore) buildWhereClause(query *history.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.StartTime != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, query.StartTime.UTC())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "started_at <= ?")
		args = append(args, query.EndTime.UTC())
	}

	if query.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, string(query.Kind))
	}

	if query.FunctionName != "" {
		conditions = append(conditions, "function_name = ?")
		args = append(args, query.FunctionName)
	}
	if query.VariantName != "" {
		conditions = append(conditions, "variant_name = ?")
		args = append(args, query.VariantName)
	}
	if query.Model != "" {
		conditions = append(conditions, "model = ?")
		args = append(args, query.Model)
	}
	if query.EpisodeID != "" {
		conditions = append(conditions, "episode_id = ?")
		args = append(args, query.EpisodeID)
	}

	if query.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(query.Status))
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into a Record.
func (s *SQLiteStore) scanRow(rows *sql.Rows) (*history.Record, error) {
	var record history.Record
	var kind, status string
	var durationMs int64
	var errorVal sql.NullString

	err := rows.Scan(
		&record.ID, &kind, &record.StartedAt, &record.RecordedAt,
		&record.FunctionName, &record.VariantName, &record.Model, &record.EpisodeID, &record.InferenceID, &record.MetricName,
		&record.Streamed, &durationMs, &record.InputTokens, &record.OutputTokens, &record.FinishReason,
		&status, &errorVal,
	)
	if err != nil {
		return nil, err
	}

	record.Kind = history.Kind(kind)
	record.Status = history.Status(status)
	record.Duration = time.Duration(durationMs) * time.Millisecond
	if errorVal.Valid {
		record.Error = errorVal.String
	}

	return &record, nil
}
