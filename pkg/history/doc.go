// Package history provides a local journal of gateway calls. The CLI
// records every inference and feedback submission it performs; embedding
// applications can opt in by appending records themselves.
//
// Records hold call metadata only (ids, timing, token usage, outcome),
// never prompt or completion content.
//
// # Basic Usage
//
//	// Open the SQLite-backed store
//	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{
//	    Path:    "data/history.db",
//	    WALMode: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	// Journal an inference
//	rec := history.NewRecord(history.KindInference)
//	rec.FunctionName = "extract_entities"
//	rec.InferenceID = resp.InferenceID.String()
//	rec.Duration = time.Since(start)
//	store.Append(ctx, rec)
//
// # Querying
//
//	query := &history.Query{
//	    StartTime:    &since,
//	    FunctionName: "extract_entities",
//	    Status:       history.StatusError,
//	    Limit:        50,
//	}
//	records, err := store.Query(ctx, query)
//
// # Exporting
//
//	exporter := export.NewJSONExporter(true) // pretty-print
//	exporter.Export(ctx, records, os.Stdout)
//
// # Retention
//
// Old records can be pruned automatically on a cron schedule:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 90,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	})
//	pruner.Start(ctx)
//	defer pruner.Stop()
//
// # Storage Backends
//
// Two Store implementations ship with the package: an SQLite store for
// persistence and an in-memory store for tests. The SQLite driver is
// chosen at build time: the pure-Go modernc.org/sqlite driver by default,
// or mattn/go-sqlite3 when building with -tags sqlite_cgo. Custom
// backends implement the Store interface.
package history
