package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tensorzero/tensorzero-go/pkg/cli"
	"github.com/tensorzero/tensorzero-go/pkg/history"
	"github.com/tensorzero/tensorzero-go/pkg/history/export"
	"github.com/tensorzero/tensorzero-go/pkg/history/retention"
)

var historyFlags struct {
	kind       string
	function   string
	variant    string
	model      string
	episode    string
	status     string
	since      time.Duration
	timeRange  string
	limit      int
	offset     int
	sortBy     string
	order      string
	output     string
	pretty     bool
	days       int
	maxRecords int64
	archive    string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the local call journal",
	Long: `Query, export, and prune the local journal of gateway calls.

Every inference and feedback call made through this CLI is recorded in
the journal configured under the history section of the config file.
Records hold call metadata only, never prompt or completion content.

Subcommands:
  list    - List journal records with filters
  export  - Export records as JSON or CSV
  prune   - Remove records past the retention policy

Examples:
  # Last day of failed inferences
  tensorzero history list --kind inference --status error --since 24h

  # Export one episode as CSV
  tensorzero history export --episode 0192f1a0-7a2b-7c3d-8e4f-5a6b7c8d9e0f \
    --format csv --output episode.csv

  # Apply the configured retention policy
  tensorzero history prune`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal records",
	Long: `List journal records with various filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-24T00:00:00Z/2026-08-25T00:00:00Z"

Examples:
  # Most recent calls
  tensorzero history list

  # Failed calls to one function
  tensorzero history list --function extract-entities --status error

  # A specific time window, oldest first
  tensorzero history list --time-range "2026-08-24T00:00:00Z/2026-08-25T00:00:00Z" \
    --order asc`,
	RunE: runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export journal records",
	Long: `Export journal records as JSON (default) or CSV.

The same filters as the list subcommand apply. Records stream from the
store to the output, so exports do not hold the result set in memory.
One run exports at most 10000 records; use --limit and --offset to
page through larger journals.

Examples:
  # Everything, as JSON on stdout
  tensorzero history export

  # One function's calls to a CSV file
  tensorzero history export --function chat --format csv --output chat.csv`,
	RunE: runHistoryExport,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune journal records",
	Long: `Remove journal records past the retention policy.

The retention settings come from the history.retention section of the
config file; --days, --max-records, and --archive override them for
this run. With an archive path the pruned records are exported to a
JSON file there before deletion.

Examples:
  # Apply the configured policy
  tensorzero history prune

  # Keep only the last week, archiving what goes
  tensorzero history prune --days 7 --archive ./archives`,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyExportCmd, historyPruneCmd)

	for _, cmd := range []*cobra.Command{historyListCmd, historyExportCmd} {
		cmd.Flags().StringVar(&historyFlags.kind, "kind", "", "filter by kind (inference, feedback)")
		cmd.Flags().StringVar(&historyFlags.function, "function", "", "filter by function name")
		cmd.Flags().StringVar(&historyFlags.variant, "variant", "", "filter by variant name")
		cmd.Flags().StringVar(&historyFlags.model, "model", "", "filter by model name")
		cmd.Flags().StringVar(&historyFlags.episode, "episode", "", "filter by episode ID")
		cmd.Flags().StringVar(&historyFlags.status, "status", "", "filter by status (ok, error)")
		cmd.Flags().DurationVar(&historyFlags.since, "since", 0, "only records newer than this (e.g. 24h)")
		cmd.Flags().StringVar(&historyFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
		cmd.Flags().IntVar(&historyFlags.limit, "limit", 0, "max results (default 100 for list, 10000 for export)")
		cmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "pagination offset")
		cmd.Flags().StringVar(&historyFlags.sortBy, "sort", "", "sort field (started_at, recorded_at, duration_ms)")
		cmd.Flags().StringVar(&historyFlags.order, "order", "", "sort order (asc, desc)")
	}
	historyExportCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "", "output file (default: stdout)")
	historyExportCmd.Flags().BoolVar(&historyFlags.pretty, "pretty", false, "indent JSON output")

	historyPruneCmd.Flags().IntVar(&historyFlags.days, "days", 0, "retention days override")
	historyPruneCmd.Flags().Int64Var(&historyFlags.maxRecords, "max-records", 0, "max records override")
	historyPruneCmd.Flags().StringVar(&historyFlags.archive, "archive", "", "archive directory (implies archiving before delete)")
}

// openJournal loads the config and opens the configured journal store. A
// disabled journal is an error here: every history subcommand needs one.
func openJournal() (history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, cli.NewConfigError("history.enabled", "the history journal is disabled")
	}
	return store, nil
}

// buildHistoryQuery translates the filter flags into a journal query.
func buildHistoryQuery() (*history.Query, error) {
	query := &history.Query{
		Kind:         history.Kind(historyFlags.kind),
		FunctionName: historyFlags.function,
		VariantName:  historyFlags.variant,
		Model:        historyFlags.model,
		EpisodeID:    historyFlags.episode,
		Status:       history.Status(historyFlags.status),
		Limit:        historyFlags.limit,
		Offset:       historyFlags.offset,
		SortBy:       historyFlags.sortBy,
		SortOrder:    historyFlags.order,
	}

	if historyFlags.since > 0 && historyFlags.timeRange != "" {
		return nil, fmt.Errorf("--since and --time-range are mutually exclusive")
	}
	if historyFlags.since > 0 {
		start := time.Now().Add(-historyFlags.since)
		query.StartTime = &start
	}
	if historyFlags.timeRange != "" {
		parts := strings.Split(historyFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	if err := query.Validate(); err != nil {
		return nil, err
	}
	return query, nil
}

// historyListOutput is the JSON shape of the list subcommand.
type historyListOutput struct {
	TotalRecords int64             `json:"total_records"`
	Records      []*history.Record `json:"records"`
}

// recordTable renders journal records through the tabular formatters.
type recordTable struct {
	records []*history.Record
}

func (t *recordTable) Headers() []string {
	return []string{"STARTED", "KIND", "NAME", "VARIANT", "STATUS", "DURATION", "TOKENS", "INFERENCE ID"}
}

func (t *recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.records))
	for _, r := range t.records {
		rows = append(rows, []string{
			r.StartedAt.Format(time.RFC3339),
			string(r.Kind),
			recordName(r),
			r.VariantName,
			string(r.Status),
			r.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(r.TotalTokens()),
			r.InferenceID,
		})
	}
	return rows
}

// recordName is what the record addressed: a function, a model, or for
// feedback records the metric.
func recordName(r *history.Record) string {
	switch {
	case r.FunctionName != "":
		return r.FunctionName
	case r.Model != "":
		return r.Model
	case r.MetricName != "":
		return r.MetricName
	}
	return ""
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildHistoryQuery()
	if err != nil {
		return err
	}

	ctx := cli.SetupSignalHandler()
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}
	total, err := store.Count(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("count failed: %w", err))
	}

	switch format {
	case cli.FormatJSON:
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, &historyListOutput{
			TotalRecords: total,
			Records:      records,
		})
	case cli.FormatCSV:
		return cli.NewFormatter(cli.FormatCSV).FormatTo(os.Stdout, &recordTable{records: records})
	default:
		fmt.Printf("Total records: %d (showing %d)\n", total, len(records))
		fmt.Println()
		if len(records) == 0 {
			fmt.Println("No records found.")
			return nil
		}
		return cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, &recordTable{records: records})
	}
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildHistoryQuery()
	if err != nil {
		return err
	}
	// Exports want the whole journal, not a page.
	if !cmd.Flags().Changed("limit") {
		query.Limit = history.MaxLimit
	}

	var out *os.File
	if historyFlags.output != "" {
		out, err = os.Create(historyFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer out.Close()
	} else {
		out = os.Stdout
	}

	var exporter interface {
		ExportStream(ctx context.Context, records <-chan *history.Record, w io.Writer) error
	}
	switch format {
	case cli.FormatCSV:
		exporter = export.NewCSVExporter(true)
	default:
		exporter = export.NewJSONExporter(historyFlags.pretty)
	}

	ctx := cli.SetupSignalHandler()
	recordsCh, errCh, err := store.QueryStream(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}

	if err := exporter.ExportStream(ctx, recordsCh, out); err != nil {
		return cli.NewCommandError("history", fmt.Errorf("export failed: %w", err))
	}
	if err := <-errCh; err != nil {
		return cli.NewCommandError("history", fmt.Errorf("query failed: %w", err))
	}

	if historyFlags.output != "" {
		fmt.Fprintf(os.Stderr, "✓ Exported to %s\n", historyFlags.output)
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("csv output is not supported for prune")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return cli.NewConfigError("history.enabled", "the history journal is disabled")
	}
	defer store.Close()

	policy := &retention.Config{
		RetentionDays:       cfg.History.Retention.Days,
		MaxRecords:          cfg.History.Retention.MaxRecords,
		ArchiveBeforeDelete: cfg.History.Retention.ArchiveBeforeDelete,
		ArchivePath:         cfg.History.Retention.ArchivePath,
	}
	if cmd.Flags().Changed("days") {
		policy.RetentionDays = historyFlags.days
	}
	if cmd.Flags().Changed("max-records") {
		policy.MaxRecords = historyFlags.maxRecords
	}
	if historyFlags.archive != "" {
		policy.ArchiveBeforeDelete = true
		policy.ArchivePath = historyFlags.archive
	}
	if policy.RetentionDays <= 0 && policy.MaxRecords <= 0 {
		return fmt.Errorf("nothing to prune: set retention.days or retention.max_records, or pass --days or --max-records")
	}

	ctx := cli.SetupSignalHandler()
	pruner := retention.NewPruner(store, policy)
	removed, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("history", fmt.Errorf("prune failed: %w", err))
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, map[string]int64{"removed": removed})
	}
	fmt.Printf("✓ Pruned %d records\n", removed)
	return nil
}
