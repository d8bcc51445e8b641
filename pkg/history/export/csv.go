package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/tensorzero/tensorzero-go/pkg/history"
)

// CSVExporter exports journal records to CSV.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes journal records to the provided writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return history.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return history.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return history.NewExportError("csv", len(records), err)
	}

	return nil
}

// ExportStream exports journal records from a channel in CSV format.
// The writer flushes every 100 records so long exports show progress.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *history.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return history.NewExportError("csv", 0, err)
		}
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return history.NewExportError("csv", recordCount, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return history.NewExportError("csv", recordCount, err)
			}

			recordCount++

			if recordCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return history.NewExportError("csv", recordCount, err)
				}
			}
		}
	}
}

// headerRow returns the CSV header row.
func headerRow() []string {
	return []string{
		"id", "kind",
		"started_at", "recorded_at",
		"function_name", "variant_name", "model",
		"episode_id", "inference_id", "metric_name",
		"streamed", "duration_ms",
		"input_tokens", "output_tokens", "finish_reason",
		"status", "error",
	}
}

// recordToRow converts a journal record to a CSV row.
func recordToRow(record *history.Record) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	}

	return []string{
		record.ID,
		string(record.Kind),
		formatTime(record.StartedAt),
		formatTime(record.RecordedAt),
		record.FunctionName,
		record.VariantName,
		record.Model,
		record.EpisodeID,
		record.InferenceID,
		record.MetricName,
		strconv.FormatBool(record.Streamed),
		strconv.FormatInt(record.Duration.Milliseconds(), 10),
		strconv.Itoa(record.InputTokens),
		strconv.Itoa(record.OutputTokens),
		record.FinishReason,
		string(record.Status),
		record.Error,
	}
}
