package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/tensorzero/tensorzero-go/pkg/history"
)

// JSONExporter exports journal records to JSON.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes journal records to the provided writer as a JSON array.
func (e *JSONExporter) Export(ctx context.Context, records []*history.Record, w io.Writer) error {
	if len(records) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return history.NewExportError("json", len(records), err)
	}

	if _, err := w.Write(data); err != nil {
		return history.NewExportError("json", len(records), err)
	}

	return nil
}

// ExportStream exports journal records from a channel as a JSON array.
// Records are written one at a time as they arrive, so arbitrarily large
// result sets never have to be held in memory.
func (e *JSONExporter) ExportStream(ctx context.Context, recordsCh <-chan *history.Record, w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return history.NewExportError("json", 0, err)
	}

	first := true
	recordCount := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				if _, err := w.Write([]byte("]")); err != nil {
					return history.NewExportError("json", recordCount, err)
				}
				return nil
			}

			if !first {
				if _, err := w.Write([]byte(",")); err != nil {
					return history.NewExportError("json", recordCount, err)
				}
				if e.Pretty {
					if _, err := w.Write([]byte("\n")); err != nil {
						return history.NewExportError("json", recordCount, err)
					}
				}
			}
			first = false

			data, err := e.serializeRecord(record)
			if err != nil {
				return history.NewExportError("json", recordCount, err)
			}
			if _, err := w.Write(data); err != nil {
				return history.NewExportError("json", recordCount, err)
			}

			recordCount++
		}
	}
}

// serializeRecord serializes a single journal record to JSON.
func (e *JSONExporter) serializeRecord(record *history.Record) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(record, "  ", "  ")
	}
	return json.Marshal(record)
}
