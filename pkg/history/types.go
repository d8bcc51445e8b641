package history

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Kind classifies what a journal record describes.
type Kind string

const (
	// KindInference is a recorded inference call.
	KindInference Kind = "inference"

	// KindFeedback is a recorded feedback submission.
	KindFeedback Kind = "feedback"
)

// Status reports how the recorded call ended.
type Status string

const (
	// StatusOK means the call completed without error.
	StatusOK Status = "ok"

	// StatusError means the call failed; Record.Error holds the message.
	StatusError Status = "error"
)

// Record is one journaled gateway call. Records hold call metadata only,
// never prompt or completion content.
type Record struct {
	// ID is a UUIDv7, so lexicographic order matches creation order.
	ID string `json:"id"`

	// Kind is inference or feedback.
	Kind Kind `json:"kind"`

	// StartedAt is when the call began.
	StartedAt time.Time `json:"started_at"`

	// RecordedAt is when the record was written to the journal.
	RecordedAt time.Time `json:"recorded_at"`

	// FunctionName is the gateway function that was invoked, if any.
	FunctionName string `json:"function_name,omitempty"`

	// VariantName is the variant the gateway chose or was pinned to.
	VariantName string `json:"variant_name,omitempty"`

	// Model is the model name for direct model inference.
	Model string `json:"model,omitempty"`

	// EpisodeID groups related calls into one episode.
	EpisodeID string `json:"episode_id,omitempty"`

	// InferenceID is the gateway-assigned inference id. For feedback
	// records it is the inference the feedback targets.
	InferenceID string `json:"inference_id,omitempty"`

	// MetricName is set on feedback records only.
	MetricName string `json:"metric_name,omitempty"`

	// Streamed reports whether the inference used the streaming endpoint.
	Streamed bool `json:"streamed"`

	// Duration is the wall-clock time of the call.
	Duration time.Duration `json:"duration"`

	// InputTokens is the prompt token count reported by the gateway.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the completion token count reported by the gateway.
	OutputTokens int `json:"output_tokens"`

	// FinishReason is why generation stopped, when known.
	FinishReason string `json:"finish_reason,omitempty"`

	// Status is ok or error.
	Status Status `json:"status"`

	// Error holds the failure message when Status is StatusError.
	Error string `json:"error,omitempty"`
}

// TotalTokens returns input plus output tokens.
func (r *Record) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// NewRecord returns a record of the given kind with a fresh UUIDv7 id and
// both timestamps set to the current time. Callers overwrite StartedAt with
// the true call start and fill the remaining fields before appending.
func NewRecord(kind Kind) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Kind:       kind,
		StartedAt:  now,
		RecordedAt: now,
		Status:     StatusOK,
	}
}

// Query selects journal records. Zero-valued fields match everything.
type Query struct {
	// StartTime filters records started at or after this time.
	StartTime *time.Time

	// EndTime filters records started at or before this time.
	EndTime *time.Time

	// Kind filters by record kind.
	Kind Kind

	// FunctionName filters by function name.
	FunctionName string

	// VariantName filters by variant name.
	VariantName string

	// Model filters by model name.
	Model string

	// EpisodeID filters by episode id.
	EpisodeID string

	// Status filters by outcome.
	Status Status

	// Limit caps the number of records returned. 0 means DefaultLimit.
	Limit int

	// Offset skips this many records for pagination.
	Offset int

	// SortBy is the sort column: started_at, recorded_at, or duration_ms.
	// Empty means started_at.
	SortBy string

	// SortOrder is asc or desc. Empty means desc.
	SortOrder string
}

// Store persists and retrieves journal records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append persists one record.
	Append(ctx context.Context, record *Record) error

	// Query retrieves records matching the query filters.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// QueryStream streams matching records over a channel, for result
	// sets too large to hold in memory. Both channels are closed when
	// the query completes or fails.
	QueryStream(ctx context.Context, query *Query) (<-chan *Record, <-chan error, error)

	// Count returns the number of records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query filters and returns how
	// many were removed.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases resources held by the store.
	Close() error
}

// Exporter serializes journal records to an output stream.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
