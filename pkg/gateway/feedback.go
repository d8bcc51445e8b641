package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// FeedbackRequest assigns a metric value to a past inference or episode.
// Exactly one of InferenceID and EpisodeID must be set; which one is valid
// depends on the metric's configured level.
type FeedbackRequest struct {
	// MetricName is the metric to record. The names "comment" and
	// "demonstration" are always available.
	MetricName string `json:"metric_name"`

	// Value is the feedback value. Its type must match the metric
	// configuration: bool, number, or string depending on the metric.
	Value any `json:"value"`

	// InferenceID targets a single inference.
	InferenceID *uuid.UUID `json:"inference_id,omitempty"`

	// EpisodeID targets a whole episode.
	EpisodeID *uuid.UUID `json:"episode_id,omitempty"`

	// Tags attaches searchable key/value metadata to the feedback.
	Tags map[string]string `json:"tags,omitempty"`

	// DryRun validates and executes without the gateway recording it.
	DryRun bool `json:"dryrun,omitempty"`

	// Internal marks the feedback as issued by tooling.
	Internal bool `json:"internal,omitempty"`
}

func (r *FeedbackRequest) validate() error {
	if r.MetricName == "" {
		return NewValidationError("metric_name", "metric name is required")
	}
	if r.Value == nil {
		return NewValidationError("value", "value is required")
	}
	if r.InferenceID == nil && r.EpisodeID == nil {
		return NewValidationError("inference_id",
			"one of inference_id or episode_id is required")
	}
	if r.InferenceID != nil && r.EpisodeID != nil {
		return NewValidationError("inference_id",
			"inference_id and episode_id are mutually exclusive")
	}
	return nil
}

// FeedbackResponse acknowledges recorded feedback.
type FeedbackResponse struct {
	// FeedbackID identifies the stored feedback.
	FeedbackID uuid.UUID `json:"feedback_id"`
}

// Feedback records a metric value against an inference or episode.
func (c *Client) Feedback(ctx context.Context, req *FeedbackRequest) (*FeedbackResponse, error) {
	if req == nil {
		return nil, NewValidationError("request", "request is required")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, "/feedback", req)
	if err != nil {
		return nil, err
	}
	var resp FeedbackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewInternalError("decoding feedback response", err)
	}
	return &resp, nil
}
