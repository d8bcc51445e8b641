package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// DynamicEvaluationRunRequest starts a dynamic evaluation run: a named
// group of episodes that share pinned variants and tags.
type DynamicEvaluationRunRequest struct {
	// Variants pins function names to variant names for every episode of
	// the run.
	Variants map[string]string `json:"variants,omitempty"`

	// Tags is applied to every inference of the run.
	Tags map[string]string `json:"tags,omitempty"`

	// ProjectName groups runs in the UI.
	ProjectName string `json:"project_name,omitempty"`

	// DisplayName labels this run.
	DisplayName string `json:"display_name,omitempty"`
}

// DynamicEvaluationRunResponse identifies a started run.
type DynamicEvaluationRunResponse struct {
	RunID uuid.UUID `json:"run_id"`
}

// DynamicEvaluationRunEpisodeRequest adds an episode to a run.
type DynamicEvaluationRunEpisodeRequest struct {
	// TaskName identifies the task the episode evaluates, so results can
	// be compared across runs.
	TaskName string `json:"task_name,omitempty"`

	// DatapointName is a deprecated alias of TaskName kept for older
	// gateways.
	DatapointName string `json:"datapoint_name,omitempty"`

	// Tags is applied to the inferences of this episode, on top of the
	// run's tags.
	Tags map[string]string `json:"tags,omitempty"`
}

// DynamicEvaluationRunEpisodeResponse identifies the created episode. Pass
// the episode ID in subsequent inference requests to attach them to the
// run.
type DynamicEvaluationRunEpisodeResponse struct {
	EpisodeID uuid.UUID `json:"episode_id"`
}

// DynamicEvaluationRun starts a dynamic evaluation run.
func (c *Client) DynamicEvaluationRun(ctx context.Context, req *DynamicEvaluationRunRequest) (*DynamicEvaluationRunResponse, error) {
	if req == nil {
		return nil, NewValidationError("request", "request is required")
	}

	body, err := c.do(ctx, http.MethodPost, "/dynamic_evaluation_run", req)
	if err != nil {
		return nil, err
	}
	var resp DynamicEvaluationRunResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewInternalError("decoding dynamic evaluation run response", err)
	}
	return &resp, nil
}

// DynamicEvaluationRunEpisode creates an episode within a run.
func (c *Client) DynamicEvaluationRunEpisode(ctx context.Context, runID uuid.UUID, req *DynamicEvaluationRunEpisodeRequest) (*DynamicEvaluationRunEpisodeResponse, error) {
	if runID == uuid.Nil {
		return nil, NewValidationError("run_id", "run ID is required")
	}
	if req == nil {
		req = &DynamicEvaluationRunEpisodeRequest{}
	}

	body, err := c.do(ctx, http.MethodPost, "/dynamic_evaluation_run/"+runID.String()+"/episode", req)
	if err != nil {
		return nil, err
	}
	var resp DynamicEvaluationRunEpisodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewInternalError("decoding dynamic evaluation episode response", err)
	}
	return &resp, nil
}
