package gateway

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorzero/tensorzero-go/internal/gatewaytest"
)

func TestFeedback(t *testing.T) {
	server := gatewaytest.NewServer()
	defer server.Close()
	server.SetResponse("/feedback", gatewaytest.FeedbackAck())

	client := newTestClient(t, server, Config{})
	inferenceID := uuid.Must(uuid.NewV7())

	resp, err := client.Feedback(context.Background(), &FeedbackRequest{
		MetricName:  "task_success",
		Value:       true,
		InferenceID: &inferenceID,
		Tags:        map[string]string{"rater": "cli"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.FeedbackID)

	var body map[string]any
	require.NoError(t, server.LastRequest().JSON(&body))
	assert.Equal(t, "task_success", body["metric_name"])
	assert.Equal(t, true, body["value"])
	assert.Equal(t, inferenceID.String(), body["inference_id"])
	assert.NotContains(t, body, "episode_id")
	assert.NotContains(t, body, "dryrun")
}

func TestFeedbackValidation(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	id := uuid.Must(uuid.NewV7())
	tests := []struct {
		name      string
		req       *FeedbackRequest
		wantField string
	}{
		{name: "nil request", req: nil, wantField: "request"},
		{
			name:      "missing metric",
			req:       &FeedbackRequest{Value: 1.0, InferenceID: &id},
			wantField: "metric_name",
		},
		{
			name:      "missing value",
			req:       &FeedbackRequest{MetricName: "rating", InferenceID: &id},
			wantField: "value",
		},
		{
			name:      "no target",
			req:       &FeedbackRequest{MetricName: "rating", Value: 5},
			wantField: "inference_id",
		},
		{
			name: "both targets",
			req: &FeedbackRequest{
				MetricName: "rating", Value: 5,
				InferenceID: &id, EpisodeID: &id,
			},
			wantField: "inference_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Feedback(context.Background(), tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

// Episode-level feedback for metrics configured at episode level.
func TestFeedbackEpisodeTarget(t *testing.T) {
	server := gatewaytest.NewServer()
	defer server.Close()
	server.SetResponse("/feedback", gatewaytest.FeedbackAck())

	client := newTestClient(t, server, Config{})
	episodeID := uuid.Must(uuid.NewV7())

	_, err := client.Feedback(context.Background(), &FeedbackRequest{
		MetricName: "comment",
		Value:      "solved on the second turn",
		EpisodeID:  &episodeID,
		DryRun:     true,
	})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, server.LastRequest().JSON(&body))
	assert.Equal(t, episodeID.String(), body["episode_id"])
	assert.Equal(t, true, body["dryrun"])
	assert.NotContains(t, body, "inference_id")
}
