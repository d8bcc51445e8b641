package gateway

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorzero/tensorzero-go/internal/gatewaytest"
)

func TestBulkInsertDatapoints(t *testing.T) {
	server := gatewaytest.NewServer()
	defer server.Close()

	id1, id2 := gatewaytest.NewID(), gatewaytest.NewID()
	server.SetResponse("/datasets/eval-set/datapoints/bulk", gatewaytest.Response{
		StatusCode: http.StatusOK,
		Body:       []string{id1, id2},
	})

	client := newTestClient(t, server, Config{})
	ids, err := client.BulkInsertDatapoints(context.Background(), "eval-set", []DatapointInsert{
		&ChatDatapointInsert{
			FunctionName: "basic_test",
			Input:        Input{Messages: []Message{UserMessage("Hello")}},
			Output:       []ContentBlock{NewText("Hi there")},
			Tags:         map[string]string{"source": "manual"},
		},
		&JSONDatapointInsert{
			FunctionName: "json_success",
			Input:        Input{Messages: []Message{UserMessage("Who?")}},
			Output:       map[string]any{"answer": "Hardcode"},
		},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, id1, ids[0].String())
	assert.Equal(t, id2, ids[1].String())

	req := server.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)

	var body struct {
		Datapoints []map[string]any `json:"datapoints"`
	}
	require.NoError(t, req.JSON(&body))
	require.Len(t, body.Datapoints, 2)
	assert.Equal(t, "basic_test", body.Datapoints[0]["function_name"])
	assert.Equal(t, "json_success", body.Datapoints[1]["function_name"])
}

func TestBulkInsertDatapointsValidation(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.BulkInsertDatapoints(ctx, "", []DatapointInsert{&ChatDatapointInsert{FunctionName: "f"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dataset_name", verr.Field)

	_, err = client.BulkInsertDatapoints(ctx, "ds", nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "datapoints", verr.Field)

	_, err = client.BulkInsertDatapoints(ctx, "ds", []DatapointInsert{&ChatDatapointInsert{}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "datapoints[0].function_name", verr.Field)
}

func TestListDatapoints(t *testing.T) {
	server := gatewaytest.NewServer()
	defer server.Close()

	chatID, jsonID := gatewaytest.NewID(), gatewaytest.NewID()
	server.SetResponse("/datasets/eval-set/datapoints", gatewaytest.Response{
		StatusCode: http.StatusOK,
		Body: []map[string]any{
			{
				"type":          "chat",
				"id":            chatID,
				"dataset_name":  "eval-set",
				"function_name": "basic_test",
				"input": map[string]any{
					"messages": []map[string]any{
						{"role": "user", "content": []map[string]any{{"type": "text", "text": "Hello"}}},
					},
				},
				"output": []map[string]any{{"type": "text", "text": "Hi there"}},
			},
			{
				"type":          "json",
				"id":            jsonID,
				"dataset_name":  "eval-set",
				"function_name": "json_success",
				"input": map[string]any{
					"messages": []map[string]any{
						{"role": "user", "content": "Who?"},
					},
				},
				"output":        map[string]any{"raw": `{"answer":"Hardcode"}`, "parsed": map[string]any{"answer": "Hardcode"}},
				"output_schema": map[string]any{"type": "object"},
			},
		},
	})

	client := newTestClient(t, server, Config{})
	datapoints, err := client.ListDatapoints(context.Background(), "eval-set", 10, 5)
	require.NoError(t, err)
	require.Len(t, datapoints, 2)

	chat, ok := datapoints[0].(*ChatDatapoint)
	require.True(t, ok, "expected chat datapoint, got %T", datapoints[0])
	assert.Equal(t, chatID, chat.ID.String())
	assert.Equal(t, "basic_test", chat.FunctionName)
	require.Len(t, chat.Output, 1)
	assert.Equal(t, "Hi there", chat.Output[0].(*Text).Text)
	require.Len(t, chat.Input.Messages, 1)
	assert.Equal(t, RoleUser, chat.Input.Messages[0].Role)

	jsonDP, ok := datapoints[1].(*JSONDatapoint)
	require.True(t, ok, "expected json datapoint, got %T", datapoints[1])
	assert.Equal(t, "json_success", jsonDP.FunctionName)
	require.NotNil(t, jsonDP.Output)
	assert.Equal(t, map[string]any{"answer": "Hardcode"}, jsonDP.Output.Parsed)

	// Paging parameters travel as query string.
	req := server.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodGet, req.Method)
}

func TestGetDatapoint(t *testing.T) {
	server := gatewaytest.NewServer()
	defer server.Close()

	id := uuid.Must(uuid.NewV7())
	server.SetResponse("/datasets/eval-set/datapoints/"+id.String(), gatewaytest.Response{
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"type":          "chat",
			"id":            id.String(),
			"dataset_name":  "eval-set",
			"function_name": "basic_test",
			"input": map[string]any{
				"messages": []map[string]any{{"role": "user", "content": "Hello"}},
			},
		},
	})

	client := newTestClient(t, server, Config{})
	dp, err := client.GetDatapoint(context.Background(), "eval-set", id)
	require.NoError(t, err)

	chat, ok := dp.(*ChatDatapoint)
	require.True(t, ok)
	assert.Equal(t, id, chat.ID)
	assert.Nil(t, chat.Output)
}

func TestDeleteDatapoint(t *testing.T) {
	server := gatewaytest.NewServer()
	defer server.Close()

	id := uuid.Must(uuid.NewV7())
	server.SetResponse("/datasets/eval-set/datapoints/"+id.String(), gatewaytest.Response{
		StatusCode: http.StatusOK,
	})

	client := newTestClient(t, server, Config{})
	require.NoError(t, client.DeleteDatapoint(context.Background(), "eval-set", id))

	req := server.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/datasets/eval-set/datapoints/"+id.String(), req.Path)
}

func TestDecodeDatapointUnknownType(t *testing.T) {
	_, err := decodeDatapoint([]byte(`{"type":"tabular","id":"x"}`))
	var ierr *InternalError
	require.ErrorAs(t, err, &ierr)
	assert.Contains(t, ierr.Error(), "tabular")
}
