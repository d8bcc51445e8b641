package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// DatapointInsert is a datapoint to add to a dataset: either a
// *ChatDatapointInsert or a *JSONDatapointInsert, matching the function
// type.
type DatapointInsert interface {
	datapointInsert()
	functionName() string
}

// ChatDatapointInsert is a dataset example for a chat function.
type ChatDatapointInsert struct {
	// FunctionName is the function this example belongs to.
	FunctionName string `json:"function_name"`

	// Input is the example input.
	Input Input `json:"input"`

	// Output is the reference output, when one exists.
	Output []ContentBlock `json:"output,omitempty"`

	// AllowedTools, AdditionalTools, ToolChoice, and ParallelToolCalls
	// mirror the inference-time tool settings the example was (or should
	// be) run with.
	AllowedTools      []string    `json:"allowed_tools,omitempty"`
	AdditionalTools   []Tool      `json:"additional_tools,omitempty"`
	ToolChoice        *ToolChoice `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool       `json:"parallel_tool_calls,omitempty"`

	// Tags attaches key/value metadata.
	Tags map[string]string `json:"tags,omitempty"`
}

func (*ChatDatapointInsert) datapointInsert() {}

func (d *ChatDatapointInsert) functionName() string { return d.FunctionName }

// JSONDatapointInsert is a dataset example for a JSON function.
type JSONDatapointInsert struct {
	// FunctionName is the function this example belongs to.
	FunctionName string `json:"function_name"`

	// Input is the example input.
	Input Input `json:"input"`

	// Output is the reference output object, when one exists.
	Output map[string]any `json:"output,omitempty"`

	// OutputSchema overrides the function's output schema for this
	// example.
	OutputSchema map[string]any `json:"output_schema,omitempty"`

	// Tags attaches key/value metadata.
	Tags map[string]string `json:"tags,omitempty"`
}

func (*JSONDatapointInsert) datapointInsert() {}

func (d *JSONDatapointInsert) functionName() string { return d.FunctionName }

// Datapoint is a stored dataset example: either a *ChatDatapoint or a
// *JSONDatapoint, discriminated by the "type" field.
type Datapoint interface {
	datapoint()
}

// ChatDatapoint is a stored example of a chat function.
type ChatDatapoint struct {
	ID           uuid.UUID `json:"id"`
	DatasetName  string    `json:"dataset_name"`
	FunctionName string    `json:"function_name"`
	Input        Input     `json:"input"`

	// Output is the reference output, when one was stored.
	Output []ContentBlock `json:"output,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

func (*ChatDatapoint) datapoint() {}

func (d *ChatDatapoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           uuid.UUID         `json:"id"`
		DatasetName  string            `json:"dataset_name"`
		FunctionName string            `json:"function_name"`
		Input        Input             `json:"input"`
		Output       []json.RawMessage `json:"output"`
		Tags         map[string]string `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.ID = raw.ID
	d.DatasetName = raw.DatasetName
	d.FunctionName = raw.FunctionName
	d.Input = raw.Input
	d.Tags = raw.Tags
	d.Output = nil
	if raw.Output != nil {
		blocks, err := decodeContentBlocks(raw.Output)
		if err != nil {
			return err
		}
		d.Output = blocks
	}
	return nil
}

// JSONDatapoint is a stored example of a JSON function.
type JSONDatapoint struct {
	ID           uuid.UUID `json:"id"`
	DatasetName  string    `json:"dataset_name"`
	FunctionName string    `json:"function_name"`
	Input        Input     `json:"input"`

	// Output is the reference output, when one was stored.
	Output *JSONInferenceOutput `json:"output,omitempty"`

	// OutputSchema is the schema the example was stored with, when it
	// differs from the function's.
	OutputSchema map[string]any `json:"output_schema,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`
}

func (*JSONDatapoint) datapoint() {}

// decodeDatapoint decodes one tagged datapoint object.
func decodeDatapoint(raw json.RawMessage) (Datapoint, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, NewInternalError("decoding datapoint discriminator", err)
	}

	switch head.Type {
	case "chat":
		var d ChatDatapoint
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, NewInternalError("decoding chat datapoint", err)
		}
		return &d, nil
	case "json":
		var d JSONDatapoint
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, NewInternalError("decoding json datapoint", err)
		}
		return &d, nil
	default:
		return nil, NewInternalError(fmt.Sprintf("unknown datapoint type %q", head.Type), nil)
	}
}

// BulkInsertDatapoints adds datapoints to a dataset, creating the dataset
// on first use, and returns the IDs assigned to them in order.
func (c *Client) BulkInsertDatapoints(ctx context.Context, dataset string, datapoints []DatapointInsert) ([]uuid.UUID, error) {
	if dataset == "" {
		return nil, NewValidationError("dataset_name", "dataset name is required")
	}
	if len(datapoints) == 0 {
		return nil, NewValidationError("datapoints", "at least one datapoint is required")
	}
	for i, dp := range datapoints {
		if dp == nil {
			return nil, NewValidationError(
				fmt.Sprintf("datapoints[%d]", i), "datapoint must not be nil")
		}
		if dp.functionName() == "" {
			return nil, NewValidationError(
				fmt.Sprintf("datapoints[%d].function_name", i), "function name is required")
		}
	}

	path := "/datasets/" + url.PathEscape(dataset) + "/datapoints/bulk"
	body, err := c.do(ctx, http.MethodPost, path, map[string]any{"datapoints": datapoints})
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, NewInternalError("decoding datapoint ids", err)
	}
	return ids, nil
}

// ListDatapoints pages through a dataset's datapoints. Zero limit and
// offset leave paging to the gateway's defaults.
func (c *Client) ListDatapoints(ctx context.Context, dataset string, limit, offset int) ([]Datapoint, error) {
	if dataset == "" {
		return nil, NewValidationError("dataset_name", "dataset name is required")
	}

	path := "/datasets/" + url.PathEscape(dataset) + "/datapoints"
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, NewInternalError("decoding datapoint list", err)
	}
	datapoints := make([]Datapoint, 0, len(raws))
	for _, raw := range raws {
		dp, err := decodeDatapoint(raw)
		if err != nil {
			return nil, err
		}
		datapoints = append(datapoints, dp)
	}
	return datapoints, nil
}

// GetDatapoint fetches one datapoint by ID.
func (c *Client) GetDatapoint(ctx context.Context, dataset string, id uuid.UUID) (Datapoint, error) {
	if dataset == "" {
		return nil, NewValidationError("dataset_name", "dataset name is required")
	}
	if id == uuid.Nil {
		return nil, NewValidationError("datapoint_id", "datapoint ID is required")
	}

	path := "/datasets/" + url.PathEscape(dataset) + "/datapoints/" + id.String()
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeDatapoint(body)
}

// DeleteDatapoint removes one datapoint from a dataset.
func (c *Client) DeleteDatapoint(ctx context.Context, dataset string, id uuid.UUID) error {
	if dataset == "" {
		return NewValidationError("dataset_name", "dataset name is required")
	}
	if id == uuid.Nil {
		return NewValidationError("datapoint_id", "datapoint ID is required")
	}

	path := "/datasets/" + url.PathEscape(dataset) + "/datapoints/" + id.String()
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}
