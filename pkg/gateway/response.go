package gateway

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ResponseEnvelope holds the fields shared by chat and JSON inference
// responses.
type ResponseEnvelope struct {
	// InferenceID identifies this inference in the gateway's records and
	// is the target for inference-level feedback.
	InferenceID uuid.UUID `json:"inference_id"`

	// EpisodeID is the episode the inference belongs to: the requested
	// one, or a fresh one minted by the gateway.
	EpisodeID uuid.UUID `json:"episode_id"`

	// VariantName is the variant the gateway ran.
	VariantName string `json:"variant_name"`

	// Usage is the token consumption of the inference.
	Usage Usage `json:"usage"`

	// FinishReason reports why generation stopped, when known.
	FinishReason FinishReason `json:"finish_reason,omitempty"`

	// OriginalResponse is the raw provider payload. Populated only when
	// the request set IncludeOriginalResponse.
	OriginalResponse string `json:"original_response,omitempty"`
}

// InferenceResponse is the result of a blocking inference: either a
// *ChatInferenceResponse or a *JSONInferenceResponse, depending on the
// function type. Envelope exposes the shared fields; type-switch on the
// concrete type for the payload.
type InferenceResponse interface {
	inferenceResponse()

	// Envelope returns the fields common to both response kinds.
	Envelope() ResponseEnvelope
}

// ChatInferenceResponse is the response of a chat function: an ordered list
// of content blocks.
type ChatInferenceResponse struct {
	ResponseEnvelope

	// Content is the generated content. Blocks the client does not
	// recognize decode as *Unknown rather than failing.
	Content []ContentBlock `json:"content"`
}

func (*ChatInferenceResponse) inferenceResponse() {}

// Envelope returns the shared response fields.
func (r *ChatInferenceResponse) Envelope() ResponseEnvelope { return r.ResponseEnvelope }

func (r *ChatInferenceResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		ResponseEnvelope
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	blocks, err := decodeContentBlocks(raw.Content)
	if err != nil {
		return err
	}
	r.ResponseEnvelope = raw.ResponseEnvelope
	r.Content = blocks
	return nil
}

// JSONInferenceOutput is the output of a JSON function: the raw model text
// and, when it validated against the output schema, its parsed form.
type JSONInferenceOutput struct {
	// Raw is the model output before parsing. Empty when the model
	// produced no output.
	Raw string `json:"raw,omitempty"`

	// Parsed is the output parsed against the function's (or request's)
	// output schema. Nil when parsing or validation failed; Raw still
	// carries the text in that case.
	Parsed map[string]any `json:"parsed,omitempty"`
}

// JSONInferenceResponse is the response of a JSON function.
type JSONInferenceResponse struct {
	ResponseEnvelope

	// Output is the generated output.
	Output JSONInferenceOutput `json:"output"`
}

func (*JSONInferenceResponse) inferenceResponse() {}

// Envelope returns the shared response fields.
func (r *JSONInferenceResponse) Envelope() ResponseEnvelope { return r.ResponseEnvelope }

// decodeInferenceResponse dispatches on the body shape: chat responses
// carry "content", JSON responses carry "output".
func decodeInferenceResponse(data []byte) (InferenceResponse, error) {
	var probe struct {
		Content json.RawMessage `json:"content"`
		Output  json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, NewInternalError("decoding inference response", err)
	}

	switch {
	case probe.Content != nil:
		var resp ChatInferenceResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, NewInternalError("decoding chat inference response", err)
		}
		return &resp, nil
	case probe.Output != nil:
		var resp JSONInferenceResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, NewInternalError("decoding json inference response", err)
		}
		return &resp, nil
	default:
		return nil, NewInternalError("inference response has neither content nor output", nil)
	}
}
