package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ChunkEnvelope holds the fields shared by chat and JSON stream chunks.
// Every chunk of one stream repeats the same inference and episode IDs.
type ChunkEnvelope struct {
	// InferenceID identifies the inference this stream belongs to.
	InferenceID uuid.UUID `json:"inference_id"`

	// EpisodeID is the episode of the inference.
	EpisodeID uuid.UUID `json:"episode_id"`

	// VariantName is the variant the gateway ran.
	VariantName string `json:"variant_name"`

	// Usage reports token counts. The gateway sends it on a trailing
	// chunk with no content; nil everywhere else.
	Usage *Usage `json:"usage,omitempty"`

	// FinishReason is set on the chunk that ends generation.
	FinishReason FinishReason `json:"finish_reason,omitempty"`
}

// InferenceChunk is one event of a streaming inference: either a *ChatChunk
// or a *JSONChunk, matching the function type.
type InferenceChunk interface {
	inferenceChunk()

	// Envelope returns the fields common to both chunk kinds.
	Envelope() ChunkEnvelope
}

// ChatChunk is a streaming delta of a chat function response.
type ChatChunk struct {
	ChunkEnvelope

	// Content is the content deltas carried by this event. Empty on the
	// trailing usage chunk.
	Content []ContentBlockChunk `json:"content"`
}

func (*ChatChunk) inferenceChunk() {}

// Envelope returns the shared chunk fields.
func (c *ChatChunk) Envelope() ChunkEnvelope { return c.ChunkEnvelope }

func (c *ChatChunk) UnmarshalJSON(data []byte) error {
	var raw struct {
		ChunkEnvelope
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	chunks, err := decodeContentBlockChunks(raw.Content)
	if err != nil {
		return err
	}
	c.ChunkEnvelope = raw.ChunkEnvelope
	c.Content = chunks
	return nil
}

// JSONChunk is a streaming delta of a JSON function response. Concatenating
// Raw across chunks reproduces the raw output string.
type JSONChunk struct {
	ChunkEnvelope

	// Raw is the fragment of raw output carried by this event.
	Raw string `json:"raw"`
}

func (*JSONChunk) inferenceChunk() {}

// Envelope returns the shared chunk fields.
func (c *JSONChunk) Envelope() ChunkEnvelope { return c.ChunkEnvelope }

// ContentBlockChunk is a delta of one content block within a chat stream.
// Deltas of the same block share an ID; concatenating their fragments in
// arrival order reassembles the block.
type ContentBlockChunk interface {
	contentBlockChunk()
}

// TextChunk is a text delta.
type TextChunk struct {
	// ID correlates deltas of the same text block.
	ID string `json:"id"`

	// Text is the fragment to append.
	Text string `json:"text"`
}

func (*TextChunk) contentBlockChunk() {}

// ToolCallChunk is a tool call delta. The gateway sends the raw name on the
// first delta of a call; RawArguments fragments concatenate into the
// argument JSON.
type ToolCallChunk struct {
	// ID correlates deltas of the same tool call.
	ID string `json:"id"`

	// RawName is the tool name as generated by the model.
	RawName string `json:"raw_name"`

	// RawArguments is the argument fragment to append.
	RawArguments string `json:"raw_arguments"`
}

func (*ToolCallChunk) contentBlockChunk() {}

// ThoughtChunk is a reasoning delta.
type ThoughtChunk struct {
	// ID correlates deltas of the same thought block.
	ID string `json:"id"`

	// Text is the reasoning fragment to append.
	Text string `json:"text"`

	// Signature is the provider's opaque thought token, when present.
	Signature string `json:"signature,omitempty"`
}

func (*ThoughtChunk) contentBlockChunk() {}

// decodeContentBlockChunks decodes the content deltas of a chat chunk.
// Delta types this client does not model are dropped: unlike whole blocks
// there is nothing useful to preserve from a fragment.
func decodeContentBlockChunks(raws []json.RawMessage) ([]ContentBlockChunk, error) {
	chunks := make([]ContentBlockChunk, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("content chunk %d: decoding discriminator: %w", i, err)
		}

		switch head.Type {
		case "text":
			var c TextChunk
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("content chunk %d: decoding text delta: %w", i, err)
			}
			chunks = append(chunks, &c)
		case "tool_call":
			var c ToolCallChunk
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("content chunk %d: decoding tool_call delta: %w", i, err)
			}
			chunks = append(chunks, &c)
		case "thought":
			var c ThoughtChunk
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, fmt.Errorf("content chunk %d: decoding thought delta: %w", i, err)
			}
			chunks = append(chunks, &c)
		}
	}
	return chunks, nil
}

// decodeInferenceChunk dispatches on the chunk shape: chat chunks carry
// "content", JSON chunks carry "raw".
func decodeInferenceChunk(data []byte) (InferenceChunk, error) {
	var probe struct {
		Content json.RawMessage `json:"content"`
		Raw     json.RawMessage `json:"raw"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, NewInternalError("decoding inference chunk", err)
	}

	switch {
	case probe.Content != nil:
		var chunk ChatChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return nil, NewInternalError("decoding chat chunk", err)
		}
		return &chunk, nil
	case probe.Raw != nil:
		var chunk JSONChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return nil, NewInternalError("decoding json chunk", err)
		}
		return &chunk, nil
	default:
		return nil, NewInternalError("inference chunk has neither content nor raw", nil)
	}
}
