package gateway

import (
	"encoding/json"
	"fmt"
)

// ContentBlock is one element of a message's content list, discriminated on
// the wire by a "type" field. The same union is used in both directions:
// blocks decoded from a chat response can be appended verbatim to the next
// request's message history.
//
// Response-side blocks are Text, ToolCall, Thought, and Unknown. Requests
// additionally accept RawText, ToolResult, and File. Unrecognized
// discriminators decode into Unknown so that newer gateways remain usable
// with older clients.
type ContentBlock interface {
	contentBlock()
}

// Text is a plain text block. For structured inputs to templated functions
// the gateway accepts Arguments instead of Text; exactly one of the two is
// serialized.
type Text struct {
	// Text is the text content.
	Text string

	// Arguments holds structured template arguments. When non-nil it is
	// serialized in place of Text.
	Arguments map[string]any
}

func (*Text) contentBlock() {}

// NewText creates a text content block.
func NewText(text string) *Text {
	return &Text{Text: text}
}

// NewTextArguments creates a text block carrying structured template
// arguments instead of literal text.
func NewTextArguments(arguments map[string]any) *Text {
	return &Text{Arguments: arguments}
}

func (t *Text) MarshalJSON() ([]byte, error) {
	if t.Arguments != nil {
		return json.Marshal(struct {
			Type      string         `json:"type"`
			Arguments map[string]any `json:"arguments"`
		}{Type: "text", Arguments: t.Arguments})
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: "text", Text: t.Text})
}

func (t *Text) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text      string         `json:"text"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Text = raw.Text
	t.Arguments = raw.Arguments
	return nil
}

// RawText is text that bypasses the function's template entirely.
// Request-side only.
type RawText struct {
	// Value is the literal text sent to the model.
	Value string `json:"value"`
}

func (*RawText) contentBlock() {}

// NewRawText creates a raw text block.
func NewRawText(value string) *RawText {
	return &RawText{Value: value}
}

func (r *RawText) MarshalJSON() ([]byte, error) {
	type alias RawText
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "raw_text", alias: (*alias)(r)})
}

// ToolCall is a model-initiated tool invocation. The gateway always reports
// the raw name and arguments exactly as the model produced them; Name and
// Arguments carry the validated forms and are unset when the model named an
// unknown tool or produced arguments that failed schema validation.
type ToolCall struct {
	// ID identifies this call so a ToolResult can reference it.
	ID string `json:"id"`

	// RawName is the tool name exactly as generated by the model.
	RawName string `json:"raw_name"`

	// RawArguments is the argument payload exactly as generated, as a
	// JSON-encoded string.
	RawArguments string `json:"raw_arguments"`

	// Name is the validated tool name. Nil if the name did not match a
	// tool available to the inference.
	Name *string `json:"name,omitempty"`

	// Arguments is the parsed, schema-validated argument object. Nil if
	// RawArguments failed validation.
	Arguments map[string]any `json:"arguments,omitempty"`
}

func (*ToolCall) contentBlock() {}

func (tc *ToolCall) MarshalJSON() ([]byte, error) {
	type alias ToolCall
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "tool_call", alias: (*alias)(tc)})
}

// ToolResult reports the outcome of a tool call back to the model.
// Request-side only.
type ToolResult struct {
	// ID must match the ToolCall.ID this result answers.
	ID string `json:"id"`

	// Name is the tool that was executed.
	Name string `json:"name"`

	// Result is the tool output, serialized by the caller.
	Result string `json:"result"`
}

func (*ToolResult) contentBlock() {}

// NewToolResult creates a tool result block answering the given call ID.
func NewToolResult(id, name, result string) *ToolResult {
	return &ToolResult{ID: id, Name: name, Result: result}
}

func (tr *ToolResult) MarshalJSON() ([]byte, error) {
	type alias ToolResult
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "tool_result", alias: (*alias)(tr)})
}

// Thought is reasoning content produced by models that expose it. Some
// providers return signature-only thoughts with no visible text.
type Thought struct {
	// Text is the reasoning text.
	Text string `json:"text"`

	// Signature is an opaque provider token that must be echoed back when
	// the thought is replayed in a later request.
	Signature string `json:"signature,omitempty"`
}

func (*Thought) contentBlock() {}

func (th *Thought) MarshalJSON() ([]byte, error) {
	type alias Thought
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "thought", alias: (*alias)(th)})
}

// File attaches a file to a message, either by URL or as inline base64 data
// with a MIME type. Request-side only.
type File struct {
	// URL locates the file for the gateway to fetch.
	URL string `json:"url,omitempty"`

	// MIMEType describes Data (for example "image/png").
	MIMEType string `json:"mime_type,omitempty"`

	// Data is the base64-encoded file content.
	Data string `json:"data,omitempty"`
}

func (*File) contentBlock() {}

func (f *File) MarshalJSON() ([]byte, error) {
	type alias File
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "file", alias: (*alias)(f)})
}

// Unknown carries provider-specific content the client does not model, or a
// block whose discriminator this client version does not recognize. Data is
// preserved byte-for-byte so it can be passed through to a later request.
type Unknown struct {
	// Data is the raw block payload.
	Data json.RawMessage `json:"data"`

	// ModelProviderName identifies the provider that produced the block,
	// when the gateway knows it.
	ModelProviderName string `json:"model_provider_name,omitempty"`
}

func (*Unknown) contentBlock() {}

func (u *Unknown) MarshalJSON() ([]byte, error) {
	type alias Unknown
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "unknown", alias: (*alias)(u)})
}

// decodeContentBlock decodes one content block by its "type" discriminator.
// Unrecognized types yield an Unknown wrapping the whole raw object rather
// than an error.
func decodeContentBlock(raw json.RawMessage) (ContentBlock, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decoding content block discriminator: %w", err)
	}

	switch head.Type {
	case "text":
		var b Text
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decoding text block: %w", err)
		}
		return &b, nil
	case "raw_text":
		var b RawText
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decoding raw_text block: %w", err)
		}
		return &b, nil
	case "tool_call":
		var b ToolCall
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decoding tool_call block: %w", err)
		}
		return &b, nil
	case "tool_result":
		var b ToolResult
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decoding tool_result block: %w", err)
		}
		return &b, nil
	case "thought":
		var b Thought
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decoding thought block: %w", err)
		}
		return &b, nil
	case "file":
		var b File
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decoding file block: %w", err)
		}
		return &b, nil
	case "unknown":
		var b Unknown
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("decoding unknown block: %w", err)
		}
		return &b, nil
	default:
		return &Unknown{Data: append(json.RawMessage(nil), raw...)}, nil
	}
}

// decodeContentBlocks decodes a content list.
func decodeContentBlocks(raws []json.RawMessage) ([]ContentBlock, error) {
	blocks := make([]ContentBlock, 0, len(raws))
	for i, raw := range raws {
		block, err := decodeContentBlock(raw)
		if err != nil {
			return nil, fmt.Errorf("content block %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}
