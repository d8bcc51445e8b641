package openaicompat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tensorzero/tensorzero-go/pkg/gateway"
)

// Extensions carries the gateway parameters that have no field in the OpenAI
// chat completion schema. Transport folds them into outgoing request bodies
// as tensorzero:: extension fields.
type Extensions struct {
	// EpisodeID groups this completion with earlier ones.
	EpisodeID *uuid.UUID

	// VariantName pins a specific variant instead of letting the gateway
	// sample one.
	VariantName string

	// DryRun executes the completion without recording it.
	DryRun bool

	// CacheOptions control gateway-side inference caching.
	CacheOptions *gateway.CacheOptions

	// IncludeRawResponse asks for the provider's verbatim responses, returned
	// as tensorzero_raw_response on completions and tensorzero_raw_chunk on
	// stream chunks.
	IncludeRawResponse bool

	// IncludeRawUsage asks for per-model-inference usage breakdowns.
	IncludeRawUsage bool

	// ExtraContent holds content blocks the OpenAI schema cannot express,
	// typically thought blocks round-tripped from an earlier completion. Each
	// block is spliced into the request message it addresses as a
	// tensorzero_extra_content entry.
	ExtraContent []ExtraContentBlock
}

// ExtraContentBlock is a content block outside the OpenAI schema, addressed
// to one request message.
type ExtraContentBlock struct {
	// MessageIndex selects the request message the block belongs to.
	MessageIndex int `json:"-"`

	// Type is the block discriminator, usually "thought".
	Type string `json:"type"`

	// InsertIndex is the block's position among the message's content blocks.
	InsertIndex int `json:"insert_index"`

	// Text carries the payload of thought blocks.
	Text string `json:"text,omitempty"`

	// Signature is the provider signature of a thought block, when the
	// provider issued one.
	Signature string `json:"signature,omitempty"`

	// Data carries the payload of unknown blocks verbatim.
	Data json.RawMessage `json:"data,omitempty"`
}

// Thought returns a thought block for the request message at messageIndex,
// restored at insertIndex within that message's content.
func Thought(messageIndex, insertIndex int, text string) ExtraContentBlock {
	return ExtraContentBlock{
		MessageIndex: messageIndex,
		Type:         "thought",
		InsertIndex:  insertIndex,
		Text:         text,
	}
}

// Transport is an http.RoundTripper that injects gateway extension fields
// into chat completion requests. Other requests pass through untouched.
//
//	cfg := openaicompat.ClientConfig(gatewayURL, apiKey)
//	cfg.HTTPClient = &http.Client{Transport: openaicompat.NewTransport(nil, ext)}
//	client := openai.NewClientWithConfig(cfg)
type Transport struct {
	base http.RoundTripper
	ext  Extensions
}

// NewTransport wraps base with extension injection. A nil base means
// http.DefaultTransport.
func NewTransport(base http.RoundTripper, ext Extensions) *Transport {
	return &Transport{base: base, ext: ext}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Method != http.MethodPost || req.Body == nil ||
		!strings.HasSuffix(req.URL.Path, "/chat/completions") {
		return base.RoundTrip(req)
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("openaicompat: reading chat completion body: %w", err)
	}
	rewritten, err := t.ext.apply(body)
	if err != nil {
		return nil, err
	}

	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(rewritten))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(rewritten)), nil
	}
	clone.ContentLength = int64(len(rewritten))
	return base.RoundTrip(clone)
}

func (ext Extensions) apply(body []byte) ([]byte, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("openaicompat: decoding chat completion body: %w", err)
	}

	set := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("openaicompat: encoding %s: %w", key, err)
		}
		payload[key] = raw
		return nil
	}
	if ext.EpisodeID != nil {
		if err := set("tensorzero::episode_id", ext.EpisodeID.String()); err != nil {
			return nil, err
		}
	}
	if ext.VariantName != "" {
		if err := set("tensorzero::variant_name", ext.VariantName); err != nil {
			return nil, err
		}
	}
	if ext.DryRun {
		if err := set("tensorzero::dryrun", true); err != nil {
			return nil, err
		}
	}
	if ext.CacheOptions != nil {
		if err := set("tensorzero::cache_options", ext.CacheOptions); err != nil {
			return nil, err
		}
	}
	if ext.IncludeRawResponse {
		if err := set("tensorzero::include_raw_response", true); err != nil {
			return nil, err
		}
	}
	if ext.IncludeRawUsage {
		if err := set("tensorzero::include_raw_usage", true); err != nil {
			return nil, err
		}
	}
	if len(ext.ExtraContent) > 0 {
		if err := spliceExtraContent(payload, ext.ExtraContent); err != nil {
			return nil, err
		}
	}
	return json.Marshal(payload)
}

// spliceExtraContent attaches each block to its message as a
// tensorzero_extra_content entry, preserving block order per message.
func spliceExtraContent(payload map[string]json.RawMessage, blocks []ExtraContentBlock) error {
	raw, ok := payload["messages"]
	if !ok {
		return fmt.Errorf("openaicompat: extra content set but request has no messages")
	}
	var messages []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		return fmt.Errorf("openaicompat: decoding request messages: %w", err)
	}

	grouped := make(map[int][]ExtraContentBlock)
	for _, block := range blocks {
		if block.MessageIndex < 0 || block.MessageIndex >= len(messages) {
			return fmt.Errorf("openaicompat: extra content message index %d out of range (%d messages)",
				block.MessageIndex, len(messages))
		}
		grouped[block.MessageIndex] = append(grouped[block.MessageIndex], block)
	}
	for idx, group := range grouped {
		enc, err := json.Marshal(group)
		if err != nil {
			return fmt.Errorf("openaicompat: encoding extra content: %w", err)
		}
		messages[idx]["tensorzero_extra_content"] = enc
	}

	enc, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("openaicompat: encoding request messages: %w", err)
	}
	payload["messages"] = enc
	return nil
}
