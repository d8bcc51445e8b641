package gateway

import "encoding/json"

// Tool describes a tool made available to an inference at request time, in
// addition to any tools configured on the function.
type Tool struct {
	// Name is the tool identifier the model calls it by.
	Name string `json:"name"`

	// Description tells the model what the tool does.
	Description string `json:"description"`

	// Parameters is the JSON schema for the tool's arguments.
	Parameters map[string]any `json:"parameters"`

	// Strict requests strict schema enforcement from providers that
	// support it.
	Strict bool `json:"strict,omitempty"`
}

// ToolChoice constrains how the model may use tools. Use the package
// variables for the fixed modes, or ToolChoiceSpecific to force one tool.
type ToolChoice struct {
	mode     string
	specific string
}

var (
	// ToolChoiceAuto lets the model decide whether to call tools.
	ToolChoiceAuto = &ToolChoice{mode: "auto"}
	// ToolChoiceRequired forces the model to call some tool.
	ToolChoiceRequired = &ToolChoice{mode: "required"}
	// ToolChoiceOff disables tool use for this inference.
	ToolChoiceOff = &ToolChoice{mode: "off"}
)

// ToolChoiceSpecific forces the model to call the named tool.
func ToolChoiceSpecific(name string) *ToolChoice {
	return &ToolChoice{specific: name}
}

func (tc *ToolChoice) MarshalJSON() ([]byte, error) {
	if tc.specific != "" {
		return json.Marshal(map[string]string{"specific": tc.specific})
	}
	return json.Marshal(tc.mode)
}

func (tc *ToolChoice) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Specific string `json:"specific"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		tc.specific = obj.Specific
		tc.mode = ""
		return nil
	}
	if err := json.Unmarshal(data, &tc.mode); err != nil {
		return err
	}
	tc.specific = ""
	return nil
}

// CacheMode controls how the gateway's inference cache participates in a
// request.
type CacheMode string

const (
	// CacheOn reads and writes the cache.
	CacheOn CacheMode = "on"
	// CacheOff bypasses the cache entirely.
	CacheOff CacheMode = "off"
	// CacheReadOnly serves cached responses but never stores new ones.
	CacheReadOnly CacheMode = "read_only"
	// CacheWriteOnly stores responses without serving cached ones.
	CacheWriteOnly CacheMode = "write_only"
)

// CacheOptions tune inference caching per request. The cache itself lives in
// the gateway; the client only selects behavior.
type CacheOptions struct {
	// Enabled selects the cache mode.
	Enabled CacheMode `json:"enabled,omitempty"`

	// MaxAgeS rejects cache entries older than this many seconds.
	MaxAgeS *int `json:"max_age_s,omitempty"`
}

// InferenceParams overrides variant parameters for a single request, scoped
// by variant type.
type InferenceParams struct {
	// ChatCompletion overrides parameters of chat-completion variants.
	ChatCompletion *ChatCompletionParams `json:"chat_completion,omitempty"`
}

// ChatCompletionParams are per-request overrides for chat-completion
// variants. Nil fields leave the variant's configured value in place.
type ChatCompletionParams struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	Seed             *int     `json:"seed,omitempty"`
	StopSequences    []string `json:"stop_sequences,omitempty"`

	// JSONMode is one of "off", "on", "strict", "implicit_tool".
	JSONMode string `json:"json_mode,omitempty"`
}

// ExtraBody patches the request body the gateway sends to a model provider,
// addressed by JSON pointer. Scope the patch with VariantName or
// ModelProviderName, or leave both empty to apply everywhere.
type ExtraBody struct {
	VariantName       string `json:"variant_name,omitempty"`
	ModelProviderName string `json:"model_provider_name,omitempty"`

	// Pointer is a JSON pointer into the provider request body.
	Pointer string `json:"pointer"`

	// Value is written at Pointer. Ignored when Delete is set.
	Value any `json:"value,omitempty"`

	// Delete removes the value at Pointer instead of writing one.
	Delete bool `json:"delete,omitempty"`
}

// ExtraHeader adds or overrides an HTTP header on the gateway's request to a
// model provider.
type ExtraHeader struct {
	VariantName       string `json:"variant_name,omitempty"`
	ModelProviderName string `json:"model_provider_name,omitempty"`

	// Name is the header name.
	Name string `json:"name"`

	// Value is the header value.
	Value string `json:"value"`
}
