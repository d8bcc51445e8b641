package gateway

import (
	"github.com/google/uuid"
)

// InferenceRequest describes one call to the gateway's /inference endpoint.
//
// Exactly one of FunctionName and ModelName must be set: FunctionName runs a
// function configured on the gateway, ModelName addresses a model directly
// through the gateway's default function. All other fields are optional and
// are left out of the wire body when unset, so the gateway applies its own
// defaults.
type InferenceRequest struct {
	// FunctionName selects a configured gateway function.
	FunctionName string `json:"function_name,omitempty"`

	// ModelName addresses a model directly, bypassing function
	// configuration. Mutually exclusive with FunctionName.
	ModelName string `json:"model_name,omitempty"`

	// Input is the system instruction plus the conversation to run.
	Input Input `json:"input"`

	// EpisodeID attaches this inference to an existing episode. Nil lets
	// the gateway mint a fresh episode.
	EpisodeID *uuid.UUID `json:"episode_id,omitempty"`

	// Stream requests server-sent events instead of a single response.
	// Inference rejects a request with Stream set; InferenceStream sets
	// it on the caller's behalf.
	Stream bool `json:"stream,omitempty"`

	// Params overrides variant parameters for this request only, scoped
	// by variant type.
	Params *InferenceParams `json:"params,omitempty"`

	// VariantName pins a specific variant instead of letting the gateway
	// sample one.
	VariantName string `json:"variant_name,omitempty"`

	// DryRun executes the inference without the gateway recording it.
	DryRun bool `json:"dryrun,omitempty"`

	// Internal marks the inference as issued by tooling rather than an
	// application.
	Internal bool `json:"internal,omitempty"`

	// Tags attaches searchable key/value metadata to the inference.
	Tags map[string]string `json:"tags,omitempty"`

	// OutputSchema replaces a JSON function's configured output schema
	// for this request.
	OutputSchema map[string]any `json:"output_schema,omitempty"`

	// AllowedTools restricts which of the function's configured tools the
	// model may call.
	AllowedTools []string `json:"allowed_tools,omitempty"`

	// AdditionalTools defines tools at request time, beyond those
	// configured on the function.
	AdditionalTools []Tool `json:"additional_tools,omitempty"`

	// ToolChoice constrains how the model may use tools.
	ToolChoice *ToolChoice `json:"tool_choice,omitempty"`

	// ParallelToolCalls overrides the function's setting for multiple
	// tool calls in a single turn. Nil keeps the configured behavior.
	ParallelToolCalls *bool `json:"parallel_tool_calls,omitempty"`

	// CacheOptions tunes gateway-side inference caching.
	CacheOptions *CacheOptions `json:"cache_options,omitempty"`

	// IncludeOriginalResponse asks the gateway to attach the raw provider
	// payload to the response.
	IncludeOriginalResponse bool `json:"include_original_response,omitempty"`

	// Credentials supplies dynamic provider credentials resolved at
	// request time.
	Credentials map[string]string `json:"credentials,omitempty"`

	// ExtraBody patches the request bodies the gateway sends to model
	// providers.
	ExtraBody []ExtraBody `json:"extra_body,omitempty"`

	// ExtraHeaders adds headers to the requests the gateway sends to
	// model providers.
	ExtraHeaders []ExtraHeader `json:"extra_headers,omitempty"`
}

// validate checks request invariants client-side so a broken request is
// rejected before any bytes reach the wire.
func (r *InferenceRequest) validate() error {
	if r.FunctionName == "" && r.ModelName == "" {
		return NewValidationError("function_name",
			"one of function_name or model_name is required")
	}
	if r.FunctionName != "" && r.ModelName != "" {
		return NewValidationError("function_name",
			"function_name and model_name are mutually exclusive")
	}
	return r.Input.validate()
}
