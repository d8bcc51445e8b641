// Package openaicompat points sashabaranov/go-openai clients at a TensorZero
// gateway's OpenAI-compatible surface.
//
// The gateway serves POST {base}/openai/v1/chat/completions and routes on the
// model string: FunctionModel and Model build the strings that select a
// TensorZero function or a bare model. Gateway parameters the OpenAI schema
// has no field for (episode IDs, variant pins, cache options) travel as
// tensorzero:: extension fields, which Transport folds into outgoing request
// bodies.
//
//	client := openaicompat.NewClient("http://localhost:3000", "")
//	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
//		Model: openaicompat.FunctionModel("extract_entities"),
//		Messages: []openai.ChatCompletionMessage{
//			{Role: openai.ChatMessageRoleUser, Content: "...."},
//		},
//	})
package openaicompat

import (
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	functionPrefix = "tensorzero::function_name::"
	modelPrefix    = "tensorzero::model_name::"
	variantInfix   = "::variant_name::"
)

// FunctionModel returns the model string that routes a chat completion
// through the named gateway function.
func FunctionModel(name string) string { return functionPrefix + name }

// Model returns the model string that calls the named model directly,
// bypassing function configuration.
func Model(name string) string { return modelPrefix + name }

// ModelInfo is the decoded form of a gateway model string.
type ModelInfo struct {
	FunctionName string
	ModelName    string
	VariantName  string
}

// ParseModel decodes a model string as echoed by the gateway, such as
// "tensorzero::function_name::extract::variant_name::baseline". Model names
// may themselves contain "::" and are taken verbatim. ok reports whether s
// carried a recognized tensorzero prefix.
func ParseModel(s string) (info ModelInfo, ok bool) {
	switch {
	case strings.HasPrefix(s, functionPrefix):
		rest := strings.TrimPrefix(s, functionPrefix)
		if name, variant, found := strings.Cut(rest, variantInfix); found {
			info.FunctionName, info.VariantName = name, variant
		} else {
			info.FunctionName = rest
		}
		return info, info.FunctionName != ""
	case strings.HasPrefix(s, modelPrefix):
		info.ModelName = strings.TrimPrefix(s, modelPrefix)
		return info, info.ModelName != ""
	default:
		return ModelInfo{}, false
	}
}

// ClientConfig returns a go-openai configuration aimed at the gateway.
// gatewayURL is the gateway base URL, for example "http://localhost:3000";
// the /openai/v1 suffix is appended here. apiKey may be empty for gateways
// without authentication.
func ClientConfig(gatewayURL, apiKey string) openai.ClientConfig {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(gatewayURL, "/") + "/openai/v1"
	return cfg
}

// NewClient returns a go-openai client speaking to the gateway.
func NewClient(gatewayURL, apiKey string) *openai.Client {
	return openai.NewClientWithConfig(ClientConfig(gatewayURL, apiKey))
}

// NewClientWithExtensions returns a go-openai client whose chat completion
// requests carry the given gateway extension fields.
func NewClientWithExtensions(gatewayURL, apiKey string, ext Extensions) *openai.Client {
	cfg := ClientConfig(gatewayURL, apiKey)
	cfg.HTTPClient = &http.Client{Transport: NewTransport(nil, ext)}
	return openai.NewClientWithConfig(cfg)
}
