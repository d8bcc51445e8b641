package gateway

// Role identifies the author of an input message. The gateway accepts
// conversations as alternating user/assistant turns; system instructions
// travel in the separate Input.System field.
type Role string

const (
	// RoleUser is an end-user message.
	RoleUser Role = "user"
	// RoleAssistant is a model-generated message fed back as history.
	RoleAssistant Role = "assistant"
)

// FinishReason explains why the gateway stopped generating.
type FinishReason string

const (
	// FinishStop means the model completed naturally or hit a stop sequence.
	FinishStop FinishReason = "stop"
	// FinishLength means the token limit was reached.
	FinishLength FinishReason = "length"
	// FinishToolCall means the model stopped to call a tool.
	FinishToolCall FinishReason = "tool_call"
	// FinishContentFilter means generation was cut off by a content filter.
	FinishContentFilter FinishReason = "content_filter"
	// FinishUnknown covers reasons this client version does not recognize.
	FinishUnknown FinishReason = "unknown"
)

// Usage reports token consumption for one inference as measured by the
// gateway across the model providers it called.
type Usage struct {
	// InputTokens is the number of tokens in the prompt.
	InputTokens int `json:"input_tokens"`

	// OutputTokens is the number of tokens generated.
	OutputTokens int `json:"output_tokens"`
}

// TotalTokens returns input plus output tokens.
func (u Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// add accumulates usage from a streaming chunk into u.
func (u *Usage) add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}
