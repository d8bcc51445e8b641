package gateway

import (
	"encoding/json"
	"fmt"
)

// Input is the structured input of an inference request: optional system
// instructions plus the conversation so far.
type Input struct {
	// System is the system instruction. It is either a string or, for
	// functions with a system template, a map[string]any of template
	// arguments. Nil means no system content.
	System any `json:"system,omitempty"`

	// Messages is the conversation history in order.
	Messages []Message `json:"messages"`
}

// Message is a single conversation turn.
type Message struct {
	// Role is the author of the turn, user or assistant.
	Role Role `json:"role"`

	// Content is the ordered list of content blocks in the turn.
	Content []ContentBlock `json:"content"`
}

// UserMessage builds a user turn from content blocks. Strings are accepted
// directly as shorthand for text blocks.
func UserMessage(content ...any) Message {
	return Message{Role: RoleUser, Content: blocksOf(content)}
}

// AssistantMessage builds an assistant turn from content blocks. Strings are
// accepted directly as shorthand for text blocks. Blocks decoded from a
// previous response can be passed through unchanged.
func AssistantMessage(content ...any) Message {
	return Message{Role: RoleAssistant, Content: blocksOf(content)}
}

func blocksOf(content []any) []ContentBlock {
	blocks := make([]ContentBlock, 0, len(content))
	for _, c := range content {
		switch v := c.(type) {
		case string:
			blocks = append(blocks, NewText(v))
		case ContentBlock:
			blocks = append(blocks, v)
		case []ContentBlock:
			blocks = append(blocks, v...)
		default:
			// Defer the error to request validation, where it can carry
			// the field path.
			blocks = append(blocks, &invalidBlock{value: c})
		}
	}
	return blocks
}

// invalidBlock marks content that could not be interpreted; it fails request
// validation with a descriptive error instead of panicking at build time.
type invalidBlock struct {
	value any
}

func (*invalidBlock) contentBlock() {}

func (b *invalidBlock) MarshalJSON() ([]byte, error) {
	return nil, fmt.Errorf("unsupported content value of type %T", b.value)
}

// UnmarshalJSON accepts either the canonical block list or the string
// shorthand the gateway also permits for message content.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role

	if len(raw.Content) == 0 {
		m.Content = nil
		return nil
	}
	if raw.Content[0] == '"' {
		var text string
		if err := json.Unmarshal(raw.Content, &text); err != nil {
			return err
		}
		m.Content = []ContentBlock{NewText(text)}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw.Content, &items); err != nil {
		return err
	}
	blocks, err := decodeContentBlocks(items)
	if err != nil {
		return err
	}
	m.Content = blocks
	return nil
}

// validate checks input invariants before serialization.
func (in *Input) validate() error {
	switch in.System.(type) {
	case nil, string, map[string]any:
	default:
		return NewValidationError("input.system",
			fmt.Sprintf("system must be a string or map[string]any, got %T", in.System))
	}

	for i, msg := range in.Messages {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			return NewValidationError(
				fmt.Sprintf("input.messages[%d].role", i),
				fmt.Sprintf("role must be %q or %q, got %q", RoleUser, RoleAssistant, msg.Role))
		}
		if len(msg.Content) == 0 {
			return NewValidationError(
				fmt.Sprintf("input.messages[%d].content", i),
				"message content must not be empty")
		}
		for j, block := range msg.Content {
			if bad, ok := block.(*invalidBlock); ok {
				return NewValidationError(
					fmt.Sprintf("input.messages[%d].content[%d]", i, j),
					fmt.Sprintf("unsupported content value of type %T", bad.value))
			}
		}
	}
	return nil
}
