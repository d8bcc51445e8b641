package gatewaytest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Canned payload text, matching what the gateway's dummy providers produce.
const (
	// ChatText is the content of the canned chat response.
	ChatText = "Megumin gleefully chanted her spell, unleashing a thunderous explosion that lit up the sky and left a massive crater in its wake."

	// ThoughtText is the reasoning content of the canned thought block.
	ThoughtText = "Considering the request before answering."

	// JSONRaw is the raw output of the canned JSON response.
	JSONRaw = `{"answer":"Hardcode"}`

	// VariantName is the variant every canned response reports.
	VariantName = "test"
)

// StreamWords are the text deltas of the canned chat stream, in order.
var StreamWords = []string{
	"Wally,", " the", " golden", " retriever,", " wagged", " his", " tail",
	" excitedly", " as", " he", " devoured", " a", " slice", " of",
	" cheese", " pizza.",
}

// JSONStreamFragments are the raw deltas of the canned JSON stream.
var JSONStreamFragments = []string{`{"name"`, `:"John"`, `,"age"`, `:30}`}

// NewID returns a fresh UUIDv7 string, the ID format the gateway uses.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func marshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func envelope(inferenceID, episodeID string) map[string]any {
	return map[string]any{
		"inference_id": inferenceID,
		"episode_id":   episodeID,
		"variant_name": VariantName,
	}
}

// ChatResponse returns a canned chat function response.
func ChatResponse() Response {
	body := envelope(NewID(), NewID())
	body["content"] = []map[string]any{
		{"type": "text", "text": ChatText},
	}
	body["usage"] = map[string]any{"input_tokens": 10, "output_tokens": 10}
	body["finish_reason"] = "stop"
	return Response{StatusCode: http.StatusOK, Body: body}
}

// ToolCallResponse returns a canned chat response whose content is a single
// validated tool call.
func ToolCallResponse() Response {
	body := envelope(NewID(), NewID())
	body["content"] = []map[string]any{
		{
			"type":          "tool_call",
			"id":            "0",
			"raw_name":      "get_temperature",
			"raw_arguments": `{"location":"Brooklyn","units":"celsius"}`,
			"name":          "get_temperature",
			"arguments":     map[string]any{"location": "Brooklyn", "units": "celsius"},
		},
	}
	body["usage"] = map[string]any{"input_tokens": 10, "output_tokens": 10}
	body["finish_reason"] = "tool_call"
	return Response{StatusCode: http.StatusOK, Body: body}
}

// ThoughtResponse returns a canned chat response from a reasoning model:
// a thought block followed by text.
func ThoughtResponse() Response {
	body := envelope(NewID(), NewID())
	body["content"] = []map[string]any{
		{"type": "thought", "text": ThoughtText},
		{"type": "text", "text": ChatText},
	}
	body["usage"] = map[string]any{"input_tokens": 10, "output_tokens": 10}
	body["finish_reason"] = "stop"
	return Response{StatusCode: http.StatusOK, Body: body}
}

// JSONResponse returns a canned JSON function response.
func JSONResponse() Response {
	body := envelope(NewID(), NewID())
	body["output"] = map[string]any{
		"raw":    JSONRaw,
		"parsed": map[string]any{"answer": "Hardcode"},
	}
	body["usage"] = map[string]any{"input_tokens": 10, "output_tokens": 10}
	body["finish_reason"] = "stop"
	return Response{StatusCode: http.StatusOK, Body: body}
}

// ChatStream returns a canned streaming chat response: one text delta per
// word of StreamWords, then a trailing chunk with usage and finish reason.
func ChatStream() Response {
	inferenceID, episodeID := NewID(), NewID()
	chunks := make([]string, 0, len(StreamWords)+1)
	for _, word := range StreamWords {
		chunk := envelope(inferenceID, episodeID)
		chunk["content"] = []map[string]any{
			{"type": "text", "id": "0", "text": word},
		}
		chunks = append(chunks, marshal(chunk))
	}

	final := envelope(inferenceID, episodeID)
	final["content"] = []map[string]any{}
	final["usage"] = map[string]any{"input_tokens": 10, "output_tokens": 16}
	final["finish_reason"] = "stop"
	chunks = append(chunks, marshal(final))

	return Response{StreamChunks: chunks}
}

// ToolCallStream returns a canned streaming tool call: the raw name arrives
// on the first delta, the argument JSON in fragments.
func ToolCallStream() Response {
	inferenceID, episodeID := NewID(), NewID()
	fragments := []string{`{"location"`, `:"Brooklyn"`, `,"units"`, `:"celsius"}`}

	chunks := make([]string, 0, len(fragments)+1)
	for i, fragment := range fragments {
		chunk := envelope(inferenceID, episodeID)
		name := ""
		if i == 0 {
			name = "get_temperature"
		}
		chunk["content"] = []map[string]any{
			{"type": "tool_call", "id": "0", "raw_name": name, "raw_arguments": fragment},
		}
		chunks = append(chunks, marshal(chunk))
	}

	final := envelope(inferenceID, episodeID)
	final["content"] = []map[string]any{}
	final["usage"] = map[string]any{"input_tokens": 10, "output_tokens": 5}
	final["finish_reason"] = "tool_call"
	chunks = append(chunks, marshal(final))

	return Response{StreamChunks: chunks}
}

// JSONStream returns a canned streaming JSON response: raw fragments, then
// a trailing usage chunk.
func JSONStream() Response {
	inferenceID, episodeID := NewID(), NewID()
	chunks := make([]string, 0, len(JSONStreamFragments)+1)
	for _, fragment := range JSONStreamFragments {
		chunk := envelope(inferenceID, episodeID)
		chunk["raw"] = fragment
		chunks = append(chunks, marshal(chunk))
	}

	final := envelope(inferenceID, episodeID)
	final["raw"] = ""
	final["usage"] = map[string]any{"input_tokens": 10, "output_tokens": 4}
	final["finish_reason"] = "stop"
	chunks = append(chunks, marshal(final))

	return Response{StreamChunks: chunks}
}

// ErrorResponse returns a gateway-shaped error reply.
func ErrorResponse(statusCode int, message string) Response {
	return Response{
		StatusCode: statusCode,
		Body:       map[string]any{"error": message},
	}
}

// AuthError returns a 401 reply.
func AuthError() Response {
	return ErrorResponse(http.StatusUnauthorized, "Unauthorized")
}

// RateLimitError returns a 429 reply with a Retry-After header.
func RateLimitError(retryAfterSeconds int) Response {
	r := ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	r.Headers = map[string]string{"Retry-After": strconv.Itoa(retryAfterSeconds)}
	return r
}

// ServerError returns a 500 reply.
func ServerError() Response {
	return ErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// SlowResponse delays another response, for timeout tests.
func SlowResponse(delay time.Duration, inner Response) Response {
	inner.Delay = delay
	return inner
}

// FeedbackAck returns a canned feedback acknowledgement.
func FeedbackAck() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"feedback_id": NewID()},
	}
}

// RunAck returns a canned dynamic evaluation run acknowledgement.
func RunAck() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"run_id": NewID()},
	}
}

// EpisodeAck returns a canned dynamic evaluation episode acknowledgement.
func EpisodeAck() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"episode_id": NewID()},
	}
}

// StatusOK returns a canned /status reply.
func StatusOK() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"status": "ok", "version": "2025.7.3"},
	}
}

// HealthOK returns a canned /health reply.
func HealthOK() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"gateway": "ok", "clickhouse": "ok"},
	}
}
