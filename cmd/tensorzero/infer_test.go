package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tensorzero/tensorzero-go/pkg/config"
	"github.com/tensorzero/tensorzero-go/pkg/gateway"
)

// saveInferFlags snapshots the infer flag variables so tests can mutate
// them freely.
func saveInferFlags(t *testing.T) {
	t.Helper()
	orig := inferFlags
	t.Cleanup(func() { inferFlags = orig })
}

func TestBuildInputFromMessage(t *testing.T) {
	saveInferFlags(t)
	inferFlags.message = "hello"
	inferFlags.system = "be brief"

	input, err := buildInput(nil)
	if err != nil {
		t.Fatalf("buildInput() error = %v", err)
	}
	if input.System != "be brief" {
		t.Errorf("System = %v, want %q", input.System, "be brief")
	}
	if len(input.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(input.Messages))
	}
	if input.Messages[0].Role != gateway.RoleUser {
		t.Errorf("Role = %q, want %q", input.Messages[0].Role, gateway.RoleUser)
	}
	text, ok := input.Messages[0].Content[0].(*gateway.Text)
	if !ok {
		t.Fatalf("content block is %T, want *gateway.Text", input.Messages[0].Content[0])
	}
	if text.Text != "hello" {
		t.Errorf("Text = %q, want %q", text.Text, "hello")
	}
}

func TestBuildInputFromPositionalArg(t *testing.T) {
	saveInferFlags(t)

	input, err := buildInput([]string{"from arg"})
	if err != nil {
		t.Fatalf("buildInput() error = %v", err)
	}
	text := input.Messages[0].Content[0].(*gateway.Text)
	if text.Text != "from arg" {
		t.Errorf("Text = %q, want %q", text.Text, "from arg")
	}
	if input.System != nil {
		t.Errorf("System = %v, want nil", input.System)
	}
}

func TestBuildInputMessageFlagWinsOverArg(t *testing.T) {
	saveInferFlags(t)
	inferFlags.message = "from flag"

	input, err := buildInput([]string{"from arg"})
	if err != nil {
		t.Fatalf("buildInput() error = %v", err)
	}
	text := input.Messages[0].Content[0].(*gateway.Text)
	if text.Text != "from flag" {
		t.Errorf("Text = %q, want the flag value", text.Text)
	}
}

func TestBuildInputMissing(t *testing.T) {
	saveInferFlags(t)

	_, err := buildInput(nil)
	if err == nil {
		t.Fatal("buildInput() should fail without a message")
	}
	var validationErr *gateway.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("error is %T, want *gateway.ValidationError", err)
	}
}

func TestBuildInputFromFile(t *testing.T) {
	saveInferFlags(t)

	path := filepath.Join(t.TempDir(), "input.json")
	doc := `{
		"system": "you are terse",
		"messages": [
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": [{"type": "text", "text": "hello"}]},
			{"role": "user", "content": "again"}
		]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	inferFlags.input = path

	input, err := buildInput(nil)
	if err != nil {
		t.Fatalf("buildInput() error = %v", err)
	}
	if input.System != "you are terse" {
		t.Errorf("System = %v, want the document value", input.System)
	}
	if len(input.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(input.Messages))
	}
	if input.Messages[1].Role != gateway.RoleAssistant {
		t.Errorf("Role = %q, want %q", input.Messages[1].Role, gateway.RoleAssistant)
	}
}

func TestBuildInputBadJSON(t *testing.T) {
	saveInferFlags(t)

	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	inferFlags.input = path

	_, err := buildInput(nil)
	if err == nil {
		t.Fatal("buildInput() should fail on a bad document")
	}
	var validationErr *gateway.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("error is %T, want *gateway.ValidationError", err)
	}
}

func TestBuildInputMissingFile(t *testing.T) {
	saveInferFlags(t)
	inferFlags.input = filepath.Join(t.TempDir(), "absent.json")

	_, err := buildInput(nil)
	if err == nil {
		t.Fatal("buildInput() should fail on a missing file")
	}
}

func TestParseTagFlags(t *testing.T) {
	tags, err := parseTagFlags([]string{"env=staging", "team=ml", "note=a=b"})
	if err != nil {
		t.Fatalf("parseTagFlags() error = %v", err)
	}
	if tags["env"] != "staging" {
		t.Errorf("env = %q, want %q", tags["env"], "staging")
	}
	if tags["team"] != "ml" {
		t.Errorf("team = %q, want %q", tags["team"], "ml")
	}
	// The first '=' splits; the rest belongs to the value.
	if tags["note"] != "a=b" {
		t.Errorf("note = %q, want %q", tags["note"], "a=b")
	}
}

func TestParseTagFlagsEmpty(t *testing.T) {
	tags, err := parseTagFlags(nil)
	if err != nil {
		t.Fatalf("parseTagFlags() error = %v", err)
	}
	if tags != nil {
		t.Errorf("tags = %v, want nil", tags)
	}
}

func TestParseTagFlagsInvalid(t *testing.T) {
	for _, pair := range []string{"noequals", "=value"} {
		if _, err := parseTagFlags([]string{pair}); err == nil {
			t.Errorf("parseTagFlags(%q) should fail", pair)
		}
	}
}

func TestMergeTags(t *testing.T) {
	defaults := map[string]string{"env": "dev", "team": "ml"}
	flags := map[string]string{"env": "staging"}

	merged := mergeTags(defaults, flags)
	if merged["env"] != "staging" {
		t.Errorf("env = %q, want the flag value to win", merged["env"])
	}
	if merged["team"] != "ml" {
		t.Errorf("team = %q, want the default to survive", merged["team"])
	}

	if got := mergeTags(nil, flags); got["env"] != "staging" {
		t.Errorf("mergeTags(nil, flags) = %v, want the flag tags", got)
	}
	if got := mergeTags(defaults, nil); got["team"] != "ml" {
		t.Errorf("mergeTags(defaults, nil) = %v, want the defaults", got)
	}
}

func TestBuildInferenceRequestConfigDefaults(t *testing.T) {
	saveInferFlags(t)
	inferFlags.message = "hi"

	cfg := config.Default()
	cfg.Defaults.FunctionName = "chat"
	cfg.Defaults.VariantName = "baseline"
	cfg.Defaults.Tags = map[string]string{"env": "dev"}

	req, err := buildInferenceRequest(cfg, nil)
	if err != nil {
		t.Fatalf("buildInferenceRequest() error = %v", err)
	}
	if req.FunctionName != "chat" {
		t.Errorf("FunctionName = %q, want the config default", req.FunctionName)
	}
	if req.VariantName != "baseline" {
		t.Errorf("VariantName = %q, want the config default", req.VariantName)
	}
	if req.Tags["env"] != "dev" {
		t.Errorf("Tags = %v, want the config default tags", req.Tags)
	}
}

func TestBuildInferenceRequestModelSkipsDefaults(t *testing.T) {
	saveInferFlags(t)
	inferFlags.message = "hi"
	inferFlags.model = "openai::gpt-4o-mini"

	cfg := config.Default()
	cfg.Defaults.FunctionName = "chat"
	cfg.Defaults.VariantName = "baseline"

	req, err := buildInferenceRequest(cfg, nil)
	if err != nil {
		t.Fatalf("buildInferenceRequest() error = %v", err)
	}
	if req.FunctionName != "" {
		t.Errorf("FunctionName = %q, want empty for direct model inference", req.FunctionName)
	}
	// Variant pins are function-scoped; none applies without a function.
	if req.VariantName != "" {
		t.Errorf("VariantName = %q, want empty", req.VariantName)
	}
}

func TestBuildInferenceRequestFlagsWin(t *testing.T) {
	saveInferFlags(t)
	inferFlags.message = "hi"
	inferFlags.function = "summarize"
	inferFlags.tags = []string{"env=staging"}

	cfg := config.Default()
	cfg.Defaults.FunctionName = "chat"
	cfg.Defaults.Tags = map[string]string{"env": "dev", "team": "ml"}

	req, err := buildInferenceRequest(cfg, nil)
	if err != nil {
		t.Fatalf("buildInferenceRequest() error = %v", err)
	}
	if req.FunctionName != "summarize" {
		t.Errorf("FunctionName = %q, want the flag value", req.FunctionName)
	}
	if req.Tags["env"] != "staging" {
		t.Errorf("env tag = %q, want the flag value", req.Tags["env"])
	}
	if req.Tags["team"] != "ml" {
		t.Errorf("team tag = %q, want the default value", req.Tags["team"])
	}
}

func TestBuildInferenceRequestEpisode(t *testing.T) {
	saveInferFlags(t)
	inferFlags.message = "hi"
	inferFlags.function = "chat"
	inferFlags.episode = "0192f1a0-7a2b-7c3d-8e4f-5a6b7c8d9e0f"

	req, err := buildInferenceRequest(config.Default(), nil)
	if err != nil {
		t.Fatalf("buildInferenceRequest() error = %v", err)
	}
	if req.EpisodeID == nil {
		t.Fatal("EpisodeID is nil")
	}
	if req.EpisodeID.String() != inferFlags.episode {
		t.Errorf("EpisodeID = %s, want %s", req.EpisodeID, inferFlags.episode)
	}
}

func TestBuildInferenceRequestBadEpisode(t *testing.T) {
	saveInferFlags(t)
	inferFlags.message = "hi"
	inferFlags.function = "chat"
	inferFlags.episode = "not-a-uuid"

	_, err := buildInferenceRequest(config.Default(), nil)
	if err == nil {
		t.Fatal("buildInferenceRequest() should fail on a bad episode ID")
	}
	var validationErr *gateway.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("error is %T, want *gateway.ValidationError", err)
	}
}

func TestMetricLabel(t *testing.T) {
	req := &gateway.InferenceRequest{FunctionName: "chat"}
	if got := metricLabel(req); got != "chat" {
		t.Errorf("metricLabel = %q, want %q", got, "chat")
	}

	req = &gateway.InferenceRequest{ModelName: "openai::gpt-4o-mini"}
	if got := metricLabel(req); got != "openai::gpt-4o-mini" {
		t.Errorf("metricLabel = %q, want %q", got, "openai::gpt-4o-mini")
	}
}
