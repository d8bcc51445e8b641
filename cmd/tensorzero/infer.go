package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tensorzero/tensorzero-go/pkg/cli"
	"github.com/tensorzero/tensorzero-go/pkg/config"
	"github.com/tensorzero/tensorzero-go/pkg/gateway"
	"github.com/tensorzero/tensorzero-go/pkg/history"
)

var inferFlags struct {
	function string
	model    string
	message  string
	system   string
	input    string
	stream   bool
	variant  string
	episode  string
	dryRun   bool
	tags     []string
}

var inferCmd = &cobra.Command{
	Use:   "infer [message]",
	Short: "Run an inference through the gateway",
	Long: `Run one inference through the TensorZero gateway.

The input is either a plain user message (--message, or the positional
argument) with an optional --system message, or a full input document
read as JSON from a file with --input (use "-" for stdin). The JSON
document has the gateway's input shape:

  {"system": "...", "messages": [{"role": "user", "content": "..."}]}

Exactly one of --function and --model selects what runs; when neither
is given the defaults section of the config file applies.

The response content is written to stdout. With --format text a short
receipt (inference ID, episode ID, token usage) follows on stderr; with
--format json the full response is printed as JSON, and streaming mode
emits one JSON chunk per line.

Examples:
  # Invoke a configured function
  tensorzero infer --function extract-entities "Acme hired Jane Doe."

  # Direct model inference, streamed
  tensorzero infer --model "openai::gpt-4o-mini" --stream "Tell me a story."

  # Continue an episode with tags
  tensorzero infer --function chat --episode 0192f1a0-7a2b-7c3d-8e4f-5a6b7c8d9e0f \
    --tag env=staging "And then what?"

  # Full input document from a file
  tensorzero infer --function chat --input conversation.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfer,
}

func init() {
	rootCmd.AddCommand(inferCmd)

	inferCmd.Flags().StringVar(&inferFlags.function, "function", "", "function name to invoke")
	inferCmd.Flags().StringVar(&inferFlags.model, "model", "", "model name for direct model inference")
	inferCmd.Flags().StringVarP(&inferFlags.message, "message", "m", "", "user message text")
	inferCmd.Flags().StringVar(&inferFlags.system, "system", "", "system message text")
	inferCmd.Flags().StringVar(&inferFlags.input, "input", "", "read the input document as JSON from a file (- for stdin)")
	inferCmd.Flags().BoolVar(&inferFlags.stream, "stream", false, "stream the response as it is generated")
	inferCmd.Flags().StringVar(&inferFlags.variant, "variant", "", "pin a specific variant")
	inferCmd.Flags().StringVar(&inferFlags.episode, "episode", "", "episode ID to continue")
	inferCmd.Flags().BoolVar(&inferFlags.dryRun, "dryrun", false, "run without recording on the gateway")
	inferCmd.Flags().StringArrayVar(&inferFlags.tags, "tag", nil, "tag as key=value (repeatable)")
}

func runInfer(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("csv output is not supported for inference responses")
	}

	tk, cleanup, err := newToolkit()
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := buildInferenceRequest(tk.cfg, args)
	if err != nil {
		return err
	}

	store, err := openStore(tk.cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx := cli.SetupSignalHandler()

	if inferFlags.stream {
		return streamInference(ctx, tk, store, req, format)
	}
	return blockingInference(ctx, tk, store, req, format)
}

// buildInferenceRequest assembles the request from flags, falling back to
// the config defaults for function, variant, and tags.
func buildInferenceRequest(cfg *config.Config, args []string) (*gateway.InferenceRequest, error) {
	input, err := buildInput(args)
	if err != nil {
		return nil, err
	}

	req := &gateway.InferenceRequest{
		FunctionName: inferFlags.function,
		ModelName:    inferFlags.model,
		Input:        input,
		VariantName:  inferFlags.variant,
		DryRun:       inferFlags.dryRun,
	}

	if req.FunctionName == "" && req.ModelName == "" {
		req.FunctionName = cfg.Defaults.FunctionName
	}
	if req.FunctionName != "" && req.VariantName == "" {
		req.VariantName = cfg.Defaults.VariantName
	}

	tags, err := parseTagFlags(inferFlags.tags)
	if err != nil {
		return nil, err
	}
	req.Tags = mergeTags(cfg.Defaults.Tags, tags)

	if inferFlags.episode != "" {
		id, err := uuid.Parse(inferFlags.episode)
		if err != nil {
			return nil, gateway.NewValidationError("episode_id", fmt.Sprintf("invalid episode ID %q", inferFlags.episode))
		}
		req.EpisodeID = &id
	}

	return req, nil
}

// buildInput reads the input document from --input when set, otherwise
// builds a single user message from --message or the positional argument.
func buildInput(args []string) (gateway.Input, error) {
	if inferFlags.input != "" {
		var raw []byte
		var err error
		if inferFlags.input == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(inferFlags.input)
		}
		if err != nil {
			return gateway.Input{}, fmt.Errorf("failed to read input: %w", err)
		}

		var input gateway.Input
		if err := json.Unmarshal(raw, &input); err != nil {
			return gateway.Input{}, gateway.NewValidationError("input", fmt.Sprintf("invalid input document: %v", err))
		}
		return input, nil
	}

	message := inferFlags.message
	if message == "" && len(args) > 0 {
		message = args[0]
	}
	if message == "" {
		return gateway.Input{}, gateway.NewValidationError("input", "a user message is required (--message, positional argument, or --input)")
	}

	input := gateway.Input{
		Messages: []gateway.Message{gateway.UserMessage(message)},
	}
	if inferFlags.system != "" {
		input.System = inferFlags.system
	}
	return input, nil
}

// parseTagFlags converts repeated key=value flags into a tag map.
func parseTagFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, gateway.NewValidationError("tags", fmt.Sprintf("invalid tag %q (expected key=value)", pair))
		}
		tags[key] = value
	}
	return tags, nil
}

// mergeTags overlays flag tags on top of the config defaults.
func mergeTags(defaults, flags map[string]string) map[string]string {
	if len(defaults) == 0 {
		return flags
	}
	merged := make(map[string]string, len(defaults)+len(flags))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range flags {
		merged[k] = v
	}
	return merged
}

// metricLabel is the function label used for metrics and the journal: the
// function name, or the model name for direct model inference.
func metricLabel(req *gateway.InferenceRequest) string {
	if req.FunctionName != "" {
		return req.FunctionName
	}
	return req.ModelName
}

func blockingInference(ctx context.Context, tk *toolkit, store history.Store, req *gateway.InferenceRequest, format cli.OutputFormat) error {
	record := history.NewRecord(history.KindInference)
	record.FunctionName = req.FunctionName
	record.Model = req.ModelName
	record.VariantName = req.VariantName
	if req.EpisodeID != nil {
		record.EpisodeID = req.EpisodeID.String()
	}

	start := time.Now()
	resp, err := tk.client.Inference(ctx, req)
	record.StartedAt = start.UTC()
	record.Duration = time.Since(start)

	if err != nil {
		record.Status = history.StatusError
		record.Error = err.Error()
		tk.collector.RecordInference(metricLabel(req), req.VariantName, "error", record.Duration)
		appendRecord(store, tk.logger, record)
		return cli.NewCommandError("infer", err)
	}

	env := resp.Envelope()
	record.VariantName = env.VariantName
	record.EpisodeID = env.EpisodeID.String()
	record.InferenceID = env.InferenceID.String()
	record.InputTokens = env.Usage.InputTokens
	record.OutputTokens = env.Usage.OutputTokens
	record.FinishReason = string(env.FinishReason)

	tk.collector.RecordInference(metricLabel(req), env.VariantName, "ok", record.Duration)
	tk.collector.RecordTokens(metricLabel(req), env.Usage.InputTokens, env.Usage.OutputTokens)
	appendRecord(store, tk.logger, record)

	if format == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, resp)
	}

	printResponseText(os.Stdout, resp)
	printReceipt(os.Stderr, record)
	return nil
}

// printResponseText writes the generated content. Thought blocks are
// reasoning, not answer content; use --format json to see them.
func printResponseText(w io.Writer, resp gateway.InferenceResponse) {
	switch r := resp.(type) {
	case *gateway.ChatInferenceResponse:
		for _, block := range r.Content {
			switch b := block.(type) {
			case *gateway.Text:
				fmt.Fprintln(w, b.Text)
			case *gateway.ToolCall:
				fmt.Fprintf(w, "[tool call] %s %s\n", b.RawName, b.RawArguments)
			}
		}
	case *gateway.JSONInferenceResponse:
		fmt.Fprintln(w, r.Output.Raw)
	}
}

// printReceipt writes the call metadata that later commands need, most
// importantly the inference ID that feedback targets.
func printReceipt(w io.Writer, record *history.Record) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Inference ID: %s\n", record.InferenceID)
	fmt.Fprintf(w, "Episode ID:   %s\n", record.EpisodeID)
	if record.VariantName != "" {
		fmt.Fprintf(w, "Variant:      %s\n", record.VariantName)
	}
	fmt.Fprintf(w, "Tokens:       %d (input: %d, output: %d)\n",
		record.TotalTokens(), record.InputTokens, record.OutputTokens)
	fmt.Fprintf(w, "Duration:     %s\n", record.Duration.Round(time.Millisecond))
}

func streamInference(ctx context.Context, tk *toolkit, store history.Store, req *gateway.InferenceRequest, format cli.OutputFormat) error {
	record := history.NewRecord(history.KindInference)
	record.FunctionName = req.FunctionName
	record.Model = req.ModelName
	record.VariantName = req.VariantName
	record.Streamed = true

	label := metricLabel(req)

	start := time.Now()
	events, err := tk.client.InferenceStream(ctx, req)
	record.StartedAt = start.UTC()
	if err != nil {
		record.Duration = time.Since(start)
		record.Status = history.StatusError
		record.Error = err.Error()
		tk.collector.RecordInference(label, req.VariantName, "error", record.Duration)
		appendRecord(store, tk.logger, record)
		return cli.NewCommandError("infer", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	var (
		first     = true
		chunks    int
		streamErr error
	)
	for event := range events {
		if event.Err != nil {
			streamErr = event.Err
			break
		}
		if first {
			tk.collector.RecordTimeToFirstToken(label, time.Since(start))
			first = false
		}
		chunks++

		env := event.Chunk.Envelope()
		record.InferenceID = env.InferenceID.String()
		record.EpisodeID = env.EpisodeID.String()
		record.VariantName = env.VariantName
		if env.Usage != nil {
			record.InputTokens = env.Usage.InputTokens
			record.OutputTokens = env.Usage.OutputTokens
		}
		if env.FinishReason != "" {
			record.FinishReason = string(env.FinishReason)
		}

		if format == cli.FormatJSON {
			if err := encoder.Encode(event.Chunk); err != nil {
				streamErr = err
				break
			}
			continue
		}
		printChunkText(os.Stdout, event.Chunk)
	}
	record.Duration = time.Since(start)

	if streamErr == nil && ctx.Err() != nil {
		streamErr = ctx.Err()
	}
	if streamErr != nil {
		record.Status = history.StatusError
		record.Error = streamErr.Error()
		tk.collector.RecordInference(label, record.VariantName, "error", record.Duration)
		appendRecord(store, tk.logger, record)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return cli.NewCommandError("infer", streamErr)
	}

	tk.collector.RecordInference(label, record.VariantName, "ok", record.Duration)
	tk.collector.RecordChunks(label, chunks)
	tk.collector.RecordTokens(label, record.InputTokens, record.OutputTokens)
	appendRecord(store, tk.logger, record)

	if format != cli.FormatJSON {
		fmt.Fprintln(os.Stdout)
		printReceipt(os.Stderr, record)
	}
	return nil
}

// printChunkText writes the content fragments of one chunk. Tool call
// argument fragments are generated output and print as they arrive;
// thought fragments do not.
func printChunkText(w io.Writer, chunk gateway.InferenceChunk) {
	switch c := chunk.(type) {
	case *gateway.ChatChunk:
		for _, block := range c.Content {
			switch b := block.(type) {
			case *gateway.TextChunk:
				fmt.Fprint(w, b.Text)
			case *gateway.ToolCallChunk:
				fmt.Fprint(w, b.RawArguments)
			}
		}
	case *gateway.JSONChunk:
		fmt.Fprint(w, c.Raw)
	}
}
