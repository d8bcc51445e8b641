package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tensorzero/tensorzero-go/pkg/cli"
	"github.com/tensorzero/tensorzero-go/pkg/gateway"
	"github.com/tensorzero/tensorzero-go/pkg/history"
)

var feedbackFlags struct {
	metric    string
	value     string
	inference string
	episode   string
	dryRun    bool
	tags      []string
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback [value]",
	Short: "Send feedback for an inference or episode",
	Long: `Attach a metric value to a past inference or episode.

The target is exactly one of --inference and --episode, using the IDs
printed by the infer command. The value is parsed by shape: "true" and
"false" become booleans, numbers become floats, and anything else is
sent as a string (comment metrics).

Examples:
  # Boolean metric on an inference
  tensorzero feedback --metric task-success --inference 0192f1a0-7a2b-7c3d-8e4f-5a6b7c8d9e0f true

  # Float metric on an episode
  tensorzero feedback --metric user-rating --episode 0192f1a0-7a2b-7c3d-8e4f-5a6b7c8d9e0f 4.5

  # Comment
  tensorzero feedback --metric comment --inference 0192f1a0-7a2b-7c3d-8e4f-5a6b7c8d9e0f \
    --value "The summary missed the deadline change."`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFeedback,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().StringVar(&feedbackFlags.metric, "metric", "", "metric name (required)")
	feedbackCmd.Flags().StringVar(&feedbackFlags.value, "value", "", "metric value")
	feedbackCmd.Flags().StringVar(&feedbackFlags.inference, "inference", "", "target inference ID")
	feedbackCmd.Flags().StringVar(&feedbackFlags.episode, "episode", "", "target episode ID")
	feedbackCmd.Flags().BoolVar(&feedbackFlags.dryRun, "dryrun", false, "run without recording on the gateway")
	feedbackCmd.Flags().StringArrayVar(&feedbackFlags.tags, "tag", nil, "tag as key=value (repeatable)")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("csv output is not supported for feedback")
	}

	tk, cleanup, err := newToolkit()
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := buildFeedbackRequest(args)
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

	record := history.NewRecord(history.KindFeedback)
	record.MetricName = req.MetricName
	if req.InferenceID != nil {
		record.InferenceID = req.InferenceID.String()
	}
	if req.EpisodeID != nil {
		record.EpisodeID = req.EpisodeID.String()
	}

	start := time.Now()
	resp, err := tk.client.Feedback(ctx, req)
	record.StartedAt = start.UTC()
	record.Duration = time.Since(start)

	if err != nil {
		record.Status = history.StatusError
		record.Error = err.Error()
		tk.collector.RecordFeedback(req.MetricName, "error")
		appendRecord(store, tk.logger, record)
		return cli.NewCommandError("feedback", err)
	}

	tk.collector.RecordFeedback(req.MetricName, "ok")
	appendRecord(store, tk.logger, record)

	if format == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, resp)
	}
	fmt.Printf("✓ Feedback recorded\n")
	fmt.Printf("Feedback ID: %s\n", resp.FeedbackID)
	return nil
}

// buildFeedbackRequest assembles the request from flags. The gateway client
// enforces that exactly one target is set.
func buildFeedbackRequest(args []string) (*gateway.FeedbackRequest, error) {
	if feedbackFlags.metric == "" {
		return nil, gateway.NewValidationError("metric_name", "a metric name is required (--metric)")
	}

	value := feedbackFlags.value
	if value == "" && len(args) > 0 {
		value = args[0]
	}
	if value == "" {
		return nil, gateway.NewValidationError("value", "a value is required (--value or positional argument)")
	}

	tags, err := parseTagFlags(feedbackFlags.tags)
	if err != nil {
		return nil, err
	}

	req := &gateway.FeedbackRequest{
		MetricName: feedbackFlags.metric,
		Value:      parseFeedbackValue(value),
		Tags:       tags,
		DryRun:     feedbackFlags.dryRun,
	}

	if feedbackFlags.inference != "" {
		id, err := uuid.Parse(feedbackFlags.inference)
		if err != nil {
			return nil, gateway.NewValidationError("inference_id", fmt.Sprintf("invalid inference ID %q", feedbackFlags.inference))
		}
		req.InferenceID = &id
	}
	if feedbackFlags.episode != "" {
		id, err := uuid.Parse(feedbackFlags.episode)
		if err != nil {
			return nil, gateway.NewValidationError("episode_id", fmt.Sprintf("invalid episode ID %q", feedbackFlags.episode))
		}
		req.EpisodeID = &id
	}

	return req, nil
}

// parseFeedbackValue maps the flag text onto the metric value types the
// gateway accepts: booleans, floats, and strings.
func parseFeedbackValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
