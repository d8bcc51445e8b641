package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/tensorzero/tensorzero-go/pkg/cli"
	"github.com/tensorzero/tensorzero-go/pkg/gateway"
)

var benchFlags struct {
	function    string
	model       string
	message     string
	rate        int
	concurrency int
	duration    time.Duration
	dryRun      bool
	noProgress  bool
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark a gateway",
	Long: `Send sustained inference load against the configured gateway and
report throughput and latency percentiles.

Requests are paced at --rate per second across --concurrency workers
for --duration. When the workers cannot keep up with the target rate,
ticks are dropped and the report shows the throughput actually
achieved.

Benchmark requests run with dryrun on unless --dryrun=false, so the
gateway does not record them. Benchmark traffic is never journaled
locally.

Examples:
  # 10 req/s for 30 seconds against a function
  tensorzero bench --function chat --rate 10 --duration 30s

  # Push a model harder, machine-readable report
  tensorzero bench --model "openai::gpt-4o-mini" --rate 50 --concurrency 16 \
    --duration 1m --format json`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&benchFlags.function, "function", "", "function name to invoke")
	benchCmd.Flags().StringVar(&benchFlags.model, "model", "", "model name for direct model inference")
	benchCmd.Flags().StringVarP(&benchFlags.message, "message", "m", "Reply with the single word: ok.", "user message sent on every request")
	benchCmd.Flags().IntVar(&benchFlags.rate, "rate", 10, "target requests per second")
	benchCmd.Flags().IntVar(&benchFlags.concurrency, "concurrency", 4, "concurrent workers")
	benchCmd.Flags().DurationVar(&benchFlags.duration, "duration", 10*time.Second, "how long to run")
	benchCmd.Flags().BoolVar(&benchFlags.dryRun, "dryrun", true, "run without recording on the gateway")
	benchCmd.Flags().BoolVar(&benchFlags.noProgress, "no-progress", false, "disable the progress bar")
}

// benchReport is the machine-readable benchmark result.
type benchReport struct {
	Target      string  `json:"target"`
	Rate        int     `json:"rate"`
	Concurrency int     `json:"concurrency"`
	Requests    int     `json:"requests"`
	Failures    int     `json:"failures"`
	ElapsedMS   float64 `json:"elapsed_ms"`
	Throughput  float64 `json:"throughput_rps"`
	MinMS       float64 `json:"latency_min_ms"`
	MeanMS      float64 `json:"latency_mean_ms"`
	P50MS       float64 `json:"latency_p50_ms"`
	P95MS       float64 `json:"latency_p95_ms"`
	P99MS       float64 `json:"latency_p99_ms"`
	MaxMS       float64 `json:"latency_max_ms"`
}

func runBench(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("csv output is not supported for benchmark reports")
	}

	if benchFlags.rate < 1 {
		return fmt.Errorf("rate must be >= 1, got %d", benchFlags.rate)
	}
	if benchFlags.concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", benchFlags.concurrency)
	}
	if benchFlags.duration < time.Second {
		return fmt.Errorf("duration must be >= 1s, got %s", benchFlags.duration)
	}

	tk, cleanup, err := newToolkit()
	if err != nil {
		return err
	}
	defer cleanup()

	req := &gateway.InferenceRequest{
		FunctionName: benchFlags.function,
		ModelName:    benchFlags.model,
		Input: gateway.Input{
			Messages: []gateway.Message{gateway.UserMessage(benchFlags.message)},
		},
		DryRun: benchFlags.dryRun,
	}
	if req.FunctionName == "" && req.ModelName == "" {
		req.FunctionName = tk.cfg.Defaults.FunctionName
	}
	if req.FunctionName == "" && req.ModelName == "" {
		return gateway.NewValidationError("function_name", "a target is required (--function or --model)")
	}

	ctx := cli.SetupSignalHandler()
	ctx, cancel := context.WithTimeout(ctx, benchFlags.duration)
	defer cancel()

	var progress cli.ProgressReporter
	if format == cli.FormatText && !benchFlags.noProgress {
		progress = cli.NewProgressReporter(os.Stderr)
		progress.Start(int64(benchFlags.rate) * int64(benchFlags.duration/time.Second))
	}

	var (
		mu        sync.Mutex
		latencies []time.Duration
		failures  int
		firstErr  error
	)

	// Pace tickets at the target rate; drop ticks the workers cannot
	// absorb so a slow gateway is not met with an ever-growing backlog.
	tickets := make(chan struct{})
	go func() {
		defer close(tickets)
		interval := time.Second / time.Duration(benchFlags.rate)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case tickets <- struct{}{}:
				case <-ctx.Done():
					return
				default:
				}
			}
		}
	}()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < benchFlags.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range tickets {
				callStart := time.Now()
				_, err := tk.client.Inference(ctx, req)
				elapsed := time.Since(callStart)

				if err != nil && ctx.Err() != nil {
					// Cut off by the deadline or an interrupt,
					// not a gateway failure.
					return
				}

				mu.Lock()
				if err != nil {
					failures++
					if firstErr == nil {
						firstErr = err
					}
				} else {
					latencies = append(latencies, elapsed)
				}
				completed := len(latencies) + failures
				mu.Unlock()

				if progress != nil {
					progress.Update(int64(completed))
				}
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	if progress != nil {
		progress.Finish()
	}

	report := buildBenchReport(req, latencies, failures, elapsed)

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, report); err != nil {
			return err
		}
	} else {
		printBenchReport(os.Stdout, report, firstErr)
	}

	if report.Requests > 0 && report.Failures == report.Requests {
		return cli.NewCommandError("bench", fmt.Errorf("every request failed: %w", firstErr))
	}
	return nil
}

func buildBenchReport(req *gateway.InferenceRequest, latencies []time.Duration, failures int, elapsed time.Duration) *benchReport {
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	report := &benchReport{
		Target:      metricLabel(req),
		Rate:        benchFlags.rate,
		Concurrency: benchFlags.concurrency,
		Requests:    len(latencies) + failures,
		Failures:    failures,
		ElapsedMS:   durationMS(elapsed),
	}
	if elapsed > 0 {
		report.Throughput = float64(report.Requests) / elapsed.Seconds()
	}
	if len(latencies) == 0 {
		return report
	}

	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	report.MinMS = durationMS(latencies[0])
	report.MeanMS = durationMS(total / time.Duration(len(latencies)))
	report.P50MS = durationMS(percentile(latencies, 50))
	report.P95MS = durationMS(percentile(latencies, 95))
	report.P99MS = durationMS(percentile(latencies, 99))
	report.MaxMS = durationMS(latencies[len(latencies)-1])
	return report
}

// percentile returns the nearest-rank percentile of sorted latencies.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func printBenchReport(w io.Writer, report *benchReport, firstErr error) {
	fmt.Fprintln(w, "Benchmark complete")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Target:       %s\n", report.Target)
	fmt.Fprintf(w, "Requests:     %d (%d failed)\n", report.Requests, report.Failures)
	fmt.Fprintf(w, "Elapsed:      %.1fs\n", report.ElapsedMS/1000)
	fmt.Fprintf(w, "Throughput:   %.1f req/s (target %d req/s)\n", report.Throughput, report.Rate)
	if report.Requests > report.Failures {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Latency min:  %.0fms\n", report.MinMS)
		fmt.Fprintf(w, "Latency mean: %.0fms\n", report.MeanMS)
		fmt.Fprintf(w, "Latency p50:  %.0fms\n", report.P50MS)
		fmt.Fprintf(w, "Latency p95:  %.0fms\n", report.P95MS)
		fmt.Fprintf(w, "Latency p99:  %.0fms\n", report.P99MS)
		fmt.Fprintf(w, "Latency max:  %.0fms\n", report.MaxMS)
	}
	if firstErr != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "First error:  %v\n", firstErr)
	}
}
