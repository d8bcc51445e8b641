package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tensorzero/tensorzero-go/pkg/cli"
	"github.com/tensorzero/tensorzero-go/pkg/config"
	"github.com/tensorzero/tensorzero-go/pkg/gateway"
	"github.com/tensorzero/tensorzero-go/pkg/history"
	"github.com/tensorzero/tensorzero-go/pkg/history/storage"
	"github.com/tensorzero/tensorzero-go/pkg/telemetry/logging"
	"github.com/tensorzero/tensorzero-go/pkg/telemetry/metrics"
	"github.com/tensorzero/tensorzero-go/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile    string
	gatewayURL string
	verbose    bool
	formatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "tensorzero",
	Short: "TensorZero gateway client",
	Long: `Tensorzero talks to a TensorZero gateway from the command line.

It runs inferences (blocking or streaming), submits feedback, checks
gateway health, and manages the local call journal. Calls are journaled
and counted as Prometheus metrics when enabled in the configuration.

Configuration is read from tensorzero.yaml (override with --config);
TENSORZERO_* environment variables take precedence over the file.

For more information, visit: https://github.com/tensorzero/tensorzero-go`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "tensorzero.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway-url", "", "override gateway base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "output format: text, json, csv")
}

// loadConfig resolves configuration for a command run: file, environment,
// then flag overrides. The default config path is allowed to be absent; a
// path given explicitly with --config is not.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rootCmd.PersistentFlags().Changed("config") {
		cfg, err = config.LoadWithEnvOverrides(cfgFile)
	} else {
		cfg, err = config.LoadOrDefault(cfgFile)
	}
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}

	if gatewayURL != "" {
		cfg.Gateway.BaseURL = gatewayURL
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// toolkit bundles the wiring a command needs to talk to the gateway.
type toolkit struct {
	cfg       *config.Config
	logger    *logging.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer
	client    *gateway.Client
}

// newToolkit loads configuration and builds the gateway client with
// telemetry chained in. The returned cleanup flushes pending trace spans;
// call it before the command returns.
func newToolkit() (*toolkit, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.FromConfig(&cfg.Telemetry.Logging)
	if err != nil {
		return nil, nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return nil, nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}

	client, err := gateway.NewClient(gateway.Config{
		BaseURL:             cfg.Gateway.BaseURL,
		APIKey:              cfg.Gateway.APIKey,
		Timeout:             cfg.Gateway.Timeout,
		MaxRetries:          cfg.Gateway.MaxRetries,
		MaxIdleConns:        cfg.Gateway.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Gateway.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Gateway.IdleConnTimeout,
		Transport:           tracing.NewTransport(tracer, nil),
		Logger:              logger.WithComponent("gateway").Slog(),
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}

	return &toolkit{
		cfg:       cfg,
		logger:    logger.WithComponent("cli"),
		collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:    tracer,
		client:    client,
	}, cleanup, nil
}

// openStore opens the configured journal backend. A disabled journal
// returns a nil store; callers skip recording in that case.
func openStore(cfg *config.Config) (history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	switch cfg.History.Backend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "sqlite":
		return storage.NewSQLiteStore(&storage.SQLiteConfig{
			Path:         cfg.History.SQLite.Path,
			MaxOpenConns: cfg.History.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.History.SQLite.MaxIdleConns,
			WALMode:      cfg.History.SQLite.WALMode,
			BusyTimeout:  cfg.History.SQLite.BusyTimeout,
		})
	default:
		return nil, cli.NewConfigError("history.backend",
			fmt.Sprintf("unsupported backend: %s (supported: sqlite, memory)", cfg.History.Backend))
	}
}

// appendRecord journals a call. Journal failures are logged, never fatal:
// the call already succeeded or failed on its own terms. A fresh context is
// used so an interrupted run still gets its record written.
func appendRecord(store history.Store, logger *logging.Logger, record *history.Record) {
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Append(ctx, record); err != nil {
		logger.Warn("failed to journal call", "error", err, "record_id", record.ID)
	}
}
