package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tensorzero/tensorzero-go/pkg/cli"
)

var healthFlags struct {
	live bool
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check gateway health",
	Long: `Check the health of the configured gateway.

By default this hits the readiness endpoint, which includes the
gateway's downstream dependencies. With --live only liveness is
checked, which also reports the gateway version when available.

The command exits non-zero when the gateway is unreachable or any
component reports a state other than ok.

Examples:
  # Readiness, including downstream dependencies
  tensorzero health

  # Liveness only
  tensorzero health --live

  # Against an explicit gateway
  tensorzero health --gateway-url http://gateway.internal:3000`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().BoolVar(&healthFlags.live, "live", false, "check liveness only")
}

func runHealth(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("csv output is not supported for health checks")
	}

	tk, cleanup, err := newToolkit()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cli.SetupSignalHandler()

	if healthFlags.live {
		status, err := tk.client.Status(ctx)
		if err != nil {
			return cli.NewCommandError("health", err)
		}
		if format == cli.FormatJSON {
			return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, status)
		}
		fmt.Printf("✓ Gateway alive: %s\n", status.Status)
		if status.Version != "" {
			fmt.Printf("Version: %s\n", status.Version)
		}
		return nil
	}

	health, err := tk.client.Health(ctx)
	if err != nil {
		return cli.NewCommandError("health", err)
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, health)
	}

	components := make([]string, 0, len(health))
	for name := range health {
		components = append(components, name)
	}
	sort.Strings(components)

	if health.Healthy() {
		fmt.Println("✓ Gateway healthy")
	} else {
		fmt.Println("✗ Gateway unhealthy")
	}
	for _, name := range components {
		state := health[name]
		glyph := "✓"
		if state != "ok" {
			glyph = "✗"
		}
		fmt.Printf("  %s %s: %s\n", glyph, name, state)
	}

	if !health.Healthy() {
		return cli.NewCommandError("health", fmt.Errorf("gateway reported unhealthy components"))
	}
	return nil
}
