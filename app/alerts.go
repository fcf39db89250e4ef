package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/daemon"
)

func init() { //nolint: gochecknoinits
	alertsCmd.AddCommand(alertsRunCmd, alertsScanCmd, alertsDispatchCmd)
	rootCmd.AddCommand(alertsCmd)
}

var (
	alertsCmd = &cobra.Command{
		Use:   "alerts",
		Short: "Run the alert jobs once, for external schedulers",
	}

	alertsRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Scan for due assets, then send pending emails",
		RunE:  withCore(alertsRun),
	}

	alertsScanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Create notifications for licenses and equipment reaching a threshold",
		RunE: withCore(func(ctx context.Context, cmd *cobra.Command, c *daemon.Core) error {
			report, err := c.Scanner.RunAll(ctx)
			printScan(cmd, report)

			return err
		}),
	}

	alertsDispatchCmd = &cobra.Command{
		Use:   "dispatch",
		Short: "Send the emails of pending notifications",
		RunE: withCore(func(ctx context.Context, cmd *cobra.Command, c *daemon.Core) error {
			stats, err := c.Worker.ProcessUnsent(ctx)
			printDispatch(cmd, stats)

			return err
		}),
	}
)

func alertsRun(ctx context.Context, cmd *cobra.Command, c *daemon.Core) error {
	report, stats, err := alert.RunCycle(ctx, c.Scanner, c.Worker)
	printScan(cmd, report)
	printDispatch(cmd, stats)

	return err
}

type coreFunc func(ctx context.Context, cmd *cobra.Command, c *daemon.Core) error

// withCore opens the core services for one command. SIGINT and SIGTERM cancel the run.
func withCore(fn coreFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runWithCore(cmd, &cfg, fn)
	}
}

func runWithCore(cmd *cobra.Command, c *config.Config, fn coreFunc) error {
	core, err := daemon.NewCore(c)
	if err != nil {
		return err
	}
	defer core.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fn(ctx, cmd, core)
}

func printScan(cmd *cobra.Command, r alert.ScanReport) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"scan %s: licenses %d (created %d, duplicates %d, errors %d), equipment %d (created %d, duplicates %d, errors %d)\n",
		r.RunID,
		r.Licenses.Assets, r.Licenses.Created, r.Licenses.Duplicates, r.Licenses.Errors,
		r.Equipment.Assets, r.Equipment.Created, r.Equipment.Duplicates, r.Equipment.Errors,
	)
}

func printDispatch(cmd *cobra.Command, s alert.DispatchStats) {
	fmt.Fprintf(cmd.OutOrStdout(), "dispatch: processed %d, sent %d, failed %d, skipped %d\n",
		s.Processed, s.Sent, s.Failed, s.Skipped)
}
