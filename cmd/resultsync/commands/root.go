package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool

	cfg           Config
	shutdownTrace func(context.Context) error
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read, a config.local.json5 next to it is merged over it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enables debug logging.")
}

var rootCmd = &cobra.Command{
	Use:   "resultsync",
	Short: "resultsync ingests exam results from the ERP portal into a database and serves them.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = LoadConfig(*configPath)
		if err != nil {
			telemetry.InitSlog(*verbose)
			serviceutil.Fatal("failed to load config", err)
		}
		InitTelemetry(cmd.Context(), *verbose || cfg.Telemetry.Verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if shutdownTrace == nil {
			return
		}
		err := shutdownTrace(context.Background())
		if err != nil {
			slog.Warn("failed to flush traces", "err", err.Error())
		}
	},
}

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	shutdown, err := telemetry.SetupOtel(ctx, "resultsync", cfg.Telemetry.OtelConfig)
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	shutdownTrace = shutdown
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
