package commands

import (
	"context"

	"resultsync-backend/internal/api"
	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/pipeline"
	"resultsync-backend/lib/serviceutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the stored results over http and lets clients trigger ingestion runs.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		tel := telemetry.SlogAPI{}

		sink, database := openStore(ctx, tel)
		defer database.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		p := newPipeline(sink, reg, "", tel)

		run := func(ctx context.Context) (pipeline.Report, error) {
			creds, err := cfg.Portal.Credentials()
			if err != nil {
				return pipeline.Report{}, err
			}
			return p.Run(ctx, creds)
		}

		server := api.NewServer(sink, run, reg, tel)
		err := serviceutil.StartHttpServer(ctx, cfg.Server.Port, server.Router())
		if err != nil {
			serviceutil.Fatal("http server stopped", err)
		}
	},
}
