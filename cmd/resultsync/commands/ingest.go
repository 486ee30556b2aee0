package commands

import (
	"fmt"
	"log/slog"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/pipeline"
	"resultsync-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var dumpHttp *string

func init() {
	dumpHttp = ingestCmd.Flags().String("dump-http", "", "Writes every exchange with the portal to files in this directory.")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [--dump-http <dir>]",
	Short: "Logs into the portal and stores the results of every exam schedule.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		tel := telemetry.SlogAPI{}

		creds, err := cfg.Portal.Credentials()
		if err != nil {
			serviceutil.Fatal("missing portal credentials", err)
		}

		sink, database := openStore(ctx, tel)
		defer database.Close()

		p := newPipeline(sink, prometheus.NewRegistry(), *dumpHttp, tel)
		report, err := p.Run(ctx, creds)
		printReport(report)
		if err != nil {
			serviceutil.Fatal("ingestion failed", err)
		}

		slog.Info(
			"ingestion finished",
			"run_id", report.RunID.String(),
			"ingested", report.Count(pipeline.StatusIngested),
			"failed", report.Count(pipeline.StatusFetchFailed)+report.Count(pipeline.StatusPersistFailed),
		)
	},
}

func printReport(report pipeline.Report) {
	if len(report.Schedules) == 0 {
		return
	}

	t := NewTable()
	t.AppendHeader(table.Row{"Schedule", "Semester", "Exam", "Status", "HTTP", "Subjects", "Error"})
	for _, s := range report.Schedules {
		httpStatus := ""
		if s.HttpStatus != 0 {
			httpStatus = fmt.Sprint(s.HttpStatus)
		}
		t.AppendRow(table.Row{s.ScheduleId, s.SemesterName, s.ExamName, s.Status, httpStatus, s.Subjects, s.Error})
	}
	t.Render()
}
