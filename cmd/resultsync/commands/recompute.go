package commands

import (
	"log/slog"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recomputeCmd)
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute-cgpa [register_no...]",
	Short: "Recomputes the CGPA of the given students, or of every student when none are given.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s, database := openStore(ctx, telemetry.SlogAPI{})
		defer database.Close()

		if len(args) == 0 {
			count, err := s.RecomputeAll(ctx)
			if err != nil {
				serviceutil.Fatal("failed to recompute some students", err)
			}
			slog.Info("recomputed cgpa", "students", count)
			return
		}

		for _, registerNo := range args {
			err := s.RecomputeCgpa(ctx, registerNo)
			if err != nil {
				serviceutil.Fatal("failed to recompute cgpa of "+registerNo, err)
			}
		}
		slog.Info("recomputed cgpa", "students", len(args))
	},
}
