package commands

import (
	"log/slog"

	"resultsync-backend/internal/components/telemetry"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initDbCmd)
}

var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Creates the students, semesters and subjects tables if they do not exist.",
	Run: func(cmd *cobra.Command, args []string) {
		_, database := openStore(cmd.Context(), telemetry.SlogAPI{})
		defer database.Close()

		driver, _ := cfg.Database.Source()
		slog.Info("tables created", "driver", driver)
	},
}
