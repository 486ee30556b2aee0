package commands

import (
	"fmt"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/volatiletech/null/v8"
)

func init() {
	rootCmd.AddCommand(studentsCmd)
}

func formatFloat(f null.Float64) string {
	if !f.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", f.Float64)
}

var studentsCmd = &cobra.Command{
	Use:   "students [register_no]",
	Short: "Lists the stored students, or the SGPA progression of a single student.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		s, database := openStore(ctx, telemetry.SlogAPI{})
		defer database.Close()

		t := NewTable()

		if len(args) == 1 {
			points, err := s.SgpaProgression(ctx, args[0])
			if err != nil {
				serviceutil.Fatal("failed to get sgpa progression", err)
			}
			t.AppendHeader(table.Row{"Semester", "Year", "Month", "SGPA"})
			for _, p := range points {
				year := "-"
				if p.Year.Valid {
					year = fmt.Sprint(p.Year.Int)
				}
				t.AppendRow(table.Row{p.Semester, year, p.Month.String, formatFloat(p.Sgpa)})
			}
			t.Render()
			return
		}

		students, err := s.ListStudents(ctx)
		if err != nil {
			serviceutil.Fatal("failed to list students", err)
		}
		t.AppendHeader(table.Row{"Register No", "Name", "Course", "Semesters", "CGPA"})
		for _, student := range students {
			t.AppendRow(table.Row{
				student.RegisterNo.String,
				student.Name.String,
				student.Course.String,
				len(student.Semesters),
				formatFloat(student.Cgpa),
			})
		}
		t.Render()
	},
}
