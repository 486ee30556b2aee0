// Package cgpa derives a student's cumulative grade point average from the
// semesters stored for them.
package cgpa

import (
	"resultsync-backend/internal/db"

	"github.com/volatiletech/null/v8"
)

// Compute returns the credit weighted average SGPA of a student's semesters.
//
// The CGPA is only defined when every semester number that appears in
// standings has at least one successful result, otherwise it is null. When a
// semester number was passed in more than one schedule, the schedule with the
// highest timetable id is used. A semester with no SGPA adds nothing to the
// weighted sum but its earned credits still count towards the total. The
// CGPA is null if no semester has both an SGPA and earned credits, or if
// the total credits are zero.
func Compute(standings []db.SemesterStanding) null.Float64 {
	all := make(map[int64]struct{})
	latest := make(map[int64]db.SemesterStanding)

	for _, s := range standings {
		all[s.SemesterNo] = struct{}{}
		if !s.ResultStatus.Valid || s.ResultStatus.String != db.ResultSuccessful {
			continue
		}
		current, ok := latest[s.SemesterNo]
		if !ok || s.ExamScheduleTimetableId > current.ExamScheduleTimetableId {
			latest[s.SemesterNo] = s
		}
	}

	if len(all) == 0 || len(all) != len(latest) {
		return null.Float64{}
	}

	var weighted, credits float64
	weightedAny := false
	for _, s := range latest {
		if !s.EarnedCredits.Valid {
			continue
		}
		credits += s.EarnedCredits.Float64
		if s.Sgpa.Valid {
			weighted += s.Sgpa.Float64 * s.EarnedCredits.Float64
			weightedAny = true
		}
	}
	if !weightedAny || credits == 0 {
		return null.Float64{}
	}

	return null.Float64From(weighted / credits)
}
