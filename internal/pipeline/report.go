package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusIngested      Status = "ingested"
	StatusEmpty         Status = "empty"
	StatusFetchFailed   Status = "fetch_failed"
	StatusPersistFailed Status = "persist_failed"
)

// ScheduleOutcome is what happened to a single exam schedule during a run.
type ScheduleOutcome struct {
	ScheduleId   string `json:"schedule_id"`
	SemesterNo   string `json:"semester_no"`
	SemesterName string `json:"semester_name"`
	ExamName     string `json:"exam_name"`
	Status       Status `json:"status"`
	HttpStatus   int    `json:"http_status"`
	Subjects     int    `json:"subjects"`
	Mismatches   int    `json:"mismatches"`
	Error        string `json:"error,omitempty"`
}

type Report struct {
	RunID    uuid.UUID `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	// ScheduleStatus is the status code the schedule listing was served with.
	ScheduleStatus int               `json:"schedule_status"`
	Schedules      []ScheduleOutcome `json:"schedules"`
}

// Count returns the number of schedules with the given status.
func (r Report) Count(status Status) int {
	count := 0
	for _, s := range r.Schedules {
		if s.Status == status {
			count++
		}
	}
	return count
}

// Summary renders the report as human readable lines, one per schedule.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d schedule(s) in %s\n", r.RunID, len(r.Schedules), r.Finished.Sub(r.Started).Round(time.Millisecond))
	for _, s := range r.Schedules {
		fmt.Fprintf(&b, "schedule %s (%s): %s", s.ScheduleId, s.SemesterName, s.Status)
		switch s.Status {
		case StatusIngested:
			fmt.Fprintf(&b, ", %d subject(s)", s.Subjects)
		case StatusFetchFailed:
			if s.HttpStatus != 0 {
				fmt.Fprintf(&b, ", http %d", s.HttpStatus)
			}
		}
		if s.Error != "" {
			fmt.Fprintf(&b, ": %s", s.Error)
		}
		b.WriteString("\n")
	}
	return b.String()
}
