// Package pipeline runs one ingestion: it logs into the portal, lists the
// exam schedules of the student and stores the results of each schedule.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resultsync-backend/internal/components/assert"
	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/db"
	"resultsync-backend/internal/normalize"
	"resultsync-backend/internal/scrapers/erp"
	"resultsync-backend/internal/transform"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("resultsync/pipeline")

const (
	report_pipeline_run            = "pipeline.run"
	report_pipeline_list_schedules = "pipeline.list-schedules"
	report_pipeline_schedule       = "pipeline.schedule"
	report_pipeline_mismatch       = "pipeline.mismatch"
)

type Authenticator interface {
	Authenticate(ctx context.Context, creds erp.Credentials) (erp.Session, error)
}

type Portal interface {
	ListSchedules(ctx context.Context, session erp.Session) (erp.FetchResult[erp.Schedule], error)
	FetchResults(ctx context.Context, session erp.Session, scheduleId, semesterId, syllabusId string) (erp.FetchResult[erp.SubjectResult], error)
}

type Sink interface {
	Commit(ctx context.Context, student db.Student, semester db.Semester, subjects []db.Subject) error
}

type Pipeline struct {
	auth    Authenticator
	portal  Portal
	sink    Sink
	metrics *Metrics
	tel     telemetry.API
	now     func() time.Time
}

// NewPipeline creates a pipeline, metrics may be nil.
func NewPipeline(auth Authenticator, portal Portal, sink Sink, metrics *Metrics, tel telemetry.API) Pipeline {
	assert.NotNil("auth", auth)
	assert.NotNil("portal", portal)
	assert.NotNil("sink", sink)
	assert.NotNil("tel", tel)

	return Pipeline{
		auth:    auth,
		portal:  portal,
		sink:    sink,
		metrics: metrics,
		tel:     telemetry.NewScopedAPI("pipeline", tel),
		now:     time.Now,
	}
}

// Run performs a single ingestion. It only returns an error when no schedule
// could be processed at all (failed login, unreadable schedule listing) or
// when ctx is cancelled between schedules. Schedules that fail are recorded
// in the report and do not stop the run.
func (p Pipeline) Run(ctx context.Context, creds erp.Credentials) (Report, error) {
	report := Report{
		RunID:   uuid.New(),
		Started: p.now(),
	}

	ctx, span := tracer.Start(ctx, "pipeline:Run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", report.RunID.String()))

	err := p.run(ctx, creds, &report)
	report.Finished = p.now()
	p.metrics.observeRun(report.Finished.Sub(report.Started), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		p.tel.ReportBroken(report_pipeline_run, err, report.RunID.String())
		return report, err
	}

	p.tel.ReportCount("pipeline.ingested", int64(report.Count(StatusIngested)))
	p.tel.ReportDebug(
		"run finished",
		report.RunID.String(),
		telemetry.KV{Key: "schedules", Value: len(report.Schedules)},
		telemetry.KV{Key: "ingested", Value: report.Count(StatusIngested)},
	)
	return report, nil
}

func (p Pipeline) run(ctx context.Context, creds erp.Credentials, report *Report) error {
	session, err := p.auth.Authenticate(ctx, creds)
	if err != nil {
		return err
	}

	schedules, err := p.portal.ListSchedules(ctx, session)
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}
	report.ScheduleStatus = schedules.Status
	if schedules.Failed() {
		p.tel.ReportWarning(report_pipeline_list_schedules, erp.ErrFetchFailed, schedules.Status)
		return nil
	}

	for _, schedule := range schedules.Records {
		// a run that is cancelled stops between schedules, never inside one
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome := p.ingestSchedule(ctx, session, schedule)
		p.metrics.observeSchedule(outcome)
		report.Schedules = append(report.Schedules, outcome)
	}
	return nil
}

func (p Pipeline) ingestSchedule(ctx context.Context, session erp.Session, schedule erp.Schedule) ScheduleOutcome {
	outcome := ScheduleOutcome{
		ScheduleId:   normalize.String(schedule.ExamScheduleTimetableId).String,
		SemesterNo:   normalize.String(schedule.SemesterId).String,
		SemesterName: normalize.String(schedule.SemesterName).String,
		ExamName:     normalize.String(schedule.ExamName).String,
	}

	ctx, span := tracer.Start(ctx, "pipeline:schedule")
	defer span.End()
	span.SetAttributes(
		attribute.String("exam_schedule_timetable_id", outcome.ScheduleId),
		attribute.String("semester_id", outcome.SemesterNo),
	)

	fail := func(status Status, err error) ScheduleOutcome {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(status))
		p.tel.ReportBroken(report_pipeline_schedule, err, outcome.ScheduleId, string(status))
		outcome.Status = status
		outcome.Error = err.Error()
		return outcome
	}

	results, err := p.portal.FetchResults(
		ctx,
		session,
		normalize.String(schedule.ExamScheduleId).String,
		normalize.String(schedule.SemesterId).String,
		normalize.String(schedule.UniversitySyllabusId).String,
	)
	if err != nil {
		return fail(StatusFetchFailed, err)
	}
	outcome.HttpStatus = results.Status
	if results.Failed() {
		return fail(StatusFetchFailed, fmt.Errorf("%w: status %d", erp.ErrFetchFailed, results.Status))
	}

	rows, err := transform.Transform(schedule, results.Records)
	if errors.Is(err, transform.ErrEmptyResults) {
		outcome.Status = StatusEmpty
		return outcome
	}
	if err != nil {
		return fail(StatusPersistFailed, err)
	}

	mismatches := transform.Mismatches(results.Records)
	for _, m := range mismatches {
		p.tel.ReportWarning(
			report_pipeline_mismatch,
			outcome.ScheduleId,
			telemetry.KV{Key: "field", Value: m.Field},
			telemetry.KV{Key: "index", Value: m.Index},
		)
	}
	outcome.Mismatches = len(mismatches)

	err = p.sink.Commit(ctx, rows.Student, rows.Semester, rows.Subjects)
	if err != nil {
		return fail(StatusPersistFailed, err)
	}

	outcome.Status = StatusIngested
	outcome.Subjects = len(rows.Subjects)
	span.SetAttributes(attribute.Int("subjects", outcome.Subjects))
	return outcome
}
