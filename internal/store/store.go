// Package store persists transformed results and keeps the derived CGPA of
// every student consistent with their stored semesters.
package store

import (
	"context"
	"errors"
	"fmt"

	"resultsync-backend/internal/cgpa"
	"resultsync-backend/internal/components/assert"
	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("resultsync/store")

const (
	report_db_query     = "db.query"
	report_store_commit = "store.commit"
)

// ErrPersistenceFailure wraps every error that caused a commit to be rolled back.
var ErrPersistenceFailure = errors.New("persistence failure")

type Store struct {
	db         *db.Queries
	makeTx     db.MakeTx
	snapshotTx db.MakeTx
	tel        telemetry.API
}

// NewStore writes through makeTx and reads the student listing through
// snapshotTx (see db.NewMakeSnapshotTx).
func NewStore(qry *db.Queries, makeTx, snapshotTx db.MakeTx, tel telemetry.API) Store {
	assert.NotNil("qry", qry)
	assert.NotNil("makeTx", makeTx)
	assert.NotNil("snapshotTx", snapshotTx)
	assert.NotNil("tel", tel)

	tel = telemetry.NewScopedAPI("store", tel)

	return Store{
		db:         qry,
		makeTx:     makeTx,
		snapshotTx: snapshotTx,
		tel:        tel,
	}
}

// Commit stores the rows of a single schedule in one transaction. The student
// is written before the semester and the semester before its subjects, rows
// that already exist are left untouched. The student's CGPA is recomputed in
// the same transaction, if anything fails nothing is written.
func (s Store) Commit(ctx context.Context, student db.Student, semester db.Semester, subjects []db.Subject) error {
	ctx, span := tracer.Start(ctx, "Commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("register_no", student.RegisterNo.String),
		attribute.Int("exam_schedule_timetable_id", semester.ExamScheduleTimetableId.Int),
		attribute.Int("subjects", len(subjects)),
	)

	err := s.commit(ctx, student, semester, subjects)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rolled back")
		s.tel.ReportBroken(report_store_commit, err, student.RegisterNo.String, semester.ExamScheduleTimetableId.Int)
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return nil
}

func (s Store) commit(ctx context.Context, student db.Student, semester db.Semester, subjects []db.Subject) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return fmt.Errorf("make tx: %w", err)
	}
	defer discard()

	err = tx.CreateStudent(ctx, student)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	err = tx.CreateSemester(ctx, semester)
	if err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	err = tx.CreateSubjects(ctx, subjects)
	if err != nil {
		return fmt.Errorf("create subjects: %w", err)
	}
	err = recomputeCgpa(ctx, tx, student.RegisterNo.String)
	if err != nil {
		return err
	}

	err = commit()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func recomputeCgpa(ctx context.Context, qry *db.Queries, registerNo string) error {
	standings, err := qry.ListSemesterStandings(ctx, registerNo)
	if err != nil {
		return fmt.Errorf("list semester standings: %w", err)
	}
	err = qry.SetStudentCgpa(ctx, registerNo, cgpa.Compute(standings))
	if err != nil {
		return fmt.Errorf("set cgpa: %w", err)
	}
	return nil
}

// RecomputeCgpa recomputes the CGPA of a single student in its own transaction.
func (s Store) RecomputeCgpa(ctx context.Context, registerNo string) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	err = recomputeCgpa(ctx, tx, registerNo)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "RecomputeCgpa", registerNo)
		return err
	}
	return commit()
}

// RecomputeAll recomputes the CGPA of every stored student, a failure for one
// student does not prevent the others from being recomputed.
func (s Store) RecomputeAll(ctx context.Context) (int, error) {
	registerNos, err := s.db.ListRegisterNos(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListRegisterNos")
		return 0, err
	}

	var errs []error
	count := 0
	for _, registerNo := range registerNos {
		err := s.RecomputeCgpa(ctx, registerNo)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", registerNo, err))
			continue
		}
		count++
	}
	s.tel.ReportCount("store.recompute-all", int64(count))
	return count, errors.Join(errs...)
}
