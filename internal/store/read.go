package store

import (
	"context"

	"resultsync-backend/internal/db"
)

type SemesterTree struct {
	db.Semester
	Subjects []db.Subject `json:"subjects"`
}

// StudentTree is a student with all of their semesters, each semester holding
// its subjects. Semesters is nil when the student has none.
type StudentTree struct {
	db.Student
	Semesters []SemesterTree `json:"semesters"`
}

type semesterKey struct {
	registerNo string
	semesterNo int
	scheduleId int
}

// ListStudents returns every student ordered by register number, semesters
// are ordered by semester number then schedule and subjects by subject code.
// All three tables are read from the same snapshot, so a concurrent commit
// is either fully visible or not at all.
func (s Store) ListStudents(ctx context.Context) ([]StudentTree, error) {
	tx, discard, commit, err := s.snapshotTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "begin")
		return nil, err
	}
	defer discard()

	students, err := tx.ListStudents(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListStudents")
		return nil, err
	}
	semesters, err := tx.ListSemesters(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListSemesters")
		return nil, err
	}
	subjects, err := tx.ListSubjects(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListSubjects")
		return nil, err
	}
	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "commit")
		return nil, err
	}

	subjectsOf := make(map[semesterKey][]db.Subject)
	for _, sub := range subjects {
		key := semesterKey{
			registerNo: sub.RegisterNo.String,
			semesterNo: sub.SemesterNo.Int,
			scheduleId: sub.ExamScheduleTimetableId.Int,
		}
		subjectsOf[key] = append(subjectsOf[key], sub)
	}

	semestersOf := make(map[string][]SemesterTree)
	for _, sem := range semesters {
		key := semesterKey{
			registerNo: sem.RegisterNo.String,
			semesterNo: sem.SemesterNo.Int,
			scheduleId: sem.ExamScheduleTimetableId.Int,
		}
		semestersOf[key.registerNo] = append(semestersOf[key.registerNo], SemesterTree{
			Semester: sem,
			Subjects: subjectsOf[key],
		})
	}

	out := make([]StudentTree, len(students))
	for i, student := range students {
		out[i] = StudentTree{
			Student:   student,
			Semesters: semestersOf[student.RegisterNo.String],
		}
	}
	return out, nil
}

// SgpaProgression returns the SGPA of every stored semester of a student in
// chronological order, an unknown student has no semesters.
func (s Store) SgpaProgression(ctx context.Context, registerNo string) ([]db.SgpaPoint, error) {
	points, err := s.db.GetSgpaProgression(ctx, registerNo)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetSgpaProgression", registerNo)
		return nil, err
	}
	if points == nil {
		points = []db.SgpaPoint{}
	}
	return points, nil
}
