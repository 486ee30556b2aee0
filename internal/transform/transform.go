// Package transform reshapes the per subject result listing of one schedule
// into normalized student, semester and subject rows.
package transform

import (
	"errors"

	"resultsync-backend/internal/db"
	"resultsync-backend/internal/normalize"
	"resultsync-backend/internal/scrapers/erp"
)

var ErrEmptyResults = errors.New("no subject results to transform")

// Rows are the rows that a single schedule is stored as.
type Rows struct {
	Student  db.Student
	Semester db.Semester
	Subjects []db.Subject
}

// Transform produces one student row, one semester row and one subject row per
// record. Student and semester fields are taken from the first record, use
// Mismatches to find records that disagree with it.
func Transform(schedule erp.Schedule, records []erp.SubjectResult) (Rows, error) {
	if len(records) == 0 {
		return Rows{}, ErrEmptyResults
	}

	first := records[0]
	registerNo := normalize.String(first.SeatNo)
	semesterNo := normalize.Int(schedule.SemesterId)
	scheduleId := normalize.Int(schedule.ExamScheduleTimetableId)

	rows := Rows{
		Student: db.Student{
			RegisterNo:     registerNo,
			Name:           normalize.String(first.StudentName),
			Course:         normalize.String(first.ProgramName),
			School:         normalize.String(first.InstituteName),
			CourseDuration: normalize.String(first.AcademicYear),
		},
		Semester: db.Semester{
			ExamScheduleTimetableId: scheduleId,
			SemesterNo:              semesterNo,
			RegisterNo:              registerNo,
			PassingYear:             normalize.Int(first.PassingYear),
			PassingMonth:            normalize.String(first.PassingMonth),
			Sgpa:                    normalize.Round(normalize.Float(first.Sgpa), 2),
			TotalCredits:            normalize.Float(first.SgpaCreditPointTotal),
			EarnedCredits:           normalize.Float(first.SgpaEarnedPointsTotal),
			ObtainedMarks:           normalize.Float(first.SgpaObtainedMarks),
			OutOfMarks:              normalize.Float(first.OutOff),
			ResultStatus:            normalize.String(first.ResultStatus),
			BlockStatus:             normalize.Bool(first.ResultBlockStatus),
			BlockReason:             normalize.String(first.ResultBlockReason),
			Ordinance:               normalize.String(first.Ordinance),
		},
		Subjects: make([]db.Subject, len(records)),
	}

	for i, r := range records {
		rows.Subjects[i] = db.Subject{
			ExamScheduleTimetableId: scheduleId,
			SubjectCode:             normalize.String(r.SubjectCode),
			SemesterNo:              semesterNo,
			RegisterNo:              registerNo,
			SubjectName:             normalize.String(r.SubjectName),
			InternalMarks:           normalize.Float(r.InternalMarks),
			InternalPassingMarks:    normalize.Float(r.InternalPassingMarks),
			MaxInternalMarks:        normalize.Float(r.MaxInternalMarks),
			ExternalMarks:           normalize.Float(r.ExternalMarks),
			ExternalPassingMarks:    normalize.Float(r.ExternalPassingMarks),
			MaxExternalMarks:        normalize.Float(r.MaxExternalMarks),
			Grade:                   normalize.String(r.Grade),
			GradePoint:              normalize.Float(r.Pointer),
			CreditsObtained:         normalize.Round(normalize.Float(r.EarnedCredit), 2),
			MaxCredits:              normalize.Round(normalize.Float(r.CreditPoint), 2),
		}
	}

	return rows, nil
}
