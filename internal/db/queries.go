package db

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"
)

// Queries holds every statement the application runs. Statements are written
// with `?` placeholders and rebound to the dialect of the underlying driver.
type Queries struct {
	db sqlx.ExtContext
}

func New(db sqlx.ExtContext) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sqlx.Tx) *Queries {
	return &Queries{db: tx}
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) error {
	_, err := q.db.ExecContext(ctx, q.db.Rebind(query), args...)
	return err
}

const createStudent = `INSERT INTO students (register_no, name, course, school, course_duration)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (register_no) DO NOTHING`

// CreateStudent inserts a student, an existing student with the same register number is left as is.
func (q *Queries) CreateStudent(ctx context.Context, s Student) error {
	return q.exec(ctx, createStudent,
		s.RegisterNo, s.Name, s.Course, s.School, s.CourseDuration,
	)
}

const createSemester = `INSERT INTO semesters (
    exam_schedule_timetable_id, semester_no, register_no, passing_year, passing_month, sgpa,
    total_credits, earned_credits, obtained_marks, out_of_marks,
    result_status, block_status, block_reason, ordinance
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (exam_schedule_timetable_id, semester_no, register_no) DO NOTHING`

// CreateSemester inserts a semester, an existing semester with the same key is left as is.
func (q *Queries) CreateSemester(ctx context.Context, s Semester) error {
	return q.exec(ctx, createSemester,
		s.ExamScheduleTimetableId, s.SemesterNo, s.RegisterNo, s.PassingYear, s.PassingMonth, s.Sgpa,
		s.TotalCredits, s.EarnedCredits, s.ObtainedMarks, s.OutOfMarks,
		s.ResultStatus, s.BlockStatus, s.BlockReason, s.Ordinance,
	)
}

const createSubjectsPrefix = `INSERT INTO subjects (
    exam_schedule_timetable_id, subject_code, semester_no, register_no, subject_name,
    internal_marks, internal_passing_marks, max_internal_marks,
    external_marks, external_passing_marks, max_external_marks,
    grade, grade_point, credits_obtained, max_credits
)
VALUES `

const createSubjectsSuffix = `
ON CONFLICT (exam_schedule_timetable_id, subject_code, semester_no, register_no) DO NOTHING`

const subjectPlaceholders = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// CreateSubjects inserts all the given subjects in a single statement, subjects
// that already exist are left as is.
func (q *Queries) CreateSubjects(ctx context.Context, subjects []Subject) error {
	if len(subjects) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(createSubjectsPrefix)
	args := make([]any, 0, len(subjects)*15)
	for i, s := range subjects {
		if i > 0 {
			query.WriteString(",\n")
		}
		query.WriteString(subjectPlaceholders)
		args = append(args,
			s.ExamScheduleTimetableId, s.SubjectCode, s.SemesterNo, s.RegisterNo, s.SubjectName,
			s.InternalMarks, s.InternalPassingMarks, s.MaxInternalMarks,
			s.ExternalMarks, s.ExternalPassingMarks, s.MaxExternalMarks,
			s.Grade, s.GradePoint, s.CreditsObtained, s.MaxCredits,
		)
	}
	query.WriteString(createSubjectsSuffix)

	return q.exec(ctx, query.String(), args...)
}

const listSemesterStandings = `SELECT exam_schedule_timetable_id, semester_no, sgpa, earned_credits, result_status
FROM semesters
WHERE register_no = ?
ORDER BY semester_no, exam_schedule_timetable_id`

func (q *Queries) ListSemesterStandings(ctx context.Context, registerNo string) ([]SemesterStanding, error) {
	var out []SemesterStanding
	err := sqlx.SelectContext(ctx, q.db, &out, q.db.Rebind(listSemesterStandings), registerNo)
	return out, err
}

const setStudentCgpa = `UPDATE students SET cgpa = ? WHERE register_no = ?`

func (q *Queries) SetStudentCgpa(ctx context.Context, registerNo string, cgpa null.Float64) error {
	return q.exec(ctx, setStudentCgpa, cgpa, registerNo)
}

const listRegisterNos = `SELECT register_no FROM students ORDER BY register_no`

func (q *Queries) ListRegisterNos(ctx context.Context) ([]string, error) {
	var out []string
	err := sqlx.SelectContext(ctx, q.db, &out, listRegisterNos)
	return out, err
}

const listStudents = `SELECT register_no, name, cgpa, course, school, course_duration
FROM students
ORDER BY register_no`

func (q *Queries) ListStudents(ctx context.Context) ([]Student, error) {
	var out []Student
	err := sqlx.SelectContext(ctx, q.db, &out, listStudents)
	return out, err
}

const getStudent = `SELECT register_no, name, cgpa, course, school, course_duration
FROM students
WHERE register_no = ?`

func (q *Queries) GetStudent(ctx context.Context, registerNo string) (Student, error) {
	var out Student
	err := sqlx.GetContext(ctx, q.db, &out, q.db.Rebind(getStudent), registerNo)
	return out, err
}

const listSemesters = `SELECT exam_schedule_timetable_id, semester_no, register_no, passing_year, passing_month, sgpa,
    total_credits, earned_credits, obtained_marks, out_of_marks,
    result_status, block_status, block_reason, ordinance
FROM semesters
ORDER BY register_no, semester_no, exam_schedule_timetable_id`

func (q *Queries) ListSemesters(ctx context.Context) ([]Semester, error) {
	var out []Semester
	err := sqlx.SelectContext(ctx, q.db, &out, listSemesters)
	return out, err
}

const listSubjects = `SELECT exam_schedule_timetable_id, subject_code, semester_no, register_no, subject_name,
    internal_marks, internal_passing_marks, max_internal_marks,
    external_marks, external_passing_marks, max_external_marks,
    grade, grade_point, credits_obtained, max_credits
FROM subjects
ORDER BY register_no, semester_no, exam_schedule_timetable_id, subject_code`

func (q *Queries) ListSubjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	err := sqlx.SelectContext(ctx, q.db, &out, listSubjects)
	return out, err
}

const getSgpaProgression = `SELECT semester_no, passing_year, passing_month, sgpa
FROM semesters
WHERE register_no = ?
ORDER BY passing_year, passing_month, semester_no`

func (q *Queries) GetSgpaProgression(ctx context.Context, registerNo string) ([]SgpaPoint, error) {
	var out []SgpaPoint
	err := sqlx.SelectContext(ctx, q.db, &out, q.db.Rebind(getSgpaProgression), registerNo)
	return out, err
}
