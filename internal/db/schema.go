package db

import (
	_ "embed"

	"github.com/volatiletech/null/v8"
)

//go:embed schema.sql
var Schema string

// ResultSuccessful is the result status of a semester that was passed.
const ResultSuccessful = "Successful"

type Student struct {
	RegisterNo     null.String  `db:"register_no" json:"register_no"`
	Name           null.String  `db:"name" json:"name"`
	Cgpa           null.Float64 `db:"cgpa" json:"cgpa"`
	Course         null.String  `db:"course" json:"course"`
	School         null.String  `db:"school" json:"school"`
	CourseDuration null.String  `db:"course_duration" json:"course_duration"`
}

type Semester struct {
	ExamScheduleTimetableId null.Int     `db:"exam_schedule_timetable_id" json:"exam_schedule_timetable_id"`
	SemesterNo              null.Int     `db:"semester_no" json:"semester_no"`
	RegisterNo              null.String  `db:"register_no" json:"-"`
	PassingYear             null.Int     `db:"passing_year" json:"passing_year"`
	PassingMonth            null.String  `db:"passing_month" json:"passing_month"`
	Sgpa                    null.Float64 `db:"sgpa" json:"sgpa"`
	TotalCredits            null.Float64 `db:"total_credits" json:"total_credits"`
	EarnedCredits           null.Float64 `db:"earned_credits" json:"earned_credits"`
	ObtainedMarks           null.Float64 `db:"obtained_marks" json:"obtained_marks"`
	OutOfMarks              null.Float64 `db:"out_of_marks" json:"out_of_marks"`
	ResultStatus            null.String  `db:"result_status" json:"result_status"`
	BlockStatus             null.Bool    `db:"block_status" json:"block_status"`
	BlockReason             null.String  `db:"block_reason" json:"block_reason"`
	Ordinance               null.String  `db:"ordinance" json:"ordinance"`
}

type Subject struct {
	ExamScheduleTimetableId null.Int     `db:"exam_schedule_timetable_id" json:"-"`
	SubjectCode             null.String  `db:"subject_code" json:"subject_code"`
	SemesterNo              null.Int     `db:"semester_no" json:"-"`
	RegisterNo              null.String  `db:"register_no" json:"-"`
	SubjectName             null.String  `db:"subject_name" json:"subject_name"`
	InternalMarks           null.Float64 `db:"internal_marks" json:"internal_marks"`
	InternalPassingMarks    null.Float64 `db:"internal_passing_marks" json:"internal_passing_marks"`
	MaxInternalMarks        null.Float64 `db:"max_internal_marks" json:"max_internal_marks"`
	ExternalMarks           null.Float64 `db:"external_marks" json:"external_marks"`
	ExternalPassingMarks    null.Float64 `db:"external_passing_marks" json:"external_passing_marks"`
	MaxExternalMarks        null.Float64 `db:"max_external_marks" json:"max_external_marks"`
	Grade                   null.String  `db:"grade" json:"grade"`
	GradePoint              null.Float64 `db:"grade_point" json:"grade_point"`
	CreditsObtained         null.Float64 `db:"credits_obtained" json:"credits_obtained"`
	MaxCredits              null.Float64 `db:"max_credits" json:"max_credits"`
}

// SemesterStanding is the part of a semester row that the CGPA depends on.
type SemesterStanding struct {
	ExamScheduleTimetableId int64        `db:"exam_schedule_timetable_id"`
	SemesterNo              int64        `db:"semester_no"`
	Sgpa                    null.Float64 `db:"sgpa"`
	EarnedCredits           null.Float64 `db:"earned_credits"`
	ResultStatus            null.String  `db:"result_status"`
}

type SgpaPoint struct {
	Semester int64        `db:"semester_no" json:"semester"`
	Year     null.Int     `db:"passing_year" json:"year"`
	Month    null.String  `db:"passing_month" json:"month"`
	Sgpa     null.Float64 `db:"sgpa" json:"sgpa"`
}
