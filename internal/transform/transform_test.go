package transform

import (
	"encoding/json"
	"testing"

	"resultsync-backend/internal/db"
	"resultsync-backend/internal/scrapers/erp"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

const schedulePayload = `{
	"examScheduleId": 101,
	"semesterId": "2",
	"semesterName": "Semester 2",
	"ExamName": "Regular May 2022",
	"resultDeclarationDate": "2022/07/01",
	"universitySyllabusId": 7,
	"examScheduleTimetableId": 5002
}`

const resultsPayload = `[
	{
		"seatNo": "21BBTCS001", "studentName": "Alice", "programName": "B.Tech CSE",
		"instituteName": "School of Engineering", "academicyear": "4 Years",
		"passingYear": "2022", "passingMonth": "May", "sgpa": "8.456",
		"sgpaCreditPointTotal": "22", "sgpaEarnedPointsTotal": 22, "sgpaObtainedMarks": "610",
		"outOff": "700", "resultStatus": "Successful", "resultBlockStatus": "false",
		"resultBlockReason": "-", "ordinance": "-",
		"subjectCode": "CS201", "subjectName": "Data Structures",
		"InternalMarks": "38", "intPassing": "16", "int": "40",
		"ExternalMarks": "-", "extPassing": "24", "ext": "60",
		"Grade": "A", "Pointer": "9", "earnedCredit": "4", "creditPoint": "4"
	},
	{
		"seatNo": "21BBTCS001", "studentName": "Alice", "programName": "B.Tech CSE",
		"instituteName": "School of Engineering", "academicyear": "4 Years",
		"passingYear": 2022, "passingMonth": "May", "sgpa": "8.456",
		"sgpaCreditPointTotal": "22", "sgpaEarnedPointsTotal": "22", "sgpaObtainedMarks": "610",
		"outOff": "700", "resultStatus": "Successful", "resultBlockStatus": "false",
		"resultBlockReason": "-", "ordinance": "-",
		"subjectCode": "CS202", "subjectName": "Discrete Maths",
		"InternalMarks": "abc", "intPassing": "16", "int": "40",
		"ExternalMarks": "51", "extPassing": "24", "ext": "60",
		"Grade": "B+", "Pointer": "8", "earnedCredit": "3", "creditPoint": "3"
	}
]`

func decode[T any](t *testing.T, payload string) T {
	var out T
	err := json.Unmarshal([]byte(payload), &out)
	require.NoError(t, err)
	return out
}

func TestTransform(t *testing.T) {
	schedule := decode[erp.Schedule](t, schedulePayload)
	records := decode[[]erp.SubjectResult](t, resultsPayload)

	rows, err := Transform(schedule, records)
	require.NoError(t, err)

	expectedStudent := db.Student{
		RegisterNo:     null.StringFrom("21BBTCS001"),
		Name:           null.StringFrom("Alice"),
		Course:         null.StringFrom("B.Tech CSE"),
		School:         null.StringFrom("School of Engineering"),
		CourseDuration: null.StringFrom("4 Years"),
	}
	if diff := cmp.Diff(expectedStudent, rows.Student); diff != "" {
		t.Fatalf("student mismatch (-want +got):\n%s", diff)
	}

	expectedSemester := db.Semester{
		ExamScheduleTimetableId: null.IntFrom(5002),
		SemesterNo:              null.IntFrom(2),
		RegisterNo:              null.StringFrom("21BBTCS001"),
		PassingYear:             null.IntFrom(2022),
		PassingMonth:            null.StringFrom("May"),
		Sgpa:                    null.Float64From(8.46),
		TotalCredits:            null.Float64From(22),
		EarnedCredits:           null.Float64From(22),
		ObtainedMarks:           null.Float64From(610),
		OutOfMarks:              null.Float64From(700),
		ResultStatus:            null.StringFrom("Successful"),
		BlockStatus:             null.BoolFrom(false),
	}
	if diff := cmp.Diff(expectedSemester, rows.Semester); diff != "" {
		t.Fatalf("semester mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, rows.Subjects, 2)
	require.Equal(t, null.StringFrom("CS201"), rows.Subjects[0].SubjectCode)
	require.False(t, rows.Subjects[0].ExternalMarks.Valid)
	require.Equal(t, null.Float64From(38), rows.Subjects[0].InternalMarks)
	require.False(t, rows.Subjects[1].InternalMarks.Valid)
	require.Equal(t, null.Float64From(51), rows.Subjects[1].ExternalMarks)
	require.Equal(t, null.StringFrom("B+"), rows.Subjects[1].Grade)
	require.Equal(t, null.Float64From(8), rows.Subjects[1].GradePoint)
	require.Equal(t, null.Float64From(3), rows.Subjects[1].MaxCredits)

	for _, s := range rows.Subjects {
		require.Equal(t, rows.Semester.ExamScheduleTimetableId, s.ExamScheduleTimetableId)
		require.Equal(t, rows.Semester.SemesterNo, s.SemesterNo)
		require.Equal(t, rows.Semester.RegisterNo, s.RegisterNo)
	}

	require.Empty(t, Mismatches(records))
}

func TestTransformEmpty(t *testing.T) {
	schedule := decode[erp.Schedule](t, schedulePayload)
	_, err := Transform(schedule, nil)
	require.ErrorIs(t, err, ErrEmptyResults)
}

func TestMismatches(t *testing.T) {
	records := decode[[]erp.SubjectResult](t, resultsPayload)
	records = append(records, records[1])
	records[2].Sgpa = records[2].SubjectCode

	mismatches := Mismatches(records)
	require.Len(t, mismatches, 1)
	require.Equal(t, "sgpa", mismatches[0].Field)
	require.Equal(t, 2, mismatches[0].Index)
}
