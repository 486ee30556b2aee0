package store

import (
	"context"
	"testing"

	"resultsync-backend/internal/components/telemetry"
	"resultsync-backend/internal/db"
	"resultsync-backend/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func setupStore(t testing.TB) (Store, *sqlx.DB, *telemetry.RecorderAPI) {
	t.Helper()

	database := testutil.OpenDB(t, db.Schema)
	tel := telemetry.NewRecorderAPI()
	store := NewStore(db.New(database), db.NewMakeTx(database), db.NewMakeSnapshotTx(database), tel)
	return store, database, tel
}

func testStudent(registerNo string) db.Student {
	return db.Student{
		RegisterNo:     null.StringFrom(registerNo),
		Name:           null.StringFrom("Asha Rao"),
		Course:         null.StringFrom("B.Tech CSE"),
		School:         null.StringFrom("School of Engineering"),
		CourseDuration: null.StringFrom("2021-2025"),
	}
}

func testSemester(registerNo string, scheduleId, semesterNo int, sgpa, earned float64, status string) db.Semester {
	return db.Semester{
		ExamScheduleTimetableId: null.IntFrom(scheduleId),
		SemesterNo:              null.IntFrom(semesterNo),
		RegisterNo:              null.StringFrom(registerNo),
		PassingYear:             null.IntFrom(2022),
		PassingMonth:            null.StringFrom("June"),
		Sgpa:                    null.Float64From(sgpa),
		TotalCredits:            null.Float64From(earned),
		EarnedCredits:           null.Float64From(earned),
		ResultStatus:            null.StringFrom(status),
		BlockStatus:             null.BoolFrom(false),
	}
}

func testSubject(semester db.Semester, code string) db.Subject {
	return db.Subject{
		ExamScheduleTimetableId: semester.ExamScheduleTimetableId,
		SubjectCode:             null.StringFrom(code),
		SemesterNo:              semester.SemesterNo,
		RegisterNo:              semester.RegisterNo,
		SubjectName:             null.StringFrom("Subject " + code),
		InternalMarks:           null.Float64From(40),
		ExternalMarks:           null.Float64From(45),
		Grade:                   null.StringFrom("A"),
		GradePoint:              null.Float64From(9),
		CreditsObtained:         null.Float64From(4),
		MaxCredits:              null.Float64From(4),
	}
}

type dump struct {
	Students  []db.Student
	Semesters []db.Semester
	Subjects  []db.Subject
}

func dumpTables(t testing.TB, qry *db.Queries) dump {
	t.Helper()
	ctx := context.Background()

	students, err := qry.ListStudents(ctx)
	require.NoError(t, err)
	semesters, err := qry.ListSemesters(ctx)
	require.NoError(t, err)
	subjects, err := qry.ListSubjects(ctx)
	require.NoError(t, err)

	return dump{Students: students, Semesters: semesters, Subjects: subjects}
}

func TestCommitIdempotent(t *testing.T) {
	store, database, _ := setupStore(t)
	ctx := context.Background()

	student := testStudent("21CS001")
	semester := testSemester("21CS001", 101, 1, 8, 20, db.ResultSuccessful)
	subjects := []db.Subject{testSubject(semester, "CS101"), testSubject(semester, "MA101")}

	require.NoError(t, store.Commit(ctx, student, semester, subjects))
	first := dumpTables(t, db.New(database))
	require.Len(t, first.Students, 1)
	require.Len(t, first.Semesters, 1)
	require.Len(t, first.Subjects, 2)

	require.NoError(t, store.Commit(ctx, student, semester, subjects))
	second := dumpTables(t, db.New(database))

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second commit changed the tables (-first +second):\n%s", diff)
	}
}

func TestCommitKeepsExistingRows(t *testing.T) {
	store, database, _ := setupStore(t)
	ctx := context.Background()

	student := testStudent("21CS001")
	semester := testSemester("21CS001", 101, 1, 8, 20, db.ResultSuccessful)
	require.NoError(t, store.Commit(ctx, student, semester, nil))

	renamed := student
	renamed.Name = null.StringFrom("Someone Else")
	require.NoError(t, store.Commit(ctx, renamed, semester, nil))

	stored, err := db.New(database).GetStudent(ctx, "21CS001")
	require.NoError(t, err)
	require.Equal(t, "Asha Rao", stored.Name.String)
}

func TestCommitCgpa(t *testing.T) {
	store, database, _ := setupStore(t)
	ctx := context.Background()
	qry := db.New(database)

	student := testStudent("21CS001")
	first := testSemester("21CS001", 101, 1, 8, 20, db.ResultSuccessful)
	second := testSemester("21CS001", 102, 2, 9, 20, db.ResultSuccessful)

	require.NoError(t, store.Commit(ctx, student, first, []db.Subject{testSubject(first, "CS101")}))
	stored, err := qry.GetStudent(ctx, "21CS001")
	require.NoError(t, err)
	require.True(t, stored.Cgpa.Valid)
	require.InDelta(t, 8, stored.Cgpa.Float64, 0.001)

	require.NoError(t, store.Commit(ctx, student, second, []db.Subject{testSubject(second, "CS201")}))
	stored, err = qry.GetStudent(ctx, "21CS001")
	require.NoError(t, err)
	require.True(t, stored.Cgpa.Valid)
	require.InDelta(t, 8.5, stored.Cgpa.Float64, 0.001)

	failed := testSemester("21CS001", 103, 3, 4, 10, "Reappear")
	require.NoError(t, store.Commit(ctx, student, failed, nil))
	stored, err = qry.GetStudent(ctx, "21CS001")
	require.NoError(t, err)
	require.False(t, stored.Cgpa.Valid, "cgpa should be null while a semester is not passed")
}

func TestCommitRollsBack(t *testing.T) {
	store, database, tel := setupStore(t)
	ctx := context.Background()

	student := testStudent("21CS001")
	semester := testSemester("21CS001", 101, 1, 8, 20, db.ResultSuccessful)

	// this subject points at a semester that is never written
	orphan := testSubject(semester, "CS101")
	orphan.SemesterNo = null.IntFrom(7)

	err := store.Commit(ctx, student, semester, []db.Subject{orphan})
	require.ErrorIs(t, err, ErrPersistenceFailure)
	require.Len(t, tel.Find("broken", report_store_commit), 1)

	tables := dumpTables(t, db.New(database))
	require.Empty(t, tables.Students)
	require.Empty(t, tables.Semesters)
	require.Empty(t, tables.Subjects)
}

func TestCommitRejectsMissingKey(t *testing.T) {
	store, database, _ := setupStore(t)
	ctx := context.Background()

	student := testStudent("21CS001")
	semester := testSemester("21CS001", 101, 1, 8, 20, db.ResultSuccessful)
	semester.SemesterNo = null.Int{}

	err := store.Commit(ctx, student, semester, nil)
	require.ErrorIs(t, err, ErrPersistenceFailure)
	require.Empty(t, dumpTables(t, db.New(database)).Students)
}

func TestRecomputeAll(t *testing.T) {
	store, database, _ := setupStore(t)
	ctx := context.Background()
	qry := db.New(database)

	for _, registerNo := range []string{"21CS001", "21CS002"} {
		semester := testSemester(registerNo, 101, 1, 7, 20, db.ResultSuccessful)
		require.NoError(t, store.Commit(ctx, testStudent(registerNo), semester, nil))
		require.NoError(t, qry.SetStudentCgpa(ctx, registerNo, null.Float64{}))
	}

	count, err := store.RecomputeAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	students, err := qry.ListStudents(ctx)
	require.NoError(t, err)
	for _, s := range students {
		require.True(t, s.Cgpa.Valid, s.RegisterNo.String)
		require.InDelta(t, 7, s.Cgpa.Float64, 0.001)
	}
}
