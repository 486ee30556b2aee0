package erp

import (
	"net/http"
	"slices"

	"resultsync-backend/internal/normalize"
)

// Session is the set of cookies attached to an authenticated browsing
// context, keyed by cookie name.
type Session map[string]string

// Cookies returns the session as http cookies, ordered by name.
func (s Session) Cookies() []*http.Cookie {
	names := s.Names()
	out := make([]*http.Cookie, len(names))
	for i, name := range names {
		out[i] = &http.Cookie{Name: name, Value: s[name]}
	}
	return out
}

// Names returns the sorted cookie names, this is what should be logged
// instead of the session itself.
func (s Session) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Schedule is one examination sitting available to the logged in student.
type Schedule struct {
	ExamScheduleId          normalize.Raw `json:"examScheduleId"`
	SemesterId              normalize.Raw `json:"semesterId"`
	SemesterName            normalize.Raw `json:"semesterName"`
	ExamName                normalize.Raw `json:"ExamName"`
	ResultDeclarationDate   normalize.Raw `json:"resultDeclarationDate"`
	UniversitySyllabusId    normalize.Raw `json:"universitySyllabusId"`
	ExamScheduleTimetableId normalize.Raw `json:"examScheduleTimetableId"`
}

// SubjectResult is the result of a single subject, the portal repeats the
// student and semester fields on every subject of a schedule.
type SubjectResult struct {
	// student
	SeatNo        normalize.Raw `json:"seatNo"`
	StudentName   normalize.Raw `json:"studentName"`
	ProgramName   normalize.Raw `json:"programName"`
	InstituteName normalize.Raw `json:"instituteName"`
	AcademicYear  normalize.Raw `json:"academicyear"`

	// semester
	PassingYear           normalize.Raw `json:"passingYear"`
	PassingMonth          normalize.Raw `json:"passingMonth"`
	Sgpa                  normalize.Raw `json:"sgpa"`
	SgpaCreditPointTotal  normalize.Raw `json:"sgpaCreditPointTotal"`
	SgpaEarnedPointsTotal normalize.Raw `json:"sgpaEarnedPointsTotal"`
	SgpaObtainedMarks     normalize.Raw `json:"sgpaObtainedMarks"`
	OutOff                normalize.Raw `json:"outOff"`
	ResultStatus          normalize.Raw `json:"resultStatus"`
	ResultBlockStatus     normalize.Raw `json:"resultBlockStatus"`
	ResultBlockReason     normalize.Raw `json:"resultBlockReason"`
	Ordinance             normalize.Raw `json:"ordinance"`

	// subject
	SubjectCode          normalize.Raw `json:"subjectCode"`
	SubjectName          normalize.Raw `json:"subjectName"`
	InternalMarks        normalize.Raw `json:"InternalMarks"`
	InternalPassingMarks normalize.Raw `json:"intPassing"`
	MaxInternalMarks     normalize.Raw `json:"int"`
	ExternalMarks        normalize.Raw `json:"ExternalMarks"`
	ExternalPassingMarks normalize.Raw `json:"extPassing"`
	MaxExternalMarks     normalize.Raw `json:"ext"`
	Grade                normalize.Raw `json:"Grade"`
	Pointer              normalize.Raw `json:"Pointer"`
	EarnedCredit         normalize.Raw `json:"earnedCredit"`
	CreditPoint          normalize.Raw `json:"creditPoint"`
}

// FetchResult carries the records of a portal listing along with the
// status code it was served with. A non-2xx status always comes with no
// records, use Failed to tell it apart from a listing that is just empty.
type FetchResult[T any] struct {
	Status  int
	Records []T
}

func (r FetchResult[T]) Failed() bool {
	return r.Status < 200 || r.Status > 299
}
