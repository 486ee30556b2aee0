package transform

import (
	"resultsync-backend/internal/normalize"
	"resultsync-backend/internal/scrapers/erp"
)

// Mismatch is a student or semester field of a record that differs from the
// first record of the same listing.
type Mismatch struct {
	Field  string
	Index  int
	First  normalize.Raw
	Actual normalize.Raw
}

type sharedField struct {
	name string
	get  func(r erp.SubjectResult) normalize.Raw
}

var sharedFields = []sharedField{
	{"seatNo", func(r erp.SubjectResult) normalize.Raw { return r.SeatNo }},
	{"studentName", func(r erp.SubjectResult) normalize.Raw { return r.StudentName }},
	{"programName", func(r erp.SubjectResult) normalize.Raw { return r.ProgramName }},
	{"instituteName", func(r erp.SubjectResult) normalize.Raw { return r.InstituteName }},
	{"academicyear", func(r erp.SubjectResult) normalize.Raw { return r.AcademicYear }},
	{"passingYear", func(r erp.SubjectResult) normalize.Raw { return r.PassingYear }},
	{"passingMonth", func(r erp.SubjectResult) normalize.Raw { return r.PassingMonth }},
	{"sgpa", func(r erp.SubjectResult) normalize.Raw { return r.Sgpa }},
	{"sgpaCreditPointTotal", func(r erp.SubjectResult) normalize.Raw { return r.SgpaCreditPointTotal }},
	{"sgpaEarnedPointsTotal", func(r erp.SubjectResult) normalize.Raw { return r.SgpaEarnedPointsTotal }},
	{"sgpaObtainedMarks", func(r erp.SubjectResult) normalize.Raw { return r.SgpaObtainedMarks }},
	{"outOff", func(r erp.SubjectResult) normalize.Raw { return r.OutOff }},
	{"resultStatus", func(r erp.SubjectResult) normalize.Raw { return r.ResultStatus }},
	{"resultBlockStatus", func(r erp.SubjectResult) normalize.Raw { return r.ResultBlockStatus }},
	{"resultBlockReason", func(r erp.SubjectResult) normalize.Raw { return r.ResultBlockReason }},
	{"ordinance", func(r erp.SubjectResult) normalize.Raw { return r.Ordinance }},
}

// Mismatches compares the student and semester fields of every record against
// the first one. Values are compared after normalizing them as strings, so
// `8.1` and `"8.1"` are considered equal.
func Mismatches(records []erp.SubjectResult) []Mismatch {
	if len(records) < 2 {
		return nil
	}

	var out []Mismatch
	first := records[0]
	for i, r := range records[1:] {
		for _, f := range sharedFields {
			expected := f.get(first)
			actual := f.get(r)
			if normalize.String(expected) == normalize.String(actual) {
				continue
			}
			out = append(out, Mismatch{
				Field:  f.name,
				Index:  i + 1,
				First:  expected,
				Actual: actual,
			})
		}
	}
	return out
}
