// Package normalize turns the loosely typed scalars served by the ERP portal
// into typed nullable values.
//
// The portal uses the literal "-" to mean that a value is absent, and it is
// not consistent about whether numbers are sent as JSON numbers or strings.
// Values that cannot be converted to the requested type become null instead
// of failing the ingestion.
package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"
)

// Absent is the placeholder the portal uses for a missing value.
const Absent = "-"

// Raw holds a scalar exactly as it appeared in a JSON payload. Strings are
// kept unquoted, numbers and booleans keep their literal text. A JSON null
// or a missing key leaves Raw invalid.
type Raw struct {
	Text  string
	Valid bool
}

// RawFrom creates a valid Raw out of a string.
func RawFrom(s string) Raw {
	return Raw{Text: s, Valid: true}
}

func (r *Raw) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Raw{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*r = RawFrom(s)
	case '{', '[':
		// objects and arrays are never scalars, treat them as malformed
		*r = Raw{}
	default:
		*r = RawFrom(string(data))
	}
	return nil
}

func (r Raw) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Text)
}

// text returns the trimmed text of a raw value and whether it carries a value at all.
func text(r Raw) (string, bool) {
	if !r.Valid {
		return "", false
	}
	s := strings.TrimSpace(r.Text)
	if s == Absent {
		return "", false
	}
	return s, true
}

// String normalizes a raw value into a nullable string.
func String(r Raw) null.String {
	s, ok := text(r)
	if !ok {
		return null.String{}
	}
	return null.StringFrom(s)
}

// Int normalizes a raw value into a nullable integer, anything that is not
// a base 10 integer becomes null.
func Int(r Raw) null.Int {
	s, ok := text(r)
	if !ok {
		return null.Int{}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(n)
}

// Float normalizes a raw value into a nullable float, NaN and infinities
// become null.
func Float(r Raw) null.Float64 {
	s, ok := text(r)
	if !ok {
		return null.Float64{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float64{}
	}
	return null.Float64From(f)
}

// Bool normalizes a raw value into a nullable boolean.
func Bool(r Raw) null.Bool {
	s, ok := text(r)
	if !ok {
		return null.Bool{}
	}
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "1":
		return null.BoolFrom(true)
	case "false", "f", "no", "n", "0":
		return null.BoolFrom(false)
	}
	return null.Bool{}
}

// Round rounds a nullable float to the given number of decimal places.
func Round(f null.Float64, places int) null.Float64 {
	if !f.Valid {
		return f
	}
	scale := math.Pow(10, float64(places))
	return null.Float64From(math.Round(f.Float64*scale) / scale)
}
