package form

import (
	"strings"

	"github.com/dkoosis/qarun/pkg/report"
)

// Values is the flattened field-name -> value map of a form.
type Values map[string]string

// Get returns the value of a field, or "".
func (v Values) Get(name string) string { return v[name] }

// Set stores a field value. An empty value removes the field.
func (v Values) Set(name, value string) {
	if value == "" {
		delete(v, name)
		return
	}
	v[name] = value
}

// Status returns the normalized status of a test case.
func (v Values) Status(id string) report.Status {
	return report.Status(v[StatusField(id)]).Normalize()
}

// SetStatus records a status for a test case.
func (v Values) SetStatus(id string, s report.Status) {
	v.Set(StatusField(id), string(s.Normalize()))
}

// Comment returns the comment for a test case.
func (v Values) Comment(id string) string { return v[CommentField(id)] }

// SetComment records a comment for a test case.
func (v Values) SetComment(id, comment string) { v.Set(CommentField(id), comment) }

// Tester is the information collected on the first step.
type Tester struct {
	Name    string
	Date    string
	Browser string
	Device  string
}

// Tester returns the tester fields with surrounding whitespace removed.
func (v Values) Tester() Tester {
	return Tester{
		Name:    strings.TrimSpace(v[FieldTesterName]),
		Date:    strings.TrimSpace(v[FieldTestDate]),
		Browser: strings.TrimSpace(v[FieldBrowser]),
		Device:  strings.TrimSpace(v[FieldDevice]),
	}
}

// Clone returns an independent copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
