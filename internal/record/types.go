package record

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gyeh/intake-recon/internal/normalize"
)

// Kind is the semantic type of a field or column.
type Kind string

const (
	KindText       Kind = "text"
	KindDate       Kind = "date"
	KindPhone      Kind = "phone"
	KindIdentifier Kind = "identifier"
)

// Field names a value extracted from document text.
type Field int

const (
	FirstName Field = iota
	LastName
	DateOfBirth
	EmailAddress
	HomeAddress
	MobilePhone
	WorkPhone
	HomePhone
	SocialSecurity
	InsurancePolicy
	ReferringPhysician
	fieldCount
)

var fieldInfo = [fieldCount]struct {
	name string
	kind Kind
}{
	FirstName:          {"First Name", KindText},
	LastName:           {"Last Name", KindText},
	DateOfBirth:        {"Date of Birth", KindDate},
	EmailAddress:       {"Email Address", KindText},
	HomeAddress:        {"Home Address", KindText},
	MobilePhone:        {"Mobile Phone", KindPhone},
	WorkPhone:          {"Work Phone", KindPhone},
	HomePhone:          {"Home Phone", KindPhone},
	SocialSecurity:     {"Social Security", KindIdentifier},
	InsurancePolicy:    {"Insurance Policy", KindIdentifier},
	ReferringPhysician: {"Referring Physician Name", KindText},
}

// Fields lists every extracted field in declaration order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

func (f Field) String() string { return fieldInfo[f].name }

// Kind returns the field's semantic type.
func (f Field) Kind() Kind { return fieldInfo[f].kind }

// State tells whether an extracted field carries a usable value.
type State int

const (
	NotFound State = iota
	Found
	// Invalid marks a value that was located but failed normalization.
	Invalid
)

// NotFoundText is how a missing field is displayed.
const NotFoundText = "Not Found"

// Value is the outcome of extracting one field.
type Value struct {
	State State
	Text  string
}

// Present reports whether the value was found and is non-empty after trimming.
func (v Value) Present() bool {
	return v.State == Found && strings.TrimSpace(v.Text) != ""
}

func (v Value) String() string {
	switch v.State {
	case Found:
		return v.Text
	case Invalid:
		return normalize.InvalidFormat
	default:
		return NotFoundText
	}
}

// ExtractedFields holds one value per Field. It is built once per document
// and only read afterwards.
type ExtractedFields struct {
	values [fieldCount]Value
}

// NewExtractedFields builds ExtractedFields from the given values. Fields
// absent from the map are NotFound.
func NewExtractedFields(values map[Field]Value) ExtractedFields {
	var ef ExtractedFields
	for f, v := range values {
		ef.values[f] = v
	}
	return ef
}

// Get returns the value of a field.
func (e ExtractedFields) Get(f Field) Value { return e.values[f] }

// Text returns the trimmed text of a found field, or "" otherwise.
func (e ExtractedFields) Text(f Field) string {
	v := e.values[f]
	if v.State != Found {
		return ""
	}
	return strings.TrimSpace(v.Text)
}

// MarshalJSON renders fields as an object keyed by field name, using the
// display sentinels for missing and invalid values.
func (e ExtractedFields) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, fieldCount)
	for _, f := range Fields() {
		m[f.String()] = e.values[f].String()
	}
	return json.Marshal(m)
}

// Cell is one reference dataset value. Date is set only when the source
// cell was typed as a date.
type Cell struct {
	Text string
	Date time.Time
}

// Reference is one row of the reference dataset.
type Reference struct {
	// Row is the 1-based position of the record among the dataset's data rows.
	Row   int
	cells map[Column]Cell
}

// NewReference builds a reference record. Cells are copied.
func NewReference(row int, cells map[Column]Cell) *Reference {
	c := make(map[Column]Cell, len(cells))
	for k, v := range cells {
		c[k] = v
	}
	return &Reference{Row: row, cells: c}
}

// Cell returns the cell stored for a column; missing columns are empty.
func (r *Reference) Cell(c Column) Cell { return r.cells[c] }

// Text returns the trimmed text of a column, or the YYYY-MM-DD rendering of
// a typed date.
func (r *Reference) Text(c Column) string {
	cell := r.cells[c]
	if !cell.Date.IsZero() {
		return cell.Date.Format("2006-01-02")
	}
	return strings.TrimSpace(cell.Text)
}
