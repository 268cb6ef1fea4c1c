package reconcile

import (
	"strings"

	"github.com/gyeh/intake-recon/internal/normalize"
	"github.com/gyeh/intake-recon/internal/record"
)

// Mismatch is a MismatchSensitive field whose reference and extracted values
// disagree.
type Mismatch struct {
	Column    record.Column
	Reference string
	Extracted string
}

// Result is the reconciliation outcome for one document.
type Result struct {
	Record        *record.Reference
	FullName      string
	AccountNumber string
	Mismatches    []Mismatch
	// Updates holds column display names in policy order, without duplicates.
	Updates []string
}

// NeedsReview reports whether any field requires manual verification.
func (r Result) NeedsReview() bool { return len(r.Mismatches) > 0 }

// NeedsUpdate reports whether the reference record should be back-filled.
func (r Result) NeedsUpdate() bool { return len(r.Updates) > 0 }

// Reconcile compares fields against ref using DefaultPolicy.
func Reconcile(fields record.ExtractedFields, ref *record.Reference) Result {
	return DefaultPolicy().Reconcile(fields, ref)
}

// Reconcile compares fields against ref pair by pair.
//
// Extracted values that were not found count as absent. A value that failed
// normalization takes part as the "Invalid Format" sentinel, so it mismatches
// a known reference value and fills an empty one. A mismatch is only reported
// when both sides are present.
func (p Policy) Reconcile(fields record.ExtractedFields, ref *record.Reference) Result {
	res := Result{
		Record:        ref,
		FullName:      fullName(ref),
		AccountNumber: accountNumber(ref),
	}

	seen := make(map[string]bool)
	for _, pair := range p {
		if pair.Behavior == Ignore {
			continue
		}

		refVal := referenceValue(ref, pair.Column)
		extVal := extractedValue(fields, pair.Field)
		if extVal == "" {
			continue
		}

		if refVal == "" {
			name := pair.Column.DisplayName()
			if !seen[name] {
				seen[name] = true
				res.Updates = append(res.Updates, name)
			}
			continue
		}

		if pair.Behavior == MismatchSensitive && canonical(pair.Column, refVal) != canonical(pair.Column, extVal) {
			res.Mismatches = append(res.Mismatches, Mismatch{
				Column:    pair.Column,
				Reference: refVal,
				Extracted: extVal,
			})
		}
	}

	return res
}

func referenceValue(ref *record.Reference, c record.Column) string {
	if ref == nil {
		return ""
	}
	if c.Kind() != record.KindDate {
		return ref.Text(c)
	}
	cell := ref.Cell(c)
	v := normalize.ReferenceDate(cell.Text, cell.Date)
	if v == normalize.NotAvailable {
		return ""
	}
	return v
}

// extractedValue returns the trimmed text of a found field, the display
// sentinel of an invalid one, or "" when the field was not found.
func extractedValue(fields record.ExtractedFields, f record.Field) string {
	v := fields.Get(f)
	if v.State == record.Invalid {
		return v.String()
	}
	return fields.Text(f)
}

// canonical maps equivalent spellings of a value to one form. The reference
// date normalizer yields YYYY-MM-DD while extracted dates are DD-MM-YYYY, so
// both sides go through the date of birth normalizer before comparing.
func canonical(c record.Column, v string) string {
	switch c {
	case record.PatientDOB:
		if d, err := normalize.DateOfBirth(v); err == nil {
			return d
		}
		return v
	case record.SSN:
		return normalize.SSN(v)
	default:
		return v
	}
}

func fullName(ref *record.Reference) string {
	if ref == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, c := range []record.Column{record.PatientFirstName, record.PatientMiddleInitial, record.PatientLastName} {
		if v := ref.Text(c); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

func accountNumber(ref *record.Reference) string {
	if ref == nil {
		return normalize.NotAvailable
	}
	if v := ref.Text(record.PatientAcctNo); v != "" {
		return v
	}
	return normalize.NotAvailable
}
