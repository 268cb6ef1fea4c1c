package lookup

import (
	"errors"
	"strings"

	"github.com/gyeh/intake-recon/internal/record"
)

var (
	// ErrEmptyIdentity is returned when the extracted first name is missing or blank.
	ErrEmptyIdentity = errors.New("extracted first name is empty")
	// ErrNoMatch is returned when no reference record shares the extracted names.
	ErrNoMatch = errors.New("no matching reference record")
)

// Match returns the first record in the first name's bucket whose first and
// last names equal the extracted ones, case-insensitively after trimming.
//
// A document without a last name matches nothing. Later records with the
// same names are never considered.
func Match(fields record.ExtractedFields, idx *Index) (*record.Reference, error) {
	first := fields.Text(record.FirstName)
	if first == "" {
		return nil, ErrEmptyIdentity
	}
	// A last name that was not found never equals a blank reference name.
	last := fields.Text(record.LastName)
	if last == "" {
		return nil, ErrNoMatch
	}

	letter, _ := firstLetter(first)
	for _, ref := range idx.Bucket(letter) {
		if strings.EqualFold(ref.Text(record.PatientFirstName), first) &&
			strings.EqualFold(ref.Text(record.PatientLastName), last) {
			return ref, nil
		}
	}
	return nil, ErrNoMatch
}
