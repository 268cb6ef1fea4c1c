// Package normalize converts ambiguous date and identifier strings into the
// canonical forms used for storage and comparison.
package normalize

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// InvalidFormat is displayed in place of a date of birth that could not be parsed.
	InvalidFormat = "Invalid Format"
	// NotAvailable is returned for reference dates with no value.
	NotAvailable = "Not Available"
)

// ErrInvalidFormat is returned when a date of birth matches none of the accepted shapes.
var ErrInvalidFormat = errors.New("invalid date format")

// DateOfBirth converts a date of birth to DD-MM-YYYY.
//
// Accepted shapes:
//   - MM/DD/YYYY
//   - YYYY-MM-DD
//   - DD-MM-YYYY (returned unchanged)
//   - MMDDYYYY (exactly 8 digits)
func DateOfBirth(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.Contains(raw, "/"):
		parts := strings.Split(raw, "/")
		if !segmentsValid(parts, 2, 2, 4) {
			return "", ErrInvalidFormat
		}
		return parts[1] + "-" + parts[0] + "-" + parts[2], nil

	case strings.Contains(raw, "-"):
		parts := strings.Split(raw, "-")
		if len(parts) != 3 {
			return "", ErrInvalidFormat
		}
		if len(parts[0]) == 4 {
			if !segmentsValid(parts, 4, 2, 2) {
				return "", ErrInvalidFormat
			}
			return parts[2] + "-" + parts[1] + "-" + parts[0], nil
		}
		if !segmentsValid(parts, 2, 2, 4) {
			return "", ErrInvalidFormat
		}
		return raw, nil

	case len(raw) == 8 && isDigits(raw):
		return raw[2:4] + "-" + raw[:2] + "-" + raw[4:], nil
	}

	return "", ErrInvalidFormat
}

// ReferenceDate renders a reference dataset date. A typed date is formatted
// as YYYY-MM-DD; text is returned up to its first whitespace without
// reformatting; an empty cell yields NotAvailable.
func ReferenceDate(text string, date time.Time) string {
	if !date.IsZero() {
		return date.Format("2006-01-02")
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return NotAvailable
	}
	return fields[0]
}

// SSN strips separators from a social security number and formats nine
// digits as DDD-DD-DDDD. Other input is returned unchanged.
func SSN(raw string) string {
	clean := strings.NewReplacer("-", "", ".", "", " ", "").Replace(raw)
	if len(clean) != 9 || !isDigits(clean) {
		return raw
	}
	return clean[:3] + "-" + clean[3:5] + "-" + clean[5:]
}

// Text performs Unicode normalization on decoded document text, replaces
// invalid UTF-8 and drops control characters other than newlines and tabs.
func Text(text string) string {
	text = strings.ToValidUTF8(text, "\uFFFD")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	normed := norm.NFKC.String(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' {
			return '\n'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

func segmentsValid(parts []string, lengths ...int) bool {
	if len(parts) != len(lengths) {
		return false
	}
	for i, p := range parts {
		if len(p) != lengths[i] || !isDigits(p) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
