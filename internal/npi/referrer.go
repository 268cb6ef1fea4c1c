package npi

import (
	"context"
	"fmt"
	"strings"
)

// Verification statuses.
const (
	StatusVerified  = "verified"
	StatusAmbiguous = "ambiguous"
	StatusNotFound  = "not_found"
	StatusSkipped   = "skipped"
)

// Verification is the registry outcome for one referring physician name.
type Verification struct {
	Query      string          `json:"query"`
	Status     string          `json:"status"`
	Candidates []*ProviderInfo `json:"candidates,omitempty"`
}

// Verifier checks referring physician names against the NPI Registry.
type Verifier struct {
	// State narrows the search to a 2-letter state code.
	State string
	// Limit caps the candidates returned. Zero means 5.
	Limit int
}

// credentials are trailing tokens dropped from physician names.
var credentials = map[string]bool{
	"md": true, "do": true, "np": true, "pa": true, "pa-c": true, "dpm": true,
	"dds": true, "dmd": true, "od": true, "phd": true, "rn": true, "aprn": true,
	"fnp": true, "fnp-c": true, "jr": true, "sr": true, "ii": true, "iii": true,
}

// SplitName splits a free-form physician name such as "Dr. Alan J. Smith, MD"
// or "Smith, Alan" into first and last name.
func SplitName(name string) (first, last string, ok bool) {
	name = strings.TrimSpace(name)

	// "Last, First" when the comma does not introduce credentials.
	if before, after, found := strings.Cut(name, ","); found {
		rest := tokens(after)
		if len(rest) > 0 && !credentials[strings.ToLower(rest[0])] && len(tokens(before)) == 1 {
			return rest[0], tokens(before)[0], true
		}
		name = before
	}

	words := tokens(name)
	if len(words) > 0 && strings.EqualFold(words[0], "dr") {
		words = words[1:]
	}
	for len(words) > 0 && credentials[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	if len(words) < 2 {
		return "", "", false
	}
	return words[0], words[len(words)-1], true
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '.' || r == ','
	})
}

// Verify searches the registry for name. Names that cannot be split into a
// first and last name are skipped without a request.
func (v *Verifier) Verify(ctx context.Context, name string) (*Verification, error) {
	out := &Verification{Query: strings.TrimSpace(name)}

	first, last, ok := SplitName(name)
	if !ok {
		out.Status = StatusSkipped
		return out, nil
	}

	limit := v.Limit
	if limit <= 0 {
		limit = 5
	}
	candidates, err := SearchByName(ctx, first, last, v.State, limit)
	if err != nil {
		return nil, fmt.Errorf("verifying referrer %q: %w", name, err)
	}

	out.Candidates = candidates
	switch len(candidates) {
	case 0:
		out.Status = StatusNotFound
	case 1:
		out.Status = StatusVerified
	default:
		out.Status = StatusAmbiguous
	}
	return out, nil
}
