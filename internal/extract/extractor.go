// Package extract turns free-form document text into a typed field map using
// a fixed set of named, case-insensitive pattern rules.
//
// Each rule is resolved independently against the whole text, so rule order
// never changes the result. A rule that does not match leaves its field
// NotFound. Dates of birth and social security numbers are normalized after
// extraction.
//
// Discoveries of a referring physician or an insurance policy are reported to
// an optional Observer as they happen; observers never affect the result.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gyeh/intake-recon/internal/normalize"
	"github.com/gyeh/intake-recon/internal/record"
)

// ErrExtraction is returned when a document cannot be turned into a field map.
var ErrExtraction = errors.New("extraction failed")

// referrerLabel detects a referring physician label with no usable name.
var referrerLabel = regexp.MustCompile(`(?i)Referring\s*Physician\s*Name\s*:`)

// Discovery is reported when a field of interest is resolved.
type Discovery struct {
	Field record.Field
	Value string
	// Specified is false when the label is present but carries no value.
	Specified bool
}

// Observer receives discovery events during extraction.
type Observer interface {
	Discovered(d Discovery)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(d Discovery)

func (f ObserverFunc) Discovered(d Discovery) { f(d) }

type compiledRule struct {
	Rule
	regex *regexp.Regexp
}

// Extractor applies compiled rules to document text. It is safe for
// concurrent use once built.
type Extractor struct {
	rules []compiledRule
}

// New compiles the given rules, or DefaultRules when rules is empty. Every
// field must be covered by exactly one rule.
func New(rules []Rule) (*Extractor, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	covered := make(map[record.Field]bool, len(rules))
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Field < 0 || int(r.Field) >= len(record.Fields()) {
			return nil, fmt.Errorf("unknown field %d", int(r.Field))
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %q: %w", r.Field, err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("rule %q: want 1 capture group, got %d", r.Field, re.NumSubexp())
		}
		if covered[r.Field] {
			return nil, fmt.Errorf("duplicate rule for %q", r.Field)
		}
		covered[r.Field] = true
		compiled = append(compiled, compiledRule{Rule: r, regex: re})
	}
	for _, f := range record.Fields() {
		if !covered[f] {
			return nil, fmt.Errorf("no rule for %q", f)
		}
	}

	return &Extractor{rules: compiled}, nil
}

// Extract resolves every field from text. obs may be nil.
//
// A failure for the document as a whole (no text content, or a fault inside
// the pattern engine) is returned as ErrExtraction and no field map is
// produced.
func (e *Extractor) Extract(text string, obs Observer) (fields record.ExtractedFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields = record.ExtractedFields{}
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	text = normalize.Text(text)
	if strings.TrimSpace(text) == "" {
		return record.ExtractedFields{}, fmt.Errorf("%w: no text content", ErrExtraction)
	}

	values := make(map[record.Field]record.Value, len(e.rules))
	for _, r := range e.rules {
		values[r.Field] = r.resolve(text)
	}

	if v := values[record.DateOfBirth]; v.State == record.Found {
		dob, dobErr := normalize.DateOfBirth(v.Text)
		if dobErr != nil {
			values[record.DateOfBirth] = record.Value{State: record.Invalid, Text: v.Text}
		} else {
			values[record.DateOfBirth] = record.Value{State: record.Found, Text: dob}
		}
	}

	if v := values[record.SocialSecurity]; v.State == record.Found {
		values[record.SocialSecurity] = record.Value{State: record.Found, Text: normalize.SSN(v.Text)}
	}

	if obs != nil {
		report(obs, text, values)
	}

	return record.NewExtractedFields(values), nil
}

func (r compiledRule) resolve(text string) record.Value {
	m := r.regex.FindStringSubmatch(text)
	if m == nil {
		return record.Value{State: record.NotFound}
	}
	return record.Value{State: record.Found, Text: strings.TrimSpace(m[1])}
}

func report(obs Observer, text string, values map[record.Field]record.Value) {
	if v := values[record.ReferringPhysician]; v.Present() {
		obs.Discovered(Discovery{Field: record.ReferringPhysician, Value: v.Text, Specified: true})
	} else if referrerLabel.MatchString(text) {
		obs.Discovered(Discovery{Field: record.ReferringPhysician})
	}

	if v := values[record.InsurancePolicy]; v.Present() {
		obs.Discovered(Discovery{Field: record.InsurancePolicy, Value: v.Text, Specified: true})
	}
}
