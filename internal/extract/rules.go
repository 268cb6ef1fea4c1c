package extract

import "github.com/gyeh/intake-recon/internal/record"

// Rule is a named extraction pattern. The pattern must contain exactly one
// capture group; it is compiled case-insensitively.
type Rule struct {
	Field   record.Field
	Pattern string
}

// phone matches 555-123-4567, (555) 123-4567, 555.123.4567 and 5551234567.
const phone = `(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})`

// DefaultRules returns the built-in rule for every extracted field.
//
// RE2 has no lookahead, so rules that stop at a following label consume the
// label outside the capture group instead.
func DefaultRules() []Rule {
	return []Rule{
		{record.FirstName, `First\s*Name\s*:?\s*([\p{L}\p{M}\p{N}_]+)`},
		{record.LastName, `Last\s*Name\s*:?\s*([^\n]+?)\s*(?:Date\s*of\s*Birth|\n|$)`},
		{record.DateOfBirth, `Date\s*of\s*Birth\s*:?\s*(\d{2}[/-]\d{2}[/-]\d{4}|\d{4}-\d{2}-\d{2}|\d{8})`},
		{record.EmailAddress, `Email\s*Address\s*:?\s*([^\s]+@[^\s]+)`},
		{record.HomeAddress, `Home\s*Address\s*:?\s*([^\n]+)`},
		{record.MobilePhone, `Mobile\s*Phone\s*#?\s*:?\s*` + phone},
		{record.WorkPhone, `Work\s*Phone\s*#?\s*:?\s*` + phone},
		{record.HomePhone, `Home\s*Phone\s*#?\s*:?\s*` + phone},
		{record.SocialSecurity, `Social\s*Security[:#\s]*(\d{3}[-.\s]?\d{2}[-.\s]?\d{4}|\d{9})`},
		{record.InsurancePolicy, `Policy\s*(?:Number)?\s*:?\s*([^\n]*?)\s*(?:Group|Tricare|\n|$)`},
		{record.ReferringPhysician, `Referring\s*Physician\s*Name\s*:?\s*([^\n:]+?)\s*(?:Physician'?s\s*Address|\n|$)`},
	}
}
