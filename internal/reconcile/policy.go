// Package reconcile compares extracted document fields against a matched
// reference record under a fixed per-field policy.
package reconcile

import "github.com/gyeh/intake-recon/internal/record"

// Behavior decides what a disagreement between a reference column and an
// extracted field means.
type Behavior int

const (
	// Ignore never reports anything for the pair.
	Ignore Behavior = iota
	// FillGap proposes an update when the reference is empty and the
	// document supplies a value.
	FillGap
	// MismatchSensitive reports differing values for manual review. It also
	// proposes an update when the reference is empty.
	MismatchSensitive
)

func (b Behavior) String() string {
	switch b {
	case FillGap:
		return "fill_gap"
	case MismatchSensitive:
		return "mismatch_sensitive"
	default:
		return "ignore"
	}
}

// Pair binds a reference column to the extracted field it is compared with.
type Pair struct {
	Column   record.Column
	Field    record.Field
	Behavior Behavior
}

// Policy is an ordered comparison table. Updates and mismatches are reported
// in table order.
type Policy []Pair

// DefaultPolicy returns the comparison table used for every document.
func DefaultPolicy() Policy {
	return Policy{
		{record.PatientFirstName, record.FirstName, FillGap},
		{record.PatientLastName, record.LastName, FillGap},
		{record.PatientDOB, record.DateOfBirth, MismatchSensitive},
		{record.PatientEmail, record.EmailAddress, FillGap},
		{record.PatientAddressLine1, record.HomeAddress, FillGap},
		{record.PatientCellPhone, record.MobilePhone, FillGap},
		{record.PatientWorkPhone, record.WorkPhone, FillGap},
		{record.PatientHomePhone, record.HomePhone, FillGap},
		{record.DemographicsReferringProvider, record.ReferringPhysician, FillGap},
		{record.SSN, record.SocialSecurity, MismatchSensitive},
		{record.Policy, record.InsurancePolicy, FillGap},
		{record.ReferingName, record.ReferringPhysician, FillGap},
	}
}
