package record

import "strings"

// Column names a reference dataset column the engine understands.
type Column int

const (
	PatientFirstName Column = iota
	PatientLastName
	PatientMiddleInitial
	PatientAcctNo
	PatientDOB
	PatientEmail
	PatientAddressLine1
	PatientCellPhone
	PatientWorkPhone
	PatientHomePhone
	DemographicsReferringProvider
	SSN
	Policy
	ReferingName
	columnCount
)

var columnInfo = [columnCount]struct {
	header string
	kind   Kind
}{
	PatientFirstName:              {"Patient First Name", KindText},
	PatientLastName:               {"Patient Last Name", KindText},
	PatientMiddleInitial:          {"Patient Middle Initial", KindText},
	PatientAcctNo:                 {"Patient Acct No", KindIdentifier},
	PatientDOB:                    {"Patient DOB", KindDate},
	PatientEmail:                  {"Patient Email", KindText},
	PatientAddressLine1:           {"Patient Address Line 1", KindText},
	PatientCellPhone:              {"Patient Cell Phone", KindPhone},
	PatientWorkPhone:              {"Patient Work Phone", KindPhone},
	PatientHomePhone:              {"Patient Home Phone", KindPhone},
	DemographicsReferringProvider: {"Demographics Referring Provider Name", KindText},
	SSN:                           {"SSN", KindIdentifier},
	Policy:                        {"Policy", KindIdentifier},
	ReferingName:                  {"Refering Name", KindText},
}

// Columns lists every known column in declaration order.
func Columns() []Column {
	out := make([]Column, columnCount)
	for i := range out {
		out[i] = Column(i)
	}
	return out
}

// Header is the column's name in the reference dataset.
func (c Column) Header() string { return columnInfo[c].header }

func (c Column) String() string { return columnInfo[c].header }

// Kind returns the column's semantic type.
func (c Column) Kind() Kind { return columnInfo[c].kind }

// DisplayName is the header with its "Patient " or "Demographics " prefix
// removed, as used in update lists.
func (c Column) DisplayName() string {
	h := columnInfo[c].header
	h = strings.ReplaceAll(h, "Patient ", "")
	return strings.ReplaceAll(h, "Demographics ", "")
}

// ColumnForHeader resolves a dataset header to a known column. Matching is
// case-insensitive and ignores surrounding whitespace and a UTF-8 BOM.
func ColumnForHeader(header string) (Column, bool) {
	h := strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	for i, info := range columnInfo {
		if strings.EqualFold(info.header, h) {
			return Column(i), true
		}
	}
	return 0, false
}
