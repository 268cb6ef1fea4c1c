package dataset

import (
	"testing"
	"time"

	"github.com/gyeh/intake-recon/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func assertJaneJohn(t *testing.T, refs []*record.Reference) {
	t.Helper()
	require.Len(t, refs, 2)

	assert.Equal(t, 1, refs[0].Row)
	assert.Equal(t, "Jane", refs[0].Text(record.PatientFirstName))
	assert.Equal(t, "Doe", refs[0].Text(record.PatientLastName))
	assert.Equal(t, "123-45-6789", refs[0].Text(record.SSN))

	assert.Equal(t, "John", refs[1].Text(record.PatientFirstName))
	assert.Equal(t, "", refs[1].Text(record.SSN))
}

func TestLoad_CSV(t *testing.T) {
	data := "\ufeffPatient First Name,patient last name,SSN,Favourite Colour\n" +
		"Jane,Doe,123-45-6789,blue\n" +
		",,,\n" +
		"John, Smith \n"

	refs, err := Load("reference.csv", []byte(data), Options{})
	require.NoError(t, err)
	assertJaneJohn(t, refs)
	assert.Equal(t, 3, refs[1].Row, "blank rows keep their position")
	assert.Equal(t, "Smith", refs[1].Text(record.PatientLastName))
}

func TestLoad_TSV(t *testing.T) {
	data := "Patient First Name\tPatient Last Name\tSSN\n" +
		"Jane\tDoe\t123-45-6789\n" +
		"John\tSmith\t\n"

	refs, err := Load("reference.TSV", []byte(data), Options{})
	require.NoError(t, err)
	assertJaneJohn(t, refs)
}

func TestLoad_MissingIdentityColumn(t *testing.T) {
	_, err := Load("reference.csv", []byte("Patient First Name,SSN\nJane,1\n"), Options{})
	assert.ErrorContains(t, err, "Patient Last Name")

	_, err = Load("reference.csv", nil, Options{})
	assert.ErrorContains(t, err, "empty dataset")
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load("reference.xls", []byte("x"), Options{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func buildWorkbook(t *testing.T, sheet string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}

	rows := [][]interface{}{
		{"Patient First Name", "Patient Last Name", "Patient DOB", "SSN", "Patient Cell Phone"},
		{"Jane", "Doe", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), "123-45-6789", 5551234567},
		{"John", "Smith", "03/15/1985"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C2", "C2", dateStyle))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoad_XLSX(t *testing.T) {
	refs, err := Load("reference.xlsx", buildWorkbook(t, "Sheet1"), Options{})
	require.NoError(t, err)
	assertJaneJohn(t, refs)

	dob := refs[0].Cell(record.PatientDOB)
	assert.True(t, dob.Date.Equal(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)), dob.Date)
	assert.Equal(t, "1990-01-01", refs[0].Text(record.PatientDOB))
	assert.Equal(t, "5551234567", refs[0].Text(record.PatientCellPhone))

	// Text dates are kept verbatim.
	assert.True(t, refs[1].Cell(record.PatientDOB).Date.IsZero())
	assert.Equal(t, "03/15/1985", refs[1].Text(record.PatientDOB))
}

func TestLoad_XLSXNamedSheet(t *testing.T) {
	data := buildWorkbook(t, "Patients")

	refs, err := Load("reference.xlsx", data, Options{Sheet: "Patients"})
	require.NoError(t, err)
	assertJaneJohn(t, refs)

	_, err = Load("reference.xlsx", data, Options{Sheet: "Missing"})
	assert.Error(t, err)

	_, err = Load("reference.xlsx", []byte("not a zip"), Options{})
	assert.ErrorContains(t, err, "opening workbook")
}

func TestIsDateFormat(t *testing.T) {
	custom := func(s string) *excelize.Style { return &excelize.Style{CustomNumFmt: &s} }

	assert.True(t, isDateFormat(&excelize.Style{NumFmt: 14}))
	assert.True(t, isDateFormat(&excelize.Style{NumFmt: 22}))
	assert.False(t, isDateFormat(&excelize.Style{NumFmt: 2}))
	assert.False(t, isDateFormat(&excelize.Style{NumFmt: 20}), "time only")
	assert.True(t, isDateFormat(custom("yyyy-mm-dd")))
	assert.True(t, isDateFormat(custom("[$-409]d-mmm-yy")))
	assert.False(t, isDateFormat(custom(`0.00 "days"`)))
	assert.False(t, isDateFormat(custom("[Red]0.00")))
	assert.False(t, isDateFormat(nil))
}

const ndjson = `{"Patient First Name": "Jane", "Patient Last Name": "Doe", "SSN": "123-45-6789", "Patient Acct No": 10042}

{"Patient First Name": "John", "Patient Last Name": "Smith", "SSN": null, "Notes": "ignored"}
`

func TestLoad_JSONL(t *testing.T) {
	refs, err := Load("reference.jsonl", []byte(ndjson), Options{})
	require.NoError(t, err)
	assertJaneJohn(t, refs)
	assert.Equal(t, "10042", refs[0].Text(record.PatientAcctNo))
	assert.Equal(t, 2, refs[1].Row)
}

func TestScanJSONLStdlib(t *testing.T) {
	refs, err := scanJSONLStdlib([]byte(ndjson))
	require.NoError(t, err)
	assertJaneJohn(t, refs)

	_, err = scanJSONLStdlib([]byte("{\"Patient First Name\": \"Jane\"\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestScanJSONLSimd(t *testing.T) {
	if !useSimd {
		t.Skipf("simdjson not supported on this CPU (%s)", ParserName())
	}
	refs, err := scanJSONLSimd([]byte(ndjson))
	require.NoError(t, err)
	assertJaneJohn(t, refs)
	assert.Equal(t, "10042", refs[0].Text(record.PatientAcctNo))
}

func TestLoad_JSONArray(t *testing.T) {
	data := `[
		{"Patient First Name": "Jane", "Patient Last Name": "Doe", "SSN": "123-45-6789"},
		{"Patient First Name": "John", "Patient Last Name": "Smith"}
	]`
	refs, err := Load("reference.json", []byte(data), Options{TmpDir: t.TempDir()})
	require.NoError(t, err)
	assertJaneJohn(t, refs)
}

func TestLoad_JSONObjectExport(t *testing.T) {
	data := `{
		"exported_by": "ehr",
		"data": [
			{"index": 0, "Patient First Name": "Jane", "Patient Last Name": "Doe", "SSN": "123-45-6789"},
			{"index": 1, "Patient First Name": "John", "Patient Last Name": "Smith", "SSN": null}
		]
	}`
	refs, err := Load("reference.json", []byte(data), Options{TmpDir: t.TempDir()})
	require.NoError(t, err)
	assertJaneJohn(t, refs)
}

func TestChunkOf(t *testing.T) {
	key, n := chunkOf("data_10.jsonl")
	assert.Equal(t, "data", key)
	assert.Equal(t, 10, n)

	key, n = chunkOf("in_network_2.jsonl")
	assert.Equal(t, "in_network", key)
	assert.Equal(t, 2, n)

	key, n = chunkOf("records.jsonl")
	assert.Equal(t, "records", key)
	assert.Equal(t, 0, n)
}
