package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsAreComplete(t *testing.T) {
	fields := Fields()
	require.Len(t, fields, 11)
	seen := map[string]bool{}
	for _, f := range fields {
		assert.NotEmpty(t, f.String())
		assert.NotEmpty(t, f.Kind())
		assert.False(t, seen[f.String()], "duplicate field name %q", f)
		seen[f.String()] = true
	}
	assert.Equal(t, KindDate, DateOfBirth.Kind())
	assert.Equal(t, KindIdentifier, SocialSecurity.Kind())
}

func TestColumnDisplayName(t *testing.T) {
	assert.Equal(t, "DOB", PatientDOB.DisplayName())
	assert.Equal(t, "Address Line 1", PatientAddressLine1.DisplayName())
	assert.Equal(t, "Referring Provider Name", DemographicsReferringProvider.DisplayName())
	assert.Equal(t, "SSN", SSN.DisplayName())
	assert.Equal(t, "Refering Name", ReferingName.DisplayName())
}

func TestColumnForHeader(t *testing.T) {
	c, ok := ColumnForHeader("\ufeffpatient first name ")
	require.True(t, ok)
	assert.Equal(t, PatientFirstName, c)

	c, ok = ColumnForHeader("SSN")
	require.True(t, ok)
	assert.Equal(t, SSN, c)

	_, ok = ColumnForHeader("Favourite Colour")
	assert.False(t, ok)
}

func TestValueRendering(t *testing.T) {
	assert.Equal(t, "Not Found", Value{}.String())
	assert.Equal(t, "Invalid Format", Value{State: Invalid, Text: "13/45/99"}.String())
	assert.Equal(t, "Jane", Value{State: Found, Text: "Jane"}.String())

	assert.False(t, Value{}.Present())
	assert.False(t, Value{State: Found, Text: "  "}.Present())
	assert.False(t, Value{State: Invalid, Text: "x"}.Present())
	assert.True(t, Value{State: Found, Text: "x"}.Present())
}

func TestExtractedFieldsJSON(t *testing.T) {
	ef := NewExtractedFields(map[Field]Value{
		FirstName:   {State: Found, Text: "Jane"},
		DateOfBirth: {State: Invalid, Text: "99/99"},
	})
	data, err := json.Marshal(ef)
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Len(t, m, 11)
	assert.Equal(t, "Jane", m["First Name"])
	assert.Equal(t, "Invalid Format", m["Date of Birth"])
	assert.Equal(t, "Not Found", m["Social Security"])
}

func TestReferenceText(t *testing.T) {
	ref := NewReference(3, map[Column]Cell{
		PatientFirstName: {Text: "  Jane "},
		PatientDOB:       {Date: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	assert.Equal(t, 3, ref.Row)
	assert.Equal(t, "Jane", ref.Text(PatientFirstName))
	assert.Equal(t, "1990-01-01", ref.Text(PatientDOB))
	assert.Equal(t, "", ref.Text(SSN))
}
