package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfBirth(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "slash month first", raw: "03/15/1985", want: "15-03-1985"},
		{name: "iso", raw: "1985-03-15", want: "15-03-1985"},
		{name: "already canonical", raw: "15-03-1985", want: "15-03-1985"},
		{name: "unseparated", raw: "03151985", want: "15-03-1985"},
		{name: "surrounding whitespace", raw: "  03/15/1985\n", want: "15-03-1985"},
		{name: "too few slash segments", raw: "03/1985", wantErr: true},
		{name: "non numeric slash", raw: "Ma/rc/1985", wantErr: true},
		{name: "too many hyphen segments", raw: "1985-03-15-01", wantErr: true},
		{name: "non numeric hyphen", raw: "ab-cd-efgh", wantErr: true},
		{name: "seven digits", raw: "0315198", wantErr: true},
		{name: "eight letters", raw: "abcdefgh", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "free text", raw: "March 15th", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DateOfBirth(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFormat)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateOfBirth_SameDateAllShapes(t *testing.T) {
	shapes := []string{"07/04/1976", "1976-07-04", "04-07-1976", "07041976"}
	for _, s := range shapes {
		got, err := DateOfBirth(s)
		require.NoError(t, err, s)
		assert.Equal(t, "04-07-1976", got, s)
	}
}

func TestDateOfBirth_Idempotent(t *testing.T) {
	for _, s := range []string{"12/31/1999", "2001-02-03", "02282000"} {
		once, err := DateOfBirth(s)
		require.NoError(t, err)
		twice, err := DateOfBirth(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestReferenceDate(t *testing.T) {
	assert.Equal(t, NotAvailable, ReferenceDate("", time.Time{}))
	assert.Equal(t, NotAvailable, ReferenceDate("   ", time.Time{}))
	assert.Equal(t, "1990-01-01", ReferenceDate("1990-01-01 00:00:00", time.Time{}))
	// Text is taken verbatim, never reformatted.
	assert.Equal(t, "01/02/1990", ReferenceDate("01/02/1990", time.Time{}))
	assert.Equal(t, "1990-01-02", ReferenceDate("ignored", time.Date(1990, 1, 2, 13, 0, 0, 0, time.UTC)))
}

func TestSSN(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"123456789", "123-45-6789"},
		{"123-45-6789", "123-45-6789"},
		{"123.45.6789", "123-45-6789"},
		{"123 45 6789", "123-45-6789"},
		{"123-45.6789", "123-45-6789"},
		{"12345678", "12345678"},
		{"1234567890", "1234567890"},
		{"12345678X", "12345678X"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SSN(tt.raw), tt.raw)
	}
}

func TestSSN_Idempotent(t *testing.T) {
	for _, raw := range []string{"987654321", "987-65-4321", "987.65.4321"} {
		once := SSN(raw)
		assert.Equal(t, "987-65-4321", once)
		assert.Equal(t, once, SSN(once))
	}
}

func TestText(t *testing.T) {
	in := "First Name:\x00 Jane\r\nLast Name:\tDoe\xff"
	got := Text(in)
	assert.Equal(t, "First Name: Jane\nLast Name:\tDoe\uFFFD", got)
}
