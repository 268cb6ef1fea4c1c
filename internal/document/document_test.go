package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Text(t *testing.T) {
	text, err := Decode("jane.TXT", []byte("First Name: Jane\r\nLast Name: Doe"))
	require.NoError(t, err)
	assert.Equal(t, "First Name: Jane\r\nLast Name: Doe", text)

	_, err = Decode("garbled.txt", []byte{0xff, 0x00, 0xfe, 0x00})
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestDecode_PDF(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "intake.pdf"))
	require.NoError(t, err)

	text, err := Decode("intake.pdf", data)
	require.NoError(t, err)

	first := strings.Index(text, "First Name: Jane")
	last := strings.Index(text, "Last Name: Doe")
	require.GreaterOrEqual(t, first, 0, text)
	require.Greater(t, last, first, text)
	assert.Contains(t, text[first:last], "\n", "pages should be separated by a newline")
}

func TestDecode_CorruptPDF(t *testing.T) {
	_, err := Decode("broken.pdf", []byte("%PDF-1.4\nthis is not a pdf"))
	assert.ErrorIs(t, err, ErrUnreadable)

	_, err = Decode("empty.pdf", nil)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestDecode_Unsupported(t *testing.T) {
	_, err := Decode("scan.docx", []byte("PK"))
	assert.ErrorIs(t, err, ErrUnsupported)
}
