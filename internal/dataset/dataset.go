// Package dataset loads the reference dataset into reference records.
//
// Headers are matched to known columns case-insensitively; unknown columns
// are ignored. Null and missing cells become empty text. Rows are numbered
// by their 1-based position among the dataset's data rows, and rows with no
// known values are skipped.
package dataset

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gyeh/intake-recon/internal/record"
)

// ErrUnsupported is returned for dataset formats Load cannot read.
var ErrUnsupported = errors.New("unsupported dataset format")

// Extensions lists the dataset formats Load accepts.
var Extensions = []string{".xlsx", ".csv", ".tsv", ".jsonl", ".ndjson", ".json"}

// Options tunes loading.
type Options struct {
	// Sheet selects a workbook sheet. Empty means the first sheet.
	Sheet string
	// TmpDir holds intermediate files when splitting JSON exports.
	TmpDir string
}

// Load parses data according to name's extension.
func Load(name string, data []byte, opts Options) ([]*record.Reference, error) {
	var (
		refs []*record.Reference
		err  error
	)

	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".xlsx":
		refs, err = loadXLSX(data, opts.Sheet)
	case ".csv":
		refs, err = loadDelimited(data, ',')
	case ".tsv":
		refs, err = loadDelimited(data, '\t')
	case ".jsonl", ".ndjson":
		refs, err = loadJSONL(data)
	case ".json":
		refs, err = loadJSON(data, opts.TmpDir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return refs, nil
}

// header maps positional cells to known columns.
type header map[int]record.Column

func parseHeader(cells []string) (header, error) {
	h := make(header, len(cells))
	seen := make(map[record.Column]bool)
	for i, cell := range cells {
		c, ok := record.ColumnForHeader(cell)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		h[i] = c
	}
	if err := requireIdentity(seen); err != nil {
		return nil, err
	}
	return h, nil
}

func requireIdentity(seen map[record.Column]bool) error {
	for _, c := range []record.Column{record.PatientFirstName, record.PatientLastName} {
		if !seen[c] {
			return fmt.Errorf("missing %q column", c.Header())
		}
	}
	return nil
}

// rows accumulates references, skipping rows with no values.
type rows struct {
	refs []*record.Reference
	n    int
}

func (r *rows) add(cells map[record.Column]record.Cell) {
	r.n++
	for _, c := range cells {
		if c.Text != "" || !c.Date.IsZero() {
			r.refs = append(r.refs, record.NewReference(r.n, cells))
			return
		}
	}
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
