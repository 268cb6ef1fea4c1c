package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"github.com/gyeh/intake-recon/internal/record"
)

func loadDelimited(data []byte, comma rune) ([]*record.Reference, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(all) == 0 {
		return nil, errors.New("empty dataset")
	}

	h, err := parseHeader(all[0])
	if err != nil {
		return nil, err
	}

	var out rows
	for _, row := range all[1:] {
		cells := make(map[record.Column]record.Cell, len(h))
		for i, c := range h {
			if i < len(row) {
				cells[c] = record.Cell{Text: cleanCell(row[i])}
			}
		}
		out.add(cells)
	}
	return out.refs, nil
}
