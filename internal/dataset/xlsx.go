package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gyeh/intake-recon/internal/record"
	"github.com/xuri/excelize/v2"
)

func loadXLSX(data []byte, sheet string) ([]*record.Reference, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// Raw values keep date cells as serial numbers so they can be typed below.
	all, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	h, err := parseHeader(all[0])
	if err != nil {
		return nil, err
	}

	styles := dateStyles{file: f, sheet: sheet, known: make(map[int]bool)}
	var out rows
	for i, row := range all[1:] {
		sheetRow := i + 2
		cells := make(map[record.Column]record.Cell, len(h))
		for j, c := range h {
			if j >= len(row) {
				continue
			}
			cell := record.Cell{Text: cleanCell(row[j])}
			if c.Kind() == record.KindDate && cell.Text != "" {
				cell.Date = styles.date(j+1, sheetRow, cell.Text)
			}
			cells[c] = cell
		}
		out.add(cells)
	}
	return out.refs, nil
}

// dateStyles resolves whether numeric cells are formatted as dates, caching
// per style id.
type dateStyles struct {
	file  *excelize.File
	sheet string
	known map[int]bool
}

func (d dateStyles) date(col, row int, raw string) (t time.Time) {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return t
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return t
	}
	id, err := d.file.GetCellStyle(d.sheet, axis)
	if err != nil {
		return t
	}

	isDate, ok := d.known[id]
	if !ok {
		style, err := d.file.GetStyle(id)
		isDate = err == nil && isDateFormat(style)
		d.known[id] = isDate
	}
	if !isDate {
		return t
	}

	tm, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return t
	}
	return tm
}

// isDateFormat reports whether a number format renders dates: the built-in
// date formats, or a custom code with day or year tokens outside literals.
func isDateFormat(s *excelize.Style) bool {
	if s == nil {
		return false
	}
	switch {
	case s.NumFmt >= 14 && s.NumFmt <= 17, s.NumFmt == 22:
		return true
	case s.NumFmt >= 27 && s.NumFmt <= 36, s.NumFmt >= 50 && s.NumFmt <= 58:
		return true
	}
	if s.CustomNumFmt == nil {
		return false
	}

	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(*s.CustomNumFmt) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == 'd' || r == 'y':
			return true
		}
	}
	return false
}
