package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gyeh/intake-recon/internal/record"
	simdjson "github.com/minio/simdjson-go"
)

// useSimd selects the simdjson parser when the CPU supports it.
var useSimd = simdjson.SupportedCPU()

// ParserName describes the NDJSON parser in use.
func ParserName() string {
	if useSimd {
		return "simdjson-go"
	}
	return "encoding/json (standard)"
}

func loadJSONL(data []byte) ([]*record.Reference, error) {
	if useSimd {
		return scanJSONLSimd(data)
	}
	return scanJSONLStdlib(data)
}

func newLineScanner(data []byte) *bufio.Scanner {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return scanner
}

func scanJSONLSimd(data []byte) ([]*record.Reference, error) {
	var (
		out  rows
		seen = make(map[record.Column]bool)
		pj   *simdjson.ParsedJson
		obj  *simdjson.Object
		err  error
	)

	scanner := newLineScanner(data)
	for line := 1; scanner.Scan(); line++ {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		pj, err = simdjson.Parse(raw, pj)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var m map[string]interface{}
		err = pj.ForEach(func(i simdjson.Iter) error {
			var objErr error
			if obj, objErr = i.Object(obj); objErr != nil {
				return objErr
			}
			m, objErr = obj.Map(nil)
			return objErr
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out.add(objectCells(m, seen))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return finishObjects(out, seen)
}

func scanJSONLStdlib(data []byte) ([]*record.Reference, error) {
	var out rows
	seen := make(map[record.Column]bool)

	scanner := newLineScanner(data)
	for line := 1; scanner.Scan(); line++ {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		m, err := decodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out.add(objectCells(m, seen))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return finishObjects(out, seen)
}

func decodeObject(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func objectCells(m map[string]interface{}, seen map[record.Column]bool) map[record.Column]record.Cell {
	cells := make(map[record.Column]record.Cell, len(m))
	for k, v := range m {
		c, ok := record.ColumnForHeader(k)
		if !ok {
			continue
		}
		seen[c] = true
		cells[c] = record.Cell{Text: textValue(v)}
	}
	return cells
}

func finishObjects(out rows, seen map[record.Column]bool) ([]*record.Reference, error) {
	if out.n == 0 {
		return nil, errors.New("empty dataset")
	}
	if err := requireIdentity(seen); err != nil {
		return nil, err
	}
	return out.refs, nil
}

func textValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return cleanCell(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
