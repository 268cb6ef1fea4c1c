package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/danielchalef/jsplit/pkg/jsplit"
	"github.com/gyeh/intake-recon/internal/record"
)

// loadJSON reads a JSON export. A top-level array holds the rows directly;
// a top-level object is split into NDJSON per array member and the rows of
// every array are loaded.
func loadJSON(data []byte, tmpDir string) ([]*record.Reference, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return loadJSONArray(trimmed)
	}

	dir, err := os.MkdirTemp(tmpDir, "reference-split-*")
	if err != nil {
		return nil, fmt.Errorf("creating split dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "reference.json")
	if err := os.WriteFile(input, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing split input: %w", err)
	}

	files, err := splitFile(input, filepath.Join(dir, "split"))
	if err != nil {
		return nil, err
	}

	var ndjson bytes.Buffer
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		ndjson.Write(b)
		ndjson.WriteByte('\n')
	}
	return loadJSONL(ndjson.Bytes())
}

func loadJSONArray(data []byte) ([]*record.Reference, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var items []map[string]interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding rows: %w", err)
	}

	var out rows
	seen := make(map[record.Column]bool)
	for _, m := range items {
		out.add(objectCells(m, seen))
	}
	return finishObjects(out, seen)
}

// splitFile splits a JSON object's top-level arrays into NDJSON files using
// jsplit and returns them in array, then chunk order.
func splitFile(inputPath, outputDir string) ([]string, error) {
	// Suppress jsplit's stdout prints
	origStdout := os.Stdout
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/null: %w", err)
	}
	os.Stdout = devNull
	err = jsplit.Split(inputPath, outputDir, true)
	os.Stdout = origStdout
	devNull.Close()
	if err != nil {
		return nil, fmt.Errorf("jsplit split failed: %w", err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read split output dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, e.Name())
		}
	}
	sort.Slice(files, func(i, j int) bool {
		pi, ni := chunkOf(files[i])
		pj, nj := chunkOf(files[j])
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})

	for i, f := range files {
		files[i] = filepath.Join(outputDir, f)
	}
	return files, nil
}

// chunkOf splits "<key>_<n>.jsonl" into key and chunk number.
func chunkOf(name string) (string, int) {
	base := strings.TrimSuffix(name, ".jsonl")
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return base, 0
	}
	n, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return base, 0
	}
	return base[:i], n
}
