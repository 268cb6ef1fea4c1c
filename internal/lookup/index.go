// Package lookup indexes reference records by the lowercased first letter of
// their first name and matches extracted documents against that index.
package lookup

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gyeh/intake-recon/internal/record"
)

// Index partitions reference records into buckets keyed by first letter.
// Within a bucket records keep their dataset order. Records with an empty
// first name are not indexed.
type Index struct {
	buckets map[rune][]*record.Reference
	size    int
}

// Build indexes records in order.
func Build(records []*record.Reference) *Index {
	idx := &Index{buckets: make(map[rune][]*record.Reference)}
	for _, r := range records {
		if r == nil {
			continue
		}
		key, ok := firstLetter(r.Text(record.PatientFirstName))
		if !ok {
			continue
		}
		idx.buckets[key] = append(idx.buckets[key], r)
		idx.size++
	}
	return idx
}

// Bucket returns the records whose first name starts with letter, compared
// case-insensitively.
func (idx *Index) Bucket(letter rune) []*record.Reference {
	if idx == nil {
		return nil
	}
	return idx.buckets[unicode.ToLower(letter)]
}

// Len returns the number of indexed records.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

// Letters returns the bucket keys in sorted order.
func (idx *Index) Letters() []rune {
	if idx == nil {
		return nil
	}
	out := make([]rune, 0, len(idx.buckets))
	for k := range idx.buckets {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// firstLetter returns the lowercased first rune of a trimmed name.
func firstLetter(name string) (rune, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.ToLower(r), true
}
