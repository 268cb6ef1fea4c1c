package lookup

import (
	"strings"
	"testing"

	"github.com/gyeh/intake-recon/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(row int, first, last string) *record.Reference {
	return record.NewReference(row, map[record.Column]record.Cell{
		record.PatientFirstName: {Text: first},
		record.PatientLastName:  {Text: last},
	})
}

func fields(first, last string) record.ExtractedFields {
	values := map[record.Field]record.Value{}
	if first != "" {
		values[record.FirstName] = record.Value{State: record.Found, Text: first}
	}
	if last != "" {
		values[record.LastName] = record.Value{State: record.Found, Text: last}
	}
	return record.NewExtractedFields(values)
}

func TestBuild_Partition(t *testing.T) {
	records := []*record.Reference{
		ref(1, "Jane", "Doe"),
		ref(2, "john", "Smith"),
		ref(3, "  ", "Blank"),
		ref(4, "Alice", "Jones"),
		ref(5, "", "Empty"),
		ref(6, " jack", "Black"),
		ref(7, "Émile", "Zola"),
	}
	idx := Build(records)

	assert.Equal(t, 5, idx.Len())
	assert.Equal(t, []rune{'a', 'j', 'é'}, idx.Letters())

	seen := map[*record.Reference]int{}
	for _, letter := range idx.Letters() {
		for _, r := range idx.Bucket(letter) {
			seen[r]++
		}
	}
	for _, r := range records {
		if r.Text(record.PatientFirstName) == "" {
			assert.Zero(t, seen[r], "row %d should not be indexed", r.Row)
			continue
		}
		assert.Equal(t, 1, seen[r], "row %d should be in exactly one bucket", r.Row)
	}
}

func TestBuild_BucketsKeepDatasetOrder(t *testing.T) {
	idx := Build([]*record.Reference{
		ref(1, "Jane", "Doe"),
		ref(2, "Alice", "Jones"),
		ref(3, "jack", "Black"),
		ref(4, "Joe", "Bloggs"),
	})

	var rows []int
	for _, r := range idx.Bucket('J') {
		rows = append(rows, r.Row)
	}
	assert.Equal(t, []int{1, 3, 4}, rows)
	assert.Empty(t, idx.Bucket('z'))
}

func TestMatch(t *testing.T) {
	idx := Build([]*record.Reference{
		ref(1, "Jane", "Smith"),
		ref(2, "Jane", "Doe"),
		ref(3, "JANE", "DOE"),
		ref(4, "Janet", "Doe"),
	})

	tests := []struct {
		name    string
		first   string
		last    string
		wantRow int
		wantErr error
	}{
		{name: "exact", first: "Jane", last: "Doe", wantRow: 2},
		{name: "case and whitespace", first: "  jane ", last: "doe\t", wantRow: 2},
		{name: "prefix is not a match", first: "Jan", last: "Doe", wantErr: ErrNoMatch},
		{name: "different last name", first: "Janet", last: "Smith", wantErr: ErrNoMatch},
		{name: "missing last name", first: "Jane", wantErr: ErrNoMatch},
		{name: "absent letter", first: "Zed", last: "Doe", wantErr: ErrNoMatch},
		{name: "missing first name", last: "Doe", wantErr: ErrEmptyIdentity},
		{name: "blank first name", first: "   ", last: "Doe", wantErr: ErrEmptyIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(fields(tt.first, tt.last), idx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRow, got.Row)
		})
	}
}

func TestMatch_MissingLastNameNeverMatchesBlank(t *testing.T) {
	idx := Build([]*record.Reference{
		ref(1, "Jane", ""),
		ref(2, "Jane", "Doe"),
	})

	got, err := Match(fields("Jane", ""), idx)
	require.ErrorIs(t, err, ErrNoMatch)
	assert.Nil(t, got)

	got, err = Match(fields("Jane", "Doe"), idx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Row)
}

func TestMatch_NonASCIINames(t *testing.T) {
	idx := Build([]*record.Reference{
		ref(1, "José", "García"),
		ref(2, "Émile", "Zola"),
	})

	got, err := Match(fields("josé", "GARCÍA"), idx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Row)

	got, err = Match(fields("émile", "zola"), idx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Row)
}

func TestMatch_FirstMatchWins(t *testing.T) {
	idx := Build([]*record.Reference{
		ref(7, "Sam", "Lee"),
		ref(9, "sam", "lee"),
	})
	got, err := Match(fields("SAM", "LEE"), idx)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Row)
}

func TestMatch_NamesAlwaysEqualQuery(t *testing.T) {
	idx := Build([]*record.Reference{
		ref(1, "Ann", "Lee"),
		ref(2, "Anna", "Lee"),
		ref(3, "Ann", "Leeds"),
		ref(4, "ann", "lee"),
	})
	for _, q := range [][2]string{{"Ann", "Lee"}, {"Anna", "Lee"}, {"Ann", "Leeds"}, {"An", "Le"}} {
		got, err := Match(fields(q[0], q[1]), idx)
		if err != nil {
			require.ErrorIs(t, err, ErrNoMatch)
			continue
		}
		assert.True(t, strings.EqualFold(got.Text(record.PatientFirstName), q[0]))
		assert.True(t, strings.EqualFold(got.Text(record.PatientLastName), q[1]))
	}
}

func TestMatch_EmptyIdentitySkipsIndex(t *testing.T) {
	// A nil index would yield no candidates; the empty name must be reported first.
	_, err := Match(fields("", "Doe"), nil)
	require.ErrorIs(t, err, ErrEmptyIdentity)

	_, err = Match(fields("Jane", "Doe"), nil)
	require.ErrorIs(t, err, ErrNoMatch)
}
