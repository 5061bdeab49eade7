package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDictionary_Scenario(t *testing.T) {
	rows := CSVRows([][]string{
		{"Name", "Age", "City"},
		{"John", "25", "NYC"},
		{"Jane", "30", "NYC"},
		{"Bob", "25", "LA"},
	})

	dict := BuildDictionary(rows)

	assert.Equal(t, []string{"NYC", "25"}, dict.Entries())
	idx, ok := dict.Index("NYC")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	idx, ok = dict.Index("25")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = dict.Index("LA")
	assert.False(t, ok)
}

func TestBuildDictionary_FrequencyOrder(t *testing.T) {
	rows := CSVRows([][]string{
		{"a", "b", "c"},
		{"b", "c", "d"},
		{"c", "d", "b"},
		{"c", "e", "a"},
	})

	dict := BuildDictionary(rows)

	// c:4, b:3, then a and d tie at 2; d reaches two occurrences first.
	assert.Equal(t, []string{"c", "b", "d", "a"}, dict.Entries())
}

func TestBuildDictionary_SkipsSinglesAndEmpty(t *testing.T) {
	rows := CSVRows([][]string{
		{"", "x", ""},
		{"", "y", ""},
	})
	dict := BuildDictionary(rows)
	assert.Zero(t, dict.Len())
}

func TestBuildDictionary_DeduplicatedTextHasNoEntries(t *testing.T) {
	canonical, _ := Preprocess(FileTypeText, TextRows([]string{"a", "b", "a", "c"}))
	dict := BuildDictionary(canonical)
	assert.Zero(t, dict.Len())
}

func TestBuildDictionary_EveryEntryRepeats(t *testing.T) {
	rows := CSVRows([][]string{
		{"red", "1", "x"},
		{"blue", "1", "y"},
		{"red", "2", "x"},
		{"green", "3", "z"},
	})
	dict := BuildDictionary(rows)

	counts := map[string]int{}
	for _, r := range rows {
		for _, f := range r {
			counts[f]++
		}
	}
	seen := map[string]bool{}
	for _, e := range dict.Entries() {
		assert.GreaterOrEqual(t, counts[e], MinOccurrences, "entry %q", e)
		assert.False(t, seen[e], "duplicate entry %q", e)
		seen[e] = true
	}
	for v, n := range counts {
		if n >= MinOccurrences && v != "" {
			_, ok := dict.Index(v)
			assert.True(t, ok, "repeated value %q missing", v)
		}
	}
}

func TestDictionary_NilSafe(t *testing.T) {
	var d *Dictionary
	assert.Zero(t, d.Len())
	assert.Nil(t, d.Entries())
	_, ok := d.Index("a")
	assert.False(t, ok)
	_, ok = d.Entry(0)
	assert.False(t, ok)
}

func TestNewDictionary_KeepsFirstIndexForDuplicates(t *testing.T) {
	d := NewDictionary([]string{"a", "b", "a"})
	assert.Equal(t, 3, d.Len())
	idx, ok := d.Index("a")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	e, ok := d.Entry(2)
	require.True(t, ok)
	assert.Equal(t, "a", e)
}
