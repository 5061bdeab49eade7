package codec

import (
	"sort"
)

// MinOccurrences is how often a string must occur to enter the dictionary.
const MinOccurrences = 2

// Dictionary is the ordered set of substituted strings of one document.
type Dictionary struct {
	entries []string
	lookup  map[string]int
}

// NewDictionary builds a dictionary over entries in the given order. It is
// used on decode, where the order comes from the file.
func NewDictionary(entries []string) *Dictionary {
	d := &Dictionary{
		entries: entries,
		lookup:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, ok := d.lookup[e]; !ok {
			d.lookup[e] = i
		}
	}
	return d
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns the entries in serialization order.
func (d *Dictionary) Entries() []string {
	if d == nil {
		return nil
	}
	return d.entries
}

// Index returns the position of s, if present.
func (d *Dictionary) Index(s string) (int, bool) {
	if d == nil {
		return 0, false
	}
	i, ok := d.lookup[s]
	return i, ok
}

// Entry returns the string at index i.
func (d *Dictionary) Entry(i int) (string, bool) {
	if d == nil || i < 0 || i >= len(d.entries) {
		return "", false
	}
	return d.entries[i], true
}

type candidate struct {
	value string
	count int
}

// BuildDictionary selects every non-empty field value that occurs at least
// MinOccurrences times. Entries are ordered by descending count; equal counts
// keep the order in which the strings reached MinOccurrences during a
// row-major scan. Rows are not modified.
func BuildDictionary(rows []Row) *Dictionary {
	stats := make(map[string]*candidate)
	var qualified []*candidate
	for _, r := range rows {
		for _, f := range r {
			if f == "" {
				continue
			}
			c, ok := stats[f]
			if !ok {
				stats[f] = &candidate{value: f, count: 1}
				continue
			}
			c.count++
			if c.count == MinOccurrences {
				qualified = append(qualified, c)
			}
		}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].count > qualified[j].count
	})

	entries := make([]string, len(qualified))
	for i, c := range qualified {
		entries[i] = c.value
	}
	return NewDictionary(entries)
}
