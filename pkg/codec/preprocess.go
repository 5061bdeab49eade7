package codec

import (
	"strings"
)

// PreprocessStats counts what preprocessing removed.
type PreprocessStats struct {
	InputRows      int `json:"input_rows"`
	EmptyRows      int `json:"empty_rows"`
	DuplicateRows  int `json:"duplicate_rows"`
	ColumnsDropped int `json:"columns_dropped"`
	OutputRows     int `json:"output_rows"`
}

// Preprocess turns raw rows into canonical rows. The steps run in a fixed
// order: strip whitespace, drop empty rows, stable dedup, and for CSV drop
// columns that are empty in every row. The input is not modified.
func Preprocess(ft FileType, rows []Row) ([]Row, PreprocessStats) {
	stats := PreprocessStats{InputRows: len(rows)}

	stripped := make([]Row, 0, len(rows))
	for _, r := range rows {
		s := stripRow(ft, r)
		if rowEmpty(s) {
			stats.EmptyRows++
			continue
		}
		stripped = append(stripped, s)
	}

	out, dups := dedupRows(stripped)
	stats.DuplicateRows = dups

	if ft == FileTypeCSV {
		var dropped int
		out, dropped = dropEmptyColumns(out)
		stats.ColumnsDropped = dropped
		if dropped > 0 {
			// Rows that differed only by now-removed empty cells collapse.
			out, dups = dedupRows(out)
			stats.DuplicateRows += dups
		}
	}

	stats.OutputRows = len(out)
	return out, stats
}

func stripRow(ft FileType, r Row) Row {
	if ft == FileTypeText {
		if len(r) == 0 {
			return Row{""}
		}
		return Row{strings.TrimSpace(r[0])}
	}
	s := make(Row, len(r))
	for i, f := range r {
		s[i] = strings.TrimSpace(f)
	}
	return s
}

func rowEmpty(r Row) bool {
	for _, f := range r {
		if f != "" {
			return false
		}
	}
	return true
}

// dedupRows keeps the first occurrence of every distinct row.
func dedupRows(rows []Row) ([]Row, int) {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0:0]
	var key []byte
	for _, r := range rows {
		key = rowKey(key[:0], r)
		if _, ok := seen[string(key)]; ok {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, r)
	}
	return out, len(rows) - len(out)
}

// rowKey builds an unambiguous key: each field is length-prefixed.
func rowKey(dst []byte, r Row) []byte {
	for _, f := range r {
		n := uint64(len(f))
		for n >= 0x80 {
			dst = append(dst, byte(n)|0x80)
			n >>= 7
		}
		dst = append(dst, byte(n))
		dst = append(dst, f...)
	}
	return dst
}

// dropEmptyColumns removes every column index that is empty or absent in all
// rows. Rows shorter than an index count as empty there.
func dropEmptyColumns(rows []Row) ([]Row, int) {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	keep := make([]bool, width)
	for _, r := range rows {
		for i, f := range r {
			if f != "" {
				keep[i] = true
			}
		}
	}
	dropped := 0
	for _, k := range keep {
		if !k {
			dropped++
		}
	}
	if dropped == 0 {
		return rows, 0
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		nr := make(Row, 0, len(r))
		for j, f := range r {
			if keep[j] {
				nr = append(nr, f)
			}
		}
		out[i] = nr
	}
	return out, dropped
}
