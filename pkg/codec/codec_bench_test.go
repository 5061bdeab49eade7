//go:build bench
// +build bench

package codec

import (
	"fmt"
	"testing"
)

func benchRows(n int) []Row {
	cities := []string{"NYC", "LA", "SF", "CHI", "BOS"}
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{
			fmt.Sprintf("user-%d", i),
			fmt.Sprintf("%d", 20+i%50),
			cities[i%len(cities)],
		})
	}
	return rows
}

func BenchmarkDocumentCodec_Encode(b *testing.B) {
	c := NewDocumentCodec()

	for _, n := range []int{100, 10000} {
		rows := benchRows(n)
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := c.Encode(FileTypeCSV, rows); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDocumentCodec_Decode(b *testing.B) {
	c := NewDocumentCodec()

	for _, n := range []int{100, 10000} {
		data, _, err := c.Encode(FileTypeCSV, benchRows(n))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Decode(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBuildDictionary(b *testing.B) {
	rows := benchRows(10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildDictionary(rows)
	}
}
