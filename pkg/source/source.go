// Package source reads raw rows from CSV and text files and writes decoded
// rows back out. It owns the file naming conventions of the MIN tools.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ssargent/minfmt/pkg/codec"
)

// Encoding names the character set a source was read with.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// Input is the raw content of one source.
type Input struct {
	FileType codec.FileType
	Rows     []codec.Row
	Encoding Encoding
}

// Read reads all rows of r as ft.
func Read(r io.Reader, ft codec.FileType) (*Input, error) {
	data, enc, err := readUTF8(r)
	if err != nil {
		return nil, err
	}
	in := &Input{FileType: ft, Encoding: enc}
	switch ft {
	case codec.FileTypeCSV:
		in.Rows, err = parseCSV(data)
	case codec.FileTypeText:
		in.Rows, err = parseText(data)
	default:
		err = fmt.Errorf("unsupported file type %s", ft)
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

// ReadCSV reads CSV records from r.
func ReadCSV(r io.Reader) ([]codec.Row, error) {
	in, err := Read(r, codec.FileTypeCSV)
	if err != nil {
		return nil, err
	}
	return in.Rows, nil
}

// ReadText reads lines from r. Line terminators are \n, \r\n or \r.
func ReadText(r io.Reader) ([]codec.Row, error) {
	in, err := Read(r, codec.FileTypeText)
	if err != nil {
		return nil, err
	}
	return in.Rows, nil
}

// readUTF8 returns the content of r as UTF-8. Content that is not valid
// UTF-8 is decoded as Latin-1, which accepts every byte.
func readUTF8(r io.Reader) ([]byte, Encoding, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read source: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	if utf8.Valid(data) {
		return data, EncodingUTF8, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode latin-1: %w", err)
	}
	return decoded, EncodingLatin1, nil
}

func parseCSV(data []byte) ([]codec.Row, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var rows []codec.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		rows = append(rows, codec.Row(rec))
	}
}

func parseText(data []byte) ([]codec.Row, error) {
	var rows []codec.Row
	br := bufio.NewReader(bytes.NewReader(data))
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			for _, part := range strings.Split(line, "\r") {
				rows = append(rows, codec.Row{part})
			}
		}
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse text: %w", err)
		}
	}
}

// WriteCSV writes rows as CSV with minimal quoting and \n line endings.
func WriteCSV(w io.Writer, rows []codec.Row) error {
	cw := csv.NewWriter(w)
	for i, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteText writes each row's line followed by \n.
func WriteText(w io.Writer, rows []codec.Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		if len(r) > 0 {
			if _, err := bw.WriteString(r[0]); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Write writes rows in the format of ft.
func Write(w io.Writer, ft codec.FileType, rows []codec.Row) error {
	if ft == codec.FileTypeCSV {
		return WriteCSV(w, rows)
	}
	return WriteText(w, rows)
}
