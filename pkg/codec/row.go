package codec

import (
	"unicode/utf8"
)

// Field flag bytes.
const (
	FlagRaw       byte = 0x00
	FlagReference byte = 0xFF
)

// EncodeField appends value to dst, as a dictionary reference when the
// dictionary holds it and as a length-prefixed raw string otherwise.
func EncodeField(dst []byte, value string, dict *Dictionary) ([]byte, error) {
	if idx, ok := dict.Index(value); ok {
		dst = append(dst, FlagReference)
		return AppendVarint(dst, uint64(idx))
	}
	return appendString(append(dst, FlagRaw), value)
}

// DecodeField reads one field from b at off and returns the value and the
// number of bytes consumed.
func DecodeField(b []byte, off int, entries []string) (string, int, error) {
	if off >= len(b) {
		return "", 0, newError(ErrTruncatedInput, off, "missing field flag")
	}
	switch flag := b[off]; flag {
	case FlagReference:
		idx, n, err := DecodeVarint(b, off+1)
		if err != nil {
			return "", 0, err
		}
		if idx >= uint64(len(entries)) {
			return "", 0, newError(ErrInvalidReference, off+1, "index %d, dictionary has %d entries", idx, len(entries))
		}
		return entries[idx], 1 + n, nil
	case FlagRaw:
		s, n, err := decodeString(b, off+1)
		if err != nil {
			return "", 0, err
		}
		return s, 1 + n, nil
	default:
		return "", 0, newError(ErrInvalidFlag, off, "flag 0x%02x", flag)
	}
}

// decodeString reads a varint length followed by that many UTF-8 bytes.
func decodeString(b []byte, off int) (string, int, error) {
	length, n, err := DecodeVarint(b, off)
	if err != nil {
		return "", 0, err
	}
	start := off + n
	if length > uint64(len(b)-start) {
		return "", 0, newError(ErrTruncatedInput, start, "string of %d bytes, %d remain", length, len(b)-start)
	}
	raw := b[start : start+int(length)]
	if !utf8.Valid(raw) {
		return "", 0, newError(ErrInvalidEncoding, start, "string of %d bytes", length)
	}
	return string(raw), n + int(length), nil
}

// appendString appends a varint length and the bytes of s, which must be
// valid UTF-8.
func appendString(dst []byte, s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return dst, newError(ErrInvalidEncoding, -1, "string %q is not valid utf-8", s)
	}
	dst, err := AppendVarint(dst, uint64(len(s)))
	if err != nil {
		return dst, err
	}
	return append(dst, s...), nil
}

// EncodeRow appends one row. Text rows are a single field; CSV rows are a
// varint column count followed by each field.
func EncodeRow(dst []byte, ft FileType, row Row, dict *Dictionary) ([]byte, error) {
	var err error
	if ft == FileTypeText {
		var line string
		if len(row) > 0 {
			line = row[0]
		}
		return EncodeField(dst, line, dict)
	}
	if dst, err = AppendVarint(dst, uint64(len(row))); err != nil {
		return dst, err
	}
	for _, f := range row {
		if dst, err = EncodeField(dst, f, dict); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

// DecodeRow reads one row from b at off and returns it with the number of
// bytes consumed.
func DecodeRow(b []byte, off int, ft FileType, entries []string) (Row, int, error) {
	if ft == FileTypeText {
		s, n, err := DecodeField(b, off, entries)
		if err != nil {
			return nil, 0, err
		}
		return Row{s}, n, nil
	}

	cols, n, err := DecodeVarint(b, off)
	if err != nil {
		return nil, 0, err
	}
	pos := off + n
	// Every field takes at least two bytes.
	if cols > uint64(len(b)-pos)/2 {
		return nil, 0, newError(ErrTruncatedInput, pos, "%d columns declared, %d bytes remain", cols, len(b)-pos)
	}
	row := make(Row, cols)
	for i := range row {
		s, fn, err := DecodeField(b, pos, entries)
		if err != nil {
			return nil, 0, err
		}
		row[i] = s
		pos += fn
	}
	return row, pos - off, nil
}
