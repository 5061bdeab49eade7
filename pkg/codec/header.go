package codec

import "fmt"

const (
	// Magic identifies a MIN file.
	Magic = "MINFMT"

	// Version is the only format version this package reads and writes.
	Version byte = 1

	// HeaderSize is the size of the uncompressed header.
	HeaderSize = len(Magic) + 2
)

// FileType tags the row shape of a document.
type FileType byte

const (
	// FileTypeText rows hold a single field, the line.
	FileTypeText FileType = 0x00
	// FileTypeCSV rows hold an ordered list of fields.
	FileTypeCSV FileType = 0x01
)

func (t FileType) String() string {
	switch t {
	case FileTypeText:
		return "text"
	case FileTypeCSV:
		return "csv"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// Valid reports whether t is a known file type.
func (t FileType) Valid() bool {
	return t == FileTypeText || t == FileTypeCSV
}

// ParseFileType maps "text"/"txt" and "csv" to a FileType.
func ParseFileType(s string) (FileType, error) {
	switch s {
	case "text", "txt":
		return FileTypeText, nil
	case "csv":
		return FileTypeCSV, nil
	default:
		return 0, fmt.Errorf("unknown file type %q", s)
	}
}

// Header is the fixed 8-byte prefix of a MIN file.
type Header struct {
	Version  byte
	FileType FileType
}

// NewHeader returns a current-version header for ft.
func NewHeader(ft FileType) Header {
	return Header{Version: Version, FileType: ft}
}

// AppendTo appends the serialized header to dst.
func (h Header) AppendTo(dst []byte) []byte {
	dst = append(dst, Magic...)
	return append(dst, h.Version, byte(h.FileType))
}

// ParseHeader validates and decodes the first HeaderSize bytes of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, newError(ErrFormat, 0, "need %d header bytes, have %d", HeaderSize, len(data))
	}
	if string(data[:len(Magic)]) != Magic {
		return Header{}, newError(ErrFormat, 0, "bad magic %q", data[:len(Magic)])
	}
	h := Header{Version: data[6], FileType: FileType(data[7])}
	if h.Version != Version {
		return Header{}, newError(ErrFormat, 6, "unsupported version %d", h.Version)
	}
	if !h.FileType.Valid() {
		return Header{}, newError(ErrFormat, 7, "unknown file type 0x%02x", byte(h.FileType))
	}
	return h, nil
}

// Row is one record. Text rows carry exactly one field.
type Row []string

// Document is a header, its dictionary and its rows. A Document belongs to a
// single encode or decode call.
type Document struct {
	Header     Header
	Dictionary *Dictionary
	Rows       []Row
}

// FileType returns the document's row shape.
func (d *Document) FileType() FileType {
	return d.Header.FileType
}

// Lines returns the rows of a text document as plain strings.
func (d *Document) Lines() []string {
	lines := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		if len(r) > 0 {
			lines[i] = r[0]
		}
	}
	return lines
}

// TextRows wraps plain lines as text rows.
func TextRows(lines []string) []Row {
	rows := make([]Row, len(lines))
	for i, l := range lines {
		rows[i] = Row{l}
	}
	return rows
}

// CSVRows wraps field lists as CSV rows.
func CSVRows(records [][]string) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row(r)
	}
	return rows
}

// Records returns the rows as plain field lists.
func (d *Document) Records() [][]string {
	out := make([][]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = []string(r)
	}
	return out
}
