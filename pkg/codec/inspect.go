package codec

import (
	"github.com/ssargent/minfmt/pkg/compress"
)

// Summary describes the layout of an encoded file.
type Summary struct {
	Version        byte            `json:"version"`
	FileType       string          `json:"file_type"`
	Method         compress.Method `json:"method"`
	FileSize       int             `json:"file_size"`
	CompressedSize int             `json:"compressed_size"`
	BodySize       int             `json:"body_size"`
	DictionarySize int             `json:"dictionary_bytes"`
	Dictionary     []string        `json:"dictionary"`
	Rows           int             `json:"rows"`
	Columns        int             `json:"max_columns,omitempty"`
	References     int             `json:"references"`
	RawFields      int             `json:"raw_fields"`
}

// Inspect decodes data with a default codec and reports how it is laid out.
func Inspect(data []byte) (*Summary, error) {
	return NewDocumentCodec().Inspect(data)
}

// Inspect decodes data and reports how it is laid out. The body is held to
// the codec's size cap.
func (dc *DocumentCodec) Inspect(data []byte) (*Summary, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	compressed := data[HeaderSize:]
	c, body, err := dc.decompressBody(compressed)
	if err != nil {
		return nil, err
	}
	doc, err := DecodeBody(h, body)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Version:        h.Version,
		FileType:       h.FileType.String(),
		Method:         c.Method(),
		FileSize:       len(data),
		CompressedSize: len(compressed),
		BodySize:       len(body),
		Dictionary:     doc.Dictionary.Entries(),
		Rows:           len(doc.Rows),
	}
	s.DictionarySize = varintLen(uint64(len(s.Dictionary)))
	for _, e := range s.Dictionary {
		s.DictionarySize += varintLen(uint64(len(e))) + len(e)
	}
	for _, r := range doc.Rows {
		if len(r) > s.Columns {
			s.Columns = len(r)
		}
		for _, f := range r {
			if _, ok := doc.Dictionary.Index(f); ok {
				s.References++
			} else {
				s.RawFields++
			}
		}
	}
	if h.FileType == FileTypeText {
		s.Columns = 0
	}
	return s, nil
}
