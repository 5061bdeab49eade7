package codec

import (
	"fmt"

	"github.com/ssargent/minfmt/pkg/compress"
)

// Stats describes one encode call.
type Stats struct {
	PreprocessStats
	FileType          FileType        `json:"-"`
	DictionaryEntries int             `json:"dictionary_entries"`
	BodySize          int             `json:"body_size"`
	EncodedSize       int             `json:"encoded_size"`
	Method            compress.Method `json:"method"`
}

// DocumentCodec converts rows to MIN bytes and back. It holds no per-call
// state and is safe for concurrent use.
type DocumentCodec struct {
	compressor  compress.Codec
	maxBodySize int64
}

// DefaultMaxBodySize caps the decompressed body when no limit is configured.
const DefaultMaxBodySize = 256 << 20

// Option configures a DocumentCodec.
type Option func(*DocumentCodec)

// WithCompressor sets the codec used for the body. Decoding always detects
// the body's codec from its frame.
func WithCompressor(c compress.Codec) Option {
	return func(d *DocumentCodec) {
		d.compressor = c
	}
}

// WithMaxBodySize caps how large a body may grow while it is decompressed.
// Zero or less disables the cap.
func WithMaxBodySize(n int64) Option {
	return func(d *DocumentCodec) {
		d.maxBodySize = n
	}
}

// NewDocumentCodec returns a codec that compresses bodies with zstd unless
// configured otherwise.
func NewDocumentCodec(opts ...Option) *DocumentCodec {
	d := &DocumentCodec{maxBodySize: DefaultMaxBodySize}
	for _, o := range opts {
		o(d)
	}
	if d.compressor == nil {
		d.compressor = compress.NewZstd()
	}
	return d
}

// Encode preprocesses rows, builds the dictionary and returns the file bytes.
func (c *DocumentCodec) Encode(ft FileType, rows []Row) ([]byte, *Stats, error) {
	if !ft.Valid() {
		return nil, nil, newError(ErrFormat, -1, "unknown file type 0x%02x", byte(ft))
	}
	canonical, pstats := Preprocess(ft, rows)
	doc := &Document{
		Header:     NewHeader(ft),
		Dictionary: BuildDictionary(canonical),
		Rows:       canonical,
	}

	body, err := EncodeBody(doc)
	if err != nil {
		return nil, nil, err
	}
	out, err := c.seal(doc.Header, body)
	if err != nil {
		return nil, nil, err
	}
	return out, &Stats{
		PreprocessStats:   pstats,
		FileType:          ft,
		DictionaryEntries: doc.Dictionary.Len(),
		BodySize:          len(body),
		EncodedSize:       len(out),
		Method:            c.compressor.Method(),
	}, nil
}

// EncodeDocument serializes doc as is, without preprocessing. A nil
// dictionary encodes every field raw.
func (c *DocumentCodec) EncodeDocument(doc *Document) ([]byte, error) {
	if !doc.Header.FileType.Valid() {
		return nil, newError(ErrFormat, -1, "unknown file type 0x%02x", byte(doc.Header.FileType))
	}
	body, err := EncodeBody(doc)
	if err != nil {
		return nil, err
	}
	return c.seal(NewHeader(doc.Header.FileType), body)
}

func (c *DocumentCodec) seal(h Header, body []byte) ([]byte, error) {
	compressed, err := c.compressor.Compress(body)
	if err != nil {
		return nil, fmt.Errorf("compress body: %w", err)
	}
	out := make([]byte, 0, HeaderSize+len(compressed))
	out = h.AppendTo(out)
	return append(out, compressed...), nil
}

// EncodeBody serializes the dictionary section followed by the row count and
// the rows.
func EncodeBody(doc *Document) ([]byte, error) {
	var (
		buf []byte
		err error
	)
	entries := doc.Dictionary.Entries()
	if buf, err = AppendVarint(buf, uint64(len(entries))); err != nil {
		return nil, fmt.Errorf("dictionary size: %w", err)
	}
	for i, e := range entries {
		if buf, err = appendString(buf, e); err != nil {
			return nil, fmt.Errorf("dictionary entry %d: %w", i, err)
		}
	}
	if buf, err = AppendVarint(buf, uint64(len(doc.Rows))); err != nil {
		return nil, fmt.Errorf("row count: %w", err)
	}
	ft := doc.Header.FileType
	for i, r := range doc.Rows {
		if buf, err = EncodeRow(buf, ft, r, doc.Dictionary); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return buf, nil
}

// Decode parses MIN file bytes back into a document. The header is checked
// before anything else is read.
func (c *DocumentCodec) Decode(data []byte) (*Document, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	_, body, err := c.decompressBody(data[HeaderSize:])
	if err != nil {
		return nil, err
	}
	return DecodeBody(h, body)
}

// MaxBodySize returns the decompressed body cap, zero when unlimited.
func (c *DocumentCodec) MaxBodySize() int64 {
	if c.maxBodySize < 0 {
		return 0
	}
	return c.maxBodySize
}

func (c *DocumentCodec) decompressBody(src []byte) (compress.Codec, []byte, error) {
	cc, err := compress.Detect(src)
	if err != nil {
		return nil, nil, newError(ErrFormat, HeaderSize, "%v", err)
	}
	body, err := cc.DecompressLimit(src, c.maxBodySize)
	if err != nil {
		return nil, nil, newError(ErrFormat, HeaderSize, "decompress body: %v", err)
	}
	return cc, body, nil
}

// DecodeBody parses a decompressed body for header h.
func DecodeBody(h Header, body []byte) (*Document, error) {
	dictSize, n, err := DecodeVarint(body, 0)
	if err != nil {
		return nil, err
	}
	pos := n
	// Each entry needs at least its length byte.
	if dictSize > uint64(len(body)-pos) {
		return nil, newError(ErrTruncatedInput, pos, "%d dictionary entries declared, %d bytes remain", dictSize, len(body)-pos)
	}
	entries := make([]string, dictSize)
	for i := range entries {
		s, sn, err := decodeString(body, pos)
		if err != nil {
			return nil, err
		}
		entries[i] = s
		pos += sn
	}

	rowCount, n, err := DecodeVarint(body, pos)
	if err != nil {
		return nil, err
	}
	pos += n
	if rowCount > uint64(len(body)-pos) {
		return nil, newError(ErrTruncatedInput, pos, "%d rows declared, %d bytes remain", rowCount, len(body)-pos)
	}
	rows := make([]Row, rowCount)
	for i := range rows {
		r, rn, err := DecodeRow(body, pos, h.FileType, entries)
		if err != nil {
			return nil, err
		}
		rows[i] = r
		pos += rn
	}
	if pos != len(body) {
		return nil, newError(ErrFormat, pos, "%d trailing bytes after last row", len(body)-pos)
	}

	return &Document{
		Header:     h,
		Dictionary: NewDictionary(entries),
		Rows:       rows,
	}, nil
}
