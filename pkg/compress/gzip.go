package compress

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec implements gzip at BestCompression.
type GzipCodec struct{}

var _ Codec = (*GzipCodec)(nil)

// NewGzip returns the gzip codec.
func NewGzip() *GzipCodec {
	return &GzipCodec{}
}

func (c *GzipCodec) Method() Method { return MethodGzip }

func (c *GzipCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *GzipCodec) Decompress(src []byte) ([]byte, error) {
	return c.DecompressLimit(src, 0)
}

func (c *GzipCodec) DecompressLimit(src []byte, limit int64) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer r.Close()
	out, err := readLimited(r, limit)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}
	return out, nil
}
