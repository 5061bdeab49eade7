package compress

import (
	"bytes"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec implements LZ4 frame compression at the highest level.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4 returns the lz4 codec.
func NewLZ4() *LZ4Codec {
	return &LZ4Codec{}
}

func (c *LZ4Codec) Method() Method { return MethodLZ4 }

func (c *LZ4Codec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return nil, fmt.Errorf("lz4 options: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *LZ4Codec) Decompress(src []byte) ([]byte, error) {
	return c.DecompressLimit(src, 0)
}

func (c *LZ4Codec) DecompressLimit(src []byte, limit int64) ([]byte, error) {
	out, err := readLimited(lz4.NewReader(bytes.NewReader(src)), limit)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out, nil
}
