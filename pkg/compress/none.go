package compress

import "fmt"

// NoneCodec stores the body uncompressed behind a 4-byte marker.
type NoneCodec struct{}

var _ Codec = (*NoneCodec)(nil)

// NewNone returns the identity codec.
func NewNone() *NoneCodec {
	return &NoneCodec{}
}

func (c *NoneCodec) Method() Method { return MethodNone }

func (c *NoneCodec) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, 0, len(noneMagic)+len(src))
	dst = append(dst, noneMagic...)
	return append(dst, src...), nil
}

func (c *NoneCodec) Decompress(src []byte) ([]byte, error) {
	return c.DecompressLimit(src, 0)
}

func (c *NoneCodec) DecompressLimit(src []byte, limit int64) ([]byte, error) {
	if len(src) < len(noneMagic) || string(src[:len(noneMagic)]) != string(noneMagic) {
		return nil, fmt.Errorf("%w: missing raw marker", ErrUnknownFrame)
	}
	if n := int64(len(src) - len(noneMagic)); limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, n, limit)
	}
	dst := make([]byte, len(src)-len(noneMagic))
	copy(dst, src[len(noneMagic):])
	return dst, nil
}
