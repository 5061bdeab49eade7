// Package compress provides the general-purpose compression pass applied to
// a MIN body. Every codec writes a self-identifying frame, so Detect can pick
// the right decompressor from the bytes alone.
package compress

import (
	"bytes"
	"errors"
	"fmt"
)

// Codec compresses and decompresses whole buffers.
type Codec interface {
	// Method returns the codec identifier.
	Method() Method
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
	// DecompressLimit fails with ErrTooLarge once the output passes limit
	// bytes. A limit of zero or less means no limit.
	DecompressLimit(src []byte, limit int64) ([]byte, error)
}

// Method names a compression codec.
type Method string

const (
	MethodZstd Method = "zstd"
	MethodLZ4  Method = "lz4"
	MethodGzip Method = "gzip"
	MethodNone Method = "none"
)

// ErrUnknownFrame is returned by Detect when no codec recognizes the input.
var ErrUnknownFrame = errors.New("compress: unrecognized frame")

// Frame magics.
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
	gzipMagic = []byte{0x1F, 0x8B}
	noneMagic = []byte("RAW0")
)

// ByName returns a codec for a configured method name.
func ByName(name string) (Codec, error) {
	switch Method(name) {
	case MethodZstd, "":
		return NewZstd(), nil
	case MethodLZ4:
		return NewLZ4(), nil
	case MethodGzip:
		return NewGzip(), nil
	case MethodNone:
		return NewNone(), nil
	default:
		return nil, fmt.Errorf("unknown compression method %q", name)
	}
}

// Detect returns the codec whose frame magic starts src.
func Detect(src []byte) (Codec, error) {
	switch {
	case bytes.HasPrefix(src, zstdMagic):
		return NewZstd(), nil
	case bytes.HasPrefix(src, lz4Magic):
		return NewLZ4(), nil
	case bytes.HasPrefix(src, gzipMagic):
		return NewGzip(), nil
	case bytes.HasPrefix(src, noneMagic):
		return NewNone(), nil
	}
	n := len(src)
	if n > 4 {
		n = 4
	}
	return nil, fmt.Errorf("%w: leading bytes % x", ErrUnknownFrame, src[:n])
}

// Auto compresses with Default and decompresses whatever Detect recognizes.
type Auto struct {
	Default Codec
}

// NewAuto returns an Auto codec compressing with def, or zstd if def is nil.
func NewAuto(def Codec) *Auto {
	if def == nil {
		def = NewZstd()
	}
	return &Auto{Default: def}
}

func (a *Auto) Method() Method { return a.Default.Method() }

func (a *Auto) Compress(src []byte) ([]byte, error) {
	return a.Default.Compress(src)
}

func (a *Auto) Decompress(src []byte) ([]byte, error) {
	c, err := Detect(src)
	if err != nil {
		return nil, err
	}
	return c.Decompress(src)
}

func (a *Auto) DecompressLimit(src []byte, limit int64) ([]byte, error) {
	c, err := Detect(src)
	if err != nil {
		return nil, err
	}
	return c.DecompressLimit(src, limit)
}
