package compress

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder; both are safe for concurrent EncodeAll/DecodeAll.
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdInitErr error
)

func zstdInit() error {
	zstdOnce.Do(func() {
		zstdEncoder, zstdInitErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithEncoderCRC(true),
		)
		if zstdInitErr != nil {
			return
		}
		zstdDecoder, zstdInitErr = zstd.NewReader(nil)
	})
	return zstdInitErr
}

// ZstdCodec implements Zstandard compression at the best-compression level.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstd returns the zstd codec.
func NewZstd() *ZstdCodec {
	return &ZstdCodec{}
}

func (c *ZstdCodec) Method() Method { return MethodZstd }

func (c *ZstdCodec) Compress(src []byte) ([]byte, error) {
	if err := zstdInit(); err != nil {
		return nil, fmt.Errorf("zstd init: %w", err)
	}
	return zstdEncoder.EncodeAll(src, nil), nil
}

func (c *ZstdCodec) Decompress(src []byte) ([]byte, error) {
	if err := zstdInit(); err != nil {
		return nil, fmt.Errorf("zstd init: %w", err)
	}
	out, err := zstdDecoder.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return out, nil
}

// DecompressLimit streams the frame through a dedicated decoder capped at
// limit bytes, so an oversized frame is never fully inflated.
func (c *ZstdCodec) DecompressLimit(src []byte, limit int64) ([]byte, error) {
	if limit <= 0 {
		return c.Decompress(src)
	}
	dec, err := zstd.NewReader(bytes.NewReader(src),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", zstdLimitErr(err, limit))
	}
	defer dec.Close()
	out, err := readLimited(dec, limit)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", zstdLimitErr(err, limit))
	}
	return out, nil
}

func zstdLimitErr(err error, limit int64) error {
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
		return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return err
}
