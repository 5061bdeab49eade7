package codec

const (
	// MaxVarintLen is the longest encoding a varint may have.
	MaxVarintLen = 5

	// MaxVarint is the largest value that fits in MaxVarintLen bytes.
	MaxVarint = 1<<35 - 1
)

// EncodeVarint returns the varint encoding of v.
func EncodeVarint(v uint64) ([]byte, error) {
	return AppendVarint(make([]byte, 0, MaxVarintLen), v)
}

// AppendVarint appends the varint encoding of v to dst. Each byte carries 7
// bits, least significant group first; the high bit is set on every byte but
// the last.
func AppendVarint(dst []byte, v uint64) ([]byte, error) {
	if v > MaxVarint {
		return dst, newError(ErrRange, -1, "%d exceeds %d", v, uint64(MaxVarint))
	}
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v)), nil
}

// DecodeVarint reads a varint from b starting at off and returns the value
// and the number of bytes consumed.
func DecodeVarint(b []byte, off int) (uint64, int, error) {
	var v uint64
	for i := 0; i < MaxVarintLen; i++ {
		if off+i >= len(b) {
			return 0, 0, newError(ErrMalformedVarint, off, "input exhausted after %d bytes", i)
		}
		c := b[off+i]
		v |= uint64(c&0x7F) << (7 * i)
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, newError(ErrMalformedVarint, off, "no terminating byte within %d bytes", MaxVarintLen)
}

// varintLen returns the encoded size of v, assuming v is in range.
func varintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
