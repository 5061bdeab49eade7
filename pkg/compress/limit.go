package compress

import (
	"errors"
	"fmt"
	"io"
)

// ErrTooLarge is returned when a frame inflates past the caller's limit.
var ErrTooLarge = errors.New("compress: decoded size exceeds limit")

// readLimited reads r to EOF, failing once more than limit bytes come out.
// A limit of zero or less reads everything.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return out, nil
}
