package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCodecs() []Codec {
	return []Codec{NewZstd(), NewLZ4(), NewGzip(), NewNone()}
}

func TestCodecs_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"short":      {0x00, 0x00},
		"text":       []byte("the quick brown fox jumps over the lazy dog"),
		"repetitive": bytes.Repeat([]byte("NYC,25,"), 4096),
	}

	for _, c := range allCodecs() {
		for name, in := range inputs {
			t.Run(string(c.Method())+"/"+name, func(t *testing.T) {
				packed, err := c.Compress(in)
				require.NoError(t, err)

				out, err := c.Decompress(packed)
				require.NoError(t, err)
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestCodecs_ShrinkRepetitiveInput(t *testing.T) {
	in := bytes.Repeat([]byte("Alice,30,NYC\n"), 1000)
	for _, c := range allCodecs() {
		if c.Method() == MethodNone {
			continue
		}
		packed, err := c.Compress(in)
		require.NoError(t, err)
		assert.Less(t, len(packed), len(in)/10, c.Method())
	}
}

func TestDetect(t *testing.T) {
	payload := []byte("detect me")
	for _, c := range allCodecs() {
		packed, err := c.Compress(payload)
		require.NoError(t, err)

		got, err := Detect(packed)
		require.NoError(t, err)
		assert.Equal(t, c.Method(), got.Method())
	}
}

func TestDetect_Unknown(t *testing.T) {
	_, err := Detect([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00})
	assert.ErrorIs(t, err, ErrUnknownFrame)

	_, err = Detect(nil)
	assert.ErrorIs(t, err, ErrUnknownFrame)
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want Method
	}{
		{"", MethodZstd},
		{"zstd", MethodZstd},
		{"lz4", MethodLZ4},
		{"gzip", MethodGzip},
		{"none", MethodNone},
	}
	for _, tt := range tests {
		c, err := ByName(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.Method())
	}

	_, err := ByName("lzma")
	assert.Error(t, err)
}

func TestAuto(t *testing.T) {
	a := NewAuto(nil)
	assert.Equal(t, MethodZstd, a.Method())

	gz, err := NewGzip().Compress([]byte("from gzip"))
	require.NoError(t, err)
	out, err := a.Decompress(gz)
	require.NoError(t, err)
	assert.Equal(t, "from gzip", string(out))

	packed, err := NewAuto(NewLZ4()).Compress([]byte("from lz4"))
	require.NoError(t, err)
	out, err = a.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, "from lz4", string(out))
}

func TestNone_RejectsMissingMarker(t *testing.T) {
	_, err := NewNone().Decompress([]byte("RAW"))
	assert.ErrorIs(t, err, ErrUnknownFrame)
}

func TestZstd_CorruptFrame(t *testing.T) {
	packed, err := NewZstd().Compress(bytes.Repeat([]byte("abc"), 100))
	require.NoError(t, err)
	packed = packed[:len(packed)-3]

	_, err = NewZstd().Decompress(packed)
	assert.Error(t, err)
}

func TestCodecs_DecompressLimit(t *testing.T) {
	in := make([]byte, 1<<20)
	for _, c := range allCodecs() {
		t.Run(string(c.Method()), func(t *testing.T) {
			packed, err := c.Compress(in)
			require.NoError(t, err)

			out, err := c.DecompressLimit(packed, int64(len(in)))
			require.NoError(t, err)
			assert.Len(t, out, len(in))

			_, err = c.DecompressLimit(packed, int64(len(in))-1)
			assert.ErrorIs(t, err, ErrTooLarge)

			out, err = c.DecompressLimit(packed, 0)
			require.NoError(t, err)
			assert.Len(t, out, len(in))
		})
	}
}

func TestAuto_DecompressLimit(t *testing.T) {
	packed, err := NewGzip().Compress(bytes.Repeat([]byte{'x'}, 4096))
	require.NoError(t, err)

	_, err = NewAuto(nil).DecompressLimit(packed, 1024)
	assert.ErrorIs(t, err, ErrTooLarge)
}
