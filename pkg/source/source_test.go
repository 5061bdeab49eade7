package source

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/minfmt/pkg/codec"
)

func TestReadCSV(t *testing.T) {
	input := "Name,Age,City\nJohn,25,\"New York, NY\"\nJane,30\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []codec.Row{
		{"Name", "Age", "City"},
		{"John", "25", "New York, NY"},
		{"Jane", "30"},
	}, rows)
}

func TestReadText_LineEndings(t *testing.T) {
	rows, err := ReadText(strings.NewReader("one\r\ntwo\nthree\rfour"))
	require.NoError(t, err)
	assert.Equal(t, codec.TextRows([]string{"one", "two", "three", "four"}), rows)
}

func TestReadText_KeepsBlankLinesForPreprocessing(t *testing.T) {
	rows, err := ReadText(strings.NewReader("a\n\n  \nb\n"))
	require.NoError(t, err)
	assert.Equal(t, codec.TextRows([]string{"a", "", "  ", "b"}), rows)
}

func TestRead_Latin1Fallback(t *testing.T) {
	// "café" in Latin-1; 0xE9 alone is not valid UTF-8.
	in, err := Read(bytes.NewReader([]byte("caf\xe9\n")), codec.FileTypeText)
	require.NoError(t, err)
	assert.Equal(t, EncodingLatin1, in.Encoding)
	assert.Equal(t, codec.TextRows([]string{"café"}), in.Rows)
}

func TestRead_StripsBOM(t *testing.T) {
	in, err := Read(strings.NewReader("\xEF\xBB\xBFa,b\n"), codec.FileTypeCSV)
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, in.Encoding)
	assert.Equal(t, []codec.Row{{"a", "b"}}, in.Rows)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	rows := []codec.Row{
		{"id", "note"},
		{"1", "has, comma"},
		{"2", "has \"quotes\""},
		{"3"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t, "id,note\n1,\"has, comma\"\n2,\"has \"\"quotes\"\"\"\n3\n", buf.String())

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, codec.FileTypeText, codec.TextRows([]string{"a", "b"})))
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, codec.FileTypeCSV, DetectFileType("data/Report.CSV"))
	assert.Equal(t, codec.FileTypeText, DetectFileType("notes.txt"))
	assert.Equal(t, codec.FileTypeText, DetectFileType("README"))

	assert.Equal(t, filepath.Join("data", "report_deduped.min"), CompressedPath(filepath.Join("data", "report.csv"), ""))
	assert.Equal(t, filepath.Join("out", "report_deduped.min"), CompressedPath(filepath.Join("data", "report.csv"), "out"))

	assert.Equal(t, filepath.Join("data", "report_decompressed.csv"),
		DecompressedPath(filepath.Join("data", "report_deduped.min"), codec.FileTypeCSV, ""))
	assert.Equal(t, filepath.Join("data", "notes_decompressed.txt"),
		DecompressedPath(filepath.Join("data", "notes.min"), codec.FileTypeText, ""))
}
