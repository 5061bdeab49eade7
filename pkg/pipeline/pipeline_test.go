package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/minfmt/pkg/catalog"
	"github.com/ssargent/minfmt/pkg/codec"
	"github.com/ssargent/minfmt/pkg/logging"
)

func newTestProcessor(t *testing.T, opts Options) (*Processor, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return New(codec.NewDocumentCodec(), opts, logging.Nop(), cat), cat
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompressDecompress_CSV(t *testing.T) {
	dir := t.TempDir()
	p, cat := newTestProcessor(t, Options{})
	src := writeFile(t, dir, "people.csv", "name,age,city\nAlice,25,NYC\nBob,25,NYC\nAlice,25,NYC\n")

	res, err := p.CompressFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "people_deduped.min"), res.Output)
	assert.Equal(t, "csv", res.FileType)
	assert.Equal(t, 1, res.Stats.DuplicateRows)
	assert.Equal(t, 3, res.Rows)
	assert.NotEmpty(t, res.JobID)
	assert.FileExists(t, res.Output)

	back, err := p.DecompressFile(context.Background(), res.Output)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "people_decompressed.csv"), back.Output)

	got, err := os.ReadFile(back.Output)
	require.NoError(t, err)
	assert.Equal(t, "name,age,city\nAlice,25,NYC\nBob,25,NYC\n", string(got))

	jobs, err := cat.List(0)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	ops := []string{jobs[0].Operation, jobs[1].Operation}
	assert.ElementsMatch(t, []string{catalog.OpCompress, catalog.OpDecompress}, ops)
}

func TestCompressDecompress_Text(t *testing.T) {
	dir := t.TempDir()
	p, _ := newTestProcessor(t, Options{})
	src := writeFile(t, dir, "notes.txt", "  hello \n\nworld\nhello\n")

	res, err := p.CompressFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "text", res.FileType)

	back, err := p.DecompressFile(context.Background(), res.Output)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes_decompressed.txt"), back.Output)

	got, err := os.ReadFile(back.Output)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(got))
}

func TestCompressFile_SkipsMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	p, cat := newTestProcessor(t, Options{})

	res, err := p.CompressFile(context.Background(), filepath.Join(dir, "nope.csv"))
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "file not found", res.Reason)

	empty := writeFile(t, dir, "empty.txt", "")
	res, err = p.CompressFile(context.Background(), empty)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "file is empty", res.Reason)

	jobs, err := cat.List(0)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCompressFile_RespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.txt", "one\ntwo\n")
	writeFile(t, dir, "a_deduped.min", "existing")

	p, _ := newTestProcessor(t, Options{})
	_, err := p.CompressFile(context.Background(), src)
	assert.ErrorIs(t, err, ErrOutputExists)

	p, _ = newTestProcessor(t, Options{Overwrite: true})
	res, err := p.CompressFile(context.Background(), src)
	require.NoError(t, err)
	assert.Greater(t, res.OutputBytes, int64(len("existing")))
}

func TestCompressFile_OutputDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "nested")
	src := writeFile(t, dir, "a.csv", "x,y\n1,2\n")

	p, _ := newTestProcessor(t, Options{OutputDir: out})
	res, err := p.CompressFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "a_deduped.min"), res.Output)
	assert.FileExists(t, res.Output)
}

func TestDecompressFile_CorruptInputRecordsFailure(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.min", "NOTMIN\x01\x01junk")

	p, cat := newTestProcessor(t, Options{})
	res, err := p.DecompressFile(context.Background(), bad)
	assert.ErrorIs(t, err, codec.ErrFormat)
	assert.Empty(t, res.Output)

	jobs, err := cat.List(1)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.NotEmpty(t, jobs[0].Error)
	assert.NoFileExists(t, filepath.Join(dir, "bad_decompressed.txt"))
}

func TestCompressFiles_Concurrent(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.csv", "b.csv", "c.txt", "d.txt"} {
		paths = append(paths, writeFile(t, dir, name, "k,v\nk,v\nz,v\n"))
	}
	paths = append(paths, filepath.Join(dir, "missing.csv"))

	p, _ := newTestProcessor(t, Options{Workers: 3})
	results, err := p.CompressFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results[:4] {
		assert.Equal(t, paths[i], r.Source)
		assert.False(t, r.Skipped)
		assert.FileExists(t, r.Output)
	}
	assert.True(t, results[4].Skipped)

	var mins []string
	for _, r := range results[:4] {
		mins = append(mins, r.Output)
	}
	back, err := p.DecompressFiles(context.Background(), mins)
	require.NoError(t, err)
	for _, r := range back {
		assert.FileExists(t, r.Output)
	}
}

func TestDecompressFiles_JoinsErrors(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "good.txt", "line\n")
	bad := writeFile(t, dir, "bad.min", "garbage!")

	p, _ := newTestProcessor(t, Options{Workers: 2})
	res, err := p.CompressFile(context.Background(), src)
	require.NoError(t, err)

	results, err := p.DecompressFiles(context.Background(), []string{bad, res.Output})
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrFormat)
	assert.Contains(t, err.Error(), bad)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.FileExists(t, results[1].Output)
}

func TestCompressFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := newTestProcessor(t, Options{})
	_, err := p.CompressFile(ctx, "whatever.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_Reduction(t *testing.T) {
	r := &Result{InputBytes: 200, OutputBytes: 50}
	assert.InDelta(t, 75.0, r.Reduction(), 0.001)
	assert.Zero(t, (&Result{}).Reduction())
}
