// Package pipeline runs file conversions: it reads sources, drives the
// document codec, writes outputs atomically and records each run.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/minfmt/pkg/catalog"
	"github.com/ssargent/minfmt/pkg/codec"
	"github.com/ssargent/minfmt/pkg/source"
)

// ErrOutputExists is returned when the output file exists and overwriting
// is disabled.
var ErrOutputExists = errors.New("output file exists")

// Recorder stores the outcome of a conversion.
type Recorder interface {
	Record(job *catalog.Job) error
}

// Options controls where and how outputs are written.
type Options struct {
	OutputDir string
	Overwrite bool
	Workers   int
}

// Result describes one processed file.
type Result struct {
	Operation   string       `json:"operation"`
	Source      string       `json:"source"`
	Output      string       `json:"output,omitempty"`
	FileType    string       `json:"file_type,omitempty"`
	Encoding    string       `json:"encoding,omitempty"`
	Rows        int          `json:"rows"`
	Stats       *codec.Stats `json:"stats,omitempty"`
	InputBytes  int64        `json:"input_bytes"`
	OutputBytes int64        `json:"output_bytes"`
	Skipped     bool         `json:"skipped,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	JobID       string       `json:"job_id,omitempty"`
	Err         error        `json:"-"`
}

// Reduction returns the output size relative to the input, in percent saved.
func (r *Result) Reduction() float64 {
	if r.InputBytes <= 0 {
		return 0
	}
	return (1 - float64(r.OutputBytes)/float64(r.InputBytes)) * 100
}

// Processor converts files between their source form and MIN.
type Processor struct {
	codec    *codec.DocumentCodec
	opts     Options
	logger   log.Logger
	recorder Recorder
}

// New returns a Processor. recorder may be nil to disable history.
func New(c *codec.DocumentCodec, opts Options, logger log.Logger, recorder Recorder) *Processor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Processor{
		codec:    c,
		opts:     opts,
		logger:   log.With(logger, "component", "pipeline"),
		recorder: recorder,
	}
}

// CompressFile encodes one CSV or text file into <base>_deduped.min. Missing
// and empty files are skipped rather than failed.
func (p *Processor) CompressFile(ctx context.Context, path string) (*Result, error) {
	res := &Result{Operation: catalog.OpCompress, Source: path}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if skip, err := p.checkSource(path, res); skip || err != nil {
		return res, err
	}

	f, err := os.Open(path)
	if err != nil {
		return p.fail(res, err)
	}
	ft := source.DetectFileType(path)
	in, err := source.Read(f, ft)
	f.Close()
	if err != nil {
		return p.fail(res, err)
	}
	res.FileType = ft.String()
	res.Encoding = string(in.Encoding)

	data, stats, err := p.codec.Encode(ft, in.Rows)
	if err != nil {
		return p.fail(res, err)
	}
	res.Stats = stats
	res.Rows = stats.OutputRows

	res.Output = source.CompressedPath(path, p.opts.OutputDir)
	if err := p.writeOutput(res.Output, data); err != nil {
		return p.fail(res, err)
	}
	res.OutputBytes = int64(len(data))

	level.Info(p.logger).Log(
		"msg", "compressed",
		"source", path,
		"output", res.Output,
		"duplicates", stats.DuplicateRows,
		"dictionary", stats.DictionaryEntries,
		"reduction", fmt.Sprintf("%.1f%%", res.Reduction()),
	)
	p.record(res)
	return res, nil
}

// DecompressFile decodes one .min file into <base>_decompressed.csv or .txt.
func (p *Processor) DecompressFile(ctx context.Context, path string) (*Result, error) {
	res := &Result{Operation: catalog.OpDecompress, Source: path}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if skip, err := p.checkSource(path, res); skip || err != nil {
		return res, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p.fail(res, err)
	}
	doc, err := p.codec.Decode(data)
	if err != nil {
		return p.fail(res, err)
	}
	ft := doc.FileType()
	res.FileType = ft.String()
	res.Rows = len(doc.Rows)

	var buf bytes.Buffer
	if err := source.Write(&buf, ft, doc.Rows); err != nil {
		return p.fail(res, err)
	}
	res.Output = source.DecompressedPath(path, ft, p.opts.OutputDir)
	if err := p.writeOutput(res.Output, buf.Bytes()); err != nil {
		return p.fail(res, err)
	}
	res.OutputBytes = int64(buf.Len())

	level.Info(p.logger).Log("msg", "decompressed", "source", path, "output", res.Output, "rows", res.Rows)
	p.record(res)
	return res, nil
}

// CompressFiles compresses paths concurrently. Every path gets a result, in
// input order; the returned error joins the per-file failures.
func (p *Processor) CompressFiles(ctx context.Context, paths []string) ([]*Result, error) {
	return p.each(ctx, paths, p.CompressFile)
}

// DecompressFiles decompresses paths concurrently, like CompressFiles.
func (p *Processor) DecompressFiles(ctx context.Context, paths []string) ([]*Result, error) {
	return p.each(ctx, paths, p.DecompressFile)
}

func (p *Processor) each(ctx context.Context, paths []string, fn func(context.Context, string) (*Result, error)) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := fn(gctx, path)
			if err != nil {
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Source, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

// checkSource fills InputBytes and reports whether the file should be skipped.
func (p *Processor) checkSource(path string, res *Result) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		res.Skipped, res.Reason = true, "file not found"
		level.Warn(p.logger).Log("msg", "skipping", "source", path, "reason", res.Reason)
		return true, nil
	}
	if err != nil {
		_, err = p.fail(res, err)
		return false, err
	}
	if info.IsDir() {
		_, err = p.fail(res, fmt.Errorf("%s is a directory", path))
		return false, err
	}
	res.InputBytes = info.Size()
	if info.Size() == 0 {
		res.Skipped, res.Reason = true, "file is empty"
		level.Warn(p.logger).Log("msg", "skipping", "source", path, "reason", res.Reason)
		return true, nil
	}
	return false, nil
}

func (p *Processor) fail(res *Result, err error) (*Result, error) {
	res.Err = err
	level.Error(p.logger).Log("msg", res.Operation+" failed", "source", res.Source, "err", err)
	p.record(res)
	return res, err
}

func (p *Processor) record(res *Result) {
	if p.recorder == nil {
		return
	}
	job := &catalog.Job{
		Operation:   res.Operation,
		Source:      res.Source,
		Output:      res.Output,
		FileType:    res.FileType,
		Encoding:    res.Encoding,
		OutputRows:  res.Rows,
		InputBytes:  res.InputBytes,
		OutputBytes: res.OutputBytes,
	}
	if s := res.Stats; s != nil {
		job.Method = string(s.Method)
		job.InputRows = s.InputRows
		job.EmptyRows = s.EmptyRows
		job.DuplicateRows = s.DuplicateRows
		job.ColumnsDropped = s.ColumnsDropped
		job.DictionaryEntries = s.DictionaryEntries
	}
	if res.Err != nil {
		job.Error = res.Err.Error()
	}
	if err := p.recorder.Record(job); err != nil {
		level.Warn(p.logger).Log("msg", "failed to record job", "source", res.Source, "err", err)
		return
	}
	res.JobID = job.ID.String()
}

// writeOutput writes data to path through a temporary file in the same
// directory, so readers never observe a partial file.
func (p *Processor) writeOutput(path string, data []byte) error {
	if !p.opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrOutputExists, path)
		}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".minfmt-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
