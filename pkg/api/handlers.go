package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/minfmt/pkg/catalog"
	"github.com/ssargent/minfmt/pkg/codec"
	"github.com/ssargent/minfmt/pkg/source"
)

const (
	defaultJobLimit = 50
	apiSource       = "api"
)

// Server holds the API server state
type Server struct {
	codec   *codec.DocumentCodec
	jobs    JobStore
	config  ServerConfig
	metrics *Metrics
	logger  log.Logger
}

// NewServer creates a new API server. jobs may be nil, in which case
// conversions are not recorded and the job endpoints report 503.
func NewServer(c *codec.DocumentCodec, jobs JobStore, config ServerConfig, metrics *Metrics, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{
		codec:   c,
		jobs:    jobs,
		config:  config,
		metrics: metrics,
		logger:  log.With(logger, "component", "api"),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleEncode reads a raw CSV or text body and responds with MIN bytes.
// The file type comes from the type query parameter or, failing that, the
// Content-Type header.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ft, err := requestFileType(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	in, err := source.Read(bytes.NewReader(body), ft)
	if err != nil {
		s.metrics.RecordCodecOperation(catalog.OpCompress, false, time.Since(start), len(body), 0)
		sendError(w, fmt.Sprintf("Failed to parse input: %v", err), http.StatusBadRequest)
		return
	}
	data, stats, err := s.codec.Encode(ft, in.Rows)
	if err != nil {
		s.metrics.RecordCodecOperation(catalog.OpCompress, false, time.Since(start), len(body), 0)
		sendError(w, fmt.Sprintf("Failed to encode: %v", err), codecStatus(err))
		return
	}
	s.metrics.RecordCodecOperation(catalog.OpCompress, true, time.Since(start), len(body), len(data))
	s.metrics.RecordEncodeStats(stats.DuplicateRows, stats.DictionaryEntries)

	job := &catalog.Job{
		Operation:         catalog.OpCompress,
		Source:            apiSource,
		FileType:          ft.String(),
		Encoding:          string(in.Encoding),
		Method:            string(stats.Method),
		InputRows:         stats.InputRows,
		EmptyRows:         stats.EmptyRows,
		DuplicateRows:     stats.DuplicateRows,
		ColumnsDropped:    stats.ColumnsDropped,
		OutputRows:        stats.OutputRows,
		DictionaryEntries: stats.DictionaryEntries,
		InputBytes:        int64(len(body)),
		OutputBytes:       int64(len(data)),
	}
	s.record(job)

	h := w.Header()
	h.Set("Content-Type", "application/octet-stream")
	h.Set(HeaderFileType, ft.String())
	h.Set(HeaderInputRows, strconv.Itoa(stats.InputRows))
	h.Set(HeaderEmptyRows, strconv.Itoa(stats.EmptyRows))
	h.Set(HeaderDuplicateRows, strconv.Itoa(stats.DuplicateRows))
	h.Set(HeaderColumnsDropped, strconv.Itoa(stats.ColumnsDropped))
	h.Set(HeaderDictionaryEntries, strconv.Itoa(stats.DictionaryEntries))
	h.Set(HeaderEncodedBytes, strconv.Itoa(len(data)))
	h.Set(HeaderMethod, string(stats.Method))
	if job.ID != ksuid.Nil {
		h.Set(HeaderJobID, job.ID.String())
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleDecode reads MIN bytes and responds with the restored CSV or text.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	doc, err := s.codec.Decode(body)
	if err != nil {
		s.metrics.RecordCodecOperation(catalog.OpDecompress, false, time.Since(start), len(body), 0)
		sendError(w, fmt.Sprintf("Failed to decode: %v", err), codecStatus(err))
		return
	}
	var out bytes.Buffer
	if err := source.Write(&out, doc.FileType(), doc.Rows); err != nil {
		s.metrics.RecordCodecOperation(catalog.OpDecompress, false, time.Since(start), len(body), 0)
		sendError(w, fmt.Sprintf("Failed to write output: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.RecordCodecOperation(catalog.OpDecompress, true, time.Since(start), len(body), out.Len())

	job := &catalog.Job{
		Operation:         catalog.OpDecompress,
		Source:            apiSource,
		FileType:          doc.FileType().String(),
		OutputRows:        len(doc.Rows),
		DictionaryEntries: doc.Dictionary.Len(),
		InputBytes:        int64(len(body)),
		OutputBytes:       int64(out.Len()),
	}
	s.record(job)

	contentType := "text/plain; charset=utf-8"
	if doc.FileType() == codec.FileTypeCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set(HeaderFileType, doc.FileType().String())
	if job.ID != ksuid.Nil {
		w.Header().Set(HeaderJobID, job.ID.String())
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Bytes())
}

// handleInspect reports the layout of a MIN body as JSON.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	summary, err := s.codec.Inspect(body)
	if err != nil {
		s.metrics.RecordCodecOperation("inspect", false, time.Since(start), len(body), 0)
		sendError(w, fmt.Sprintf("Failed to inspect: %v", err), codecStatus(err))
		return
	}
	s.metrics.RecordCodecOperation("inspect", true, time.Since(start), len(body), 0)
	sendSuccess(w, summary)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		sendError(w, "Job catalog is disabled", http.StatusServiceUnavailable)
		return
	}
	limit := defaultJobLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	jobs, err := s.jobs.List(limit)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list jobs: %v", err), http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []*catalog.Job{}
	}
	sendSuccess(w, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		sendError(w, "Job catalog is disabled", http.StatusServiceUnavailable)
		return
	}
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid job id", http.StatusBadRequest)
		return
	}
	job, err := s.jobs.Get(id)
	if errors.Is(err, catalog.ErrJobNotFound) {
		sendError(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to get job: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, job)
}

// readBody reads the request body within the configured limit. On failure
// it has already written the error response.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	rd := io.Reader(r.Body)
	if s.config.MaxBodyBytes > 0 {
		rd = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	body, err := io.ReadAll(rd)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	if len(body) == 0 {
		sendError(w, "Request body is empty", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (s *Server) record(job *catalog.Job) {
	if s.jobs == nil {
		return
	}
	if err := s.jobs.Record(job); err != nil {
		level.Warn(s.logger).Log("msg", "failed to record job", "operation", job.Operation, "err", err)
	}
}

func requestFileType(r *http.Request) (codec.FileType, error) {
	if t := r.URL.Query().Get("type"); t != "" {
		return codec.ParseFileType(t)
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "text/csv" {
		return codec.FileTypeCSV, nil
	}
	return codec.FileTypeText, nil
}

// codecStatus maps codec failures to 400 and anything else to 500.
func codecStatus(err error) int {
	var ce *codec.Error
	if errors.As(err, &ce) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
