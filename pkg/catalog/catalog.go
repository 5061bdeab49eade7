// Package catalog keeps a history of file conversions in a pebble store,
// keyed by time-ordered KSUIDs.
package catalog

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/segmentio/ksuid"
)

// Operations recorded in the catalog.
const (
	OpCompress   = "compress"
	OpDecompress = "decompress"
)

// ErrJobNotFound is returned when no job has the requested id.
var ErrJobNotFound = errors.New("job not found")

// Jobs live under job/<ksuid>. A second key, time/<unix nanos><ksuid>,
// orders them by creation time at sub-second resolution.
var (
	jobPrefix  = []byte("job/")
	timePrefix = []byte("time/")
	timeUpper  = []byte("time0")
)

// Job is one recorded conversion.
type Job struct {
	ID                ksuid.KSUID `json:"id"`
	Operation         string      `json:"operation"`
	Source            string      `json:"source"`
	Output            string      `json:"output,omitempty"`
	FileType          string      `json:"file_type"`
	Encoding          string      `json:"encoding,omitempty"`
	Method            string      `json:"method,omitempty"`
	InputRows         int         `json:"input_rows"`
	EmptyRows         int         `json:"empty_rows"`
	DuplicateRows     int         `json:"duplicate_rows"`
	ColumnsDropped    int         `json:"columns_dropped"`
	OutputRows        int         `json:"output_rows"`
	DictionaryEntries int         `json:"dictionary_entries"`
	InputBytes        int64       `json:"input_bytes"`
	OutputBytes       int64       `json:"output_bytes"`
	Error             string      `json:"error,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

// Reduction returns the size reduction in percent, or 0 without input.
func (j *Job) Reduction() float64 {
	if j.InputBytes <= 0 {
		return 0
	}
	return (1 - float64(j.OutputBytes)/float64(j.InputBytes)) * 100
}

// Catalog is a pebble-backed job history.
type Catalog struct {
	db *pebble.DB
}

// Open opens or creates a catalog in dir.
func Open(dir string) (*Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	return &Catalog{db: db}, nil
}

// OpenInMemory opens a catalog that is discarded on Close.
func OpenInMemory() (*Catalog, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	return &Catalog{db: db}, nil
}

func jobKey(id ksuid.KSUID) []byte {
	return append(append([]byte{}, jobPrefix...), id.String()...)
}

func timeKey(t time.Time, id ksuid.KSUID) []byte {
	k := make([]byte, 0, len(timePrefix)+8+len(ksuid.Nil))
	k = append(k, timePrefix...)
	k = binary.BigEndian.AppendUint64(k, uint64(t.UnixNano()))
	return append(k, id.Bytes()...)
}

// Record assigns the job an id and creation time when missing and stores it.
func (c *Catalog) Record(job *Job) error {
	if job.ID == ksuid.Nil {
		job.ID = ksuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "marshal job")
	}

	b := c.db.NewBatch()
	defer b.Close()
	if err := b.Set(jobKey(job.ID), data, nil); err != nil {
		return err
	}
	if err := b.Set(timeKey(job.CreatedAt, job.ID), job.ID.Bytes(), nil); err != nil {
		return err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return errors.Wrapf(err, "store job %s", job.ID)
	}
	return nil
}

// Get returns the job with the given id.
func (c *Catalog) Get(id ksuid.KSUID) (*Job, error) {
	data, closer, err := c.db.Get(jobKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, errors.Wrapf(err, "decode job %s", id)
	}
	return &job, nil
}

// List returns up to limit jobs, newest first. A limit of 0 returns all.
func (c *Catalog) List(limit int) ([]*Job, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: timePrefix,
		UpperBound: timeUpper,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var jobs []*Job
	for iter.Last(); iter.Valid(); iter.Prev() {
		id, err := ksuid.FromBytes(iter.Value())
		if err != nil {
			return nil, errors.Wrapf(err, "bad index entry %x", iter.Key())
		}
		job, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
		if limit > 0 && len(jobs) == limit {
			break
		}
	}
	return jobs, iter.Error()
}

// Delete removes a job. Deleting an unknown id is not an error.
func (c *Catalog) Delete(id ksuid.KSUID) error {
	job, err := c.Get(id)
	if errors.Is(err, ErrJobNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	b := c.db.NewBatch()
	defer b.Close()
	if err := b.Delete(jobKey(id), nil); err != nil {
		return err
	}
	if err := b.Delete(timeKey(job.CreatedAt, id), nil); err != nil {
		return err
	}
	return b.Commit(pebble.Sync)
}

// Close closes the underlying store.
func (c *Catalog) Close() error {
	return c.db.Close()
}
