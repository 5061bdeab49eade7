package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/minfmt/pkg/catalog"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind         string
	Port         int
	APIKey       string
	MaxBodyBytes int64 // Upper bound on request bodies; 0 disables the limit
}

// JobStore is the part of the catalog the API reads and writes.
type JobStore interface {
	Record(job *catalog.Job) error
	Get(id ksuid.KSUID) (*catalog.Job, error)
	List(limit int) ([]*catalog.Job, error)
}

// Stats headers set on encode responses.
const (
	HeaderFileType          = "X-Min-File-Type"
	HeaderInputRows         = "X-Min-Input-Rows"
	HeaderDuplicateRows     = "X-Min-Duplicate-Rows"
	HeaderEmptyRows         = "X-Min-Empty-Rows"
	HeaderColumnsDropped    = "X-Min-Columns-Dropped"
	HeaderDictionaryEntries = "X-Min-Dictionary-Entries"
	HeaderEncodedBytes      = "X-Min-Encoded-Bytes"
	HeaderMethod            = "X-Min-Method"
	HeaderJobID             = "X-Min-Job-Id"
)
