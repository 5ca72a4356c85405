package storage

import (
	"context"
	"errors"
	"time"
)

// Backend persists scenario run records.
type Backend interface {
	// Initialize sets up the storage backend
	Initialize(ctx context.Context) error

	// Close closes the storage backend
	Close() error

	// Health checks if the storage backend is healthy
	Health(ctx context.Context) error

	SaveRun(ctx context.Context, run *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	// ListRuns returns summaries newest first; limit <= 0 means the default.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	DeleteRun(ctx context.Context, id string) error

	// Storage metrics and monitoring
	GetStorageStats(ctx context.Context) (StorageStats, error)
}

// ErrNotFound is returned when a key is not found
type ErrNotFound struct {
	Key string
}

func (e *ErrNotFound) Error() string {
	return "key not found: " + e.Key
}

// IsNotFound reports whether err is an *ErrNotFound.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// StorageStats provides storage backend statistics
type StorageStats struct {
	Backend     string                 `json:"backend"`
	Healthy     bool                   `json:"healthy"`
	RunCount    int                    `json:"run_count"`
	PassedCount int                    `json:"passed_count"`
	FailedCount int                    `json:"failed_count"`
	LastRunAt   *time.Time             `json:"last_run_at,omitempty"`
	TotalSize   int64                  `json:"total_size_bytes,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}
