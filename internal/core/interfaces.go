// Package core provides the business logic for qbatch managed job sets:
// splitting a batch of experiments across remote jobs, tracking submission,
// and presenting the partitioned job results as one logical result set.
package core

import (
	"context"
	"time"

	"github.com/qbatch/qbatch/internal/domain/model"
)

// Job is a handle to one remote job on a backend. Implementations are
// provided by backend transports; this package never submits or polls on
// its own.
type Job interface {
	// ID returns the backend-assigned job identifier.
	ID() string

	// Name returns the client-assigned job name.
	Name() string

	// Status reports the current job status.
	Status(ctx context.Context) (model.JobStatus, error)

	// Result blocks until the job reaches a terminal state and returns its
	// result payload. Completed results are expected to be cached by the
	// implementation, making repeat calls cheap.
	Result(ctx context.Context) (*model.Result, error)

	// Cancel requests cancellation of the job.
	Cancel(ctx context.Context) error
}

// Backend submits experiments for execution and returns job handles.
// This follows the hexagonal architecture pattern where the core defines
// interfaces and transport adapters provide implementations.
type Backend interface {
	// Name returns the backend name.
	Name() string

	// MaxExperiments returns the per-job experiment cap, or 0 for no cap.
	MaxExperiments() int

	// Run submits the experiments as one job.
	Run(ctx context.Context, jobName string, experiments []model.Experiment) (Job, error)
}

// JobRetriever re-attaches to previously submitted jobs by ID. Backends that
// support job retrieval implement it in addition to Backend.
type JobRetriever interface {
	// RetrieveJob returns a handle to an existing job.
	RetrieveJob(ctx context.Context, jobID string) (Job, error)
}

// CacheRepository defines the interface for caching completed result
// payloads. The data layer provides a Redis implementation.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// JobSetRepository persists job-set metadata so a set can be reported on or
// rebuilt after the submitting process exits.
type JobSetRepository interface {
	// Save stores the record, replacing any previous record with the same ID.
	Save(ctx context.Context, rec *model.JobSetRecord) error

	// GetByID fetches one record.
	GetByID(ctx context.Context, id string) (*model.JobSetRecord, error)

	// GetByName fetches the most recently created record with the given name.
	GetByName(ctx context.Context, name string) (*model.JobSetRecord, error)

	// List returns records ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]*model.JobSetRecord, error)

	// Delete removes a record. Returns true if a record was deleted.
	Delete(ctx context.Context, id string) (bool, error)
}
