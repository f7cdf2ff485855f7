package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/qbatch/qbatch/internal/domain/model"
)

// ManagedJob tracks one remote job within a managed job set: the slice of
// the original batch it carries, the asynchronous submission outcome, and
// the backend job handle once submission finishes.
type ManagedJob struct {
	name       string
	startIndex int
	endIndex   int

	// done is closed when the submission attempt reaches an outcome,
	// successful or not.
	done chan struct{}

	mu        sync.Mutex
	job       Job
	submitErr error

	logger *slog.Logger
}

// NewManagedJob creates a managed job covering experimentCount experiments
// starting at startIndex of the original batch. A non-nil job re-attaches to
// an already submitted remote job and skips the submission phase.
func NewManagedJob(name string, startIndex, experimentCount int, job Job, logger *slog.Logger) *ManagedJob {
	m := &ManagedJob{
		name:       name,
		startIndex: startIndex,
		endIndex:   startIndex + experimentCount - 1,
		done:       make(chan struct{}),
		logger:     logger,
	}
	if job != nil {
		m.job = job
		close(m.done)
	}
	return m
}

// SubmitInput groups the dependencies for an asynchronous submission.
type SubmitInput struct {
	Backend     Backend
	Experiments []model.Experiment
	// Executor limits how many submissions may be in flight at once.
	Executor *semaphore.Weighted
	// SubmitLock serializes the actual backend call across jobs of the set.
	SubmitLock *sync.Mutex
}

// Submit starts the submission in its own goroutine. The outcome is observed
// through Await, Job, and SubmitError.
func (m *ManagedJob) Submit(ctx context.Context, in SubmitInput) {
	if m.logger != nil {
		m.logger.DebugContext(ctx, "submitting job", "job_name", m.name)
	}

	go func() {
		defer close(m.done)

		if err := in.Executor.Acquire(ctx, 1); err != nil {
			m.setOutcome(nil, fmt.Errorf("acquire submit slot: %w", err))
			return
		}
		defer in.Executor.Release(1)

		in.SubmitLock.Lock()
		defer in.SubmitLock.Unlock()

		if m.logger != nil {
			m.logger.DebugContext(ctx, "job got the submit lock", "job_name", m.name)
		}

		job, err := in.Backend.Run(ctx, m.name, in.Experiments)
		if err != nil {
			m.setOutcome(nil, fmt.Errorf("submit job %s: %w", m.name, err))
			return
		}
		m.setOutcome(job, nil)
	}()
}

func (m *ManagedJob) setOutcome(job Job, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.job = job
	m.submitErr = err

	if err != nil && m.logger != nil {
		m.logger.Error("job submission failed", "job_name", m.name, "error", err)
	}
}

// Await blocks until the submission attempt has an outcome or ctx is done.
func (m *ManagedJob) Await(ctx context.Context) error {
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Job returns the backend job handle, or nil if submission has not finished
// or failed.
func (m *ManagedJob) Job() Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.job
}

// SubmitError returns the submission error, if any.
func (m *ManagedJob) SubmitError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitErr
}

// Name returns the client-assigned job name.
func (m *ManagedJob) Name() string {
	return m.name
}

// StartIndex returns the batch position of the job's first experiment.
func (m *ManagedJob) StartIndex() int {
	return m.startIndex
}

// EndIndex returns the batch position of the job's last experiment.
func (m *ManagedJob) EndIndex() int {
	return m.endIndex
}

// ExperimentCount returns how many experiments the job carries.
func (m *ManagedJob) ExperimentCount() int {
	return m.endIndex - m.startIndex + 1
}

// ContainsIndex reports whether the given batch position falls in this job.
func (m *ManagedJob) ContainsIndex(i int) bool {
	return i >= m.startIndex && i <= m.endIndex
}

// Status reports the job status. A job whose submission is still in flight
// reports initializing; a job that failed to submit reports error together
// with the submission error.
func (m *ManagedJob) Status(ctx context.Context) (model.JobStatus, error) {
	select {
	case <-m.done:
	default:
		return model.JobStatusInitializing, nil
	}

	m.mu.Lock()
	job, submitErr := m.job, m.submitErr
	m.mu.Unlock()

	if submitErr != nil {
		return model.JobStatusError, submitErr
	}
	return job.Status(ctx)
}

// Result waits for the submission outcome and then for the remote job to
// reach a terminal state, returning its payload.
func (m *ManagedJob) Result(ctx context.Context) (*model.Result, error) {
	if err := m.Await(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	job, submitErr := m.job, m.submitErr
	m.mu.Unlock()

	if submitErr != nil {
		return nil, fmt.Errorf("job %s was not submitted: %w", m.name, submitErr)
	}
	return job.Result(ctx)
}

// Cancel requests cancellation of the remote job. Cancelling a job that
// never submitted successfully is a no-op.
func (m *ManagedJob) Cancel(ctx context.Context) error {
	if err := m.Await(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	job := m.job
	m.mu.Unlock()

	if job == nil {
		return nil
	}
	if err := job.Cancel(ctx); err != nil {
		return fmt.Errorf("cancel job %s: %w", m.name, err)
	}
	return nil
}
