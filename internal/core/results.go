package core

import (
	"context"
	"sync"

	"github.com/qbatch/qbatch/internal/domain/model"
	apperrors "github.com/qbatch/qbatch/internal/errors"
)

// JobSetIndex maps experiment references to jobs and exposes the jobs in
// submission order. ManagedJobSet is the production implementation.
type JobSetIndex interface {
	// JobForRef resolves a reference to (job handle, intra-job offset).
	// The handle is nil when the containing job was never successfully
	// submitted; found is false when the reference resolves to nothing.
	JobForRef(ref model.ExperimentRef) (job Job, offset int, found bool)

	// Jobs returns the job handles in submission order.
	Jobs() []Job
}

// ManagedResults presents the results of a partitioned job set as one
// logical, indexable result set. It resolves experiment references through
// the job set index, forwards read queries to the owning job's payload, and
// combines all payloads into a single ordered result when every job
// succeeded.
//
// The view is read-only: the backend name and success flag are fixed at
// construction and the combined result is computed at most once.
type ManagedResults struct {
	index       JobSetIndex
	backendName string
	success     bool

	mu       sync.Mutex
	combined *model.Result
}

// NewManagedResults creates a result view over the given index. success must
// be true only if every job in the set completed successfully; the view
// trusts the caller and never recomputes it.
func NewManagedResults(index JobSetIndex, backendName string, success bool) *ManagedResults {
	return &ManagedResults{
		index:       index,
		backendName: backendName,
		success:     success,
	}
}

// BackendName returns the name of the backend the experiments ran on.
func (m *ManagedResults) BackendName() string {
	return m.backendName
}

// Success reports whether all experiments were successful.
func (m *ManagedResults) Success() bool {
	return m.success
}

// getResult resolves an experiment reference to the result payload of the
// job it ran in and its offset within that payload. Every call re-resolves
// and re-fetches; completed results are assumed cached by the job handle.
func (m *ManagedResults) getResult(ctx context.Context, ref model.ExperimentRef) (*model.Result, int, error) {
	job, offset, found := m.index.JobForRef(ref)
	if !found || job == nil {
		return nil, 0, apperrors.SubmissionNotFoundf(
			"job for experiment %s was not successfully submitted", ref)
	}

	res, err := job.Result(ctx)
	if err != nil {
		return nil, 0, apperrors.Wrapf(err, apperrors.ErrCodeResultUnavailable,
			"result data for experiment %s is not available", ref)
	}
	return res, offset, nil
}

// Data returns the raw result data for an experiment.
func (m *ManagedResults) Data(ctx context.Context, ref model.ExperimentRef) (model.ResultData, error) {
	res, offset, err := m.getResult(ctx, ref)
	if err != nil {
		return model.ResultData{}, err
	}
	return res.Data(offset)
}

// Counts returns the histogram data of an experiment.
func (m *ManagedResults) Counts(ctx context.Context, ref model.ExperimentRef) (map[string]int, error) {
	res, offset, err := m.getResult(ctx, ref)
	if err != nil {
		return nil, err
	}
	return res.Counts(offset)
}

// Memory returns the sequence of per-shot readouts of an experiment.
func (m *ManagedResults) Memory(ctx context.Context, ref model.ExperimentRef) ([]string, error) {
	res, offset, err := m.getResult(ctx, ref)
	if err != nil {
		return nil, err
	}
	return res.Memory(offset)
}

// Statevector returns the final statevector of an experiment, rounded to
// decimals. Negative decimals skip rounding.
func (m *ManagedResults) Statevector(ctx context.Context, ref model.ExperimentRef, decimals int) ([]model.Amplitude, error) {
	res, offset, err := m.getResult(ctx, ref)
	if err != nil {
		return nil, err
	}
	return res.Statevector(offset, decimals)
}

// Unitary returns the final unitary of an experiment, rounded to decimals.
// Negative decimals skip rounding.
func (m *ManagedResults) Unitary(ctx context.Context, ref model.ExperimentRef, decimals int) ([][]model.Amplitude, error) {
	res, offset, err := m.getResult(ctx, ref)
	if err != nil {
		return nil, err
	}
	return res.Unitary(offset, decimals)
}

// CombineResults combines the results of all jobs into a single payload
// whose entries follow submission order, preserving intra-job experiment
// order. The combined payload shares no mutable storage with any job's
// stored result. It is computed once and the identical value is returned on
// every subsequent call.
//
// Since the entry order must match the order of the original undivided
// batch, combination is refused outright unless every job succeeded: a gap
// from a missing job would silently misalign every subsequent entry.
func (m *ManagedResults) CombineResults(ctx context.Context) (*model.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.combined != nil {
		return m.combined, nil
	}

	if !m.success {
		return nil, apperrors.CombinationRefused(
			"results cannot be combined since some of the jobs failed")
	}

	jobs := m.index.Jobs()
	if len(jobs) == 0 {
		return nil, apperrors.Internal("job set has no jobs")
	}

	var combined *model.Result
	for i, job := range jobs {
		res, err := job.Result(ctx)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeResultUnavailable,
				"result data for job %d is not available", i)
		}
		cp := res.Copy()
		if combined == nil {
			combined = cp
			continue
		}
		combined.Entries = append(combined.Entries, cp.Entries...)
	}

	m.combined = combined
	return combined, nil
}
