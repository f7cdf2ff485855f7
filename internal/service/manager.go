// Package service provides the orchestration layer for qbatch: splitting a
// batch of experiments into jobs, submitting them, and persisting job-set
// metadata for later retrieval.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qbatch/qbatch/internal/core"
	"github.com/qbatch/qbatch/internal/domain/model"
	"github.com/qbatch/qbatch/internal/observability/metrics"
	"github.com/qbatch/qbatch/internal/observability/statsd"
)

// JobManagerOptions groups dependencies for JobManager.
type JobManagerOptions struct {
	Backend core.Backend          // Required: backend to run experiments on
	Repo    core.JobSetRepository // Optional: persist job-set metadata
	Logger  *slog.Logger          // Optional: structured logger
	Metrics statsd.Sink           // Optional: metric sink

	// MaxExperimentsPerJob overrides the backend's per-job cap when positive.
	MaxExperimentsPerJob int
	// SubmitConcurrency caps in-flight submissions per job set. Defaults to 1.
	SubmitConcurrency int64
}

// JobManager orchestrates batched experiment runs across job sets.
//
// The manager splits each batch at the backend's experiment cap, submits the
// resulting jobs asynchronously, and records job-set metadata through the
// repository so a set can be reported on or re-attached later.
type JobManager struct {
	backend core.Backend
	repo    core.JobSetRepository
	logger  *slog.Logger
	metrics statsd.Sink

	maxPerJob   int
	concurrency int64
}

// NewJobManager constructs a new JobManager.
func NewJobManager(opts JobManagerOptions) (*JobManager, error) {
	if opts.Backend == nil {
		return nil, errors.New("Backend is required")
	}

	concurrency := opts.SubmitConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_manager")
	}

	return &JobManager{
		backend:     opts.Backend,
		repo:        opts.Repo,
		logger:      logger,
		metrics:     opts.Metrics,
		maxPerJob:   opts.MaxExperimentsPerJob,
		concurrency: concurrency,
	}, nil
}

// MustNewJobManager constructs a new JobManager and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobManager(opts JobManagerOptions) *JobManager {
	m, err := NewJobManager(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobManager: %v", err))
	}
	return m
}

// RunOptions configures one batch submission.
type RunOptions struct {
	// Name labels the job set. Defaults to the generated set ID.
	Name string
	// Tags are free-form labels persisted with the set.
	Tags []string
	// MaxExperimentsPerJob overrides the manager's cap for this run.
	MaxExperimentsPerJob int
}

// Run splits the experiments into jobs and submits them. It returns as soon
// as every submission has been started; observe outcomes through the
// returned set. When a repository is configured, the set's metadata is
// persisted in the background once all submissions settle.
func (m *JobManager) Run(ctx context.Context, exps []model.Experiment, opts RunOptions) (*core.ManagedJobSet, error) {
	start := time.Now()

	maxPerJob := opts.MaxExperimentsPerJob
	if maxPerJob <= 0 {
		maxPerJob = m.maxPerJob
	}

	set := core.NewManagedJobSet(core.JobSetOptions{
		Name:   opts.Name,
		Tags:   opts.Tags,
		Logger: m.logger,
	})
	if err := set.Run(ctx, core.RunInput{
		Backend:              m.backend,
		Experiments:          exps,
		MaxExperimentsPerJob: maxPerJob,
		SubmitConcurrency:    m.concurrency,
	}); err != nil {
		metrics.EmitSubmission(m.metrics, metrics.SubmissionMetric{
			Backend:     m.backend.Name(),
			Experiments: len(exps),
			Result:      metrics.ResultError,
			Duration:    time.Since(start),
			Err:         err,
		})
		return nil, fmt.Errorf("run job set: %w", err)
	}

	if m.logger != nil {
		m.logger.InfoContext(ctx, "job set started",
			"job_set_id", set.ID(),
			"name", set.Name(),
			"experiments", len(exps),
			"jobs", len(set.ManagedJobs()),
		)
	}

	// Persist metadata once the submission outcomes are known. Detached from
	// the caller's context so a caller timeout does not lose the record.
	go m.persistWhenSettled(context.WithoutCancel(ctx), set, len(exps), start)

	return set, nil
}

func (m *JobManager) persistWhenSettled(ctx context.Context, set *core.ManagedJobSet, expCount int, start time.Time) {
	if err := set.AwaitAll(ctx); err != nil {
		return
	}

	rec := set.Record()
	result := metrics.ResultSuccess
	for i := range rec.Jobs {
		if rec.Jobs[i].SubmitError != "" {
			result = metrics.ResultPartial
			break
		}
	}
	metrics.EmitSubmission(m.metrics, metrics.SubmissionMetric{
		Backend:     set.BackendName(),
		Jobs:        len(rec.Jobs),
		Experiments: expCount,
		Result:      result,
		Duration:    time.Since(start),
	})

	if m.repo == nil {
		return
	}
	if err := m.repo.Save(ctx, rec); err != nil {
		if m.logger != nil {
			m.logger.ErrorContext(ctx, "failed to persist job set record",
				"job_set_id", rec.ID, "error", err)
		}
		return
	}
	if m.logger != nil {
		m.logger.DebugContext(ctx, "job set record persisted", "job_set_id", rec.ID)
	}
}

// Retrieve rebuilds a previously run job set from its persisted record,
// re-attaching to the remote jobs when the backend supports retrieval.
func (m *JobManager) Retrieve(ctx context.Context, id string) (*core.ManagedJobSet, error) {
	if m.repo == nil {
		return nil, errors.New("job set repository is not configured")
	}

	rec, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job set %s: %w", id, err)
	}

	jobs := make([]core.Job, len(rec.Jobs))
	retriever, canRetrieve := m.backend.(core.JobRetriever)
	for i := range rec.Jobs {
		jr := &rec.Jobs[i]
		if jr.JobID == "" || !canRetrieve {
			continue
		}
		job, err := retriever.RetrieveJob(ctx, jr.JobID)
		if err != nil {
			if m.logger != nil {
				m.logger.WarnContext(ctx, "failed to retrieve job",
					"job_set_id", rec.ID, "job_id", jr.JobID, "error", err)
			}
			continue
		}
		jobs[i] = job
	}

	return core.RebuildManagedJobSet(rec, jobs, m.logger)
}

// JobSets lists persisted job-set records, newest first.
func (m *JobManager) JobSets(ctx context.Context, limit, offset int) ([]*model.JobSetRecord, error) {
	if m.repo == nil {
		return nil, errors.New("job set repository is not configured")
	}
	recs, err := m.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list job sets: %w", err)
	}
	return recs, nil
}

// Report builds a human-readable status report for a job set, in the spirit
// of a CLI progress summary: per-status counts followed by failure details.
func (m *JobManager) Report(ctx context.Context, set *core.ManagedJobSet) string {
	statuses := set.Statuses(ctx)

	counts := map[model.JobStatus]int{}
	for _, s := range statuses {
		counts[s]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Job set %s (%s):\n", set.Name(), set.ID())
	fmt.Fprintf(&b, "  total jobs: %d\n", len(statuses))
	for _, s := range []model.JobStatus{
		model.JobStatusInitializing,
		model.JobStatusQueued,
		model.JobStatusRunning,
		model.JobStatusDone,
		model.JobStatusError,
		model.JobStatusCancelled,
	} {
		if counts[s] > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", s, counts[s])
		}
	}
	if report := set.ErrorMessages(ctx); report != "" {
		b.WriteString(report)
		b.WriteString("\n")
	}
	return b.String()
}
