package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/qbatch/qbatch/internal/domain/model"
)

// ManagedJobSet is an ordered collection of jobs that together carry one
// logical batch of experiments, partitioned because the backend caps
// experiments per job. It owns the experiment-to-job index.
type ManagedJobSet struct {
	id          string
	name        string
	backendName string
	tags        []string

	mu          sync.Mutex
	experiments []model.Experiment
	jobs        []*ManagedJob
	submitLock  sync.Mutex

	logger *slog.Logger
}

// JobSetOptions configures a new ManagedJobSet.
type JobSetOptions struct {
	// Name labels the set and prefixes job names. Defaults to the set ID.
	Name string
	// Tags are free-form labels persisted with the set.
	Tags []string
	// Logger is optional.
	Logger *slog.Logger
}

// NewManagedJobSet creates an empty job set ready to Run.
func NewManagedJobSet(opts JobSetOptions) *ManagedJobSet {
	id := uuid.NewString()
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = id
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_set", "job_set_id", id)
	}

	return &ManagedJobSet{
		id:     id,
		name:   name,
		tags:   opts.Tags,
		logger: logger,
	}
}

// RebuildManagedJobSet reconstructs a job set from a persisted record and
// re-attached job handles, one per record position. A nil handle marks a job
// whose submission had failed or that could not be retrieved.
func RebuildManagedJobSet(rec *model.JobSetRecord, jobs []Job, logger *slog.Logger) (*ManagedJobSet, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job set record: %w", err)
	}
	if len(jobs) != len(rec.Jobs) {
		return nil, fmt.Errorf("got %d job handles for %d recorded jobs", len(jobs), len(rec.Jobs))
	}

	if logger != nil {
		logger = logger.With("component", "job_set", "job_set_id", rec.ID)
	}

	set := &ManagedJobSet{
		id:          rec.ID,
		name:        rec.Name,
		backendName: rec.BackendName,
		tags:        rec.Tags,
		logger:      logger,
	}
	for i := range rec.Jobs {
		jr := &rec.Jobs[i]
		mj := NewManagedJob(jr.Name, jr.StartIndex, jr.ExperimentCount, jobs[i], logger)
		if jobs[i] == nil {
			cause := jr.SubmitError
			if cause == "" {
				cause = "job handle unavailable"
			}
			mj.setOutcome(nil, errors.New(cause))
			close(mj.done)
		}
		set.jobs = append(set.jobs, mj)
	}
	return set, nil
}

// RunInput groups the parameters for submitting a batch.
type RunInput struct {
	Backend     Backend
	Experiments []model.Experiment
	// MaxExperimentsPerJob overrides the backend cap when positive.
	MaxExperimentsPerJob int
	// SubmitConcurrency caps in-flight submissions. Defaults to 1.
	SubmitConcurrency int64
}

// Run splits the experiments into jobs and submits them asynchronously.
// It returns once every submission has been started; use Results, Statuses,
// or AwaitAll to observe outcomes. A job set can only be run once.
func (s *ManagedJobSet) Run(ctx context.Context, in RunInput) error {
	if in.Backend == nil {
		return errors.New("backend is required")
	}
	if len(in.Experiments) == 0 {
		return errors.New("at least one experiment is required")
	}
	for i := range in.Experiments {
		if err := in.Experiments[i].Validate(); err != nil {
			return fmt.Errorf("experiment %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.jobs != nil {
		return errors.New("job set has already been run")
	}

	maxPerJob := in.MaxExperimentsPerJob
	if maxPerJob <= 0 {
		maxPerJob = in.Backend.MaxExperiments()
	}
	if maxPerJob <= 0 {
		maxPerJob = len(in.Experiments)
	}

	concurrency := in.SubmitConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	executor := semaphore.NewWeighted(concurrency)

	s.backendName = in.Backend.Name()
	s.experiments = in.Experiments

	for start, position := 0, 0; start < len(in.Experiments); start, position = start+maxPerJob, position+1 {
		end := min(start+maxPerJob, len(in.Experiments))
		chunk := in.Experiments[start:end]

		jobName := fmt.Sprintf("%s_%d", s.name, position)
		mj := NewManagedJob(jobName, start, len(chunk), nil, s.logger)
		mj.Submit(ctx, SubmitInput{
			Backend:     in.Backend,
			Experiments: chunk,
			Executor:    executor,
			SubmitLock:  &s.submitLock,
		})
		s.jobs = append(s.jobs, mj)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job set submitted",
			"backend", s.backendName,
			"experiments", len(in.Experiments),
			"jobs", len(s.jobs),
		)
	}
	return nil
}

// ID returns the job set identifier.
func (s *ManagedJobSet) ID() string {
	return s.id
}

// Name returns the job set name.
func (s *ManagedJobSet) Name() string {
	return s.name
}

// BackendName returns the name of the backend the set was run on.
func (s *ManagedJobSet) BackendName() string {
	return s.backendName
}

// Tags returns the job set tags.
func (s *ManagedJobSet) Tags() []string {
	return s.tags
}

// ManagedJobs returns the managed jobs in submission order.
func (s *ManagedJobSet) ManagedJobs() []*ManagedJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ManagedJob(nil), s.jobs...)
}

// Jobs returns the backend job handles in submission order. A nil entry
// marks a job whose submission failed or has not finished.
func (s *ManagedJobSet) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, len(s.jobs))
	for i, mj := range s.jobs {
		out[i] = mj.Job()
	}
	return out
}

// JobForRef resolves an experiment reference to its job handle and the
// experiment's offset within that job. The returned handle is nil when the
// submission of the containing job failed. found is false when the reference
// does not resolve to any position in the batch.
func (s *ManagedJobSet) JobForRef(ref model.ExperimentRef) (job Job, offset int, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	switch ref.Kind() {
	case model.RefKindIndex:
		index = ref.Index()
	case model.RefKindName, model.RefKindExperiment:
		for i := range s.experiments {
			if s.experiments[i].Name == ref.Name() {
				index = i
				break
			}
		}
	}
	if index < 0 {
		return nil, 0, false
	}

	for _, mj := range s.jobs {
		if mj.ContainsIndex(index) {
			return mj.Job(), index - mj.StartIndex(), true
		}
	}
	return nil, 0, false
}

// AwaitAll blocks until every submission attempt has an outcome.
func (s *ManagedJobSet) AwaitAll(ctx context.Context) error {
	for _, mj := range s.ManagedJobs() {
		if err := mj.Await(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Statuses reports the status of every job in submission order.
func (s *ManagedJobSet) Statuses(ctx context.Context) []model.JobStatus {
	jobs := s.ManagedJobs()
	out := make([]model.JobStatus, len(jobs))
	for i, mj := range jobs {
		status, err := mj.Status(ctx)
		if err != nil {
			status = model.JobStatusError
		}
		out[i] = status
	}
	return out
}

// ErrorMessages builds a human-readable report of failed jobs. It returns
// the empty string when no job has failed.
func (s *ManagedJobSet) ErrorMessages(ctx context.Context) string {
	var b strings.Builder
	for _, mj := range s.ManagedJobs() {
		status, err := mj.Status(ctx)
		switch {
		case err != nil:
			fmt.Fprintf(&b, "Job %s failed: %v\n", mj.Name(), err)
		case status == model.JobStatusError:
			fmt.Fprintf(&b, "Job %s ended in error.\n", mj.Name())
		case status == model.JobStatusCancelled:
			fmt.Fprintf(&b, "Job %s was cancelled.\n", mj.Name())
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Cancel requests cancellation of every job in the set. Individual
// cancellation failures are joined into one error.
func (s *ManagedJobSet) Cancel(ctx context.Context) error {
	var errs []error
	for _, mj := range s.ManagedJobs() {
		if err := mj.Cancel(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Results waits for every job to reach a terminal state and returns the
// managed result view for the set. The view's success flag is true only if
// every job was submitted and produced a successful result.
func (s *ManagedJobSet) Results(ctx context.Context) (*ManagedResults, error) {
	success := true
	for _, mj := range s.ManagedJobs() {
		res, err := mj.Result(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			success = false
			continue
		}
		if !res.Success {
			success = false
		}
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "job set results collected", "success", success)
	}
	return NewManagedResults(s, s.backendName, success), nil
}

// Record captures the set's metadata for persistence.
func (s *ManagedJobSet) Record() *model.JobSetRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := &model.JobSetRecord{
		ID:          s.id,
		Name:        s.name,
		BackendName: s.backendName,
		Tags:        append([]string(nil), s.tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, mj := range s.jobs {
		jr := model.JobRecord{
			Name:            mj.Name(),
			Position:        i,
			StartIndex:      mj.StartIndex(),
			ExperimentCount: mj.ExperimentCount(),
		}
		if job := mj.Job(); job != nil {
			jr.JobID = job.ID()
		}
		if err := mj.SubmitError(); err != nil {
			jr.SubmitError = err.Error()
		}
		rec.Jobs = append(rec.Jobs, jr)
	}
	return rec
}
