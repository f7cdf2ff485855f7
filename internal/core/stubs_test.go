package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/qbatch/qbatch/internal/domain/model"
)

// fakeJob is an in-memory Job handle with canned outcomes.
type fakeJob struct {
	id   string
	name string

	mu          sync.Mutex
	status      model.JobStatus
	result      *model.Result
	resultErr   error
	cancelErr   error
	cancelled   bool
	resultCalls int
}

func (j *fakeJob) ID() string {
	return j.id
}

func (j *fakeJob) Name() string {
	return j.name
}

func (j *fakeJob) Status(_ context.Context) (model.JobStatus, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, nil
}

func (j *fakeJob) Result(_ context.Context) (*model.Result, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.resultCalls++
	if j.resultErr != nil {
		return nil, j.resultErr
	}
	return j.result, nil
}

func (j *fakeJob) Cancel(_ context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancelErr != nil {
		return j.cancelErr
	}
	j.cancelled = true
	j.status = model.JobStatusCancelled
	return nil
}

// countsResult builds a successful single-kind payload with one counts entry
// per experiment name.
func countsResult(jobID string, names ...string) *model.Result {
	res := &model.Result{
		BackendName: "sim_local",
		JobID:       jobID,
		Success:     true,
	}
	for i, name := range names {
		res.Entries = append(res.Entries, model.ExperimentResult{
			Name:    name,
			Shots:   8,
			Success: true,
			Data: model.ResultData{
				Counts: map[string]int{"0": 8 - i, "1": i},
			},
		})
	}
	return res
}

func doneJob(id string, names ...string) *fakeJob {
	return &fakeJob{
		id:     id,
		name:   id,
		status: model.JobStatusDone,
		result: countsResult(id, names...),
	}
}

// fakeBackend submits experiments to in-memory fakeJobs, producing counts
// payloads derived from the experiment names.
type fakeBackend struct {
	name           string
	maxExperiments int

	mu        sync.Mutex
	nextID    int
	submitted [][]model.Experiment
	failNames map[string]error // job name → forced submit error
}

func (b *fakeBackend) Name() string {
	return b.name
}

func (b *fakeBackend) MaxExperiments() int {
	return b.maxExperiments
}

func (b *fakeBackend) Run(_ context.Context, jobName string, experiments []model.Experiment) (Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.failNames[jobName]; err != nil {
		return nil, err
	}

	b.nextID++
	id := fmt.Sprintf("%s-job-%d", b.name, b.nextID)
	b.submitted = append(b.submitted, experiments)

	names := make([]string, len(experiments))
	for i := range experiments {
		names[i] = experiments[i].Name
	}
	return doneJob(id, names...), nil
}

// stubIndex is a fixed JobSetIndex for exercising ManagedResults directly.
type stubIndex struct {
	jobs    []Job
	entries map[string]stubEntry // experiment name → location
}

type stubEntry struct {
	job    Job
	offset int
}

func (s *stubIndex) JobForRef(ref model.ExperimentRef) (Job, int, bool) {
	if ref.Kind() == model.RefKindIndex {
		i := ref.Index()
		for _, job := range s.jobs {
			fj, ok := job.(*fakeJob)
			if !ok || fj.result == nil {
				continue
			}
			if i < len(fj.result.Entries) {
				return job, i, true
			}
			i -= len(fj.result.Entries)
		}
		return nil, 0, false
	}
	e, ok := s.entries[ref.Name()]
	if !ok {
		return nil, 0, false
	}
	return e.job, e.offset, true
}

func (s *stubIndex) Jobs() []Job {
	return s.jobs
}

// indexOver builds a stubIndex from completed fake jobs.
func indexOver(jobs ...*fakeJob) *stubIndex {
	idx := &stubIndex{entries: map[string]stubEntry{}}
	for _, j := range jobs {
		idx.jobs = append(idx.jobs, j)
		if j.result == nil {
			continue
		}
		for offset, e := range j.result.Entries {
			idx.entries[e.Name] = stubEntry{job: j, offset: offset}
		}
	}
	return idx
}
