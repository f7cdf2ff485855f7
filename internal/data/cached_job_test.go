package data

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbatch/qbatch/internal/domain/model"
)

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}}
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[key], nil
}

func (c *memCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	delete(c.items, key)
	return ok, nil
}

func (c *memCache) Health(_ context.Context) error { return nil }

type countingJob struct {
	id        string
	result    *model.Result
	resultErr error
	calls     int
}

func (j *countingJob) ID() string   { return j.id }
func (j *countingJob) Name() string { return j.id }

func (j *countingJob) Status(_ context.Context) (model.JobStatus, error) {
	return model.JobStatusDone, nil
}

func (j *countingJob) Result(_ context.Context) (*model.Result, error) {
	j.calls++
	if j.resultErr != nil {
		return nil, j.resultErr
	}
	return j.result, nil
}

func (j *countingJob) Cancel(_ context.Context) error { return nil }

func successResult(jobID string) *model.Result {
	return &model.Result{
		BackendName: "sim_local",
		JobID:       jobID,
		Success:     true,
		Entries: []model.ExperimentResult{
			{
				Name:    "bell",
				Shots:   1024,
				Success: true,
				Data:    model.ResultData{Counts: map[string]int{"00": 500, "11": 524}},
			},
		},
	}
}

func TestCachedJob_ResultCachesPayload(t *testing.T) {
	ctx := context.Background()
	inner := &countingJob{id: "job-1", result: successResult("job-1")}
	cache := newMemCache()

	job := NewCachedJob(inner, CachedJobConfig{Backend: "sim_local", Cache: cache, TTL: time.Hour})

	first, err := job.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	second, err := job.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "second fetch served from cache")

	assert.Equal(t, first.JobID, second.JobID)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, map[string]int{"00": 500, "11": 524}, second.Entries[0].Data.Counts)
}

func TestCachedJob_FailedResultNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingJob{id: "job-2", resultErr: errors.New("job ended in error")}
	cache := newMemCache()

	job := NewCachedJob(inner, CachedJobConfig{Backend: "sim_local", Cache: cache, TTL: time.Hour})

	_, err := job.Result(ctx)
	require.Error(t, err)

	_, err = job.Result(ctx)
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls, "errors always go back to the backend")
	assert.Empty(t, cache.items)
}

func TestCachedJob_UnsuccessfulPayloadNotCached(t *testing.T) {
	ctx := context.Background()
	res := successResult("job-3")
	res.Success = false
	inner := &countingJob{id: "job-3", result: res}
	cache := newMemCache()

	job := NewCachedJob(inner, CachedJobConfig{Backend: "sim_local", Cache: cache, TTL: time.Hour})

	_, err := job.Result(ctx)
	require.NoError(t, err)
	assert.Empty(t, cache.items)
}

func TestNewCachedJob_NilCachePassthrough(t *testing.T) {
	inner := &countingJob{id: "job-4", result: successResult("job-4")}
	job := NewCachedJob(inner, CachedJobConfig{})
	assert.Same(t, any(inner), any(job))
}

func TestCachedJob_ForwardsIdentityAndStatus(t *testing.T) {
	ctx := context.Background()
	inner := &countingJob{id: "job-5", result: successResult("job-5")}
	job := NewCachedJob(inner, CachedJobConfig{Cache: newMemCache()})

	assert.Equal(t, "job-5", job.ID())
	assert.Equal(t, "job-5", job.Name())

	status, err := job.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, status)
	assert.NoError(t, job.Cancel(ctx))
}
