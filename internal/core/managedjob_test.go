package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/qbatch/qbatch/internal/domain/model"
)

func submitInput(backend Backend, exps []model.Experiment) SubmitInput {
	return SubmitInput{
		Backend:     backend,
		Experiments: exps,
		Executor:    semaphore.NewWeighted(1),
		SubmitLock:  &sync.Mutex{},
	}
}

func TestManagedJob_SubmitSuccess(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{name: "sim_local"}
	mj := NewManagedJob("batch_0", 0, 2, nil, nil)

	assert.True(t, mj.ContainsIndex(0))
	assert.True(t, mj.ContainsIndex(1))
	assert.False(t, mj.ContainsIndex(2))

	// Before submission finishes the job reports initializing.
	status, err := mj.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusInitializing, status)

	mj.Submit(ctx, submitInput(backend, experiments(2)))
	require.NoError(t, mj.Await(ctx))

	require.NotNil(t, mj.Job())
	require.NoError(t, mj.SubmitError())

	status, err = mj.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, status)

	res, err := mj.Result(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
}

func TestManagedJob_SubmitFailure(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("quota exceeded")
	backend := &fakeBackend{
		name:      "sim_local",
		failNames: map[string]error{"batch_0": cause},
	}
	mj := NewManagedJob("batch_0", 0, 1, nil, nil)
	mj.Submit(ctx, submitInput(backend, experiments(1)))
	require.NoError(t, mj.Await(ctx))

	assert.Nil(t, mj.Job())
	assert.ErrorIs(t, mj.SubmitError(), cause)

	status, err := mj.Status(ctx)
	assert.Equal(t, model.JobStatusError, status)
	assert.ErrorIs(t, err, cause)

	_, err = mj.Result(ctx)
	assert.ErrorIs(t, err, cause)

	// Cancelling a never-submitted job is a no-op.
	assert.NoError(t, mj.Cancel(ctx))
}

func TestManagedJob_AwaitHonorsContext(t *testing.T) {
	mj := NewManagedJob("batch_0", 0, 1, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := mj.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManagedJob_PreattachedJob(t *testing.T) {
	ctx := context.Background()
	job := doneJob("j0", "a")
	mj := NewManagedJob("batch_0", 0, 1, job, nil)

	// No Submit call needed; the handle was supplied up front.
	require.NoError(t, mj.Await(ctx))
	assert.Equal(t, Job(job), mj.Job())

	res, err := mj.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, "j0", res.JobID)
}

func TestManagedJob_Cancel(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{name: "sim_local"}
	mj := NewManagedJob("batch_0", 0, 1, nil, nil)
	mj.Submit(ctx, submitInput(backend, experiments(1)))
	require.NoError(t, mj.Await(ctx))

	require.NoError(t, mj.Cancel(ctx))
	status, err := mj.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCancelled, status)
}
