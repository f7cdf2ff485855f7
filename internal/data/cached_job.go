package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/qbatch/qbatch/internal/core"
	"github.com/qbatch/qbatch/internal/domain/model"
	"github.com/qbatch/qbatch/internal/observability/metrics"
	"github.com/qbatch/qbatch/internal/observability/statsd"
)

const resultKeyPrefix = "qbatch:result:"

// CachedJob wraps a core.Job and caches its completed result payload. Only
// successful terminal results are cached; failed fetches always go back to
// the backend.
type CachedJob struct {
	inner   core.Job
	backend string
	cache   core.CacheRepository
	ttl     time.Duration
	metrics statsd.Sink
	logger  *slog.Logger
}

// CachedJobConfig holds options for NewCachedJob.
type CachedJobConfig struct {
	Backend string
	Cache   core.CacheRepository
	TTL     time.Duration
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// NewCachedJob wraps job with result caching. When cfg.Cache is nil the job
// is returned unwrapped.
//
//nolint:ireturn // returning core.Job keeps the wrapper transparent to callers.
func NewCachedJob(job core.Job, cfg CachedJobConfig) core.Job {
	if cfg.Cache == nil {
		return job
	}

	var logger *slog.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger.With("component", "cached_job", "job_id", job.ID())
	}

	return &CachedJob{
		inner:   job,
		backend: cfg.Backend,
		cache:   cfg.Cache,
		ttl:     cfg.TTL,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// ID returns the backend-assigned job identifier.
func (j *CachedJob) ID() string { return j.inner.ID() }

// Name returns the client-assigned job name.
func (j *CachedJob) Name() string { return j.inner.Name() }

// Status reports the current job status.
func (j *CachedJob) Status(ctx context.Context) (model.JobStatus, error) {
	return j.inner.Status(ctx)
}

// Cancel requests cancellation of the job.
func (j *CachedJob) Cancel(ctx context.Context) error {
	return j.inner.Cancel(ctx)
}

// Result returns the cached result payload when present, otherwise fetches
// from the wrapped job and stores the payload on success.
func (j *CachedJob) Result(ctx context.Context) (*model.Result, error) {
	start := time.Now()
	key := resultKeyPrefix + j.inner.ID()

	if payload, err := j.cache.Get(ctx, key); err != nil {
		if j.logger != nil {
			j.logger.WarnContext(ctx, "result cache read failed", "error", err)
		}
	} else if payload != nil {
		var res model.Result
		if unmarshalErr := json.Unmarshal(payload, &res); unmarshalErr == nil {
			metrics.EmitResultFetch(j.metrics, metrics.ResultFetchMetric{
				Backend:  j.backend,
				Cached:   true,
				Result:   metrics.ResultSuccess,
				Duration: time.Since(start),
			})
			return &res, nil
		} else if j.logger != nil {
			j.logger.WarnContext(ctx, "discarding undecodable cached result", "error", unmarshalErr)
		}
	}

	res, err := j.inner.Result(ctx)
	if err != nil {
		metrics.EmitResultFetch(j.metrics, metrics.ResultFetchMetric{
			Backend:  j.backend,
			Result:   metrics.ResultError,
			Duration: time.Since(start),
			Err:      err,
		})
		return nil, err
	}

	if res.Success {
		if storeErr := j.store(ctx, key, res); storeErr != nil && j.logger != nil {
			j.logger.WarnContext(ctx, "result cache write failed", "error", storeErr)
		}
	}

	metrics.EmitResultFetch(j.metrics, metrics.ResultFetchMetric{
		Backend:  j.backend,
		Result:   metrics.ResultSuccess,
		Duration: time.Since(start),
	})
	return res, nil
}

func (j *CachedJob) store(ctx context.Context, key string, res *model.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return j.cache.Set(ctx, key, payload, j.ttl)
}
