// Package metrics provides helpers for emitting qbatch job-set metrics
// through a StatsD sink.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/qbatch/qbatch/internal/observability/errors"
	"github.com/qbatch/qbatch/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultPartial = "partial"
)

// SubmissionMetric captures details about a job-set submission for metric
// emission.
type SubmissionMetric struct {
	Backend     string
	Jobs        int
	Experiments int
	Result      string
	Duration    time.Duration
	Err         error
}

// EmitSubmission emits standardised job-set submission metrics.
func EmitSubmission(sink statsd.Sink, in SubmissionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"backend": in.Backend,
		"result":  in.Result,
	}
	if in.Err != nil && in.Result != ResultSuccess {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("jobset.submitted", 1, tags)
	sink.Count("jobset.jobs", int64(in.Jobs), CloneTags(tags))
	sink.Count("jobset.experiments", int64(in.Experiments), CloneTags(tags))

	if in.Duration > 0 {
		sink.Timing("jobset.submit_duration", in.Duration, CloneTags(tags))
	}
}

// ResultFetchMetric captures details about one job result retrieval.
type ResultFetchMetric struct {
	Backend  string
	Cached   bool
	Result   string
	Duration time.Duration
	Err      error
}

// EmitResultFetch emits metrics for a job result retrieval.
func EmitResultFetch(sink statsd.Sink, in ResultFetchMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"backend": in.Backend,
		"result":  in.Result,
		"cached":  strconv.FormatBool(in.Cached),
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("job.result_fetch", 1, tags)
	if in.Duration > 0 {
		sink.Timing("job.result_fetch_duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty maps.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
