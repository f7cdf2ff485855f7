package model

import (
	"fmt"
	"strings"
)

// JobStatus represents the current status of a remote job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusInitializing indicates the job is being set up on the backend.
	JobStatusInitializing JobStatus = "initializing"
	// JobStatusQueued indicates the job is waiting in the backend queue.
	JobStatusQueued JobStatus = "queued"
	// JobStatusRunning indicates the job is currently executing.
	JobStatusRunning JobStatus = "running"
	// JobStatusDone indicates the job completed successfully.
	JobStatusDone JobStatus = "done"
	// JobStatusError indicates the job failed on the backend.
	JobStatusError JobStatus = "error"
	// JobStatusCancelled indicates the job was cancelled before completion.
	JobStatusCancelled JobStatus = "cancelled"
)

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	js := JobStatus(v)
	if js.Valid() {
		*s = js
		return nil
	}
	return fmt.Errorf("invalid JobStatus: %q", v)
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusInitializing, JobStatusQueued, JobStatusRunning,
		JobStatusDone, JobStatusError, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is final; a terminal job will never
// change status again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError || s == JobStatusCancelled
}
