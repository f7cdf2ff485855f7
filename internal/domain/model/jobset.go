package model

import (
	"errors"
	"time"
)

// JobRecord is the persisted metadata for one job within a job set.
type JobRecord struct {
	JobID           string `json:"job_id"           db:"job_id"`
	Name            string `json:"name"             db:"name"`
	Position        int    `json:"position"         db:"position"`
	StartIndex      int    `json:"start_index"      db:"start_index"`
	ExperimentCount int    `json:"experiment_count" db:"experiment_count"`
	SubmitError     string `json:"submit_error,omitempty" db:"submit_error"`
}

// JobSetRecord is the persisted metadata for a job set: enough to rebuild
// the experiment-to-job index and re-attach to the remote jobs later.
type JobSetRecord struct {
	ID          string      `json:"id"           db:"id"`
	Name        string      `json:"name"         db:"name"`
	BackendName string      `json:"backend_name" db:"backend_name"`
	Tags        []string    `json:"tags,omitempty" db:"tags"`
	Jobs        []JobRecord `json:"jobs"`
	CreatedAt   time.Time   `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"   db:"updated_at"`
}

// Validate validates the JobSetRecord fields.
func (r *JobSetRecord) Validate() error {
	if r.ID == "" {
		return errors.New("job set id is required")
	}
	if r.BackendName == "" {
		return errors.New("backend name is required")
	}
	for i := range r.Jobs {
		j := &r.Jobs[i]
		if j.Position != i {
			return errors.New("job positions must be contiguous from zero")
		}
		if j.ExperimentCount <= 0 {
			return errors.New("job experiment count must be positive")
		}
	}
	return nil
}
