package config

// ManagerConfig controls how experiment batches are split and submitted.
type ManagerConfig struct {
	// MaxExperimentsPerJob caps experiments per job. Zero defers to the
	// backend's advertised limit.
	MaxExperimentsPerJob int `env:"MAX_EXPERIMENTS_PER_JOB" envDefault:"0"`

	// SubmitConcurrency caps in-flight job submissions per job set.
	SubmitConcurrency int64 `env:"SUBMIT_CONCURRENCY" envDefault:"1"`
}

// Sanitize applies guardrails to manager configuration values.
func (c *ManagerConfig) Sanitize() {
	if c.MaxExperimentsPerJob < 0 {
		c.MaxExperimentsPerJob = 0
	}
	if c.SubmitConcurrency <= 0 {
		c.SubmitConcurrency = 1
	}
}
