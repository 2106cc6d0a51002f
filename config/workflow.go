package config

import "time"

// WorkflowConfig defines configuration for the workflow orchestrator.
//
// The configuration follows the same pattern as the other orchestration
// configs: used only during construction, then transformed into domain
// objects. The Observer field is a string to enable JSON configuration
// with observer resolution at runtime.
//
// Example JSON:
//
//	{
//	  "run_timeout": 300000000000,
//	  "step_timeout": 120000000000,
//	  "observer": "slog"
//	}
type WorkflowConfig struct {
	// RunTimeout bounds a whole run. Exceeding it fails the run.
	RunTimeout time.Duration `json:"run_timeout"`

	// StepTimeout bounds a single step execution when the step declares
	// no timeout of its own.
	StepTimeout time.Duration `json:"step_timeout"`

	// RetryBackoff is the linear backoff unit between step retry attempts
	// (attempt N waits N * RetryBackoff).
	RetryBackoff time.Duration `json:"retry_backoff"`

	// Observer specifies which observer implementation to use ("noop", "slog", etc.)
	Observer string `json:"observer"`
}

// DefaultWorkflowConfig returns sensible defaults for workflow execution:
// 300s run deadline, 120s step deadline, 1s linear retry backoff.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		RunTimeout:   300 * time.Second,
		StepTimeout:  120 * time.Second,
		RetryBackoff: time.Second,
		Observer:     "slog",
	}
}

func (c *WorkflowConfig) Merge(source *WorkflowConfig) {
	if source.RunTimeout > 0 {
		c.RunTimeout = source.RunTimeout
	}

	if source.StepTimeout > 0 {
		c.StepTimeout = source.StepTimeout
	}

	if source.RetryBackoff > 0 {
		c.RetryBackoff = source.RetryBackoff
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}
