package config

import "log/slog"

// SchedulerConfig defines configuration for a task scheduler instance.
type SchedulerConfig struct {
	// Topics the scheduler listens on for task outcomes.
	CompletedTopic string
	FailedTopic    string

	// Observability
	Logger *slog.Logger
}

// DefaultSchedulerConfig returns a SchedulerConfig with the well-known
// outcome topics.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CompletedTopic: "task.completed",
		FailedTopic:    "task.failed",
		Logger:         slog.Default(),
	}
}

func (c *SchedulerConfig) Merge(source *SchedulerConfig) {
	if source.CompletedTopic != "" {
		c.CompletedTopic = source.CompletedTopic
	}

	if source.FailedTopic != "" {
		c.FailedTopic = source.FailedTopic
	}

	if source.Logger != nil {
		c.Logger = source.Logger
	}
}
