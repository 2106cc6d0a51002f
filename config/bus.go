package config

import (
	"log/slog"
	"time"
)

// BusConfig defines configuration for an event bus instance.
type BusConfig struct {
	// Bus identity
	Name string

	// Queue and history sizing
	QueueSize   int
	HistorySize int

	// DrainInterval is the periodic flush tick for queued events.
	DrainInterval time.Duration

	// Observability
	Logger *slog.Logger
}

// DefaultBusConfig returns a BusConfig with sensible defaults.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		Name:          "default",
		QueueSize:     10000,
		HistorySize:   1000,
		DrainInterval: 100 * time.Millisecond,
		Logger:        slog.Default(),
	}
}

func (c *BusConfig) Merge(source *BusConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.QueueSize > 0 {
		c.QueueSize = source.QueueSize
	}

	if source.HistorySize > 0 {
		c.HistorySize = source.HistorySize
	}

	if source.DrainInterval > 0 {
		c.DrainInterval = source.DrainInterval
	}

	if source.Logger != nil {
		c.Logger = source.Logger
	}
}
