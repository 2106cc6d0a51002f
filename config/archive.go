package config

import "time"

// ArchiveConfig defines configuration for the Redis-backed blackboard
// archive store.
type ArchiveConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `json:"addr"`

	// KeyPrefix namespaces archive entries and update notifications.
	KeyPrefix string `json:"key_prefix"`

	// TTL bounds how long archived blackboards are retained (0 = forever).
	TTL time.Duration `json:"ttl"`
}

// DefaultArchiveConfig returns an ArchiveConfig pointing at a local Redis.
func DefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "blackboard:",
		TTL:       0,
	}
}

func (c *ArchiveConfig) Merge(source *ArchiveConfig) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}

	if source.KeyPrefix != "" {
		c.KeyPrefix = source.KeyPrefix
	}

	if source.TTL > 0 {
		c.TTL = source.TTL
	}
}
