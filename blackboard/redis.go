package blackboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Arbazxkr/SwarmX-sub000/config"
)

// RedisStore is a Redis-backed Store. Entries are versioned hashes; every
// write publishes an Update notification on a key-scoped channel so other
// processes can watch archived boards change.
type RedisStore struct {
	mu        sync.Mutex
	client    *redis.Client
	options   *redis.Options
	keyPrefix string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewRedisStore creates a RedisStore from the archive configuration.
func NewRedisStore(archiveConfig config.ArchiveConfig, logger *slog.Logger) *RedisStore {
	cfg := config.DefaultArchiveConfig()
	cfg.Merge(&archiveConfig)

	if logger == nil {
		logger = slog.Default()
	}

	opts := &redis.Options{Addr: cfg.Addr}
	return &RedisStore{
		client:    redis.NewClient(opts),
		options:   opts,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
		logger:    logger,
	}
}

// ensureConnection pings the server and reconnects if necessary.
func (s *RedisStore) ensureConnection(ctx context.Context) {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.WarnContext(ctx, "blackboard store reconnecting", slog.String("error", err.Error()))
		s.client = redis.NewClient(s.options)
	}
}

func (s *RedisStore) entryKey(key string) string {
	return s.keyPrefix + key
}

func (s *RedisStore) notifyChannel(key string) string {
	return s.keyPrefix + "update:" + key
}

// Put stores a value with optional TTL and returns the new version. The
// version increment and value write happen in one transaction. A zero ttl
// falls back to the configured retention; zero both ways keeps the entry
// forever.
func (s *RedisStore) Put(ctx context.Context, key string, value any, ttl time.Duration) (int64, error) {
	s.ensureConnection(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		ttl = s.ttl
	}

	data, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("marshal value for %s: %w", key, err)
	}

	entryKey := s.entryKey(key)
	var version int64
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, _ := tx.HGet(ctx, entryKey, "version").Int64()
		version = current + 1

		pipe := tx.TxPipeline()
		pipe.HSet(ctx, entryKey, "value", data, "version", version)
		if ttl > 0 {
			pipe.Expire(ctx, entryKey, ttl)
		}
		_, err := pipe.Exec(ctx)
		return err
	}, entryKey)
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}

	payload, _ := json.Marshal(Update{Key: key, Value: value})
	s.client.Publish(ctx, s.notifyChannel(key), payload)

	return version, nil
}

// Get retrieves a value and its version. A missing key returns (nil, 0, nil).
func (s *RedisStore) Get(ctx context.Context, key string) (any, int64, error) {
	s.ensureConnection(ctx)

	fields, err := s.client.HGetAll(ctx, s.entryKey(key)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("get %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, 0, nil
	}

	var value any
	if err := json.Unmarshal([]byte(fields["value"]), &value); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", key, err)
	}

	version, _ := strconv.ParseInt(fields["version"], 10, 64)
	return value, version, nil
}

// Watch subscribes to update notifications for keys matching a pattern.
// The returned channel closes when the context is cancelled.
func (s *RedisStore) Watch(ctx context.Context, pattern string) (<-chan Update, error) {
	s.ensureConnection(ctx)

	pubsub := s.client.PSubscribe(ctx, s.notifyChannel(pattern))
	updates := make(chan Update)

	go func() {
		defer close(updates)
		defer pubsub.Close()

		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.WarnContext(ctx, "blackboard watch error", slog.String("error", err.Error()))
				time.Sleep(time.Second)
				continue
			}

			var update Update
			if err := json.Unmarshal([]byte(msg.Payload), &update); err == nil {
				select {
				case updates <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return updates, nil
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	s.ensureConnection(ctx)
	return s.client.Del(ctx, s.entryKey(key)).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
