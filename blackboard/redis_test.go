package blackboard_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/Arbazxkr/SwarmX-sub000/blackboard"
	"github.com/Arbazxkr/SwarmX-sub000/config"
)

func newTestStore(t *testing.T) *blackboard.RedisStore {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(server.Close)

	cfg := config.DefaultArchiveConfig()
	cfg.Addr = server.Addr()
	store := blackboard.NewRedisStore(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStore_PutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	version, err := store.Put(ctx, "run-1", map[string]any{"a": "out-a"}, time.Minute)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if version != 1 {
		t.Errorf("Put() version = %d, want 1", version)
	}

	value, got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != version {
		t.Errorf("Get() version = %d, want %d", got, version)
	}

	entry, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("Get() value type = %T, want map", value)
	}
	if entry["a"] != "out-a" {
		t.Errorf("entry a = %v, want %q", entry["a"], "out-a")
	}
}

func TestRedisStore_PutIncrementsVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "k", "v1", 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	version, err := store.Put(ctx, "k", "v2", 0)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if version != 2 {
		t.Errorf("second Put() version = %d, want 2", version)
	}
}

func TestRedisStore_ConfiguredTTL(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(server.Close)

	cfg := config.DefaultArchiveConfig()
	cfg.Addr = server.Addr()
	cfg.TTL = time.Minute
	store := blackboard.NewRedisStore(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if _, err := store.Put(ctx, "expiring", "v", 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got := server.TTL("blackboard:expiring"); got != time.Minute {
		t.Errorf("TTL = %v, want configured retention %v", got, time.Minute)
	}

	// An explicit ttl wins over the configured retention.
	if _, err := store.Put(ctx, "explicit", "v", time.Hour); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got := server.TTL("blackboard:explicit"); got != time.Hour {
		t.Errorf("TTL = %v, want %v", got, time.Hour)
	}
}

func TestRedisStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	value, version, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != nil || version != 0 {
		t.Errorf("Get(absent) = (%v, %d), want (nil, 0)", value, version)
	}
}

func TestRedisStore_Watch(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := store.Watch(ctx, "run-*")
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if _, err := store.Put(ctx, "run-42", "payload", 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	select {
	case update := <-updates:
		if update.Key != "run-42" {
			t.Errorf("update key = %q, want %q", update.Key, "run-42")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for watch update")
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, "gone", "v", 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	value, version, err := store.Get(ctx, "gone")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != nil || version != 0 {
		t.Errorf("Get() after delete = (%v, %d), want (nil, 0)", value, version)
	}
}
