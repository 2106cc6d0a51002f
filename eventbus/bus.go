package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Arbazxkr/SwarmX-sub000/config"
	"github.com/google/uuid"
)

// ErrQueueFull is returned by PublishNowait when the event queue is at
// capacity.
var ErrQueueFull = errors.New("event queue full")

// Handler processes a dispatched event. A returned error is caught, logged,
// and counted; it is never rethrown to the publisher.
type Handler func(ctx context.Context, event Event) error

type subscription struct {
	handler      Handler
	subscriberID string
	pattern      string
	priority     Priority
}

// Bus is the central async event router. Subscription tables, the queue,
// and the history ring are owned by the instance; all methods are safe for
// concurrent use.
type Bus struct {
	name string

	subsMutex sync.RWMutex
	exact     map[string][]*subscription
	wildcards map[string][]*subscription
	globals   []*subscription

	queue chan Event

	historyMutex sync.Mutex
	history      []Event
	historySize  int

	drainInterval time.Duration
	logger        *slog.Logger
	stats         *stats

	lifecycleMutex sync.Mutex
	running        bool
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
}

// New creates a Bus from the given configuration. Zero-valued fields fall
// back to DefaultBusConfig.
func New(busConfig config.BusConfig) *Bus {
	cfg := config.DefaultBusConfig()
	cfg.Merge(&busConfig)

	return &Bus{
		name:          cfg.Name,
		exact:         make(map[string][]*subscription),
		wildcards:     make(map[string][]*subscription),
		queue:         make(chan Event, cfg.QueueSize),
		historySize:   cfg.HistorySize,
		drainInterval: cfg.DrainInterval,
		logger:        cfg.Logger,
		stats:         &stats{},
	}
}

// Subscribe registers a handler for a topic pattern and returns the
// subscriber id (generated when empty). Multiple handlers may share a
// pattern; one subscriber id may own many subscriptions.
func (b *Bus) Subscribe(pattern string, handler Handler, subscriberID string, priority Priority) string {
	if subscriberID == "" {
		subscriberID = uuid.NewString()[:8]
	}

	sub := &subscription{
		handler:      handler,
		subscriberID: subscriberID,
		pattern:      pattern,
		priority:     priority,
	}

	b.subsMutex.Lock()
	switch {
	case pattern == "*":
		b.globals = append(b.globals, sub)
	case strings.HasSuffix(pattern, ".*"):
		b.wildcards[pattern] = append(b.wildcards[pattern], sub)
	default:
		b.exact[pattern] = append(b.exact[pattern], sub)
	}
	b.subsMutex.Unlock()

	b.logger.Debug(
		"subscription added",
		slog.String("bus_name", b.name),
		slog.String("subscriber_id", subscriberID),
		slog.String("pattern", pattern),
	)

	return subscriberID
}

// Unsubscribe removes every subscription owned by the subscriber id across
// all patterns. Returns the number of subscriptions removed.
func (b *Bus) Unsubscribe(subscriberID string) int {
	removed := 0

	b.subsMutex.Lock()
	for topic, subs := range b.exact {
		kept := filterSubscriber(subs, subscriberID)
		removed += len(subs) - len(kept)
		if len(kept) == 0 {
			delete(b.exact, topic)
		} else {
			b.exact[topic] = kept
		}
	}
	for pattern, subs := range b.wildcards {
		kept := filterSubscriber(subs, subscriberID)
		removed += len(subs) - len(kept)
		if len(kept) == 0 {
			delete(b.wildcards, pattern)
		} else {
			b.wildcards[pattern] = kept
		}
	}
	kept := filterSubscriber(b.globals, subscriberID)
	removed += len(b.globals) - len(kept)
	b.globals = kept
	b.subsMutex.Unlock()

	if removed > 0 {
		b.logger.Debug(
			"unsubscribed",
			slog.String("bus_name", b.name),
			slog.String("subscriber_id", subscriberID),
			slog.Int("removed", removed),
		)
	}

	return removed
}

func filterSubscriber(subs []*subscription, subscriberID string) []*subscription {
	kept := make([]*subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.subscriberID != subscriberID {
			kept = append(kept, sub)
		}
	}
	return kept
}

// Publish enqueues an event for async dispatch. It blocks while the queue is
// at capacity until space frees or the context is cancelled.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	select {
	case b.queue <- event:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.stats.RecordPublished(1)
	b.logger.DebugContext(
		ctx,
		"event published",
		slog.String("bus_name", b.name),
		slog.String("event_id", event.ID),
		slog.String("topic", event.Topic),
		slog.String("source", event.Source),
	)
	return nil
}

// PublishNowait enqueues an event without waiting. Returns ErrQueueFull when
// the queue is at capacity.
func (b *Bus) PublishNowait(event Event) error {
	select {
	case b.queue <- event:
	default:
		return ErrQueueFull
	}

	b.stats.RecordPublished(1)
	return nil
}

// Start begins the dispatch loop. Queued events drain as they arrive, with a
// periodic tick as a flush safety net. Start is a no-op on a running bus.
func (b *Bus) Start(ctx context.Context) {
	b.lifecycleMutex.Lock()
	defer b.lifecycleMutex.Unlock()

	if b.running {
		return
	}

	busCtx, cancel := context.WithCancel(ctx)
	b.ctx = busCtx
	b.cancel = cancel
	b.done = make(chan struct{})
	b.running = true

	go b.drainLoop(busCtx)

	b.logger.Info("event bus started", slog.String("bus_name", b.name))
}

// Stop performs one final drain of queued events, then halts the dispatch
// loop. Stop is a no-op on a stopped bus.
func (b *Bus) Stop() {
	b.lifecycleMutex.Lock()
	defer b.lifecycleMutex.Unlock()

	if !b.running {
		return
	}
	b.running = false

	b.drainQueued(b.ctx)
	b.cancel()
	<-b.done

	snapshot := b.stats.Snapshot()
	b.logger.Info(
		"event bus stopped",
		slog.String("bus_name", b.name),
		slog.Int64("published", snapshot.Published),
		slog.Int64("dispatched", snapshot.Dispatched),
		slog.Int64("errors", snapshot.Errors),
	)
}

func (b *Bus) drainLoop(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.queue:
			b.dispatch(ctx, event)
		case <-ticker.C:
			b.drainQueued(ctx)
		}
	}
}

// drainQueued dispatches everything currently queued without blocking for
// new events.
func (b *Bus) drainQueued(ctx context.Context) {
	for {
		select {
		case event := <-b.queue:
			b.dispatch(ctx, event)
		default:
			return
		}
	}
}

// dispatch fans one event out to every matching handler. Handlers run
// concurrently in priority order; the event counts as dispatched once all
// of them have settled.
func (b *Bus) dispatch(ctx context.Context, event Event) {
	b.recordHistory(event)

	subs := b.matchingSubscriptions(event.Topic)
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].priority > subs[j].priority
	})

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(sub *subscription) {
			defer wg.Done()
			b.safeCall(ctx, sub, event)
		}(sub)
	}
	wg.Wait()

	b.stats.RecordDispatched(1)
}

// matchingSubscriptions gathers exact-topic, prefix-wildcard, and global
// subscriptions for a topic. A wildcard pattern never matches its own
// literal topic.
func (b *Bus) matchingSubscriptions(topic string) []*subscription {
	b.subsMutex.RLock()
	defer b.subsMutex.RUnlock()

	subs := make([]*subscription, 0, len(b.globals))
	subs = append(subs, b.exact[topic]...)

	for pattern, wildcardSubs := range b.wildcards {
		prefix := strings.TrimSuffix(pattern, "*")
		if topic != pattern && strings.HasPrefix(topic, prefix) {
			subs = append(subs, wildcardSubs...)
		}
	}

	subs = append(subs, b.globals...)
	return subs
}

func (b *Bus) safeCall(ctx context.Context, sub *subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.stats.RecordError(1)
			b.logger.ErrorContext(
				ctx,
				"handler panic",
				slog.String("bus_name", b.name),
				slog.String("subscriber_id", sub.subscriberID),
				slog.String("topic", event.Topic),
				slog.Any("panic", r),
			)
		}
	}()

	if err := sub.handler(ctx, event); err != nil {
		b.stats.RecordError(1)
		b.logger.ErrorContext(
			ctx,
			"handler error",
			slog.String("bus_name", b.name),
			slog.String("subscriber_id", sub.subscriberID),
			slog.String("topic", event.Topic),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bus) recordHistory(event Event) {
	b.historyMutex.Lock()
	defer b.historyMutex.Unlock()

	b.history = append(b.history, event)
	if len(b.history) > b.historySize {
		b.history = b.history[len(b.history)-b.historySize:]
	}
}

// RecentEvents returns up to limit of the most recently dispatched events,
// oldest first.
func (b *Bus) RecentEvents(limit int) []Event {
	b.historyMutex.Lock()
	defer b.historyMutex.Unlock()

	if limit <= 0 || limit > len(b.history) {
		limit = len(b.history)
	}

	recent := make([]Event, limit)
	copy(recent, b.history[len(b.history)-limit:])
	return recent
}

// Stats returns a snapshot of the published/dispatched/error counters.
func (b *Bus) Stats() StatsSnapshot {
	return b.stats.Snapshot()
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.subsMutex.RLock()
	defer b.subsMutex.RUnlock()

	count := len(b.globals)
	for _, subs := range b.exact {
		count += len(subs)
	}
	for _, subs := range b.wildcards {
		count += len(subs)
	}
	return count
}
