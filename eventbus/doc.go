// Package eventbus provides the central in-memory event routing primitive
// for swarm coordination.
//
// Agents and subsystems never call each other directly. They publish events
// onto the bus and subscribe to topic patterns; the bus fans each event out
// to every matching handler.
//
// # Topic Matching
//
// Topics are dot-segmented strings. Subscription patterns support prefix
// wildcards:
//
//   - "task.created"  → exact match
//   - "task.*"        → any topic under "task." (but not the literal "task.*")
//   - "*"             → every topic (global listener)
//
// # Delivery Semantics
//
// Handlers matching an event are sorted by subscriber priority (highest
// first) and invoked concurrently. The bus waits for every handler to settle
// before counting the event as dispatched. A handler error or panic is
// caught, logged, and counted; it never affects other handlers and never
// propagates to the publisher.
//
// Delivery is at-most-once and best-effort: queued events are lost if the
// process stops between enqueue and drain. Nothing is persisted.
//
// # Lifecycle
//
//	bus := eventbus.New(config.DefaultBusConfig())
//	bus.Subscribe("task.*", handler, "worker-1", eventbus.PriorityNormal)
//	bus.Start(ctx)
//	defer bus.Stop()
//
//	bus.Publish(ctx, eventbus.NewEvent("task.created", "engine", payload))
package eventbus
