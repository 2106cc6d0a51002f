// Package scheduler gates tasks on declared dependencies and dispatches
// them over the event bus.
//
// A submitted task is published to its target topic as soon as every task
// it depends on has completed. The scheduler learns about outcomes the same
// way everyone else does: it subscribes to the well-known "task.completed"
// and "task.failed" topics. Completion events wake dependent tasks; failure
// events drive bounded retry.
//
// # Task Lifecycle
//
//	pending → (scheduled, when delayed) → running → completed
//	                                             → failed (retry loops back to pending while budget remains)
//	pending/scheduled → cancelled
//
// Transitions only move forward, except the failed→pending retry loop.
//
// The scheduler owns its tasks for their entire lifetime and is the only
// mutator; callers observe outcomes by polling GetStatus/GetTask or by
// subscribing to the outcome topics themselves. Submission never returns an
// execution error.
package scheduler
