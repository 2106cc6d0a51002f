package workflow

import "github.com/Arbazxkr/SwarmX-sub000/observability"

const (
	// Run lifecycle
	EventRunStart     observability.EventType = "workflow.start"
	EventRunComplete  observability.EventType = "workflow.complete"
	EventRunFailed    observability.EventType = "workflow.failed"
	EventRunCancelled observability.EventType = "workflow.cancelled"

	// Step execution
	EventStepStart    observability.EventType = "step.start"
	EventStepComplete observability.EventType = "step.complete"
	EventStepFailed   observability.EventType = "step.failed"
	EventStepSkipped  observability.EventType = "step.skipped"
	EventStepRetry    observability.EventType = "step.retry"
)

// Bus topics for optional lifecycle events. These are observability-only:
// the orchestrator's correctness never depends on anyone receiving them.
const (
	TopicWorkflowStarted   = "workflow.started"
	TopicWorkflowCompleted = "workflow.completed"
	TopicStepCompleted     = "workflow.step.completed"
	TopicStepFailed        = "workflow.step.failed"
)
