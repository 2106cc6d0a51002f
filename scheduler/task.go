package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/Arbazxkr/SwarmX-sub000/eventbus"
)

// TaskStatus is a task lifecycle state.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskScheduled TaskStatus = "scheduled"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Task is a unit of work dispatched to agents via the event bus. The
// scheduler owns every submitted task and is the sole mutator of its
// runtime fields.
type Task struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	TargetTopic string         `json:"target_topic"`
	Payload     map[string]any `json:"payload,omitempty"`

	Priority  eventbus.Priority `json:"priority"`
	Status    TaskStatus        `json:"status"`
	DependsOn []string          `json:"depends_on,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	CompletedAt time.Time `json:"completed_at,omitzero"`

	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`

	// Delay postpones the first dispatch after dependencies clear.
	Delay time.Duration `json:"delay,omitempty"`

	// MaxRetries bounds automatic re-dispatch after failure events.
	MaxRetries int `json:"max_retries,omitempty"`
	RetryCount int `json:"retry_count,omitempty"`
}

// NewTask creates a pending Task with a generated id and the default
// "task.created" target topic.
func NewTask(name, description string) *Task {
	return &Task{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Name:        name,
		Description: description,
		TargetTopic: "task.created",
		Priority:    eventbus.PriorityNormal,
		Status:      TaskPending,
		CreatedAt:   time.Now(),
	}
}
