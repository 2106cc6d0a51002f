package workflow

import (
	"sync"
	"time"

	"github.com/Arbazxkr/SwarmX-sub000/blackboard"
	"github.com/google/uuid"
)

// RunStatus is the terminal-or-running state of a whole workflow run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Run is the live record of one workflow execution. It owns the run's
// blackboard and the per-step result ledger. Once a terminal status is
// set the run is never mutated again.
type Run struct {
	ID           string                `json:"id"`
	WorkflowName string                `json:"workflow_name"`
	Status       RunStatus             `json:"status"`
	Board        *blackboard.Board     `json:"-"`
	Results      map[string]StepResult `json:"results"`
	StartedAt    time.Time             `json:"started_at"`
	CompletedAt  time.Time             `json:"completed_at,omitzero"`
	Error        string                `json:"error,omitempty"`

	mu        sync.RWMutex
	cancelled bool
}

func newRun(workflowName string, initial map[string]any) *Run {
	return &Run{
		ID:           uuid.Must(uuid.NewV7()).String(),
		WorkflowName: workflowName,
		Status:       RunRunning,
		Board:        blackboard.NewBoard(initial),
		Results:      make(map[string]StepResult),
		StartedAt:    time.Now(),
	}
}

// CurrentStatus returns the status, safe to call while the run is live.
func (r *Run) CurrentStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// Result looks up the ledger entry for a step.
func (r *Run) Result(stepID string) (StepResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, exists := r.Results[stepID]
	return result, exists
}

func (r *Run) recordResult(result StepResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results[result.StepID] = result
}

// requestCancel flips a live run to cancelled. In-flight executor calls
// are not interrupted; the run loop stops scheduling new steps.
func (r *Run) requestCancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status != RunRunning {
		return false
	}
	r.Status = RunCancelled
	r.cancelled = true
	return true
}

func (r *Run) isCancelled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cancelled
}

// finish sets the terminal status unless the run was already cancelled,
// and stamps CompletedAt either way.
func (r *Run) finish(status RunStatus, runErr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status == RunRunning {
		r.Status = status
		r.Error = runErr
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = time.Now()
	}
}
