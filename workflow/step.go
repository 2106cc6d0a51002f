package workflow

import (
	"time"

	"github.com/Arbazxkr/SwarmX-sub000/blackboard"
)

// StepStatus tracks a step through its lifecycle within a run.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepDone    StepStatus = "done"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// Terminal reports whether the status satisfies downstream dependencies
// or permanently blocks them. Done and Skipped both satisfy; Failed blocks.
func (s StepStatus) Terminal() bool {
	return s == StepDone || s == StepFailed || s == StepSkipped
}

// Step is a declarative unit of work inside a workflow definition. Steps
// are immutable once a run starts; all runtime state lives in StepResult.
type Step struct {
	// ID uniquely names the step within its definition. It doubles as the
	// default blackboard key for the step's output.
	ID string `json:"id"`

	// Agent names the agent the executor should run the input against.
	Agent string `json:"agent"`

	// Input is a template string. {{blackboard.key}} placeholders are
	// resolved against the run's blackboard just before execution.
	Input string `json:"input"`

	// DependsOn lists step IDs that must be done or skipped before this
	// step becomes ready.
	DependsOn []string `json:"depends_on,omitempty"`

	// Condition, when set, is evaluated against the blackboard once the
	// step is ready. A false result skips the step without executing it.
	// Skipped steps still satisfy their dependents.
	Condition func(board *blackboard.Board) bool `json:"-"`

	// OutputKey overrides the blackboard key the output is written under.
	// Empty means the step's own ID.
	OutputKey string `json:"output_key,omitempty"`

	// Retries is the number of re-attempts after the first failure.
	Retries int `json:"retries,omitempty"`

	// Timeout bounds one execution attempt. Zero means the orchestrator
	// default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// OutputSchema, when set, requires the output to be a JSON object
	// carrying each listed key with the declared primitive type
	// (string, number, boolean, array). Violations count as step failures
	// and consume retry attempts.
	OutputSchema map[string]string `json:"output_schema,omitempty"`
}

// ParallelGroup names a set of step IDs that execute concurrently when
// simultaneously ready, instead of one at a time.
type ParallelGroup struct {
	Name     string   `json:"name"`
	Parallel []string `json:"parallel"`
}

// Definition is a complete workflow: a DAG of steps plus scheduling hints.
type Definition struct {
	Name           string          `json:"name"`
	Steps          []Step          `json:"steps"`
	ParallelGroups []ParallelGroup `json:"parallel_groups,omitempty"`

	// Timeout bounds the whole run. Zero means the orchestrator default.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// parallelMembers returns the set of step IDs claimed by any parallel group.
func (d *Definition) parallelMembers() map[string]bool {
	members := make(map[string]bool)
	for _, group := range d.ParallelGroups {
		for _, id := range group.Parallel {
			members[id] = true
		}
	}
	return members
}

// StepResult is the runtime ledger entry for one executed (or skipped) step.
type StepResult struct {
	StepID      string        `json:"step_id"`
	Agent       string        `json:"agent"`
	Status      StepStatus    `json:"status"`
	Output      string        `json:"output,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at,omitzero"`
	Duration    time.Duration `json:"duration"`
	RetryCount  int           `json:"retry_count"`
	Error       string        `json:"error,omitempty"`
}
