package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Arbazxkr/SwarmX-sub000/blackboard"
	"github.com/Arbazxkr/SwarmX-sub000/config"
	"github.com/Arbazxkr/SwarmX-sub000/eventbus"
	"github.com/Arbazxkr/SwarmX-sub000/observability"
)

// Executor runs an agent against a resolved input and returns its text
// output. Supplied by the caller; any error it returns is treated as a
// retryable step failure.
type Executor func(ctx context.Context, agent, input string) (string, error)

// Orchestrator executes workflow definitions: DAGs of steps with parallel
// groups, conditional skipping, per-step retry and timeout, and a global
// run deadline. Each run owns a blackboard and a step-result ledger.
//
// The orchestrator drives the executor directly and does not depend on an
// event bus; when one is attached, lifecycle events are published on it
// for observers.
type Orchestrator struct {
	config   config.WorkflowConfig
	executor Executor
	observer observability.Observer
	bus      *eventbus.Bus
	archive  blackboard.Store

	mu   sync.RWMutex
	runs map[string]*Run
}

// New creates an Orchestrator, resolving the observer named in the config
// from the observability registry.
func New(workflowConfig config.WorkflowConfig, executor Executor) (*Orchestrator, error) {
	merged := config.DefaultWorkflowConfig()
	merged.Merge(&workflowConfig)

	observer, err := observability.GetObserver(merged.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	return NewWithDeps(merged, executor, observer, nil, nil), nil
}

// NewWithDeps creates an Orchestrator with explicit collaborators. The bus
// and archive may be nil; when set, lifecycle events are published on the
// bus and final blackboards are persisted to the archive.
func NewWithDeps(
	workflowConfig config.WorkflowConfig,
	executor Executor,
	observer observability.Observer,
	bus *eventbus.Bus,
	archive blackboard.Store,
) *Orchestrator {
	merged := config.DefaultWorkflowConfig()
	merged.Merge(&workflowConfig)

	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return &Orchestrator{
		config:   merged,
		executor: executor,
		observer: observer,
		bus:      bus,
		archive:  archive,
		runs:     make(map[string]*Run),
	}
}

// AddObserver fans lifecycle events out to an additional observer alongside
// the current one. Call before starting runs; the observer set is not
// guarded against concurrent mutation.
func (o *Orchestrator) AddObserver(observer observability.Observer) {
	if observer == nil {
		return
	}
	o.observer = observability.NewMultiObserver(o.observer, observer)
}

// Run executes a definition to completion and returns the finished run.
// It never returns an error: structural failures (deadlock, timeout) and
// step failures are encoded in the run's status and error fields, so
// callers have a uniform success-path API.
//
// The blackboard is seeded from initial. Readiness is recomputed after
// every iteration: a step is ready when pending and all of its
// dependencies are done or skipped. Ready steps belonging to a parallel
// group execute concurrently with an all-complete join; the rest execute
// one at a time in definition order, halting the iteration on a failure.
func (o *Orchestrator) Run(ctx context.Context, definition Definition, initial map[string]any) *Run {
	run := newRun(definition.Name, initial)

	o.mu.Lock()
	o.runs[run.ID] = run
	o.mu.Unlock()

	runTimeout := definition.Timeout
	if runTimeout <= 0 {
		runTimeout = o.config.RunTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	o.emit(ctx, EventRunStart, observability.LevelInfo, map[string]any{
		"run_id":     run.ID,
		"workflow":   definition.Name,
		"step_count": len(definition.Steps),
		"timeout":    runTimeout.String(),
	})
	o.publish(TopicWorkflowStarted, map[string]any{
		"run_id":   run.ID,
		"workflow": definition.Name,
	})

	o.executeRun(runCtx, run, &definition)
	o.finishRun(ctx, run)
	return run
}

// executeRun drives the readiness loop until every step is terminal or
// the run fails structurally.
func (o *Orchestrator) executeRun(runCtx context.Context, run *Run, definition *Definition) {
	statuses := make(map[string]StepStatus, len(definition.Steps))
	for i := range definition.Steps {
		statuses[definition.Steps[i].ID] = StepPending
	}
	inParallelGroup := definition.parallelMembers()

	// Written concurrently by parallel-batch goroutines.
	var statusMu sync.Mutex

	for {
		if run.isCancelled() {
			run.finish(RunCancelled, "")
			return
		}
		if runCtx.Err() != nil {
			run.finish(RunFailed, fmt.Sprintf("workflow timed out after exceeding run deadline: %v", runCtx.Err()))
			return
		}

		ready, allTerminal := readySteps(definition, statuses)
		if allTerminal {
			o.settle(run, definition, statuses)
			return
		}

		// Conditional steps are decided before anything executes so a
		// skip can unlock further readiness in the same pass.
		skippedAny := false
		remaining := ready[:0]
		for _, step := range ready {
			if step.Condition != nil && !step.Condition(run.Board) {
				statuses[step.ID] = StepSkipped
				run.recordResult(StepResult{
					StepID:      step.ID,
					Agent:       step.Agent,
					Status:      StepSkipped,
					StartedAt:   time.Now(),
					CompletedAt: time.Now(),
				})
				o.emit(runCtx, EventStepSkipped, observability.LevelVerbose, map[string]any{
					"run_id":  run.ID,
					"step_id": step.ID,
				})
				skippedAny = true
				continue
			}
			remaining = append(remaining, step)
		}
		if skippedAny {
			continue
		}

		if len(remaining) == 0 {
			// A failed step with pending dependents is a step failure, not
			// a deadlock: the dependents are short-circuited and the run
			// reports the step's own error.
			for _, status := range statuses {
				if status == StepFailed {
					o.settle(run, definition, statuses)
					return
				}
			}
			run.finish(RunFailed, "workflow deadlocked: no step is ready and none is running")
			return
		}

		var batch, sequential []*Step
		for _, step := range remaining {
			if inParallelGroup[step.ID] {
				batch = append(batch, step)
			} else {
				sequential = append(sequential, step)
			}
		}

		// All-complete join: every branch settles before the next scan,
		// and one branch failing never cancels its siblings. The whole
		// batch is marked running before any goroutine starts so every
		// statuses write during the join goes through statusMu.
		for _, step := range batch {
			statuses[step.ID] = StepRunning
		}
		var wg sync.WaitGroup
		for _, step := range batch {
			wg.Add(1)
			go func(step *Step) {
				defer wg.Done()
				result := o.executeStep(runCtx, run, step)
				statusMu.Lock()
				statuses[step.ID] = result.Status
				statusMu.Unlock()
			}(step)
		}
		wg.Wait()

		for _, step := range sequential {
			if run.isCancelled() || runCtx.Err() != nil {
				break
			}
			statuses[step.ID] = StepRunning
			result := o.executeStep(runCtx, run, step)
			statuses[step.ID] = result.Status
			if result.Status == StepFailed {
				break
			}
		}
	}
}

// readySteps returns pending steps whose dependencies are all satisfied,
// in definition order, plus whether every step is already terminal.
func readySteps(definition *Definition, statuses map[string]StepStatus) ([]*Step, bool) {
	var ready []*Step
	allTerminal := true
	for i := range definition.Steps {
		step := &definition.Steps[i]
		status := statuses[step.ID]
		if !status.Terminal() {
			allTerminal = false
		}
		if status != StepPending {
			continue
		}
		satisfied := true
		for _, depID := range step.DependsOn {
			if dep := statuses[depID]; dep != StepDone && dep != StepSkipped {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, step)
		}
	}
	return ready, allTerminal
}

// settle computes the terminal run status once every step is terminal.
func (o *Orchestrator) settle(run *Run, definition *Definition, statuses map[string]StepStatus) {
	for i := range definition.Steps {
		step := &definition.Steps[i]
		if statuses[step.ID] != StepFailed {
			continue
		}
		runErr := fmt.Sprintf("step %q failed", step.ID)
		if result, exists := run.Result(step.ID); exists && result.Error != "" {
			runErr = result.Error
		}
		run.finish(RunFailed, runErr)
		return
	}
	run.finish(RunCompleted, "")
}

// executeStep resolves the step's input, races the executor against the
// step timeout, validates any declared output schema, and retries with
// linear backoff. The result is recorded in the run's ledger and, on
// success, the raw output lands on the blackboard.
func (o *Orchestrator) executeStep(runCtx context.Context, run *Run, step *Step) StepResult {
	input := run.Board.Resolve(step.Input)
	result := StepResult{
		StepID:    step.ID,
		Agent:     step.Agent,
		StartedAt: time.Now(),
	}

	o.emit(runCtx, EventStepStart, observability.LevelVerbose, map[string]any{
		"run_id":  run.ID,
		"step_id": step.ID,
		"agent":   step.Agent,
	})

	var output string
	var lastErr error
	for attempt := 0; attempt <= step.Retries; attempt++ {
		if attempt > 0 {
			result.RetryCount = attempt
			o.emit(runCtx, EventStepRetry, observability.LevelWarning, map[string]any{
				"run_id":  run.ID,
				"step_id": step.ID,
				"attempt": attempt,
				"error":   lastErr.Error(),
			})
			backoff := o.config.RetryBackoff * time.Duration(attempt)
			select {
			case <-time.After(backoff):
			case <-runCtx.Done():
				lastErr = runCtx.Err()
				attempt = step.Retries // no attempts left once the run deadline hits
				continue
			}
		}

		output, lastErr = o.callExecutor(runCtx, step, input)
		if lastErr == nil && step.OutputSchema != nil {
			lastErr = validateOutputSchema(output, step.OutputSchema)
		}
		if lastErr == nil {
			break
		}
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	if lastErr != nil {
		stepErr := &StepError{
			StepID:   step.ID,
			Agent:    step.Agent,
			Attempts: result.RetryCount + 1,
			Err:      lastErr,
		}
		result.Status = StepFailed
		result.Error = stepErr.Error()
		run.recordResult(result)
		o.emit(runCtx, EventStepFailed, observability.LevelError, map[string]any{
			"run_id":      run.ID,
			"step_id":     step.ID,
			"agent":       step.Agent,
			"retry_count": result.RetryCount,
			"error":       result.Error,
		})
		o.publish(TopicStepFailed, map[string]any{
			"run_id":  run.ID,
			"step_id": step.ID,
			"error":   result.Error,
		})
		return result
	}

	result.Status = StepDone
	result.Output = output
	outputKey := step.OutputKey
	if outputKey == "" {
		outputKey = step.ID
	}
	run.Board.Set(outputKey, output)
	run.recordResult(result)

	o.emit(runCtx, EventStepComplete, observability.LevelInfo, map[string]any{
		"run_id":      run.ID,
		"step_id":     step.ID,
		"agent":       step.Agent,
		"duration":    result.Duration.String(),
		"retry_count": result.RetryCount,
	})
	o.publish(TopicStepCompleted, map[string]any{
		"run_id":  run.ID,
		"step_id": step.ID,
		"output":  output,
	})
	return result
}

// callExecutor invokes the executor bounded by the step timeout. The
// executor runs in its own goroutine so a hung call cannot stall the run
// past its deadline; the goroutine's late result is dropped.
func (o *Orchestrator) callExecutor(runCtx context.Context, step *Step, input string) (string, error) {
	stepTimeout := step.Timeout
	if stepTimeout <= 0 {
		stepTimeout = o.config.StepTimeout
	}
	stepCtx, cancel := context.WithTimeout(runCtx, stepTimeout)
	defer cancel()

	type outcome struct {
		output string
		err    error
	}
	resultChannel := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultChannel <- outcome{err: fmt.Errorf("executor panicked: %v", r)}
			}
		}()
		output, err := o.executor(stepCtx, step.Agent, input)
		resultChannel <- outcome{output: output, err: err}
	}()

	select {
	case res := <-resultChannel:
		return res.output, res.err
	case <-stepCtx.Done():
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("step %q timed out after %s", step.ID, stepTimeout)
		}
		return "", stepCtx.Err()
	}
}

// validateOutputSchema parses the output as JSON and checks each declared
// key for presence and primitive type. Violations are ordinary step
// failures, never panics.
func validateOutputSchema(output string, schema map[string]string) error {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return fmt.Errorf("output is not a JSON object: %w", err)
	}

	for key, expected := range schema {
		value, exists := parsed[key]
		if !exists {
			return fmt.Errorf("output missing required key %q", key)
		}
		var ok bool
		switch expected {
		case "string":
			_, ok = value.(string)
		case "number":
			_, ok = value.(float64)
		case "boolean":
			_, ok = value.(bool)
		case "array":
			_, ok = value.([]any)
		default:
			return fmt.Errorf("unsupported schema type %q for key %q", expected, key)
		}
		if !ok {
			return fmt.Errorf("output key %q is not of type %s", key, expected)
		}
	}
	return nil
}

// finishRun emits terminal events and archives the final blackboard.
func (o *Orchestrator) finishRun(ctx context.Context, run *Run) {
	status := run.CurrentStatus()
	data := map[string]any{
		"run_id":   run.ID,
		"workflow": run.WorkflowName,
		"status":   string(status),
		"duration": run.CompletedAt.Sub(run.StartedAt).String(),
	}

	switch status {
	case RunCompleted:
		o.emit(ctx, EventRunComplete, observability.LevelInfo, data)
	case RunCancelled:
		o.emit(ctx, EventRunCancelled, observability.LevelWarning, data)
	default:
		data["error"] = run.Error
		o.emit(ctx, EventRunFailed, observability.LevelError, data)
	}

	o.publish(TopicWorkflowCompleted, map[string]any{
		"run_id":   run.ID,
		"workflow": run.WorkflowName,
		"status":   string(status),
		"error":    run.Error,
	})

	if o.archive != nil {
		if _, err := o.archive.Put(ctx, "run:"+run.ID, run.Board.Snapshot(), 0); err != nil {
			o.emit(ctx, EventRunFailed, observability.LevelWarning, map[string]any{
				"run_id": run.ID,
				"error":  fmt.Sprintf("failed to archive blackboard: %v", err),
			})
		}
	}
}

// GetRun looks up a run by ID.
func (o *Orchestrator) GetRun(runID string) (*Run, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	run, exists := o.runs[runID]
	return run, exists
}

// AllRuns returns every run the orchestrator has started.
func (o *Orchestrator) AllRuns() []*Run {
	o.mu.RLock()
	defer o.mu.RUnlock()
	runs := make([]*Run, 0, len(o.runs))
	for _, run := range o.runs {
		runs = append(runs, run)
	}
	return runs
}

// Cancel flips a live run to cancelled. In-flight steps finish on their
// own; their timeouts remain the only hard bound on their duration.
func (o *Orchestrator) Cancel(runID string) bool {
	run, exists := o.GetRun(runID)
	if !exists {
		return false
	}
	return run.requestCancel()
}

func (o *Orchestrator) emit(ctx context.Context, eventType observability.EventType, level observability.Level, data map[string]any) {
	o.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "workflow.Orchestrator",
		Data:      data,
	})
}

// publish pushes a lifecycle event onto the bus without blocking. A full
// queue drops the event; correctness never depends on delivery.
func (o *Orchestrator) publish(topic string, payload map[string]any) {
	if o.bus == nil {
		return
	}
	_ = o.bus.PublishNowait(eventbus.NewEvent(topic, "orchestrator", payload))
}
