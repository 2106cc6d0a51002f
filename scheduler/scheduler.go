package scheduler

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/Arbazxkr/SwarmX-sub000/config"
	"github.com/Arbazxkr/SwarmX-sub000/eventbus"
)

// subscriberID identifies the scheduler's own subscriptions on the bus.
const subscriberID = "scheduler"

// Scheduler holds tasks until their dependencies are satisfied, then
// publishes them as events. Completion and failure signals arrive back over
// the bus.
type Scheduler struct {
	bus    *eventbus.Bus
	logger *slog.Logger

	completedTopic string
	failedTopic    string

	mu    sync.Mutex
	tasks map[string]*Task

	running bool
}

// New creates a Scheduler bound to the given bus and subscribes it to the
// configured outcome topics.
func New(bus *eventbus.Bus, schedulerConfig config.SchedulerConfig) *Scheduler {
	cfg := config.DefaultSchedulerConfig()
	cfg.Merge(&schedulerConfig)

	s := &Scheduler{
		bus:            bus,
		logger:         cfg.Logger,
		completedTopic: cfg.CompletedTopic,
		failedTopic:    cfg.FailedTopic,
		tasks:          make(map[string]*Task),
	}

	bus.Subscribe(cfg.CompletedTopic, s.onTaskCompleted, subscriberID, eventbus.PriorityNormal)
	bus.Subscribe(cfg.FailedTopic, s.onTaskFailed, subscriberID, eventbus.PriorityNormal)

	return s
}

// Submit registers a task and dispatches it once its dependencies are
// satisfied (immediately when it has none). Returns the task id. Execution
// outcomes are surfaced through task status, never through Submit.
func (s *Scheduler) Submit(ctx context.Context, task *Task) string {
	s.mu.Lock()
	s.tasks[task.ID] = task
	ready := s.dependenciesMetLocked(task)
	s.mu.Unlock()

	s.logger.InfoContext(
		ctx,
		"task submitted",
		slog.String("task_id", task.ID),
		slog.String("name", task.Name),
	)

	if ready {
		s.dispatch(ctx, task)
	} else {
		s.logger.DebugContext(
			ctx,
			"task waiting on dependencies",
			slog.String("task_id", task.ID),
			slog.Any("depends_on", task.DependsOn),
		)
	}

	return task.ID
}

// SubmitMany submits tasks in order and returns their ids.
func (s *Scheduler) SubmitMany(ctx context.Context, tasks []*Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, s.Submit(ctx, task))
	}
	return ids
}

// GetTask returns a copy of a task by id.
func (s *Scheduler) GetTask(taskID string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return Task{}, false
	}
	return *task, true
}

// GetStatus returns the current status of a task.
func (s *Scheduler) GetStatus(taskID string) (TaskStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return "", false
	}
	return task.Status, true
}

// Cancel cancels a task. Cancellation is cooperative: it succeeds only
// before dispatch, from the pending or scheduled states.
func (s *Scheduler) Cancel(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return false
	}

	switch task.Status {
	case TaskPending, TaskScheduled:
		task.Status = TaskCancelled
		s.logger.Info("task cancelled", slog.String("task_id", taskID))
		return true
	default:
		s.logger.Warn(
			"cannot cancel task",
			slog.String("task_id", taskID),
			slog.String("status", string(task.Status)),
		)
		return false
	}
}

// dependenciesMetLocked reports whether every dependency is completed.
// Callers must hold s.mu.
func (s *Scheduler) dependenciesMetLocked(task *Task) bool {
	for _, depID := range task.DependsOn {
		dep, exists := s.tasks[depID]
		if !exists || dep.Status != TaskCompleted {
			return false
		}
	}
	return true
}

// dispatch moves a task toward running. A task with a delay parks in the
// scheduled state and fires after the delay elapses without blocking the
// caller.
func (s *Scheduler) dispatch(ctx context.Context, task *Task) {
	s.mu.Lock()
	if task.Status == TaskCancelled {
		s.mu.Unlock()
		return
	}

	if task.Delay > 0 && task.Status == TaskPending && task.RetryCount == 0 {
		task.Status = TaskScheduled
		s.mu.Unlock()

		go func() {
			select {
			case <-time.After(task.Delay):
				s.fire(ctx, task)
			case <-ctx.Done():
			}
		}()
		return
	}
	s.mu.Unlock()

	s.fire(ctx, task)
}

// fire flips a task to running and publishes it on its target topic.
func (s *Scheduler) fire(ctx context.Context, task *Task) {
	s.mu.Lock()
	if task.Status == TaskCancelled {
		s.mu.Unlock()
		return
	}

	task.Status = TaskRunning
	task.StartedAt = time.Now()

	payload := map[string]any{
		"task_id":     task.ID,
		"name":        task.Name,
		"description": task.Description,
		"content":     task.Description,
	}
	maps.Copy(payload, task.Payload)

	event := eventbus.NewEvent(task.TargetTopic, "scheduler", payload)
	event.Priority = task.Priority
	event.Metadata = map[string]any{"task_id": task.ID}
	s.mu.Unlock()

	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(
			ctx,
			"task dispatch failed",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.InfoContext(
		ctx,
		"task dispatched",
		slog.String("task_id", task.ID),
		slog.String("topic", task.TargetTopic),
	)
}

// onTaskCompleted marks the task completed and wakes any pending task whose
// dependencies are now satisfied. Dependents are dispatched synchronously
// relative to the completion event's dispatch.
func (s *Scheduler) onTaskCompleted(ctx context.Context, event eventbus.Event) error {
	taskID, _ := event.Payload["task_id"].(string)

	s.mu.Lock()
	task, exists := s.tasks[taskID]
	if !exists {
		s.mu.Unlock()
		return nil
	}

	task.Status = TaskCompleted
	task.CompletedAt = time.Now()
	task.Result = event.Payload["result"]

	var ready []*Task
	for _, candidate := range s.tasks {
		if candidate.Status != TaskPending {
			continue
		}
		if !dependsOn(candidate, taskID) {
			continue
		}
		if s.dependenciesMetLocked(candidate) {
			ready = append(ready, candidate)
		}
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "task completed", slog.String("task_id", taskID))

	for _, dependent := range ready {
		s.dispatch(ctx, dependent)
	}
	return nil
}

// onTaskFailed re-dispatches the task immediately while retry budget
// remains, otherwise records the terminal failure.
func (s *Scheduler) onTaskFailed(ctx context.Context, event eventbus.Event) error {
	taskID, _ := event.Payload["task_id"].(string)

	s.mu.Lock()
	task, exists := s.tasks[taskID]
	if !exists {
		s.mu.Unlock()
		return nil
	}

	if task.RetryCount < task.MaxRetries {
		task.RetryCount++
		task.Status = TaskPending
		retry := task.RetryCount
		s.mu.Unlock()

		s.logger.WarnContext(
			ctx,
			"task failed, retrying",
			slog.String("task_id", taskID),
			slog.Int("retry", retry),
			slog.Int("max_retries", task.MaxRetries),
		)
		s.dispatch(ctx, task)
		return nil
	}

	task.Status = TaskFailed
	task.CompletedAt = time.Now()
	if message, ok := event.Payload["error"].(string); ok && message != "" {
		task.Error = message
	} else {
		task.Error = "unknown error"
	}
	s.mu.Unlock()

	s.logger.ErrorContext(
		ctx,
		"task failed",
		slog.String("task_id", taskID),
		slog.String("error", task.Error),
	)
	return nil
}

func dependsOn(task *Task, taskID string) bool {
	for _, depID := range task.DependsOn {
		if depID == taskID {
			return true
		}
	}
	return false
}

// Start marks the scheduler running.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "task scheduler started")
}

// Stop marks the scheduler stopped and logs a lifetime summary.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.running = false
	total := len(s.tasks)
	completed, failed := 0, 0
	for _, task := range s.tasks {
		switch task.Status {
		case TaskCompleted:
			completed++
		case TaskFailed:
			failed++
		}
	}
	s.mu.Unlock()

	s.logger.Info(
		"task scheduler stopped",
		slog.Int("total", total),
		slog.Int("completed", completed),
		slog.Int("failed", failed),
	)
}

// AllTasks returns copies of every tracked task.
func (s *Scheduler) AllTasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		all = append(all, *task)
	}
	return all
}

// PendingCount returns the number of pending tasks.
func (s *Scheduler) PendingCount() int {
	return s.countByStatus(TaskPending)
}

// RunningCount returns the number of running tasks.
func (s *Scheduler) RunningCount() int {
	return s.countByStatus(TaskRunning)
}

func (s *Scheduler) countByStatus(status TaskStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, task := range s.tasks {
		if task.Status == status {
			count++
		}
	}
	return count
}
