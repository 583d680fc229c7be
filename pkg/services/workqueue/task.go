// Package workqueue runs optimization tasks on a bounded pool of workers
// with retry for transient failures. It replaces fire-and-forget process
// spawning: the API boundary enqueues work, independent workers consume it.
package workqueue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task is the interface all queued work must implement.
type Task interface {
	// ID returns a unique identifier for this task.
	ID() string

	// Name returns a human-readable name for logs.
	Name() string

	// Execute runs the task. A returned error wrapped with Permanent is
	// never retried; any other error is retried per the queue's retry
	// configuration.
	Execute(ctx context.Context) error
}

// PermanentError marks a task failure that must not be retried, typically
// because the task already recorded a terminal outcome.
type PermanentError struct {
	Err error
}

// Error implements the error interface.
func (e *PermanentError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the underlying error to errors.Is/As.
func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err so the queue will not retry it. A nil err returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// TaskState holds the runtime state of a queued task.
type TaskState struct {
	task Task

	mu          sync.RWMutex
	status      TaskStatus
	attempts    int
	err         error
	startedAt   *time.Time
	completedAt *time.Time
}

func newTaskState(task Task) *TaskState {
	return &TaskState{task: task, status: TaskStatusPending}
}

func (ts *TaskState) setStatus(status TaskStatus) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.status = status
	now := time.Now()
	switch status {
	case TaskStatusRunning:
		if ts.startedAt == nil {
			ts.startedAt = &now
		}
	case TaskStatusCompleted, TaskStatusFailed:
		ts.completedAt = &now
	}
}

func (ts *TaskState) recordAttempt(err error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.attempts++
	ts.err = err
}

// TaskSnapshot is an immutable view of a task's state.
type TaskSnapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      TaskStatus `json:"status"`
	Attempts    int        `json:"attempts"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot returns an immutable copy of the task state.
func (ts *TaskState) Snapshot() TaskSnapshot {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	var errMsg string
	if ts.err != nil {
		errMsg = ts.err.Error()
	}
	return TaskSnapshot{
		ID:          ts.task.ID(),
		Name:        ts.task.Name(),
		Status:      ts.status,
		Attempts:    ts.attempts,
		Error:       errMsg,
		StartedAt:   ts.startedAt,
		CompletedAt: ts.completedAt,
	}
}
