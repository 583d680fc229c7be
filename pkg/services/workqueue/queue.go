package workqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RetryConfig configures retry behavior for failed tasks.
type RetryConfig struct {
	MaxRetries     int           // Maximum number of retry attempts (0 = no retries)
	InitialBackoff time.Duration // Initial backoff duration
	MaxBackoff     time.Duration // Maximum backoff duration (cap)
	BackoffFactor  float64       // Multiplier for exponential backoff
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
// Backoff schedule: 1s, 2s, 4s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// ErrQueueClosed is returned by Enqueue after Shutdown has begun.
var ErrQueueClosed = errors.New("work queue is shut down")

// Queue executes tasks on a fixed pool of workers. Tasks run at most once
// concurrently per enqueue; transient failures are retried with
// exponential backoff, permanent failures are not.
type Queue struct {
	tasks chan *TaskState

	mu     sync.Mutex
	states map[string]*TaskState
	closed bool

	retry  RetryConfig
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(q *Queue) {
		q.retry = cfg
	}
}

// New creates a queue and starts its workers.
func New(logger *zap.Logger, workers int, opts ...Option) *Queue {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		tasks:  make(chan *TaskState, 64),
		states: make(map[string]*TaskState),
		retry:  DefaultRetryConfig(),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

// Enqueue adds a task for execution. Duplicate task ids are rejected so a
// run identifier cannot be scheduled twice within one process lifetime.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if _, exists := q.states[task.ID()]; exists {
		q.mu.Unlock()
		return fmt.Errorf("task %s is already enqueued", task.ID())
	}
	state := newTaskState(task)
	q.states[task.ID()] = state
	q.mu.Unlock()

	select {
	case q.tasks <- state:
		return nil
	case <-q.ctx.Done():
		return ErrQueueClosed
	}
}

// Status returns a snapshot of a previously enqueued task.
func (q *Queue) Status(id string) (TaskSnapshot, bool) {
	q.mu.Lock()
	state, ok := q.states[id]
	q.mu.Unlock()
	if !ok {
		return TaskSnapshot{}, false
	}
	return state.Snapshot(), true
}

// Shutdown stops accepting work and waits for in-flight tasks to finish
// or for ctx to expire. Pending tasks that have not started are dropped.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("work queue shutdown timed out: %w", ctx.Err())
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case state := <-q.tasks:
			q.run(state)
		}
	}
}

func (q *Queue) run(state *TaskState) {
	task := state.task
	state.setStatus(TaskStatusRunning)
	q.logger.Info("task started",
		zap.String("task_id", task.ID()),
		zap.String("task_name", task.Name()))

	backoff := q.retry.InitialBackoff
	for attempt := 0; ; attempt++ {
		err := q.executeOnce(task)
		state.recordAttempt(err)

		if err == nil {
			state.setStatus(TaskStatusCompleted)
			q.logger.Info("task completed", zap.String("task_id", task.ID()))
			return
		}

		if IsPermanent(err) || attempt >= q.retry.MaxRetries {
			state.setStatus(TaskStatusFailed)
			q.logger.Error("task failed",
				zap.String("task_id", task.ID()),
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return
		}

		q.logger.Warn("task failed, retrying",
			zap.String("task_id", task.ID()),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-q.ctx.Done():
			state.setStatus(TaskStatusFailed)
			return
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * q.retry.BackoffFactor)
		if backoff > q.retry.MaxBackoff {
			backoff = q.retry.MaxBackoff
		}
	}
}

// executeOnce isolates one attempt so a panicking task takes down neither
// the worker nor the process. A started task is never cancelled: it runs
// to its own terminal outcome even during shutdown, so the run record
// cannot be left mid-transition by a closing queue.
func (q *Queue) executeOnce(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Permanent(fmt.Errorf("task panicked: %v", r))
		}
	}()
	return task.Execute(context.WithoutCancel(q.ctx))
}
