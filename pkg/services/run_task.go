package services

import (
	"context"
)

// RunTask adapts one optimization run to the work queue's Task interface.
type RunTask struct {
	runID   string
	planner *Planner
}

// NewRunTask creates a queueable task for the given run identifier.
func NewRunTask(runID string, planner *Planner) *RunTask {
	return &RunTask{runID: runID, planner: planner}
}

// ID returns the run identifier; a run can be scheduled at most once.
func (t *RunTask) ID() string {
	return t.runID
}

// Name returns the task type for logs.
func (t *RunTask) Name() string {
	return "optimization_run"
}

// Execute runs the optimization pipeline. The outcome is communicated
// through the persisted run status; the returned error only drives queue
// retry and logging.
func (t *RunTask) Execute(ctx context.Context) error {
	return t.planner.Execute(ctx, t.runID)
}
