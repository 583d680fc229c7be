package models

import "time"

// RunStatus represents the lifecycle state of an optimization run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// OptimizationRun tracks one end-to-end execution of the optimization
// pipeline. The record is inserted with status running and updated exactly
// once to a terminal status. TotalCost is set only on completion.
type OptimizationRun struct {
	RunID        string    `json:"run_id"`
	RunTimestamp time.Time `json:"run_timestamp"`
	Status       RunStatus `json:"status"`
	TotalCost    *float64  `json:"total_cost"`
}

// IsTerminal reports whether the run has finished, successfully or not.
func (r *OptimizationRun) IsTerminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
