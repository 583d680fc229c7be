package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/apperrors"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/database"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/models"
)

// RunRepository manages optimization run lifecycle records. A run is
// inserted once with status running and updated exactly once to a terminal
// status; rows are never deleted.
type RunRepository interface {
	CreateRunning(ctx context.Context, runID string) error
	MarkCompleted(ctx context.Context, runID string, totalCost float64) error
	MarkFailed(ctx context.Context, runID string) error
	Get(ctx context.Context, runID string) (*models.OptimizationRun, error)
}

type runRepository struct {
	db *database.DB
}

// NewRunRepository creates a run repository.
func NewRunRepository(db *database.DB) RunRepository {
	return &runRepository{db: db}
}

// CreateRunning inserts the initial run record. Run identifiers are
// globally unique; a duplicate insert is an error, not an upsert.
func (r *runRepository) CreateRunning(ctx context.Context, runID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO optimization_runs (run_id, run_timestamp, status)
		VALUES ($1, $2, $3)`,
		runID, time.Now().UTC(), models.RunStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to create run %s: %w", runID, err)
	}
	return nil
}

// MarkCompleted records the terminal completed status and the solved
// objective value.
func (r *runRepository) MarkCompleted(ctx context.Context, runID string, totalCost float64) error {
	result, err := r.db.Exec(ctx, `
		UPDATE optimization_runs
		SET status = $2, total_cost = $3
		WHERE run_id = $1`,
		runID, models.RunStatusCompleted, totalCost)
	if err != nil {
		return fmt.Errorf("failed to mark run %s completed: %w", runID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkFailed records the terminal failed status. total_cost stays NULL.
func (r *runRepository) MarkFailed(ctx context.Context, runID string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE optimization_runs
		SET status = $2, total_cost = NULL
		WHERE run_id = $1`,
		runID, models.RunStatusFailed)
	if err != nil {
		return fmt.Errorf("failed to mark run %s failed: %w", runID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Get retrieves a run by its identifier.
func (r *runRepository) Get(ctx context.Context, runID string) (*models.OptimizationRun, error) {
	var run models.OptimizationRun
	err := r.db.QueryRow(ctx, `
		SELECT run_id, run_timestamp, status, total_cost
		FROM optimization_runs
		WHERE run_id = $1`, runID).
		Scan(&run.RunID, &run.RunTimestamp, &run.Status, &run.TotalCost)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return &run, nil
}

var _ RunRepository = (*runRepository)(nil)
