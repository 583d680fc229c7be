package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/apperrors"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/config"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/metrics"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/models"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/repositories"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/services/workqueue"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/solver"
)

// Planner owns the run lifecycle: it brackets the load -> build -> solve ->
// materialize pipeline with status transitions so that every run ends in
// exactly one terminal status.
type Planner struct {
	refs    repositories.ReferenceRepository
	runs    repositories.RunRepository
	results repositories.ResultRepository
	builder *ModelBuilder
	solver  config.SolverConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPlanner creates a planner. metrics may be nil.
func NewPlanner(
	refs repositories.ReferenceRepository,
	runs repositories.RunRepository,
	results repositories.ResultRepository,
	builder *ModelBuilder,
	solverCfg config.SolverConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Planner {
	return &Planner{
		refs:    refs,
		runs:    runs,
		results: results,
		builder: builder,
		solver:  solverCfg,
		metrics: m,
		logger:  logger,
	}
}

// Execute runs one optimization end to end. The run record is inserted
// with status running before any work happens; every failure inside the
// pipeline, including panics, is converted to a failed status update.
// Errors after the initial insert are permanent: the terminal status has
// been recorded (or attempted) and re-running would duplicate state.
func (p *Planner) Execute(ctx context.Context, runID string) (err error) {
	if err := p.runs.CreateRunning(ctx, runID); err != nil {
		// Nothing persisted yet; the queue may retry this run.
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("optimization run panicked: %v", r)
		}
		if err == nil {
			return
		}
		p.logger.Error("optimization run failed",
			zap.String("run_id", runID),
			zap.Error(err))
		p.metrics.RunFinished(string(models.RunStatusFailed))
		if failErr := p.runs.MarkFailed(ctx, runID); failErr != nil {
			// Double failure: the run record is stuck in running state.
			// Documented limitation; surfaced loudly instead of masked.
			p.logger.Error("failed to record terminal status; run left non-terminal",
				zap.String("run_id", runID),
				zap.Error(failErr))
		}
		err = workqueue.Permanent(err)
	}()

	totalCost, err := p.runPipeline(ctx, runID)
	if err != nil {
		return err
	}

	p.metrics.RunFinished(string(models.RunStatusCompleted))
	p.logger.Info("optimization run completed",
		zap.String("run_id", runID),
		zap.Float64("total_cost", totalCost))
	return nil
}

func (p *Planner) runPipeline(ctx context.Context, runID string) (float64, error) {
	ds, err := p.refs.LoadDataset(ctx)
	if err != nil {
		return 0, err
	}

	nm, err := p.builder.Build(ds)
	if err != nil {
		return 0, err
	}
	nm.Model.SetTolerance(p.solver.Tolerance)

	solveStart := time.Now()
	sol, solveErr := nm.Model.Solve()
	p.metrics.ObserveSolveDuration(time.Since(solveStart))

	if solveErr != nil {
		return 0, solveErr
	}
	if !sol.IsOptimal() {
		return 0, solutionStatusError(sol.Status)
	}

	shipments, production := p.materialize(runID, nm, sol)

	if err := p.results.SaveShipments(ctx, shipments); err != nil {
		return 0, err
	}
	if err := p.results.SaveProduction(ctx, production); err != nil {
		return 0, err
	}

	if err := p.runs.MarkCompleted(ctx, runID, sol.Objective); err != nil {
		// The solve succeeded but its outcome cannot be recorded; the
		// solution is discarded and the run marked failed. Log the
		// objective so the loss is visible to operators.
		p.logger.Error("discarding optimal solution: completed status write failed",
			zap.String("run_id", runID),
			zap.Float64("objective", sol.Objective))
		return 0, err
	}

	return sol.Objective, nil
}

// materialize extracts variables whose solved value exceeds the
// materiality threshold into result rows. The comparison is strictly
// greater-than: a value exactly at the threshold is noise.
func (p *Planner) materialize(runID string, nm *NetworkModel, sol *solver.Solution) ([]models.OptimalShipment, []models.OptimalProduction) {
	threshold := p.solver.MaterialityThreshold

	var shipments []models.OptimalShipment
	for key, id := range nm.ShipmentVars {
		value := sol.Value(id)
		if value > threshold {
			shipments = append(shipments, models.OptimalShipment{
				RunID:            runID,
				OriginFacilityID: key.OriginFacilityID,
				DestinationID:    key.DestinationID,
				ProductID:        key.ProductID,
				QuantityShipped:  value,
			})
		}
	}

	var production []models.OptimalProduction
	for key, id := range nm.ProductionVars {
		value := sol.Value(id)
		if value > threshold {
			production = append(production, models.OptimalProduction{
				RunID:            runID,
				FacilityID:       key.FacilityID,
				ProductID:        key.ProductID,
				QuantityProduced: value,
			})
		}
	}

	sort.Slice(shipments, func(i, j int) bool {
		a, b := shipments[i], shipments[j]
		if a.OriginFacilityID != b.OriginFacilityID {
			return a.OriginFacilityID < b.OriginFacilityID
		}
		if a.DestinationID != b.DestinationID {
			return a.DestinationID < b.DestinationID
		}
		return a.ProductID < b.ProductID
	})
	sort.Slice(production, func(i, j int) bool {
		a, b := production[i], production[j]
		if a.FacilityID != b.FacilityID {
			return a.FacilityID < b.FacilityID
		}
		return a.ProductID < b.ProductID
	})

	return shipments, production
}

func solutionStatusError(status solver.Status) error {
	switch status {
	case solver.StatusInfeasible:
		return apperrors.ErrModelInfeasible
	case solver.StatusUnbounded:
		return apperrors.ErrModelUnbounded
	default:
		return apperrors.ErrNoOptimalSolution
	}
}
