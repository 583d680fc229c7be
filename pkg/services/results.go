package services

import (
	"context"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/models"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/repositories"
)

// ResultsService serves stored run outcomes and analytics views.
type ResultsService interface {
	// GetResult returns the run record with all of its shipment and
	// production rows, or apperrors.ErrNotFound for an unknown run id.
	GetResult(ctx context.Context, runID string) (*models.OptimizationResult, error)

	// AnalyticsView returns the rows of an allow-listed analytical view
	// verbatim, or apperrors.ErrNotFound for any other name.
	AnalyticsView(ctx context.Context, name string) ([]map[string]any, error)
}

type resultsService struct {
	runs      repositories.RunRepository
	results   repositories.ResultRepository
	analytics repositories.AnalyticsRepository
}

// NewResultsService creates a results service.
func NewResultsService(
	runs repositories.RunRepository,
	results repositories.ResultRepository,
	analytics repositories.AnalyticsRepository,
) ResultsService {
	return &resultsService{runs: runs, results: results, analytics: analytics}
}

func (s *resultsService) GetResult(ctx context.Context, runID string) (*models.OptimizationResult, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, err
	}

	shipments, err := s.results.ShipmentsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	production, err := s.results.ProductionByRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	// Serve empty arrays, not nulls, for runs without result rows.
	if shipments == nil {
		shipments = []models.OptimalShipment{}
	}
	if production == nil {
		production = []models.OptimalProduction{}
	}

	return &models.OptimizationResult{
		RunDetails: *run,
		Shipments:  shipments,
		Production: production,
	}, nil
}

func (s *resultsService) AnalyticsView(ctx context.Context, name string) ([]map[string]any, error) {
	return s.analytics.ViewRows(ctx, name)
}

var _ ResultsService = (*resultsService)(nil)
