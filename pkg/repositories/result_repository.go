package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/database"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/models"
)

// ResultRepository persists and serves solved result rows. Writes are
// append-only and all-or-nothing per table: each save runs in a single
// transaction so a failed write leaves no partial rows for the run.
type ResultRepository interface {
	SaveShipments(ctx context.Context, shipments []models.OptimalShipment) error
	SaveProduction(ctx context.Context, production []models.OptimalProduction) error
	ShipmentsByRun(ctx context.Context, runID string) ([]models.OptimalShipment, error)
	ProductionByRun(ctx context.Context, runID string) ([]models.OptimalProduction, error)
}

type resultRepository struct {
	db *database.DB
}

// NewResultRepository creates a result repository.
func NewResultRepository(db *database.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) SaveShipments(ctx context.Context, shipments []models.OptimalShipment) error {
	if len(shipments) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, s := range shipments {
			batch.Queue(`
				INSERT INTO optimal_shipments (run_id, origin_facility_id, destination_id, product_id, quantity_shipped)
				VALUES ($1, $2, $3, $4, $5)`,
				s.RunID, s.OriginFacilityID, s.DestinationID, s.ProductID, s.QuantityShipped)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save shipments: %w", err)
		}
		return nil
	})
}

func (r *resultRepository) SaveProduction(ctx context.Context, production []models.OptimalProduction) error {
	if len(production) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range production {
			batch.Queue(`
				INSERT INTO optimal_production (run_id, facility_id, product_id, quantity_produced)
				VALUES ($1, $2, $3, $4)`,
				p.RunID, p.FacilityID, p.ProductID, p.QuantityProduced)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save production: %w", err)
		}
		return nil
	})
}

func (r *resultRepository) ShipmentsByRun(ctx context.Context, runID string) ([]models.OptimalShipment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT run_id, origin_facility_id, destination_id, product_id, quantity_shipped
		FROM optimal_shipments
		WHERE run_id = $1
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipments for run %s: %w", runID, err)
	}
	defer rows.Close()

	var shipments []models.OptimalShipment
	for rows.Next() {
		var s models.OptimalShipment
		if err := rows.Scan(&s.RunID, &s.OriginFacilityID, &s.DestinationID, &s.ProductID, &s.QuantityShipped); err != nil {
			return nil, fmt.Errorf("failed to scan shipment: %w", err)
		}
		shipments = append(shipments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shipments: %w", err)
	}
	return shipments, nil
}

func (r *resultRepository) ProductionByRun(ctx context.Context, runID string) ([]models.OptimalProduction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT run_id, facility_id, product_id, quantity_produced
		FROM optimal_production
		WHERE run_id = $1
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query production for run %s: %w", runID, err)
	}
	defer rows.Close()

	var production []models.OptimalProduction
	for rows.Next() {
		var p models.OptimalProduction
		if err := rows.Scan(&p.RunID, &p.FacilityID, &p.ProductID, &p.QuantityProduced); err != nil {
			return nil, fmt.Errorf("failed to scan production: %w", err)
		}
		production = append(production, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read production: %w", err)
	}
	return production, nil
}

var _ ResultRepository = (*resultRepository)(nil)
