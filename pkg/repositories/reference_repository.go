// Package repositories implements data access over PostgreSQL.
package repositories

import (
	"context"
	"fmt"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/apperrors"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/database"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/models"
)

// Dataset is one run's private snapshot of the reference tables.
type Dataset struct {
	Facilities []models.Facility
	Products   []models.Product
	Lanes      []models.Lane
	Orders     []models.CustomerOrder
}

// ReferenceRepository loads the read-only network definition.
type ReferenceRepository interface {
	// LoadDataset reads all four reference tables. It fails with
	// apperrors.ErrDataUnavailable if the store is unreachable or any
	// required table is empty; the caller treats that as a run failure
	// without retrying.
	LoadDataset(ctx context.Context) (*Dataset, error)
}

type referenceRepository struct {
	db *database.DB
}

// NewReferenceRepository creates a reference data repository.
func NewReferenceRepository(db *database.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) LoadDataset(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}

	if err := r.loadFacilities(ctx, ds); err != nil {
		return nil, err
	}
	if err := r.loadProducts(ctx, ds); err != nil {
		return nil, err
	}
	if err := r.loadLanes(ctx, ds); err != nil {
		return nil, err
	}
	if err := r.loadOrders(ctx, ds); err != nil {
		return nil, err
	}

	if len(ds.Facilities) == 0 {
		return nil, fmt.Errorf("%w: facilities table is empty", apperrors.ErrDataUnavailable)
	}
	if len(ds.Products) == 0 {
		return nil, fmt.Errorf("%w: products table is empty", apperrors.ErrDataUnavailable)
	}
	if len(ds.Lanes) == 0 {
		return nil, fmt.Errorf("%w: transportation_lanes table is empty", apperrors.ErrDataUnavailable)
	}
	if len(ds.Orders) == 0 {
		return nil, fmt.Errorf("%w: customer_orders table is empty", apperrors.ErrDataUnavailable)
	}

	return ds, nil
}

func (r *referenceRepository) loadFacilities(ctx context.Context, ds *Dataset) error {
	rows, err := r.db.Query(ctx, `
		SELECT facility_id, facility_type, capacity_units, variable_cost_per_unit
		FROM facilities`)
	if err != nil {
		return fmt.Errorf("%w: failed to query facilities: %v", apperrors.ErrDataUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Facility
		if err := rows.Scan(&f.FacilityID, &f.FacilityType, &f.CapacityUnits, &f.VariableCostPerUnit); err != nil {
			return fmt.Errorf("%w: failed to scan facility: %v", apperrors.ErrDataUnavailable, err)
		}
		ds.Facilities = append(ds.Facilities, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: failed to read facilities: %v", apperrors.ErrDataUnavailable, err)
	}
	return nil
}

func (r *referenceRepository) loadProducts(ctx context.Context, ds *Dataset) error {
	rows, err := r.db.Query(ctx, `SELECT product_id FROM products`)
	if err != nil {
		return fmt.Errorf("%w: failed to query products: %v", apperrors.ErrDataUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ProductID); err != nil {
			return fmt.Errorf("%w: failed to scan product: %v", apperrors.ErrDataUnavailable, err)
		}
		ds.Products = append(ds.Products, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: failed to read products: %v", apperrors.ErrDataUnavailable, err)
	}
	return nil
}

func (r *referenceRepository) loadLanes(ctx context.Context, ds *Dataset) error {
	// Ordered by id so that duplicate (origin, destination) pairs resolve
	// deterministically to the first inserted row.
	rows, err := r.db.Query(ctx, `
		SELECT origin_facility_id, destination_id, cost_per_unit
		FROM transportation_lanes
		ORDER BY id`)
	if err != nil {
		return fmt.Errorf("%w: failed to query transportation lanes: %v", apperrors.ErrDataUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Lane
		if err := rows.Scan(&l.OriginFacilityID, &l.DestinationID, &l.CostPerUnit); err != nil {
			return fmt.Errorf("%w: failed to scan lane: %v", apperrors.ErrDataUnavailable, err)
		}
		ds.Lanes = append(ds.Lanes, l)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: failed to read transportation lanes: %v", apperrors.ErrDataUnavailable, err)
	}
	return nil
}

func (r *referenceRepository) loadOrders(ctx context.Context, ds *Dataset) error {
	rows, err := r.db.Query(ctx, `
		SELECT customer_id, product_id, quantity_ordered
		FROM customer_orders`)
	if err != nil {
		return fmt.Errorf("%w: failed to query customer orders: %v", apperrors.ErrDataUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.CustomerOrder
		if err := rows.Scan(&o.CustomerID, &o.ProductID, &o.QuantityOrdered); err != nil {
			return fmt.Errorf("%w: failed to scan customer order: %v", apperrors.ErrDataUnavailable, err)
		}
		ds.Orders = append(ds.Orders, o)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: failed to read customer orders: %v", apperrors.ErrDataUnavailable, err)
	}
	return nil
}

var _ ReferenceRepository = (*referenceRepository)(nil)
