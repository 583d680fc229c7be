package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/models"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/repositories"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/solver"
)

const solveTolerance = 1e-6

func plant(id string, capacity, cost float64) models.Facility {
	return models.Facility{
		FacilityID:          id,
		FacilityType:        models.FacilityTypePlant,
		CapacityUnits:       capacity,
		VariableCostPerUnit: cost,
	}
}

func warehouse(id string) models.Facility {
	return models.Facility{FacilityID: id, FacilityType: models.FacilityTypeWarehouse}
}

func lane(origin, dest string, cost float64) models.Lane {
	return models.Lane{OriginFacilityID: origin, DestinationID: dest, CostPerUnit: cost}
}

func order(customer, product string, qty float64) models.CustomerOrder {
	return models.CustomerOrder{CustomerID: customer, ProductID: product, QuantityOrdered: qty}
}

// singleChainDataset is one plant, one warehouse, one customer: the
// smallest end-to-end network.
func singleChainDataset(demand float64) *repositories.Dataset {
	return &repositories.Dataset{
		Facilities: []models.Facility{plant("P1", 100, 1), warehouse("W1")},
		Products:   []models.Product{{ProductID: "SKU1"}},
		Lanes:      []models.Lane{lane("P1", "W1", 2), lane("W1", "C1", 1)},
		Orders:     []models.CustomerOrder{order("C1", "SKU1", demand)},
	}
}

func buildAndSolve(t *testing.T, ds *repositories.Dataset) (*NetworkModel, *solver.Solution) {
	t.Helper()
	builder := NewModelBuilder(zap.NewNop())
	nm, err := builder.Build(ds)
	require.NoError(t, err)
	sol, err := nm.Model.Solve()
	require.NoError(t, err)
	return nm, sol
}

func TestBuild_VariableConstruction(t *testing.T) {
	ds := &repositories.Dataset{
		Facilities: []models.Facility{plant("P1", 100, 1), plant("P2", 50, 2), warehouse("W1")},
		Products:   []models.Product{{ProductID: "SKU1"}, {ProductID: "SKU2"}},
		Lanes:      []models.Lane{lane("P1", "W1", 2), lane("W1", "C1", 1)},
		Orders:     []models.CustomerOrder{order("C1", "SKU1", 10)},
	}

	builder := NewModelBuilder(zap.NewNop())
	nm, err := builder.Build(ds)
	require.NoError(t, err)

	// Production variables cover the full plant x product cross product,
	// even for pairs that can never ship anywhere.
	assert.Len(t, nm.ProductionVars, 4)
	// Shipment variables follow the lane table: 2 lanes x 2 products.
	assert.Len(t, nm.ShipmentVars, 4)

	// Flow balance per (warehouse, product) + production balance per
	// (plant, product) + one demand constraint.
	assert.Equal(t, 2+4+1, nm.Model.NumConstraints())
}

func TestBuild_DuplicateLaneCollapsesToFirstCost(t *testing.T) {
	ds := singleChainDataset(50)
	// A second row for the same (origin, destination) with a different
	// cost must not create a second variable, and the first row's cost
	// wins the lookup.
	ds.Lanes = append(ds.Lanes, lane("P1", "W1", 99))

	nm, sol := buildAndSolve(t, ds)
	require.Equal(t, solver.StatusOptimal, sol.Status)

	assert.Len(t, nm.ShipmentVars, 2)
	// Cost uses the first P1->W1 row: 50*(1+2+1) = 200, not 50*(1+99+1).
	assert.InDelta(t, 200, sol.Objective, solveTolerance)
}

func TestBuild_ScenarioA_SingleChain(t *testing.T) {
	nm, sol := buildAndSolve(t, singleChainDataset(50))

	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 200, sol.Objective, solveTolerance)

	prodKey := ProductionKey{FacilityID: "P1", ProductID: "SKU1"}
	assert.InDelta(t, 50, sol.Value(nm.ProductionVars[prodKey]), solveTolerance)
	assert.InDelta(t, 50, sol.Value(nm.ShipmentVars[ShipmentKey{"P1", "W1", "SKU1"}]), solveTolerance)
	assert.InDelta(t, 50, sol.Value(nm.ShipmentVars[ShipmentKey{"W1", "C1", "SKU1"}]), solveTolerance)
}

func TestBuild_ScenarioB_DemandExceedsCapacity(t *testing.T) {
	_, sol := buildAndSolve(t, singleChainDataset(150))

	assert.Equal(t, solver.StatusInfeasible, sol.Status)
}

func TestBuild_ScenarioC_SplitDemandFlowBalance(t *testing.T) {
	ds := &repositories.Dataset{
		Facilities: []models.Facility{plant("P1", 100, 1), warehouse("W1")},
		Products:   []models.Product{{ProductID: "SKU1"}},
		Lanes: []models.Lane{
			lane("P1", "W1", 2),
			lane("W1", "C1", 1),
			lane("W1", "C2", 1),
		},
		Orders: []models.CustomerOrder{
			order("C1", "SKU1", 30),
			order("C2", "SKU1", 20),
		},
	}

	nm, sol := buildAndSolve(t, ds)
	require.Equal(t, solver.StatusOptimal, sol.Status)

	inflow := sol.Value(nm.ShipmentVars[ShipmentKey{"P1", "W1", "SKU1"}])
	outC1 := sol.Value(nm.ShipmentVars[ShipmentKey{"W1", "C1", "SKU1"}])
	outC2 := sol.Value(nm.ShipmentVars[ShipmentKey{"W1", "C2", "SKU1"}])

	assert.InDelta(t, 50, inflow, solveTolerance)
	assert.InDelta(t, 30, outC1, solveTolerance)
	assert.InDelta(t, 20, outC2, solveTolerance)
	// Flow conservation at the warehouse.
	assert.InDelta(t, inflow, outC1+outC2, solveTolerance)
}

func TestBuild_ScenarioD_ExpensiveAlternateLaneUnused(t *testing.T) {
	ds := &repositories.Dataset{
		Facilities: []models.Facility{plant("P1", 100, 1), warehouse("W1"), warehouse("W2")},
		Products:   []models.Product{{ProductID: "SKU1"}},
		Lanes: []models.Lane{
			lane("P1", "W1", 2),
			lane("P1", "W2", 5),
			lane("W1", "C1", 1),
			lane("W2", "C1", 1),
		},
		Orders: []models.CustomerOrder{order("C1", "SKU1", 50)},
	}

	nm, sol := buildAndSolve(t, ds)
	require.Equal(t, solver.StatusOptimal, sol.Status)

	// The strictly more expensive route through W2 carries no flow.
	assert.InDelta(t, 0, sol.Value(nm.ShipmentVars[ShipmentKey{"P1", "W2", "SKU1"}]), solveTolerance)
	assert.InDelta(t, 0, sol.Value(nm.ShipmentVars[ShipmentKey{"W2", "C1", "SKU1"}]), solveTolerance)
	assert.InDelta(t, 50, sol.Value(nm.ShipmentVars[ShipmentKey{"P1", "W1", "SKU1"}]), solveTolerance)
	assert.InDelta(t, 200, sol.Objective, solveTolerance)
}

func TestBuild_ConservationProperties(t *testing.T) {
	// Two plants, two warehouses, two products, three customers.
	ds := &repositories.Dataset{
		Facilities: []models.Facility{
			plant("P1", 80, 1),
			plant("P2", 120, 1.5),
			warehouse("W1"),
			warehouse("W2"),
		},
		Products: []models.Product{{ProductID: "SKU1"}, {ProductID: "SKU2"}},
		Lanes: []models.Lane{
			lane("P1", "W1", 2),
			lane("P1", "W2", 3),
			lane("P2", "W1", 2.5),
			lane("P2", "W2", 1.5),
			lane("W1", "C1", 1),
			lane("W1", "C2", 1.2),
			lane("W2", "C2", 0.8),
			lane("W2", "C3", 1.1),
		},
		Orders: []models.CustomerOrder{
			order("C1", "SKU1", 40),
			order("C2", "SKU1", 25),
			order("C2", "SKU2", 30),
			order("C3", "SKU2", 35),
		},
	}

	nm, sol := buildAndSolve(t, ds)
	require.Equal(t, solver.StatusOptimal, sol.Status)

	products := []string{"SKU1", "SKU2"}

	// Flow conservation: warehouse inflow equals outflow per product.
	for _, wh := range []string{"W1", "W2"} {
		for _, p := range products {
			var inflow, outflow float64
			for key, id := range nm.ShipmentVars {
				if key.ProductID != p {
					continue
				}
				if key.DestinationID == wh {
					inflow += sol.Value(id)
				}
				if key.OriginFacilityID == wh {
					outflow += sol.Value(id)
				}
			}
			assert.InDelta(t, inflow, outflow, solveTolerance, "flow balance at %s for %s", wh, p)
		}
	}

	// Production conservation: plant output equals shipped-out quantity.
	for _, pl := range []string{"P1", "P2"} {
		for _, p := range products {
			produced := sol.Value(nm.ProductionVars[ProductionKey{FacilityID: pl, ProductID: p}])
			var shipped float64
			for key, id := range nm.ShipmentVars {
				if key.OriginFacilityID == pl && key.ProductID == p {
					shipped += sol.Value(id)
				}
			}
			assert.InDelta(t, produced, shipped, solveTolerance, "production balance at %s for %s", pl, p)
		}
	}

	// Demand satisfaction: customer inflow covers aggregated demand.
	for key, qty := range models.AggregateDemand(ds.Orders) {
		var delivered float64
		for shipKey, id := range nm.ShipmentVars {
			if shipKey.DestinationID == key.CustomerID && shipKey.ProductID == key.ProductID {
				delivered += sol.Value(id)
			}
		}
		assert.GreaterOrEqual(t, delivered+solveTolerance, qty, "demand for %s/%s", key.CustomerID, key.ProductID)
	}
}

func TestBuild_ZeroCapacityWithDemandIsInfeasible(t *testing.T) {
	ds := singleChainDataset(50)
	ds.Facilities[0].CapacityUnits = 0

	_, sol := buildAndSolve(t, ds)
	assert.Equal(t, solver.StatusInfeasible, sol.Status)
}

func TestBuild_DemandWithNoLanesIsInfeasible(t *testing.T) {
	// The customer is ordered for but no lane reaches it; the demand
	// constraint degenerates to 0 >= qty.
	ds := singleChainDataset(50)
	ds.Orders = append(ds.Orders, order("C99", "SKU1", 10))

	_, sol := buildAndSolve(t, ds)
	assert.Equal(t, solver.StatusInfeasible, sol.Status)
}

func TestBuild_ZeroDemandOrdersAddNoConstraint(t *testing.T) {
	ds := singleChainDataset(50)
	ds.Orders = append(ds.Orders, order("C2", "SKU1", 0))

	builder := NewModelBuilder(zap.NewNop())
	nm, err := builder.Build(ds)
	require.NoError(t, err)

	// flow balance (1) + production balance (1) + one demand row for C1
	// only; C2's zero aggregated demand is skipped.
	assert.Equal(t, 3, nm.Model.NumConstraints())
}

func TestBuild_StrayLaneToUnknownEntityIsHarmless(t *testing.T) {
	// A lane referencing entities that are neither facilities nor
	// customers creates a variable that no constraint touches. It must
	// neither fail the build nor disturb the solution.
	ds := singleChainDataset(50)
	ds.Lanes = append(ds.Lanes, lane("X1", "X2", 7))

	nm, sol := buildAndSolve(t, ds)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 200, sol.Objective, solveTolerance)
	assert.Zero(t, sol.Value(nm.ShipmentVars[ShipmentKey{"X1", "X2", "SKU1"}]))
}

func TestAggregateDemand(t *testing.T) {
	orders := []models.CustomerOrder{
		order("C1", "SKU1", 10),
		order("C1", "SKU1", 15),
		order("C1", "SKU2", 5),
		order("C2", "SKU1", 7),
	}

	demand := models.AggregateDemand(orders)
	assert.Equal(t, 25.0, demand[models.DemandKey{CustomerID: "C1", ProductID: "SKU1"}])
	assert.Equal(t, 5.0, demand[models.DemandKey{CustomerID: "C1", ProductID: "SKU2"}])
	assert.Equal(t, 7.0, demand[models.DemandKey{CustomerID: "C2", ProductID: "SKU1"}])
	assert.Len(t, demand, 3)
}
