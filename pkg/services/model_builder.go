// Package services contains the optimization pipeline and the services
// backing the HTTP API.
package services

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/apperrors"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/models"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/repositories"
	"github.com/kumarabhi05/Supply-Chain-Optimization-System/pkg/solver"
)

// ProductionKey identifies a production decision variable.
type ProductionKey struct {
	FacilityID string
	ProductID  string
}

// ShipmentKey identifies a shipment decision variable.
type ShipmentKey struct {
	OriginFacilityID string
	DestinationID    string
	ProductID        string
}

// NetworkModel couples the assembled LP with the key maps needed to read
// solved values back out of it.
type NetworkModel struct {
	Model          *solver.Model
	ProductionVars map[ProductionKey]solver.VarID
	ShipmentVars   map[ShipmentKey]solver.VarID
}

// ModelBuilder derives decision variables, constraints, and the cost
// objective from a loaded dataset. Building is a pure function of the
// dataset: no I/O, no stored state between runs.
type ModelBuilder struct {
	logger *zap.Logger
}

// NewModelBuilder creates a model builder.
func NewModelBuilder(logger *zap.Logger) *ModelBuilder {
	return &ModelBuilder{logger: logger}
}

// Build assembles the network-flow LP:
//
//   - one production variable per (plant, product) pair, bounded by the
//     plant's capacity;
//   - one shipment variable per (lane, product) pair - sparsity follows
//     the lane table, never a cross product over all facility pairs;
//   - flow balance at every (warehouse, product): inflow equals outflow;
//   - production balance at every (plant, product): production equals
//     shipments out to warehouses;
//   - demand cover for every (customer, product) with positive aggregated
//     demand: inflow from warehouses is at least the demand.
//
// Absent lanes simply contribute nothing to a constraint. A product that
// is demanded but has no capacity or no connecting lanes yields an
// infeasible model; that is the solver's verdict to deliver, not an error
// here.
func (b *ModelBuilder) Build(ds *repositories.Dataset) (*NetworkModel, error) {
	nm := &NetworkModel{
		Model:          solver.NewModel(),
		ProductionVars: make(map[ProductionKey]solver.VarID),
		ShipmentVars:   make(map[ShipmentKey]solver.VarID),
	}

	var plants, warehouses []models.Facility
	for _, f := range ds.Facilities {
		switch {
		case f.IsPlant():
			plants = append(plants, f)
		case f.IsWarehouse():
			warehouses = append(warehouses, f)
		}
	}

	customers := uniqueCustomers(ds.Orders)

	// Production variables over the full plant x product cross product.
	// Pairs a plant will never produce stay at zero in any optimum; the
	// dense construction is a simplicity tradeoff, matching the sparse
	// lane-driven shipment variables below.
	for _, plant := range plants {
		for _, product := range ds.Products {
			key := ProductionKey{FacilityID: plant.FacilityID, ProductID: product.ProductID}
			name := fmt.Sprintf("prod_%s_%s", plant.FacilityID, product.ProductID)
			nm.ProductionVars[key] = nm.Model.AddVariable(name, plant.CapacityUnits)
		}
	}

	// Shipment variables per lane row and product. Duplicate (origin,
	// destination) lane rows collapse onto one variable; the first row in
	// table order supplies the cost.
	laneCost := make(map[ShipmentKey]float64)
	for _, lane := range ds.Lanes {
		for _, product := range ds.Products {
			key := ShipmentKey{
				OriginFacilityID: lane.OriginFacilityID,
				DestinationID:    lane.DestinationID,
				ProductID:        product.ProductID,
			}
			if _, exists := nm.ShipmentVars[key]; exists {
				continue
			}
			name := fmt.Sprintf("ship_%s_%s_%s", lane.OriginFacilityID, lane.DestinationID, product.ProductID)
			nm.ShipmentVars[key] = nm.Model.AddVariable(name, math.Inf(1))
			laneCost[key] = lane.CostPerUnit
		}
	}

	b.addFlowBalance(nm, warehouses, ds.Products, ds.Facilities, customers)
	b.addProductionBalance(nm, plants, warehouses, ds.Products)
	b.addDemandCover(nm, warehouses, ds.Orders)

	if err := b.composeObjective(nm, plants, laneCost); err != nil {
		return nil, err
	}

	b.logger.Debug("model assembled",
		zap.Int("variables", nm.Model.NumVariables()),
		zap.Int("constraints", nm.Model.NumConstraints()))

	return nm, nil
}

// addFlowBalance adds inflow == outflow at every (warehouse, product).
// Inflow may arrive from any facility; outflow goes to customers.
func (b *ModelBuilder) addFlowBalance(nm *NetworkModel, warehouses []models.Facility, products []models.Product, facilities []models.Facility, customers []string) {
	for _, wh := range warehouses {
		for _, product := range products {
			var terms []solver.Term
			for _, origin := range facilities {
				key := ShipmentKey{
					OriginFacilityID: origin.FacilityID,
					DestinationID:    wh.FacilityID,
					ProductID:        product.ProductID,
				}
				if id, ok := nm.ShipmentVars[key]; ok {
					terms = append(terms, solver.Term{Var: id, Coefficient: 1})
				}
			}
			for _, customer := range customers {
				key := ShipmentKey{
					OriginFacilityID: wh.FacilityID,
					DestinationID:    customer,
					ProductID:        product.ProductID,
				}
				if id, ok := nm.ShipmentVars[key]; ok {
					terms = append(terms, solver.Term{Var: id, Coefficient: -1})
				}
			}
			name := fmt.Sprintf("flow_balance_%s_%s", wh.FacilityID, product.ProductID)
			nm.Model.AddConstraint(name, solver.SenseEqual, terms, 0)
		}
	}
}

// addProductionBalance adds production == shipped-out at every
// (plant, product). Plants ship to warehouses only.
func (b *ModelBuilder) addProductionBalance(nm *NetworkModel, plants, warehouses []models.Facility, products []models.Product) {
	for _, plant := range plants {
		for _, product := range products {
			prodKey := ProductionKey{FacilityID: plant.FacilityID, ProductID: product.ProductID}
			terms := []solver.Term{{Var: nm.ProductionVars[prodKey], Coefficient: 1}}
			for _, wh := range warehouses {
				key := ShipmentKey{
					OriginFacilityID: plant.FacilityID,
					DestinationID:    wh.FacilityID,
					ProductID:        product.ProductID,
				}
				if id, ok := nm.ShipmentVars[key]; ok {
					terms = append(terms, solver.Term{Var: id, Coefficient: -1})
				}
			}
			name := fmt.Sprintf("prod_balance_%s_%s", plant.FacilityID, product.ProductID)
			nm.Model.AddConstraint(name, solver.SenseEqual, terms, 0)
		}
	}
}

// addDemandCover adds warehouse inflow >= aggregated demand for every
// (customer, product) with positive demand.
func (b *ModelBuilder) addDemandCover(nm *NetworkModel, warehouses []models.Facility, orders []models.CustomerOrder) {
	demand := models.AggregateDemand(orders)
	for key, qty := range demand {
		if qty <= 0 {
			continue
		}
		var terms []solver.Term
		for _, wh := range warehouses {
			shipKey := ShipmentKey{
				OriginFacilityID: wh.FacilityID,
				DestinationID:    key.CustomerID,
				ProductID:        key.ProductID,
			}
			if id, ok := nm.ShipmentVars[shipKey]; ok {
				terms = append(terms, solver.Term{Var: id, Coefficient: 1})
			}
		}
		name := fmt.Sprintf("demand_%s_%s", key.CustomerID, key.ProductID)
		nm.Model.AddConstraint(name, solver.SenseGreaterEqual, terms, qty)
	}
}

// composeObjective sets per-unit production and transportation costs on
// every variable. A shipment variable without a lane cost entry violates
// the construction invariant and aborts the build.
func (b *ModelBuilder) composeObjective(nm *NetworkModel, plants []models.Facility, laneCost map[ShipmentKey]float64) error {
	costByPlant := make(map[string]float64, len(plants))
	for _, plant := range plants {
		costByPlant[plant.FacilityID] = plant.VariableCostPerUnit
	}

	for key, id := range nm.ProductionVars {
		nm.Model.SetObjectiveCoefficient(id, costByPlant[key.FacilityID])
	}

	for key, id := range nm.ShipmentVars {
		cost, ok := laneCost[key]
		if !ok {
			return fmt.Errorf("%w: %s -> %s", apperrors.ErrMissingLaneCost, key.OriginFacilityID, key.DestinationID)
		}
		nm.Model.SetObjectiveCoefficient(id, cost)
	}

	return nil
}

// uniqueCustomers returns customer ids in first-seen order.
func uniqueCustomers(orders []models.CustomerOrder) []string {
	seen := make(map[string]bool)
	var customers []string
	for _, o := range orders {
		if !seen[o.CustomerID] {
			seen[o.CustomerID] = true
			customers = append(customers, o.CustomerID)
		}
	}
	return customers
}
