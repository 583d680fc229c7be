// Package models contains domain types for the supply chain optimization service.
package models

// Facility type constants.
const (
	FacilityTypePlant     = "Plant"
	FacilityTypeWarehouse = "Warehouse"
)

// Facility is a node in the supply chain network: a plant that produces
// goods or a warehouse that cross-docks them.
type Facility struct {
	FacilityID          string  `json:"facility_id"`
	FacilityType        string  `json:"facility_type"`
	CapacityUnits       float64 `json:"capacity_units"`
	VariableCostPerUnit float64 `json:"variable_cost_per_unit"`
}

// IsPlant reports whether the facility produces goods.
func (f *Facility) IsPlant() bool {
	return f.FacilityType == FacilityTypePlant
}

// IsWarehouse reports whether the facility is an intermediate node.
func (f *Facility) IsWarehouse() bool {
	return f.FacilityType == FacilityTypeWarehouse
}
