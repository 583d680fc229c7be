package models

// OptimalShipment is a solved shipment quantity on one lane for one
// product. Rows are append-only and scoped to a run.
type OptimalShipment struct {
	RunID            string  `json:"-"`
	OriginFacilityID string  `json:"origin_facility_id"`
	DestinationID    string  `json:"destination_id"`
	ProductID        string  `json:"product_id"`
	QuantityShipped  float64 `json:"quantity_shipped"`
}

// OptimalProduction is a solved production quantity at one plant for one
// product. Rows are append-only and scoped to a run.
type OptimalProduction struct {
	RunID            string  `json:"-"`
	FacilityID       string  `json:"facility_id"`
	ProductID        string  `json:"product_id"`
	QuantityProduced float64 `json:"quantity_produced"`
}

// OptimizationResult is the aggregate served for a single run: the run
// record plus all of its result rows.
type OptimizationResult struct {
	RunDetails OptimizationRun     `json:"run_details"`
	Shipments  []OptimalShipment   `json:"shipments"`
	Production []OptimalProduction `json:"production"`
}
