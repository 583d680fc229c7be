package models

// Lane is a directed transportation link between an origin facility and a
// destination (facility or customer). (origin, destination) pairs are not
// required to be unique in the reference data; the first row in table
// order wins for cost lookup.
type Lane struct {
	OriginFacilityID string  `json:"origin_facility_id"`
	DestinationID    string  `json:"destination_id"`
	CostPerUnit      float64 `json:"cost_per_unit"`
}
