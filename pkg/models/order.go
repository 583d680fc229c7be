package models

// CustomerOrder is a single order line. Orders are aggregated by
// (customer, product) into demand before model construction.
type CustomerOrder struct {
	CustomerID      string  `json:"customer_id"`
	ProductID       string  `json:"product_id"`
	QuantityOrdered float64 `json:"quantity_ordered"`
}

// DemandKey identifies an aggregated demand entry.
type DemandKey struct {
	CustomerID string
	ProductID  string
}

// AggregateDemand sums order quantities by (customer, product).
func AggregateDemand(orders []CustomerOrder) map[DemandKey]float64 {
	demand := make(map[DemandKey]float64)
	for _, o := range orders {
		demand[DemandKey{CustomerID: o.CustomerID, ProductID: o.ProductID}] += o.QuantityOrdered
	}
	return demand
}
