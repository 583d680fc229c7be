package models

// Product is a good that can be produced at plants and shipped through
// the network.
type Product struct {
	ProductID string `json:"product_id"`
}
