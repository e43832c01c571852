package domain

import "time"

// CartLine is one row in a cart: a product, an optional selected variant
// and a positive quantity. At most one line exists per distinct
// (product id, variant id or absence) pair.
type CartLine struct {
	Product  Product  `json:"product"`
	Variant  *Variant `json:"variant,omitempty"`
	Quantity int      `json:"quantity"`
}

// VariantID returns the selected variant's id, or "" when the line was
// added without a variant.
func (l CartLine) VariantID() string {
	if l.Variant == nil {
		return ""
	}
	return l.Variant.ID
}

// UnitPrice is the variant price when a variant is selected, else the
// product base price.
func (l CartLine) UnitPrice() string {
	if l.Variant != nil {
		return l.Variant.Price
	}
	return l.Product.Price
}

// CartSnapshot is the persisted form of a cart: the ordered lines plus the
// capture time used for the staleness check.
type CartSnapshot struct {
	Lines     []CartLine `json:"lines"`
	Timestamp time.Time  `json:"timestamp"`
}

// CheckoutLineItem is a (variant id, quantity) pair derived from a
// CartLine for submission to the storefront provider.
type CheckoutLineItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}
