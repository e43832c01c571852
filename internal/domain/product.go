package domain

// Variant is a purchasable sub-option of a product (size, color) with its
// own identity, price and availability.
type Variant struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Available bool   `json:"available"`
	Image     string `json:"image,omitempty"`
}

// Product is one entry in the aggregated catalog. Prices are formatted
// currency strings ("$39.99") because that is what the storefront provider
// hands back and what the site renders.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Images      []string  `json:"images,omitempty"`
	Tags        []string  `json:"tags"`
	Variants    []Variant `json:"variants,omitempty"`

	// External references used only for checkout handoff. A static entry
	// without an ExternalVariantID is local-only (e.g. a pre-order item
	// not backed by the storefront).
	ExternalVariantID string `json:"external_variant_id,omitempty"`
	ExternalProductID string `json:"external_product_id,omitempty"`
}

// LocalOnly reports whether the product has no storefront backing and can
// never reach checkout.
func (p Product) LocalOnly() bool {
	return p.ExternalVariantID == ""
}

// DefaultVariant treats a product with no declared variants as a single
// implicit variant equal to the product itself, so checkout-line
// resolution stays uniform.
func (p Product) DefaultVariant() Variant {
	if len(p.Variants) > 0 {
		return p.Variants[0]
	}
	return Variant{
		ID:        p.ExternalVariantID,
		Title:     p.Name,
		Price:     p.Price,
		Available: true,
		Image:     p.Image,
	}
}
