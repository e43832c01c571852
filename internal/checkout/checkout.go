// Package checkout translates cart lines into the storefront provider's
// path-based cart URL.
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/batcstore/batc-storefront/internal/domain"
)

var (
	// ErrNoLineItems means every cart line dropped during resolution; the
	// caller surfaces "no valid products" instead of an empty checkout.
	ErrNoLineItems = errors.New("no resolvable line items")

	ErrNotConfigured = errors.New("storefront domain not configured")
)

// BuildLineItems resolves each line's variant id: the selected variant's
// external id first, else the product's default external reference. Lines
// that resolve to nothing are dropped, not sent as invalid requests.
func BuildLineItems(lines []domain.CartLine) []domain.CheckoutLineItem {
	items := make([]domain.CheckoutLineItem, 0, len(lines))
	for _, line := range lines {
		variantID := line.VariantID()
		if variantID == "" {
			variantID = line.Product.ExternalVariantID
		}
		if variantID == "" {
			continue
		}
		items = append(items, domain.CheckoutLineItem{
			VariantID: variantID,
			Quantity:  line.Quantity,
		})
	}
	return items
}

// URLBuilder builds pre-populated cart URLs on the configured storefront
// domain.
type URLBuilder struct {
	Domain string
}

// CartURL joins "<id>:<quantity>" pairs with commas under /cart/ on the
// storefront domain. Namespaced variant ids
// (gid://shopify/ProductVariant/123) contribute only their trailing
// segment.
func (b URLBuilder) CartURL(items []domain.CheckoutLineItem) (string, error) {
	if b.Domain == "" {
		return "", ErrNotConfigured
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		id := numericID(item.VariantID)
		if id == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d", id, item.Quantity))
	}
	if len(parts) == 0 {
		return "", ErrNoLineItems
	}

	return fmt.Sprintf("https://%s/cart/%s", b.Domain, strings.Join(parts, ",")), nil
}

// numericID strips any namespace prefix, keeping the segment after the
// last slash.
func numericID(variantID string) string {
	if idx := strings.LastIndex(variantID, "/"); idx >= 0 {
		return variantID[idx+1:]
	}
	return variantID
}
