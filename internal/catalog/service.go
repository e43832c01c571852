package catalog

import (
	"context"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/batcstore/batc-storefront/internal/domain"
)

// StaticSource lists the compile-time product set (here: the seeded
// SQLite catalog).
type StaticSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// DynamicSource fetches live products from the storefront provider.
type DynamicSource interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

// Catalog is the aggregated view served to the page. Live is false when
// the dynamic fetch failed and only static products are shown.
type Catalog struct {
	Products []domain.Product `json:"products"`
	Live     bool             `json:"live"`
}

type Service struct {
	static  StaticSource
	dynamic DynamicSource
	sfg     singleflight.Group // Collapses concurrent provider fetches
}

func NewService(static StaticSource, dynamic DynamicSource) *Service {
	return &Service{
		static:  static,
		dynamic: dynamic,
	}
}

// Catalog merges both sources. Either source failing degrades to the
// other; nothing here is fatal to the page.
func (s *Service) Catalog(ctx context.Context) Catalog {
	static, err := s.static.ListProducts(ctx)
	if err != nil {
		log.Printf("static catalog unavailable: %v", err)
		static = nil
	}

	live := true
	v, errFetch, _ := s.sfg.Do("products", func() (interface{}, error) {
		return s.dynamic.FetchProducts(ctx)
	})
	var dynamic []domain.Product
	if errFetch != nil {
		log.Printf("live products unavailable: %v", errFetch)
		live = false
	} else {
		dynamic = v.([]domain.Product)
	}

	return Catalog{
		Products: Aggregate(static, dynamic),
		Live:     live,
	}
}

// FindProduct looks up one product by id in the current aggregated view.
func (s *Service) FindProduct(ctx context.Context, productID string) (domain.Product, bool) {
	for _, p := range s.Catalog(ctx).Products {
		if p.ID == productID {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Aggregate returns the static entries that carry no external variant
// reference (local-only products such as pre-orders) followed by every
// dynamic entry. Static entries with an external reference are superseded
// by the live fetch and excluded to avoid duplication.
func Aggregate(static, dynamic []domain.Product) []domain.Product {
	merged := make([]domain.Product, 0, len(static)+len(dynamic))
	for _, p := range static {
		if p.LocalOnly() {
			merged = append(merged, p)
		}
	}
	return append(merged, dynamic...)
}
