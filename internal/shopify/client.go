// Package shopify talks to the storefront provider's product feed and
// maps its wire shape onto the internal catalog model.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/batcstore/batc-storefront/internal/domain"
)

const (
	// Defaults applied during mapping; the provider supplies neither a
	// category nor a guaranteed image.
	defaultCategory    = "Apparel"
	defaultDescription = "Premium Bantu Ants apparel."
	placeholderImage   = "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?auto=format&fit=crop&q=80&w=800"
)

type Client struct {
	productsURL string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[[]domain.Product]
}

func NewClient(productsURL string) *Client {
	return &Client{
		productsURL: productsURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]domain.Product](gobreaker.Settings{
			Name:    "shopify-products",
			Timeout: 30 * time.Second,
		}),
	}
}

// Wire shapes of the provider feed: a list of edges, GraphQL style.
type productEdge struct {
	Node providerProduct `json:"node"`
}

type providerProduct struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Handle      string `json:"handle"`
	Images      struct {
		Edges []struct {
			Node struct {
				Src     string `json:"src"`
				AltText string `json:"altText"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node providerVariant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type providerVariant struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Available *bool  `json:"available"`
	Image     *struct {
		Src string `json:"src"`
	} `json:"image"`
}

// FetchProducts makes a single round trip to the provider feed. No retry:
// a stale or empty catalog is cheap, so the caller just renders without
// live products. The breaker only stops hammering a dead provider across
// consecutive page loads.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	return c.breaker.Execute(func() ([]domain.Product, error) {
		return c.fetch(ctx)
	})
}

func (c *Client) fetch(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.productsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build products request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("products request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("products request failed: status %d", resp.StatusCode)
	}

	var edges []productEdge
	if err := json.NewDecoder(resp.Body).Decode(&edges); err != nil {
		return nil, fmt.Errorf("decode products response: %w", err)
	}

	products := make([]domain.Product, 0, len(edges))
	for _, edge := range edges {
		products = append(products, mapProduct(edge.Node))
	}
	return products, nil
}

func mapProduct(p providerProduct) domain.Product {
	product := domain.Product{
		ID:                p.ID,
		Name:              p.Title,
		Price:             "$0",
		Category:          defaultCategory,
		Description:       p.Description,
		Image:             placeholderImage,
		Tags:              []string{"Available Now"},
		ExternalProductID: p.ID,
	}
	if product.Description == "" {
		product.Description = defaultDescription
	}

	for _, img := range p.Images.Edges {
		product.Images = append(product.Images, img.Node.Src)
	}
	if len(product.Images) > 0 {
		product.Image = product.Images[0]
	}

	for _, v := range p.Variants.Edges {
		variant := domain.Variant{
			ID:        v.Node.ID,
			Title:     v.Node.Title,
			Price:     "$" + priceOrZero(v.Node.Price),
			Available: v.Node.Available == nil || *v.Node.Available,
		}
		if v.Node.Image != nil {
			variant.Image = v.Node.Image.Src
		}
		product.Variants = append(product.Variants, variant)
	}

	// A product with zero variants still renders: "$0" base price and no
	// checkout reference.
	if len(product.Variants) > 0 {
		product.Price = product.Variants[0].Price
		product.ExternalVariantID = product.Variants[0].ID
	}

	return product
}

func priceOrZero(price string) string {
	if price == "" {
		return "0"
	}
	return price
}
