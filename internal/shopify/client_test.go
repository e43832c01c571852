package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedPayload = `[
  {
    "node": {
      "id": "gid://shopify/Product/9857413284136",
      "title": "Boma Ye Tee",
      "description": "Tribute tee.",
      "handle": "boma-ye-tee",
      "images": {"edges": [
        {"node": {"src": "https://cdn.example/tee-front.jpg"}},
        {"node": {"src": "https://cdn.example/tee-back.jpg"}}
      ]},
      "variants": {"edges": [
        {"node": {"id": "gid://shopify/ProductVariant/50848331989288", "title": "S", "price": "39.99"}},
        {"node": {"id": "gid://shopify/ProductVariant/50848331989289", "title": "M", "price": "41.99", "available": false, "image": {"src": "https://cdn.example/tee-m.jpg"}}}
      ]}
    }
  },
  {
    "node": {
      "id": "gid://shopify/Product/111",
      "title": "Mystery Drop",
      "description": "",
      "handle": "mystery",
      "images": {"edges": []},
      "variants": {"edges": []}
    }
  }
]`

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestFetchProducts_MapsProviderShape(t *testing.T) {
	srv := feedServer(t, http.StatusOK, feedPayload)
	defer srv.Close()

	client := NewClient(srv.URL)
	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	tee := products[0]
	assert.Equal(t, "gid://shopify/Product/9857413284136", tee.ID)
	assert.Equal(t, "Boma Ye Tee", tee.Name)
	assert.Equal(t, "$39.99", tee.Price)
	assert.Equal(t, "Apparel", tee.Category)
	assert.Equal(t, "Tribute tee.", tee.Description)
	assert.Equal(t, "https://cdn.example/tee-front.jpg", tee.Image)
	assert.Equal(t, []string{"https://cdn.example/tee-front.jpg", "https://cdn.example/tee-back.jpg"}, tee.Images)
	assert.Equal(t, []string{"Available Now"}, tee.Tags)
	assert.Equal(t, "gid://shopify/ProductVariant/50848331989288", tee.ExternalVariantID)
	assert.Equal(t, tee.ID, tee.ExternalProductID)

	require.Len(t, tee.Variants, 2)
	assert.True(t, tee.Variants[0].Available)
	assert.False(t, tee.Variants[1].Available)
	assert.Equal(t, "$41.99", tee.Variants[1].Price)
	assert.Equal(t, "https://cdn.example/tee-m.jpg", tee.Variants[1].Image)
}

func TestFetchProducts_ZeroVariantsFallsBackToZeroPrice(t *testing.T) {
	srv := feedServer(t, http.StatusOK, feedPayload)
	defer srv.Close()

	client := NewClient(srv.URL)
	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	mystery := products[1]
	assert.Equal(t, "$0", mystery.Price)
	assert.Empty(t, mystery.Variants)
	assert.Equal(t, "", mystery.ExternalVariantID)
	assert.Equal(t, placeholderImage, mystery.Image)
	assert.Equal(t, defaultDescription, mystery.Description)
}

func TestFetchProducts_ServerError(t *testing.T) {
	srv := feedServer(t, http.StatusBadGateway, "")
	defer srv.Close()

	client := NewClient(srv.URL)
	products, err := client.FetchProducts(context.Background())
	assert.Error(t, err)
	assert.Nil(t, products)
}

func TestFetchProducts_MalformedBody(t *testing.T) {
	srv := feedServer(t, http.StatusOK, "{not json")
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.FetchProducts(context.Background())
	assert.Error(t, err)
}

func TestFetchProducts_EmptyFeed(t *testing.T) {
	srv := feedServer(t, http.StatusOK, "[]")
	defer srv.Close()

	client := NewClient(srv.URL)
	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}
