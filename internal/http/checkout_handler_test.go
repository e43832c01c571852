package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batcstore/batc-storefront/internal/checkout"
	"github.com/batcstore/batc-storefront/internal/domain"
)

type linesMock struct {
	lines []domain.CartLine
}

func (m linesMock) Lines(context.Context, string) []domain.CartLine {
	return m.lines
}

type activityMock struct {
	url   string
	items int
}

func (m *activityMock) CheckoutCreated(_ context.Context, _, url string, lineItems int) {
	m.url = url
	m.items = lineItems
}

func checkoutRequest(session string) *http.Request {
	request := httptest.NewRequest("POST", "/api/v1/checkout", nil)
	if session != "" {
		request = withSession(request, session)
	}
	return request
}

func TestCreateCheckout_Success(t *testing.T) {
	lines := []domain.CartLine{
		{
			Product:  domain.Product{ID: "tee-01", ExternalVariantID: "gid://shopify/ProductVariant/111"},
			Quantity: 2,
		},
	}
	activity := &activityMock{}
	handler := NewCheckoutHandler(
		linesMock{lines: lines},
		checkout.URLBuilder{Domain: "batc.myshopify.com"},
		activity,
		5*time.Second,
	)

	recorder := httptest.NewRecorder()
	handler.CreateCheckout(recorder, checkoutRequest("s1"))

	require.Equal(t, http.StatusCreated, recorder.Code)
	var resp CheckoutResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "https://batc.myshopify.com/cart/111:2", resp.URL)
	assert.Equal(t, 1, resp.LineItems)
	assert.Equal(t, resp.URL, activity.url)
	assert.Equal(t, 1, activity.items)
}

func TestCreateCheckout_EmptyCart(t *testing.T) {
	handler := NewCheckoutHandler(
		linesMock{},
		checkout.URLBuilder{Domain: "batc.myshopify.com"},
		nil,
		5*time.Second,
	)

	recorder := httptest.NewRecorder()
	handler.CreateCheckout(recorder, checkoutRequest("s1"))

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestCreateCheckout_AllLinesUnresolvable(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: "pack-01"}, Quantity: 1},
	}
	handler := NewCheckoutHandler(
		linesMock{lines: lines},
		checkout.URLBuilder{Domain: "batc.myshopify.com"},
		nil,
		5*time.Second,
	)

	recorder := httptest.NewRecorder()
	handler.CreateCheckout(recorder, checkoutRequest("s1"))

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "no_valid_products", resp.Code)
}

func TestCreateCheckout_DomainNotConfigured(t *testing.T) {
	lines := []domain.CartLine{
		{
			Product:  domain.Product{ID: "tee-01", ExternalVariantID: "gid://shopify/ProductVariant/111"},
			Quantity: 1,
		},
	}
	handler := NewCheckoutHandler(linesMock{lines: lines}, checkout.URLBuilder{}, nil, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.CreateCheckout(recorder, checkoutRequest("s1"))

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
}

func TestCreateCheckout_NoSession(t *testing.T) {
	handler := NewCheckoutHandler(linesMock{}, checkout.URLBuilder{Domain: "x"}, nil, 5*time.Second)

	recorder := httptest.NewRecorder()
	handler.CreateCheckout(recorder, checkoutRequest(""))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
