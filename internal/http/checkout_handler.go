package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/batcstore/batc-storefront/internal/checkout"
	"github.com/batcstore/batc-storefront/internal/domain"
)

// CartLines provides the session's current lines for handoff.
type CartLines interface {
	Lines(ctx context.Context, sessionID string) []domain.CartLine
}

// ActivitySink receives best-effort analytics events.
type ActivitySink interface {
	CheckoutCreated(ctx context.Context, sessionID, url string, lineItems int)
}

type CheckoutHandler struct {
	carts    CartLines
	builder  checkout.URLBuilder
	activity ActivitySink
	timeout  time.Duration
}

func NewCheckoutHandler(carts CartLines, builder checkout.URLBuilder, activity ActivitySink, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		builder:  builder,
		activity: activity,
		timeout:  timeout,
	}
}

type CheckoutResponseDTO struct {
	URL       string `json:"url"`
	LineItems int    `json:"line_items"`
}

// CreateCheckout turns the session's cart into a storefront cart URL. The
// cart itself is never touched here, so the user can always retry.
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	lines := h.carts.Lines(ctx, sessionID)
	if len(lines) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart is empty")
		return
	}

	items := checkout.BuildLineItems(lines)
	url, err := h.builder.CartURL(items)
	if err != nil {
		if errors.Is(err, checkout.ErrNoLineItems) {
			respondError(w, http.StatusUnprocessableEntity, "no_valid_products", "no valid products in cart")
			return
		}
		respondError(w, http.StatusBadGateway, "checkout_failed", "unable to create checkout")
		return
	}

	if h.activity != nil {
		h.activity.CheckoutCreated(ctx, sessionID, url, len(items))
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		URL:       url,
		LineItems: len(items),
	})
}
