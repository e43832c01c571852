package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/batcstore/batc-storefront/internal/cart"
	"github.com/batcstore/batc-storefront/internal/domain"
)

// CartService is the slice of the cart service the handlers need.
type CartService interface {
	Cart(ctx context.Context, sessionID string) cart.View
	AddItem(ctx context.Context, sessionID string, product domain.Product, quantity int, variant *domain.Variant) (cart.View, error)
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (cart.View, error)
	RemoveItem(ctx context.Context, sessionID, productID string) cart.View
}

// ProductFinder resolves a product id against the aggregated catalog.
type ProductFinder interface {
	FindProduct(ctx context.Context, productID string) (domain.Product, bool)
}

type CartHandler struct {
	carts    CartService
	products ProductFinder
	timeout  time.Duration
}

func NewCartHandler(carts CartService, products ProductFinder, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// NoticeDTO is the transient notification the page shows after an add.
type NoticeDTO struct {
	Message        string `json:"message"`
	DismissAfterMS int64  `json:"dismiss_after_ms"`
}

type CartResponseDTO struct {
	Cart   cart.View  `json:"cart"`
	Notice *NoticeDTO `json:"notice,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: h.carts.Cart(ctx, sessionID)})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, ok := h.products.FindProduct(ctx, req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "product_not_found", "unknown product")
		return
	}

	var variant *domain.Variant
	if req.VariantID != "" {
		for i := range product.Variants {
			if product.Variants[i].ID == req.VariantID {
				variant = &product.Variants[i]
				break
			}
		}
		if variant == nil {
			respondError(w, http.StatusNotFound, "variant_not_found", "unknown variant for product")
			return
		}
	}

	view, err := h.carts.AddItem(ctx, sessionID, product, req.Quantity, variant)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, CartResponseDTO{
		Cart: view,
		Notice: &NoticeDTO{
			Message:        "Added to cart",
			DismissAfterMS: cart.ToastDismissAfter.Milliseconds(),
		},
	})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	view, err := h.carts.UpdateQuantity(ctx, sessionID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update quantity")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: view})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no cart session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Cart: h.carts.RemoveItem(ctx, sessionID, productID)})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
