package http

import (
	"context"
	"net/http"
	"time"

	"github.com/batcstore/batc-storefront/internal/catalog"
)

type CatalogService interface {
	Catalog(ctx context.Context) catalog.Catalog
}

type CatalogHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewCatalogHandler(svc CatalogService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: svc,
		timeout: timeout,
	}
}

// ListProducts serves the aggregated catalog. A failed provider fetch
// shows up as live:false with the static products still present, never as
// an error status.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, h.catalog.Catalog(ctx))
}
