package http

import (
	"net/http"

	"github.com/MusclesGloves/storefront/internal/catalog"
)

type ProductHandler struct {
	catalog *catalog.Catalog
}

func NewProductHandler(cat *catalog.Catalog) *ProductHandler {
	return &ProductHandler{catalog: cat}
}

// ListProducts refreshes the catalog from the backend. When the refresh
// fails but older snapshots exist, those are served with a warning instead
// of an error page.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Refresh(r.Context())
	if err != nil {
		cached := h.catalog.Products()
		if len(cached) == 0 {
			respondError(w, http.StatusBadGateway, "catalog_unavailable", h.catalog.LastError())
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"products": cached,
			"stale":    true,
			"error":    h.catalog.LastError(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}
