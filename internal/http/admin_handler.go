package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/MusclesGloves/storefront/internal/api"
	"github.com/MusclesGloves/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// AdminAPI is the slice of the backend client behind the admin surface.
// Routes using it are gated by RequireAdmin.
type AdminAPI interface {
	AllPayments(ctx context.Context) (json.RawMessage, error)
	UpdateProduct(ctx context.Context, id int64, product domain.ProductSnapshot) error
	DeleteProduct(ctx context.Context, id int64) error
}

type AdminHandler struct {
	api AdminAPI
}

func NewAdminHandler(adminAPI AdminAPI) *AdminHandler {
	return &AdminHandler{api: adminAPI}
}

func (h *AdminHandler) AllPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.api.AllPayments(r.Context())
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var product domain.ProductSnapshot
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.api.UpdateProduct(r.Context(), productID, product); err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	if err := h.api.DeleteProduct(r.Context(), productID); err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func respondBackendError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "backend request failed"
		}
		respondError(w, apiErr.Status, "backend_error", msg)
		return
	}
	respondError(w, http.StatusBadGateway, "backend_unreachable", "backend unreachable")
}
