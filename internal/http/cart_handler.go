package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/MusclesGloves/storefront/internal/cart"
	"github.com/MusclesGloves/storefront/internal/catalog"
	"github.com/MusclesGloves/storefront/internal/domain"
	"github.com/MusclesGloves/storefront/internal/stock"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cart    *cart.Store
	catalog *catalog.Catalog
}

func NewCartHandler(cartStore *cart.Store, cat *catalog.Catalog) *CartHandler {
	return &CartHandler{
		cart:    cartStore,
		catalog: cat,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items   []domain.CartLine `json:"items"`
	Total   float64           `json:"total"`
	Outcome string            `json:"outcome,omitempty"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_product", "product not in catalog, refresh first")
		return
	}

	outcome := h.cart.AddLine(r.Context(), product)
	h.respondOutcome(w, outcome, http.StatusCreated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 1 {
		// Bad numeric input is rejected here, not clamped into the cart.
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	outcome, err := h.cart.SetQuantity(r.Context(), productID, req.Quantity)
	if errors.Is(err, cart.ErrLineNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "product not in cart")
		return
	}
	h.respondOutcome(w, outcome, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	h.cart.RemoveLine(r.Context(), productID)
	respondJSON(w, http.StatusOK, h.cartDTO(""))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartDTO(""))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	respondJSON(w, http.StatusOK, h.cartDTO(""))
}

// respondOutcome maps the quantity outcome to a status code and echoes the
// tag so the UI can render precise feedback.
func (h *CartHandler) respondOutcome(w http.ResponseWriter, outcome stock.Outcome, okStatus int) {
	status := okStatus
	switch outcome {
	case stock.OutcomeBlockedOutOfStock:
		status = http.StatusConflict
	case stock.OutcomeAtLimit, stock.OutcomeAtFloor:
		status = http.StatusOK
	}
	respondJSON(w, status, h.cartDTO(outcome.String()))
}

func (h *CartHandler) cartDTO(outcome string) CartResponseDTO {
	lines := h.cart.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return CartResponseDTO{
		Items:   lines,
		Total:   h.cart.Total(),
		Outcome: outcome,
	}
}
