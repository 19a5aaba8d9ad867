package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/MusclesGloves/storefront/internal/storage"
)

const ordersCacheKey = "orders-cache"

// OrdersAPI is the slice of the backend client the orders view needs.
type OrdersAPI interface {
	MyPayments(ctx context.Context) (json.RawMessage, error)
}

// OrdersHandler serves the user's order history, falling back to the last
// cached copy when the backend is unreachable.
type OrdersHandler struct {
	api   OrdersAPI
	store storage.Store
}

func NewOrdersHandler(ordersAPI OrdersAPI, store storage.Store) *OrdersHandler {
	return &OrdersHandler{
		api:   ordersAPI,
		store: store,
	}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.api.MyPayments(r.Context())
	if err != nil {
		cached, cacheErr := h.store.Get(r.Context(), ordersCacheKey)
		if cacheErr != nil {
			respondError(w, http.StatusBadGateway, "orders_unavailable", "could not load orders")
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"orders": json.RawMessage(cached),
			"stale":  true,
		})
		return
	}

	if err := h.store.Set(r.Context(), ordersCacheKey, string(orders)); err != nil {
		log.Printf("orders cache write error: %v", err)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}
