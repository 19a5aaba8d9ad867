package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MusclesGloves/storefront/internal/cart"
	"github.com/MusclesGloves/storefront/internal/catalog"
	"github.com/MusclesGloves/storefront/internal/domain"
	"github.com/MusclesGloves/storefront/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProducts []domain.ProductSnapshot

func (s staticProducts) Products(context.Context) ([]domain.ProductSnapshot, error) {
	return s, nil
}

func intPtr(n int) *int { return &n }

func setupCartHandler(t *testing.T, products ...domain.ProductSnapshot) (*CartHandler, *cart.Store) {
	t.Helper()
	cat := catalog.New(staticProducts(products))
	_, err := cat.Refresh(context.Background())
	require.NoError(t, err)

	store := cart.NewStore(context.Background(), storage.NewMemoryStore())
	return NewCartHandler(store, cat), store
}

func cartRouter(h *CartHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/cart", h.GetCart)
	r.Delete("/cart", h.ClearCart)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/{product_id}", h.UpdateQuantity)
	r.Delete("/cart/items/{product_id}", h.RemoveItem)
	return r
}

func TestAddItem_Success(t *testing.T) {
	h, store := setupCartHandler(t, domain.ProductSnapshot{
		ID: 1, Name: "laptop", Price: 999, StockQuantity: intPtr(2), Available: true,
	})
	router := cartRouter(h)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/cart/items", bytes.NewBufferString(`{"product_id":1}`))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)

	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "CHANGED", resp.Outcome)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1, resp.Items[0].Quantity)
	assert.Equal(t, float64(999), resp.Total)
	require.Len(t, store.Lines(), 1)
}

func TestAddItem_OutOfStockConflict(t *testing.T) {
	h, store := setupCartHandler(t, domain.ProductSnapshot{
		ID: 1, Name: "laptop", Price: 999, StockQuantity: intPtr(0), Available: true,
	})
	router := cartRouter(h)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/cart/items", bytes.NewBufferString(`{"product_id":1}`))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Empty(t, store.Lines())
}

func TestAddItem_UnknownProduct(t *testing.T) {
	h, _ := setupCartHandler(t)
	router := cartRouter(h)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/cart/items", bytes.NewBufferString(`{"product_id":7}`))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAddItem_AtLimitReportsTag(t *testing.T) {
	h, _ := setupCartHandler(t, domain.ProductSnapshot{
		ID: 1, Name: "laptop", Price: 999, StockQuantity: intPtr(1), Available: true,
	})
	router := cartRouter(h)

	for _, want := range []struct {
		code    int
		outcome string
	}{
		{http.StatusCreated, "CHANGED"},
		{http.StatusOK, "AT_LIMIT"},
	} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/cart/items", bytes.NewBufferString(`{"product_id":1}`))
		router.ServeHTTP(recorder, request)

		assert.Equal(t, want.code, recorder.Code)
		var resp CartResponseDTO
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, want.outcome, resp.Outcome)
	}
}

func TestUpdateQuantity_RejectsBadInput(t *testing.T) {
	h, _ := setupCartHandler(t, domain.ProductSnapshot{
		ID: 1, Name: "laptop", Price: 999, StockQuantity: intPtr(5), Available: true,
	})
	router := cartRouter(h)

	for _, body := range []string{`{"quantity":0}`, `{"quantity":-3}`, `not json`} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("PUT", "/cart/items/1", bytes.NewBufferString(body))
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "body %q", body)
	}
}

func TestUpdateQuantity_FlowAndNotFound(t *testing.T) {
	h, store := setupCartHandler(t, domain.ProductSnapshot{
		ID: 1, Name: "laptop", Price: 999, StockQuantity: intPtr(5), Available: true,
	})
	router := cartRouter(h)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/cart/items", bytes.NewBufferString(`{"product_id":1}`))
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest("PUT", "/cart/items/1", bytes.NewBufferString(`{"quantity":3}`))
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 3, store.Lines()[0].Quantity)

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest("PUT", "/cart/items/42", bytes.NewBufferString(`{"quantity":3}`))
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRemoveAndClear(t *testing.T) {
	h, store := setupCartHandler(t,
		domain.ProductSnapshot{ID: 1, Name: "laptop", Price: 999, StockQuantity: intPtr(5), Available: true},
		domain.ProductSnapshot{ID: 2, Name: "cable", Price: 9, StockQuantity: nil, Available: true},
	)
	router := cartRouter(h)

	for _, id := range []string{`{"product_id":1}`, `{"product_id":2}`} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/cart/items", bytes.NewBufferString(id))
		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("DELETE", "/cart/items/1", nil)
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, store.Lines(), 1)
	assert.Equal(t, int64(2), store.Lines()[0].ID)

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest("DELETE", "/cart", nil)
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, store.Lines())
}
