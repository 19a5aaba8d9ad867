package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MusclesGloves/storefront/internal/api"
	"github.com/MusclesGloves/storefront/internal/cart"
	"github.com/MusclesGloves/storefront/internal/checkout"
	"github.com/MusclesGloves/storefront/internal/domain"
	"github.com/MusclesGloves/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPayments struct {
	status string
}

func (m *mockPayments) Checkout(context.Context, int64, []api.CheckoutItem) (string, error) {
	return m.status, nil
}

func TestCheckout_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		fill       bool
		payStatus  string
		wantCode   int
		wantResult checkout.Outcome
	}{
		{"empty cart", false, "PAID", http.StatusBadRequest, checkout.OutcomeInvalid},
		{"paid", true, "PAID", http.StatusOK, checkout.OutcomeSuccess},
		{"unknown status", true, "PROCESSING", http.StatusAccepted, checkout.OutcomeUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := cart.NewStore(ctx, storage.NewMemoryStore())
			if tt.fill {
				p := domain.ProductSnapshot{ID: 1, Name: "laptop", Price: 999, Available: true}
				require.Equal(t, "CHANGED", string(store.AddLine(ctx, p)))
			}

			handler := NewCheckoutHandler(checkout.NewCoordinator(store, &mockPayments{status: tt.payStatus}))

			recorder := httptest.NewRecorder()
			handler.Checkout(recorder, httptest.NewRequest("POST", "/checkout", nil))

			assert.Equal(t, tt.wantCode, recorder.Code)
			var res checkout.Result
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&res))
			assert.Equal(t, tt.wantResult, res.Outcome)
		})
	}
}
