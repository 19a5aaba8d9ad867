package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", 5*time.Second)
}

func TestClient_Products(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":1,"name":"laptop","price":999.5,"stockQuantity":3,"productAvailable":true},
			{"id":2,"name":"cable","price":9.5,"stockQuantity":null,"productAvailable":true}
		]`))
	})

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, int64(1), products[0].ID)
	require.NotNil(t, products[0].StockQuantity)
	assert.Equal(t, 3, *products[0].StockQuantity)

	// null stock normalizes to an unbounded ceiling.
	assert.Nil(t, products[1].StockQuantity)
	_, bounded := products[1].Ceiling()
	assert.False(t, bounded)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	})
	client.SetTokenSource(func() string { return "T1" })

	_, err := client.Products(context.Background())
	require.NoError(t, err)
}

func TestClient_MeUsesExplicitToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/me", r.URL.Path)
		assert.Equal(t, "Bearer issued-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"username":"alice","roles":["ROLE_ADMIN","USER"]}`))
	})
	client.SetTokenSource(func() string { return "current-token" })

	ident, err := client.Me(context.Background(), "issued-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, []string{"ROLE_ADMIN", "USER"}, ident.Roles)
}

func TestClient_LoginReturnsToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var creds map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds["username"])
		assert.Equal(t, "hunter2", creds["password"])

		w.Write([]byte(`{"token":"T1"}`))
	})

	token, err := client.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}

func TestClient_LoginFailureCarriesServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad credentials"}`))
	})

	_, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "bad credentials", apiErr.Message)
}

func TestClient_CheckoutPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/checkout", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(1049), req["amount"])
		items := req["items"].([]interface{})
		require.Len(t, items, 1)
		item := items[0].(map[string]interface{})
		assert.Equal(t, float64(1), item["productId"])
		assert.Equal(t, float64(2), item["quantity"])

		w.Write([]byte(`{"status":"PAID"}`))
	})

	status, err := client.Checkout(context.Background(), 1049, []CheckoutItem{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, "PAID", status)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := client.Products(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
}
