package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MusclesGloves/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Error is a non-2xx backend response, carrying the server-provided
// message when the body had one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Client talks to the storefront backend under its /api base path. A bearer
// token from the token source is attached to every request once set.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   func() string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		token: func() string { return "" },
	}
}

// SetTokenSource wires the session's current token into outgoing requests.
// Set once during startup, before the client is shared.
func (c *Client) SetTokenSource(token func() string) {
	c.token = token
}

func (c *Client) Products(ctx context.Context) ([]domain.ProductSnapshot, error) {
	var products []domain.ProductSnapshot
	if err := c.do(ctx, http.MethodGet, "/products", c.token(), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Me revalidates the given token. The token is explicit rather than taken
// from the token source: the session resolver fences each revalidation by
// the token it was issued for.
func (c *Client) Me(ctx context.Context, token string) (domain.Identity, error) {
	var ident domain.Identity
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &ident); err != nil {
		return domain.Identity{}, err
	}
	return ident, nil
}

type loginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

type tokenDTO struct {
	Token string `json:"token"`
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp tokenDTO
	body := loginRequestDTO{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, username, password string, admin bool) (string, error) {
	var resp tokenDTO
	body := registerRequestDTO{Username: username, Password: password, Admin: admin}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

type CheckoutItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type checkoutRequestDTO struct {
	Amount int64          `json:"amount"`
	Items  []CheckoutItem `json:"items"`
}

type checkoutResponseDTO struct {
	Status string `json:"status"`
}

// Checkout submits the payment request and returns the backend's terminal
// status string. Interpreting the status is the coordinator's job.
func (c *Client) Checkout(ctx context.Context, amount int64, items []CheckoutItem) (string, error) {
	var resp checkoutResponseDTO
	body := checkoutRequestDTO{Amount: amount, Items: items}
	if err := c.do(ctx, http.MethodPost, "/payments/checkout", c.token(), body, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) MyPayments(ctx context.Context) (json.RawMessage, error) {
	var payments json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/payments/my", c.token(), nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (c *Client) AllPayments(ctx context.Context) (json.RawMessage, error) {
	var payments json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/payments/all", c.token(), nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, product domain.ProductSnapshot) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/product/%d", id), c.token(), product, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/product/%d", id), c.token(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: serverMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response failed: %w", method, path, err)
	}
	return nil
}

// serverMessage pulls the {"error": "..."} message out of a failure body,
// or "" when there is none.
func serverMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Error
}
