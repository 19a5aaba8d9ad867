package http

import (
	"net/http"
	"time"

	"github.com/MusclesGloves/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth     *AuthHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Products *ProductHandler
	Orders   *OrdersHandler
	Admin    *AdminHandler
	Prefs    *PrefsHandler
}

// NewRouter assembles the storefront surface. Cart, checkout and orders
// need a session; the admin routes additionally need the ADMIN role.
func NewRouter(h Handlers, sessions *session.Resolver, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/login", h.Auth.Login)
	r.Post("/register", h.Auth.Register)
	r.Post("/logout", h.Auth.Logout)
	r.Get("/session", h.Auth.Session)

	r.Get("/products", h.Products.ListProducts)

	r.Get("/prefs/theme", h.Prefs.GetTheme)
	r.Put("/prefs/theme", h.Prefs.SetTheme)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(sessions))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
		})

		r.Post("/checkout", h.Checkout.Checkout)
		r.Get("/orders", h.Orders.ListOrders)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(sessions))

		r.Get("/admin/payments", h.Admin.AllPayments)
		r.Put("/admin/products/{product_id}", h.Admin.UpdateProduct)
		r.Delete("/admin/products/{product_id}", h.Admin.DeleteProduct)
	})

	return r
}
