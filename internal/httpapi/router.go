// Package httpapi exposes the cart, checkout, and order core over a JSON
// HTTP API for the storefront frontend.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	JWTSecret      string
	RequestTimeout time.Duration
}

func NewRouter(
	cfg RouterConfig,
	carts *CartHandler,
	checkouts *CheckoutHandler,
	orders *OrdersHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(Metrics)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Auth(cfg.JWTSecret))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Delete("/", carts.ClearCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{item_id}", carts.UpdateQuantity)
			r.Delete("/items/{item_id}", carts.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkouts.GetSession)
			r.Put("/shipping", checkouts.SetShipping)
			r.Put("/billing", checkouts.SetBilling)
			r.Put("/same-address", checkouts.SetSameAddress)
			r.Put("/payment", checkouts.SetPayment)
			r.Post("/advance", checkouts.Advance)
			r.Post("/back", checkouts.Retreat)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.Submit)
			r.Get("/", orders.ListOrders)
			r.Get("/{id}", orders.GetOrder)
		})
	})

	return r
}
