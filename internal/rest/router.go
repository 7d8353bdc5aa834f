package rest

import (
	"net/http"

	"customkeeps/internal/auth"
	"customkeeps/internal/logger"
	"customkeeps/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts every route of the storefront API.
func NewRouter(h *Handler, issuer *auth.Issuer, limiter *middleware.Limiter, corsOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(corsOrigin))
	r.Use(middleware.Auth(issuer))
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Get("/products", h.listProducts)
	if h.Webhook != nil {
		r.Method(http.MethodPost, "/webhook/stripe", h.Webhook)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/cart", h.getCart)
		r.Post("/cart/items", h.addCartItem)
		r.Delete("/cart/items/{id}", h.removeCartItem)

		r.Post("/coupon/preview", h.previewCoupon)
		r.Post("/payment/intent", h.createPaymentIntent)

		r.Post("/orders/commit", h.commitOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Post("/products", h.createProduct)
		r.Patch("/orders/{id}/status", h.updateOrderStatus)
	})

	return r
}
