package router

import (
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// requestTimeout bounds how long a handler may hold a database connection.
const requestTimeout = 30 * time.Second

// New creates a new HTTP router with all routes and middleware configured.
// The product catalogue is public; authenticate guards the order and payment routes
// under /api/v1.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	authenticate func(http.Handler) http.Handler,
	allowedOrigins []string,
	m *metrics.Metrics,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// RequestID -> Recovery -> Logging -> Metrics -> CORS, then Authenticate on the order and payment routes
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(allowedOrigins))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAll)
			r.Get("/{id}", productHandler.GetByID)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.PlaceOrder)
				r.With(middleware.RequireAdmin).Get("/", orderHandler.ListAll)
				r.Get("/my-orders", orderHandler.ListMine)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", orderHandler.GetByID)
					r.Delete("/", orderHandler.Delete)
					r.Put("/pay", orderHandler.Pay)
					r.With(middleware.RequireAdmin).Put("/deliver", orderHandler.Deliver)
				})
			})

			r.Route("/payments/razorpay", func(r chi.Router) {
				r.Get("/config", paymentHandler.Config)
				r.Post("/order", paymentHandler.CreateOrder)
			})
		})
	})

	return r
}
