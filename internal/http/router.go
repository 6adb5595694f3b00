package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	MaxBodySize    int64
	SecureCookies  bool
}

type Handlers struct {
	Cart     *CartHandler
	Customer *CustomerHandler
	Events   *EventsHandler
	Health   *HealthHandler
}

func NewRouter(cfg RouterConfig, h Handlers, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if h.Health != nil {
		r.Get("/health", h.Health.Health)
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.MaxBodySize > 0 {
			r.Use(middleware.RequestSize(cfg.MaxBodySize))
		}
		r.Use(SessionMiddleware(cfg.SecureCookies))

		if h.Cart != nil {
			r.Route("/{countryCode}/cart", func(r chi.Router) {
				r.Post("/", h.Cart.GetOrSetCart)
				r.Post("/line-items", h.Cart.AddItem)
				r.Post("/line-items/bulk", h.Cart.AddItemsBulk)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Post("/", h.Cart.GetOrSetCart)
				r.Patch("/", h.Cart.UpdateCart)
				r.Delete("/line-items", h.Cart.EmptyCart)
				r.Patch("/line-items/{lineID}", h.Cart.UpdateLineItem)
				r.Delete("/line-items/{lineID}", h.Cart.RemoveLineItem)
				r.Post("/promotions", h.Cart.ApplyPromotions)
				r.Post("/shipping-methods", h.Cart.SetShippingMethod)
				r.Post("/payment-sessions", h.Cart.InitiatePaymentSession)
				r.Put("/shipping-address", h.Cart.SetShippingAddress)
				r.Put("/billing-address", h.Cart.SetBillingAddress)
				r.Put("/contact", h.Cart.SetContactDetails)
				r.Post("/complete", h.Cart.PlaceOrder)
				r.Post("/region", h.Cart.UpdateRegion)
				r.Post("/approvals", h.Cart.CreateApproval)
			})
		}

		if h.Customer != nil {
			r.Get("/customer", h.Customer.GetCustomer)
			r.Post("/auth/login", h.Customer.Login)
			r.Post("/auth/logout", h.Customer.Logout)
		}

		if h.Events != nil {
			r.Get("/events", h.Events.ListEvents)
			r.Get("/events/{eventID}", h.Events.GetEvent)
			r.Post("/events/{eventID}/rsvp", h.Events.SubmitRSVP)
		}
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
