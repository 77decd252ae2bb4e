package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eldenfruit/storefront/internal/catalog"
	"github.com/eldenfruit/storefront/internal/notify"
	"github.com/eldenfruit/storefront/internal/service"
	"github.com/eldenfruit/storefront/internal/session"
	"github.com/eldenfruit/storefront/pkg/health"
	"github.com/eldenfruit/storefront/pkg/middleware"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Cart       *service.CartService
	Catalog    *catalog.Catalog
	Sessions   *session.Manager
	Feed       *notify.Feed
	Health     *health.Handler
	Logger     *slog.Logger
	CORS       middleware.CORSConfig
	RateLimit  middleware.RateLimitConfig
	PprofCIDRs []string
	// CatalogMaxAge is the Cache-Control max-age for product responses, in seconds.
	CatalogMaxAge int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.Customer(cfg.Sessions.CustomerID))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	cartHandler := NewCartHandler(cfg.Cart, logger)
	productHandler := NewProductHandler(cfg.Catalog, logger)
	sessionHandler := NewSessionHandler(cfg.Sessions, logger)
	notificationHandler := NewNotificationHandler(cfg.Feed)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, logger))
		r.Use(ContentTypeJSON)

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
			r.Post("/items/{productId}/increment", cartHandler.IncrementItem)
			r.Post("/items/{productId}/decrement", cartHandler.DecrementItem)

			r.Post("/promo", cartHandler.ApplyPromo)
			r.Delete("/promo", cartHandler.ClearPromo)

			r.Get("/quote", cartHandler.GetQuote)
			r.Post("/checkout", cartHandler.Checkout)
			r.Post("/confirmations/{id}", cartHandler.Confirm)
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/", productHandler.ListProducts)
			r.Get("/{id}", productHandler.GetProduct)
		})

		r.With(middleware.NoStore).Get("/notifications", notificationHandler.ListNotifications)

		r.Route("/session", func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Get("/", sessionHandler.GetSession)
			r.Put("/", sessionHandler.SignIn)
			r.Delete("/", sessionHandler.SignOut)
		})
	})

	return r
}
