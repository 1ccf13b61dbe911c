package api

import (
	"net/http"
	"time"

	"shopify-quantity-rules/internal/application"
	"shopify-quantity-rules/internal/infrastructure/middleware"
	shopifyinfra "shopify-quantity-rules/internal/infrastructure/shopify"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

const defaultRequestTimeout = 30 * time.Second

// Services are the application services the router exposes
type Services struct {
	Rules         *application.RuleService
	Settings      *application.SettingsService
	Carts         *application.CartValidationService
	Products      *application.ProductService
	PrepShipments *application.PrepShipmentService
	Billing       *application.BillingService
	OAuth         *application.OAuthService
	Webhooks      *application.WebhookService
}

// RouterOptions configures the HTTP surface
type RouterOptions struct {
	WebhookVerifier *shopifyinfra.WebhookVerifier
	FrontendURL     string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	SwaggerFile     string
	ReadinessChecks map[string]Pinger
}

// NewRouter creates a new chi router with all routes and middleware configured
func NewRouter(svc Services, opts RouterOptions, logger zerolog.Logger) chi.Router {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.SwaggerFile == "" {
		opts.SwaggerFile = "./docs/swagger.json"
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AuditLoggingMiddleware(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.InputValidationMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(chimiddleware.Timeout(opts.RequestTimeout))

	// Initialize handlers
	health := NewHealthHandler(opts.ReadinessChecks, logger)
	auth := NewAuthHandler(svc.OAuth, logger)
	rules := NewRuleHandler(svc.Rules, logger)
	settings := NewSettingsHandler(svc.Settings, logger)
	carts := NewCartHandler(svc.Carts, logger)
	products := NewProductHandler(svc.Products, logger)
	shipments := NewPrepShipmentHandler(svc.PrepShipments, logger)
	billing := NewBillingHandler(svc.Billing, opts.FrontendURL, logger)
	webhooks := NewWebhookHandler(opts.WebhookVerifier, svc.Webhooks, logger)

	// Public routes
	r.Get("/health", health.HandleHealth)
	r.Get("/ready", health.HandleReady)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, opts.SwaggerFile)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// OAuth routes
	r.Get("/auth", auth.Begin)
	r.Get("/auth/shopify", auth.Begin)
	r.Get("/auth/callback", auth.Callback)

	r.Route("/api", func(r chi.Router) {
		// Storefront checkout path, never gated
		r.Post("/validate-cart", carts.Validate)

		r.Route("/billing", func(r chi.Router) {
			r.Get("/subscribe", billing.Subscribe)
			r.Get("/status", billing.Status)
			r.Post("/cancel", billing.Cancel)
			r.Get("/callback", billing.Callback)
		})

		// Admin routes require a trial or an active subscription
		r.Group(func(r chi.Router) {
			r.Use(middleware.BillingGate(svc.Billing, logger))

			r.Get("/rules", rules.List)
			r.Post("/rules", rules.Create)
			r.Put("/rules/{id}", rules.Update)
			r.Delete("/rules/{id}", rules.Delete)

			r.Get("/settings", settings.Get)
			r.Put("/settings", settings.Update)

			r.Get("/products/search", products.Search)

			r.Get("/prep-shipments", shipments.List)
			r.Post("/prep-shipments", shipments.Create)
			r.Put("/prep-shipments/{id}", shipments.Update)
			r.Delete("/prep-shipments/{id}", shipments.Delete)
		})
	})

	// Webhook endpoints: POST /webhooks/{topic}
	for _, topic := range WebhookTopics {
		r.Post("/webhooks/"+topic, webhooks.Handle(topic))
	}

	return r
}
