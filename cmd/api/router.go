package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/checkout-pricing/internal/catalog"
	"github.com/noah-isme/checkout-pricing/internal/checkout"
	"github.com/noah-isme/checkout-pricing/internal/config"
	"github.com/noah-isme/checkout-pricing/internal/health"
	"github.com/noah-isme/checkout-pricing/internal/obs"
	"github.com/noah-isme/checkout-pricing/internal/ratelimit"
	"github.com/noah-isme/checkout-pricing/internal/security"
)

type routerDeps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Service *checkout.Service
	Limiter ratelimit.Limiter
	Health  health.Handler
	Metrics bool
	Buckets []float64
}

func newRouter(deps routerDeps) chi.Router {
	cfg := deps.Config
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if deps.Metrics {
		r.Use(obs.HTTPObs{Metrics: obs.NewHTTPMetrics(metricsNamespace(), deps.Buckets, nil)}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: deps.Logger}.Middleware)
	r.Use(security.Headers{HSTSMaxAge: 31536000}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))

	if deps.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)

	var engineCatalog *catalog.Handler
	if deps.Service != nil {
		engineCatalog = catalog.NewHandler(catalog.HandlerConfig{Engine: deps.Service.Engine})
	} else {
		engineCatalog = catalog.NewHandler(catalog.HandlerConfig{})
	}
	checkoutHandler := &checkout.Handler{Svc: deps.Service}
	limits := ratelimit.Handler{
		Limiter: deps.Limiter,
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return "checkout:" + ratelimit.ClientKey(r) },
			Window: rateWindow(cfg),
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) {
			deps.Logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/catalog", engineCatalog.List)
		v.Get("/catalog/{sku}", engineCatalog.Get)
		v.Route("/checkout", func(c chi.Router) {
			c.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
			c.Use(limits.Middleware)
			c.Post("/", checkoutHandler.Checkout)
			c.Post("/quote", checkoutHandler.Quote)
		})
	})
	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func rateWindow(cfg *config.Config) time.Duration {
	if cfg.RateLimitWindow <= 0 {
		return time.Minute
	}
	return cfg.RateLimitWindow
}

func metricsNamespace() string {
	return envOrDefault("OBS_METRICS_NAMESPACE", "checkout")
}
