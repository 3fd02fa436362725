package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-pricing/internal/catalog"
	"github.com/noah-isme/checkout-pricing/internal/checkout"
	"github.com/noah-isme/checkout-pricing/internal/config"
	"github.com/noah-isme/checkout-pricing/internal/health"
	"github.com/noah-isme/checkout-pricing/internal/pricing"
	"github.com/noah-isme/checkout-pricing/internal/ratelimit"
)

func testRouter(t *testing.T, cfg *config.Config, limiter ratelimit.Limiter) http.Handler {
	t.Helper()
	engine, err := pricing.NewEngine(catalog.Reference())
	require.NoError(t, err)
	return newRouter(routerDeps{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: &checkout.Service{Engine: engine, Logger: zerolog.Nop()},
		Limiter: limiter,
		Health:  health.Handler{},
		Metrics: true,
	})
}

func defaultConfig() *config.Config {
	return &config.Config{
		Port:            "8080",
		RateLimitWindow: time.Minute,
		RateLimitMax:    100,
		BodyLimitBytes:  1024,
	}
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:4000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterCheckout(t *testing.T) {
	h := testRouter(t, defaultConfig(), ratelimit.NewMemory("test-checkout"))

	rr := do(h, http.MethodPost, "/api/v1/checkout", `{"items":"ZZTXX"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.JSONEq(t, `{"data":{"total":79}}`, rr.Body.String())
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	require.Equal(t, "100", rr.Header().Get("X-RateLimit-Limit"))

	rr = do(h, http.MethodPost, "/api/v1/checkout/quote", `{"items":"STXY"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"total":62`)

	rr = do(h, http.MethodPost, "/api/v1/checkout", `{"items":"ABC#"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRouterCatalogAndHealth(t *testing.T) {
	h := testRouter(t, defaultConfig(), nil)

	rr := do(h, http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"fingerprint"`)

	rr = do(h, http.MethodGet, "/api/v1/catalog/A", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "3A for 130")

	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health/live", "").Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health/ready", "").Code)

	rr = do(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestRouterRateLimitsCheckout(t *testing.T) {
	cfg := defaultConfig()
	cfg.RateLimitMax = 2
	h := testRouter(t, cfg, ratelimit.NewMemory("test-limit"))

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/v1/checkout", `{"items":"A"}`).Code)
	}
	rr := do(h, http.MethodPost, "/api/v1/checkout", `{"items":"A"}`)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Contains(t, rr.Body.String(), "RATE_LIMITED")

	// Catalog reads are not limited.
	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/catalog", "").Code)
}

func TestRouterRejectsOversizedBody(t *testing.T) {
	cfg := defaultConfig()
	cfg.BodyLimitBytes = 16
	h := testRouter(t, cfg, nil)

	rr := do(h, http.MethodPost, "/api/v1/checkout", `{"items":"AAAAAAAAAAAAAAAAAAAA"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}
