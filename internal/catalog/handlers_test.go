package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/checkout-pricing/internal/catalog"
	"github.com/noah-isme/checkout-pricing/internal/pricing"
)

type listingResponse struct {
	Data catalog.Listing `json:"data"`
}

type itemResponse struct {
	Data catalog.Item `json:"data"`
}

func TestCatalogHandlers(t *testing.T) {
	engine, err := pricing.NewEngine(catalog.Reference())
	require.NoError(t, err)
	handler := catalog.NewHandler(catalog.HandlerConfig{Engine: engine})

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp listingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, engine.Fingerprint(), resp.Data.Fingerprint)
		require.Len(t, resp.Data.Items, 26)
		require.Equal(t, "A", resp.Data.Items[0].SKU)
		require.Len(t, resp.Data.Items[0].Offers, 2)
		require.Len(t, resp.Data.Groups, 1)
		require.Equal(t, []string{"S", "T", "X", "Y", "Z"}, resp.Data.Groups[0].SKUs)
		require.Equal(t, "any 3 of (S,T,X,Y,Z) for 45", resp.Data.Groups[0].Description)
	})

	t.Run("single item", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/E", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("sku", "E")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		handler.Get(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp itemResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, pricing.Money(40), resp.Data.UnitPrice)
		require.Len(t, resp.Data.Offers, 1)
		require.Equal(t, "B", resp.Data.Offers[0].FreeSKU)
		require.Equal(t, "buy 2E get one B free", resp.Data.Offers[0].Description)
	})

	t.Run("unknown item", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/zz", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("sku", "zz")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		handler.Get(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		catalog.NewHandler(catalog.HandlerConfig{}).List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
