package catalog

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/checkout-pricing/internal/common"
	"github.com/noah-isme/checkout-pricing/internal/pricing"
)

// OfferView describes one offer for API consumers.
type OfferView struct {
	Kind        pricing.OfferKind `json:"kind"`
	Description string            `json:"description"`
	Quantity    int               `json:"quantity"`
	Price       *pricing.Money    `json:"price,omitempty"`
	FreeSKU     string            `json:"freeSku,omitempty"`
	SKUs        []string          `json:"skus,omitempty"`
}

// Item is a catalog entry together with the offers it triggers.
type Item struct {
	SKU       string        `json:"sku"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Offers    []OfferView   `json:"offers"`
}

// Listing is the full price list served by the API.
type Listing struct {
	Fingerprint string      `json:"fingerprint"`
	Items       []Item      `json:"items"`
	Groups      []OfferView `json:"groups"`
}

// Handler exposes read-only catalog endpoints.
type Handler struct {
	engine *pricing.Engine
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Engine *pricing.Engine
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{engine: cfg.Engine}
}

// List handles GET /api/v1/catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing engine not configured", nil)
		return
	}
	common.JSONData(w, http.StatusOK, Describe(h.engine))
}

// Get handles GET /api/v1/catalog/{sku}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing engine not configured", nil)
		return
	}
	sku := strings.TrimSpace(chi.URLParam(r, "sku"))
	for _, item := range Describe(h.engine).Items {
		if item.SKU == sku {
			common.JSONData(w, http.StatusOK, item)
			return
		}
	}
	common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "item not found", map[string]any{"sku": sku})
}

// Describe renders the engine's rules as a Listing.
func Describe(engine *pricing.Engine) Listing {
	prices := engine.Catalog()
	skus := prices.SKUs()
	perItem := make(map[pricing.SKU][]OfferView, len(skus))
	groups := []OfferView{}
	for _, o := range engine.Offers() {
		switch v := o.(type) {
		case pricing.BulkOffer:
			price := v.Price
			perItem[v.SKU] = append(perItem[v.SKU], OfferView{
				Kind:        v.Kind(),
				Description: fmt.Sprintf("%d%s for %d", v.Quantity, v.SKU, v.Price),
				Quantity:    v.Quantity,
				Price:       &price,
			})
		case pricing.FreeItemOffer:
			perItem[v.SKU] = append(perItem[v.SKU], OfferView{
				Kind:        v.Kind(),
				Description: fmt.Sprintf("buy %d%s get one %s free", v.BuyQuantity, v.SKU, v.FreeSKU),
				Quantity:    v.BuyQuantity,
				FreeSKU:     string(v.FreeSKU),
			})
		case pricing.GroupDiscount:
			price := v.Price
			names := make([]string, 0, len(v.SKUs))
			for _, sku := range v.SKUs {
				names = append(names, string(sku))
			}
			groups = append(groups, OfferView{
				Kind:        v.Kind(),
				Description: fmt.Sprintf("any %d of (%s) for %d", v.Quantity, strings.Join(names, ","), v.Price),
				Quantity:    v.Quantity,
				Price:       &price,
				SKUs:        names,
			})
		}
	}

	listing := Listing{Fingerprint: engine.Fingerprint(), Items: make([]Item, 0, len(skus)), Groups: groups}
	for _, sku := range skus {
		offers := perItem[sku]
		if offers == nil {
			offers = []OfferView{}
		}
		listing.Items = append(listing.Items, Item{SKU: string(sku), UnitPrice: prices[sku], Offers: offers})
	}
	return listing
}
