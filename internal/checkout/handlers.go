package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/checkout-pricing/internal/common"
	"github.com/noah-isme/checkout-pricing/internal/pricing"
)

// Request is the body accepted by the checkout endpoints. Items is either a
// string of single-character SKUs or an array of SKU strings.
type Request struct {
	Items json.RawMessage `json:"items"`
}

// TotalResponse is returned by POST /api/v1/checkout.
type TotalResponse struct {
	Total pricing.Money `json:"total"`
}

// QuoteResponse is returned by POST /api/v1/checkout/quote.
type QuoteResponse struct {
	QuoteID string `json:"quoteId"`
	Rules   string `json:"rules"`
	pricing.Quote
}

// Handler exposes the checkout endpoints.
type Handler struct {
	Svc *Service
}

// Checkout handles POST /api/v1/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}
	total, err := h.Svc.Total(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, TotalResponse{Total: total})
}

// Quote handles POST /api/v1/checkout/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}
	q, err := h.Svc.Quote(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, QuoteResponse{
		QuoteID: uuid.NewString(),
		Rules:   h.Svc.Engine.Fingerprint(),
		Quote:   q,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (any, bool) {
	if h.Svc == nil || h.Svc.Engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return nil, false
	}
	var payload Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return nil, false
	}
	// A missing or null items field decodes to nil and is rejected by the engine.
	var input any
	if len(payload.Items) > 0 {
		if err := json.Unmarshal(payload.Items, &input); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
			return nil, false
		}
	}
	return input, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	rejected := map[string]any{"total": pricing.InvalidTotal}
	switch {
	case errors.Is(err, pricing.ErrTypeMismatch):
		common.WriteError(w, common.NewAppError("TYPE_MISMATCH", "items must be a string or an array of item identifiers", http.StatusUnprocessableEntity, err).WithDetails(rejected))
	case errors.Is(err, pricing.ErrUnknownItem):
		common.WriteError(w, common.NewAppError("UNKNOWN_ITEM", err.Error(), http.StatusUnprocessableEntity, err).WithDetails(rejected))
	default:
		common.WriteError(w, err)
	}
}
