package checkout

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/checkout-pricing/internal/obs"
	"github.com/noah-isme/checkout-pricing/internal/pricing"
	"github.com/noah-isme/checkout-pricing/internal/resilience"
)

// ErrNotConfigured is returned when the service has no pricing engine.
var ErrNotConfigured = errors.New("checkout service not configured")

// Service prices baskets for the HTTP layer. The engine does the arithmetic;
// the service adds caching, metrics and tracing around it.
type Service struct {
	Engine *pricing.Engine
	Cache  *QuoteCache
	Logger zerolog.Logger
}

// Quote validates and prices input. Validation failures wrap
// pricing.ErrTypeMismatch or pricing.ErrUnknownItem.
func (s *Service) Quote(ctx context.Context, input any) (pricing.Quote, error) {
	if s == nil || s.Engine == nil {
		return pricing.Quote{}, ErrNotConfigured
	}
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "CheckoutService.Quote")
	defer span.End()

	counts, err := s.Engine.Parse(input)
	if err != nil {
		result := resultLabel(err)
		obs.RecordCheckout(result, 0, 0)
		span.SetAttributes(attribute.String("checkout.result", result))
		s.Logger.Debug().Err(err).Str("result", result).Msg("basket rejected")
		return pricing.Quote{}, err
	}
	span.SetAttributes(
		attribute.Int("checkout.units", counts.Units()),
		attribute.String("pricing.rules", s.Engine.Fingerprint()),
	)

	key := s.Cache.Key(s.Engine.Fingerprint(), counts)
	if s.Cache.Enabled() {
		cached, ok, err := s.Cache.Get(ctx, key)
		switch {
		case errors.Is(err, resilience.ErrOpenCircuit):
			obs.RecordQuoteCache(obs.CacheBypass)
		case err != nil:
			obs.RecordQuoteCache(obs.CacheError)
			s.Logger.Warn().Err(err).Str("key", key).Msg("quote cache read failed")
		case ok:
			obs.RecordQuoteCache(obs.CacheHit)
			obs.RecordCheckout(obs.ResultOK, cached.Units, cached.Discount)
			span.SetAttributes(attribute.Bool("checkout.cached", true), attribute.Int64("checkout.total", cached.Total))
			return cached, nil
		default:
			obs.RecordQuoteCache(obs.CacheMiss)
		}
	}

	q, err := s.Engine.Price(counts)
	if err != nil {
		obs.RecordCheckout(resultLabel(err), 0, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return pricing.Quote{}, err
	}
	if err := s.Cache.Set(ctx, key, q); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("quote cache write failed")
	}
	obs.RecordCheckout(obs.ResultOK, q.Units, q.Discount)
	span.SetAttributes(attribute.Bool("checkout.cached", false), attribute.Int64("checkout.total", q.Total))
	s.Logger.Debug().
		Str("basket", counts.Key()).
		Int64("total", q.Total).
		Int64("discount", q.Discount).
		Msg("basket priced")
	return q, nil
}

// Total prices input and returns only the amount due.
func (s *Service) Total(ctx context.Context, input any) (pricing.Money, error) {
	q, err := s.Quote(ctx, input)
	if err != nil {
		return pricing.InvalidTotal, err
	}
	return q.Total, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return obs.ResultOK
	case errors.Is(err, pricing.ErrTypeMismatch):
		return obs.ResultTypeMismatch
	case errors.Is(err, pricing.ErrUnknownItem):
		return obs.ResultUnknownItem
	default:
		return obs.ResultError
	}
}
