package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcome labels.
const (
	ResultOK           = "ok"
	ResultTypeMismatch = "type_mismatch"
	ResultUnknownItem  = "unknown_item"
	ResultError        = "error"
)

// Quote cache outcome labels.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheError  = "error"
	CacheBypass = "bypass"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts priced baskets by outcome.
	CheckoutTotal *prometheus.CounterVec
	// CheckoutDiscountTotal accumulates the discount granted, in minor units.
	CheckoutDiscountTotal prometheus.Counter
	// CheckoutBasketUnits records basket sizes.
	CheckoutBasketUnits prometheus.Histogram
	// QuoteCacheTotal counts quote cache lookups by outcome.
	QuoteCacheTotal *prometheus.CounterVec
	// BreakerState reports circuit breaker state per dependency: 0=closed, 1=open, 2=half-open.
	BreakerState *prometheus.GaugeVec
)

// MustRegisterDomainMetrics initialises and registers checkout Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Count of checkout pricing requests by outcome.",
		}, []string{"result"})
		CheckoutDiscountTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_minor_total",
			Help:      "Total discount granted by offers, in minor currency units.",
		})
		CheckoutBasketUnits = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "basket_units",
			Help:      "Number of units per priced basket.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})
		QuoteCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_total",
			Help:      "Count of quote cache lookups by outcome.",
		}, []string{"result"})

		BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed,1=open,2=half-open.",
		}, []string{"target"})

		mustRegisterCollector(reg, CheckoutTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutDiscountTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CheckoutDiscountTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutBasketUnits, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CheckoutBasketUnits = v
			}
		})
		mustRegisterCollector(reg, QuoteCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteCacheTotal = v
			}
		})
		mustRegisterCollector(reg, BreakerState, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.GaugeVec); ok {
				BreakerState = v
			}
		})
	})
}

// RecordCheckout observes one pricing outcome. It is a no-op until the domain
// metrics are registered.
func RecordCheckout(result string, units int, discount int64) {
	if CheckoutTotal != nil {
		CheckoutTotal.WithLabelValues(result).Inc()
	}
	if result != ResultOK {
		return
	}
	if CheckoutBasketUnits != nil {
		CheckoutBasketUnits.Observe(float64(units))
	}
	if CheckoutDiscountTotal != nil && discount > 0 {
		CheckoutDiscountTotal.Add(float64(discount))
	}
}

// RecordQuoteCache observes one quote cache lookup.
func RecordQuoteCache(result string) {
	if QuoteCacheTotal != nil {
		QuoteCacheTotal.WithLabelValues(result).Inc()
	}
}

// RecordBreakerState publishes the state of the breaker guarding target.
func RecordBreakerState(target string, state int) {
	if BreakerState != nil {
		BreakerState.WithLabelValues(target).Set(float64(state))
	}
}
