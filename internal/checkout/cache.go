package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/checkout-pricing/internal/pricing"
	"github.com/noah-isme/checkout-pricing/internal/resilience"
)

const defaultCachePrefix = "checkout:quote"

// QuoteCache stores priced quotes in Redis as JSON. A nil cache or one without
// a client is disabled and never reports hits.
type QuoteCache struct {
	client  *redis.Client
	ttl     time.Duration
	prefix  string
	breaker *resilience.Breaker
}

// NewQuoteCache constructs a cache helper. A non-positive ttl disables caching.
func NewQuoteCache(client *redis.Client, ttl time.Duration) *QuoteCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &QuoteCache{client: client, ttl: ttl, prefix: defaultCachePrefix}
}

// WithBreaker guards Redis calls with b. While the breaker is open lookups
// fail fast with resilience.ErrOpenCircuit and writes are skipped.
func (c *QuoteCache) WithBreaker(b *resilience.Breaker) *QuoteCache {
	if c != nil {
		c.breaker = b
	}
	return c
}

// Enabled reports whether lookups reach Redis.
func (c *QuoteCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key derives the cache key for a basket priced under the given rules.
func (c *QuoteCache) Key(fingerprint string, counts pricing.Counts) string {
	prefix := defaultCachePrefix
	if c != nil && c.prefix != "" {
		prefix = c.prefix
	}
	return prefix + ":" + fingerprint + ":" + counts.Key()
}

// Get loads a cached quote. It reports whether the key existed.
func (c *QuoteCache) Get(ctx context.Context, key string) (pricing.Quote, bool, error) {
	var q pricing.Quote
	if !c.Enabled() || key == "" {
		return q, false, nil
	}
	if !c.breaker.Allow() {
		return q, false, resilience.ErrOpenCircuit
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.breaker.Report(true)
			return q, false, nil
		}
		c.breaker.Report(false)
		return q, false, err
	}
	c.breaker.Report(true)
	if err := json.Unmarshal(data, &q); err != nil {
		return pricing.Quote{}, false, err
	}
	if q.Lines == nil {
		q.Lines = []pricing.Line{}
	}
	return q, true, nil
}

// Set stores q under key with the configured TTL.
func (c *QuoteCache) Set(ctx context.Context, key string, q pricing.Quote) error {
	if !c.Enabled() || key == "" {
		return nil
	}
	if !c.breaker.Allow() {
		return nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	err = c.client.Set(ctx, key, data, c.ttl).Err()
	c.breaker.Report(err == nil)
	return err
}
