package pricer

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/domain"
)

// DefaultCacheTTL how long a good quote can stand in for a failed lookup.
const DefaultCacheTTL = 10 * time.Minute

// CachedQuote quote with the time it was fetched.
type CachedQuote struct {
	Quote     domain.PriceQuote
	FetchedAt time.Time
}

// QuoteCache keeps the last good current quote per coin.
type QuoteCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewQuoteCache creates a cache whose entries expire after ttl.
func NewQuoteCache(ttl time.Duration) (*QuoteCache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create quote cache")
	}
	return &QuoteCache{cache: cache, ttl: ttl}, nil
}

// Put stores a current quote; historical quotes are ignored.
func (c *QuoteCache) Put(q domain.PriceQuote) {
	if !q.IsCurrent() {
		return
	}
	c.cache.SetWithTTL(q.CoinID, CachedQuote{Quote: q, FetchedAt: time.Now()}, 1, c.ttl)
	c.cache.Wait()
}

// Get returns the cached quote for coinID.
func (c *QuoteCache) Get(coinID string) (CachedQuote, bool) {
	v, ok := c.cache.Get(coinID)
	if !ok {
		return CachedQuote{}, false
	}
	cq, ok := v.(CachedQuote)
	return cq, ok
}

// Close releases cache goroutines.
func (c *QuoteCache) Close() {
	c.cache.Close()
}

// Caching decorates a Pricer, remembering every successful current quote.
type Caching struct {
	Pricer
	cache *QuoteCache
}

// NewCaching wraps p.
func NewCaching(p Pricer, cache *QuoteCache) *Caching {
	return &Caching{Pricer: p, cache: cache}
}

// CurrentPrice fetches from the wrapped pricer and caches the result.
func (c *Caching) CurrentPrice(ctx context.Context, coinID string) (domain.PriceQuote, error) {
	q, err := c.Pricer.CurrentPrice(ctx, coinID)
	if err != nil {
		return q, err
	}
	c.cache.Put(q)
	return q, nil
}

// Cached returns the last good quote for coinID.
func (c *Caching) Cached(coinID string) (CachedQuote, bool) {
	return c.cache.Get(coinID)
}
