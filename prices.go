package warera

import (
	"context"
	"sync"
)

// PriceGetter is the slice of the remote API the price cache needs.
type PriceGetter interface {
	// TopOrderPrice returns the best sell-order price for an item, 0 when
	// the order book is empty.
	TopOrderPrice(ctx context.Context, itemCode string) (float64, error)
}

// PriceCache memoizes item prices for the lifetime of a session. A price of
// 0 (empty order book) is a legitimate cached value; only a fetch error
// leaves the item uncached.
type PriceCache struct {
	getter PriceGetter

	mu     sync.Mutex
	prices map[string]float64
}

// NewPriceCache returns an empty price cache backed by the given getter.
func NewPriceCache(getter PriceGetter) *PriceCache {
	return &PriceCache{getter: getter, prices: make(map[string]float64)}
}

// Price returns the cached price for itemCode, fetching it on first use.
func (c *PriceCache) Price(ctx context.Context, itemCode string) (float64, error) {
	c.mu.Lock()
	if p, ok := c.prices[itemCode]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p, err := c.getter.TopOrderPrice(ctx, itemCode)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.prices[itemCode] = p
	c.mu.Unlock()
	return p, nil
}

// Clear drops all cached prices. It must be called when the target identity
// changes, together with ReferenceCache.Clear.
func (c *PriceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices = make(map[string]float64)
}
