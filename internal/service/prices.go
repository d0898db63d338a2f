package service

import (
	"context"
	"sync"
	"time"

	"trading_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Price staleness cutoff: a streamed price older than this is ignored and
// the REST source is asked instead.
const priceTTL = 30 * time.Second

type cachedPrice struct {
	price decimal.Decimal
	at    time.Time
}

// PriceCache keeps the latest streamed price per symbol and falls back to a
// REST market data source for symbols the stream has not warmed up yet.
type PriceCache struct {
	mu       sync.RWMutex
	prices   map[string]cachedPrice
	fallback domain.MarketDataSource
}

// NewPriceCache creates a cache backed by the given REST source.
func NewPriceCache(fallback domain.MarketDataSource) *PriceCache {
	return &PriceCache{
		prices:   make(map[string]cachedPrice),
		fallback: fallback,
	}
}

// Update stores a streamed price. Wired as the stream worker's tick callback.
func (c *PriceCache) Update(symbol string, price decimal.Decimal, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[symbol] = cachedPrice{price: price, at: at}
}

// Price returns the freshest known price for a symbol: the streamed value
// when recent enough, otherwise a REST lookup.
func (c *PriceCache) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	c.mu.RLock()
	cached, ok := c.prices[symbol]
	c.mu.RUnlock()

	if ok && time.Since(cached.at) < priceTTL {
		return cached.price, nil
	}
	return c.fallback.CurrentPrice(ctx, symbol)
}

// Snapshot returns all cached prices, for status queries.
func (c *PriceCache) Snapshot() map[string]decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(c.prices))
	for symbol, p := range c.prices {
		out[symbol] = p.price
	}
	return out
}
