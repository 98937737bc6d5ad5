package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/langowen/cotizaya/internal/entities"
	"github.com/pkg/errors"
)

// CryptoCache keeps the last coin prices for ttl so that frequent refreshes do
// not hit the price API every time.
type CryptoCache struct {
	client CryptoClient
	ttl    time.Duration
	ids    []string
	now    func() time.Time

	mu        sync.Mutex
	prices    map[string]entities.CryptoPrice
	fetchedAt time.Time
}

func NewCryptoCache(client CryptoClient, ttl time.Duration) *CryptoCache {
	ids := make([]string, len(entities.Coins))
	for i, c := range entities.Coins {
		ids[i] = c.ID
	}

	return &CryptoCache{
		client: client,
		ttl:    ttl,
		ids:    ids,
		now:    time.Now,
	}
}

func (c *CryptoCache) Prices(ctx context.Context) (map[string]entities.CryptoPrice, error) {
	const op = "fetcher.CryptoCache.Prices"

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.prices != nil && now.Sub(c.fetchedAt) < c.ttl {
		return c.prices, nil
	}

	prices, err := c.client.FetchPrices(ctx, c.ids)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	c.prices = prices
	c.fetchedAt = now

	return prices, nil
}
