// Package ristretto implements the cache port with dgraph-io/ristretto as
// the in-process memory tier.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/codelore/codelore/internal/port/cache"
)

// Cache wraps a ristretto cache bounded by a byte budget. Entry cost is
// the value length, so the budget approximates resident cache bytes.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates the memory tier with the given maximum total value bytes.
func New(maxCostBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get retrieves a value. Ristretto handles TTL expiry internally.
func (c *Cache) Get(_ context.Context, key string) (value []byte, ok bool, err error) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores a value. A zero TTL is already expired and is not stored;
// cache.NoExpiry maps to ristretto's no-TTL mode.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		return nil
	}
	if ttl == cache.NoExpiry {
		ttl = 0
	}
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Delete removes a value.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Close shuts down the cache and releases resources.
func (c *Cache) Close() {
	c.c.Close()
}
