// Package tiered combines up to three cache tiers behind one cache port:
// a fast volatile L1, a durable process-local L2, and an optional shared
// L3. Values found in a slower tier are promoted into every faster tier.
package tiered

import (
	"context"
	"log/slog"
	"time"

	"github.com/codelore/codelore/internal/port/cache"
)

// Cache probes L1 → L2 → L3 on Get and writes every configured tier on
// Set. The cache is a pure performance layer over recomputable values, so
// tier failures never surface to callers: a failing Get degrades to a
// miss, a failing Set survives on whichever tiers accepted the write.
type Cache struct {
	l1         cache.Cache
	l2         cache.Cache
	l3         cache.Cache // optional, may be nil
	promoteTTL time.Duration
	log        *slog.Logger
}

// New creates a tiered cache. l3 may be nil when no distributed tier is
// configured. promoteTTL controls how long promoted entries live in the
// faster tiers.
func New(l1, l2, l3 cache.Cache, promoteTTL time.Duration, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{l1: l1, l2: l2, l3: l3, promoteTTL: promoteTTL, log: log}
}

// Get probes tiers fastest-first. On a hit at a slower tier the value is
// written back into every faster tier before returning; promotion
// failures are logged and ignored. Tier errors count as misses.
func (c *Cache) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	val, found := c.probe(ctx, c.l1, "l1", key)
	if found {
		return val, true, nil
	}

	val, found = c.probe(ctx, c.l2, "l2", key)
	if found {
		c.promote(ctx, key, val, c.l1, "l1")
		return val, true, nil
	}

	if c.l3 != nil {
		val, found = c.probe(ctx, c.l3, "l3", key)
		if found {
			c.promote(ctx, key, val, c.l2, "l2")
			c.promote(ctx, key, val, c.l1, "l1")
			return val, true, nil
		}
	}

	return nil, false, nil
}

// Set writes to all configured tiers. An L3 failure never affects L1/L2;
// an L2 failure still leaves the value served from L1 for the rest of the
// process lifetime. Set itself never fails.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, ttl); err != nil {
		c.log.Warn("cache set failed", "tier", "l1", "key", key, "error", err)
	}
	if err := c.l2.Set(ctx, key, value, ttl); err != nil {
		c.log.Warn("cache set failed", "tier", "l2", "key", key, "error", err)
	}
	if c.l3 != nil {
		if err := c.l3.Set(ctx, key, value, ttl); err != nil {
			c.log.Warn("cache set failed", "tier", "l3", "key", key, "error", err)
		}
	}
	return nil
}

// Delete removes the key from every configured tier, best effort.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.l1.Delete(ctx, key); err != nil {
		c.log.Warn("cache delete failed", "tier", "l1", "key", key, "error", err)
	}
	if err := c.l2.Delete(ctx, key); err != nil {
		c.log.Warn("cache delete failed", "tier", "l2", "key", key, "error", err)
	}
	if c.l3 != nil {
		if err := c.l3.Delete(ctx, key); err != nil {
			c.log.Warn("cache delete failed", "tier", "l3", "key", key, "error", err)
		}
	}
	return nil
}

func (c *Cache) probe(ctx context.Context, tier cache.Cache, name, key string) ([]byte, bool) {
	val, found, err := tier.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache get degraded to miss", "tier", name, "key", key, "error", err)
		return nil, false
	}
	return val, found
}

func (c *Cache) promote(ctx context.Context, key string, val []byte, tier cache.Cache, name string) {
	if err := tier.Set(ctx, key, val, c.promoteTTL); err != nil {
		c.log.Warn("cache promotion failed", "tier", name, "key", key, "error", err)
	}
}
