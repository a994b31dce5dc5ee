// Package natskv implements the cache port with NATS JetStream KV as the
// optional shared distributed tier.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Cache wraps a JetStream KeyValue bucket. TTL is managed at bucket level,
// so per-entry TTLs are advisory here. Every round-trip is bounded by
// opTimeout so a partitioned NATS never stalls an analysis batch.
type Cache struct {
	nc        *nats.Conn
	kv        jetstream.KeyValue
	opTimeout time.Duration
}

// Connect dials NATS, ensures the bucket exists with the given TTL, and
// returns the distributed tier.
func Connect(ctx context.Context, url, bucket string, bucketTTL, opTimeout time.Duration) (*Cache, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("natskv: connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natskv: jetstream init: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    bucketTTL,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natskv: bucket %s: %w", bucket, err)
	}

	return &Cache{nc: nc, kv: kv, opTimeout: opTimeout}, nil
}

// NewWithKV wraps an existing KeyValue bucket. Used by tests.
func NewWithKV(kv jetstream.KeyValue, opTimeout time.Duration) *Cache {
	return &Cache{kv: kv, opTimeout: opTimeout}
}

// Get retrieves a value from the bucket.
func (c *Cache) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	entry, err := c.kv.Get(ctx, sanitizeKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("natskv: get %s: %w", key, err)
	}
	return entry.Value(), true, nil
}

// Set stores a value. A zero TTL is already expired and is not stored;
// any other per-entry TTL is advisory, expiry follows the bucket TTL
// configured at Connect time.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		return nil
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	if _, err := c.kv.Put(ctx, sanitizeKey(key), value); err != nil {
		return fmt.Errorf("natskv: set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	err := c.kv.Delete(ctx, sanitizeKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("natskv: delete %s: %w", key, err)
	}
	return nil
}

// Close closes the NATS connection, if this cache owns one.
func (c *Cache) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

func (c *Cache) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// sanitizeKey maps cache keys onto the NATS KV key alphabet. Our keys use
// "namespace:hash" which KV rejects, so the colon becomes a dot.
func sanitizeKey(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}
