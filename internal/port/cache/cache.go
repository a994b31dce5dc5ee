// Package cache defines the port interface for key-value caching.
package cache

import (
	"context"
	"time"
)

// NoExpiry marks an entry that never expires. A TTL of zero means the
// entry is already expired and behaves as absent on the next Get.
const NoExpiry time.Duration = -1

// Cache is the port interface implemented by every tier. Misses are
// reported through the bool, never through an error; errors are reserved
// for tier unavailability (I/O, network), which callers may treat as a
// miss.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
