package counter

import (
	"context"
	"time"
)

// Store is a key/value counter store with per-key expiry. A counter is
// logically absent (zero) once its expiry instant has passed.
type Store interface {
	// Get returns the current count for key, or 0 when the key is absent or
	// expired.
	Get(ctx context.Context, key string) (int64, error)

	// Increment adds one to the counter, pinning the key expiry to expireAt
	// when the bucket is created by this call.
	Increment(ctx context.Context, key string, expireAt time.Time) (int64, error)

	// TryConsume atomically increments the counter unless it already reached
	// limit. It reports whether the consume was admitted and the resulting
	// count (unchanged when denied).
	TryConsume(ctx context.Context, key string, limit int64, expireAt time.Time) (allowed bool, count int64, err error)
}

// Sweeper is implemented by backends that hold expired buckets in process
// memory and need a periodic eviction pass.
type Sweeper interface {
	DeleteExpired(now time.Time) int
}
