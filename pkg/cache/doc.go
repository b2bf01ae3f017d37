// Package cache provides a generic key-value cache with TTL semantics and two
// backends: an in-process LRU map (Memory) and Redis (Redis).
//
// The portal uses Memory for the per-session toast buses and as the default
// session store, and Redis when sessions must survive restarts or be shared
// between replicas. GetOrSet collapses concurrent misses for the same key,
// which the public tracking page relies on when many visitors poll one number.
//
//	c := cache.NewMemory[string](cache.WithDefaultTTL(time.Minute))
//	defer c.Close()
//
//	v, err := cache.GetOrSet(ctx, c, "TXP123", func(ctx context.Context) (string, time.Duration, error) {
//	    return lookup(ctx, "TXP123")
//	})
//
// TTL passed to Set: positive expires after the duration, zero uses the
// backend default, negative never expires.
package cache
