package cache

import (
	"context"
	"errors"
	"time"
)

// Store caches backend reads per browser and drops them by tag after writes.
type Store interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, v any, tags ...string) error
	SetTTL(ctx context.Context, key string, v any, ttl time.Duration, tags ...string) error
	Delete(ctx context.Context, key string) error
	Revalidate(ctx context.Context, tags ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

// RevalidateChannel carries every revalidated tag for other replicas and the
// rendering layer.
const RevalidateChannel = "storefront:revalidate"

// Tag scopes a partition name to one browser's cache id. An empty cache id
// yields an empty tag, which Revalidate skips.
func Tag(name, cacheID string) string {
	if cacheID == "" {
		return ""
	}
	return name + "-" + cacheID
}
