package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/catalog"
	"salesdocs/internal/domain/documents"
	"salesdocs/pkg/logger"
)

// DefaultSupplierTTL bounds how stale a cached supplier may get.
const DefaultSupplierTTL = 10 * time.Minute

// CachedResolver keeps supplier records in Redis. Every document names its
// supplier and suppliers almost never change. Products and installations
// carry stock and prices, so they always go to the database.
// A Redis failure falls through to the wrapped resolver.
type CachedResolver struct {
	documents.EntityResolver
	client redis.Cmdable
	ttl    time.Duration
}

var _ documents.EntityResolver = (*CachedResolver)(nil)

func NewCachedResolver(next documents.EntityResolver, client redis.Cmdable, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultSupplierTTL
	}
	return &CachedResolver{EntityResolver: next, client: client, ttl: ttl}
}

func supplierKey(supplierID id.ID) string {
	return "catalog:supplier:" + supplierID.String()
}

// Supplier returns the cached supplier or loads and caches it.
func (r *CachedResolver) Supplier(ctx context.Context, supplierID id.ID) (*catalog.Supplier, error) {
	key := supplierKey(supplierID)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var s catalog.Supplier
		if jsonErr := json.Unmarshal(raw, &s); jsonErr == nil {
			return &s, nil
		}
		logger.Warn(ctx, "discarding corrupt supplier cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		logger.Warn(ctx, "supplier cache unavailable", "error", err)
	}

	s, err := r.EntityResolver.Supplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(s); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			logger.Warn(ctx, "supplier cache write failed", "error", err)
		}
	}
	return s, nil
}

// Invalidate drops a cached supplier after it was edited.
func (r *CachedResolver) Invalidate(ctx context.Context, supplierID id.ID) error {
	if err := r.client.Del(ctx, supplierKey(supplierID)).Err(); err != nil {
		return fmt.Errorf("invalidate supplier %s: %w", supplierID, err)
	}
	return nil
}
