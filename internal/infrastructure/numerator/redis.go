package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	corenumerator "salesdocs/internal/core/numerator"
)

// RedisAllocator keeps counters in Redis. INCR creates a missing key at 0
// before incrementing, which gives the same upsert semantics as sys_sequences.
// Redis must run with AOF persistence for the counters to be durable.
type RedisAllocator struct {
	client    redis.Cmdable
	keyPrefix string
}

var _ corenumerator.Admin = (*RedisAllocator)(nil)

// NewRedisAllocator creates an allocator using keys seq:{kind}:{year}.
func NewRedisAllocator(client redis.Cmdable) *RedisAllocator {
	return &RedisAllocator{client: client, keyPrefix: "seq"}
}

func (r *RedisAllocator) key(kind corenumerator.Kind, year int) string {
	return fmt.Sprintf("%s:%s:%d", r.keyPrefix, kind, year)
}

// Allocate implements corenumerator.Allocator.
func (r *RedisAllocator) Allocate(ctx context.Context, kind corenumerator.Kind, year int) (int64, error) {
	num, err := r.client.Incr(ctx, r.key(kind, year)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s/%d: %w", kind, year, err)
	}
	return num, nil
}

// Current implements corenumerator.Admin.
func (r *RedisAllocator) Current(ctx context.Context, kind corenumerator.Kind, year int) (int64, error) {
	num, err := r.client.Get(ctx, r.key(kind, year)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s/%d: %w", kind, year, err)
	}
	return num, nil
}

// Set implements corenumerator.Admin.
func (r *RedisAllocator) Set(ctx context.Context, kind corenumerator.Kind, year int, value int64) error {
	if value < 0 {
		return fmt.Errorf("sequence value must not be negative, got %d", value)
	}
	if err := r.client.Set(ctx, r.key(kind, year), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s/%d: %w", kind, year, err)
	}
	return nil
}
