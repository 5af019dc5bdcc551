package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/catalog"
)

type countingResolver struct {
	suppliers map[id.ID]catalog.Supplier
	calls     int
}

func (r *countingResolver) Supplier(_ context.Context, supplierID id.ID) (*catalog.Supplier, error) {
	r.calls++
	s, ok := r.suppliers[supplierID]
	if !ok {
		return nil, apperror.NewNotFound("supplier", supplierID.String())
	}
	return &s, nil
}

func (r *countingResolver) Customer(context.Context, id.ID) (*catalog.Customer, error) {
	return nil, apperror.NewNotFound("customer", "")
}

func (r *countingResolver) Products(context.Context, []id.ID) (map[id.ID]catalog.Product, error) {
	return map[id.ID]catalog.Product{}, nil
}

func (r *countingResolver) Installations(context.Context, []id.ID) (map[id.ID]catalog.Installation, error) {
	return map[id.ID]catalog.Installation{}, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *countingResolver, *CachedResolver, id.ID) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	supplierID := id.New()
	next := &countingResolver{suppliers: map[id.ID]catalog.Supplier{
		supplierID: {ID: supplierID, CompanyName: "Sun & Roof s.r.o.", ICO: "12345678"},
	}}
	return mr, next, NewCachedResolver(next, client, time.Minute), supplierID
}

func TestCachedResolver_ReadThrough(t *testing.T) {
	mr, next, r, supplierID := setup(t)
	ctx := context.Background()

	first, err := r.Supplier(ctx, supplierID)
	require.NoError(t, err)
	second, err := r.Supplier(ctx, supplierID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.True(t, mr.Exists(supplierKey(supplierID)))
	assert.Equal(t, time.Minute, mr.TTL(supplierKey(supplierID)))
}

func TestCachedResolver_Expiry(t *testing.T) {
	mr, next, r, supplierID := setup(t)
	ctx := context.Background()

	_, err := r.Supplier(ctx, supplierID)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = r.Supplier(ctx, supplierID)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}

func TestCachedResolver_NotFoundIsNotCached(t *testing.T) {
	mr, _, r, _ := setup(t)

	missing := id.New()
	_, err := r.Supplier(context.Background(), missing)

	assert.True(t, apperror.IsNotFound(err))
	assert.False(t, mr.Exists(supplierKey(missing)))
}

func TestCachedResolver_RedisDownFallsThrough(t *testing.T) {
	mr, next, r, supplierID := setup(t)
	mr.Close()

	s, err := r.Supplier(context.Background(), supplierID)

	require.NoError(t, err)
	assert.Equal(t, "Sun & Roof s.r.o.", s.CompanyName)
	assert.Equal(t, 1, next.calls)
}

func TestCachedResolver_Invalidate(t *testing.T) {
	mr, next, r, supplierID := setup(t)
	ctx := context.Background()

	_, _ = r.Supplier(ctx, supplierID)
	require.NoError(t, r.Invalidate(ctx, supplierID))
	assert.False(t, mr.Exists(supplierKey(supplierID)))

	_, _ = r.Supplier(ctx, supplierID)
	assert.Equal(t, 2, next.calls)
}

func TestCachedResolver_DelegatesProducts(t *testing.T) {
	_, _, r, _ := setup(t)
	got, err := r.Products(context.Background(), []id.ID{id.New()})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), addr)
	assert.Error(t, err)
}

func TestNew_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	_ = client.Close()
}
