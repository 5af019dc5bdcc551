// Package tx provides transaction management abstractions.
// Domain services depend on Manager; the pgx implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs fn inside a database transaction.
// If fn returns an error, the transaction is rolled back.
// Nested calls reuse the transaction already carried by ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ManagerFunc adapts a plain function to Manager. Tests use it to run fn inline.
type ManagerFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// RunInTransaction implements Manager.
func (f ManagerFunc) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Inline is a Manager without a database: fn runs directly.
var Inline Manager = ManagerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
