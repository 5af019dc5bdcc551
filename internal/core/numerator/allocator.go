package numerator

import (
	"context"
)

// Allocator issues year-scoped sequence numbers.
//
// Allocate must be an atomic increment-or-create against durable storage:
// the first call for a (kind, year) returns 1, every later call returns the
// previous value plus one, and concurrent callers never see the same value.
// Values are never handed back, so a caller that fails after Allocate leaves a gap.
type Allocator interface {
	Allocate(ctx context.Context, kind Kind, year int) (int64, error)
}

// Admin exposes counter maintenance for the CLI.
type Admin interface {
	Allocator

	// Current returns the last issued value, 0 if the counter does not exist yet.
	Current(ctx context.Context, kind Kind, year int) (int64, error)

	// Set overwrites the counter (for migrations from another system).
	Set(ctx context.Context, kind Kind, year int, value int64) error
}
