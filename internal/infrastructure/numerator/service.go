// Package numerator provides the durable Sequence Allocator implementations.
// Both satisfy core/numerator.Admin.
package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	corenumerator "salesdocs/internal/core/numerator"
)

// Querier is the subset of pgx used by the allocator.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service allocates sequences from the sys_sequences table.
//
// Allocation is a single UPSERT ... RETURNING, so the row lock taken by the
// conflicting UPDATE serialises concurrent callers per (sequence_type, year).
// Callers must run it outside their business transaction: a rollback there
// must not hand the value back to another request.
type Service struct {
	querier Querier
}

var _ corenumerator.Admin = (*Service)(nil)

// New creates a new allocator over querier (normally the pool, never a tx).
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

const allocateSQL = `
	INSERT INTO sys_sequences (sequence_type, year, current_val)
	VALUES ($1, $2, 1)
	ON CONFLICT (sequence_type, year) DO UPDATE SET current_val = sys_sequences.current_val + 1
	RETURNING current_val`

// Allocate implements corenumerator.Allocator.
func (s *Service) Allocate(ctx context.Context, kind corenumerator.Kind, year int) (int64, error) {
	if s == nil || s.querier == nil {
		return 0, fmt.Errorf("sequence allocator is not initialized")
	}

	var num int64
	if err := s.querier.QueryRow(ctx, allocateSQL, string(kind), year).Scan(&num); err != nil {
		return 0, fmt.Errorf("allocate %s/%d: %w", kind, year, err)
	}
	return num, nil
}

// Current implements corenumerator.Admin.
func (s *Service) Current(ctx context.Context, kind corenumerator.Kind, year int) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
		SELECT current_val FROM sys_sequences WHERE sequence_type = $1 AND year = $2
	`, string(kind), year).Scan(&num)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s/%d: %w", kind, year, err)
	}
	return num, nil
}

// Set implements corenumerator.Admin.
func (s *Service) Set(ctx context.Context, kind corenumerator.Kind, year int, value int64) error {
	if value < 0 {
		return fmt.Errorf("sequence value must not be negative, got %d", value)
	}

	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (sequence_type, year, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (sequence_type, year) DO UPDATE SET current_val = $3
		RETURNING current_val
	`, string(kind), year, value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set %s/%d: %w", kind, year, err)
	}
	return nil
}
