package warranty

import (
	"context"
	"fmt"
	"time"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/pkg/logger"
)

// Service issues warranties and answers status queries.
type Service struct {
	repo     Repository
	coverage time.Duration
	now      func() time.Time
}

// NewService creates a warranty service. A non-positive coverage falls back to DefaultCoverage.
func NewService(repo Repository, coverage time.Duration) *Service {
	if coverage <= 0 {
		coverage = DefaultCoverage
	}
	return &Service{repo: repo, coverage: coverage, now: time.Now}
}

// Coverage returns the configured window.
func (s *Service) Coverage() time.Duration {
	return s.coverage
}

// Issue creates the warranty of an invoice. start defaults to now.
// It must run inside the invoice finalization transaction.
func (s *Service) Issue(ctx context.Context, invoiceID id.ID, start *time.Time) (*Warranty, error) {
	if id.IsNil(invoiceID) {
		return nil, apperror.NewValidation("invoice id is required")
	}
	now := s.now()
	from := now
	if start != nil && !start.IsZero() {
		from = *start
	}

	w := New(invoiceID, from, s.coverage)
	w.CreatedAt, w.UpdatedAt = now, now
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create warranty: %w", err)
	}
	return w, nil
}

// Get returns a warranty with its derived status.
func (s *Service) Get(ctx context.Context, warrantyID id.ID) (*Warranty, error) {
	w, err := s.repo.GetByID(ctx, warrantyID)
	if err != nil {
		return nil, err
	}
	derived := w.WithDerivedStatus(s.now())
	return &derived, nil
}

// GetByInvoice returns the warranty of an invoice with its derived status.
func (s *Service) GetByInvoice(ctx context.Context, invoiceID id.ID) (*Warranty, error) {
	w, err := s.repo.GetByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	derived := w.WithDerivedStatus(s.now())
	return &derived, nil
}

// ListByInvoices returns the warranties of the given invoices keyed by invoice id,
// each with its derived status.
func (s *Service) ListByInvoices(ctx context.Context, invoiceIDs []id.ID) (map[id.ID]Warranty, error) {
	out := make(map[id.ID]Warranty, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return out, nil
	}
	items, err := s.repo.ListByInvoices(ctx, invoiceIDs)
	if err != nil {
		return nil, fmt.Errorf("list warranties: %w", err)
	}
	now := s.now()
	for _, w := range items {
		out[w.InvoiceID] = w.WithDerivedStatus(now)
	}
	return out, nil
}

// DeleteByInvoice removes the warranties of an invoice.
func (s *Service) DeleteByInvoice(ctx context.Context, invoiceID id.ID) error {
	return s.repo.DeleteByInvoice(ctx, invoiceID)
}

// RefreshStatuses rewrites stale persisted hints. Reads never depend on it.
func (s *Service) RefreshStatuses(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.ExpireEndedBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expire warranties: %w", err)
	}
	if n > 0 {
		logger.Info(ctx, "warranty statuses refreshed", "expired", n)
	}
	return n, nil
}
