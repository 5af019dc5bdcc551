package projects

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/tx"
	"salesdocs/internal/core/types"
	"salesdocs/pkg/logger"
)

// DefaultMaxRetries bounds optimistic retries of a ledger write.
const DefaultMaxRetries = 5

// Service applies ledger and quotation changes to projects.
//
// Every mutation is read-modify-write guarded by the project version. A lost
// race is retried with jittered backoff; no row locks are taken.
type Service struct {
	projects   Repository
	quotations QuotationRepository
	txManager  tx.Manager
	maxRetries int
	baseDelay  time.Duration
	now        func() time.Time
}

// NewService creates a new project ledger service.
func NewService(projects Repository, quotations QuotationRepository, txManager tx.Manager, maxRetries int) *Service {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	return &Service{
		projects:   projects,
		quotations: quotations,
		txManager:  txManager,
		maxRetries: maxRetries,
		baseDelay:  20 * time.Millisecond,
		now:        time.Now,
	}
}

// Get returns a project with freshly derived ledger fields.
func (s *Service) Get(ctx context.Context, projectID id.ID) (*Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p.Recompute()
	return p, nil
}

// AddDeposit increases the deposit by amount (>= 0).
func (s *Service) AddDeposit(ctx context.Context, projectID id.ID, amount types.Money) (*Project, error) {
	return s.mutate(ctx, projectID, func(p *Project) error {
		return p.AddDeposit(amount)
	})
}

// DeleteDeposit resets a positive deposit to zero.
func (s *Service) DeleteDeposit(ctx context.Context, projectID id.ID) (*Project, error) {
	return s.mutate(ctx, projectID, func(p *Project) error {
		return p.ClearDeposit()
	})
}

// AddPayment appends a positive installment.
func (s *Service) AddPayment(ctx context.Context, projectID id.ID, amount types.Money) (*Project, error) {
	return s.mutate(ctx, projectID, func(p *Project) error {
		return p.AddPayment(amount)
	})
}

// RemovePaymentAt deletes the installment at index.
func (s *Service) RemovePaymentAt(ctx context.Context, projectID id.ID, index int) (*Project, types.Money, error) {
	var removed types.Money
	p, err := s.mutate(ctx, projectID, func(p *Project) error {
		var err error
		removed, err = p.RemovePaymentAt(index)
		return err
	})
	return p, removed, err
}

// ListQuotations returns the quotations of a project, optionally filtered by type.
func (s *Service) ListQuotations(ctx context.Context, projectID id.ID, qType *QuotationType) ([]Quotation, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.quotations.ListByProject(ctx, projectID, qType)
}

// CreateQuotation adds a quotation and recomputes the project totals.
func (s *Service) CreateQuotation(ctx context.Context, q *Quotation) (*Project, error) {
	now := s.now()
	q.ID = id.New()
	q.CreatedAt, q.UpdatedAt = now, now
	q.Normalize(now)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var project *Project
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.projects.GetByID(ctx, q.ProjectID); err != nil {
			return err
		}
		if err := s.quotations.Create(ctx, q); err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		var err error
		project, err = s.recalcTotals(ctx, q.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation created", "id", q.ID, "project_id", q.ProjectID, "total", q.TotalPrice)
	return project, nil
}

// QuotationPatch carries the mutable quotation fields; nil leaves a field unchanged.
type QuotationPatch struct {
	Desc      *string
	Cost      *types.Money
	Quantity  *types.Quantity
	Currency  *Currency
	Type      *QuotationType
	QuoteDate *time.Time
}

// UpdateQuotation applies patch and recomputes the project totals.
func (s *Service) UpdateQuotation(ctx context.Context, quotationID id.ID, patch QuotationPatch) (*Quotation, *Project, error) {
	var (
		q       *Quotation
		project *Project
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		q, err = s.quotations.GetByID(ctx, quotationID)
		if err != nil {
			return err
		}
		applyPatch(q, patch)
		q.UpdatedAt = s.now()
		q.Normalize(q.UpdatedAt)
		if err := q.Validate(); err != nil {
			return err
		}
		if err := s.quotations.Update(ctx, q); err != nil {
			return fmt.Errorf("update quotation: %w", err)
		}
		project, err = s.recalcTotals(ctx, q.ProjectID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return q, project, nil
}

// DeleteQuotation removes a quotation and recomputes the project totals.
func (s *Service) DeleteQuotation(ctx context.Context, quotationID id.ID) (*Project, error) {
	var project *Project
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.quotations.GetByID(ctx, quotationID)
		if err != nil {
			return err
		}
		if err := s.quotations.Delete(ctx, quotationID); err != nil {
			return fmt.Errorf("delete quotation: %w", err)
		}
		project, err = s.recalcTotals(ctx, q.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func applyPatch(q *Quotation, patch QuotationPatch) {
	if patch.Desc != nil {
		q.Desc = *patch.Desc
	}
	if patch.Cost != nil {
		q.Cost = *patch.Cost
	}
	if patch.Quantity != nil {
		q.Quantity = *patch.Quantity
	}
	if patch.Currency != nil {
		q.Currency = *patch.Currency
	}
	if patch.Type != nil {
		q.Type = *patch.Type
	}
	if patch.QuoteDate != nil {
		q.QuoteDate = *patch.QuoteDate
	}
}

func (s *Service) recalcTotals(ctx context.Context, projectID id.ID) (*Project, error) {
	return s.mutate(ctx, projectID, func(p *Project) error {
		all, err := s.quotations.ListByProject(ctx, projectID, nil)
		if err != nil {
			return fmt.Errorf("list quotations: %w", err)
		}
		p.ApplyQuotationTotals(all)
		return nil
	})
}

// mutate runs read-modify-write with optimistic retry. Business errors from
// fn are returned immediately; only version conflicts are retried.
func (s *Service) mutate(ctx context.Context, projectID id.ID, fn func(p *Project) error) (*Project, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, attempt); err != nil {
				return nil, err
			}
		}

		p, err := s.projects.GetByID(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			return nil, err
		}
		p.Recompute()

		err = s.projects.Update(ctx, p)
		if err == nil {
			return p, nil
		}
		if !apperror.IsConcurrentModification(err) {
			return nil, fmt.Errorf("update project: %w", err)
		}
		lastErr = err
		logger.Debug(ctx, "project ledger conflict, retrying", "project_id", projectID, "attempt", attempt+1)
	}

	logger.Warn(ctx, "project ledger retries exhausted", "project_id", projectID, "attempts", s.maxRetries)
	return nil, lastErr
}

func (s *Service) sleep(ctx context.Context, attempt int) error {
	if s.baseDelay <= 0 {
		return ctx.Err()
	}
	d := s.baseDelay * time.Duration(attempt)
	d += time.Duration(rand.Int64N(int64(s.baseDelay)))

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
