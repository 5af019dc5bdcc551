package projects

import (
	"context"

	"salesdocs/internal/core/id"
)

// Repository persists projects.
type Repository interface {
	GetByID(ctx context.Context, projectID id.ID) (*Project, error)

	// Update writes the ledger if the stored version still equals p.Version,
	// then increments p.Version. A stale version yields CONCURRENT_MODIFICATION.
	Update(ctx context.Context, p *Project) error
}

// QuotationRepository persists project quotations.
type QuotationRepository interface {
	Create(ctx context.Context, q *Quotation) error
	GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error)
	Update(ctx context.Context, q *Quotation) error
	Delete(ctx context.Context, quotationID id.ID) error

	// ListByProject orders by quote_date, then created_at. A nil type lists all.
	ListByProject(ctx context.Context, projectID id.ID, qType *QuotationType) ([]Quotation, error)
}
