package warranty

import (
	"context"
	"time"

	"salesdocs/internal/core/id"
)

// Repository persists warranties. Writes join the caller's transaction when ctx carries one.
type Repository interface {
	Create(ctx context.Context, w *Warranty) error
	GetByID(ctx context.Context, warrantyID id.ID) (*Warranty, error)
	GetByInvoice(ctx context.Context, invoiceID id.ID) (*Warranty, error)
	ListByInvoices(ctx context.Context, invoiceIDs []id.ID) ([]Warranty, error)
	DeleteByInvoice(ctx context.Context, invoiceID id.ID) error

	// ExpireEndedBefore flips stale active hints to expired and returns the count.
	ExpireEndedBefore(ctx context.Context, now time.Time) (int64, error)
}
