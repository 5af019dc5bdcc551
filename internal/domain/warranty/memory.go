package warranty

import (
	"context"
	"fmt"
	"sync"
	"time"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
)

// MemoryRepository is an in-process Repository for tests.
type MemoryRepository struct {
	mu       sync.Mutex
	items    map[id.ID]Warranty
	invoices func(invoiceID id.ID) bool
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[id.ID]Warranty)}
}

var _ Repository = (*MemoryRepository)(nil)

// ReferenceInvoices makes Create reject warranties whose invoice does not
// exist, as the invoice_id foreign key does.
func (r *MemoryRepository) ReferenceInvoices(exists func(invoiceID id.ID) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices = exists
}

func (r *MemoryRepository) Create(_ context.Context, w *Warranty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.invoices != nil && !r.invoices(w.InvoiceID) {
		return fmt.Errorf("insert warranty: invoice %s does not exist", w.InvoiceID)
	}
	for _, existing := range r.items {
		if existing.InvoiceID == w.InvoiceID {
			return apperror.NewDuplicate("warranty", "invoice_id", w.InvoiceID.String())
		}
	}
	r.items[w.ID] = *w
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, warrantyID id.ID) (*Warranty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[warrantyID]
	if !ok {
		return nil, apperror.NewNotFound("warranty", warrantyID)
	}
	return &w, nil
}

func (r *MemoryRepository) GetByInvoice(_ context.Context, invoiceID id.ID) (*Warranty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.items {
		if w.InvoiceID == invoiceID {
			return &w, nil
		}
	}
	return nil, apperror.NewNotFound("warranty", invoiceID)
}

func (r *MemoryRepository) ListByInvoices(_ context.Context, invoiceIDs []id.ID) ([]Warranty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[id.ID]bool, len(invoiceIDs))
	for _, v := range invoiceIDs {
		want[v] = true
	}
	var out []Warranty
	for _, w := range r.items {
		if want[w.InvoiceID] {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *MemoryRepository) DeleteByInvoice(_ context.Context, invoiceID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, w := range r.items {
		if w.InvoiceID == invoiceID {
			delete(r.items, k)
		}
	}
	return nil
}

func (r *MemoryRepository) ExpireEndedBefore(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, w := range r.items {
		if w.Status == StatusActive && CurrentStatus(&w, now) == StatusExpired {
			w.Status = StatusExpired
			r.items[k] = w
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored warranties.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
