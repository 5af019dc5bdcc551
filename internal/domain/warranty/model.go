// Package warranty issues and tracks invoice warranties.
package warranty

import (
	"time"

	"salesdocs/internal/core/id"
)

// Status is the warranty state. The persisted value is only a hint;
// CurrentStatus is authoritative.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

// DefaultCoverage is three years.
const DefaultCoverage = 3 * 365 * 24 * time.Hour

// Warranty covers exactly one invoice.
type Warranty struct {
	ID        id.ID     `db:"id" json:"id"`
	InvoiceID id.ID     `db:"invoice_id" json:"invoice_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// New builds a warranty starting at start and ending coverage later.
func New(invoiceID id.ID, start time.Time, coverage time.Duration) *Warranty {
	w := &Warranty{
		ID:        id.New(),
		InvoiceID: invoiceID,
		StartDate: start,
		EndDate:   start.Add(coverage),
	}
	w.Status = CurrentStatus(w, start)
	return w
}

// CurrentStatus is expired iff now is after the end date.
// A missing end date falls back to the start date.
func CurrentStatus(w *Warranty, now time.Time) Status {
	end := w.EndDate
	if end.IsZero() {
		end = w.StartDate
	}
	if now.After(end) {
		return StatusExpired
	}
	return StatusActive
}

// WithDerivedStatus returns a copy whose Status is the derived one.
func (w Warranty) WithDerivedStatus(now time.Time) Warranty {
	w.Status = CurrentStatus(&w, now)
	return w
}
