// Package documents composes quotes and invoices: it resolves references,
// prices lines, allocates codes, publishes the PDF and applies the
// irreversible invoice side effects exactly once.
package documents

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/numerator"
	"salesdocs/internal/core/types"
	"salesdocs/internal/domain/catalog"
	"salesdocs/internal/domain/pricing"
	"salesdocs/internal/domain/warranty"
)

// Status is the document lifecycle state.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusQuote   Status = "quote"
	StatusInvoice Status = "invoice"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusQuote, StatusInvoice:
		return true
	}
	return false
}

// SequenceKind maps a status to the counter it draws from. Drafts have none.
func (s Status) SequenceKind() (numerator.Kind, bool) {
	switch s {
	case StatusQuote:
		return numerator.KindQuote, true
	case StatusInvoice:
		return numerator.KindInvoice, true
	}
	return "", false
}

// DefaultPaymentStatus is the invoice payment label when none is supplied.
const DefaultPaymentStatus = "unpaid"

// Document is an issued quote or invoice, or an unnumbered draft.
// Lines and party data are snapshots taken at issue time.
type Document struct {
	ID     id.ID  `db:"id" json:"id"`
	Code   string `db:"code" json:"code,omitempty"`
	Status Status `db:"status" json:"status"`

	IssueDate      time.Time  `db:"issue_date" json:"issue_date"`
	DueDate        *time.Time `db:"due_date" json:"due_date,omitempty"`
	VariableSymbol string     `db:"variable_symbol" json:"variable_symbol,omitempty"`
	PaymentStatus  string     `db:"payment_status" json:"payment_status,omitempty"`

	SupplierID id.ID                    `db:"supplier_id" json:"supplier_id"`
	Supplier   catalog.Supplier         `db:"supplier" json:"supplier"`
	CustomerID *id.ID                   `db:"customer_id" json:"customer_id,omitempty"`
	Customer   catalog.CustomerSnapshot `db:"customer" json:"customer"`

	Lines         []pricing.PricedLine `db:"lines" json:"lines"`
	ShippingCost  types.Money          `db:"shipping_cost" json:"shipping_cost"`
	Summary       pricing.Summary      `db:"summary" json:"summary"`
	GrandTotalNet types.Money          `db:"grand_total_net" json:"grand_total_net"`

	PDFURL  string `db:"pdf_url" json:"pdf_url,omitempty"`
	PDFPath string `db:"pdf_path" json:"pdf_path,omitempty"`

	WarrantyID   *id.ID `db:"warranty_id" json:"warranty_id,omitempty"`
	StockApplied bool   `db:"stock_applied" json:"stock_applied"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Warranty is attached on reads with its derived status; it is not stored here.
	Warranty *warranty.Warranty `db:"-" json:"warranty,omitempty"`
}

// Reprice recomputes every derived amount from the line snapshots.
func (d *Document) Reprice() {
	items := make([]pricing.LineItem, len(d.Lines))
	for i, l := range d.Lines {
		items[i] = l.LineItem
	}
	d.Lines = pricing.PriceLines(items)
	d.Summary = pricing.Aggregate(d.Lines)
	d.GrandTotalNet = d.Summary.GrandTotalNet
}

// AssignCode sets the code and the invoice payment fields derived from it.
func (d *Document) AssignCode(code string, dueDays int) {
	d.Code = code
	if d.Status != StatusInvoice {
		return
	}
	d.VariableSymbol = numerator.VariableSymbol(code)
	due := d.IssueDate.AddDate(0, 0, dueDays)
	d.DueDate = &due
	if d.PaymentStatus == "" {
		d.PaymentStatus = DefaultPaymentStatus
	}
}

// CanPromote checks that the document can still become an invoice.
func (d *Document) CanPromote() error {
	if d.Status == StatusInvoice || d.StockApplied {
		return apperror.NewBusinessRule("document is already an invoice").
			WithDetail("document_id", d.ID.String()).
			WithDetail("code", d.Code)
	}
	return nil
}

// StockMove is a quantity to take out of stock for one product.
type StockMove struct {
	ProductID id.ID
	Quantity  types.Quantity
}

// StockMoves sums product quantities per product, skipping unresolved lines.
// Moves are ordered by product id so concurrent invoices lock rows in the same order.
func StockMoves(lines []pricing.PricedLine) []StockMove {
	totals := make(map[id.ID]decimal.Decimal)
	for _, l := range lines {
		if l.Kind != pricing.KindProduct || l.Missing || l.Ref.RefID == nil {
			continue
		}
		totals[*l.Ref.RefID] = totals[*l.Ref.RefID].Add(l.Quantity)
	}

	moves := make([]StockMove, 0, len(totals))
	for productID, qty := range totals {
		moves = append(moves, StockMove{ProductID: productID, Quantity: qty})
	}
	sort.Slice(moves, func(i, j int) bool {
		return moves[i].ProductID.String() < moves[j].ProductID.String()
	})
	return moves
}
