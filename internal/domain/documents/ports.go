package documents

import (
	"context"
	"time"

	"salesdocs/internal/core/id"
	"salesdocs/internal/core/numerator"
	"salesdocs/internal/domain"
	"salesdocs/internal/domain/catalog"
	"salesdocs/internal/domain/warranty"
)

// RenderModel is everything a renderer needs to print a document.
type RenderModel struct {
	Document    *Document
	GeneratedAt time.Time
}

// Renderer produces PDF bytes.
type Renderer interface {
	Render(ctx context.Context, model RenderModel) ([]byte, error)
}

// BlobStore persists rendered files and issues time-limited links.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Inventory applies stock moves: quantity decreases and sold increases,
// all moves or none. A short product yields INSUFFICIENT_STOCK.
type Inventory interface {
	Reserve(ctx context.Context, moves []StockMove) error
}

// DocumentIssued is the notification payload sent after a commit.
type DocumentIssued struct {
	DocumentID    id.ID  `json:"document_id"`
	Code          string `json:"code"`
	Status        Status `json:"status"`
	PDFURL        string `json:"pdf_url"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	GrandTotalNet string `json:"grand_total_net"`
}

// Notifier hands a notification to delivery. Failures never affect the document.
type Notifier interface {
	DocumentIssued(ctx context.Context, event DocumentIssued) error
}

// EntityResolver loads catalog data. Products and Installations return only
// the ids that exist; absent ids are missing references.
type EntityResolver interface {
	Supplier(ctx context.Context, supplierID id.ID) (*catalog.Supplier, error)
	Customer(ctx context.Context, customerID id.ID) (*catalog.Customer, error)
	Products(ctx context.Context, ids []id.ID) (map[id.ID]catalog.Product, error)
	Installations(ctx context.Context, ids []id.ID) (map[id.ID]catalog.Installation, error)
}

// Repository persists documents.
type Repository interface {
	Create(ctx context.Context, doc *Document) error

	// Update is optimistic on Version and increments it on success.
	Update(ctx context.Context, doc *Document) error

	GetByID(ctx context.Context, docID id.ID) (*Document, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error)
	Delete(ctx context.Context, docID id.ID) error
}

// WarrantyIssuer is the slice of the warranty tracker the composer uses.
type WarrantyIssuer interface {
	Issue(ctx context.Context, invoiceID id.ID, start *time.Time) (*warranty.Warranty, error)
	GetByInvoice(ctx context.Context, invoiceID id.ID) (*warranty.Warranty, error)
	ListByInvoices(ctx context.Context, invoiceIDs []id.ID) (map[id.ID]warranty.Warranty, error)
	DeleteByInvoice(ctx context.Context, invoiceID id.ID) error
}

// Journal records reconciliation events.
type Journal interface {
	SequenceBurned(ctx context.Context, kind numerator.Kind, code string, cause error) error
	DocumentFinalized(ctx context.Context, doc *Document) error
}

// Metrics counts composer outcomes.
type Metrics interface {
	DocumentComposed(status Status, outcome Outcome)
	SequenceBurned(kind numerator.Kind)
}

type nopMetrics struct{}

func (nopMetrics) DocumentComposed(Status, Outcome) {}
func (nopMetrics) SequenceBurned(numerator.Kind)    {}

type nopJournal struct{}

func (nopJournal) SequenceBurned(context.Context, numerator.Kind, string, error) error { return nil }
func (nopJournal) DocumentFinalized(context.Context, *Document) error                  { return nil }
