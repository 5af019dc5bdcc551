package documents

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/numerator"
	"salesdocs/internal/core/tx"
	"salesdocs/internal/core/types"
	"salesdocs/internal/domain"
	"salesdocs/internal/domain/pricing"
	"salesdocs/pkg/logger"
)

var tracer = otel.Tracer("salesdocs/documents")

// PDFContentType is the MIME type of published documents.
const PDFContentType = "application/pdf"

// Policy holds the business settings of the composer.
type Policy struct {
	// ZeroCostOnMissingReference prices unresolved products and installations
	// at zero instead of failing with NOT_FOUND.
	ZeroCostOnMissingReference bool

	// ShippingTaxRate is applied as given; zero means untaxed shipping.
	ShippingTaxRate types.TaxRate
	InvoiceDueDays  int
	SignedURLTTL    time.Duration
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		ZeroCostOnMissingReference: true,
		ShippingTaxRate:            pricing.DefaultShippingTaxRate,
		InvoiceDueDays:             5,
		SignedURLTTL:               7 * 24 * time.Hour,
	}
}

// ServiceConfig wires the composer.
type ServiceConfig struct {
	Repo       Repository
	Resolver   EntityResolver
	Allocator  numerator.Allocator
	Renderer   Renderer
	Blobs      BlobStore
	Inventory  Inventory
	Warranties WarrantyIssuer
	TxManager  tx.Manager

	// Optional
	Notifier Notifier
	Journal  Journal
	Metrics  Metrics

	Policy Policy
}

// Service composes, promotes and manages documents.
type Service struct {
	repo       Repository
	resolver   EntityResolver
	allocator  numerator.Allocator
	renderer   Renderer
	blobs      BlobStore
	inventory  Inventory
	warranties WarrantyIssuer
	txManager  tx.Manager
	notifier   Notifier
	journal    Journal
	metrics    Metrics
	policy     Policy
	now        func() time.Time
}

// NewService creates a new document service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		repo:       cfg.Repo,
		resolver:   cfg.Resolver,
		allocator:  cfg.Allocator,
		renderer:   cfg.Renderer,
		blobs:      cfg.Blobs,
		inventory:  cfg.Inventory,
		warranties: cfg.Warranties,
		txManager:  cfg.TxManager,
		notifier:   cfg.Notifier,
		journal:    cfg.Journal,
		metrics:    cfg.Metrics,
		policy:     cfg.Policy,
		now:        time.Now,
	}
	if s.journal == nil {
		s.journal = nopJournal{}
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.policy.SignedURLTTL <= 0 {
		s.policy.SignedURLTTL = DefaultPolicy().SignedURLTTL
	}
	return s
}

// Compose validates, prices, numbers, publishes and stores a new document.
//
// The code is allocated outside the database transaction. Any failure after
// allocation leaves a gap: the Result reports OutcomeSequenceBurned and the
// code is written to the reconciliation journal.
func (s *Service) Compose(ctx context.Context, req ComposeRequest) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "documents.compose",
		trace.WithAttributes(attribute.String("document.status", string(req.Status))),
	)
	defer func() {
		s.endSpan(span, res, err)
		s.metrics.DocumentComposed(req.Status, res.Outcome)
	}()

	res = Result{Outcome: OutcomeNothingHappened}
	if err := req.Validate(); err != nil {
		return res, err
	}

	doc, err := s.build(ctx, req)
	if err != nil {
		return res, err
	}

	if kind, ok := doc.Status.SequenceKind(); ok {
		code, err := s.allocate(ctx, kind, doc.IssueDate.Year())
		if err != nil {
			return res, err
		}
		doc.AssignCode(code, s.policy.InvoiceDueDays)
	}

	if err := s.publish(ctx, doc); err != nil {
		return s.burn(ctx, doc, err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if doc.Status != StatusInvoice {
			return nil
		}
		return s.finalize(ctx, doc)
	})
	if err != nil {
		s.discardBlob(ctx, doc.PDFPath)
		return s.burn(ctx, doc, err)
	}

	logger.Info(ctx, "document created",
		"id", doc.ID, "code", doc.Code, "status", doc.Status, "grand_total_net", doc.GrandTotalNet.String())
	s.afterCommit(ctx, doc)

	return Result{Outcome: OutcomeCreated, Document: doc}, nil
}

// Promote turns a quote (or draft) into an invoice: a new invoice code, fresh
// prices from the stored line snapshots, a new PDF, and the stock and warranty
// effects, applied exactly once.
func (s *Service) Promote(ctx context.Context, docID id.ID, req PromoteRequest) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "documents.promote",
		trace.WithAttributes(attribute.String("document.id", docID.String())),
	)
	defer func() {
		s.endSpan(span, res, err)
		s.metrics.DocumentComposed(StatusInvoice, res.Outcome)
	}()

	res = Result{Outcome: OutcomeNothingHappened}
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return res, err
	}
	if err := doc.CanPromote(); err != nil {
		return res, err
	}

	previousPath := doc.PDFPath
	previousCode := doc.Code

	doc.Status = StatusInvoice
	doc.IssueDate = s.now().UTC()
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		doc.IssueDate = req.IssueDate.UTC()
	}
	doc.PaymentStatus = req.PaymentStatus
	doc.Reprice()

	code, err := s.allocate(ctx, numerator.KindInvoice, doc.IssueDate.Year())
	if err != nil {
		return res, err
	}
	doc.AssignCode(code, s.policy.InvoiceDueDays)

	if err := s.publish(ctx, doc); err != nil {
		return s.burn(ctx, doc, err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.finalize(ctx, doc)
	})
	if err != nil {
		s.discardBlob(ctx, doc.PDFPath)
		return s.burn(ctx, doc, err)
	}

	if previousPath != "" {
		s.discardBlob(ctx, previousPath)
	}

	logger.Info(ctx, "document promoted", "id", doc.ID, "from", previousCode, "code", doc.Code)
	s.afterCommit(ctx, doc)

	return Result{Outcome: OutcomeCreated, Document: doc}, nil
}

// Get returns a document. Invoices carry their warranty with the derived status.
func (s *Service) Get(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status == StatusInvoice {
		w, err := s.warranties.GetByInvoice(ctx, doc.ID)
		switch {
		case err == nil:
			doc.Warranty = w
		case !apperror.IsNotFound(err):
			return nil, fmt.Errorf("load warranty: %w", err)
		}
	}
	return doc, nil
}

// List returns a page of documents, newest first, with derived warranty statuses.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Document], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	if filter.Status != nil && !filter.Status.Valid() {
		return domain.ListResult[*Document]{}, apperror.NewValidation("unknown document status").
			WithDetail("status", string(*filter.Status))
	}

	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return result, err
	}

	var invoiceIDs []id.ID
	for _, doc := range result.Items {
		if doc.Status == StatusInvoice {
			invoiceIDs = append(invoiceIDs, doc.ID)
		}
	}
	if len(invoiceIDs) == 0 {
		return result, nil
	}

	warranties, err := s.warranties.ListByInvoices(ctx, invoiceIDs)
	if err != nil {
		return result, fmt.Errorf("load warranties: %w", err)
	}
	for _, doc := range result.Items {
		if w, ok := warranties[doc.ID]; ok {
			doc.Warranty = &w
		}
	}
	return result, nil
}

// Delete removes a document and its warranty, then its PDF.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.warranties.DeleteByInvoice(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete warranty: %w", err)
		}
		return s.repo.Delete(ctx, doc.ID)
	})
	if err != nil {
		return err
	}

	s.discardBlob(ctx, doc.PDFPath)
	logger.Info(ctx, "document deleted", "id", doc.ID, "code", doc.Code)
	return nil
}

// Resign issues a fresh signed link for the stored PDF.
func (s *Service) Resign(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.PDFPath == "" {
		return nil, apperror.NewBusinessRule("document has no published PDF").
			WithDetail("document_id", doc.ID.String())
	}

	url, err := s.blobs.SignedURL(ctx, doc.PDFPath, s.policy.SignedURLTTL)
	if err != nil {
		return nil, apperror.NewRenderOrPublish("sign", err)
	}
	doc.PDFURL = url
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("store signed url: %w", err)
	}
	return doc, nil
}

func (s *Service) allocate(ctx context.Context, kind numerator.Kind, year int) (string, error) {
	seq, err := s.allocator.Allocate(ctx, kind, year)
	if err != nil {
		logger.Error(ctx, "sequence allocation failed", "kind", kind, "year", year, "error", err)
		return "", apperror.NewSequenceAllocation(string(kind), err)
	}
	return numerator.FormatCode(kind, year, seq), nil
}

// publish renders the document, uploads the PDF and signs a link to it.
func (s *Service) publish(ctx context.Context, doc *Document) error {
	pdf, err := s.renderer.Render(ctx, RenderModel{Document: doc, GeneratedAt: s.now()})
	if err != nil {
		return apperror.NewRenderOrPublish("render", err)
	}

	ref, err := s.blobs.Upload(ctx, s.blobPath(doc), pdf, PDFContentType)
	if err != nil {
		return apperror.NewRenderOrPublish("upload", err)
	}

	url, err := s.blobs.SignedURL(ctx, ref, s.policy.SignedURLTTL)
	if err != nil {
		s.discardBlob(ctx, ref)
		return apperror.NewRenderOrPublish("sign", err)
	}

	doc.PDFPath = ref
	doc.PDFURL = url
	return nil
}

func (s *Service) blobPath(doc *Document) string {
	ms := s.now().UnixMilli()
	switch doc.Status {
	case StatusQuote:
		return fmt.Sprintf("quotes/%s-%d.pdf", doc.Code, ms)
	case StatusInvoice:
		return fmt.Sprintf("invoices/%s-%d.pdf", doc.Code, ms)
	default:
		return fmt.Sprintf("drafts/%s-%d.pdf", doc.ID, ms)
	}
}

// applyInvoiceEffects runs inside the finalization transaction.
// stock_applied guards against a second application.
// finalize applies the invoice effects to a stored document and saves the
// result. The document row must exist first: the warranty references it.
func (s *Service) finalize(ctx context.Context, doc *Document) error {
	if err := s.applyInvoiceEffects(ctx, doc); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (s *Service) applyInvoiceEffects(ctx context.Context, doc *Document) error {
	if doc.StockApplied {
		return nil
	}

	if moves := StockMoves(doc.Lines); len(moves) > 0 {
		if err := s.inventory.Reserve(ctx, moves); err != nil {
			return err
		}
	}

	w, err := s.warranties.Issue(ctx, doc.ID, nil)
	if err != nil {
		return fmt.Errorf("issue warranty: %w", err)
	}
	doc.WarrantyID = &w.ID
	doc.Warranty = w
	doc.StockApplied = true
	return nil
}

// burn finishes a failed compose. A document without a code burned nothing.
func (s *Service) burn(ctx context.Context, doc *Document, cause error) (Result, error) {
	if doc.Code == "" {
		return Result{Outcome: OutcomeNothingHappened}, cause
	}

	kind, _ := doc.Status.SequenceKind()
	logger.Warn(ctx, "sequence burned", "code", doc.Code, "kind", kind, "cause", cause)
	s.metrics.SequenceBurned(kind)
	if err := s.journal.SequenceBurned(context.WithoutCancel(ctx), kind, doc.Code, cause); err != nil {
		logger.Error(ctx, "journal burned sequence", "code", doc.Code, "error", err)
	}

	if appErr, ok := apperror.AsAppError(cause); ok {
		appErr.WithDetail("burned_code", doc.Code)
	}
	return Result{Outcome: OutcomeSequenceBurned, BurnedCode: doc.Code}, cause
}

func (s *Service) discardBlob(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
		logger.Warn(ctx, "orphan blob left behind", "ref", ref, "error", err)
	}
}

func (s *Service) afterCommit(ctx context.Context, doc *Document) {
	ctx = context.WithoutCancel(ctx)

	if doc.Status != StatusDraft {
		if err := s.journal.DocumentFinalized(ctx, doc); err != nil {
			logger.Error(ctx, "journal finalized document", "code", doc.Code, "error", err)
		}
	}

	if s.notifier == nil || doc.Status == StatusDraft {
		return
	}
	event := DocumentIssued{
		DocumentID:    doc.ID,
		Code:          doc.Code,
		Status:        doc.Status,
		PDFURL:        doc.PDFURL,
		CustomerName:  doc.Customer.DisplayName(),
		CustomerEmail: doc.Customer.Email(),
		GrandTotalNet: doc.GrandTotalNet.StringFixed(2),
	}
	if err := s.notifier.DocumentIssued(ctx, event); err != nil {
		logger.Warn(ctx, "document notification not queued", "code", doc.Code, "error", err)
	}
}

func (s *Service) endSpan(span trace.Span, res Result, err error) {
	span.SetAttributes(attribute.String("document.outcome", string(res.Outcome)))
	if res.BurnedCode != "" {
		span.SetAttributes(attribute.String("document.burned_code", res.BurnedCode))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
