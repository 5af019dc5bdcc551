package dto

import (
	"time"

	"salesdocs/internal/core/id"
	"salesdocs/internal/core/types"
	"salesdocs/internal/domain/catalog"
	"salesdocs/internal/domain/documents"
	"salesdocs/internal/domain/pricing"
	"salesdocs/internal/domain/warranty"
)

// RefLineRequest references a product or installation.
type RefLineRequest struct {
	ID       string         `json:"id" binding:"required,uuid"`
	Quantity types.Quantity `json:"quantity"`
}

// FuelLineRequest is a travel position.
type FuelLineRequest struct {
	Distance types.Quantity `json:"distance"`
	UnitCost types.Money    `json:"unit_cost"`
	TaxRate  types.TaxRate  `json:"tax_rate"`
}

// ComposeDocumentRequest is the body of POST /documents.
type ComposeDocumentRequest struct {
	Status        string                    `json:"status" binding:"required,oneof=draft quote invoice"`
	SupplierID    string                    `json:"supplier_id" binding:"required,uuid"`
	CustomerID    *string                   `json:"customer_id,omitempty" binding:"omitempty,uuid"`
	Customer      *catalog.CustomerSnapshot `json:"customer,omitempty"`
	Installations []RefLineRequest          `json:"installations" binding:"omitempty,dive"`
	Products      []RefLineRequest          `json:"products" binding:"omitempty,dive"`
	Fuels         []FuelLineRequest         `json:"fuels"`
	ShippingCost  types.Money               `json:"shipping_cost"`
	IssueDate     *time.Time                `json:"issue_date,omitempty"`
	PaymentStatus string                    `json:"payment_status,omitempty" binding:"omitempty,max=32"`
}

// ToDomain maps the request. Ids were validated by the binding tags.
func (r ComposeDocumentRequest) ToDomain() documents.ComposeRequest {
	req := documents.ComposeRequest{
		Status:        documents.Status(r.Status),
		SupplierID:    parseID(r.SupplierID),
		Customer:      r.Customer,
		Installations: refLines(r.Installations),
		Products:      refLines(r.Products),
		ShippingCost:  r.ShippingCost,
		IssueDate:     r.IssueDate,
		PaymentStatus: r.PaymentStatus,
	}
	if r.CustomerID != nil {
		customerID := parseID(*r.CustomerID)
		req.CustomerID = &customerID
	}
	for _, f := range r.Fuels {
		req.Fuels = append(req.Fuels, documents.FuelLine{
			Distance: f.Distance,
			UnitCost: f.UnitCost,
			TaxRate:  f.TaxRate,
		})
	}
	return req
}

func refLines(in []RefLineRequest) []documents.RefLine {
	out := make([]documents.RefLine, 0, len(in))
	for _, l := range in {
		out = append(out, documents.RefLine{ID: parseID(l.ID), Quantity: l.Quantity})
	}
	return out
}

func parseID(s string) id.ID {
	v, err := id.Parse(s)
	if err != nil {
		return id.ID{}
	}
	return v
}

// PromoteDocumentRequest is the body of POST /documents/:id/promote.
type PromoteDocumentRequest struct {
	IssueDate     *time.Time `json:"issue_date,omitempty"`
	PaymentStatus string     `json:"payment_status,omitempty" binding:"omitempty,max=32"`
}

// ToDomain maps the request.
func (r PromoteDocumentRequest) ToDomain() documents.PromoteRequest {
	return documents.PromoteRequest{IssueDate: r.IssueDate, PaymentStatus: r.PaymentStatus}
}

// DocumentListRequest is the query of GET /documents.
type DocumentListRequest struct {
	ListRequest
	Status     string `form:"status" binding:"omitempty,oneof=draft quote invoice"`
	CodePrefix string `form:"code" binding:"omitempty,max=32"`
}

// ToFilter maps the query.
func (r DocumentListRequest) ToFilter() documents.ListFilter {
	f := documents.ListFilter{
		ListFilter: r.ListRequest.ToFilter(),
		CodePrefix: r.CodePrefix,
	}
	if r.Status != "" {
		s := documents.Status(r.Status)
		f.Status = &s
	}
	return f
}

// LineResponse is one priced line.
type LineResponse struct {
	Kind       pricing.Kind   `json:"kind"`
	RefID      *id.ID         `json:"ref_id,omitempty"`
	Code       string         `json:"code,omitempty"`
	Name       string         `json:"name"`
	Missing    bool           `json:"missing,omitempty"`
	Quantity   types.Quantity `json:"quantity"`
	UnitCost   types.Money    `json:"unit_cost"`
	TaxRate    types.TaxRate  `json:"tax_rate"`
	UnitNet    types.Money    `json:"unit_net"`
	UnitGross  types.Money    `json:"unit_gross"`
	Tax        types.Money    `json:"tax"`
	TotalGross types.Money    `json:"total_gross"`
	TotalNet   types.Money    `json:"total_net"`
}

// DocumentResponse is the API view of a document.
type DocumentResponse struct {
	ID             string                   `json:"id"`
	Code           string                   `json:"code,omitempty"`
	Status         documents.Status         `json:"status"`
	IssueDate      time.Time                `json:"issue_date"`
	DueDate        *time.Time               `json:"due_date,omitempty"`
	VariableSymbol string                   `json:"variable_symbol,omitempty"`
	PaymentStatus  string                   `json:"payment_status,omitempty"`
	Supplier       catalog.Supplier         `json:"supplier"`
	Customer       catalog.CustomerSnapshot `json:"customer"`
	Lines          []LineResponse           `json:"lines"`
	ShippingCost   types.Money              `json:"shipping_cost"`
	Summary        pricing.Summary          `json:"summary"`
	GrandTotalNet  types.Money              `json:"grand_total_net"`
	PDFURL         string                   `json:"pdf_url,omitempty"`
	Warranty       *WarrantyResponse        `json:"warranty,omitempty"`
	Version        int                      `json:"version"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// FromDocument maps a domain document.
func FromDocument(d *documents.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:             d.ID.String(),
		Code:           d.Code,
		Status:         d.Status,
		IssueDate:      d.IssueDate,
		DueDate:        d.DueDate,
		VariableSymbol: d.VariableSymbol,
		PaymentStatus:  d.PaymentStatus,
		Supplier:       d.Supplier,
		Customer:       d.Customer,
		Lines:          make([]LineResponse, 0, len(d.Lines)),
		ShippingCost:   d.ShippingCost,
		Summary:        d.Summary,
		GrandTotalNet:  d.GrandTotalNet,
		PDFURL:         d.PDFURL,
		Version:        d.Version,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, l := range d.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			Kind:       l.Kind,
			RefID:      l.Ref.RefID,
			Code:       l.Ref.Code,
			Name:       l.Ref.Name,
			Missing:    l.Missing,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			TaxRate:    l.TaxRate,
			UnitNet:    l.UnitNet,
			UnitGross:  l.UnitGross,
			Tax:        l.Tax(),
			TotalGross: l.TotalGross,
			TotalNet:   l.TotalNet,
		})
	}
	if d.Warranty != nil {
		w := FromWarranty(d.Warranty)
		resp.Warranty = &w
	}
	return resp
}

// ComposeResponse is returned by compose and promote.
type ComposeResponse struct {
	Outcome  documents.Outcome `json:"outcome"`
	Document DocumentResponse  `json:"document"`
}

// WarrantyResponse is the API view of a warranty with its derived status.
type WarrantyResponse struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoice_id"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Status    warranty.Status `json:"status"`
}

// FromWarranty maps a domain warranty.
func FromWarranty(w *warranty.Warranty) WarrantyResponse {
	return WarrantyResponse{
		ID:        w.ID.String(),
		InvoiceID: w.InvoiceID.String(),
		StartDate: w.StartDate,
		EndDate:   w.EndDate,
		Status:    w.Status,
	}
}
