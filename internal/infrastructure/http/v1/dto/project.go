package dto

import (
	"time"

	"salesdocs/internal/core/types"
	"salesdocs/internal/domain/projects"
)

// AmountRequest is the body of deposit and payment routes.
type AmountRequest struct {
	Amount types.Money `json:"amount"`
}

// ProjectResponse is the API view of a project ledger.
type ProjectResponse struct {
	ID                   string                 `json:"id"`
	Code                 string                 `json:"code"`
	Name                 string                 `json:"name"`
	DepositAmount        types.Money            `json:"deposit_amount"`
	PaymentAmounts       []types.Money          `json:"payment_amounts"`
	TotalPaidAmount      types.Money            `json:"total_paid_amount"`
	TotalReceived        types.Money            `json:"total_received"`
	TotalAmount          types.Money            `json:"total_amount"`
	TotalQuotationAmount types.Money            `json:"total_quotation_amount"`
	TotalVariationAmount types.Money            `json:"total_variation_amount"`
	CurrencyQuotes       projects.Currency      `json:"currency_quotes"`
	CurrencyPayment      projects.Currency      `json:"currency_payment"`
	PaymentStatus        projects.PaymentStatus `json:"payment_status"`
	Version              int                    `json:"version"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// FromProject maps a domain project.
func FromProject(p *projects.Project) ProjectResponse {
	payments := p.PaymentAmounts
	if payments == nil {
		payments = []types.Money{}
	}
	return ProjectResponse{
		ID:                   p.ID.String(),
		Code:                 p.Code,
		Name:                 p.Name,
		DepositAmount:        p.DepositAmount,
		PaymentAmounts:       payments,
		TotalPaidAmount:      p.TotalPaidAmount,
		TotalReceived:        p.TotalReceived,
		TotalAmount:          p.TotalAmount,
		TotalQuotationAmount: p.TotalQuotationAmount,
		TotalVariationAmount: p.TotalVariationAmount,
		CurrencyQuotes:       p.CurrencyQuotes,
		CurrencyPayment:      p.CurrencyPayment,
		PaymentStatus:        p.PaymentStatus,
		Version:              p.Version,
		UpdatedAt:            p.UpdatedAt,
	}
}

// RemovedPaymentResponse is returned by DELETE /projects/:id/payments/:index.
type RemovedPaymentResponse struct {
	Removed types.Money     `json:"removed"`
	Project ProjectResponse `json:"project"`
}

// CreateQuotationRequest is the body of POST /projects/:id/quotations.
type CreateQuotationRequest struct {
	Desc      string         `json:"desc" binding:"required,max=500"`
	Cost      types.Money    `json:"cost"`
	Quantity  types.Quantity `json:"quantity"`
	Currency  int            `json:"currency" binding:"omitempty,oneof=203 840 978"`
	Type      string         `json:"quotation_type" binding:"omitempty,oneof=quotation variation"`
	QuoteDate *time.Time     `json:"quote_date,omitempty"`
}

// ToDomain maps the request. Project id comes from the path.
func (r CreateQuotationRequest) ToDomain() projects.Quotation {
	q := projects.Quotation{
		Desc:     r.Desc,
		Cost:     r.Cost,
		Quantity: r.Quantity,
		Currency: projects.Currency(r.Currency),
		Type:     projects.QuotationType(r.Type),
	}
	if r.QuoteDate != nil {
		q.QuoteDate = *r.QuoteDate
	}
	return q
}

// UpdateQuotationRequest is the body of PUT /quotations/:id. Absent fields stay unchanged.
type UpdateQuotationRequest struct {
	Desc      *string         `json:"desc,omitempty" binding:"omitempty,max=500"`
	Cost      *types.Money    `json:"cost,omitempty"`
	Quantity  *types.Quantity `json:"quantity,omitempty"`
	Currency  *int            `json:"currency,omitempty" binding:"omitempty,oneof=203 840 978"`
	Type      *string         `json:"quotation_type,omitempty" binding:"omitempty,oneof=quotation variation"`
	QuoteDate *time.Time      `json:"quote_date,omitempty"`
}

// ToPatch maps the request.
func (r UpdateQuotationRequest) ToPatch() projects.QuotationPatch {
	patch := projects.QuotationPatch{
		Desc:      r.Desc,
		Cost:      r.Cost,
		Quantity:  r.Quantity,
		QuoteDate: r.QuoteDate,
	}
	if r.Currency != nil {
		c := projects.Currency(*r.Currency)
		patch.Currency = &c
	}
	if r.Type != nil {
		t := projects.QuotationType(*r.Type)
		patch.Type = &t
	}
	return patch
}

// QuotationResponse is the API view of a quotation.
type QuotationResponse struct {
	ID         string                 `json:"id"`
	ProjectID  string                 `json:"project_id"`
	Desc       string                 `json:"desc"`
	Cost       types.Money            `json:"cost"`
	Quantity   types.Quantity         `json:"quantity"`
	Currency   projects.Currency      `json:"currency"`
	Type       projects.QuotationType `json:"quotation_type"`
	QuoteDate  time.Time              `json:"quote_date"`
	TotalPrice types.Money            `json:"total_price"`
}

// FromQuotation maps a domain quotation.
func FromQuotation(q *projects.Quotation) QuotationResponse {
	return QuotationResponse{
		ID:         q.ID.String(),
		ProjectID:  q.ProjectID.String(),
		Desc:       q.Desc,
		Cost:       q.Cost,
		Quantity:   q.Quantity,
		Currency:   q.Currency,
		Type:       q.Type,
		QuoteDate:  q.QuoteDate,
		TotalPrice: q.TotalPrice,
	}
}

// QuotationWriteResponse returns the changed quotation with the refreshed project totals.
type QuotationWriteResponse struct {
	Quotation *QuotationResponse `json:"quotation,omitempty"`
	Project   ProjectResponse    `json:"project"`
}
