// Package projects maintains the payment ledger of construction projects
// and the quotations that make up their total.
package projects

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/types"
)

// Currency is an ISO 4217 numeric code.
type Currency int

const (
	CurrencyCZK Currency = 203
	CurrencyUSD Currency = 840
	CurrencyEUR Currency = 978

	DefaultCurrency = CurrencyCZK
)

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyCZK, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// Project carries the embedded payment ledger.
type Project struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`

	DepositAmount  types.Money   `db:"deposit_amount" json:"deposit_amount"`
	PaymentAmounts []types.Money `db:"payment_amounts" json:"payment_amounts"`

	TotalAmount          types.Money `db:"total_amount" json:"total_amount"`
	TotalQuotationAmount types.Money `db:"total_quotation_amount" json:"total_quotation_amount"`
	TotalVariationAmount types.Money `db:"total_variation_amount" json:"total_variation_amount"`
	CurrencyQuotes       Currency    `db:"currency_quotes" json:"currency_quotes"`
	CurrencyPayment      Currency    `db:"currency_payment" json:"currency_payment"`

	// Derived, rewritten by Recompute on every save
	TotalPaidAmount types.Money   `db:"total_paid_amount" json:"total_paid_amount"`
	TotalReceived   types.Money   `db:"total_received" json:"total_received"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Recompute refreshes the derived ledger fields. It never fails.
func (p *Project) Recompute() {
	paid := types.Sum(p.PaymentAmounts)
	p.TotalPaidAmount = paid
	p.TotalReceived = p.DepositAmount.Add(paid)
	p.PaymentStatus = DerivePaymentStatus(p.TotalAmount, p.DepositAmount, paid)
}

// AddDeposit increases the deposit. Zero is accepted and only re-derives the status.
func (p *Project) AddDeposit(amount types.Money) error {
	if amount.IsNegative() {
		return apperror.NewValidation("deposit amount must not be negative").
			WithDetail("amount", amount.String())
	}
	p.DepositAmount = p.DepositAmount.Add(amount)
	return nil
}

// ClearDeposit resets the deposit to zero.
func (p *Project) ClearDeposit() error {
	if !p.DepositAmount.IsPositive() {
		return apperror.NewValidation("project has no deposit to delete")
	}
	p.DepositAmount = decimal.Zero
	return nil
}

// AddPayment appends a payment installment.
func (p *Project) AddPayment(amount types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("amount", amount.String())
	}
	p.PaymentAmounts = append(p.PaymentAmounts, amount)
	return nil
}

// RemovePaymentAt deletes the installment at index and returns it.
func (p *Project) RemovePaymentAt(index int) (types.Money, error) {
	if index < 0 || index >= len(p.PaymentAmounts) {
		return decimal.Zero, apperror.NewValidation("payment index out of range").
			WithDetail("index", index).
			WithDetail("count", len(p.PaymentAmounts))
	}
	removed := p.PaymentAmounts[index]
	p.PaymentAmounts = append(p.PaymentAmounts[:index:index], p.PaymentAmounts[index+1:]...)
	return removed, nil
}

// ApplyQuotationTotals sets the quotation-derived totals. quotations must be
// ordered by quote date, then creation time.
func (p *Project) ApplyQuotationTotals(quotations []Quotation) {
	quoted, varied := decimal.Zero, decimal.Zero
	for _, q := range quotations {
		switch q.Type {
		case TypeQuotation:
			quoted = quoted.Add(q.TotalPrice)
		case TypeVariation:
			varied = varied.Add(q.TotalPrice)
		}
	}
	p.TotalQuotationAmount = quoted
	p.TotalVariationAmount = varied
	p.TotalAmount = quoted.Add(varied)

	p.CurrencyQuotes = DefaultCurrency
	if len(quotations) > 0 && quotations[0].Currency.Valid() {
		p.CurrencyQuotes = quotations[0].Currency
	}
}

// QuotationType separates the base quotation from later variations.
type QuotationType string

const (
	TypeQuotation QuotationType = "quotation"
	TypeVariation QuotationType = "variation"
)

// ParseQuotationType accepts an empty string as "all".
func ParseQuotationType(s string) (*QuotationType, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil, nil
	}
	t := QuotationType(s)
	if t != TypeQuotation && t != TypeVariation {
		return nil, apperror.NewValidation("unknown quotation type").WithDetail("type", s)
	}
	return &t, nil
}

// Quotation is one priced position of a project's commercial agreement.
type Quotation struct {
	ID         id.ID          `db:"id" json:"id"`
	ProjectID  id.ID          `db:"project_id" json:"project_id"`
	Desc       string         `db:"description" json:"desc"`
	Cost       types.Money    `db:"cost" json:"cost"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	Currency   Currency       `db:"currency" json:"currency"`
	Type       QuotationType  `db:"quotation_type" json:"quotation_type"`
	QuoteDate  time.Time      `db:"quote_date" json:"quote_date"`
	TotalPrice types.Money    `db:"total_price" json:"total_price"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// Normalize fills defaults and derives TotalPrice.
func (q *Quotation) Normalize(now time.Time) {
	if q.Currency == 0 {
		q.Currency = DefaultCurrency
	}
	if q.Type == "" {
		q.Type = TypeQuotation
	}
	if q.QuoteDate.IsZero() {
		q.QuoteDate = now
	}
	q.TotalPrice = q.Cost.Mul(q.Quantity)
}

// Validate checks business rules.
func (q *Quotation) Validate() error {
	if strings.TrimSpace(q.Desc) == "" {
		return apperror.NewValidation("quotation description is required")
	}
	if q.Quantity.IsNegative() {
		return apperror.NewValidation("quotation quantity must not be negative")
	}
	if !q.Currency.Valid() {
		return apperror.NewValidation("unsupported currency").WithDetail("currency", int(q.Currency))
	}
	if q.Type != TypeQuotation && q.Type != TypeVariation {
		return apperror.NewValidation("unknown quotation type").WithDetail("type", string(q.Type))
	}
	return nil
}
