// Package pricing turns line items into taxed amounts and folds them into
// per-rate tax summaries. Everything here is pure: no I/O, no clocks.
package pricing

import (
	"github.com/shopspring/decimal"

	"salesdocs/internal/core/id"
	"salesdocs/internal/core/types"
)

// Kind tags the variant of a line item.
type Kind string

const (
	KindInstallation Kind = "installation"
	KindProduct      Kind = "product"
	KindFuel         Kind = "fuel"
	KindShipping     Kind = "shipping"
)

// DefaultShippingTaxRate applies to the shipping line unless configured otherwise.
var DefaultShippingTaxRate = decimal.NewFromInt(21)

// Snapshot is the reference data copied onto the line when the document is
// issued, so historical documents do not change when the catalog does.
type Snapshot struct {
	RefID    *id.ID `json:"ref_id,omitempty"`
	Code     string `json:"code,omitempty"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// LineItem is one priced position of a document.
// Quantity holds the distance for fuel lines and is forced to 1 for shipping.
type LineItem struct {
	Kind     Kind           `json:"kind"`
	Ref      Snapshot       `json:"ref"`
	Quantity types.Quantity `json:"quantity"`
	UnitCost types.Money    `json:"unit_cost"`
	TaxRate  types.TaxRate  `json:"tax_rate"`

	// Missing marks a line whose catalog reference did not resolve.
	Missing bool `json:"missing,omitempty"`
}

// Priced holds the derived amounts of a line.
//
// UnitCost is stored tax-inclusive. The field names follow the printed
// documents: UnitNet is the stored cost and UnitGross the amount with tax
// backed out.
type Priced struct {
	UnitNet    types.Money `json:"unit_net"`
	UnitGross  types.Money `json:"unit_gross"`
	TotalNet   types.Money `json:"total_net"`
	TotalGross types.Money `json:"total_gross"`
}

// Tax is the tax portion of the line total.
func (p Priced) Tax() types.Money {
	return types.Round2(p.TotalNet.Sub(p.TotalGross))
}

// PricedLine is a line item together with its derived amounts.
type PricedLine struct {
	LineItem
	Priced
}

// ShippingLine builds the synthetic shipping line of a document.
func ShippingLine(cost types.Money, rate types.TaxRate) LineItem {
	return LineItem{
		Kind:     KindShipping,
		Ref:      Snapshot{Name: "Shipping"},
		Quantity: decimal.NewFromInt(1),
		UnitCost: cost,
		TaxRate:  rate,
	}
}

// MissingLine is the zero-cost stand-in for a reference that no longer resolves.
func MissingLine(kind Kind, refID id.ID, qty types.Quantity) LineItem {
	ref := refID
	return LineItem{
		Kind:     kind,
		Ref:      Snapshot{RefID: &ref},
		Quantity: qty,
		UnitCost: decimal.Zero,
		TaxRate:  decimal.Zero,
		Missing:  true,
	}
}
