// Package catalog holds the read models the document composer resolves
// references against. Catalog maintenance lives elsewhere.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"salesdocs/internal/core/id"
	"salesdocs/internal/core/types"
)

// StockStatus is the availability label shown for a product.
type StockStatus string

const (
	StockIn  StockStatus = "In Stock"
	StockLow StockStatus = "Low Stock"
	StockOut StockStatus = "Out of Stock"
)

// LowStockThreshold is the quantity below which a product is Low Stock.
var LowStockThreshold = decimal.NewFromInt(10)

// StockStatusFor derives the label from an on-hand quantity.
func StockStatusFor(qty types.Quantity) StockStatus {
	switch {
	case qty.LessThanOrEqual(decimal.Zero):
		return StockOut
	case qty.LessThan(LowStockThreshold):
		return StockLow
	default:
		return StockIn
	}
}

// Product is a stocked item.
type Product struct {
	ID        id.ID          `db:"id" json:"id"`
	Code      string         `db:"code" json:"code"`
	Name      string         `db:"name" json:"name"`
	Thumbnail string         `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	Price     *types.Money   `db:"price" json:"price,omitempty"`
	Discount  *types.Money   `db:"discount" json:"discount,omitempty"`
	TaxRate   types.TaxRate  `db:"tax" json:"tax"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Sold      types.Quantity `db:"sold" json:"sold"`
}

// UnitCost is the discounted price when set, else the list price, else zero.
func (p Product) UnitCost() types.Money {
	switch {
	case p.Discount != nil:
		return *p.Discount
	case p.Price != nil:
		return *p.Price
	default:
		return decimal.Zero
	}
}

// StockStatus derives the availability label.
func (p Product) StockStatus() StockStatus {
	return StockStatusFor(p.Quantity)
}

// Installation is a labour or service position.
// Cost is free text in storage; see UnitCost.
type Installation struct {
	ID       id.ID         `db:"id" json:"id"`
	Code     string        `db:"code" json:"code"`
	Desc     string        `db:"description" json:"desc"`
	ImageURL string        `db:"image_url" json:"image_url,omitempty"`
	Cost     string        `db:"cost" json:"cost"`
	TaxRate  types.TaxRate `db:"tax" json:"tax"`
}

// UnitCost parses Cost leniently: anything unparseable prices at zero.
func (i Installation) UnitCost() types.Money {
	return types.ParseLenient(strings.TrimSpace(i.Cost))
}

// Supplier is the issuing company printed on documents.
type Supplier struct {
	ID          id.ID  `db:"id" json:"id"`
	CompanyName string `db:"company_name" json:"company_name"`
	Address     string `db:"address" json:"address"`
	ICO         string `db:"ico" json:"ico"`
	DIC         string `db:"dic" json:"dic"`
	BankAccount string `db:"bank_account" json:"bank_account"`
	LogoURL     string `db:"logo_url" json:"logo_url,omitempty"`
}

// PersonalInfo is an individual customer embedded in a document.
type PersonalInfo struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// CompanyInfo is a company customer embedded in a document.
type CompanyInfo struct {
	CompanyName string `json:"company_name" validate:"required"`
	ICO         string `json:"ico,omitempty"`
	DIC         string `json:"dic,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// CustomerSnapshot is the customer as printed on a document.
// Exactly one of Personal and Company is set for embedded customers.
type CustomerSnapshot struct {
	ID       *id.ID        `json:"id,omitempty"`
	Personal *PersonalInfo `json:"personal_info,omitempty"`
	Company  *CompanyInfo  `json:"company_info,omitempty"`
}

// DisplayName is the name printed in the customer block.
func (c CustomerSnapshot) DisplayName() string {
	switch {
	case c.Company != nil:
		return c.Company.CompanyName
	case c.Personal != nil:
		return c.Personal.FullName
	default:
		return ""
	}
}

// Email returns the contact address, if any.
func (c CustomerSnapshot) Email() string {
	switch {
	case c.Company != nil:
		return c.Company.Email
	case c.Personal != nil:
		return c.Personal.Email
	default:
		return ""
	}
}

// Customer is a registered customer account.
type Customer struct {
	ID       id.ID  `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
	Phone    string `db:"phone" json:"phone"`
	Address  string `db:"address" json:"address"`
}

// Snapshot copies the account into a document-embedded form.
func (c Customer) Snapshot() CustomerSnapshot {
	ref := c.ID
	return CustomerSnapshot{
		ID: &ref,
		Personal: &PersonalInfo{
			FullName: c.FullName,
			Email:    c.Email,
			Phone:    c.Phone,
			Address:  c.Address,
		},
	}
}
