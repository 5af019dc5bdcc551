package documents

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/types"
	"salesdocs/internal/domain"
	"salesdocs/internal/domain/catalog"
)

// RefLine references a catalog item by id.
type RefLine struct {
	ID       id.ID          `json:"id"`
	Quantity types.Quantity `json:"quantity"`
}

// FuelLine is a travel position priced per distance unit.
type FuelLine struct {
	Distance types.Quantity `json:"distance"`
	UnitCost types.Money    `json:"unit_cost"`
	TaxRate  types.TaxRate  `json:"tax_rate"`
}

// ComposeRequest is the input of Compose.
// Exactly one of CustomerID and Customer must be set.
type ComposeRequest struct {
	Status        Status                    `json:"status" validate:"required,oneof=draft quote invoice"`
	SupplierID    id.ID                     `json:"supplier_id"`
	CustomerID    *id.ID                    `json:"customer_id,omitempty"`
	Customer      *catalog.CustomerSnapshot `json:"customer,omitempty"`
	Installations []RefLine                 `json:"installations"`
	Products      []RefLine                 `json:"products"`
	Fuels         []FuelLine                `json:"fuels"`
	ShippingCost  types.Money               `json:"shipping_cost"`
	IssueDate     *time.Time                `json:"issue_date,omitempty"`
	PaymentStatus string                    `json:"payment_status,omitempty" validate:"omitempty,max=32"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request shape before anything is resolved or allocated.
func (r *ComposeRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}

	var problems []string
	if id.IsNil(r.SupplierID) {
		problems = append(problems, "supplier_id is required")
	}

	switch {
	case r.CustomerID != nil && r.Customer != nil:
		problems = append(problems, "customer_id and customer are mutually exclusive")
	case r.CustomerID == nil && r.Customer == nil:
		problems = append(problems, "customer is required")
	case r.CustomerID != nil && id.IsNil(*r.CustomerID):
		problems = append(problems, "customer_id is invalid")
	case r.Customer != nil && (r.Customer.Personal == nil) == (r.Customer.Company == nil):
		problems = append(problems, "customer must carry exactly one of personal_info and company_info")
	}

	for i, l := range r.Installations {
		if id.IsNil(l.ID) {
			problems = append(problems, fmt.Sprintf("installations[%d].id is required", i))
		}
		if !l.Quantity.IsPositive() {
			problems = append(problems, fmt.Sprintf("installations[%d].quantity must be positive", i))
		}
	}
	for i, l := range r.Products {
		if id.IsNil(l.ID) {
			problems = append(problems, fmt.Sprintf("products[%d].id is required", i))
		}
		if !l.Quantity.IsPositive() {
			problems = append(problems, fmt.Sprintf("products[%d].quantity must be positive", i))
		}
	}
	for i, f := range r.Fuels {
		if !f.Distance.IsPositive() {
			problems = append(problems, fmt.Sprintf("fuels[%d].distance must be positive", i))
		}
		if f.UnitCost.IsNegative() {
			problems = append(problems, fmt.Sprintf("fuels[%d].unit_cost must not be negative", i))
		}
		if f.TaxRate.IsNegative() {
			problems = append(problems, fmt.Sprintf("fuels[%d].tax_rate must not be negative", i))
		}
	}
	if r.ShippingCost.IsNegative() {
		problems = append(problems, "shipping_cost must not be negative")
	}

	if len(problems) > 0 {
		return apperror.NewValidation(strings.Join(problems, "; ")).WithDetail("errors", problems)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidation(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	return apperror.NewValidation("request validation failed").WithDetail("fields", fields)
}

// PromoteRequest is the input of Promote.
type PromoteRequest struct {
	IssueDate     *time.Time `json:"issue_date,omitempty"`
	PaymentStatus string     `json:"payment_status,omitempty"`
}

// ListFilter narrows List.
type ListFilter struct {
	domain.ListFilter

	Status     *Status
	CodePrefix string
}
