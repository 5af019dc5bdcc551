package projects

import (
	"github.com/shopspring/decimal"

	"salesdocs/internal/core/types"
)

// PaymentStatus is the derived settlement state of a project.
type PaymentStatus string

const (
	StatusProcessing PaymentStatus = "processing"
	StatusUnpaid     PaymentStatus = "unpaid"
	StatusDeposited  PaymentStatus = "deposited"
	StatusPartial    PaymentStatus = "partial"
	StatusPaid       PaymentStatus = "paid"
)

// DerivePaymentStatus applies the settlement rules in order; the first match wins.
//
//  1. nothing to pay yet            -> processing
//  2. deposit alone covers total    -> paid
//  3. nothing received              -> unpaid
//  4. deposit but no payments       -> deposited
//  5. received below total          -> partial
//  6. otherwise                     -> paid
func DerivePaymentStatus(total, deposit, paid types.Money) PaymentStatus {
	received := deposit.Add(paid)

	switch {
	case total.LessThanOrEqual(decimal.Zero):
		return StatusProcessing
	case deposit.GreaterThanOrEqual(total):
		return StatusPaid
	case received.LessThanOrEqual(decimal.Zero):
		return StatusUnpaid
	case deposit.IsPositive() && paid.IsZero():
		return StatusDeposited
	case received.LessThan(total):
		return StatusPartial
	default:
		return StatusPaid
	}
}
