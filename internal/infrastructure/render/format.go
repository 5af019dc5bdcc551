package render

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter prints amounts the way Czech invoices show them: comma decimals,
// grouped thousands and a trailing currency symbol.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter returns a formatter for tag with the given currency symbol.
func NewFormatter(tag language.Tag, symbol string) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Number prints v with exactly two decimals.
func (f *Formatter) Number(v decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(v.Round(2).InexactFloat64(), number.Scale(2)))
}

// Money prints v followed by the currency symbol.
func (f *Formatter) Money(v decimal.Decimal) string {
	return f.Number(v) + " " + f.symbol
}

// Quantity prints v without trailing zeros.
func (f *Formatter) Quantity(v decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(v.InexactFloat64()))
}

// Percent prints a tax rate as "21 %".
func (f *Formatter) Percent(v decimal.Decimal) string {
	return v.String() + " %"
}

// Date prints d as dd.mm.yyyy.
func Date(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02.01.2006")
}

// DatePtr is Date for optional dates.
func DatePtr(d *time.Time) string {
	if d == nil {
		return ""
	}
	return Date(*d)
}
