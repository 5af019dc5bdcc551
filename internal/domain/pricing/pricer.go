package pricing

import (
	"github.com/shopspring/decimal"

	"salesdocs/internal/core/types"
)

// Price computes the amounts of a single position.
//
//	unitNet    = unitCost
//	unitGross  = round2(unitNet / (1 + rate/100))
//	totalGross = round2(unitGross * qty)
//	totalNet   = unitNet * qty
//
// unitGross is rounded before it is multiplied, so totals match the printed unit price.
func Price(unitCost types.Money, rate types.TaxRate, qty types.Quantity) Priced {
	unitNet := unitCost
	unitGross := unitNet
	if !rate.IsZero() {
		unitGross = types.Round2(unitNet.Div(types.TaxDivisor(rate)))
	}
	return Priced{
		UnitNet:    unitNet,
		UnitGross:  unitGross,
		TotalNet:   unitNet.Mul(qty),
		TotalGross: types.Round2(unitGross.Mul(qty)),
	}
}

// PriceLine dispatches on the line kind and prices it.
func PriceLine(line LineItem) PricedLine {
	qty := line.Quantity
	if line.Kind == KindShipping {
		qty = decimal.NewFromInt(1)
		line.Quantity = qty
	}
	return PricedLine{
		LineItem: line,
		Priced:   Price(line.UnitCost, line.TaxRate, qty),
	}
}

// PriceLines prices every line, preserving order.
func PriceLines(lines []LineItem) []PricedLine {
	out := make([]PricedLine, len(lines))
	for i, l := range lines {
		out[i] = PriceLine(l)
	}
	return out
}
