package pricing

import (
	"github.com/shopspring/decimal"

	"salesdocs/internal/core/types"
)

// Bucket is the tax summary of one rate.
type Bucket struct {
	Rate   types.TaxRate `json:"rate"`
	Net    types.Money   `json:"net"`
	Gross  types.Money   `json:"gross"`
	TaxDue types.Money   `json:"tax_due"`
}

// Summary is the per-rate breakdown of a document.
// Buckets are ordered by first appearance of their rate.
type Summary struct {
	GrandTotalNet types.Money `json:"grand_total_net"`
	Buckets       []Bucket    `json:"buckets"`
}

// Rates lists the rates in bucket order.
func (s Summary) Rates() []types.TaxRate {
	out := make([]types.TaxRate, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Rate
	}
	return out
}

// Bucket returns the bucket for rate.
func (s Summary) Bucket(rate types.TaxRate) (Bucket, bool) {
	for _, b := range s.Buckets {
		if b.Rate.Equal(rate) {
			return b, true
		}
	}
	return Bucket{}, false
}

// TotalTax sums TaxDue over all buckets.
func (s Summary) TotalTax() types.Money {
	total := decimal.Zero
	for _, b := range s.Buckets {
		total = total.Add(b.TaxDue)
	}
	return total
}

// Aggregate folds priced lines into a Summary.
// Net and Gross are rounded once per bucket after summing, not per line.
func Aggregate(lines []PricedLine) Summary {
	index := make(map[string]int)
	var buckets []Bucket
	grand := decimal.Zero

	for _, l := range lines {
		key := l.TaxRate.String()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Rate: l.TaxRate, Net: decimal.Zero, Gross: decimal.Zero})
		}
		buckets[i].Net = buckets[i].Net.Add(l.TotalNet)
		buckets[i].Gross = buckets[i].Gross.Add(l.TotalGross)
		grand = grand.Add(l.TotalNet)
	}

	for i := range buckets {
		buckets[i].Net = types.Round2(buckets[i].Net)
		buckets[i].Gross = types.Round2(buckets[i].Gross)
		buckets[i].TaxDue = types.Round2(buckets[i].Net.Sub(buckets[i].Gross))
	}

	return Summary{
		GrandTotalNet: types.Round2(grand),
		Buckets:       buckets,
	}
}
