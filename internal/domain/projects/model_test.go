package projects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/types"
)

func money(s string) types.Money { return types.MustMoney(s) }

func TestProject_LedgerOperations(t *testing.T) {
	p := &Project{TotalAmount: money("1000")}

	require.NoError(t, p.AddDeposit(money("0")))
	p.Recompute()
	assert.Equal(t, StatusUnpaid, p.PaymentStatus)

	require.NoError(t, p.AddDeposit(money("200")))
	p.Recompute()
	assert.Equal(t, StatusDeposited, p.PaymentStatus)

	require.NoError(t, p.AddPayment(money("300")))
	require.NoError(t, p.AddPayment(money("500")))
	p.Recompute()
	assert.Equal(t, StatusPaid, p.PaymentStatus)
	assert.True(t, money("800").Equal(p.TotalPaidAmount))
	assert.True(t, money("1000").Equal(p.TotalReceived))

	removed, err := p.RemovePaymentAt(0)
	require.NoError(t, err)
	assert.True(t, money("300").Equal(removed))
	require.Len(t, p.PaymentAmounts, 1)
	assert.True(t, money("500").Equal(p.PaymentAmounts[0]))
	p.Recompute()
	assert.Equal(t, StatusPartial, p.PaymentStatus)

	require.NoError(t, p.ClearDeposit())
	assert.True(t, p.DepositAmount.IsZero())
}

func TestProject_LedgerValidation(t *testing.T) {
	p := &Project{}

	assert.True(t, apperror.HasCode(p.AddDeposit(money("-1")), apperror.CodeValidation))
	assert.True(t, apperror.HasCode(p.AddPayment(money("0")), apperror.CodeValidation))
	assert.True(t, apperror.HasCode(p.ClearDeposit(), apperror.CodeValidation))

	_, err := p.RemovePaymentAt(0)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	_, err = p.RemovePaymentAt(-1)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestProject_ApplyQuotationTotals(t *testing.T) {
	p := &Project{}
	p.ApplyQuotationTotals([]Quotation{
		{Type: TypeQuotation, TotalPrice: money("1000"), Currency: CurrencyEUR},
		{Type: TypeVariation, TotalPrice: money("250"), Currency: CurrencyCZK},
		{Type: TypeQuotation, TotalPrice: money("500"), Currency: CurrencyCZK},
	})

	assert.True(t, money("1500").Equal(p.TotalQuotationAmount))
	assert.True(t, money("250").Equal(p.TotalVariationAmount))
	assert.True(t, money("1750").Equal(p.TotalAmount))
	assert.Equal(t, CurrencyEUR, p.CurrencyQuotes)

	p.ApplyQuotationTotals(nil)
	assert.True(t, p.TotalAmount.IsZero())
	assert.Equal(t, DefaultCurrency, p.CurrencyQuotes)
}

func TestQuotation_NormalizeAndValidate(t *testing.T) {
	now := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	q := &Quotation{Desc: "Roof", Cost: money("125.5"), Quantity: money("4")}
	q.Normalize(now)

	require.NoError(t, q.Validate())
	assert.True(t, money("502").Equal(q.TotalPrice))
	assert.Equal(t, DefaultCurrency, q.Currency)
	assert.Equal(t, TypeQuotation, q.Type)
	assert.Equal(t, now, q.QuoteDate)

	q.Currency = 826
	assert.Error(t, q.Validate())
}

func TestParseQuotationType(t *testing.T) {
	got, err := ParseQuotationType("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseQuotationType("Variation")
	require.NoError(t, err)
	assert.Equal(t, TypeVariation, *got)

	_, err = ParseQuotationType("offer")
	assert.Error(t, err)
}
