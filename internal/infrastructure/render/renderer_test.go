package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/catalog"
	"salesdocs/internal/domain/documents"
	"salesdocs/internal/domain/pricing"
)

type stubPDF struct {
	html string
	err  error
}

func (s *stubPDF) RenderHTML(_ context.Context, html string) ([]byte, error) {
	s.html = html
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF"), nil
}

func invoiceFixture() *documents.Document {
	productID := id.New()
	lines := pricing.PriceLines([]pricing.LineItem{
		{
			Kind:     pricing.KindProduct,
			Ref:      pricing.Snapshot{RefID: &productID, Code: "P-100", Name: "Solar panel"},
			Quantity: decimal.NewFromInt(2),
			UnitCost: decimal.NewFromInt(121),
			TaxRate:  decimal.NewFromInt(21),
		},
		pricing.ShippingLine(decimal.NewFromInt(500), decimal.NewFromInt(21)),
	})
	summary := pricing.Aggregate(lines)
	due := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	return &documents.Document{
		ID:             id.New(),
		Code:           "VF2025-0007",
		Status:         documents.StatusInvoice,
		IssueDate:      time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		DueDate:        &due,
		VariableSymbol: "20250007",
		PaymentStatus:  documents.DefaultPaymentStatus,
		Supplier:       catalog.Supplier{CompanyName: "Sun & Roof s.r.o.", ICO: "12345678"},
		Customer: catalog.CustomerSnapshot{
			Company: &catalog.CompanyInfo{CompanyName: "ACME a.s.", ICO: "87654321"},
		},
		Lines:         lines,
		Summary:       summary,
		GrandTotalNet: summary.GrandTotalNet,
	}
}

func TestRenderer_HTML(t *testing.T) {
	r, err := NewRenderer(&stubPDF{})
	require.NoError(t, err)

	html, err := r.HTML(documents.RenderModel{Document: invoiceFixture(), GeneratedAt: time.Now()})
	require.NoError(t, err)

	assert.Contains(t, html, "Faktura - daňový doklad")
	assert.Contains(t, html, "VF2025-0007")
	assert.Contains(t, html, "20.06.2025")
	assert.Contains(t, html, "20250007")
	assert.Contains(t, html, "Sun &amp; Roof s.r.o.")
	assert.Contains(t, html, "ACME a.s.")
	assert.Contains(t, html, "Solar panel")
	assert.Contains(t, html, "100,00 Kč")
	assert.Contains(t, html, "742,00 Kč")
	assert.Contains(t, html, "21 %")
}

func TestRenderer_QuoteHasNoPaymentBlock(t *testing.T) {
	r, err := NewRenderer(&stubPDF{})
	require.NoError(t, err)

	doc := invoiceFixture()
	doc.Status = documents.StatusQuote
	doc.Code = "BG2025-0001"
	doc.DueDate = nil
	doc.VariableSymbol = ""

	html, err := r.HTML(documents.RenderModel{Document: doc})
	require.NoError(t, err)

	assert.Contains(t, html, "Cenová nabídka")
	assert.NotContains(t, html, "Variabilní symbol")
}

func TestRenderer_Render(t *testing.T) {
	pdf := &stubPDF{}
	r, err := NewRenderer(pdf)
	require.NoError(t, err)

	out, err := r.Render(context.Background(), documents.RenderModel{Document: invoiceFixture()})

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out))
	assert.Contains(t, pdf.html, "VF2025-0007")
}

func TestRenderer_RenderFailure(t *testing.T) {
	cause := errors.New("gotenberg down")
	r, err := NewRenderer(&stubPDF{err: cause})
	require.NoError(t, err)

	_, err = r.Render(context.Background(), documents.RenderModel{Document: invoiceFixture()})
	assert.ErrorIs(t, err, cause)
}

func TestFormatter(t *testing.T) {
	f := NewFormatter(language.Czech, "Kč")

	assert.Equal(t, "613,22", f.Number(decimal.RequireFromString("613.2231")))
	assert.Equal(t, "0,50 Kč", f.Money(decimal.RequireFromString("0.5")))
	assert.Equal(t, "12,5", f.Quantity(decimal.RequireFromString("12.5")))
	assert.Equal(t, "21 %", f.Percent(decimal.NewFromInt(21)))
	assert.Equal(t, "", DatePtr(nil))
}
