package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"

	"salesdocs/internal/domain/documents"
	"salesdocs/internal/domain/pricing"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PDFClient is the subset of the Gotenberg client used by the renderer.
type PDFClient interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Renderer implements documents.Renderer.
type Renderer struct {
	tpl    *template.Template
	client PDFClient
	format *Formatter
}

var _ documents.Renderer = (*Renderer)(nil)

// NewRenderer parses the document template and wires the PDF client.
func NewRenderer(client PDFClient) (*Renderer, error) {
	if client == nil {
		return nil, fmt.Errorf("render: pdf client required")
	}
	format := NewFormatter(language.Czech, "Kč")
	funcMap := template.FuncMap{
		"money":    format.Money,
		"qty":      format.Quantity,
		"percent":  format.Percent,
		"date":     Date,
		"datePtr":  DatePtr,
		"lineName": lineName,
	}
	tpl, err := template.New("document.html").Funcs(funcMap).ParseFS(templatesFS, "templates/document.html")
	if err != nil {
		return nil, fmt.Errorf("parse document template: %w", err)
	}
	return &Renderer{tpl: tpl, client: client, format: format}, nil
}

// view is the template model.
type view struct {
	Title       string
	Doc         *documents.Document
	IsInvoice   bool
	Customer    customerView
	Lines       []pricing.PricedLine
	GeneratedAt time.Time
}

type customerView struct {
	Name    string
	Address string
	ICO     string
	DIC     string
	Email   string
}

// HTML renders the document page without converting it.
func (r *Renderer) HTML(model documents.RenderModel) (string, error) {
	if model.Document == nil {
		return "", fmt.Errorf("render: document required")
	}
	buf := &bytes.Buffer{}
	if err := r.tpl.Execute(buf, newView(model)); err != nil {
		return "", fmt.Errorf("execute document template: %w", err)
	}
	return buf.String(), nil
}

// Render produces the PDF bytes for model.
func (r *Renderer) Render(ctx context.Context, model documents.RenderModel) ([]byte, error) {
	html, err := r.HTML(model)
	if err != nil {
		return nil, err
	}
	pdf, err := r.client.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", model.Document.Code, err)
	}
	return pdf, nil
}

func newView(model documents.RenderModel) view {
	doc := model.Document
	v := view{
		Doc:         doc,
		IsInvoice:   doc.Status == documents.StatusInvoice,
		Lines:       doc.Lines,
		GeneratedAt: model.GeneratedAt,
		Customer:    customerOf(doc),
	}
	switch doc.Status {
	case documents.StatusInvoice:
		v.Title = "Faktura - daňový doklad"
	case documents.StatusQuote:
		v.Title = "Cenová nabídka"
	default:
		v.Title = "Koncept"
	}
	return v
}

func customerOf(doc *documents.Document) customerView {
	c := doc.Customer
	cv := customerView{Name: c.DisplayName(), Email: c.Email()}
	switch {
	case c.Company != nil:
		cv.Address = c.Company.Address
		cv.ICO = c.Company.ICO
		cv.DIC = c.Company.DIC
	case c.Personal != nil:
		cv.Address = c.Personal.Address
	}
	return cv
}

func lineName(l pricing.PricedLine) string {
	switch {
	case l.Missing:
		return "Položka není k dispozici"
	case l.Kind == pricing.KindFuel:
		return "Doprava technika (km)"
	case l.Kind == pricing.KindShipping:
		return "Doprava"
	case l.Ref.Name != "":
		return l.Ref.Name
	default:
		return l.Ref.Code
	}
}
