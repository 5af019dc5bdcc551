package documents

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/catalog"
	"salesdocs/internal/domain/pricing"
	"salesdocs/pkg/logger"
)

// references holds everything resolved for one compose request.
type references struct {
	supplier      *catalog.Supplier
	customer      catalog.CustomerSnapshot
	products      map[id.ID]catalog.Product
	installations map[id.ID]catalog.Installation
}

// resolve loads all references concurrently and waits for every lookup.
func (s *Service) resolve(ctx context.Context, req ComposeRequest) (*references, error) {
	refs := &references{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		supplier, err := s.resolver.Supplier(gctx, req.SupplierID)
		if err != nil {
			return fmt.Errorf("resolve supplier: %w", err)
		}
		refs.supplier = supplier
		return nil
	})

	if req.CustomerID != nil {
		customerID := *req.CustomerID
		g.Go(func() error {
			customer, err := s.resolver.Customer(gctx, customerID)
			if err != nil {
				return fmt.Errorf("resolve customer: %w", err)
			}
			refs.customer = customer.Snapshot()
			return nil
		})
	} else {
		refs.customer = *req.Customer
	}

	if len(req.Products) > 0 {
		g.Go(func() error {
			products, err := s.resolver.Products(gctx, uniqueIDs(req.Products))
			if err != nil {
				return fmt.Errorf("resolve products: %w", err)
			}
			refs.products = products
			return nil
		})
	}

	if len(req.Installations) > 0 {
		g.Go(func() error {
			installations, err := s.resolver.Installations(gctx, uniqueIDs(req.Installations))
			if err != nil {
				return fmt.Errorf("resolve installations: %w", err)
			}
			refs.installations = installations
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// build resolves references and returns a priced, unnumbered document.
func (s *Service) build(ctx context.Context, req ComposeRequest) (*Document, error) {
	refs, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	var items []pricing.LineItem
	for _, l := range req.Installations {
		inst, ok := refs.installations[l.ID]
		if !ok {
			line, err := s.missingLine(ctx, pricing.KindInstallation, l)
			if err != nil {
				return nil, err
			}
			items = append(items, line)
			continue
		}
		ref := inst.ID
		items = append(items, pricing.LineItem{
			Kind:     pricing.KindInstallation,
			Ref:      pricing.Snapshot{RefID: &ref, Code: inst.Code, Name: inst.Desc, ImageURL: inst.ImageURL},
			Quantity: l.Quantity,
			UnitCost: inst.UnitCost(),
			TaxRate:  inst.TaxRate,
		})
	}

	for _, l := range req.Products {
		prod, ok := refs.products[l.ID]
		if !ok {
			line, err := s.missingLine(ctx, pricing.KindProduct, l)
			if err != nil {
				return nil, err
			}
			items = append(items, line)
			continue
		}
		ref := prod.ID
		items = append(items, pricing.LineItem{
			Kind:     pricing.KindProduct,
			Ref:      pricing.Snapshot{RefID: &ref, Code: prod.Code, Name: prod.Name, ImageURL: prod.Thumbnail},
			Quantity: l.Quantity,
			UnitCost: prod.UnitCost(),
			TaxRate:  prod.TaxRate,
		})
	}

	for _, f := range req.Fuels {
		items = append(items, pricing.LineItem{
			Kind:     pricing.KindFuel,
			Ref:      pricing.Snapshot{Name: "Fuel"},
			Quantity: f.Distance,
			UnitCost: f.UnitCost,
			TaxRate:  f.TaxRate,
		})
	}

	if req.ShippingCost.IsPositive() {
		items = append(items, pricing.ShippingLine(req.ShippingCost, s.policy.ShippingTaxRate))
	}

	now := s.now().UTC()
	issueDate := now
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issueDate = req.IssueDate.UTC()
	}

	doc := &Document{
		ID:            id.New(),
		Status:        req.Status,
		IssueDate:     issueDate,
		PaymentStatus: req.PaymentStatus,
		SupplierID:    refs.supplier.ID,
		Supplier:      *refs.supplier,
		CustomerID:    refs.customer.ID,
		Customer:      refs.customer,
		Lines:         pricing.PriceLines(items),
		ShippingCost:  req.ShippingCost,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	doc.Summary = pricing.Aggregate(doc.Lines)
	doc.GrandTotalNet = doc.Summary.GrandTotalNet
	return doc, nil
}

func (s *Service) missingLine(ctx context.Context, kind pricing.Kind, l RefLine) (pricing.LineItem, error) {
	if !s.policy.ZeroCostOnMissingReference {
		return pricing.LineItem{}, apperror.NewNotFound(string(kind), l.ID)
	}
	logger.Warn(ctx, "reference not found, pricing at zero", "kind", kind, "id", l.ID)
	return pricing.MissingLine(kind, l.ID, l.Quantity), nil
}

func uniqueIDs(lines []RefLine) []id.ID {
	seen := make(map[id.ID]bool, len(lines))
	out := make([]id.ID, 0, len(lines))
	for _, l := range lines {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l.ID)
	}
	return out
}
