// Package catalog_repo reads the product, installation and party catalogs
// and applies stock moves.
package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/catalog"
	"salesdocs/internal/domain/documents"
	"salesdocs/internal/infrastructure/storage/postgres"
)

// Resolver implements documents.EntityResolver over the catalog tables.
type Resolver struct {
	suppliers     *postgres.BaseRepo[catalog.Supplier]
	customers     *postgres.BaseRepo[catalog.Customer]
	products      *postgres.BaseRepo[catalog.Product]
	installations *postgres.BaseRepo[catalog.Installation]
}

var _ documents.EntityResolver = (*Resolver)(nil)

func NewResolver(db postgres.QuerierProvider) *Resolver {
	return &Resolver{
		suppliers:     postgres.NewBaseRepo[catalog.Supplier](db, "supplier", "suppliers", "company_name"),
		customers:     postgres.NewBaseRepo[catalog.Customer](db, "customer", "customers", "full_name"),
		products:      postgres.NewBaseRepo[catalog.Product](db, "product", "products", "code"),
		installations: postgres.NewBaseRepo[catalog.Installation](db, "installation", "installations", "code"),
	}
}

func (r *Resolver) Supplier(ctx context.Context, supplierID id.ID) (*catalog.Supplier, error) {
	return r.suppliers.GetByID(ctx, supplierID)
}

func (r *Resolver) Customer(ctx context.Context, customerID id.ID) (*catalog.Customer, error) {
	return r.customers.GetByID(ctx, customerID)
}

// Products returns the products that exist among ids.
func (r *Resolver) Products(ctx context.Context, ids []id.ID) (map[id.ID]catalog.Product, error) {
	if len(ids) == 0 {
		return map[id.ID]catalog.Product{}, nil
	}
	rows, err := r.products.Select(ctx, r.products.SelectBuilder().Where(squirrel.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	out := make(map[id.ID]catalog.Product, len(rows))
	for _, p := range rows {
		out[p.ID] = *p
	}
	return out, nil
}

// Installations returns the installations that exist among ids.
func (r *Resolver) Installations(ctx context.Context, ids []id.ID) (map[id.ID]catalog.Installation, error) {
	if len(ids) == 0 {
		return map[id.ID]catalog.Installation{}, nil
	}
	rows, err := r.installations.Select(ctx, r.installations.SelectBuilder().Where(squirrel.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	out := make(map[id.ID]catalog.Installation, len(rows))
	for _, i := range rows {
		out[i.ID] = *i
	}
	return out, nil
}
