package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/warranty"
	"salesdocs/internal/infrastructure/storage/postgres"
)

// WarrantyRepo stores warranties. invoice_id carries a unique constraint.
type WarrantyRepo struct {
	base *postgres.BaseRepo[warranty.Warranty]
}

var _ warranty.Repository = (*WarrantyRepo)(nil)

func NewWarrantyRepo(db postgres.QuerierProvider) *WarrantyRepo {
	return &WarrantyRepo{
		base: postgres.NewBaseRepo[warranty.Warranty](db, "warranty", "warranties", "start_date DESC"),
	}
}

func (r *WarrantyRepo) Create(ctx context.Context, w *warranty.Warranty) error {
	return r.base.Insert(ctx, w)
}

func (r *WarrantyRepo) GetByID(ctx context.Context, warrantyID id.ID) (*warranty.Warranty, error) {
	return r.base.GetByID(ctx, warrantyID)
}

func (r *WarrantyRepo) GetByInvoice(ctx context.Context, invoiceID id.ID) (*warranty.Warranty, error) {
	q := r.base.SelectBuilder().Where(squirrel.Eq{"invoice_id": invoiceID})
	return r.base.Get(ctx, q, invoiceID.String())
}

func (r *WarrantyRepo) ListByInvoices(ctx context.Context, invoiceIDs []id.ID) ([]warranty.Warranty, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	rows, err := r.base.Select(ctx, r.base.SelectBuilder().Where(squirrel.Eq{"invoice_id": invoiceIDs}))
	if err != nil {
		return nil, err
	}
	out := make([]warranty.Warranty, len(rows))
	for i, w := range rows {
		out[i] = *w
	}
	return out, nil
}

func (r *WarrantyRepo) DeleteByInvoice(ctx context.Context, invoiceID id.ID) error {
	_, err := r.base.DeleteWhere(ctx, squirrel.Eq{"invoice_id": invoiceID})
	return err
}

// ExpireEndedBefore flips active warranties whose end date has passed.
func (r *WarrantyRepo) ExpireEndedBefore(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := expireQuery(now).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build expire: %w", err)
	}
	tag, err := r.base.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("expire warranties: %w", err)
	}
	return tag.RowsAffected(), nil
}

func expireQuery(now time.Time) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update("warranties").
		Set("status", string(warranty.StatusExpired)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": string(warranty.StatusActive)}).
		Where(squirrel.Lt{"end_date": now})
}
