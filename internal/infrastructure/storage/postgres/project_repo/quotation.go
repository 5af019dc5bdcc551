package project_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/projects"
	"salesdocs/internal/infrastructure/storage/postgres"
)

type QuotationRepo struct {
	base *postgres.BaseRepo[projects.Quotation]
}

var _ projects.QuotationRepository = (*QuotationRepo)(nil)

func NewQuotationRepo(db postgres.QuerierProvider) *QuotationRepo {
	return &QuotationRepo{
		base: postgres.NewBaseRepo[projects.Quotation](db, "quotation", "project_quotations", "quote_date"),
	}
}

func (r *QuotationRepo) Create(ctx context.Context, q *projects.Quotation) error {
	return r.base.Insert(ctx, q)
}

func (r *QuotationRepo) GetByID(ctx context.Context, quotationID id.ID) (*projects.Quotation, error) {
	return r.base.GetByID(ctx, quotationID)
}

// Update overwrites a quotation. The owning project row serializes writers.
func (r *QuotationRepo) Update(ctx context.Context, q *projects.Quotation) error {
	return r.base.UpdateUnversioned(ctx, q, q.ID)
}

func (r *QuotationRepo) Delete(ctx context.Context, quotationID id.ID) error {
	return r.base.DeleteByID(ctx, quotationID)
}

func (r *QuotationRepo) ListByProject(ctx context.Context, projectID id.ID, qType *projects.QuotationType) ([]projects.Quotation, error) {
	rows, err := r.base.Select(ctx, listByProjectQuery(r.base, projectID, qType))
	if err != nil {
		return nil, err
	}
	out := make([]projects.Quotation, len(rows))
	for i, q := range rows {
		out[i] = *q
	}
	return out, nil
}

func listByProjectQuery(base *postgres.BaseRepo[projects.Quotation], projectID id.ID, qType *projects.QuotationType) squirrel.SelectBuilder {
	q := base.SelectBuilder().
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("quote_date", "created_at")
	if qType != nil {
		q = q.Where(squirrel.Eq{"quotation_type": string(*qType)})
	}
	return q
}
