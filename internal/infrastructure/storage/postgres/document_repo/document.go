// Package document_repo provides PostgreSQL repositories for issued documents
// and their warranties.
package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain"
	"salesdocs/internal/domain/documents"
	"salesdocs/internal/infrastructure/storage/postgres"
)

// DocumentRepo stores documents in the documents table. Party snapshots,
// lines and the tax summary are jsonb columns.
type DocumentRepo struct {
	base *postgres.BaseRepo[documents.Document]
}

var _ documents.Repository = (*DocumentRepo)(nil)

// NewDocumentRepo creates a document repository.
func NewDocumentRepo(db postgres.QuerierProvider) *DocumentRepo {
	return &DocumentRepo{
		base: postgres.NewBaseRepo[documents.Document](db, "document", "documents", "created_at DESC"),
	}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *documents.Document) error {
	if doc.Version == 0 {
		doc.Version = 1
	}
	return r.base.Insert(ctx, doc)
}

// Update is optimistic on doc.Version and bumps it on success.
func (r *DocumentRepo) Update(ctx context.Context, doc *documents.Document) error {
	if err := r.base.Update(ctx, doc, doc.ID); err != nil {
		return err
	}
	doc.Version++
	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, docID id.ID) (*documents.Document, error) {
	return r.base.GetByID(ctx, docID)
}

// GetByCode looks a document up by its issued code.
func (r *DocumentRepo) GetByCode(ctx context.Context, code string) (*documents.Document, error) {
	return r.base.Get(ctx, r.base.SelectBuilder().Where(squirrel.Eq{"code": code}), code)
}

func (r *DocumentRepo) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*documents.Document], error) {
	return r.base.List(ctx, filter.ListFilter, listPredicates(filter)...)
}

func (r *DocumentRepo) Delete(ctx context.Context, docID id.ID) error {
	return r.base.DeleteByID(ctx, docID)
}

func listPredicates(filter documents.ListFilter) []squirrel.Sqlizer {
	var preds []squirrel.Sqlizer
	if filter.Status != nil {
		preds = append(preds, squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.CodePrefix != "" {
		preds = append(preds, squirrel.Like{"code": filter.CodePrefix + "%"})
	}
	return preds
}
