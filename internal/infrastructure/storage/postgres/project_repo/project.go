// Package project_repo stores project ledgers and their quotations.
package project_repo

import (
	"context"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/projects"
	"salesdocs/internal/infrastructure/storage/postgres"
)

type ProjectRepo struct {
	base *postgres.BaseRepo[projects.Project]
}

var _ projects.Repository = (*ProjectRepo)(nil)

func NewProjectRepo(db postgres.QuerierProvider) *ProjectRepo {
	return &ProjectRepo{
		base: postgres.NewBaseRepo[projects.Project](db, "project", "projects", "created_at DESC"),
	}
}

func (r *ProjectRepo) GetByID(ctx context.Context, projectID id.ID) (*projects.Project, error) {
	return r.base.GetByID(ctx, projectID)
}

// Update writes the whole ledger row guarded by p.Version.
func (r *ProjectRepo) Update(ctx context.Context, p *projects.Project) error {
	if err := r.base.Update(ctx, p, p.ID); err != nil {
		return err
	}
	p.Version++
	return nil
}
