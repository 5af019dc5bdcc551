package project_repo

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/projects"
	"salesdocs/internal/infrastructure/storage/postgres"
)

type tagDB struct {
	tag  string
	sqls []string
}

func (d *tagDB) GetQuerier(context.Context) postgres.Querier { return d }

func (d *tagDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	d.sqls = append(d.sqls, sql)
	return pgconn.NewCommandTag(d.tag), nil
}

func (d *tagDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (d *tagDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func TestProjectRepo_Update_BumpsVersion(t *testing.T) {
	db := &tagDB{tag: "UPDATE 1"}
	p := &projects.Project{ID: id.New(), Version: 2}

	require.NoError(t, NewProjectRepo(db).Update(context.Background(), p))
	assert.Equal(t, 3, p.Version)
	assert.Contains(t, db.sqls[0], "version = version + 1")
	assert.Contains(t, db.sqls[0], "AND version = $")
}

func TestProjectRepo_Update_Stale(t *testing.T) {
	db := &tagDB{tag: "UPDATE 0"}
	p := &projects.Project{ID: id.New(), Version: 2}

	err := NewProjectRepo(db).Update(context.Background(), p)

	assert.True(t, apperror.IsConcurrentModification(err))
	assert.Equal(t, 2, p.Version)
}

func TestQuotationRepo_UpdateMissing(t *testing.T) {
	db := &tagDB{tag: "UPDATE 0"}

	err := NewQuotationRepo(db).Update(context.Background(), &projects.Quotation{ID: id.New()})

	assert.True(t, apperror.IsNotFound(err))
	assert.NotContains(t, db.sqls[0], "version")
}

func TestListByProjectQuery(t *testing.T) {
	repo := NewQuotationRepo(&tagDB{})
	projectID := id.New()
	variation := projects.TypeVariation

	sql, args, err := listByProjectQuery(repo.base, projectID, &variation).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM project_quotations WHERE project_id = $1 AND quotation_type = $2 ORDER BY quote_date, created_at")
	assert.Equal(t, []any{projectID, "variation"}, args)

	sql, args, err = listByProjectQuery(repo.base, projectID, nil).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "quotation_type =")
	assert.Len(t, args, 1)
}
