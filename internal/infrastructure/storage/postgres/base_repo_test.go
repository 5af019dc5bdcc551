package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/domain"
)

type testRow struct {
	ID        id.ID     `db:"id"`
	Code      string    `db:"code"`
	Note      string    `db:"note"`
	Version   int       `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type execCall struct {
	sql  string
	args []any
}

// fakeDB records Exec calls and answers with a fixed tag or error.
type fakeDB struct {
	calls []execCall
	tag   pgconn.CommandTag
	err   error
}

func (f *fakeDB) GetQuerier(context.Context) Querier { return f }

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	return f.tag, f.err
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return errRow{errors.New("not supported")}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func newTestRepo(db *fakeDB) *BaseRepo[testRow] {
	return NewBaseRepo[testRow](db, "row", "rows", "created_at DESC")
}

func TestBaseRepo_UpdateQuery_Versioned(t *testing.T) {
	repo := newTestRepo(&fakeDB{})
	row := &testRow{ID: id.New(), Code: "A", Note: "n", Version: 4}

	sql, args, err := repo.UpdateQuery(row, true)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE rows SET code = $1, note = $2, updated_at = NOW(), version = version + 1 WHERE id = $3 AND version = $4", sql)
	assert.Equal(t, []any{"A", "n", row.ID, 4}, args)
}

func TestBaseRepo_UpdateQuery_Unversioned(t *testing.T) {
	repo := newTestRepo(&fakeDB{})
	row := &testRow{ID: id.New(), Code: "A"}

	sql, _, err := repo.UpdateQuery(row, false)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE rows SET code = $1, note = $2, updated_at = NOW() WHERE id = $3", sql)
}

func TestBaseRepo_Update_StaleVersion(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := newTestRepo(db)
	row := &testRow{ID: id.New(), Version: 1}

	err := repo.Update(context.Background(), row, row.ID)

	assert.True(t, apperror.IsConcurrentModification(err))
	assert.Len(t, db.calls, 1)
}

func TestBaseRepo_Update_Applied(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("UPDATE 1")}
	repo := newTestRepo(db)
	row := &testRow{ID: id.New(), Version: 1}

	assert.NoError(t, repo.Update(context.Background(), row, row.ID))
}

func TestBaseRepo_Insert_UniqueViolation(t *testing.T) {
	db := &fakeDB{err: &pgconn.PgError{Code: "23505", ConstraintName: "documents_code_key", Detail: "Key (code)=(BG2025-0001) already exists."}}
	repo := newTestRepo(db)

	err := repo.Insert(context.Background(), &testRow{ID: id.New()})

	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].sql, "INSERT INTO rows (code,id,note,version)")
}

func TestBaseRepo_InsertQuery_ZeroTimestampsUseColumnDefault(t *testing.T) {
	repo := newTestRepo(&fakeDB{})

	sql, args, err := repo.InsertQuery(&testRow{ID: id.New(), Code: "A", Version: 1})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO rows (code,id,note,version) VALUES ($1,$2,$3,$4)", sql)
	for _, arg := range args {
		_, isTime := arg.(time.Time)
		assert.False(t, isTime, "zero timestamp written explicitly")
	}

	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	sql, args, err = repo.InsertQuery(&testRow{ID: id.New(), CreatedAt: created})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO rows (code,created_at,id,note,version) VALUES ($1,$2,$3,$4,$5)", sql)
	assert.Equal(t, created, args[1])
}

func TestBaseRepo_Insert_OtherError(t *testing.T) {
	cause := errors.New("connection reset")
	repo := newTestRepo(&fakeDB{err: cause})

	err := repo.Insert(context.Background(), &testRow{ID: id.New()})

	assert.ErrorIs(t, err, cause)
	assert.False(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestBaseRepo_DeleteByID_Missing(t *testing.T) {
	db := &fakeDB{tag: pgconn.NewCommandTag("DELETE 0")}
	repo := newTestRepo(db)

	err := repo.DeleteByID(context.Background(), id.New())

	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, "DELETE FROM rows WHERE id = $1", db.calls[0].sql)
}

func TestBaseRepo_ListQueries(t *testing.T) {
	repo := newTestRepo(&fakeDB{})

	countQ, pageQ, err := repo.ListQueries(
		domain.ListFilter{OrderBy: "-code", Limit: 10, Offset: 20},
		squirrel.Eq{"note": "x"},
	)
	require.NoError(t, err)

	countSQL, _, err := countQ.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM (SELECT id, code, note, version, created_at, updated_at FROM rows WHERE note = $1) AS sub", countSQL)

	pageSQL, args, err := pageQ.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, code, note, version, created_at, updated_at FROM rows WHERE note = $1 ORDER BY code DESC, id LIMIT 10 OFFSET 20", pageSQL)
	assert.Equal(t, []any{"x"}, args)
}

func TestBaseRepo_ListQueries_RejectsUnknownColumn(t *testing.T) {
	repo := newTestRepo(&fakeDB{})

	_, _, err := repo.ListQueries(domain.ListFilter{OrderBy: "password; DROP TABLE rows"})

	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
