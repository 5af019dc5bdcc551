package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/domain"
)

const pgUniqueViolation = "23505"

// managedColumns are written by the repository itself on update.
var managedColumns = map[string]struct{}{
	"id":         {},
	"created_at": {},
	"version":    {},
	"updated_at": {},
}

// BaseRepo provides the CRUD plumbing shared by table repositories.
// T is the row struct; its "db" tags name the columns.
type BaseRepo[T any] struct {
	db         QuerierProvider
	entity     string
	tableName  string
	selectCols []string
	defaultOrd string
}

// NewBaseRepo creates a repository over tableName. entity names the
// record in NOT_FOUND and DUPLICATE errors.
func NewBaseRepo[T any](db QuerierProvider, entity, tableName, defaultOrder string) *BaseRepo[T] {
	return &BaseRepo[T]{
		db:         db,
		entity:     entity,
		tableName:  tableName,
		selectCols: ExtractDBColumns[T](),
		defaultOrd: defaultOrder,
	}
}

// Builder returns a squirrel builder with dollar placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the querier for ctx: the open transaction or the pool.
func (r *BaseRepo[T]) Querier(ctx context.Context) Querier {
	return r.db.GetQuerier(ctx)
}

// TableName returns the underlying table.
func (r *BaseRepo[T]) TableName() string {
	return r.tableName
}

// SelectBuilder starts a SELECT of all mapped columns.
func (r *BaseRepo[T]) SelectBuilder() squirrel.SelectBuilder {
	return Builder().Select(r.selectCols...).From(r.tableName)
}

// InsertQuery builds the INSERT for entity.
func (r *BaseRepo[T]) InsertQuery(entity *T) (string, []any, error) {
	data := StructToMap(entity)
	if len(data) == 0 {
		return "", nil, fmt.Errorf("no db tags found in %s", r.entity)
	}
	dropZeroTimestamps(data)
	return Builder().Insert(r.tableName).SetMap(data).ToSql()
}

// dropZeroTimestamps removes unset audit timestamps so the column DEFAULT applies.
func dropZeroTimestamps(data map[string]any) {
	for _, col := range []string{"created_at", "updated_at"} {
		if t, ok := data[col].(time.Time); ok && t.IsZero() {
			delete(data, col)
		}
	}
}

// Insert writes a new row. Unique violations become DUPLICATE_ENTRY.
func (r *BaseRepo[T]) Insert(ctx context.Context, entity *T) error {
	sql, args, err := r.InsertQuery(entity)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.mapWriteError(err)
	}
	return nil
}

// UpdateQuery builds an UPDATE of every non-managed column, guarded by the
// stored version when versioned is set.
func (r *BaseRepo[T]) UpdateQuery(entity *T, versioned bool) (string, []any, error) {
	data := StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return "", nil, fmt.Errorf("%s has no id column", r.entity)
	}

	set := make(map[string]any, len(data))
	for col, val := range data {
		if _, managed := managedColumns[col]; managed {
			continue
		}
		set[col] = val
	}

	q := Builder().
		Update(r.tableName).
		SetMap(set).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entityID})

	if versioned {
		version, ok := data["version"].(int)
		if !ok {
			return "", nil, fmt.Errorf("%s has no int version column", r.entity)
		}
		q = q.Set("version", squirrel.Expr("version + 1")).
			Where(squirrel.Eq{"version": version})
	}
	return q.ToSql()
}

// Update writes entity with optimistic locking. Zero affected rows means the
// row changed or vanished since it was read.
func (r *BaseRepo[T]) Update(ctx context.Context, entity *T, entityID id.ID) error {
	sql, args, err := r.UpdateQuery(entity, true)
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.entity, entityID.String())
	}
	return nil
}

// UpdateUnversioned overwrites entity without a version check.
func (r *BaseRepo[T]) UpdateUnversioned(ctx context.Context, entity *T, entityID id.ID) error {
	sql, args, err := r.UpdateQuery(entity, false)
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, entityID.String())
	}
	return nil
}

// DeleteWhere removes matching rows and returns how many went.
func (r *BaseRepo[T]) DeleteWhere(ctx context.Context, pred squirrel.Sqlizer) (int64, error) {
	sql, args, err := Builder().Delete(r.tableName).Where(pred).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByID removes one row. A missing row is NOT_FOUND.
func (r *BaseRepo[T]) DeleteByID(ctx context.Context, entityID id.ID) error {
	n, err := r.DeleteWhere(ctx, squirrel.Eq{"id": entityID})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound(r.entity, entityID.String())
	}
	return nil
}

// Get returns the single row matched by q.
func (r *BaseRepo[T]) Get(ctx context.Context, q squirrel.SelectBuilder, key string) (*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	entity := new(T)
	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", r.entity, err)
	}
	return entity, nil
}

// GetByID returns a row by primary key.
func (r *BaseRepo[T]) GetByID(ctx context.Context, entityID id.ID) (*T, error) {
	return r.Get(ctx, r.SelectBuilder().Where(squirrel.Eq{"id": entityID}), entityID.String())
}

// Select returns every row matched by q.
func (r *BaseRepo[T]) Select(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var items []*T
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.entity, err)
	}
	return items, nil
}

// ListQueries builds the count and page queries for a filtered list.
func (r *BaseRepo[T]) ListQueries(filter domain.ListFilter, preds ...squirrel.Sqlizer) (squirrel.SelectBuilder, squirrel.SelectBuilder, error) {
	q := r.SelectBuilder()
	for _, p := range preds {
		q = q.Where(p)
	}
	countQ := Builder().Select("COUNT(*)").FromSelect(q, "sub")

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return countQ, q, err
	}
	q = q.OrderBy(orderBy, "id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return countQ, q, nil
}

// List returns a page plus the total count of matching rows.
func (r *BaseRepo[T]) List(ctx context.Context, filter domain.ListFilter, preds ...squirrel.Sqlizer) (domain.ListResult[*T], error) {
	result := domain.ListResult[*T]{Limit: filter.Limit, Offset: filter.Offset}

	countQ, pageQ, err := r.ListQueries(filter, preds...)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.Querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.entity, err)
	}

	items, err := r.Select(ctx, pageQ)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

func (r *BaseRepo[T]) parseOrderBy(orderBy string) (string, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return r.defaultOrd, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	for _, col := range r.selectCols {
		if col == field {
			return field + " " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid orderBy").
		WithDetail("orderBy", orderBy).
		WithDetail("field", field)
}

func (r *BaseRepo[T]) mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperror.NewDuplicate(r.entity, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
	}
	return fmt.Errorf("write %s: %w", r.tableName, err)
}
