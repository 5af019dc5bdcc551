package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/tx"
	"salesdocs/internal/domain/documents"
	"salesdocs/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// Inventory decrements product stock with conditional updates. The guard
// quantity >= requested makes overselling impossible under concurrency.
type Inventory struct {
	db        postgres.QuerierProvider
	txManager tx.Manager
}

var _ documents.Inventory = (*Inventory)(nil)

func NewInventory(db postgres.QuerierProvider, txManager tx.Manager) *Inventory {
	return &Inventory{db: db, txManager: txManager}
}

// Reserve applies all moves or none. Moves arrive sorted by product id, so
// concurrent invoices take row locks in the same order.
func (inv *Inventory) Reserve(ctx context.Context, moves []documents.StockMove) error {
	if len(moves) == 0 {
		return nil
	}
	return inv.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q := inv.db.GetQuerier(ctx)
		for _, m := range moves {
			sql, args, err := reserveQuery(m).ToSql()
			if err != nil {
				return fmt.Errorf("build reserve: %w", err)
			}
			tag, err := q.Exec(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("reserve product %s: %w", m.ProductID, err)
			}
			if tag.RowsAffected() == 0 {
				return inv.shortage(ctx, m)
			}
		}
		return nil
	})
}

func reserveQuery(m documents.StockMove) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update(productsTable).
		Set("quantity", squirrel.Expr("quantity - ?", m.Quantity)).
		Set("sold", squirrel.Expr("sold + ?", m.Quantity)).
		Where(squirrel.Eq{"id": m.ProductID}).
		Where(squirrel.GtOrEq{"quantity": m.Quantity})
}

// shortage explains a failed conditional update.
func (inv *Inventory) shortage(ctx context.Context, m documents.StockMove) error {
	sql, args, err := postgres.Builder().
		Select("quantity").
		From(productsTable).
		Where(squirrel.Eq{"id": m.ProductID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build stock lookup: %w", err)
	}

	var available decimal.Decimal
	err = inv.db.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound("product", m.ProductID.String())
	}
	if err != nil {
		return fmt.Errorf("lookup stock of %s: %w", m.ProductID, err)
	}
	return apperror.NewInsufficientStock(m.ProductID.String(), m.Quantity, available)
}
