package mysql

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"orderservice/pkg/domain/model"
)

var _ model.OrderRepository = &OrderRepository{}

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindAll lists every order newest first, with the aggregates derived from
// its items. The LEFT JOIN keeps orders with no items in the result; their
// final_price collapses to 0 via COALESCE.
func (r *OrderRepository) FindAll(ctx context.Context) ([]model.OrderSummary, error) {
	summaries := make([]model.OrderSummary, 0)
	err := r.db.SelectContext(ctx, &summaries, `
		SELECT
			o.id,
			o.order_number,
			o.order_date,
			o.status,
			COUNT(oi.id) AS total_products,
			COALESCE(SUM(oi.quantity * oi.unit_price_at_time), 0) AS final_price
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		GROUP BY o.id
		ORDER BY o.order_date DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	return summaries, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order,
		`SELECT id, order_number, order_date, status FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select order %d", id)
	}

	order.Items = make([]model.OrderItem, 0)
	err = r.db.SelectContext(ctx, &order.Items, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price_at_time, p.name AS product_name
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?
		ORDER BY oi.id ASC`, id)
	if err != nil {
		return nil, errors.Wrapf(err, "select items of order %d", id)
	}
	return &order, nil
}

// Create inserts the order header and all of its items in one transaction.
// The header gets the Pending default and a server-assigned order_date. Any
// failure rolls the whole write back; no partial order becomes visible.
func (r *OrderRepository) Create(ctx context.Context, orderNumber string, items []model.OrderItem) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin create order")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO orders (order_number) VALUES (?)`, orderNumber)
	if err != nil {
		return 0, errors.Wrap(err, "insert order")
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "order insert id")
	}

	if err := insertItems(ctx, tx, orderID, items); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit create order")
	}
	return orderID, nil
}

// Update rewrites the header and fully replaces the item set: every existing
// item row is deleted and the requested set inserted from scratch, all inside
// one transaction. Partial edits are expressed by resubmitting the complete
// list.
func (r *OrderRepository) Update(ctx context.Context, order *model.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin update order")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET order_number = ?, status = ? WHERE id = ?`,
		order.OrderNumber, order.Status, order.ID)
	if err != nil {
		return errors.Wrapf(err, "update order %d", order.ID)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, order.ID)
	if err != nil {
		return errors.Wrapf(err, "clear items of order %d", order.ID)
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	return errors.Wrapf(tx.Commit(), "commit update order %d", order.ID)
}

// Delete removes the order header; the order_items foreign key cascades, so
// no orphaned item rows remain. Returns the affected-row count as the found
// signal.
func (r *OrderRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return 0, errors.Wrapf(err, "delete order %d", id)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "order delete affected rows")
	}
	return affected, nil
}

// insertItems writes the item rows in caller-supplied order. Repeated
// product ids stay distinct line rows; nothing is merged.
func insertItems(ctx context.Context, tx *sqlx.Tx, orderID int64, items []model.OrderItem) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price_at_time) VALUES (?, ?, ?, ?)`,
			orderID, item.ProductID, item.Quantity, item.UnitPriceAtTime)
		if err != nil {
			return errors.Wrapf(err, "insert item of order %d", orderID)
		}
	}
	return nil
}
