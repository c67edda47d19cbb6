package mysql

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"orderservice/pkg/domain/model"
)

var _ model.ProductRepository = &ProductRepository{}

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0)
	err := r.db.SelectContext(ctx, &products,
		`SELECT id, name, unit_price FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "select products")
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.GetContext(ctx, &product,
		`SELECT id, name, unit_price FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select product %d", id)
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, unit_price) VALUES (?, ?)`,
		product.Name, product.UnitPrice)
	if err != nil {
		return 0, errors.Wrap(err, "insert product")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "product insert id")
	}
	return id, nil
}

// Update overwrites name and unit_price unconditionally. Callers wanting
// not-found semantics must check existence first.
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, unit_price = ? WHERE id = ?`,
		product.Name, product.UnitPrice, product.ID)
	return errors.Wrapf(err, "update product %d", product.ID)
}

// Delete removes the product and returns the affected-row count; zero means
// the product did not exist. A product still referenced by an order item is
// protected by the order_items foreign key and reported as ErrProductInUse.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if isRowReferenced(err) {
		return 0, model.ErrProductInUse
	}
	if err != nil {
		return 0, errors.Wrapf(err, "delete product %d", id)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "product delete affected rows")
	}
	return affected, nil
}
