package model

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInUse is returned when a delete is rejected because the
	// product is referenced by at least one order item.
	ErrProductInUse = errors.New("product is referenced by an existing order")
)

type Product struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	UnitPrice float64 `db:"unit_price"`
}

type ProductRepository interface {
	FindAll(ctx context.Context) ([]Product, error)
	FindByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, product *Product) (int64, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id int64) (int64, error)
}
