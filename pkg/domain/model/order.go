package model

import (
	"context"
	"errors"
	"time"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderStatus string

const (
	Pending    OrderStatus = "Pending"
	InProgress OrderStatus = "InProgress"
	Completed  OrderStatus = "Completed"
)

// IsValid reports whether s is one of the three known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case Pending, InProgress, Completed:
		return true
	}
	return false
}

// IsTerminal reports whether the order may no longer be mutated or deleted.
func (s OrderStatus) IsTerminal() bool {
	return s == Completed
}

type Order struct {
	ID          int64       `db:"id"`
	OrderNumber string      `db:"order_number"`
	OrderDate   time.Time   `db:"order_date"`
	Status      OrderStatus `db:"status"`
	Items       []OrderItem
}

// TotalProducts is the number of line items on the order.
func (o *Order) TotalProducts() int {
	return len(o.Items)
}

// FinalPrice sums quantity * price snapshot over all line items.
// The snapshot is authoritative: later product price changes do not
// affect the result.
func (o *Order) FinalPrice() float64 {
	var total float64
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.UnitPriceAtTime
	}
	return total
}

// OrderItem is one product-quantity-price line belonging to exactly one
// order. UnitPriceAtTime is frozen at write time.
type OrderItem struct {
	ID              int64   `db:"id"`
	OrderID         int64   `db:"order_id"`
	ProductID       int64   `db:"product_id"`
	Quantity        int     `db:"quantity"`
	UnitPriceAtTime float64 `db:"unit_price_at_time"`
	ProductName     string  `db:"product_name"`
}

// OrderSummary is one row of the order listing: the header plus the
// aggregates derived from its items.
type OrderSummary struct {
	ID            int64       `db:"id"`
	OrderNumber   string      `db:"order_number"`
	OrderDate     time.Time   `db:"order_date"`
	Status        OrderStatus `db:"status"`
	TotalProducts int         `db:"total_products"`
	FinalPrice    float64     `db:"final_price"`
}

type OrderRepository interface {
	FindAll(ctx context.Context) ([]OrderSummary, error)
	FindByID(ctx context.Context, id int64) (*Order, error)
	// Create inserts the order header and every item in one transaction
	// and returns the generated order id.
	Create(ctx context.Context, orderNumber string, items []OrderItem) (int64, error)
	// Update rewrites the header and replaces the full item set in one
	// transaction.
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id int64) (int64, error)
}
