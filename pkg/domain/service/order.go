package service

import (
	"context"
	"errors"
	"strings"

	"orderservice/pkg/domain/model"
)

var (
	ErrOrderCannotBeModified = errors.New("order cannot be modified in its current state")
	ErrOrderIsEmpty          = errors.New("cannot process an order without items")
	ErrOrderNumberRequired   = errors.New("order number is required")
	ErrInvalidQuantity       = errors.New("item quantity must be a positive number")
	ErrInvalidProductRef     = errors.New("item must reference a product")
	ErrInvalidStatus         = errors.New("unknown order status")
)

// NewOrderItem is one requested line of an order write: the product, how
// many, and the unit price snapshot taken at submission time.
type NewOrderItem struct {
	ProductID int64
	Quantity  int
	Price     float64
}

type OrderService interface {
	ListOrders(ctx context.Context) ([]model.OrderSummary, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	CreateOrder(ctx context.Context, orderNumber string, items []NewOrderItem) (int64, error)
	UpdateOrder(ctx context.Context, id int64, orderNumber string, status model.OrderStatus, items []NewOrderItem) error
	DeleteOrder(ctx context.Context, id int64) error
}

func NewOrderService(repo model.OrderRepository) OrderService {
	return &orderService{repo: repo}
}

type orderService struct {
	repo model.OrderRepository
}

func (s *orderService) ListOrders(ctx context.Context) ([]model.OrderSummary, error) {
	return s.repo.FindAll(ctx)
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *orderService) CreateOrder(ctx context.Context, orderNumber string, items []NewOrderItem) (int64, error) {
	if err := validateOrderInput(orderNumber, items); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, orderNumber, toOrderItems(items))
}

func (s *orderService) UpdateOrder(ctx context.Context, id int64, orderNumber string, status model.OrderStatus, items []NewOrderItem) error {
	if err := validateOrderInput(orderNumber, items); err != nil {
		return err
	}
	// Status must always be explicit: an omitted status silently resetting
	// the order to Pending is exactly the accident this guards against.
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status.IsTerminal() {
		return ErrOrderCannotBeModified
	}

	return s.repo.Update(ctx, &model.Order{
		ID:          id,
		OrderNumber: orderNumber,
		Status:      status,
		Items:       toOrderItems(items),
	})
}

func (s *orderService) DeleteOrder(ctx context.Context, id int64) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status.IsTerminal() {
		return ErrOrderCannotBeModified
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func validateOrderInput(orderNumber string, items []NewOrderItem) error {
	if strings.TrimSpace(orderNumber) == "" {
		return ErrOrderNumberRequired
	}
	if len(items) == 0 {
		return ErrOrderIsEmpty
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return ErrInvalidProductRef
		}
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

func toOrderItems(items []NewOrderItem) []model.OrderItem {
	result := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		result = append(result, model.OrderItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPriceAtTime: item.Price,
		})
	}
	return result
}
