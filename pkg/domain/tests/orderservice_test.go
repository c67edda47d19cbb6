package tests

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderservice/pkg/domain/model"
	"orderservice/pkg/domain/service"
)

func setupOrders(t *testing.T) (service.OrderService, *mockOrderRepository) {
	t.Helper()
	repo := &mockOrderRepository{store: make(map[int64]*model.Order)}
	return service.NewOrderService(repo), repo
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	orderService, repo := setupOrders(t)

	t.Run("Success", func(t *testing.T) {
		items := []service.NewOrderItem{
			{ProductID: 1, Quantity: 2, Price: 10.00},
			{ProductID: 2, Quantity: 1, Price: 5.50},
			{ProductID: 1, Quantity: 3, Price: 9.75},
		}

		id, err := orderService.CreateOrder(ctx, "ORD-2024-1000", items)
		require.NoError(t, err)
		require.NotZero(t, id)

		order, err := orderService.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "ORD-2024-1000", order.OrderNumber)
		assert.Equal(t, model.Pending, order.Status)

		// Same count, same relative order, same snapshot values. Repeated
		// product ids stay distinct lines.
		require.Len(t, order.Items, 3)
		for i, item := range order.Items {
			assert.Equal(t, items[i].ProductID, item.ProductID)
			assert.Equal(t, items[i].Quantity, item.Quantity)
			assert.Equal(t, items[i].Price, item.UnitPriceAtTime)
		}
	})

	t.Run("Fail on missing order number", func(t *testing.T) {
		_, err := orderService.CreateOrder(ctx, "  ", []service.NewOrderItem{{ProductID: 1, Quantity: 1, Price: 1}})
		assert.ErrorIs(t, err, service.ErrOrderNumberRequired)
	})

	t.Run("Fail on empty item list", func(t *testing.T) {
		_, err := orderService.CreateOrder(ctx, "ORD-1", nil)
		assert.ErrorIs(t, err, service.ErrOrderIsEmpty)
	})

	t.Run("Fail on non-positive quantity", func(t *testing.T) {
		_, err := orderService.CreateOrder(ctx, "ORD-1", []service.NewOrderItem{{ProductID: 1, Quantity: 0, Price: 1}})
		assert.ErrorIs(t, err, service.ErrInvalidQuantity)
	})

	t.Run("Fail on missing product reference", func(t *testing.T) {
		_, err := orderService.CreateOrder(ctx, "ORD-1", []service.NewOrderItem{{Quantity: 1, Price: 1}})
		assert.ErrorIs(t, err, service.ErrInvalidProductRef)
	})

	t.Run("Nothing stored on validation failure", func(t *testing.T) {
		before := len(repo.store)
		_, err := orderService.CreateOrder(ctx, "", nil)
		require.Error(t, err)
		assert.Len(t, repo.store, before)
	})
}

func TestOrderTotals(t *testing.T) {
	ctx := context.Background()
	orderService, repo := setupOrders(t)

	id, err := orderService.CreateOrder(ctx, "ORD-2024-1000", []service.NewOrderItem{
		{ProductID: 1, Quantity: 2, Price: 10.00},
	})
	require.NoError(t, err)

	t.Run("Totals derive from quantity and snapshot", func(t *testing.T) {
		order, err := orderService.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, order.TotalProducts())
		assert.Equal(t, 20.00, order.FinalPrice())
	})

	t.Run("Snapshot is immune to later product price changes", func(t *testing.T) {
		// The stored snapshot carries the price; nothing re-reads products.
		order, err := orderService.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 10.00, order.Items[0].UnitPriceAtTime)
	})

	t.Run("Listing sums every order and zeroes empty ones", func(t *testing.T) {
		// An order that lost all items still lists, with zero totals.
		repo.store[99] = &model.Order{ID: 99, OrderNumber: "ORD-EMPTY", Status: model.Pending, OrderDate: time.Now()}

		summaries, err := orderService.ListOrders(ctx)
		require.NoError(t, err)
		require.Len(t, summaries, 2)

		byID := make(map[int64]model.OrderSummary)
		for _, s := range summaries {
			byID[s.ID] = s
		}
		assert.Equal(t, 20.00, byID[id].FinalPrice)
		assert.Equal(t, 1, byID[id].TotalProducts)
		assert.Equal(t, 0.00, byID[99].FinalPrice)
		assert.Equal(t, 0, byID[99].TotalProducts)
	})
}

func TestUpdateOrder(t *testing.T) {
	ctx := context.Background()
	orderService, repo := setupOrders(t)

	id, err := orderService.CreateOrder(ctx, "ORD-1", []service.NewOrderItem{
		{ProductID: 1, Quantity: 2, Price: 10.00},
		{ProductID: 2, Quantity: 1, Price: 4.00},
	})
	require.NoError(t, err)

	t.Run("Fully replaces the item set", func(t *testing.T) {
		err := orderService.UpdateOrder(ctx, id, "ORD-1-EDITED", model.InProgress, []service.NewOrderItem{
			{ProductID: 3, Quantity: 5, Price: 2.00},
		})
		require.NoError(t, err)

		order, err := orderService.GetOrder(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "ORD-1-EDITED", order.OrderNumber)
		assert.Equal(t, model.InProgress, order.Status)
		require.Len(t, order.Items, 1)
		assert.Equal(t, int64(3), order.Items[0].ProductID)
	})

	t.Run("Fail on unknown status", func(t *testing.T) {
		err := orderService.UpdateOrder(ctx, id, "ORD-1", "Shipped", []service.NewOrderItem{
			{ProductID: 1, Quantity: 1, Price: 1},
		})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("Fail on missing order", func(t *testing.T) {
		err := orderService.UpdateOrder(ctx, 12345, "ORD-X", model.Pending, []service.NewOrderItem{
			{ProductID: 1, Quantity: 1, Price: 1},
		})
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("Completed order is immutable", func(t *testing.T) {
		repo.store[id].Status = model.Completed
		before := *repo.store[id]

		err := orderService.UpdateOrder(ctx, id, "ORD-CHANGED", model.Pending, []service.NewOrderItem{
			{ProductID: 9, Quantity: 9, Price: 9},
		})
		assert.ErrorIs(t, err, service.ErrOrderCannotBeModified)

		after, getErr := orderService.GetOrder(ctx, id)
		require.NoError(t, getErr)
		assert.Equal(t, before.OrderNumber, after.OrderNumber)
		assert.Equal(t, before.Items, after.Items)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()
	orderService, repo := setupOrders(t)

	id, err := orderService.CreateOrder(ctx, "ORD-1", []service.NewOrderItem{
		{ProductID: 1, Quantity: 1, Price: 1.00},
	})
	require.NoError(t, err)

	t.Run("Completed order cannot be deleted", func(t *testing.T) {
		repo.store[id].Status = model.Completed
		err := orderService.DeleteOrder(ctx, id)
		assert.ErrorIs(t, err, service.ErrOrderCannotBeModified)

		_, err = orderService.GetOrder(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("Success removes the order and its items", func(t *testing.T) {
		repo.store[id].Status = model.InProgress
		require.NoError(t, orderService.DeleteOrder(ctx, id))

		_, err := orderService.GetOrder(ctx, id)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("Fail on missing order", func(t *testing.T) {
		err := orderService.DeleteOrder(ctx, 777)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	store  map[int64]*model.Order
	nextID int64
}

func (m *mockOrderRepository) FindAll(_ context.Context) ([]model.OrderSummary, error) {
	summaries := make([]model.OrderSummary, 0, len(m.store))
	for _, order := range m.store {
		summaries = append(summaries, model.OrderSummary{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			OrderDate:     order.OrderDate,
			Status:        order.Status,
			TotalProducts: order.TotalProducts(),
			FinalPrice:    order.FinalPrice(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].OrderDate.After(summaries[j].OrderDate)
	})
	return summaries, nil
}

func (m *mockOrderRepository) FindByID(_ context.Context, id int64) (*model.Order, error) {
	order, ok := m.store[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	clone := *order
	clone.Items = append([]model.OrderItem(nil), order.Items...)
	return &clone, nil
}

func (m *mockOrderRepository) Create(_ context.Context, orderNumber string, items []model.OrderItem) (int64, error) {
	m.nextID++
	id := m.nextID
	order := &model.Order{
		ID:          id,
		OrderNumber: orderNumber,
		OrderDate:   time.Now(),
		Status:      model.Pending,
	}
	for _, item := range items {
		item.OrderID = id
		order.Items = append(order.Items, item)
	}
	m.store[id] = order
	return id, nil
}

func (m *mockOrderRepository) Update(_ context.Context, order *model.Order) error {
	existing, ok := m.store[order.ID]
	if !ok {
		return model.ErrOrderNotFound
	}
	existing.OrderNumber = order.OrderNumber
	existing.Status = order.Status
	existing.Items = nil
	for _, item := range order.Items {
		item.OrderID = order.ID
		existing.Items = append(existing.Items, item)
	}
	return nil
}

func (m *mockOrderRepository) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := m.store[id]; !ok {
		return 0, nil
	}
	delete(m.store, id)
	return 1, nil
}
