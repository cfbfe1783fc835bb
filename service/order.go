package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smarthotel/apperror"
	"smarthotel/logger"
	"smarthotel/metrics"
	"smarthotel/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderService struct {
	db   *gorm.DB
	menu MenuLookup
	now  func() time.Time
}

func NewOrderService(db *gorm.DB, menu MenuLookup) *OrderService {
	return &OrderService{db: db, menu: menu, now: time.Now}
}

type CartItem struct {
	MenuID   uint            `json:"menu_id" validate:"required"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"gte=0"`
}

type PlaceOrderInput struct {
	TableNumber int        `json:"table_number" validate:"gt=0"`
	CustomerID  uint       `json:"customer_id" validate:"required"`
	Items       []CartItem `json:"cart_items" validate:"required,min=1,dive"`
}

// PlaceOrder creates a Pending order with its items and bumps the customer's
// order counter in one transaction. Every line's subtotal must match
// quantity times the current menu price.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (uint, error) {
	if err := validateInput(in); err != nil {
		return 0, err
	}

	items, total, err := s.priceCart(ctx, in.Items)
	if err != nil {
		return 0, err
	}

	order := model.Order{
		TableNumber: in.TableNumber,
		CustomerID:  in.CustomerID,
		Status:      model.OrderPending,
		TotalPrice:  total,
		OrderTime:   s.now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		res := tx.Model(&model.User{}).
			Where("id = ?", in.CustomerID).
			UpdateColumn("orders_placed", gorm.Expr("orders_placed + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Validation("customer not found")
		}
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return 0, appErr
		}
		return 0, apperror.Dependency("failed to place order", err)
	}

	metrics.OrdersPlaced.Inc()
	logger.Info(ctx, "order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("customer_id", order.CustomerID),
		zap.String("total_price", total.StringFixed(2)))
	return order.ID, nil
}

// priceCart verifies the cart against menu prices and merges repeated menu
// ids into a single line.
func (s *OrderService) priceCart(ctx context.Context, cart []CartItem) ([]model.OrderItem, decimal.Decimal, error) {
	ids := make([]uint, 0, len(cart))
	for _, item := range cart {
		ids = append(ids, item.MenuID)
	}
	prices, err := s.menu.Prices(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	index := make(map[uint]int, len(cart))
	items := make([]model.OrderItem, 0, len(cart))
	for _, line := range cart {
		price, ok := prices[line.MenuID]
		if !ok {
			return nil, decimal.Zero, menuNotFound(line.MenuID)
		}
		expected := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if !line.Subtotal.Equal(expected) {
			return nil, decimal.Zero, apperror.Validation(fmt.Sprintf(
				"subtotal for menu item %d should be %s", line.MenuID, expected.StringFixed(2)))
		}
		total = total.Add(expected)

		if i, seen := index[line.MenuID]; seen {
			items[i].Quantity += line.Quantity
			items[i].Subtotal = items[i].Subtotal.Add(expected)
			continue
		}
		index[line.MenuID] = len(items)
		items = append(items, model.OrderItem{
			MenuID:   line.MenuID,
			Quantity: line.Quantity,
			Subtotal: expected,
		})
	}
	return items, total, nil
}

// Accept moves a Pending order to In Progress for the given chef.
func (s *OrderService) Accept(ctx context.Context, orderID, chefID uint) error {
	if orderID == 0 || chefID == 0 {
		return apperror.Validation("order_id and chef_id are required")
	}

	var chefs int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND role = ?", chefID, model.RoleChef).
		Count(&chefs).Error
	if err != nil {
		return apperror.Dependency("failed to verify chef", err)
	}
	if chefs == 0 {
		return apperror.Validation("chef not found")
	}

	return s.transition(ctx, orderID, model.OrderPending, model.OrderInProgress,
		map[string]interface{}{"chef_id": chefID, "accepted_at": s.now()},
		"order not found or already accepted")
}

// Reject retains the order with a terminal Rejected status.
func (s *OrderService) Reject(ctx context.Context, orderID uint) error {
	if orderID == 0 {
		return apperror.Validation("order_id is required")
	}
	return s.transition(ctx, orderID, model.OrderPending, model.OrderRejected,
		map[string]interface{}{"rejected_at": s.now()},
		"order not found or already processed")
}

func (s *OrderService) Complete(ctx context.Context, orderID uint) error {
	if orderID == 0 {
		return apperror.Validation("order_id is required")
	}
	return s.transition(ctx, orderID, model.OrderInProgress, model.OrderCompleted,
		map[string]interface{}{"completed_at": s.now()},
		"order not found or not in progress")
}

// transition applies a single guarded UPDATE. The status predicate in the
// WHERE clause decides races: the loser sees zero affected rows.
func (s *OrderService) transition(ctx context.Context, orderID uint, from, to model.OrderStatus, set map[string]interface{}, conflictMsg string) error {
	if !from.CanTransitionTo(to) {
		return apperror.New(apperror.KindInternal, "illegal order transition",
			fmt.Errorf("%s -> %s", from, to))
	}
	set["status"] = to

	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(set)
	if res.Error != nil {
		return apperror.Dependency("failed to update order", res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.OrderConflicts.WithLabelValues(string(to)).Inc()
		return apperror.Conflict(conflictMsg)
	}

	metrics.OrderTransitions.WithLabelValues(string(to)).Inc()
	logger.Info(ctx, "order transition",
		zap.Uint("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order not found")
		}
		return nil, apperror.Dependency("failed to fetch order", err)
	}

	orders := []model.Order{order}
	if err := s.hydrate(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListActiveOrders returns Pending and In Progress orders, oldest first,
// optionally for a single customer.
func (s *OrderService) ListActiveOrders(ctx context.Context, customerID *uint) ([]model.Order, error) {
	q := s.db.WithContext(ctx).
		Where("status IN ?", model.ActiveStatuses())
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}

	orders := []model.Order{}
	if err := q.Order("order_time, id").Find(&orders).Error; err != nil {
		return nil, apperror.Dependency("failed to fetch orders", err)
	}
	if err := s.hydrate(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListCustomerOrders returns the customer's Pending orders, else the ones In
// Progress, else those completed today.
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID uint) ([]model.Order, error) {
	if customerID == 0 {
		return nil, apperror.Validation("user_id is required")
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	queries := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB { return db.Where("status = ?", model.OrderPending) },
		func(db *gorm.DB) *gorm.DB { return db.Where("status = ?", model.OrderInProgress) },
		func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ? AND order_time >= ? AND order_time < ?",
				model.OrderCompleted, dayStart, dayStart.AddDate(0, 0, 1))
		},
	}

	for _, scope := range queries {
		orders := []model.Order{}
		err := s.db.WithContext(ctx).
			Scopes(scope).
			Where("customer_id = ?", customerID).
			Order("order_time DESC, id DESC").
			Find(&orders).Error
		if err != nil {
			return nil, apperror.Dependency("failed to fetch orders", err)
		}
		if len(orders) > 0 {
			if err := s.hydrate(ctx, orders); err != nil {
				return nil, err
			}
			return orders, nil
		}
	}
	return []model.Order{}, nil
}

// hydrate attaches items with their menu names. Soft-deleted menu rows still
// provide a name.
func (s *OrderService) hydrate(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uint, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	var items []model.OrderItem
	err := s.db.WithContext(ctx).Table("order_items").
		Select("order_items.order_id, order_items.menu_id, order_items.quantity, order_items.subtotal, menu_items.name AS food_name").
		Joins("LEFT JOIN menu_items ON menu_items.id = order_items.menu_id").
		Where("order_items.order_id IN ?", ids).
		Order("order_items.order_id, order_items.menu_id").
		Scan(&items).Error
	if err != nil {
		return apperror.Dependency("failed to fetch order items", err)
	}

	byOrder := make(map[uint][]model.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
	}
	return nil
}
