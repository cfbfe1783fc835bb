package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"smarthotel/apperror"
	"smarthotel/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrderService(db *gorm.DB) *OrderService {
	s := NewOrderService(db, NewMenuService(db))
	s.now = fixedClock
	return s
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestPlaceOrderCreatesPendingOrder(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, 7, "Alice", model.RoleCustomer)
	seedMenu(t, db, 1, "Paneer Tikka", "10.00", "Starters")
	svc := newOrderService(db)

	id, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		TableNumber: 5,
		CustomerID:  7,
		Items:       []CartItem{{MenuID: 1, Quantity: 2, Subtotal: dec("20.00")}},
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	order, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, 5, order.TableNumber)
	assert.Equal(t, uint(7), order.CustomerID)
	assert.Nil(t, order.ChefID)
	assert.True(t, order.TotalPrice.Equal(dec("20.00")), "total %s", order.TotalPrice)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Paneer Tikka", order.Items[0].FoodName)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(1), countRows(t, db, &model.OrderItem{}))

	var user model.User
	require.NoError(t, db.First(&user, 7).Error)
	assert.Equal(t, 1, user.OrdersPlaced)
}

func TestPlaceOrderMergesRepeatedMenuItems(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, 1, "Bob", model.RoleCustomer)
	seedMenu(t, db, 1, "Naan", "2.50", "Breads")
	seedMenu(t, db, 2, "Dal", "8.00", "Mains")
	svc := newOrderService(db)

	id, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		TableNumber: 3,
		CustomerID:  1,
		Items: []CartItem{
			{MenuID: 1, Quantity: 1, Subtotal: dec("2.50")},
			{MenuID: 2, Quantity: 1, Subtotal: dec("8")},
			{MenuID: 1, Quantity: 2, Subtotal: dec("5.00")},
		},
	})
	require.NoError(t, err)

	order, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(dec("15.50")), "total %s", order.TotalPrice)
	require.Len(t, order.Items, 2)
	assert.Equal(t, uint(1), order.Items[0].MenuID)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Subtotal.Equal(dec("7.50")))
}

func TestPlaceOrderValidation(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, 1, "Carol", model.RoleCustomer)
	seedMenu(t, db, 1, "Biryani", "12.00", "Mains")
	svc := newOrderService(db)

	line := []CartItem{{MenuID: 1, Quantity: 1, Subtotal: dec("12")}}
	tests := []struct {
		name string
		in   PlaceOrderInput
	}{
		{"missing table", PlaceOrderInput{CustomerID: 1, Items: line}},
		{"missing customer", PlaceOrderInput{TableNumber: 1, Items: line}},
		{"empty cart", PlaceOrderInput{TableNumber: 1, CustomerID: 1}},
		{"zero quantity", PlaceOrderInput{TableNumber: 1, CustomerID: 1, Items: []CartItem{{MenuID: 1, Quantity: 0, Subtotal: dec("0")}}}},
		{"negative subtotal", PlaceOrderInput{TableNumber: 1, CustomerID: 1, Items: []CartItem{{MenuID: 1, Quantity: 1, Subtotal: dec("-12")}}}},
		{"price mismatch", PlaceOrderInput{TableNumber: 1, CustomerID: 1, Items: []CartItem{{MenuID: 1, Quantity: 2, Subtotal: dec("12")}}}},
		{"unknown menu item", PlaceOrderInput{TableNumber: 1, CustomerID: 1, Items: []CartItem{{MenuID: 42, Quantity: 1, Subtotal: dec("1")}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), tt.in)
			requireKind(t, err, apperror.KindValidation)
		})
	}
	assert.Equal(t, int64(0), countRows(t, db, &model.Order{}))
}

func TestPlaceOrderUnknownCustomerRollsBack(t *testing.T) {
	db := newTestDB(t)
	seedMenu(t, db, 1, "Lassi", "4.00", "Drinks")
	svc := newOrderService(db)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		TableNumber: 2,
		CustomerID:  404,
		Items:       []CartItem{{MenuID: 1, Quantity: 1, Subtotal: dec("4")}},
	})
	requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, int64(0), countRows(t, db, &model.Order{}))
	assert.Equal(t, int64(0), countRows(t, db, &model.OrderItem{}))
}

type lifecycleFixture struct {
	db      *gorm.DB
	svc     *OrderService
	orderID uint
	chefA   uint
	chefB   uint
}

func newLifecycleFixture(t *testing.T) lifecycleFixture {
	db := newTestDB(t)
	seedUser(t, db, 1, "Dan", model.RoleCustomer)
	seedUser(t, db, 2, "ChefA", model.RoleChef)
	seedUser(t, db, 3, "ChefB", model.RoleChef)
	seedMenu(t, db, 1, "Samosa", "3.00", "Starters")
	svc := newOrderService(db)

	id, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		TableNumber: 1,
		CustomerID:  1,
		Items:       []CartItem{{MenuID: 1, Quantity: 2, Subtotal: dec("6")}},
	})
	require.NoError(t, err)
	return lifecycleFixture{db: db, svc: svc, orderID: id, chefA: 2, chefB: 3}
}

func TestAcceptTwiceConflicts(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Accept(ctx, f.orderID, f.chefA))
	err := f.svc.Accept(ctx, f.orderID, f.chefB)
	requireKind(t, err, apperror.KindConflict)

	order, err := f.svc.GetOrder(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderInProgress, order.Status)
	require.NotNil(t, order.ChefID)
	assert.Equal(t, f.chefA, *order.ChefID)
	require.NotNil(t, order.AcceptedAt)
	assert.True(t, order.AcceptedAt.Equal(testNow))
}

func TestAcceptRequiresChef(t *testing.T) {
	f := newLifecycleFixture(t)

	err := f.svc.Accept(context.Background(), f.orderID, 1)
	requireKind(t, err, apperror.KindValidation)

	err = f.svc.Accept(context.Background(), 0, f.chefA)
	requireKind(t, err, apperror.KindValidation)
}

func TestRejectAfterAcceptFails(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Accept(ctx, f.orderID, f.chefA))
	requireKind(t, f.svc.Reject(ctx, f.orderID), apperror.KindConflict)
}

func TestRejectRetainsOrder(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Reject(ctx, f.orderID))

	order, err := f.svc.GetOrder(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderRejected, order.Status)
	assert.Nil(t, order.ChefID)
	require.NotNil(t, order.RejectedAt)
	assert.Len(t, order.Items, 1)

	requireKind(t, f.svc.Accept(ctx, f.orderID, f.chefA), apperror.KindConflict)
	requireKind(t, f.svc.Reject(ctx, f.orderID), apperror.KindConflict)
}

func TestCompleteOnlyFromInProgress(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	requireKind(t, f.svc.Complete(ctx, f.orderID), apperror.KindConflict)

	require.NoError(t, f.svc.Accept(ctx, f.orderID, f.chefA))
	require.NoError(t, f.svc.Complete(ctx, f.orderID))
	requireKind(t, f.svc.Complete(ctx, f.orderID), apperror.KindConflict)

	order, err := f.svc.GetOrder(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCompleted, order.Status)
	assert.NotNil(t, order.ChefID)
	assert.NotNil(t, order.CompletedAt)
}

func TestTransitionsOnMissingOrder(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	requireKind(t, f.svc.Accept(ctx, 9999, f.chefA), apperror.KindConflict)
	requireKind(t, f.svc.Reject(ctx, 9999), apperror.KindConflict)
	requireKind(t, f.svc.Complete(ctx, 9999), apperror.KindConflict)

	_, err := f.svc.GetOrder(ctx, 9999)
	requireKind(t, err, apperror.KindNotFound)
}

func TestConcurrentAcceptHasOneWinner(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	chefs := []uint{f.chefA, f.chefB}
	errs := make([]error, len(chefs))
	var wg sync.WaitGroup
	for i, chef := range chefs {
		wg.Add(1)
		go func(i int, chef uint) {
			defer wg.Done()
			errs[i] = f.svc.Accept(ctx, f.orderID, chef)
		}(i, chef)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperror.Is(err, apperror.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)
}

func TestListActiveOrders(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	seedUser(t, f.db, 4, "Erin", model.RoleCustomer)

	second, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TableNumber: 9,
		CustomerID:  4,
		Items:       []CartItem{{MenuID: 1, Quantity: 1, Subtotal: dec("3")}},
	})
	require.NoError(t, err)
	third, err := f.svc.PlaceOrder(ctx, PlaceOrderInput{
		TableNumber: 9,
		CustomerID:  4,
		Items:       []CartItem{{MenuID: 1, Quantity: 1, Subtotal: dec("3")}},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Accept(ctx, second, f.chefB))
	require.NoError(t, f.svc.Reject(ctx, third))

	orders, err := f.svc.ListActiveOrders(ctx, nil)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, f.orderID, orders[0].ID)
	assert.Equal(t, second, orders[1].ID)
	for _, o := range orders {
		require.Len(t, o.Items, 1)
		assert.Equal(t, "Samosa", o.Items[0].FoodName)
	}

	customer := uint(4)
	orders, err = f.svc.ListActiveOrders(ctx, &customer)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderInProgress, orders[0].Status)
}

func TestListActiveOrdersKeepsDeletedMenuNames(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	require.NoError(t, NewMenuService(f.db).Delete(ctx, 1))

	orders, err := f.svc.ListActiveOrders(ctx, nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Samosa", orders[0].Items[0].FoodName)
}

func TestListCustomerOrdersFallsBackByStatus(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, 1, "Faye", model.RoleCustomer)
	svc := newOrderService(db)
	ctx := context.Background()

	orders, err := svc.ListCustomerOrders(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)

	seedOrders(t, db, 1, model.OrderCompleted, 1, testNow.AddDate(0, 0, -1))
	orders, err = svc.ListCustomerOrders(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders, "yesterday's completed orders are not listed")

	today := seedOrders(t, db, 1, model.OrderCompleted, 1, testNow.Add(-time.Hour))
	orders, err = svc.ListCustomerOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, today[0].ID, orders[0].ID)

	inProgress := seedOrders(t, db, 1, model.OrderInProgress, 1, testNow)
	orders, err = svc.ListCustomerOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, inProgress[0].ID, orders[0].ID)

	pending := seedOrders(t, db, 1, model.OrderPending, 2, testNow)
	orders, err = svc.ListCustomerOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, model.OrderPending, o.Status)
		assert.Contains(t, []uint{pending[0].ID, pending[1].ID}, o.ID)
	}

	_, err = svc.ListCustomerOrders(ctx, 0)
	requireKind(t, err, apperror.KindValidation)
}
