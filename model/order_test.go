package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderInProgress, true},
		{OrderPending, OrderRejected, true},
		{OrderPending, OrderCompleted, false},
		{OrderInProgress, OrderCompleted, true},
		{OrderInProgress, OrderRejected, false},
		{OrderInProgress, OrderPending, false},
		{OrderCompleted, OrderInProgress, false},
		{OrderRejected, OrderPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.Equal(t, []OrderStatus{OrderPending, OrderInProgress}, ActiveStatuses())
	assert.True(t, OrderInProgress.Active())
	assert.False(t, OrderRejected.Active())
	assert.True(t, OrderCompleted.HasChef())
	assert.False(t, OrderPending.HasChef())
}

func TestOrderStatusScanAndValue(t *testing.T) {
	var s OrderStatus
	require.NoError(t, s.Scan("In Progress"))
	assert.Equal(t, OrderInProgress, s)

	require.NoError(t, s.Scan([]byte("Completed")))
	assert.Equal(t, OrderCompleted, s)

	assert.Error(t, s.Scan("Ready"))
	assert.Error(t, s.Scan(42))

	v, err := OrderPending.Value()
	require.NoError(t, err)
	assert.Equal(t, "Pending", v)

	_, err = OrderStatus("Cooking").Value()
	assert.Error(t, err)
}

func TestOrderMoneyMarshalsAsNumbers(t *testing.T) {
	order := Order{
		ID:         4,
		Status:     OrderPending,
		TotalPrice: decimal.RequireFromString("20.50"),
		Items: []OrderItem{
			{OrderID: 4, MenuID: 1, Quantity: 2, Subtotal: decimal.RequireFromString("20.50")},
		},
	}
	raw, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_price":20.5`)
	assert.Contains(t, string(raw), `"subtotal":20.5`)

	var back Order
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.TotalPrice.Equal(order.TotalPrice))
}
