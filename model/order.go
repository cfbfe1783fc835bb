package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of states an order can be in.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderInProgress OrderStatus = "In Progress"
	OrderCompleted  OrderStatus = "Completed"
	OrderRejected   OrderStatus = "Rejected"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderInProgress, OrderRejected},
	OrderInProgress: {OrderCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderCompleted, OrderRejected:
		return true
	}
	return false
}

// Active reports whether the order still needs kitchen attention.
func (s OrderStatus) Active() bool {
	return s == OrderPending || s == OrderInProgress
}

// ActiveStatuses lists the statuses shown on the kitchen board.
func ActiveStatuses() []OrderStatus {
	var active []OrderStatus
	for _, s := range []OrderStatus{OrderPending, OrderInProgress, OrderCompleted, OrderRejected} {
		if s.Active() {
			active = append(active, s)
		}
	}
	return active
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HasChef reports whether an order in this state must carry a chef.
func (s OrderStatus) HasChef() bool {
	return s == OrderInProgress || s == OrderCompleted
}

func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("invalid order status %q", v)
	}
	return s, nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid order status %q", string(s))
	}
	return string(s), nil
}

func (s *OrderStatus) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", src)
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Order struct {
	ID          uint            `json:"order_id" gorm:"primaryKey"`
	TableNumber int             `json:"table_number" gorm:"not null"`
	CustomerID  uint            `json:"customer_id" gorm:"not null;index"`
	ChefID      *uint           `json:"chef_id" gorm:"index"`
	Status      OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	TotalPrice  decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null"`
	OrderTime   time.Time       `json:"order_time" gorm:"not null;index"`
	AcceptedAt  *time.Time      `json:"accepted_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	RejectedAt  *time.Time      `json:"rejected_at,omitempty"`
	Items       []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one cart line. FoodName is filled from the menu on reads only.
type OrderItem struct {
	OrderID  uint            `json:"order_id" gorm:"primaryKey;autoIncrement:false"`
	MenuID   uint            `json:"menu_id" gorm:"primaryKey;autoIncrement:false"`
	Quantity int             `json:"quantity" gorm:"not null"`
	Subtotal decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	FoodName string          `json:"food_name,omitempty" gorm:"->;-:migration"`
}

func (OrderItem) TableName() string { return "order_items" }
