package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"smarthotel/apperror"
	"smarthotel/database"
	"smarthotel/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := database.Open("sqlite", dsn, gormlogger.Default.LogMode(gormlogger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id uint, name string, role model.UserRole) model.User {
	t.Helper()
	user := model.User{
		Model:    gorm.Model{ID: id},
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", strings.ToLower(name)),
		Phone:    "0123456789",
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedMenu(t *testing.T, db *gorm.DB, id uint, name, price, category string) model.MenuItem {
	t.Helper()
	item := model.MenuItem{
		Model:    gorm.Model{ID: id},
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

// seedOrders inserts n orders in the given status directly, bypassing the
// state machine.
func seedOrders(t *testing.T, db *gorm.DB, customerID uint, status model.OrderStatus, n int, at time.Time) []model.Order {
	t.Helper()
	if n == 0 {
		return nil
	}
	chef := uint(999)
	orders := make([]model.Order, n)
	for i := range orders {
		orders[i] = model.Order{
			TableNumber: 1,
			CustomerID:  customerID,
			Status:      status,
			TotalPrice:  decimal.NewFromInt(10),
			OrderTime:   at,
		}
		if status.HasChef() {
			orders[i].ChefID = &chef
		}
	}
	require.NoError(t, db.Create(&orders).Error)
	return orders
}

func requireKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperror.Is(err, kind), "expected %s error, got %v", kind, err)
}
