package service

import (
	"context"
	"errors"
	"testing"

	"smarthotel/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type staticMenu map[uint]decimal.Decimal

func (m staticMenu) Prices(_ context.Context, _ []uint) (map[uint]decimal.Decimal, error) {
	return m, nil
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestAcceptGuardMissReportsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewOrderService(db, staticMenu{})
	svc.now = fixedClock

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .* WHERE .*id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := svc.Accept(context.Background(), 10, 2)
	requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, 404, apperror.From(err).Status())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteStoreFailureIsDependencyError(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewOrderService(db, staticMenu{})
	svc.now = fixedClock

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := svc.Complete(context.Background(), 10)
	requireKind(t, err, apperror.KindDependency)
	assert.Equal(t, 500, apperror.From(err).Status())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderItemFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewOrderService(db, staticMenu{1: decimal.NewFromInt(10)})
	svc.now = fixedClock

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(`INSERT INTO "order_items"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		TableNumber: 5,
		CustomerID:  7,
		Items:       []CartItem{{MenuID: 1, Quantity: 2, Subtotal: decimal.NewFromInt(20)}},
	})
	requireKind(t, err, apperror.KindDependency)
	assert.NotContains(t, apperror.From(err).Message, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
