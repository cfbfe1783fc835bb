package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"smarthotel/apperror"
	"smarthotel/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const uncategorized = "Uncategorized"

type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

type DashboardStats struct {
	TotalOrders    int64           `json:"totalOrders"`
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalMenuItems int64           `json:"totalMenuItems"`
	TotalCustomers int64           `json:"totalCustomers"`
}

type CategorySales struct {
	Category string          `json:"category"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// Stats only counts Completed orders as sales.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)

	var totals struct {
		Orders int64
		Sales  decimal.Decimal
	}
	err := db.Model(&model.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total_price), 0) AS sales").
		Where("status = ?", model.OrderCompleted).
		Scan(&totals).Error
	if err != nil {
		return nil, apperror.Dependency("failed to fetch order totals", err)
	}

	stats := &DashboardStats{TotalOrders: totals.Orders, TotalSales: totals.Sales.Round(2)}
	if err := db.Model(&model.MenuItem{}).Count(&stats.TotalMenuItems).Error; err != nil {
		return nil, apperror.Dependency("failed to count menu items", err)
	}
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleCustomer).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, apperror.Dependency("failed to count customers", err)
	}
	return stats, nil
}

// CategorySales aggregates quantity and revenue of Completed orders per menu
// category, including categories with no sales. Soft-deleted menu items keep
// contributing their past sales.
func (s *DashboardService) CategorySales(ctx context.Context) ([]CategorySales, error) {
	rows := []CategorySales{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(NULLIF(m.category, ''), ?) AS category,
			COALESCE(SUM(CASE WHEN o.id IS NOT NULL THEN oi.quantity ELSE 0 END), 0) AS quantity,
			COALESCE(SUM(CASE WHEN o.id IS NOT NULL THEN oi.subtotal ELSE 0 END), 0) AS revenue
		FROM menu_items m
		LEFT JOIN order_items oi ON oi.menu_id = m.id
		LEFT JOIN orders o ON o.id = oi.order_id AND o.status = ?
		GROUP BY 1
		ORDER BY revenue DESC, category`,
		uncategorized, model.OrderCompleted,
	).Scan(&rows).Error
	if err != nil {
		return nil, apperror.Dependency("failed to fetch category sales", err)
	}
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, nil
}

// WriteSalesReport renders a Summary and a Categories sheet as .xlsx.
func (s *DashboardService) WriteSalesReport(ctx context.Context, w io.Writer) error {
	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	categories, err := s.CategorySales(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary, bycat = "Summary", "Categories"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return apperror.Dependency("failed to build report", err)
	}
	if _, err := f.NewSheet(bycat); err != nil {
		return apperror.Dependency("failed to build report", err)
	}

	totalSales, _ := stats.TotalSales.Float64()
	summaryRows := [][]interface{}{
		{"Generated", s.now().Format(time.RFC3339)},
		{"Completed orders", stats.TotalOrders},
		{"Total sales", totalSales},
		{"Menu items", stats.TotalMenuItems},
		{"Customers", stats.TotalCustomers},
	}
	for i, row := range summaryRows {
		if err := f.SetSheetRow(summary, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return apperror.Dependency("failed to build report", err)
		}
	}

	header := []interface{}{"Category", "Quantity", "Revenue"}
	if err := f.SetSheetRow(bycat, "A1", &header); err != nil {
		return apperror.Dependency("failed to build report", err)
	}
	for i, c := range categories {
		revenue, _ := c.Revenue.Float64()
		row := []interface{}{c.Category, c.Quantity, revenue}
		if err := f.SetSheetRow(bycat, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return apperror.Dependency("failed to build report", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return apperror.Dependency("failed to write report", err)
	}
	return nil
}
