package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"smarthotel/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardController struct {
	dashboard *service.DashboardService
}

func NewDashboardController(dashboard *service.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

func (dc *DashboardController) Stats(c *gin.Context) {
	stats, err := dc.dashboard.Stats(requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", stats)
}

// SalesStats and CategoryRevenue keep the chart-friendly parallel arrays the
// admin dashboard plots directly.
func (dc *DashboardController) SalesStats(c *gin.Context) {
	rows, err := dc.dashboard.CategorySales(requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	labels := make([]string, len(rows))
	quantities := make([]int64, len(rows))
	for i, r := range rows {
		labels[i], quantities[i] = r.Category, r.Quantity
	}
	respondOK(c, http.StatusOK, "", gin.H{"labels": labels, "quantities": quantities})
}

func (dc *DashboardController) CategoryRevenue(c *gin.Context) {
	rows, err := dc.dashboard.CategorySales(requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	categories := make([]string, len(rows))
	revenues := make([]decimal.Decimal, len(rows))
	for i, r := range rows {
		categories[i], revenues[i] = r.Category, r.Revenue
	}
	respondOK(c, http.StatusOK, "", gin.H{"categories": categories, "revenues": revenues})
}

func (dc *DashboardController) SalesReport(c *gin.Context) {
	var buf bytes.Buffer
	if err := dc.dashboard.WriteSalesReport(requestContext(c), &buf); err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("sales-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
