package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryFilter selects the orders behind the sales dashboard. Days is the
// length of the daily series, ending at EndDate or today.
type SummaryFilter struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	Days      int        `form:"days"`
}

// DailySales is one point of the dashboard chart.
type DailySales struct {
	Date   string          `json:"date"`
	Orders int             `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
}

// SalesSummary is the dashboard view of order history.
type SalesSummary struct {
	TotalSales        decimal.Decimal     `json:"total_sales"`
	AverageOrderValue decimal.Decimal     `json:"average_order_value"`
	TotalOrders       int                 `json:"total_orders"`
	OrdersByStatus    map[OrderStatus]int `json:"orders_by_status"`
	DailySales        []DailySales        `json:"daily_sales"`
}
