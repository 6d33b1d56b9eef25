package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func seedSummaryOrders(t *testing.T, env *testEnv) {
	t.Helper()
	seed := []struct {
		status models.OrderStatus
		total  string
		at     time.Time
	}{
		{models.OrderStatusCompleted, "100", day("2025-03-10").Add(9 * time.Hour)},
		{models.OrderStatusCompleted, "50.50", day("2025-03-09").Add(18 * time.Hour)},
		{models.OrderStatusPending, "20", day("2025-03-10").Add(11 * time.Hour)},
		{models.OrderStatusVoided, "30", day("2025-03-08").Add(12 * time.Hour)},
		{models.OrderStatusRefunded, "40", day("2025-03-04").Add(10 * time.Hour)},
		{models.OrderStatusCompleted, "10", day("2025-02-01").Add(10 * time.Hour)},
	}
	for _, o := range seed {
		_, err := env.store.InsertOrder(context.Background(), &models.Order{
			CustomerName:  models.GuestCustomerName,
			TotalAmount:   dec(o.total),
			PaymentMethod: "cash",
			Status:        o.status,
			PaymentStatus: models.PaymentStatusPaid,
			OrderType:     models.OrderTypeRetail,
			CreatedAt:     o.at,
		})
		require.NoError(t, err)
	}
}

func TestOrderService_Summary(t *testing.T) {
	tests := []struct {
		name        string
		filter      *models.SummaryFilter
		wantOrders  int
		wantSales   string
		wantAverage string
		wantStatus  map[models.OrderStatus]int
		wantDaily   map[string]string
		wantDays    int
	}{
		{
			name:        "all orders with the default week",
			filter:      nil,
			wantOrders:  6,
			wantSales:   "160.50",
			wantAverage: "41.75",
			wantStatus: map[models.OrderStatus]int{
				models.OrderStatusCompleted: 3,
				models.OrderStatusPending:   1,
				models.OrderStatusVoided:    1,
				models.OrderStatusRefunded:  1,
			},
			wantDaily: map[string]string{"2025-03-04": "0", "2025-03-08": "0", "2025-03-09": "50.50", "2025-03-10": "100"},
			wantDays:  7,
		},
		{
			name:        "date range",
			filter:      &models.SummaryFilter{StartDate: dayPtr("2025-03-09"), EndDate: dayPtr("2025-03-10"), Days: 2},
			wantOrders:  3,
			wantSales:   "150.50",
			wantAverage: "56.83",
			wantStatus: map[models.OrderStatus]int{
				models.OrderStatusCompleted: 2,
				models.OrderStatusPending:   1,
				models.OrderStatusVoided:    0,
				models.OrderStatusRefunded:  0,
			},
			wantDaily: map[string]string{"2025-03-09": "50.50", "2025-03-10": "100"},
			wantDays:  2,
		},
		{
			name:        "no orders in range",
			filter:      &models.SummaryFilter{StartDate: dayPtr("2024-01-01"), EndDate: dayPtr("2024-01-01"), Days: 1},
			wantOrders:  0,
			wantSales:   "0",
			wantAverage: "0",
			wantStatus: map[models.OrderStatus]int{
				models.OrderStatusCompleted: 0,
				models.OrderStatusPending:   0,
				models.OrderStatusVoided:    0,
				models.OrderStatusRefunded:  0,
			},
			wantDaily: map[string]string{"2024-01-01": "0"},
			wantDays:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.orders.now = func() time.Time { return day("2025-03-10").Add(15 * time.Hour) }
			seedSummaryOrders(t, env)

			summary, err := env.orders.Summary(context.Background(), tt.filter)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOrders, summary.TotalOrders)
			assertDecimal(t, tt.wantSales, summary.TotalSales, "total sales")
			assertDecimal(t, tt.wantAverage, summary.AverageOrderValue, "average order value")
			assert.Equal(t, tt.wantStatus, summary.OrdersByStatus)

			require.Len(t, summary.DailySales, tt.wantDays)
			for i := 1; i < len(summary.DailySales); i++ {
				assert.Less(t, summary.DailySales[i-1].Date, summary.DailySales[i].Date)
			}
			byDate := make(map[string]models.DailySales)
			for _, d := range summary.DailySales {
				byDate[d.Date] = d
			}
			for date, sales := range tt.wantDaily {
				point, ok := byDate[date]
				require.True(t, ok, "missing day %s", date)
				assertDecimal(t, sales, point.Sales, date)
			}
		})
	}
}

func TestOrderService_SummaryCountsCompletedOrdersPerDay(t *testing.T) {
	env := newTestEnv(t)
	env.orders.now = func() time.Time { return day("2025-03-10").Add(15 * time.Hour) }
	seedSummaryOrders(t, env)

	summary, err := env.orders.Summary(context.Background(), &models.SummaryFilter{Days: 1})
	require.NoError(t, err)

	require.Len(t, summary.DailySales, 1)
	assert.Equal(t, "2025-03-10", summary.DailySales[0].Date)
	assert.Equal(t, 1, summary.DailySales[0].Orders, "the pending order is not a sale")
}

func TestOrderService_SummaryValidation(t *testing.T) {
	tests := []struct {
		name   string
		filter *models.SummaryFilter
	}{
		{name: "negative days", filter: &models.SummaryFilter{Days: -1}},
		{name: "too many days", filter: &models.SummaryFilter{Days: maxSummaryDays + 1}},
		{name: "start after end", filter: &models.SummaryFilter{StartDate: dayPtr("2025-03-10"), EndDate: dayPtr("2025-03-01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.orders.Summary(context.Background(), tt.filter)
			assert.True(t, errors.IsValidation(err))
		})
	}
}
