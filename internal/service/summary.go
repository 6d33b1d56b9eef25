package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

const dayLayout = "2006-01-02"

// Summary aggregates order history for the dashboard. Sales count
// completed orders only; the average is taken over every order in range.
func (s *OrderService) Summary(ctx context.Context, filter *models.SummaryFilter) (*models.SalesSummary, error) {
	if filter == nil {
		filter = &models.SummaryFilter{}
	}
	if err := ValidateSummaryFilter(filter); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.GetOrders(ctx, &models.OrderListFilter{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	})
	if err != nil {
		return nil, err
	}

	last := s.now().UTC()
	if filter.EndDate != nil {
		last = *filter.EndDate
	}
	days := filter.Days
	if days == 0 {
		days = defaultSummaryDays
	}

	summary := summarizeOrders(orders, last, days)
	summary.AverageOrderValue = summary.AverageOrderValue.Round(settings.DecimalPlaces)

	s.logger.Debug("Built sales summary", logging.Fields{
		"orders": summary.TotalOrders,
		"days":   days,
	})
	return summary, nil
}

func summarizeOrders(orders []*models.Order, last time.Time, days int) *models.SalesSummary {
	completed := lo.Filter(orders, func(o *models.Order, _ int) bool {
		return o.Status == models.OrderStatusCompleted
	})

	summary := &models.SalesSummary{
		TotalSales:        sumTotals(completed),
		AverageOrderValue: decimal.Zero,
		TotalOrders:       len(orders),
		OrdersByStatus: lo.CountValuesBy(orders, func(o *models.Order) models.OrderStatus {
			return o.Status
		}),
	}
	for _, status := range []models.OrderStatus{
		models.OrderStatusCompleted,
		models.OrderStatusPending,
		models.OrderStatusVoided,
		models.OrderStatusRefunded,
	} {
		if _, ok := summary.OrdersByStatus[status]; !ok {
			summary.OrdersByStatus[status] = 0
		}
	}
	if len(orders) > 0 {
		summary.AverageOrderValue = sumTotals(orders).Div(decimal.NewFromInt(int64(len(orders))))
	}

	byDay := lo.GroupBy(completed, func(o *models.Order) string {
		return o.CreatedAt.UTC().Format(dayLayout)
	})
	summary.DailySales = make([]models.DailySales, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := last.AddDate(0, 0, -i).Format(dayLayout)
		summary.DailySales = append(summary.DailySales, models.DailySales{
			Date:   key,
			Orders: len(byDay[key]),
			Sales:  sumTotals(byDay[key]),
		})
	}
	return summary
}

func sumTotals(orders []*models.Order) decimal.Decimal {
	return lo.Reduce(orders, func(acc decimal.Decimal, o *models.Order, _ int) decimal.Decimal {
		return acc.Add(o.TotalAmount)
	}, decimal.Zero)
}
