package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSettingsUpdate_MergesNestedSections(t *testing.T) {
	s := DefaultSettings()
	enabled := true

	update := &SettingsUpdate{Shipping: &ShippingSettingsUpdate{Enabled: &enabled}}
	update.Apply(&s)

	assert.True(t, s.Shipping.Enabled)
	assert.True(t, s.Shipping.DefaultCost.Equal(decimal.NewFromInt(5)), "default cost must survive a partial shipping update")
	assert.Equal(t, "$", s.CurrencySymbol)
	assert.Equal(t, 24, s.OpenSooq.RepostTimerHours)
}

func TestSettings_Redacted(t *testing.T) {
	s := DefaultSettings()
	s.OpenSooq.Password = "secret"

	r := s.Redacted()

	assert.Equal(t, "********", r.OpenSooq.Password)
	assert.Equal(t, "secret", s.OpenSooq.Password)
}

func TestOrderListFilter_Matches(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	order := &Order{
		ID:           "a1b2c3",
		CustomerName: "Jane Doe",
		Status:       OrderStatusCompleted,
		CreatedAt:    day.Add(15 * time.Hour),
	}

	tests := []struct {
		name     string
		filter   OrderListFilter
		expected bool
	}{
		{"empty filter", OrderListFilter{}, true},
		{"status match", OrderListFilter{Status: OrderStatusCompleted}, true},
		{"status mismatch", OrderListFilter{Status: OrderStatusVoided}, false},
		{"same day range", OrderListFilter{StartDate: &day, EndDate: &day}, true},
		{"search by customer", OrderListFilter{Search: "jane"}, true},
		{"search miss", OrderListFilter{Search: "bob"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(order))
		})
	}
}

func TestOrder_AmountDue(t *testing.T) {
	o := &Order{TotalAmount: decimal.RequireFromString("36.75"), ShippingCost: decimal.NewFromInt(5)}
	assert.Equal(t, "41.75", o.AmountDue().StringFixed(2))
}
