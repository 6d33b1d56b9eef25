package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *models.Settings)
		wantErr bool
	}{
		{name: "defaults", mutate: func(s *models.Settings) {}},
		{name: "empty store name", mutate: func(s *models.Settings) { s.StoreName = " " }, wantErr: true},
		{name: "negative tax rate", mutate: func(s *models.Settings) { s.TaxRate = dec("-0.1") }, wantErr: true},
		{name: "three-place currency", mutate: func(s *models.Settings) { s.DecimalPlaces = 3 }},
		{name: "decimal places at column scale", mutate: func(s *models.Settings) { s.DecimalPlaces = repository.MoneyScale }},
		{name: "decimal places past column scale", mutate: func(s *models.Settings) { s.DecimalPlaces = repository.MoneyScale + 1 }, wantErr: true},
		{name: "too many decimal places", mutate: func(s *models.Settings) { s.DecimalPlaces = 6 }, wantErr: true},
		{name: "unknown tax mode", mutate: func(s *models.Settings) { s.TaxMode = pricing.TaxMode("weird") }, wantErr: true},
		{name: "no payment methods", mutate: func(s *models.Settings) { s.PaymentMethods = nil }, wantErr: true},
		{name: "negative shipping", mutate: func(s *models.Settings) { s.Shipping.DefaultCost = dec("-2") }, wantErr: true},
		{name: "negative repost timer", mutate: func(s *models.Settings) { s.OpenSooq.RepostTimerHours = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultSettings()
			tt.mutate(&s)
			err := ValidateSettings(&s)
			if tt.wantErr {
				assert.True(t, errors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOrderListFilter(t *testing.T) {
	f := &models.OrderListFilter{}
	assert.NoError(t, ValidateOrderListFilter(f))
	assert.Equal(t, 50, f.Limit)

	capped := &models.OrderListFilter{Limit: 500}
	assert.NoError(t, ValidateOrderListFilter(capped))
	assert.Equal(t, 100, capped.Limit)

	assert.Error(t, ValidateOrderListFilter(&models.OrderListFilter{Offset: -1}))
	assert.Error(t, ValidateOrderListFilter(&models.OrderListFilter{Status: "lost"}))

	start := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)
	assert.Error(t, ValidateOrderListFilter(&models.OrderListFilter{StartDate: &start, EndDate: &end}))
}

func TestValidateRefund_CountsCharacters(t *testing.T) {
	order := &models.Order{TotalAmount: dec("20")}

	assert.NoError(t, ValidateRefund(order, dec("5"), strings.Repeat("é", 500)))
	assert.Error(t, ValidateRefund(order, dec("5"), strings.Repeat("é", 501)))
}

func TestSanitizeOrderNotes(t *testing.T) {
	assert.Equal(t, "fragile", SanitizeOrderNotes("  fragile \n"))
	assert.Len(t, []rune(SanitizeOrderNotes(strings.Repeat("ü", 1200))), 1000)
}
