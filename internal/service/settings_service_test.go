package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
)

func TestSettingsService_DefaultsWhenUnset(t *testing.T) {
	env := newTestEnv(t)

	s, err := env.settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "My Store", s.StoreName)
	assert.Equal(t, pricing.TaxModeSubtotalOnly, s.TaxMode)
	assertDecimal(t, "0.05", s.TaxRate)
}

func TestSettingsService_UpdateMergesSections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	enabled := true
	name := "Corner Shop"

	_, err := env.settings.Update(ctx, &models.SettingsUpdate{
		StoreName: &name,
		Shipping:  &models.ShippingSettingsUpdate{Enabled: &enabled},
	})
	require.NoError(t, err)

	s, err := env.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", s.StoreName)
	assert.True(t, s.Shipping.Enabled)
	assertDecimal(t, "5", s.Shipping.DefaultCost, "untouched nested fields are kept")
	assert.Len(t, s.PaymentMethods, 3)
}

func TestSettingsService_TaxModeChangesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ringUp(t, env, "SH2-001")
	_, err := env.carts.SetFees(ctx, register, []pricing.Fee{{Description: "Service", Amount: dec("10")}})
	require.NoError(t, err)

	mode := pricing.TaxModeIncludeFees
	_, err = env.settings.Update(ctx, &models.SettingsUpdate{TaxMode: &mode})
	require.NoError(t, err)

	view, err := env.carts.GetCart(ctx, register)
	require.NoError(t, err)
	assertDecimal(t, "12.95", view.Totals.TaxAmount)
	assertDecimal(t, "271.95", view.Totals.Total)
}

func TestSettingsService_RejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tooHigh := dec("1.5")
	_, err := env.settings.Update(ctx, &models.SettingsUpdate{TaxRate: &tooHigh})
	assert.True(t, errors.IsValidation(err))

	_, err = env.settings.Update(ctx, &models.SettingsUpdate{PaymentMethods: []models.PaymentMethod{
		{ID: "cash", Name: "Cash"},
		{ID: "cash", Name: "Cash again"},
	}})
	assert.True(t, errors.IsValidation(err))

	s, err := env.settings.Get(ctx)
	require.NoError(t, err)
	assertDecimal(t, "0.05", s.TaxRate, "rejected updates are not saved")
}

func TestSettingsService_RedactedPasswordKeepsStored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	password := "secret"
	redacted := models.RedactedPassword

	_, err := env.settings.Update(ctx, &models.SettingsUpdate{OpenSooq: &models.OpenSooqSettingsUpdate{Password: &password}})
	require.NoError(t, err)
	_, err = env.settings.Update(ctx, &models.SettingsUpdate{OpenSooq: &models.OpenSooqSettingsUpdate{Password: &redacted}})
	require.NoError(t, err)

	s, err := env.settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret", s.OpenSooq.Password)
}
