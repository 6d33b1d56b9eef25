package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

type failingZReportStore struct{}

func (failingZReportStore) GetZReports(context.Context, string) ([]*models.ZReport, error) {
	return nil, nil
}

func (failingZReportStore) AddZReport(context.Context, *models.ZReport) (*models.ZReport, error) {
	return nil, errors.New("write failed")
}

func TestCashService_CashInOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.cash.CashIn(ctx, register, dec("100"))
	require.NoError(t, err)
	assertDecimal(t, "100", view.Current)

	view, err = env.cash.CashOut(ctx, register, dec("30"))
	require.NoError(t, err)
	assertDecimal(t, "70", view.Current)
	assertDecimal(t, "30", view.Drawer.CashOut)

	_, err = env.cash.CashOut(ctx, register, dec("1000"))
	assert.True(t, errors.IsValidation(err))
	assertDecimal(t, "70", env.cash.Drawer(ctx, register).Current, "rejected cash out leaves the drawer alone")

	_, err = env.cash.CashIn(ctx, register, dec("0"))
	assert.True(t, errors.IsValidation(err))
}

func TestCashService_ZReportRollsDrawer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.cash.CashIn(ctx, register, dec("50"))
	require.NoError(t, err)
	checkout(t, env, "cash", "SH2-001")
	_, err = env.cash.CashOut(ctx, register, dec("20"))
	require.NoError(t, err)

	report, err := env.cash.GenerateZReport(ctx, register)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, register, report.RegisterID)
	assertDecimal(t, "0", report.StartAmount)
	assertDecimal(t, "50", report.CashIn)
	assertDecimal(t, "20", report.CashOut)
	assertDecimal(t, "261.45", report.CashSales)
	assertDecimal(t, "291.45", report.EndAmount)

	drawer := env.cash.Drawer(ctx, register)
	assertDecimal(t, "291.45", drawer.Drawer.StartAmount, "new shift opens with the closing amount")
	assert.True(t, drawer.Drawer.CashIn.IsZero())
	assert.True(t, drawer.Drawer.CashSales.IsZero())

	reports, err := env.cash.ListZReports(ctx, register)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	other, err := env.cash.ListZReports(ctx, "register-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.Contains(t, env.publisher.Types(), events.EventTypeZReport)
}

func TestCashService_ZReportFailureKeepsDrawer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cash := NewCashService(env.sessions, failingZReportStore{}, env.publisher, noMetrics, env.cfg)

	_, err := cash.CashIn(ctx, register, dec("40"))
	require.NoError(t, err)

	_, err = cash.GenerateZReport(ctx, register)
	require.Error(t, err)

	drawer := cash.Drawer(ctx, register)
	assertDecimal(t, "40", drawer.Drawer.CashIn)
	assert.True(t, drawer.Drawer.StartAmount.IsZero())
}
