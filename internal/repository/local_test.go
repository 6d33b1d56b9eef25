package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := OpenLocal(context.Background(), filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLocalStore_SeedsDefaults(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	products, err := s.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)

	guest, err := s.GetCustomer(ctx, models.GuestCustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Guest", guest.Name)

	categories, err := s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	_, err = s.GetSettings(ctx)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestLocalStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")
	ctx := context.Background()

	s, err := OpenLocal(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.DeleteProduct(ctx, "SG3-001"))
	require.NoError(t, s.Close())

	s, err = OpenLocal(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	products, err := s.GetProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3, "seed must not run again on an existing file")
}

func TestLocalStore_ProductCRUD(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	created, err := s.AddProduct(ctx, &models.Product{Name: "Pen", Price: decimal.RequireFromString("2.50"), SKU: "PEN-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	name := "Pen Pro"
	updated, err := s.UpdateProduct(ctx, created.ID, &models.ProductUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Pen Pro", updated.Name)
	assert.Equal(t, "PEN-1", updated.SKU)

	_, err = s.UpdateProduct(ctx, "missing", &models.ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, s.DeleteProducts(ctx, []string{created.ID, "SP9-001"}))
	_, err = s.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	assert.ErrorIs(t, s.DeleteProduct(ctx, "missing"), errors.ErrNotFound)
}

func TestLocalStore_OrdersWithItems(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	order, err := s.InsertOrder(ctx, &models.Order{
		CustomerName: "Guest",
		TotalAmount:  decimal.NewFromInt(21),
		Status:       models.OrderStatusCompleted,
		Fees:         []pricing.Fee{{Description: "bag", Amount: decimal.RequireFromString("0.10")}},
	})
	require.NoError(t, err)

	items, err := s.InsertOrderItems(ctx, order.ID, []models.OrderItem{
		{ProductID: "SP9-001", Name: "Surface Pro 9", Quantity: 2, Price: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, order.ID, items[0].OrderID)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
	assert.Len(t, got.Fees, 1)

	voided := models.OrderStatusVoided
	now := time.Now().UTC()
	updated, err := s.UpdateOrder(ctx, order.ID, &models.OrderUpdate{Status: &voided, VoidedAt: &now})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusVoided, updated.Status)
	assert.NotNil(t, updated.VoidedAt)

	require.NoError(t, s.DeleteOrder(ctx, order.ID))
	remaining, err := s.GetOrderItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "order lines must be removed with the order")
}

func TestLocalStore_GetOrdersFilterAndPaging(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		status := models.OrderStatusCompleted
		if i == 4 {
			status = models.OrderStatusVoided
		}
		_, err := s.InsertOrder(ctx, &models.Order{
			CustomerName: "Guest",
			Status:       status,
			CreatedAt:    base.Add(time.Duration(i) * 24 * time.Hour),
		})
		require.NoError(t, err)
	}

	all, err := s.GetOrders(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.True(t, all[0].CreatedAt.After(all[4].CreatedAt), "newest first")

	completed, err := s.GetOrders(ctx, &models.OrderListFilter{Status: models.OrderStatusCompleted, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, completed, 2)

	day := base.Add(48 * time.Hour).Truncate(24 * time.Hour)
	onDay, err := s.GetOrders(ctx, &models.OrderListFilter{StartDate: &day, EndDate: &day})
	require.NoError(t, err)
	assert.Len(t, onDay, 1)
}

func TestLocalStore_SettingsAndZReports(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.StoreName = "Corner Shop"
	require.NoError(t, s.SaveSettings(ctx, &settings))

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", got.StoreName)
	assert.True(t, got.TaxRate.Equal(decimal.RequireFromString("0.05")))

	_, err = s.AddZReport(ctx, &models.ZReport{RegisterID: "till-1", EndAmount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = s.AddZReport(ctx, &models.ZReport{RegisterID: "till-2", EndAmount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	reports, err := s.GetZReports(ctx, "till-1")
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	all, err := s.GetZReports(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLocalStore_DeliveryProviders(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	created, err := s.AddDeliveryProvider(ctx, &models.DeliveryProvider{Name: "Careem", IsActive: true})
	require.NoError(t, err)

	inactive := false
	updated, err := s.UpdateDeliveryProvider(ctx, created.ID, &models.DeliveryProviderUpdate{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Careem", updated.Name)

	require.NoError(t, s.DeleteDeliveryProvider(ctx, created.ID))
	_, err = s.GetDeliveryProvider(ctx, created.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
