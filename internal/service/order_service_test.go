package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

var (
	errItemsWrite = errors.New("order items write failed")
	errDelete     = errors.New("order delete failed")
)

// failingItemsStore fails every item insert, and optionally the rollback.
type failingItemsStore struct {
	repository.OrderStore
	deleteErr error
	deleted   []string
}

func (s *failingItemsStore) InsertOrderItems(ctx context.Context, orderID string, items []models.OrderItem) ([]models.OrderItem, error) {
	return nil, errItemsWrite
}

func (s *failingItemsStore) DeleteOrder(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.OrderStore.DeleteOrder(ctx, id)
}

func ringUp(t *testing.T, env *testEnv, productIDs ...string) {
	t.Helper()
	for _, id := range productIDs {
		_, err := env.carts.AddItem(context.Background(), register, id)
		require.NoError(t, err)
	}
}

func checkout(t *testing.T, env *testEnv, method string, productIDs ...string) *models.Order {
	t.Helper()
	ringUp(t, env, productIDs...)
	order, err := env.orders.Checkout(context.Background(), register, &CheckoutRequest{PaymentMethod: method})
	require.NoError(t, err)
	return order
}

func TestCheckout_CashSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ringUp(t, env, "SG3-001", "SH2-001")

	order, err := env.orders.Checkout(ctx, register, &CheckoutRequest{
		PaymentMethod: "cash",
		AmountPaid:    decPtr("900"),
	})
	require.NoError(t, err)

	assertDecimal(t, "798.00", order.Subtotal)
	assertDecimal(t, "39.90", order.TaxAmount)
	assertDecimal(t, "837.90", order.TotalAmount)
	assertDecimal(t, "62.10", order.ChangeDue)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderTypeRetail, order.OrderType)
	assert.Equal(t, models.GuestCustomerID, order.CustomerID)
	assert.Equal(t, "store_test", order.StoreID)
	assert.Len(t, order.Items, 2)

	stored, err := env.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)

	view, err := env.carts.GetCart(ctx, register)
	require.NoError(t, err)
	assert.True(t, view.Cart.IsEmpty(), "cart should be cleared after checkout")

	drawer := env.cash.Drawer(ctx, register)
	assertDecimal(t, "837.90", drawer.Drawer.CashSales, "only the amount due goes in the drawer")

	assert.Equal(t, []events.EventType{events.EventTypeOrderCreated}, env.publisher.Types())
	assert.Equal(t, []string{order.ID}, env.printer.receipts)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.Checkout(context.Background(), register, &CheckoutRequest{PaymentMethod: "cash"})
	assert.True(t, errors.IsValidation(err))
}

func TestCheckout_UnknownPaymentMethodKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ringUp(t, env, "SG3-001")

	_, err := env.orders.Checkout(ctx, register, &CheckoutRequest{PaymentMethod: "bitcoin"})
	assert.True(t, errors.IsValidation(err))

	view, err := env.carts.GetCart(ctx, register)
	require.NoError(t, err)
	assert.Len(t, view.Cart.Lines, 1)
}

func TestCheckout_NegativeAmountPaid(t *testing.T) {
	env := newTestEnv(t)
	ringUp(t, env, "SG3-001")

	_, err := env.orders.Checkout(context.Background(), register, &CheckoutRequest{
		PaymentMethod: "cash",
		AmountPaid:    decPtr("-1"),
	})
	assert.True(t, errors.IsValidation(err))
}

func TestCheckout_PayLaterIsPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := checkout(t, env, "cod", "SH2-001")

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)
	assert.True(t, order.AmountPaid.IsZero())
	assert.True(t, env.cash.Drawer(ctx, register).Drawer.CashSales.IsZero())
}

func TestCheckout_PartialPayment(t *testing.T) {
	env := newTestEnv(t)
	ringUp(t, env, "SH2-001")

	order, err := env.orders.Checkout(context.Background(), register, &CheckoutRequest{
		PaymentMethod: "cash",
		AmountPaid:    decPtr("100"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPartiallyPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.ChangeDue.IsZero())
}

func TestCheckout_DeliveryChargesShipping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ringUp(t, env, "SH2-001")

	_, err := env.carts.SetShipping(ctx, register, &ShippingRequest{Address: "12 Palm Street"})
	require.NoError(t, err)

	order, err := env.orders.Checkout(ctx, register, &CheckoutRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	assert.Equal(t, models.OrderTypeDelivery, order.OrderType)
	assert.Equal(t, "12 Palm Street", order.ShippingAddress)
	assertDecimal(t, "5", order.ShippingCost)
	assertDecimal(t, "261.45", order.TotalAmount, "shipping is not part of the total")
	assertDecimal(t, "266.45", order.AmountPaid)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
}

func TestCheckout_SkipsPrintingWhenDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	disabled := false
	_, err := env.settings.Update(ctx, &models.SettingsUpdate{ReceiptPrinterEnabled: &disabled})
	require.NoError(t, err)

	checkout(t, env, "cash", "SH2-001")
	assert.Empty(t, env.printer.receipts)
}

func TestCheckout_PrinterFailureDoesNotFailSale(t *testing.T) {
	env := newTestEnv(t)
	env.printer.err = errors.New("printer offline")

	order := checkout(t, env, "cash", "SH2-001")
	assert.NotEmpty(t, order.ID)
}

func TestCreateOrder_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		Order: &models.Order{
			TotalAmount:     dec("10.50"),
			AmountPaid:      dec("10.50"),
			PaymentMethod:   "cash",
			ShippingAddress: "Somewhere",
		},
		Items: []models.OrderItem{{ProductID: "SH2-001", Name: "Headphones", Quantity: 1, Price: dec("10")}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	assert.Equal(t, models.OrderTypeDelivery, order.OrderType)
	assert.Equal(t, models.GuestCustomerName, order.CustomerName)
	assert.Len(t, order.Items, 1)
}

func TestCreateOrder_RequiresItems(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orders.CreateOrder(context.Background(), &CreateOrderRequest{Order: &models.Order{}})
	assert.True(t, errors.IsValidation(err))
}

func TestCreateOrder_RejectsDuplicateProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orders.CreateOrder(ctx, &CreateOrderRequest{
		Order: &models.Order{TotalAmount: dec("30")},
		Items: []models.OrderItem{
			{ProductID: "SH2-001", Quantity: 1, Price: dec("10"), Discount: dec("10")},
			{ProductID: "SG3-001", Quantity: 1, Price: dec("5")},
			{ProductID: "SH2-001", Quantity: 2, Price: dec("10")},
		},
	})
	require.True(t, errors.IsValidation(err))

	orders, err := env.store.GetOrders(ctx, &models.OrderListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_RollsBackWhenItemsFail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := &failingItemsStore{OrderStore: env.store}
	svc := NewOrderService(store, env.sessions, env.settings, env.publisher, env.printer, noMetrics, env.cfg)

	_, err := svc.CreateOrder(ctx, &CreateOrderRequest{
		Order: &models.Order{TotalAmount: dec("10")},
		Items: []models.OrderItem{{ProductID: "SH2-001", Quantity: 1, Price: dec("10")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errItemsWrite)
	require.Len(t, store.deleted, 1)

	orders, err := env.store.GetOrders(ctx, &models.OrderListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders, "the order row must be removed again")
	assert.Empty(t, env.publisher.Types())
}

func TestCreateOrder_RollbackFailureReportsBoth(t *testing.T) {
	env := newTestEnv(t)
	store := &failingItemsStore{OrderStore: env.store, deleteErr: errDelete}
	svc := NewOrderService(store, env.sessions, env.settings, env.publisher, env.printer, noMetrics, env.cfg)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		Order: &models.Order{TotalAmount: dec("10")},
		Items: []models.OrderItem{{ProductID: "SH2-001", Quantity: 1, Price: dec("10")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errItemsWrite)
	assert.ErrorIs(t, err, errDelete)
}

func TestCheckout_ItemFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := &failingItemsStore{OrderStore: env.store}
	svc := NewOrderService(store, env.sessions, env.settings, env.publisher, env.printer, noMetrics, env.cfg)
	ringUp(t, env, "SH2-001")

	_, err := svc.Checkout(ctx, register, &CheckoutRequest{PaymentMethod: "cash"})
	require.Error(t, err)

	view, err := env.carts.GetCart(ctx, register)
	require.NoError(t, err)
	assert.Len(t, view.Cart.Lines, 1)
	assert.True(t, env.cash.Drawer(ctx, register).Drawer.CashSales.IsZero())
}

func TestVoidOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := checkout(t, env, "cash", "SH2-001")

	voided, err := env.orders.VoidOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusVoided, voided.Status)
	assert.NotNil(t, voided.VoidedAt)
	assert.Contains(t, env.publisher.Types(), events.EventTypeOrderVoided)

	_, err = env.orders.VoidOrder(ctx, order.ID)
	assert.ErrorIs(t, err, errors.ErrInvalidTransition)

	_, err = env.orders.VoidOrder(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestRefundOrder(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		reason        string
		wantErr       bool
		paymentStatus models.PaymentStatus
	}{
		{name: "full refund", amount: "261.45", reason: "Damaged", paymentStatus: models.PaymentStatusRefunded},
		{name: "partial refund", amount: "50", reason: "Price match", paymentStatus: models.PaymentStatusPartiallyRefunded},
		{name: "more than total", amount: "300", reason: "Too much", wantErr: true},
		{name: "zero amount", amount: "0", reason: "Nothing", wantErr: true},
		{name: "missing reason", amount: "10", reason: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			order := checkout(t, env, "card", "SH2-001")

			refunded, err := env.orders.RefundOrder(ctx, order.ID, dec(tt.amount), tt.reason)
			if tt.wantErr {
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusRefunded, refunded.Status)
			assert.Equal(t, tt.paymentStatus, refunded.PaymentStatus)
			assertDecimal(t, tt.amount, refunded.RefundAmount)
			assert.Equal(t, tt.reason, refunded.RefundReason)
			assert.NotNil(t, refunded.RefundedAt)
		})
	}
}

func TestRefundOrder_PendingCannotBeRefunded(t *testing.T) {
	env := newTestEnv(t)
	order := checkout(t, env, "cod", "SH2-001")

	_, err := env.orders.RefundOrder(context.Background(), order.ID, dec("10"), "Changed mind")
	assert.ErrorIs(t, err, errors.ErrInvalidTransition)
}

func TestBatchUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := checkout(t, env, "cash", "SH2-001")
	second := checkout(t, env, "cash", "SG3-001")
	voided := checkout(t, env, "cash", "SP9-001")
	_, err := env.orders.VoidOrder(ctx, voided.ID)
	require.NoError(t, err)

	count, err := env.orders.BatchUpdateStatus(ctx, []string{first.ID, second.ID, voided.ID, "missing", first.ID}, models.OrderStatusVoided)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := env.orders.GetOrder(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusVoided, got.Status)
	assert.NotNil(t, got.VoidedAt)
}

func TestBatchUpdateStatus_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orders.BatchUpdateStatus(ctx, nil, models.OrderStatusVoided)
	assert.True(t, errors.IsValidation(err))

	_, err = env.orders.BatchUpdateStatus(ctx, []string{"a"}, "shipped")
	assert.True(t, errors.IsValidation(err))
}

func TestUpdatePaymentStatus_CompletesPendingOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := checkout(t, env, "cod", "SH2-001")

	paid, err := env.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, models.OrderStatusCompleted, paid.Status)
	assert.Contains(t, env.publisher.Types(), events.EventTypeOrderStatusChanged)
}

func TestUpdatePaymentStatus_RejectsVoidedOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := checkout(t, env, "cod", "SH2-001")
	_, err := env.orders.VoidOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = env.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusPaid)
	assert.ErrorIs(t, err, errors.ErrInvalidTransition)
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	checkout(t, env, "cash", "SH2-001")
	pending := checkout(t, env, "cod", "SG3-001")

	all, err := env.orders.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyPending, err := env.orders.ListOrders(ctx, &models.OrderListFilter{Status: models.OrderStatusPending})
	require.NoError(t, err)
	require.Len(t, onlyPending, 1)
	assert.Equal(t, pending.ID, onlyPending[0].ID)

	_, err = env.orders.ListOrders(ctx, &models.OrderListFilter{Offset: -1})
	assert.True(t, errors.IsValidation(err))
}

func TestDeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := checkout(t, env, "cash", "SH2-001")

	require.NoError(t, env.orders.DeleteOrder(ctx, order.ID))

	_, err := env.orders.GetOrder(ctx, order.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(env.orders.DeleteOrder(ctx, order.ID)))
}

func TestPrintInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := checkout(t, env, "cash", "SH2-001")

	_, err := env.orders.PrintInvoice(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{order.ID}, env.printer.invoices)

	env.printer.err = errors.New("paper jam")
	_, err = env.orders.PrintInvoice(ctx, order.ID)
	assert.Error(t, err)
}

func TestIsValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.OrderStatusPending, models.OrderStatusCompleted, true},
		{models.OrderStatusPending, models.OrderStatusVoided, true},
		{models.OrderStatusPending, models.OrderStatusRefunded, false},
		{models.OrderStatusCompleted, models.OrderStatusVoided, true},
		{models.OrderStatusCompleted, models.OrderStatusRefunded, true},
		{models.OrderStatusCompleted, models.OrderStatusPending, false},
		{models.OrderStatusVoided, models.OrderStatusCompleted, false},
		{models.OrderStatusRefunded, models.OrderStatusVoided, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, isValidStatusTransition(tt.from, tt.to))
		})
	}
}
