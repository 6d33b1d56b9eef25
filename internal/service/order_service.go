package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/session"
)

// CashPaymentMethodID is the payment method whose takings go into the
// register's drawer.
const CashPaymentMethodID = "cash"

// CheckoutRequest pays for a register's cart. A nil AmountPaid means the
// exact amount due for settled methods and nothing for pay-later methods.
type CheckoutRequest struct {
	PaymentMethod string           `json:"payment_method" binding:"required"`
	AmountPaid    *decimal.Decimal `json:"amount_paid,omitempty"`
}

// CreateOrderRequest is the raw order submission: an order and its lines.
type CreateOrderRequest struct {
	Order *models.Order      `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// OrderService handles order business logic.
type OrderService struct {
	store     repository.OrderStore
	sessions  *session.Manager
	settings  *SettingsService
	publisher EventPublisher
	printer   ReceiptPrinter
	config    *config.Config
	metrics   MetricsRecorder
	logger    *logging.LoggerV2
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	store repository.OrderStore,
	sessions *session.Manager,
	settings *SettingsService,
	publisher EventPublisher,
	printer ReceiptPrinter,
	metrics MetricsRecorder,
	cfg *config.Config,
) *OrderService {
	return &OrderService{
		store:     store,
		sessions:  sessions,
		settings:  settings,
		publisher: publisher,
		printer:   printer,
		config:    cfg,
		metrics:   metrics,
		logger:    logging.NewLoggerV2("order-service"),
		now:       time.Now,
	}
}

// Checkout turns a register's cart into a persisted order. On success the
// cart is cleared and cash takings are added to the drawer; on failure the
// cart is left untouched.
func (s *OrderService) Checkout(ctx context.Context, registerID string, req *CheckoutRequest) (*models.Order, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	method, ok := settings.PaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, errors.NewValidationError("payment_method", "unknown payment method")
	}
	if req.AmountPaid != nil && req.AmountPaid.IsNegative() {
		return nil, errors.NewValidationError("amount_paid", "amount paid cannot be negative")
	}

	var order *models.Order
	_, err = s.sessions.Update(registerID, func(r *session.Register) error {
		if r.Cart.IsEmpty() {
			return errors.NewValidationError("cart", "cart is empty")
		}

		draft, items := s.buildOrder(&r.Cart, settings, method, req.AmountPaid)
		created, err := s.createOrder(ctx, draft, items)
		if err != nil {
			return err
		}

		if method.ID == CashPaymentMethodID {
			taken := decimal.Min(created.AmountPaid, created.AmountDue())
			r.Drawer.CashSales = r.Drawer.CashSales.Add(taken)
		}
		r.Cart.Clear()
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Checkout completed", logging.Fields{
		"register_id":    registerID,
		"order_id":       order.ID,
		"total":          order.TotalAmount.String(),
		"payment_method": order.PaymentMethod,
		"payment_status": order.PaymentStatus,
	})

	s.afterCreate(ctx, order)
	s.printReceipt(ctx, order, settings)

	return order, nil
}

func (s *OrderService) buildOrder(c *pricing.Cart, settings *models.Settings, method models.PaymentMethod, amountPaid *decimal.Decimal) (*models.Order, []models.OrderItem) {
	totals := cartTotals(c, settings)
	due := amountDue(totals, c.Shipping)

	paid := decimal.Zero
	switch {
	case amountPaid != nil:
		paid = *amountPaid
	case method.IsPaid:
		paid = due
	}

	paymentStatus := derivePaymentStatus(paid, due)
	status := models.OrderStatusCompleted
	if paymentStatus != models.PaymentStatusPaid {
		status = models.OrderStatusPending
	}

	order := &models.Order{
		StoreID:              s.config.StoreID,
		CustomerID:           models.GuestCustomerID,
		CustomerName:         models.GuestCustomerName,
		Subtotal:             totals.Subtotal,
		TaxAmount:            totals.TaxAmount,
		TotalAmount:          totals.Total,
		TotalDiscount:        totals.TotalDiscountAmount,
		TotalFees:            totals.TotalFeesAmount,
		OrderDiscountPercent: c.OrderDiscountPercent,
		Fees:                 append([]pricing.Fee{}, c.Fees...),
		AmountPaid:           paid,
		ChangeDue:            decimal.Max(paid.Sub(due), decimal.Zero),
		PaymentMethod:        method.ID,
		Status:               status,
		PaymentStatus:        paymentStatus,
		Notes:                c.Notes,
		OrderType:            orderType(c.Shipping),
	}
	if c.Customer != nil {
		order.CustomerID = c.Customer.ID
		order.CustomerName = c.Customer.Name
	}
	if c.Shipping != nil {
		order.ShippingAddress = c.Shipping.Address
		order.ShippingCost = c.Shipping.Cost
		order.DeliveryProviderID = c.Shipping.DeliveryProviderID
		order.DeliveryProviderName = c.Shipping.DeliveryProviderName
	}

	items := make([]models.OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.Quantity <= 0 {
			continue
		}
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			Discount:  line.ItemDiscountPercent,
		})
	}
	return order, items
}

func derivePaymentStatus(paid, due decimal.Decimal) models.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(due):
		return models.PaymentStatusPaid
	case paid.IsPositive():
		return models.PaymentStatusPartiallyPaid
	default:
		return models.PaymentStatusUnpaid
	}
}

// CreateOrder persists an order submitted as-is, without a register.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	if err := ValidateCreateOrder(req.Order, req.Items); err != nil {
		return nil, err
	}

	order := req.Order
	if order.Status == "" {
		order.Status = models.OrderStatusCompleted
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = derivePaymentStatus(order.AmountPaid, order.AmountDue())
	}
	if order.CustomerName == "" {
		order.CustomerName = models.GuestCustomerName
	}
	if order.StoreID == "" {
		order.StoreID = s.config.StoreID
	}
	if order.OrderType == "" {
		order.OrderType = models.OrderTypeRetail
		if order.ShippingAddress != "" {
			order.OrderType = models.OrderTypeDelivery
		}
	}
	order.Notes = SanitizeOrderNotes(order.Notes)

	s.logger.Info("Creating order", logging.Fields{
		"customer_id": order.CustomerID,
		"item_count":  len(req.Items),
	})

	created, err := s.createOrder(ctx, order, req.Items)
	if err != nil {
		return nil, err
	}

	s.afterCreate(ctx, created)
	return created, nil
}

// createOrder inserts the order and then its items. When the items fail
// the order is deleted again; if that delete fails too, both errors are
// returned.
func (s *OrderService) createOrder(ctx context.Context, order *models.Order, items []models.OrderItem) (*models.Order, error) {
	created, err := s.store.InsertOrder(ctx, order)
	if err != nil {
		s.logger.Error("Failed to create order", logging.Fields{"error": err.Error()})
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	saved, err := s.store.InsertOrderItems(ctx, created.ID, items)
	if err != nil {
		itemsErr := fmt.Errorf("failed to create order items: %w", err)
		s.logger.Error("Failed to create order items, rolling back order", logging.Fields{
			"order_id": created.ID,
			"error":    err.Error(),
		})

		if rbErr := s.store.DeleteOrder(context.WithoutCancel(ctx), created.ID); rbErr != nil {
			s.logger.Error("Failed to roll back order", logging.Fields{
				"order_id": created.ID,
				"error":    rbErr.Error(),
			})
			return nil, errors.Join(itemsErr, fmt.Errorf("failed to roll back order %s: %w", created.ID, rbErr))
		}
		return nil, itemsErr
	}

	created.Items = saved
	return created, nil
}

func (s *OrderService) afterCreate(ctx context.Context, order *models.Order) {
	amount, _ := order.TotalAmount.Float64()
	s.metrics.OrderRecorded(string(order.Status), amount)

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			// Log but don't fail
			s.logger.Error("Failed to publish order created event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}
}

func (s *OrderService) printReceipt(ctx context.Context, order *models.Order, settings *models.Settings) {
	if !s.config.Features.EnableReceiptPrinting || !settings.ReceiptPrinterEnabled {
		return
	}
	if err := s.printer.PrintReceipt(ctx, order, settings); err != nil {
		s.logger.Error("Failed to print receipt", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}

// ListOrders returns order history newest first.
func (s *OrderService) ListOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, error) {
	if filter == nil {
		filter = &models.OrderListFilter{}
	}
	if err := ValidateOrderListFilter(filter); err != nil {
		return nil, err
	}

	s.logger.Debug("Listing orders", logging.Fields{
		"status": filter.Status,
		"search": filter.Search,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})

	return s.store.GetOrders(ctx, filter)
}

// GetOrder returns an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.logger.Debug("Getting order", logging.Fields{"order_id": id})
	return s.store.GetOrder(ctx, id)
}

// VoidOrder cancels a pending or completed order.
func (s *OrderService) VoidOrder(ctx context.Context, id string) (*models.Order, error) {
	current, err := s.loadForTransition(ctx, id, models.OrderStatusVoided)
	if err != nil {
		return nil, err
	}

	status := models.OrderStatusVoided
	now := time.Now().UTC()
	order, err := s.store.UpdateOrder(ctx, id, &models.OrderUpdate{Status: &status, VoidedAt: &now})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order voided", logging.Fields{
		"order_id":        id,
		"previous_status": current.Status,
	})
	s.metrics.OrderStatusChanged(string(status))

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderVoided(ctx, order); err != nil {
			s.logger.Error("Failed to publish order voided event", logging.Fields{
				"order_id": id,
				"error":    err.Error(),
			})
		}
	}
	return order, nil
}

// RefundOrder refunds all or part of a completed order. The order becomes
// refunded either way; the payment status records whether it was in full.
func (s *OrderService) RefundOrder(ctx context.Context, id string, amount decimal.Decimal, reason string) (*models.Order, error) {
	current, err := s.loadForTransition(ctx, id, models.OrderStatusRefunded)
	if err != nil {
		return nil, err
	}
	if err := ValidateRefund(current, amount, reason); err != nil {
		return nil, err
	}

	status := models.OrderStatusRefunded
	paymentStatus := models.PaymentStatusPartiallyRefunded
	if amount.Equal(current.TotalAmount) {
		paymentStatus = models.PaymentStatusRefunded
	}
	now := time.Now().UTC()
	reason = SanitizeOrderNotes(reason)

	order, err := s.store.UpdateOrder(ctx, id, &models.OrderUpdate{
		Status:        &status,
		PaymentStatus: &paymentStatus,
		RefundedAt:    &now,
		RefundReason:  &reason,
		RefundAmount:  &amount,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order refunded", logging.Fields{
		"order_id": id,
		"amount":   amount.String(),
		"full":     paymentStatus == models.PaymentStatusRefunded,
	})
	refunded, _ := amount.Float64()
	s.metrics.RefundRecorded(refunded)
	s.metrics.OrderStatusChanged(string(status))

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderRefunded(ctx, order, amount, reason); err != nil {
			s.logger.Error("Failed to publish order refunded event", logging.Fields{
				"order_id": id,
				"error":    err.Error(),
			})
		}
	}
	return order, nil
}

// BatchUpdateStatus moves several orders to status. Orders that are
// missing or cannot make the transition are skipped; the number updated
// is returned.
func (s *OrderService) BatchUpdateStatus(ctx context.Context, ids []string, status models.OrderStatus) (int, error) {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return 0, errors.NewValidationError("order_ids", "at least one order id is required")
	}
	if !validOrderStatus(status) {
		return 0, errors.NewValidationError("status", "invalid order status")
	}

	updated := 0
	for _, id := range ids {
		current, err := s.loadForTransition(ctx, id, status)
		if errors.IsNotFound(err) || errors.Is(err, errors.ErrInvalidTransition) {
			s.logger.Warn("Skipping order in batch update", logging.Fields{
				"order_id": id,
				"reason":   err.Error(),
			})
			continue
		}
		if err != nil {
			return updated, err
		}

		u := &models.OrderUpdate{Status: &status}
		now := time.Now().UTC()
		switch status {
		case models.OrderStatusVoided:
			u.VoidedAt = &now
		case models.OrderStatusRefunded:
			ps := models.PaymentStatusRefunded
			u.RefundedAt = &now
			u.PaymentStatus = &ps
			u.RefundAmount = &current.TotalAmount
		}

		order, err := s.store.UpdateOrder(ctx, id, u)
		if err != nil {
			return updated, err
		}
		updated++
		s.metrics.OrderStatusChanged(string(status))
		s.publishStatusChanged(ctx, order, current.Status)
	}

	s.logger.Info("Batch status update", logging.Fields{
		"status":    status,
		"requested": len(ids),
		"updated":   updated,
	})
	return updated, nil
}

// UpdatePaymentStatus records a payment outcome reported by the terminal.
// A pending order becomes completed once it is paid.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id string, paymentStatus models.PaymentStatus) (*models.Order, error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.OrderStatusVoided || current.Status == models.OrderStatusRefunded {
		return nil, fmt.Errorf("%w: order %s is %s", errors.ErrInvalidTransition, id, current.Status)
	}

	u := &models.OrderUpdate{PaymentStatus: &paymentStatus}
	if paymentStatus == models.PaymentStatusPaid && current.Status == models.OrderStatusPending {
		completed := models.OrderStatusCompleted
		u.Status = &completed
	}

	order, err := s.store.UpdateOrder(ctx, id, u)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment status updated", logging.Fields{
		"order_id":       id,
		"payment_status": paymentStatus,
	})

	if order.Status != current.Status {
		s.metrics.OrderStatusChanged(string(order.Status))
		s.publishStatusChanged(ctx, order, current.Status)
	}
	return order, nil
}

// DeleteOrder removes an order and its items.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Order deleted", logging.Fields{"order_id": id})
	return nil
}

// PrintInvoice prints an invoice for a saved order. Unlike receipts at
// checkout, a failure here is returned to the caller.
func (s *OrderService) PrintInvoice(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.printer.PrintInvoice(ctx, order, settings); err != nil {
		return nil, fmt.Errorf("failed to print invoice: %w", err)
	}
	return order, nil
}

func (s *OrderService) loadForTransition(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(current.Status, to) {
		return nil, fmt.Errorf("%w from %s to %s", errors.ErrInvalidTransition, current.Status, to)
	}
	return current, nil
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) {
	if !s.config.Features.EnableOrderEvents {
		return
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
		s.logger.Error("Failed to publish status change event", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}

func isValidStatusTransition(from, to models.OrderStatus) bool {
	validTransitions := map[models.OrderStatus][]models.OrderStatus{
		models.OrderStatusPending:   {models.OrderStatusCompleted, models.OrderStatusVoided},
		models.OrderStatusCompleted: {models.OrderStatusVoided, models.OrderStatusRefunded},
		models.OrderStatusVoided:    {},
		models.OrderStatusRefunded:  {},
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	return lo.Contains(allowed, to)
}
