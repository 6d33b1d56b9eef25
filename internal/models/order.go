package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusVoided    OrderStatus = "voided"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// PaymentStatus tracks settlement independently of the order status.
type PaymentStatus string

const (
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusPartiallyPaid     PaymentStatus = "partially_paid"
	PaymentStatusUnpaid            PaymentStatus = "unpaid"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

type OrderType string

const (
	OrderTypeRetail   OrderType = "retail"
	OrderTypeDelivery OrderType = "delivery"
)

// Order is a completed (or pending) sale persisted by the store.
type Order struct {
	ID                   string          `json:"id"`
	StoreID              string          `json:"store_id,omitempty"`
	CustomerID           string          `json:"customer_id,omitempty"`
	CustomerName         string          `json:"customer_name"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	TotalDiscount        decimal.Decimal `json:"total_discount"`
	TotalFees            decimal.Decimal `json:"total_fees"`
	OrderDiscountPercent decimal.Decimal `json:"order_discount_percent"`
	Fees                 []pricing.Fee   `json:"fees"`
	AmountPaid           decimal.Decimal `json:"amount_paid"`
	ChangeDue            decimal.Decimal `json:"change_due"`
	PaymentMethod        string          `json:"payment_method"`
	Status               OrderStatus     `json:"status"`
	PaymentStatus        PaymentStatus   `json:"payment_status"`
	Notes                string          `json:"notes,omitempty"`
	ShippingAddress      string          `json:"shipping_address,omitempty"`
	ShippingCost         decimal.Decimal `json:"shipping_cost"`
	DeliveryProviderID   string          `json:"delivery_provider_id,omitempty"`
	DeliveryProviderName string          `json:"delivery_provider_name,omitempty"`
	OrderType            OrderType       `json:"order_type"`
	VoidedAt             *time.Time      `json:"voided_at,omitempty"`
	RefundedAt           *time.Time      `json:"refunded_at,omitempty"`
	RefundReason         string          `json:"refund_reason,omitempty"`
	RefundAmount         decimal.Decimal `json:"refund_amount"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`

	Items []OrderItem `json:"order_items,omitempty"`
}

// AmountDue is what the customer owes at the till: order total plus
// shipping, which is charged outside the tax calculation.
func (o *Order) AmountDue() decimal.Decimal {
	return o.TotalAmount.Add(o.ShippingCost)
}

// OrderItem is one persisted order line. Discount is a percentage.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderUpdate is a partial update; nil fields are left untouched.
type OrderUpdate struct {
	Status        *OrderStatus     `json:"status,omitempty"`
	PaymentStatus *PaymentStatus   `json:"payment_status,omitempty"`
	VoidedAt      *time.Time       `json:"voided_at,omitempty"`
	RefundedAt    *time.Time       `json:"refunded_at,omitempty"`
	RefundReason  *string          `json:"refund_reason,omitempty"`
	RefundAmount  *decimal.Decimal `json:"refund_amount,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

// Apply copies the set fields of u onto o.
func (u *OrderUpdate) Apply(o *Order) {
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	if u.VoidedAt != nil {
		o.VoidedAt = u.VoidedAt
	}
	if u.RefundedAt != nil {
		o.RefundedAt = u.RefundedAt
	}
	if u.RefundReason != nil {
		o.RefundReason = *u.RefundReason
	}
	if u.RefundAmount != nil {
		o.RefundAmount = *u.RefundAmount
	}
	if u.Notes != nil {
		o.Notes = *u.Notes
	}
}

// OrderListFilter narrows order history queries.
type OrderListFilter struct {
	Status    OrderStatus `form:"status"`
	Search    string      `form:"search"`
	StartDate *time.Time  `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time  `form:"end_date" time_format:"2006-01-02"`
	Limit     int         `form:"limit"`
	Offset    int         `form:"offset"`
}

// Matches reports whether an order satisfies the filter, ignoring paging.
func (f *OrderListFilter) Matches(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.StartDate != nil && o.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && !o.CreatedAt.Before(f.EndDate.Add(24*time.Hour)) {
		return false
	}
	if f.Search != "" && !containsFold(o.ID, f.Search) && !containsFold(o.CustomerName, f.Search) {
		return false
	}
	return true
}

// ZReport is an end-of-shift cash drawer summary.
type ZReport struct {
	ID          string          `json:"id"`
	RegisterID  string          `json:"register_id"`
	StartAmount decimal.Decimal `json:"start_amount"`
	EndAmount   decimal.Decimal `json:"end_amount"`
	CashIn      decimal.Decimal `json:"cash_in"`
	CashOut     decimal.Decimal `json:"cash_out"`
	CashSales   decimal.Decimal `json:"cash_sales"`
	CreatedAt   time.Time       `json:"created_at"`
}
