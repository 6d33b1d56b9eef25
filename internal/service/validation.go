package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

const (
	maxRefundReasonLength = 500
	maxNotesLength        = 1000
	maxDecimalPlaces      = repository.MoneyScale
	maxListLimit          = 100
	defaultListLimit      = 50
	defaultSummaryDays    = 7
	maxSummaryDays        = 90
)

// ValidateProduct validates a product before it is created.
func ValidateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.NewValidationError("name", "product name is required")
	}
	if p.Price.IsNegative() {
		return errors.NewValidationError("price", "price cannot be negative")
	}
	if p.Stock < 0 {
		return errors.NewValidationError("stock", "stock cannot be negative")
	}
	return nil
}

// ValidateProductUpdate validates only the fields being changed.
func ValidateProductUpdate(u *models.ProductUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return errors.NewValidationError("name", "product name is required")
	}
	if u.Price != nil && u.Price.IsNegative() {
		return errors.NewValidationError("price", "price cannot be negative")
	}
	if u.Stock != nil && *u.Stock < 0 {
		return errors.NewValidationError("stock", "stock cannot be negative")
	}
	return nil
}

func ValidateCustomer(c *models.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.NewValidationError("name", "customer name is required")
	}
	return validateEmail(c.Email)
}

func ValidateCustomerUpdate(u *models.CustomerUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return errors.NewValidationError("name", "customer name is required")
	}
	if u.Email != nil {
		return validateEmail(*u.Email)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.NewValidationError("email", "invalid email address")
	}
	return nil
}

func ValidateDeliveryProvider(d *models.DeliveryProvider) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.NewValidationError("name", "provider name is required")
	}
	return validateEmail(d.ContactEmail)
}

func ValidateDeliveryProviderUpdate(u *models.DeliveryProviderUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return errors.NewValidationError("name", "provider name is required")
	}
	if u.ContactEmail != nil {
		return validateEmail(*u.ContactEmail)
	}
	return nil
}

// ValidateSettings validates a fully merged settings record.
func ValidateSettings(s *models.Settings) error {
	if strings.TrimSpace(s.StoreName) == "" {
		return errors.NewValidationError("store_name", "store name is required")
	}
	if s.TaxRate.IsNegative() || s.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return errors.NewValidationError("tax_rate", "tax rate must be between 0 and 1")
	}
	if s.DecimalPlaces < 0 || s.DecimalPlaces > maxDecimalPlaces {
		return errors.NewValidationError("decimal_places", fmt.Sprintf("decimal places must be between 0 and %d", maxDecimalPlaces))
	}
	if !s.TaxMode.Valid() {
		return errors.NewValidationError("tax_mode", "unknown tax mode")
	}
	if s.Shipping.DefaultCost.IsNegative() {
		return errors.NewValidationError("shipping", "default shipping cost cannot be negative")
	}
	if len(s.PaymentMethods) == 0 {
		return errors.NewValidationError("payment_methods", "at least one payment method is required")
	}
	for _, m := range s.PaymentMethods {
		if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
			return errors.NewValidationError("payment_methods", "payment method id and name are required")
		}
	}
	ids := lo.Map(s.PaymentMethods, func(m models.PaymentMethod, _ int) string { return m.ID })
	if dup := lo.FindDuplicates(ids); len(dup) > 0 {
		return errors.NewValidationError("payment_methods", "duplicate payment method "+dup[0])
	}
	if s.OpenSooq.RepostTimerHours < 0 {
		return errors.NewValidationError("open_sooq", "repost timer cannot be negative")
	}
	return nil
}

// ValidateOrderListFilter validates a list filter and applies paging
// defaults.
func ValidateOrderListFilter(filter *models.OrderListFilter) error {
	if filter.Limit < 0 {
		return errors.NewValidationError("limit", "limit cannot be negative")
	}

	if filter.Offset < 0 {
		return errors.NewValidationError("offset", "offset cannot be negative")
	}

	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	if filter.Status != "" && !validOrderStatus(filter.Status) {
		return errors.NewValidationError("status", "invalid order status")
	}

	if filter.StartDate != nil && filter.EndDate != nil {
		if filter.StartDate.After(*filter.EndDate) {
			return errors.NewValidationError("start_date", "start date cannot be after end date")
		}
	}

	return nil
}

func validOrderStatus(s models.OrderStatus) bool {
	switch s {
	case models.OrderStatusPending,
		models.OrderStatusCompleted,
		models.OrderStatusVoided,
		models.OrderStatusRefunded:
		return true
	}
	return false
}

// ValidateSummaryFilter checks the dashboard date range and series length.
func ValidateSummaryFilter(filter *models.SummaryFilter) error {
	if filter.Days < 0 || filter.Days > maxSummaryDays {
		return errors.NewValidationError("days", fmt.Sprintf("days must be between 1 and %d", maxSummaryDays))
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return errors.NewValidationError("start_date", "start date must not be after end date")
	}
	return nil
}

// ValidateCreateOrder validates a raw order submitted through the API.
func ValidateCreateOrder(order *models.Order, items []models.OrderItem) error {
	if order == nil {
		return errors.NewValidationError("order", "invalid order data")
	}
	if len(items) == 0 {
		return errors.NewValidationError("items", "at least one item is required")
	}
	for _, item := range items {
		if item.ProductID == "" {
			return errors.NewValidationError("items", "product ID is required for item")
		}
		if item.Quantity <= 0 {
			return errors.NewValidationError("items", "quantity must be positive")
		}
		if item.Price.IsNegative() {
			return errors.NewValidationError("items", "unit price cannot be negative")
		}
	}
	// A cart holds one line per product, so loading the order back must
	// not merge lines.
	if dups := lo.FindDuplicatesBy(items, func(item models.OrderItem) string { return item.ProductID }); len(dups) > 0 {
		return errors.NewValidationError("items", fmt.Sprintf("product %s appears on more than one line", dups[0].ProductID))
	}
	if order.Status != "" && !validOrderStatus(order.Status) {
		return errors.NewValidationError("status", "invalid order status")
	}
	if order.TotalAmount.IsNegative() {
		return errors.NewValidationError("total_amount", "total cannot be negative")
	}
	return nil
}

// ValidateRefund validates a refund against the order it applies to.
func ValidateRefund(order *models.Order, amount decimal.Decimal, reason string) error {
	if !amount.IsPositive() {
		return errors.NewValidationError("amount", "refund amount must be positive")
	}
	if amount.GreaterThan(order.TotalAmount) {
		return errors.NewValidationError("amount", "refund amount cannot exceed the order total")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errors.NewValidationError("reason", "refund reason is required")
	}
	if utf8.RuneCountInString(reason) > maxRefundReasonLength {
		return errors.NewValidationError("reason", fmt.Sprintf("refund reason too long (max %d characters)", maxRefundReasonLength))
	}
	return nil
}

// SanitizeOrderNotes trims notes and caps their length. Notes are rendered
// as text on receipts, never as HTML.
func SanitizeOrderNotes(notes string) string {
	notes = strings.TrimSpace(notes)
	if r := []rune(notes); len(r) > maxNotesLength {
		notes = string(r[:maxNotesLength])
	}
	return notes
}
