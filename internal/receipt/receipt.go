// Package receipt renders orders as fixed-width text for till printers.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
)

// Kind selects the document header.
type Kind string

const (
	KindReceipt Kind = "receipt"
	KindInvoice Kind = "invoice"
)

const width = 32

// Render formats the order using the store's currency settings.
func Render(o *models.Order, s *models.Settings, kind Kind) string {
	symbol, places, store := "$", int32(2), "My Store"
	if s != nil {
		if s.CurrencySymbol != "" {
			symbol = s.CurrencySymbol
		}
		if s.DecimalPlaces > 0 {
			places = s.DecimalPlaces
		}
		if s.StoreName != "" {
			store = s.StoreName
		}
	}
	var b strings.Builder
	rule := strings.Repeat("-", width)
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	if kind == KindInvoice {
		line("*** INVOICE for %s ***", store)
	}
	line(rule)
	line("ORDER %s - %s", shortID(o.ID), o.Status)
	line(rule)
	for _, it := range o.Items {
		name := it.Name
		if name == "" {
			name = "Unknown Item"
		}
		line("%d x %s @ %s", it.Quantity, name, pricing.FormatCurrency(it.Price, symbol, places))
	}
	line(rule)
	line("Subtotal : %s", pricing.FormatCurrency(o.Subtotal, symbol, places))
	if o.TotalDiscount.IsPositive() {
		line("Discount : -%s", pricing.FormatCurrency(o.TotalDiscount, symbol, places))
	}
	if o.TotalFees.IsPositive() {
		line("Fees     : +%s", pricing.FormatCurrency(o.TotalFees, symbol, places))
	}
	line("Tax      : +%s", pricing.FormatCurrency(o.TaxAmount, symbol, places))
	line("TOTAL    : %s", pricing.FormatCurrency(o.TotalAmount, symbol, places))
	line(rule)

	if o.CustomerName != "" && o.CustomerName != models.GuestCustomerName {
		line("Customer : %s", o.CustomerName)
	}
	if o.ShippingAddress != "" {
		provider := o.DeliveryProviderName
		if provider == "" {
			provider = "N/A"
		}
		line("Shipping : %s", o.ShippingAddress)
		line("Provider : %s", provider)
		line("Cost     : %s", pricing.FormatCurrency(o.ShippingCost, symbol, places))
	}
	line("Paid with: %s", o.PaymentMethod)
	line("Amount   : %s", pricing.FormatCurrency(o.AmountPaid, symbol, places))
	line("Change   : %s", pricing.FormatCurrency(o.ChangeDue, symbol, places))
	if o.RefundAmount.IsPositive() {
		line("Refunded : %s", pricing.FormatCurrency(o.RefundAmount, symbol, places))
	}
	line(rule)
	line("Date     : %s", o.CreatedAt.Local().Format(time.DateTime))
	line("Store    : %s", store)
	line(rule)

	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
