package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            "a1b2c3d4-0000-0000-0000-000000000000",
		CustomerName:  "Guest",
		Subtotal:      decimal.RequireFromString("20"),
		TaxAmount:     decimal.RequireFromString("1"),
		TotalAmount:   decimal.RequireFromString("21"),
		AmountPaid:    decimal.RequireFromString("25"),
		ChangeDue:     decimal.RequireFromString("4"),
		PaymentMethod: "cash",
		Status:        models.OrderStatusCompleted,
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Items: []models.OrderItem{
			{Name: "Pen", Quantity: 2, Price: decimal.RequireFromString("10")},
		},
	}
}

func TestRender_Receipt(t *testing.T) {
	settings := models.DefaultSettings()
	out := Render(sampleOrder(), &settings, KindReceipt)

	assert.Contains(t, out, "ORDER A1B2C3D4 - completed")
	assert.Contains(t, out, "2 x Pen @ $10.00")
	assert.Contains(t, out, "TOTAL    : $21.00")
	assert.Contains(t, out, "Change   : $4.00")
	assert.Contains(t, out, "Store    : My Store")
	assert.NotContains(t, out, "Customer :", "guest is not printed")
	assert.NotContains(t, out, "Discount :")
	assert.NotContains(t, out, "INVOICE")

	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.HasPrefix(l, "-") {
			assert.Len(t, l, 32)
		}
	}
}

func TestRender_InvoiceWithExtras(t *testing.T) {
	o := sampleOrder()
	o.CustomerName = "John Smith"
	o.TotalDiscount = decimal.RequireFromString("2")
	o.TotalFees = decimal.RequireFromString("0.5")
	o.ShippingAddress = "1 Main St"
	o.ShippingCost = decimal.RequireFromString("5")
	o.Items = append(o.Items, models.OrderItem{Quantity: 1, Price: decimal.NewFromInt(1)})

	settings := models.DefaultSettings()
	settings.StoreName = "Corner Shop"
	settings.CurrencySymbol = "JD "
	settings.DecimalPlaces = 3
	out := Render(o, &settings, KindInvoice)

	assert.True(t, strings.HasPrefix(out, "*** INVOICE for Corner Shop ***"))
	assert.Contains(t, out, "Customer : John Smith")
	assert.Contains(t, out, "Discount : -JD 2.000")
	assert.Contains(t, out, "Fees     : +JD 0.500")
	assert.Contains(t, out, "Provider : N/A")
	assert.Contains(t, out, "1 x Unknown Item @ JD 1.000")
}

func TestRender_NilSettingsUsesDefaults(t *testing.T) {
	out := Render(sampleOrder(), nil, KindReceipt)
	assert.Contains(t, out, "TOTAL    : $21.00")
}
