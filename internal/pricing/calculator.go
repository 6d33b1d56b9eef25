// Package pricing holds the order total calculation and the cart state
// transitions used by the registers. Everything here is synchronous and
// free of I/O.
package pricing

import (
	"github.com/shopspring/decimal"
)

// TaxMode selects how tax and discounts combine into the order total.
type TaxMode string

const (
	// TaxModeSubtotalOnly taxes the discounted subtotal only; fees are
	// untaxed and the reported subtotal is net of every discount.
	TaxModeSubtotalOnly TaxMode = "subtotal_only"
	// TaxModeIncludeFees taxes subtotal - discount + fees and reports the
	// subtotal before the order discount.
	TaxModeIncludeFees TaxMode = "include_fees"
)

// Valid reports whether m is a known mode. The empty mode is treated as
// TaxModeSubtotalOnly.
func (m TaxMode) Valid() bool {
	switch m {
	case "", TaxModeSubtotalOnly, TaxModeIncludeFees:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// CartLine is one product line in a register cart.
type CartLine struct {
	ProductID           string          `json:"product_id"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	ItemDiscountPercent decimal.Decimal `json:"item_discount_percent"`
}

// Fee is a flat charge added to the order, never scaled by quantity.
type Fee struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Totals is the computed breakdown of an order. It is never stored as
// an entity; orders copy the figures they need.
type Totals struct {
	Subtotal            decimal.Decimal `json:"subtotal"`
	TotalDiscountAmount decimal.Decimal `json:"total_discount_amount"`
	TotalFeesAmount     decimal.Decimal `json:"total_fees_amount"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	Total               decimal.Decimal `json:"total"`
	Mode                TaxMode         `json:"mode"`
}

// Calculator computes order totals. The zero value uses
// TaxModeSubtotalOnly and reports only the order-level discount.
type Calculator struct {
	Mode TaxMode
	// ReportItemDiscounts adds per-item discounts to TotalDiscountAmount.
	ReportItemDiscounts bool
}

// ComputeTotals computes totals with the default calculator.
func ComputeTotals(lines []CartLine, taxRate decimal.Decimal, fees []Fee, orderDiscountPercent decimal.Decimal) Totals {
	return Calculator{}.Compute(lines, taxRate, fees, orderDiscountPercent)
}

// Compute returns the order totals for the given cart. Percentages are
// clamped to [0,100], a negative tax rate is treated as zero and lines
// with a non-positive quantity are ignored. No rounding is applied.
func (c Calculator) Compute(lines []CartLine, taxRate decimal.Decimal, fees []Fee, orderDiscountPercent decimal.Decimal) Totals {
	gross := decimal.Zero
	itemDiscounts := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		lineGross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		lineDiscount := lineGross.Mul(ClampPercent(line.ItemDiscountPercent)).Div(hundred)
		gross = gross.Add(lineGross)
		itemDiscounts = itemDiscounts.Add(lineDiscount)
	}

	net := gross.Sub(itemDiscounts)
	orderDiscount := net.Mul(ClampPercent(orderDiscountPercent)).Div(hundred)

	feesTotal := decimal.Zero
	for _, fee := range fees {
		if fee.Amount.IsPositive() {
			feesTotal = feesTotal.Add(fee.Amount)
		}
	}

	if taxRate.IsNegative() {
		taxRate = decimal.Zero
	}

	discount := orderDiscount
	if c.ReportItemDiscounts {
		discount = discount.Add(itemDiscounts)
	}

	t := Totals{TotalFeesAmount: feesTotal, TotalDiscountAmount: discount, Mode: c.mode()}

	switch t.Mode {
	case TaxModeIncludeFees:
		t.Subtotal = net
		if c.ReportItemDiscounts {
			t.Subtotal = gross
		}
		taxable := net.Sub(orderDiscount).Add(feesTotal)
		t.TaxAmount = taxable.Mul(taxRate)
		t.Total = t.Subtotal.Sub(t.TotalDiscountAmount).Add(feesTotal).Add(t.TaxAmount)
	default:
		t.Subtotal = net.Sub(orderDiscount)
		t.TaxAmount = t.Subtotal.Mul(taxRate)
		t.Total = t.Subtotal.Add(t.TaxAmount).Add(feesTotal)
	}

	return t
}

func (c Calculator) mode() TaxMode {
	if c.Mode == TaxModeIncludeFees {
		return TaxModeIncludeFees
	}
	return TaxModeSubtotalOnly
}

// Round rounds each component to places and derives Total from the
// rounded components, so the mode identity holds on the rounded figures.
func (t Totals) Round(places int32) Totals {
	r := Totals{
		Subtotal:            t.Subtotal.Round(places),
		TotalDiscountAmount: t.TotalDiscountAmount.Round(places),
		TotalFeesAmount:     t.TotalFeesAmount.Round(places),
		TaxAmount:           t.TaxAmount.Round(places),
		Mode:                t.Mode,
	}
	if r.Mode == TaxModeIncludeFees {
		r.Total = r.Subtotal.Sub(r.TotalDiscountAmount).Add(r.TotalFeesAmount).Add(r.TaxAmount)
	} else {
		r.Total = r.Subtotal.Add(r.TotalFeesAmount).Add(r.TaxAmount)
	}
	return r
}

// ClampPercent limits p to [0,100].
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
