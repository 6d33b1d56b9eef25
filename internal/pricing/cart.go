package pricing

import (
	"github.com/shopspring/decimal"
)

// CartCustomer is the customer attached to a cart. A nil customer on the
// cart means the walk-in guest.
type CartCustomer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Shipping holds delivery details for a cart. Shipping cost is charged on
// top of the order total and is not part of the tax calculation.
type Shipping struct {
	Address              string          `json:"address"`
	Cost                 decimal.Decimal `json:"cost"`
	DeliveryProviderID   string          `json:"delivery_provider_id,omitempty"`
	DeliveryProviderName string          `json:"delivery_provider_name,omitempty"`
}

// Cart is the in-progress sale at a register. Lines are keyed by product
// id; the methods are the only supported state transitions.
type Cart struct {
	Lines                []CartLine      `json:"lines"`
	OrderDiscountPercent decimal.Decimal `json:"order_discount_percent"`
	Fees                 []Fee           `json:"fees"`
	Customer             *CartCustomer   `json:"customer,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	Shipping             *Shipping       `json:"shipping,omitempty"`
}

// AddItem increments the line for productID or appends a new line with
// quantity 1 and no discount.
func (c *Cart) AddItem(productID, name string, unitPrice decimal.Decimal) {
	if i := c.index(productID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  1,
	})
}

// SetQuantity sets a line's quantity; zero or less removes the line.
// It reports whether the line existed.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.removeAt(i)
		return true
	}
	c.Lines[i].Quantity = quantity
	return true
}

// AdjustQuantity changes a line's quantity by delta with the same removal
// rule as SetQuantity.
func (c *Cart) AdjustQuantity(productID string, delta int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	return c.SetQuantity(productID, c.Lines[i].Quantity+delta)
}

func (c *Cart) RemoveItem(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// Clear resets the cart to its initial state: no lines, no discount, no
// fees, guest customer, no notes and no shipping.
func (c *Cart) Clear() {
	*c = Cart{}
}

// ApplyItemDiscount sets a line's discount percentage, clamped to [0,100].
func (c *Cart) ApplyItemDiscount(productID string, percent decimal.Decimal) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Lines[i].ItemDiscountPercent = ClampPercent(percent)
	return true
}

// ApplyOrderDiscount sets the order-level discount percentage, clamped.
func (c *Cart) ApplyOrderDiscount(percent decimal.Decimal) {
	c.OrderDiscountPercent = ClampPercent(percent)
}

// SetFees replaces the fee list wholesale.
func (c *Cart) SetFees(fees []Fee) {
	c.Fees = append([]Fee(nil), fees...)
}

func (c *Cart) SetCustomer(customer *CartCustomer) {
	c.Customer = customer
}

func (c *Cart) SetNotes(notes string) {
	c.Notes = notes
}

func (c *Cart) SetShipping(s *Shipping) {
	c.Shipping = s
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Totals computes the cart's totals with calc.
func (c *Cart) Totals(calc Calculator, taxRate decimal.Decimal) Totals {
	return calc.Compute(c.Lines, taxRate, c.Fees, c.OrderDiscountPercent)
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() Cart {
	out := Cart{
		Lines:                append([]CartLine(nil), c.Lines...),
		OrderDiscountPercent: c.OrderDiscountPercent,
		Fees:                 append([]Fee(nil), c.Fees...),
		Notes:                c.Notes,
	}
	if c.Customer != nil {
		customer := *c.Customer
		out.Customer = &customer
	}
	if c.Shipping != nil {
		shipping := *c.Shipping
		out.Shipping = &shipping
	}
	return out
}

func (c *Cart) index(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}
