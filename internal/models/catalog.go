package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GuestCustomerID identifies the walk-in customer used when none is selected.
const GuestCustomerID = "00000000-0000-0000-0000-000000000001"

const GuestCustomerName = "Guest"

type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	SKU       string          `json:"sku,omitempty"`
	Category  string          `json:"category,omitempty"`
	Image     string          `json:"image,omitempty"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProductUpdate struct {
	Name     *string          `json:"name,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	SKU      *string          `json:"sku,omitempty"`
	Category *string          `json:"category,omitempty"`
	Image    *string          `json:"image,omitempty"`
	Stock    *int             `json:"stock,omitempty"`
}

func (u *ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.SKU != nil {
		p.SKU = *u.SKU
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
}

// ProductFilter is applied in memory after loading the catalog.
type ProductFilter struct {
	Category string `form:"category"`
	Search   string `form:"search"`
}

func (f *ProductFilter) Matches(p *Product) bool {
	if f.Category != "" && f.Category != "All" && p.Category != f.Category {
		return false
	}
	if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.SKU, f.Search) {
		return false
	}
	return true
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomerUpdate struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (u *CustomerUpdate) Apply(c *Customer) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Address != nil {
		c.Address = *u.Address
	}
}

type DeliveryProvider struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type DeliveryProviderUpdate struct {
	Name         *string `json:"name,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (u *DeliveryProviderUpdate) Apply(d *DeliveryProvider) {
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.ContactPhone != nil {
		d.ContactPhone = *u.ContactPhone
	}
	if u.ContactEmail != nil {
		d.ContactEmail = *u.ContactEmail
	}
	if u.IsActive != nil {
		d.IsActive = *u.IsActive
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
