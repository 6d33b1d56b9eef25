package models

import (
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
)

type ShippingSettings struct {
	Enabled     bool            `json:"enabled"`
	DefaultCost decimal.Decimal `json:"default_cost"`
}

type PaymentMethod struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsPaid bool   `json:"is_paid"`
}

// OpenSooqSettings holds the listing-site login used to publish products.
type OpenSooqSettings struct {
	Enabled          bool   `json:"enabled"`
	PhoneNumber      string `json:"phone_number"`
	Password         string `json:"password"`
	RepostTimerHours int    `json:"repost_timer_hours"`
}

// Settings is the single store-wide configuration record.
type Settings struct {
	StoreName             string           `json:"store_name"`
	CurrencySymbol        string           `json:"currency_symbol"`
	DecimalPlaces         int32            `json:"decimal_places"`
	TaxRate               decimal.Decimal  `json:"tax_rate"`
	TaxMode               pricing.TaxMode  `json:"tax_mode"`
	ReportItemDiscounts   bool             `json:"report_item_discounts"`
	ReceiptPrinterEnabled bool             `json:"receipt_printer_enabled"`
	Shipping              ShippingSettings `json:"shipping"`
	PaymentMethods        []PaymentMethod  `json:"payment_methods"`
	OpenSooq              OpenSooqSettings `json:"open_sooq"`
}

// DefaultSettings are applied when the store has no settings row yet.
func DefaultSettings() Settings {
	return Settings{
		StoreName:             "My Store",
		CurrencySymbol:        "$",
		DecimalPlaces:         2,
		TaxRate:               decimal.RequireFromString("0.05"),
		TaxMode:               pricing.TaxModeSubtotalOnly,
		ReportItemDiscounts:   false,
		ReceiptPrinterEnabled: true,
		Shipping: ShippingSettings{
			Enabled:     false,
			DefaultCost: decimal.NewFromInt(5),
		},
		PaymentMethods: []PaymentMethod{
			{ID: "cash", Name: "Cash", IsPaid: true},
			{ID: "card", Name: "Card", IsPaid: true},
			{ID: "cod", Name: "Cash on Delivery", IsPaid: false},
		},
		OpenSooq: OpenSooqSettings{
			RepostTimerHours: 24,
		},
	}
}

// Calculator returns the totals calculator configured by these settings.
func (s *Settings) Calculator() pricing.Calculator {
	return pricing.Calculator{
		Mode:                s.TaxMode,
		ReportItemDiscounts: s.ReportItemDiscounts,
	}
}

// PaymentMethod looks up a configured payment method by id.
func (s *Settings) PaymentMethod(id string) (PaymentMethod, bool) {
	for _, m := range s.PaymentMethods {
		if m.ID == id {
			return m, true
		}
	}
	return PaymentMethod{}, false
}

type ShippingSettingsUpdate struct {
	Enabled     *bool            `json:"enabled,omitempty"`
	DefaultCost *decimal.Decimal `json:"default_cost,omitempty"`
}

type OpenSooqSettingsUpdate struct {
	Enabled          *bool   `json:"enabled,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	Password         *string `json:"password,omitempty"`
	RepostTimerHours *int    `json:"repost_timer_hours,omitempty"`
}

// SettingsUpdate is merged into the stored settings. Nested sections are
// merged field by field so a partial shipping update keeps the rest.
type SettingsUpdate struct {
	StoreName             *string                 `json:"store_name,omitempty"`
	CurrencySymbol        *string                 `json:"currency_symbol,omitempty"`
	DecimalPlaces         *int32                  `json:"decimal_places,omitempty"`
	TaxRate               *decimal.Decimal        `json:"tax_rate,omitempty"`
	TaxMode               *pricing.TaxMode        `json:"tax_mode,omitempty"`
	ReportItemDiscounts   *bool                   `json:"report_item_discounts,omitempty"`
	ReceiptPrinterEnabled *bool                   `json:"receipt_printer_enabled,omitempty"`
	Shipping              *ShippingSettingsUpdate `json:"shipping,omitempty"`
	PaymentMethods        []PaymentMethod         `json:"payment_methods,omitempty"`
	OpenSooq              *OpenSooqSettingsUpdate `json:"open_sooq,omitempty"`
}

func (u *SettingsUpdate) Apply(s *Settings) {
	if u.StoreName != nil {
		s.StoreName = *u.StoreName
	}
	if u.CurrencySymbol != nil {
		s.CurrencySymbol = *u.CurrencySymbol
	}
	if u.DecimalPlaces != nil {
		s.DecimalPlaces = *u.DecimalPlaces
	}
	if u.TaxRate != nil {
		s.TaxRate = *u.TaxRate
	}
	if u.TaxMode != nil {
		s.TaxMode = *u.TaxMode
	}
	if u.ReportItemDiscounts != nil {
		s.ReportItemDiscounts = *u.ReportItemDiscounts
	}
	if u.ReceiptPrinterEnabled != nil {
		s.ReceiptPrinterEnabled = *u.ReceiptPrinterEnabled
	}
	if u.Shipping != nil {
		if u.Shipping.Enabled != nil {
			s.Shipping.Enabled = *u.Shipping.Enabled
		}
		if u.Shipping.DefaultCost != nil {
			s.Shipping.DefaultCost = *u.Shipping.DefaultCost
		}
	}
	if u.PaymentMethods != nil {
		s.PaymentMethods = u.PaymentMethods
	}
	if u.OpenSooq != nil {
		if u.OpenSooq.Enabled != nil {
			s.OpenSooq.Enabled = *u.OpenSooq.Enabled
		}
		if u.OpenSooq.PhoneNumber != nil {
			s.OpenSooq.PhoneNumber = *u.OpenSooq.PhoneNumber
		}
		if u.OpenSooq.Password != nil {
			s.OpenSooq.Password = *u.OpenSooq.Password
		}
		if u.OpenSooq.RepostTimerHours != nil {
			s.OpenSooq.RepostTimerHours = *u.OpenSooq.RepostTimerHours
		}
	}
}

// RedactedPassword replaces the listing password in API responses.
const RedactedPassword = "********"

// Redacted returns a copy safe to return over the API.
func (s Settings) Redacted() Settings {
	if s.OpenSooq.Password != "" {
		s.OpenSooq.Password = RedactedPassword
	}
	return s
}
