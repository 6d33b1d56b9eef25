// Package listing publishes catalog products to the OpenSooq classifieds
// site, either by driving a headless browser or by a logged simulation.
package listing

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
)

// Publish steps, in execution order.
const (
	StepNavigate     = "navigate"
	StepLogin        = "login"
	StepUploadImages = "upload_images"
	StepSubmit       = "submit_listing"
	StepAutoRepost   = "auto_repost"
)

// Credentials is the site login stored in settings.
type Credentials struct {
	PhoneNumber string
	Password    string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.PhoneNumber) == "" || c.Password == "" {
		return errors.NewValidationError("open_sooq", "OpenSooq login details (phone number or password) are missing in settings")
	}
	return nil
}

// MaskedPassword is safe to log.
func (c Credentials) MaskedPassword() string {
	return strings.Repeat("*", len(c.Password))
}

// Listing is the product data sent to the site.
type Listing struct {
	ProductID        string
	Title            string
	Price            decimal.Decimal
	Category         string
	Description      string
	ImagePath        string
	RepostTimerHours int
}

// Result describes a finished publish.
type Result struct {
	ProductID   string     `json:"product_id"`
	Steps       []string   `json:"steps"`
	Simulated   bool       `json:"simulated"`
	Message     string     `json:"message"`
	PublishedAt time.Time  `json:"published_at"`
	RepostAt    *time.Time `json:"repost_at,omitempty"`
}

// Publisher posts a listing to the site.
type Publisher interface {
	Publish(ctx context.Context, creds Credentials, l Listing) (*Result, error)
}

func newResult(l Listing, steps []string, simulated bool, now time.Time) *Result {
	r := &Result{
		ProductID:   l.ProductID,
		Steps:       steps,
		Simulated:   simulated,
		Message:     "Product '" + l.Title + "' published",
		PublishedAt: now,
	}
	if simulated {
		r.Message += " (simulated)"
	}
	if l.RepostTimerHours > 0 {
		at := now.Add(time.Duration(l.RepostTimerHours) * time.Hour)
		r.RepostAt = &at
	}
	return r
}
