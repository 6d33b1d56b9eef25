package service

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// EventPublisher publishes order lifecycle events. Publishing is best
// effort: failures are logged and never fail the request.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderVoided(ctx context.Context, order *models.Order) error
	PublishOrderRefunded(ctx context.Context, order *models.Order, amount decimal.Decimal, reason string) error
	PublishZReport(ctx context.Context, report *models.ZReport) error
}

// ReceiptPrinter prints customer-facing documents for an order.
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, order *models.Order, settings *models.Settings) error
	PrintInvoice(ctx context.Context, order *models.Order, settings *models.Settings) error
}

// MetricsRecorder is implemented by *metrics.Metrics; a nil *metrics.Metrics
// records nothing.
type MetricsRecorder interface {
	OrderRecorded(status string, amount float64)
	OrderStatusChanged(status string)
	RefundRecorded(amount float64)
	CartOperation(op string)
	ZReportRecorded()
	CacheLookup(key string, hit bool)
	ListingPublished(ok bool)
}

// ImageStore persists uploaded product images and returns their URL.
type ImageStore interface {
	SaveProductImage(productID string, r io.Reader) (string, error)
}

// CatalogStore is the slice of the data layer the catalog needs.
type CatalogStore interface {
	repository.ProductStore
	repository.CategoryStore
	repository.CustomerStore
	repository.DeliveryProviderStore
}
