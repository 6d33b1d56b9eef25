package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/listing"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/media"
)

// ListingService publishes catalog products to OpenSooq.
type ListingService struct {
	catalog   *CatalogService
	settings  *SettingsService
	publisher listing.Publisher
	mediaDir  string
	metrics   MetricsRecorder
	logger    *logging.LoggerV2
}

// NewListingService creates a listing service. mediaDir is where uploaded
// product images live on disk.
func NewListingService(catalog *CatalogService, settings *SettingsService, publisher listing.Publisher, mediaDir string, metrics MetricsRecorder) *ListingService {
	return &ListingService{
		catalog:   catalog,
		settings:  settings,
		publisher: publisher,
		mediaDir:  mediaDir,
		metrics:   metrics,
		logger:    logging.NewLoggerV2("listing-service"),
	}
}

// PublishProduct lists a product with the credentials stored in settings.
func (s *ListingService) PublishProduct(ctx context.Context, productID string) (*listing.Result, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.OpenSooq.Enabled {
		return nil, errors.NewValidationError("open_sooq", "OpenSooq integration is disabled")
	}

	creds := listing.Credentials{
		PhoneNumber: settings.OpenSooq.PhoneNumber,
		Password:    settings.OpenSooq.Password,
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	l := listing.Listing{
		ProductID:        product.ID,
		Title:            product.Name,
		Price:            product.Price,
		Category:         product.Category,
		Description:      fmt.Sprintf("%s - %s%s", product.Name, settings.CurrencySymbol, product.Price.StringFixed(settings.DecimalPlaces)),
		ImagePath:        s.imagePath(product.Image),
		RepostTimerHours: settings.OpenSooq.RepostTimerHours,
	}

	s.logger.Info("Publishing product listing", logging.Fields{
		"product_id": product.ID,
		"phone":      creds.PhoneNumber,
		"password":   creds.MaskedPassword(),
	})

	result, err := s.publisher.Publish(ctx, creds, l)
	s.metrics.ListingPublished(err == nil)
	if err != nil {
		s.logger.Error("Failed to publish product listing", logging.Fields{
			"product_id": product.ID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to publish listing: %w", err)
	}
	return result, nil
}

// imagePath maps a served media URL back to its file. External image URLs
// cannot be uploaded and are skipped.
func (s *ListingService) imagePath(image string) string {
	if !strings.HasPrefix(image, media.URLPrefix+"/") {
		return ""
	}
	return filepath.Join(s.mediaDir, filepath.FromSlash(strings.TrimPrefix(image, media.URLPrefix+"/")))
}
