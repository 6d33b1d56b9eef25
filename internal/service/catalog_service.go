package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/media"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// CatalogService manages products, categories, customers and delivery
// providers.
type CatalogService struct {
	store   CatalogStore
	cache   repository.CatalogCache
	images  ImageStore
	config  *config.Config
	metrics MetricsRecorder
	logger  *logging.LoggerV2
}

func NewCatalogService(
	store CatalogStore,
	cache repository.CatalogCache,
	images ImageStore,
	metrics MetricsRecorder,
	cfg *config.Config,
) *CatalogService {
	return &CatalogService{
		store:   store,
		cache:   cache,
		images:  images,
		config:  cfg,
		metrics: metrics,
		logger:  logging.NewLoggerV2("catalog-service"),
	}
}

// Products

func (s *CatalogService) allProducts(ctx context.Context) ([]*models.Product, error) {
	if s.config.Features.EnableCatalogCaching {
		if products, err := s.cache.GetProducts(ctx); err == nil && products != nil {
			s.metrics.CacheLookup("products", true)
			return products, nil
		}
		s.metrics.CacheLookup("products", false)
	}

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		s.logger.Error("Failed to load products", logging.Fields{"error": err.Error()})
		return nil, err
	}

	if s.config.Features.EnableCatalogCaching {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			s.logger.Warn("Failed to cache products", logging.Fields{"error": err.Error()})
		}
	}
	return products, nil
}

// ListProducts returns the catalog narrowed by filter. A nil filter
// returns everything.
func (s *CatalogService) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return products, nil
	}
	return lo.Filter(products, func(p *models.Product, _ int) bool { return filter.Matches(p) }), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// GetProductBySKU resolves a scanned code. The SKU is matched exactly,
// ignoring surrounding whitespace.
func (s *CatalogService) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, errors.NewValidationError("sku", "sku is required")
	}

	products, err := s.allProducts(ctx)
	if err != nil {
		return nil, err
	}

	product, ok := lo.Find(products, func(p *models.Product) bool { return p.SKU == sku })
	if !ok {
		// Products without a SKU carry their id in the printed QR code.
		product, ok = lo.Find(products, func(p *models.Product) bool { return p.SKU == "" && p.ID == sku })
	}
	if !ok {
		return nil, errors.ErrNotFound
	}
	return product, nil
}

// ProductQRCode renders the code a register scans to ring up the product:
// its SKU, or its id when it has none.
func (s *CatalogService) ProductQRCode(ctx context.Context, id string, size int) ([]byte, error) {
	if size == 0 {
		size = media.DefaultQRSize
	}
	if size < media.MinQRSize || size > media.MaxQRSize {
		return nil, errors.NewValidationError("size", fmt.Sprintf("size must be between %d and %d", media.MinQRSize, media.MaxQRSize))
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return media.QRCodePNG(lo.Ternary(product.SKU != "", product.SKU, product.ID), size)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := ValidateProduct(p); err != nil {
		return nil, err
	}

	created, err := s.store.AddProduct(ctx, p)
	if err != nil {
		s.logger.Error("Failed to create product", logging.Fields{"name": p.Name, "error": err.Error()})
		return nil, err
	}

	s.invalidateProducts(ctx)
	s.logger.Info("Product created", logging.Fields{"product_id": created.ID})
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error) {
	if err := ValidateProductUpdate(u); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateProduct(ctx, id, u)
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx)
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateProducts(ctx)
	return nil
}

func (s *CatalogService) DeleteProducts(ctx context.Context, ids []string) error {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return errors.NewValidationError("ids", "at least one product id is required")
	}
	if err := s.store.DeleteProducts(ctx, ids); err != nil {
		return err
	}
	s.invalidateProducts(ctx)
	s.logger.Info("Products deleted", logging.Fields{"count": len(ids)})
	return nil
}

// UploadProductImage stores an optimized copy of the image and points the
// product at it.
func (s *CatalogService) UploadProductImage(ctx context.Context, id string, r io.Reader) (*models.Product, error) {
	if _, err := s.store.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.images.SaveProductImage(id, r)
	if err != nil {
		return nil, errors.NewValidationError("image", err.Error())
	}

	return s.UpdateProduct(ctx, id, &models.ProductUpdate{Image: &url})
}

func (s *CatalogService) invalidateProducts(ctx context.Context) {
	if !s.config.Features.EnableCatalogCaching {
		return
	}
	// Categories fall back to product-derived names, so both go.
	if err := s.cache.InvalidateProducts(ctx); err != nil {
		s.logger.Warn("Failed to invalidate products cache", logging.Fields{"error": err.Error()})
	}
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		s.logger.Warn("Failed to invalidate categories cache", logging.Fields{"error": err.Error()})
	}
}

// Categories

// ListCategories returns the stored categories. When none are stored the
// distinct product categories are returned instead.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	if s.config.Features.EnableCatalogCaching {
		if categories, err := s.cache.GetCategories(ctx); err == nil && categories != nil {
			s.metrics.CacheLookup("categories", true)
			return categories, nil
		}
		s.metrics.CacheLookup("categories", false)
	}

	categories, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		products, err := s.allProducts(ctx)
		if err != nil {
			return nil, err
		}
		names := lo.Uniq(lo.Compact(lo.Map(products, func(p *models.Product, _ int) string { return p.Category })))
		categories = lo.Map(names, func(name string, _ int) *models.Category {
			return &models.Category{ID: name, Name: name}
		})
	}

	if s.config.Features.EnableCatalogCaching {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.logger.Warn("Failed to cache categories", logging.Fields{"error": err.Error()})
		}
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, errors.NewValidationError("name", "category name is required")
	}

	existing, err := s.store.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	if lo.ContainsBy(existing, func(e *models.Category) bool { return strings.EqualFold(e.Name, c.Name) }) {
		return nil, errors.NewValidationError("name", "category already exists")
	}

	created, err := s.store.AddCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	s.invalidateCategories(ctx)
	return created, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if !s.config.Features.EnableCatalogCaching {
		return
	}
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		s.logger.Warn("Failed to invalidate categories cache", logging.Fields{"error": err.Error()})
	}
}

// Customers

func (s *CatalogService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.store.GetCustomers(ctx)
}

func (s *CatalogService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

// ResolveCustomer returns the customer for id, or the walk-in guest when
// id is empty or the guest id. The guest need not exist in the store.
func (s *CatalogService) ResolveCustomer(ctx context.Context, id string) (*models.Customer, error) {
	if id == "" || id == models.GuestCustomerID {
		return &models.Customer{ID: models.GuestCustomerID, Name: models.GuestCustomerName}, nil
	}
	return s.store.GetCustomer(ctx, id)
}

func (s *CatalogService) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if err := ValidateCustomer(c); err != nil {
		return nil, err
	}
	return s.store.AddCustomer(ctx, c)
}

func (s *CatalogService) UpdateCustomer(ctx context.Context, id string, u *models.CustomerUpdate) (*models.Customer, error) {
	if err := ValidateCustomerUpdate(u); err != nil {
		return nil, err
	}
	return s.store.UpdateCustomer(ctx, id, u)
}

func (s *CatalogService) DeleteCustomer(ctx context.Context, id string) error {
	if id == models.GuestCustomerID {
		return errors.NewValidationError("id", "the guest customer cannot be deleted")
	}
	return s.store.DeleteCustomer(ctx, id)
}

// Delivery providers

func (s *CatalogService) ListDeliveryProviders(ctx context.Context, activeOnly bool) ([]*models.DeliveryProvider, error) {
	providers, err := s.store.GetDeliveryProviders(ctx)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		providers = lo.Filter(providers, func(d *models.DeliveryProvider, _ int) bool { return d.IsActive })
	}
	return providers, nil
}

func (s *CatalogService) GetDeliveryProvider(ctx context.Context, id string) (*models.DeliveryProvider, error) {
	return s.store.GetDeliveryProvider(ctx, id)
}

func (s *CatalogService) CreateDeliveryProvider(ctx context.Context, d *models.DeliveryProvider) (*models.DeliveryProvider, error) {
	if err := ValidateDeliveryProvider(d); err != nil {
		return nil, err
	}
	return s.store.AddDeliveryProvider(ctx, d)
}

func (s *CatalogService) UpdateDeliveryProvider(ctx context.Context, id string, u *models.DeliveryProviderUpdate) (*models.DeliveryProvider, error) {
	if err := ValidateDeliveryProviderUpdate(u); err != nil {
		return nil, err
	}
	return s.store.UpdateDeliveryProvider(ctx, id, u)
}

func (s *CatalogService) DeleteDeliveryProvider(ctx context.Context, id string) error {
	return s.store.DeleteDeliveryProvider(ctx, id)
}
