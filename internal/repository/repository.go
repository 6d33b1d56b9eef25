package repository

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// Ensure both backends implement Store.
var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*LocalStore)(nil)
)

type ProductStore interface {
	GetProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	AddProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	DeleteProducts(ctx context.Context, ids []string) error
}

type CustomerStore interface {
	GetCustomers(ctx context.Context) ([]*models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	AddCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, u *models.CustomerUpdate) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type CategoryStore interface {
	GetCategories(ctx context.Context) ([]*models.Category, error)
	AddCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type DeliveryProviderStore interface {
	GetDeliveryProviders(ctx context.Context) ([]*models.DeliveryProvider, error)
	GetDeliveryProvider(ctx context.Context, id string) (*models.DeliveryProvider, error)
	AddDeliveryProvider(ctx context.Context, d *models.DeliveryProvider) (*models.DeliveryProvider, error)
	UpdateDeliveryProvider(ctx context.Context, id string, u *models.DeliveryProviderUpdate) (*models.DeliveryProvider, error)
	DeleteDeliveryProvider(ctx context.Context, id string) error
}

// OrderStore persists orders and their lines. Orders and items are written
// separately; the caller owns rollback when the item insert fails.
type OrderStore interface {
	GetOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error)
	InsertOrderItems(ctx context.Context, orderID string, items []models.OrderItem) ([]models.OrderItem, error)
	GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	UpdateOrder(ctx context.Context, id string, u *models.OrderUpdate) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type SettingsStore interface {
	// GetSettings returns ErrNotFound when nothing has been saved yet.
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error
}

type ZReportStore interface {
	GetZReports(ctx context.Context, registerID string) ([]*models.ZReport, error)
	AddZReport(ctx context.Context, z *models.ZReport) (*models.ZReport, error)
}

// Store is the data-access capability set every backend provides.
type Store interface {
	ProductStore
	CustomerStore
	CategoryStore
	DeliveryProviderStore
	OrderStore
	SettingsStore
	ZReportStore
	Ping(ctx context.Context) error
	Close() error
}

// CatalogCache caches the read-mostly catalog lists and settings.
// Get methods return (nil, nil) on a miss.
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]*models.Product, error)
	SetProducts(ctx context.Context, products []*models.Product) error
	InvalidateProducts(ctx context.Context) error
	GetCategories(ctx context.Context) ([]*models.Category, error)
	SetCategories(ctx context.Context, categories []*models.Category) error
	InvalidateCategories(ctx context.Context) error
	GetSettings(ctx context.Context) (*models.Settings, error)
	SetSettings(ctx context.Context, s *models.Settings) error
	InvalidateSettings(ctx context.Context) error
}
