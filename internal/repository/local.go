package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"

	_ "modernc.org/sqlite"
)

// Keys of the local key/value table. Each value is a JSON document.
const (
	keyProducts          = "pos_products"
	keyCustomers         = "pos_customers"
	keyOrders            = "pos_orders"
	keyOrderItems        = "pos_order_items"
	keyCategories        = "pos_categories"
	keyDeliveryProviders = "pos_delivery_providers"
	keySettings          = "pos_settings"
	keyZReports          = "pos_z_reports"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// LocalStore is the single-terminal backend. Every entity collection is
// one JSON array under a fixed key in an embedded SQLite file, so a
// register can run without a database server.
type LocalStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logging.LoggerV2
}

// OpenLocal opens (or creates) the SQLite file at path and seeds the
// default catalog on first use.
func OpenLocal(ctx context.Context, path string) (*LocalStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("local store: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, localSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local store: apply schema: %w", err)
	}

	s := &LocalStore{db: db, logger: logging.NewLoggerV2("local-store")}
	if err := s.seed(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) seed(ctx context.Context) error {
	seeds := []struct {
		key   string
		value interface{}
	}{
		{keyProducts, defaultProducts()},
		{keyCustomers, defaultCustomers()},
		{keyOrders, []models.Order{}},
		{keyOrderItems, []models.OrderItem{}},
		{keyCategories, defaultCategories()},
		{keyDeliveryProviders, []models.DeliveryProvider{}},
		{keyZReports, []models.ZReport{}},
	}

	for _, seed := range seeds {
		var exists int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM kv WHERE key = ?`, seed.key).Scan(&exists)
		if err != nil {
			return fmt.Errorf("local store: seed %s: %w", seed.key, err)
		}
		if exists > 0 {
			continue
		}
		if err := s.put(ctx, seed.key, seed.value); err != nil {
			return err
		}
		s.logger.Debug("Seeded local storage key", logging.Fields{"key": seed.key})
	}
	return nil
}

func (s *LocalStore) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		s.logger.Error("Failed to read local storage", logging.Fields{"key": key, "error": err.Error()})
		return false, fmt.Errorf("local store: read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("local store: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *LocalStore) put(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("local store: encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Error("Failed to write local storage", logging.Fields{"key": key, "error": err.Error()})
		return fmt.Errorf("local store: write %s: %w", key, err)
	}
	return nil
}

func loadList[T any](ctx context.Context, s *LocalStore, key string) ([]T, error) {
	var list []T
	if _, err := s.get(ctx, key, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func pointers[T any](list []T) []*T {
	return lo.Map(list, func(_ T, i int) *T { return &list[i] })
}

// updateList loads a collection, lets fn change it, and writes it back
// under the store lock.
func updateList[T any](ctx context.Context, s *LocalStore, key string, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := loadList[T](ctx, s, key)
	if err != nil {
		return err
	}
	list, err = fn(list)
	if err != nil {
		return err
	}
	return s.put(ctx, key, list)
}

// Products

func (s *LocalStore) GetProducts(ctx context.Context) ([]*models.Product, error) {
	list, err := loadList[models.Product](ctx, s, keyProducts)
	if err != nil {
		return nil, err
	}
	return pointers(list), nil
}

func (s *LocalStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	list, err := loadList[models.Product](ctx, s, keyProducts)
	if err != nil {
		return nil, err
	}
	p, ok := lo.Find(list, func(p models.Product) bool { return p.ID == id })
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &p, nil
}

func (s *LocalStore) AddProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	created := *p
	now := time.Now().UTC()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt, created.UpdatedAt = now, now

	err := updateList(ctx, s, keyProducts, func(list []models.Product) ([]models.Product, error) {
		if lo.ContainsBy(list, func(existing models.Product) bool { return existing.ID == created.ID }) {
			return nil, errors.NewValidationError("id", "product already exists")
		}
		return append(list, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *LocalStore) UpdateProduct(ctx context.Context, id string, u *models.ProductUpdate) (*models.Product, error) {
	var updated models.Product
	err := updateList(ctx, s, keyProducts, func(list []models.Product) ([]models.Product, error) {
		_, i, ok := lo.FindIndexOf(list, func(p models.Product) bool { return p.ID == id })
		if !ok {
			return nil, errors.ErrNotFound
		}
		u.Apply(&list[i])
		list[i].UpdatedAt = time.Now().UTC()
		updated = list[i]
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *LocalStore) DeleteProduct(ctx context.Context, id string) error {
	return s.DeleteProducts(ctx, []string{id})
}

func (s *LocalStore) DeleteProducts(ctx context.Context, ids []string) error {
	return updateList(ctx, s, keyProducts, func(list []models.Product) ([]models.Product, error) {
		kept := lo.Reject(list, func(p models.Product, _ int) bool { return lo.Contains(ids, p.ID) })
		if len(kept) == len(list) {
			return nil, errors.ErrNotFound
		}
		return kept, nil
	})
}

// Customers

func (s *LocalStore) GetCustomers(ctx context.Context) ([]*models.Customer, error) {
	list, err := loadList[models.Customer](ctx, s, keyCustomers)
	if err != nil {
		return nil, err
	}
	return pointers(list), nil
}

func (s *LocalStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	list, err := loadList[models.Customer](ctx, s, keyCustomers)
	if err != nil {
		return nil, err
	}
	c, ok := lo.Find(list, func(c models.Customer) bool { return c.ID == id })
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &c, nil
}

func (s *LocalStore) AddCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	created := *c
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = time.Now().UTC()

	err := updateList(ctx, s, keyCustomers, func(list []models.Customer) ([]models.Customer, error) {
		return append(list, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *LocalStore) UpdateCustomer(ctx context.Context, id string, u *models.CustomerUpdate) (*models.Customer, error) {
	var updated models.Customer
	err := updateList(ctx, s, keyCustomers, func(list []models.Customer) ([]models.Customer, error) {
		_, i, ok := lo.FindIndexOf(list, func(c models.Customer) bool { return c.ID == id })
		if !ok {
			return nil, errors.ErrNotFound
		}
		u.Apply(&list[i])
		updated = list[i]
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *LocalStore) DeleteCustomer(ctx context.Context, id string) error {
	return updateList(ctx, s, keyCustomers, func(list []models.Customer) ([]models.Customer, error) {
		kept := lo.Reject(list, func(c models.Customer, _ int) bool { return c.ID == id })
		if len(kept) == len(list) {
			return nil, errors.ErrNotFound
		}
		return kept, nil
	})
}

// Categories

func (s *LocalStore) GetCategories(ctx context.Context) ([]*models.Category, error) {
	list, err := loadList[models.Category](ctx, s, keyCategories)
	if err != nil {
		return nil, err
	}
	return pointers(list), nil
}

func (s *LocalStore) AddCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	created := *c
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = time.Now().UTC()

	err := updateList(ctx, s, keyCategories, func(list []models.Category) ([]models.Category, error) {
		return append(list, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *LocalStore) DeleteCategory(ctx context.Context, id string) error {
	return updateList(ctx, s, keyCategories, func(list []models.Category) ([]models.Category, error) {
		kept := lo.Reject(list, func(c models.Category, _ int) bool { return c.ID == id })
		if len(kept) == len(list) {
			return nil, errors.ErrNotFound
		}
		return kept, nil
	})
}

// Delivery providers

func (s *LocalStore) GetDeliveryProviders(ctx context.Context) ([]*models.DeliveryProvider, error) {
	list, err := loadList[models.DeliveryProvider](ctx, s, keyDeliveryProviders)
	if err != nil {
		return nil, err
	}
	return pointers(list), nil
}

func (s *LocalStore) GetDeliveryProvider(ctx context.Context, id string) (*models.DeliveryProvider, error) {
	list, err := loadList[models.DeliveryProvider](ctx, s, keyDeliveryProviders)
	if err != nil {
		return nil, err
	}
	d, ok := lo.Find(list, func(d models.DeliveryProvider) bool { return d.ID == id })
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &d, nil
}

func (s *LocalStore) AddDeliveryProvider(ctx context.Context, d *models.DeliveryProvider) (*models.DeliveryProvider, error) {
	created := *d
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt = time.Now().UTC()

	err := updateList(ctx, s, keyDeliveryProviders, func(list []models.DeliveryProvider) ([]models.DeliveryProvider, error) {
		return append(list, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *LocalStore) UpdateDeliveryProvider(ctx context.Context, id string, u *models.DeliveryProviderUpdate) (*models.DeliveryProvider, error) {
	var updated models.DeliveryProvider
	err := updateList(ctx, s, keyDeliveryProviders, func(list []models.DeliveryProvider) ([]models.DeliveryProvider, error) {
		_, i, ok := lo.FindIndexOf(list, func(d models.DeliveryProvider) bool { return d.ID == id })
		if !ok {
			return nil, errors.ErrNotFound
		}
		u.Apply(&list[i])
		updated = list[i]
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *LocalStore) DeleteDeliveryProvider(ctx context.Context, id string) error {
	return updateList(ctx, s, keyDeliveryProviders, func(list []models.DeliveryProvider) ([]models.DeliveryProvider, error) {
		kept := lo.Reject(list, func(d models.DeliveryProvider, _ int) bool { return d.ID == id })
		if len(kept) == len(list) {
			return nil, errors.ErrNotFound
		}
		return kept, nil
	})
}

// Orders

func (s *LocalStore) GetOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, error) {
	list, err := loadList[models.Order](ctx, s, keyOrders)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &models.OrderListFilter{}
	}

	matched := lo.Filter(list, func(o models.Order, _ int) bool { return filter.Matches(&o) })
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 || filter.Limit > 0 {
		length := uint(len(matched))
		if filter.Limit > 0 {
			length = uint(filter.Limit)
		}
		matched = lo.Subset(matched, filter.Offset, length)
	}
	return pointers(matched), nil
}

func (s *LocalStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	list, err := loadList[models.Order](ctx, s, keyOrders)
	if err != nil {
		return nil, err
	}
	o, ok := lo.Find(list, func(o models.Order) bool { return o.ID == id })
	if !ok {
		return nil, errors.ErrNotFound
	}
	items, err := s.GetOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *LocalStore) InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	created := *o
	created.Items = nil
	now := time.Now().UTC()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	err := updateList(ctx, s, keyOrders, func(list []models.Order) ([]models.Order, error) {
		return append(list, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *LocalStore) InsertOrderItems(ctx context.Context, orderID string, items []models.OrderItem) ([]models.OrderItem, error) {
	now := time.Now().UTC()
	created := lo.Map(items, func(item models.OrderItem, _ int) models.OrderItem {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.OrderID = orderID
		item.CreatedAt = now
		return item
	})

	err := updateList(ctx, s, keyOrderItems, func(list []models.OrderItem) ([]models.OrderItem, error) {
		return append(list, created...), nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *LocalStore) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	list, err := loadList[models.OrderItem](ctx, s, keyOrderItems)
	if err != nil {
		return nil, err
	}
	return lo.Filter(list, func(item models.OrderItem, _ int) bool { return item.OrderID == orderID }), nil
}

func (s *LocalStore) UpdateOrder(ctx context.Context, id string, u *models.OrderUpdate) (*models.Order, error) {
	var updated models.Order
	err := updateList(ctx, s, keyOrders, func(list []models.Order) ([]models.Order, error) {
		_, i, ok := lo.FindIndexOf(list, func(o models.Order) bool { return o.ID == id })
		if !ok {
			return nil, errors.ErrNotFound
		}
		u.Apply(&list[i])
		list[i].UpdatedAt = time.Now().UTC()
		updated = list[i]
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOrder removes the order and its lines.
func (s *LocalStore) DeleteOrder(ctx context.Context, id string) error {
	err := updateList(ctx, s, keyOrders, func(list []models.Order) ([]models.Order, error) {
		kept := lo.Reject(list, func(o models.Order, _ int) bool { return o.ID == id })
		if len(kept) == len(list) {
			return nil, errors.ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		return err
	}
	return updateList(ctx, s, keyOrderItems, func(list []models.OrderItem) ([]models.OrderItem, error) {
		return lo.Reject(list, func(item models.OrderItem, _ int) bool { return item.OrderID == id }), nil
	})
}

// Settings

// GetSettings decodes the stored record over the defaults, so fields
// added after the record was saved read as their default.
func (s *LocalStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings := models.DefaultSettings()
	found, err := s.get(ctx, keySettings, &settings)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.ErrNotFound
	}
	return &settings, nil
}

func (s *LocalStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, keySettings, settings)
}

// Z-reports

func (s *LocalStore) GetZReports(ctx context.Context, registerID string) ([]*models.ZReport, error) {
	list, err := loadList[models.ZReport](ctx, s, keyZReports)
	if err != nil {
		return nil, err
	}
	if registerID != "" {
		list = lo.Filter(list, func(z models.ZReport, _ int) bool { return z.RegisterID == registerID })
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return pointers(list), nil
}

func (s *LocalStore) AddZReport(ctx context.Context, z *models.ZReport) (*models.ZReport, error) {
	created := *z
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	err := updateList(ctx, s, keyZReports, func(list []models.ZReport) ([]models.ZReport, error) {
		return append(list, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

var seedTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func defaultProducts() []models.Product {
	product := func(sku, name, price, image, category string, stock int) models.Product {
		return models.Product{
			ID: sku, SKU: sku, Name: name, Price: decimal.RequireFromString(price),
			Image: image, Category: category, Stock: stock,
			CreatedAt: seedTime, UpdatedAt: seedTime,
		}
	}
	return []models.Product{
		product("SLS2-001", "Surface Laptop Studio 2", "2499.99", "💻", "Surface", 10),
		product("SP9-001", "Surface Pro 9", "1299.00", "💻", "Surface", 15),
		product("SG3-001", "Surface Go 3", "549.00", "💻", "Surface", 20),
		product("SH2-001", "Surface Headphones 2", "249.00", "🎧", "Accessories", 30),
	}
}

func defaultCustomers() []models.Customer {
	return []models.Customer{
		{ID: models.GuestCustomerID, Name: models.GuestCustomerName, CreatedAt: seedTime},
		{
			ID:        "00000000-0000-0000-0000-000000000002",
			Name:      "John Smith",
			Email:     "john@example.com",
			Phone:     "123-456-7890",
			Address:   "123 Main St, Baghdad",
			CreatedAt: seedTime,
		},
	}
}

func defaultCategories() []models.Category {
	return []models.Category{
		{ID: "00000000-0000-0000-0000-000000000001", Name: "Surface", CreatedAt: seedTime},
		{ID: "00000000-0000-0000-0000-000000000002", Name: "Accessories", CreatedAt: seedTime},
	}
}
