package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

const (
	productsKey     = "pos:catalog:products"
	categoriesKey   = "pos:catalog:categories"
	settingsKey     = "pos:settings"
	defaultCacheTTL = 5 * time.Minute
)

var _ CatalogCache = (*RedisCatalogCache)(nil)

// RedisCatalogCache implements CatalogCache using Redis.
type RedisCatalogCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisCatalogCache creates a Redis-backed catalog cache.
func NewRedisCatalogCache(cfg config.RedisConfig) *RedisCatalogCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCatalogCacheWithClient(client, cfg.TTL)
}

// NewRedisCatalogCacheWithClient wraps an existing client.
func NewRedisCatalogCacheWithClient(client redis.UniversalClient, ttl time.Duration) *RedisCatalogCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCatalogCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("catalog-cache"),
	}
}

// Ping checks the Redis connection.
func (c *RedisCatalogCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}

// getJSON decodes the value at key into dst. It reports false on a miss.
func (c *RedisCatalogCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", logging.Fields{"key": key})
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	c.logger.Debug("Cache hit", logging.Fields{"key": key})
	return true, nil
}

func (c *RedisCatalogCache) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (c *RedisCatalogCache) GetProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	if ok, err := c.getJSON(ctx, productsKey, &products); !ok || err != nil {
		return nil, err
	}
	return products, nil
}

func (c *RedisCatalogCache) SetProducts(ctx context.Context, products []*models.Product) error {
	return c.setJSON(ctx, productsKey, products)
}

func (c *RedisCatalogCache) InvalidateProducts(ctx context.Context) error {
	return c.client.Del(ctx, productsKey).Err()
}

func (c *RedisCatalogCache) GetCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if ok, err := c.getJSON(ctx, categoriesKey, &categories); !ok || err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *RedisCatalogCache) SetCategories(ctx context.Context, categories []*models.Category) error {
	return c.setJSON(ctx, categoriesKey, categories)
}

func (c *RedisCatalogCache) InvalidateCategories(ctx context.Context) error {
	return c.client.Del(ctx, categoriesKey).Err()
}

func (c *RedisCatalogCache) GetSettings(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	if ok, err := c.getJSON(ctx, settingsKey, &s); !ok || err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RedisCatalogCache) SetSettings(ctx context.Context, s *models.Settings) error {
	return c.setJSON(ctx, settingsKey, s)
}

func (c *RedisCatalogCache) InvalidateSettings(ctx context.Context) error {
	return c.client.Del(ctx, settingsKey).Err()
}

// NoopCatalogCache is used when catalog caching is disabled.
type NoopCatalogCache struct{}

func (NoopCatalogCache) GetProducts(context.Context) ([]*models.Product, error) { return nil, nil }
func (NoopCatalogCache) SetProducts(context.Context, []*models.Product) error { return nil }
func (NoopCatalogCache) InvalidateProducts(context.Context) error { return nil }
func (NoopCatalogCache) GetCategories(context.Context) ([]*models.Category, error) { return nil, nil }
func (NoopCatalogCache) SetCategories(context.Context, []*models.Category) error { return nil }
func (NoopCatalogCache) InvalidateCategories(context.Context) error { return nil }
func (NoopCatalogCache) GetSettings(context.Context) (*models.Settings, error) { return nil, nil }
func (NoopCatalogCache) SetSettings(context.Context, *models.Settings) error { return nil }
func (NoopCatalogCache) InvalidateSettings(context.Context) error { return nil }
