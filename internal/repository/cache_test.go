package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

func TestRedisCatalogCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("POS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Integration test - requires redis (set POS_TEST_REDIS_ADDR)")
	}

	ctx := context.Background()
	cache := NewRedisCatalogCacheWithClient(redis.NewClient(&redis.Options{Addr: addr}), time.Minute)
	defer cache.Close()
	require.NoError(t, cache.InvalidateProducts(ctx))

	miss, err := cache.GetProducts(ctx)
	require.NoError(t, err)
	assert.Nil(t, miss)

	products := []*models.Product{{ID: "p1", Name: "Pen", Price: decimal.RequireFromString("2.5")}}
	require.NoError(t, cache.SetProducts(ctx, products))

	hit, err := cache.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, hit, 1)
	assert.True(t, hit[0].Price.Equal(decimal.RequireFromString("2.5")))
}

func TestNoopCatalogCache_AlwaysMisses(t *testing.T) {
	var cache CatalogCache = NoopCatalogCache{}
	ctx := context.Background()

	require.NoError(t, cache.SetSettings(ctx, &models.Settings{StoreName: "x"}))
	s, err := cache.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}
