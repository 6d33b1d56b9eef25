package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/listing"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/media"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/session"
)

const register = "register-1"

// noMetrics records nothing; the *metrics.Metrics methods are nil-safe.
var noMetrics *metrics.Metrics

type fakePrinter struct {
	mu       sync.Mutex
	receipts []string
	invoices []string
	err      error
}

func (p *fakePrinter) PrintReceipt(ctx context.Context, order *models.Order, settings *models.Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.receipts = append(p.receipts, order.ID)
	return p.err
}

func (p *fakePrinter) PrintInvoice(ctx context.Context, order *models.Order, settings *models.Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invoices = append(p.invoices, order.ID)
	return p.err
}

type testEnv struct {
	cfg       *config.Config
	store     *repository.LocalStore
	sessions  *session.Manager
	publisher *events.MockEventPublisher
	printer   *fakePrinter
	settings  *SettingsService
	catalog   *CatalogService
	carts     *CartService
	orders    *OrderService
	cash      *CashService
	listings  *ListingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := repository.OpenLocal(context.Background(), filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		StoreID: "store_test",
		Media:   config.MediaConfig{Dir: t.TempDir()},
		Features: config.FeatureFlags{
			EnableOrderEvents:     true,
			EnableReceiptPrinting: true,
		},
	}

	m := noMetrics
	env := &testEnv{
		cfg:       cfg,
		store:     store,
		sessions:  session.NewManager(),
		publisher: events.NewMockEventPublisher(),
		printer:   &fakePrinter{},
	}
	cache := repository.NoopCatalogCache{}
	env.settings = NewSettingsService(store, cache, m, cfg)
	env.catalog = NewCatalogService(store, cache, media.NewOptimizer(cfg.Media), m, cfg)
	env.carts = NewCartService(env.sessions, env.catalog, env.settings, store, m)
	env.orders = NewOrderService(store, env.sessions, env.settings, env.publisher, env.printer, m, cfg)
	env.cash = NewCashService(env.sessions, store, env.publisher, m, cfg)
	env.listings = NewListingService(env.catalog, env.settings,
		listing.NewSimulatedPublisher(0, logging.NewLoggerV2("listing-test")), cfg.Media.Dir, m)
	return env
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// assertDecimal compares by value so "837.9" equals "837.90".
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got.String(), msgAndArgs)
}
