package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/listing"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/media"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/session"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()
	logging.SetLevel(cfg.LogLevel)
	defer logging.Sync()

	logger := logging.NewLoggerV2("pos-service")
	logging.Infof("Starting pos-service on port %d", cfg.Server.Port)

	store, err := initStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open data store", logging.Fields{
			"backend": cfg.Database.Backend,
			"error":   err.Error(),
		})
	}
	defer store.Close()

	cache := initCache(cfg, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, cfg.StoreID, logger)
	defer eventPublisher.Close()

	var printer service.ReceiptPrinter = clients.NewConsolePrinter(logger)
	if cfg.PrinterService.BaseURL != "" {
		printer = clients.NewHTTPReceiptPrinter(cfg.PrinterService, logger)
	}

	var listingPublisher listing.Publisher = listing.NewSimulatedPublisher(cfg.Listing.StepDelay, logger)
	if !cfg.Listing.Simulate {
		listingPublisher = listing.NewBrowserPublisher(cfg.Listing, logger)
	}

	images := media.NewOptimizer(cfg.Media)
	sessions := session.NewManager()

	settingsService := service.NewSettingsService(store, cache, m, cfg)
	catalogService := service.NewCatalogService(store, cache, images, m, cfg)
	cartService := service.NewCartService(sessions, catalogService, settingsService, store, m)
	orderService := service.NewOrderService(store, sessions, settingsService, eventPublisher, printer, m, cfg)
	cashService := service.NewCashService(sessions, store, eventPublisher, m, cfg)
	listingService := service.NewListingService(catalogService, settingsService, listingPublisher, images.Dir(), m)

	h := handlers.NewHandlers(handlers.Services{
		Catalog:  catalogService,
		Settings: settingsService,
		Carts:    cartService,
		Orders:   orderService,
		Cash:     cashService,
		Listings: listingService,
	}, store, cfg)

	srv := server.New(h, m, registry, images.Dir(), cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":             cfg.Server.Port,
			"backend":          cfg.Database.Backend,
			"catalog_caching":  cfg.Features.EnableCatalogCaching,
			"order_events":     cfg.Features.EnableOrderEvents,
			"payment_events":   cfg.Features.EnablePaymentEvents,
			"listing_simulate": cfg.Listing.Simulate,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var eventConsumer *events.KafkaConsumer
	if cfg.Features.EnablePaymentEvents {
		eventConsumer = events.NewKafkaConsumer(cfg.Kafka, orderService, logger)
		go func() {
			if err := eventConsumer.Start(context.Background()); err != nil {
				logger.Error("Event consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if eventConsumer != nil {
		eventConsumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initStore(cfg *config.Config) (repository.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Database.Backend != config.BackendPostgres {
		store, err := repository.OpenLocal(ctx, cfg.Database.LocalPath)
		if err != nil {
			return nil, err
		}
		logging.Info("Local store opened", logging.Fields{"path": cfg.Database.LocalPath})
		return store, nil
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	logging.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	return repository.NewPostgresStore(db, logging.NewLoggerV2("postgres-store")), nil
}

func initCache(cfg *config.Config, logger *logging.LoggerV2) repository.CatalogCache {
	if !cfg.Features.EnableCatalogCaching {
		return repository.NoopCatalogCache{}
	}

	cache := repository.NewRedisCatalogCache(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		// Misses fall through to the store, so a cold Redis is not fatal.
		logger.Warn("Redis unavailable, catalog cache will miss", logging.Fields{"error": err.Error()})
	}
	return cache
}
