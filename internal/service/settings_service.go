package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// SettingsService owns the store-wide settings record.
type SettingsService struct {
	store   repository.SettingsStore
	cache   repository.CatalogCache
	config  *config.Config
	metrics MetricsRecorder
	logger  *logging.LoggerV2
}

func NewSettingsService(store repository.SettingsStore, cache repository.CatalogCache, metrics MetricsRecorder, cfg *config.Config) *SettingsService {
	return &SettingsService{
		store:   store,
		cache:   cache,
		config:  cfg,
		metrics: metrics,
		logger:  logging.NewLoggerV2("settings-service"),
	}
}

// Get returns the stored settings, or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	if s.config.Features.EnableCatalogCaching {
		cached, err := s.cache.GetSettings(ctx)
		if err == nil && cached != nil {
			s.metrics.CacheLookup("settings", true)
			return cached, nil
		}
		s.metrics.CacheLookup("settings", false)
	}

	settings, err := s.store.GetSettings(ctx)
	if errors.IsNotFound(err) {
		defaults := models.DefaultSettings()
		settings = &defaults
	} else if err != nil {
		s.logger.Error("Failed to load settings", logging.Fields{"error": err.Error()})
		return nil, err
	}

	if s.config.Features.EnableCatalogCaching {
		if err := s.cache.SetSettings(ctx, settings); err != nil {
			s.logger.Warn("Failed to cache settings", logging.Fields{"error": err.Error()})
		}
	}

	return settings, nil
}

// Update merges u into the current settings and saves the result.
func (s *SettingsService) Update(ctx context.Context, u *models.SettingsUpdate) (*models.Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	// A redacted password echoed back by the client keeps the stored one.
	if u.OpenSooq != nil && u.OpenSooq.Password != nil && *u.OpenSooq.Password == models.RedactedPassword {
		u.OpenSooq.Password = nil
	}

	next := *current
	next.PaymentMethods = append([]models.PaymentMethod(nil), current.PaymentMethods...)
	u.Apply(&next)

	if err := ValidateSettings(&next); err != nil {
		return nil, err
	}

	if err := s.store.SaveSettings(ctx, &next); err != nil {
		s.logger.Error("Failed to save settings", logging.Fields{"error": err.Error()})
		return nil, err
	}

	if s.config.Features.EnableCatalogCaching {
		if err := s.cache.InvalidateSettings(ctx); err != nil {
			s.logger.Warn("Failed to invalidate settings cache", logging.Fields{"error": err.Error()})
		}
	}

	s.logger.Info("Settings updated", logging.Fields{
		"tax_mode": next.TaxMode,
		"tax_rate": next.TaxRate.String(),
	})

	return &next, nil
}
