package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

// Pinger reports whether the data store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the application services the handlers call.
type Services struct {
	Catalog  *service.CatalogService
	Settings *service.SettingsService
	Carts    *service.CartService
	Orders   *service.OrderService
	Cash     *service.CashService
	Listings *service.ListingService
}

// Handlers holds all HTTP handlers for the POS service.
type Handlers struct {
	catalog  *service.CatalogService
	settings *service.SettingsService
	carts    *service.CartService
	orders   *service.OrderService
	cash     *service.CashService
	listings *service.ListingService
	store    Pinger
	config   *config.Config
	logger   *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(svc Services, store Pinger, cfg *config.Config) *Handlers {
	return &Handlers{
		catalog:  svc.Catalog,
		settings: svc.Settings,
		carts:    svc.Carts,
		orders:   svc.Orders,
		cash:     svc.Cash,
		listings: svc.Listings,
		store:    store,
		config:   cfg,
		logger:   logging.NewLoggerV2("handlers"),
	}
}

func (h *Handlers) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Warn("Failed to bind request", logging.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// handleError maps service errors to HTTP responses. Anything that is not
// a missing entity or bad input is a 500 carrying the raw message, which
// the till shows to the cashier.
func handleError(c *gin.Context, err error) {
	if errors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *errors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"details": validationErr.Details,
		})
		return
	}

	if errors.Is(err, errors.ErrInvalidTransition) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
