package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// ListCustomers handles GET /api/v1/customers
func (h *Handlers) ListCustomers(c *gin.Context) {
	customers, err := h.catalog.ListCustomers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// CreateCustomer handles POST /api/v1/customers
func (h *Handlers) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if !h.bindJSON(c, &customer) {
		return
	}

	created, err := h.catalog.CreateCustomer(c.Request.Context(), &customer)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateCustomer handles PATCH /api/v1/customers/:id
func (h *Handlers) UpdateCustomer(c *gin.Context) {
	var update models.CustomerUpdate
	if !h.bindJSON(c, &update) {
		return
	}

	customer, err := h.catalog.UpdateCustomer(c.Request.Context(), c.Param("id"), &update)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/customers/:id
func (h *Handlers) DeleteCustomer(c *gin.Context) {
	if err := h.catalog.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListDeliveryProviders handles GET /api/v1/delivery-providers?active=true
func (h *Handlers) ListDeliveryProviders(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	providers, err := h.catalog.ListDeliveryProviders(c.Request.Context(), activeOnly)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"delivery_providers": providers})
}

// CreateDeliveryProvider handles POST /api/v1/delivery-providers
func (h *Handlers) CreateDeliveryProvider(c *gin.Context) {
	var provider models.DeliveryProvider
	if !h.bindJSON(c, &provider) {
		return
	}

	created, err := h.catalog.CreateDeliveryProvider(c.Request.Context(), &provider)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateDeliveryProvider handles PATCH /api/v1/delivery-providers/:id
func (h *Handlers) UpdateDeliveryProvider(c *gin.Context) {
	var update models.DeliveryProviderUpdate
	if !h.bindJSON(c, &update) {
		return
	}

	provider, err := h.catalog.UpdateDeliveryProvider(c.Request.Context(), c.Param("id"), &update)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, provider)
}

// DeleteDeliveryProvider handles DELETE /api/v1/delivery-providers/:id
func (h *Handlers) DeleteDeliveryProvider(c *gin.Context) {
	if err := h.catalog.DeleteDeliveryProvider(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
