package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// GetSettings handles GET /api/v1/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings.Redacted())
}

// UpdateSettings handles PATCH /api/v1/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var update models.SettingsUpdate
	if !h.bindJSON(c, &update) {
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), &update)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings.Redacted())
}
