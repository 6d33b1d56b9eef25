package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// ListProducts handles GET /api/v1/products
func (h *Handlers) ListProducts(c *gin.Context) {
	var filter models.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct handles GET /api/v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProductBySKU handles GET /api/v1/products/sku/:sku
func (h *Handlers) GetProductBySKU(c *gin.Context) {
	product, err := h.catalog.GetProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var product models.Product
	if !h.bindJSON(c, &product) {
		return
	}

	created, err := h.catalog.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateProduct handles PATCH /api/v1/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var update models.ProductUpdate
	if !h.bindJSON(c, &update) {
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), &update)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BatchDeleteProducts handles POST /api/v1/products/batch-delete
func (h *Handlers) BatchDeleteProducts(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.catalog.DeleteProducts(c.Request.Context(), req.IDs); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": len(req.IDs)})
}

// UploadProductImage handles POST /api/v1/products/:id/image (multipart
// field "image").
func (h *Handlers) UploadProductImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		handleError(c, err)
		return
	}
	defer file.Close()

	product, err := h.catalog.UploadProductImage(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		handleError(c, err)
		return
	}

	h.logger.Info("Product image uploaded", logging.Fields{
		"product_id": product.ID,
		"size":       header.Size,
	})
	c.JSON(http.StatusOK, product)
}

// GetProductQRCode handles GET /api/v1/products/:id/qr?size=
func (h *Handlers) GetProductQRCode(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
			return
		}
		size = n
	}

	png, err := h.catalog.ProductQRCode(c.Request.Context(), c.Param("id"), size)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// PublishProduct handles POST /api/v1/products/:id/publish
func (h *Handlers) PublishProduct(c *gin.Context) {
	result, err := h.listings.PublishProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListCategories handles GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory handles POST /api/v1/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	var category models.Category
	if !h.bindJSON(c, &category) {
		return
	}

	created, err := h.catalog.CreateCategory(c.Request.Context(), &category)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *Handlers) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
