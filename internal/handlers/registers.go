package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type scanRequest struct {
	Code string `json:"code" binding:"required"`
}

// updateItemRequest sets the quantity outright or adjusts it by delta.
type updateItemRequest struct {
	Quantity *int `json:"quantity,omitempty"`
	Delta    *int `json:"delta,omitempty"`
}

type discountRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

type feesRequest struct {
	Fees []pricing.Fee `json:"fees"`
}

type customerRequest struct {
	CustomerID string `json:"customer_id"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GetCart handles GET /api/v1/registers/:rid/cart
func (h *Handlers) GetCart(c *gin.Context) {
	view, err := h.carts.GetCart(c.Request.Context(), c.Param("rid"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddCartItem handles POST /api/v1/registers/:rid/cart/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	var req addItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.AddItem(c.Request.Context(), c.Param("rid"), req.ProductID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ScanCartItem handles POST /api/v1/registers/:rid/cart/scan
func (h *Handlers) ScanCartItem(c *gin.Context) {
	var req scanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.ScanItem(c.Request.Context(), c.Param("rid"), req.Code)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateCartItem handles PATCH /api/v1/registers/:rid/cart/items/:pid
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var req updateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	rid, pid := c.Param("rid"), c.Param("pid")

	var (
		view *service.CartView
		err  error
	)
	switch {
	case req.Quantity != nil:
		view, err = h.carts.SetQuantity(ctx, rid, pid, *req.Quantity)
	case req.Delta != nil:
		view, err = h.carts.AdjustQuantity(ctx, rid, pid, *req.Delta)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity or delta is required"})
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RemoveCartItem handles DELETE /api/v1/registers/:rid/cart/items/:pid
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	view, err := h.carts.RemoveItem(c.Request.Context(), c.Param("rid"), c.Param("pid"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ApplyItemDiscount handles PUT /api/v1/registers/:rid/cart/items/:pid/discount
func (h *Handlers) ApplyItemDiscount(c *gin.Context) {
	var req discountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.ApplyItemDiscount(c.Request.Context(), c.Param("rid"), c.Param("pid"), req.Percent)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ApplyOrderDiscount handles PUT /api/v1/registers/:rid/cart/discount
func (h *Handlers) ApplyOrderDiscount(c *gin.Context) {
	var req discountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.ApplyOrderDiscount(c.Request.Context(), c.Param("rid"), req.Percent)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetCartFees handles PUT /api/v1/registers/:rid/cart/fees
func (h *Handlers) SetCartFees(c *gin.Context) {
	var req feesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.SetFees(c.Request.Context(), c.Param("rid"), req.Fees)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetCartCustomer handles PUT /api/v1/registers/:rid/cart/customer
func (h *Handlers) SetCartCustomer(c *gin.Context) {
	var req customerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.SetCustomer(c.Request.Context(), c.Param("rid"), req.CustomerID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetCartNotes handles PUT /api/v1/registers/:rid/cart/notes
func (h *Handlers) SetCartNotes(c *gin.Context) {
	var req notesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.SetNotes(c.Request.Context(), c.Param("rid"), req.Notes)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetCartShipping handles PUT /api/v1/registers/:rid/cart/shipping
func (h *Handlers) SetCartShipping(c *gin.Context) {
	var req service.ShippingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.SetShipping(c.Request.Context(), c.Param("rid"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearCart handles POST /api/v1/registers/:rid/cart/clear
func (h *Handlers) ClearCart(c *gin.Context) {
	view, err := h.carts.Clear(c.Request.Context(), c.Param("rid"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// LoadOrderIntoCart handles POST /api/v1/registers/:rid/orders/:id/load
func (h *Handlers) LoadOrderIntoCart(c *gin.Context) {
	view, err := h.carts.LoadOrder(c.Request.Context(), c.Param("rid"), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Checkout handles POST /api/v1/registers/:rid/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Checkout(c.Request.Context(), c.Param("rid"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetDrawer handles GET /api/v1/registers/:rid/drawer
func (h *Handlers) GetDrawer(c *gin.Context) {
	c.JSON(http.StatusOK, h.cash.Drawer(c.Request.Context(), c.Param("rid")))
}

// CashIn handles POST /api/v1/registers/:rid/drawer/cash-in
func (h *Handlers) CashIn(c *gin.Context) {
	var req amountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.cash.CashIn(c.Request.Context(), c.Param("rid"), req.Amount)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// CashOut handles POST /api/v1/registers/:rid/drawer/cash-out
func (h *Handlers) CashOut(c *gin.Context) {
	var req amountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.cash.CashOut(c.Request.Context(), c.Param("rid"), req.Amount)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GenerateZReport handles POST /api/v1/registers/:rid/drawer/z-report
func (h *Handlers) GenerateZReport(c *gin.Context) {
	report, err := h.cash.GenerateZReport(c.Request.Context(), c.Param("rid"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.logger.Info("Z-report requested", logging.Fields{
		"register_id": report.RegisterID,
		"report_id":   report.ID,
	})
	c.JSON(http.StatusCreated, report)
}
