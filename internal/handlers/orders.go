package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
)

type refundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

type batchUpdateRequest struct {
	OrderIDs []string           `json:"order_ids"`
	Status   models.OrderStatus `json:"status"`
}

// ListOrders handles GET /api/v1/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	var filter models.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// CreateOrder handles POST /api/v1/orders with {order, items}.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": order.ID,
		"order":    order,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (h *Handlers) DeleteOrder(c *gin.Context) {
	if err := h.orders.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// VoidOrder handles POST /api/v1/orders/:id/void
func (h *Handlers) VoidOrder(c *gin.Context) {
	order, err := h.orders.VoidOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// RefundOrder handles POST /api/v1/orders/:id/refund
func (h *Handlers) RefundOrder(c *gin.Context) {
	var req refundRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.RefundOrder(c.Request.Context(), c.Param("id"), req.Amount, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// PrintInvoice handles POST /api/v1/orders/:id/invoice
func (h *Handlers) PrintInvoice(c *gin.Context) {
	order, err := h.orders.PrintInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "printed",
		"order_id": order.ID,
	})
}

// BatchUpdateOrders handles POST /api/v1/orders/batch-update
func (h *Handlers) BatchUpdateOrders(c *gin.Context) {
	var req batchUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	count, err := h.orders.BatchUpdateStatus(c.Request.Context(), req.OrderIDs, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated_count": count})
}

// GetDashboard handles GET /api/v1/dashboard
func (h *Handlers) GetDashboard(c *gin.Context) {
	var filter models.SummaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	summary, err := h.orders.Summary(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListZReports handles GET /api/v1/z-reports?register_id=
func (h *Handlers) ListZReports(c *gin.Context) {
	reports, err := h.cash.ListZReports(c.Request.Context(), c.Query("register_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"z_reports": reports})
}
